package clinician

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, c Clinician) (int, error)
	FindByLogin(ctx context.Context, login string) (Clinician, error)
}
