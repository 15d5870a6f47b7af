package session

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, clinicianID int, tokenHash string, expiresAt time.Time) error
	// Validate returns the clinician id for an unexpired session hash.
	Validate(ctx context.Context, tokenHash string) (int, error)
}
