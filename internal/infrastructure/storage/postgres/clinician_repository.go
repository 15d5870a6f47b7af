package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"casepad/internal/domain/clinician"
)

type ClinicianRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewClinicianRepository(pool *pgxpool.Pool, log *slog.Logger) *ClinicianRepository {
	return &ClinicianRepository{
		pool: pool,
		log:  log.With("component", "clinician_repository"),
	}
}

func (r *ClinicianRepository) Create(ctx context.Context, c clinician.Clinician) (int, error) {
	var id int
	err := r.pool.QueryRow(ctx,
		`INSERT INTO clinicians (login, password_hash, full_name, role)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		c.Login, c.Password, c.FullName, c.Role).Scan(&id)
	return id, err
}

func (r *ClinicianRepository) FindByLogin(ctx context.Context, login string) (clinician.Clinician, error) {
	var c clinician.Clinician
	err := r.pool.QueryRow(ctx,
		`SELECT id, login, password_hash, full_name, role
		 FROM clinicians WHERE login = $1`, login).
		Scan(&c.ID, &c.Login, &c.Password, &c.FullName, &c.Role)
	if err != nil {
		return c, fmt.Errorf("clinician not found")
	}

	return c, nil
}
