package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"casepad/internal/domain/caserecord"
)

type CaseRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewCaseRepository(pool *pgxpool.Pool, log *slog.Logger) *CaseRepository {
	return &CaseRepository{
		pool: pool,
		log:  log.With("component", "case_repository"),
	}
}

func (r *CaseRepository) Create(ctx context.Context, c *caserecord.Case) (*caserecord.Case, error) {
	document, err := json.Marshal(c.Document)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	const query = `
		INSERT INTO cases (patient_name, patient_age, patient_sex, complaint,
		                   priority, document, edit_quota, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, edit_count, created_at, updated_at`

	out := *c
	err = r.pool.QueryRow(ctx, query,
		c.PatientName, c.PatientAge, c.PatientSex, c.Complaint,
		c.Priority, document, c.EditQuota, c.CreatedBy).
		Scan(&out.ID, &out.EditCount, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		r.log.Error("failed to create case", "error", err)
		return nil, fmt.Errorf("create case: %w", err)
	}

	return &out, nil
}

func (r *CaseRepository) Get(ctx context.Context, id string) (*caserecord.Case, error) {
	const query = `
		SELECT id, patient_name, patient_age, patient_sex, complaint,
		       priority, document, edit_count, edit_quota, created_by,
		       created_at, updated_at
		FROM cases
		WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)

	c, err := scanCase(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, caserecord.ErrNotFound
		}
		r.log.Error("failed to get case", "case_id", id, "error", err)
		return nil, fmt.Errorf("get case: %w", err)
	}

	return c, nil
}

// Replace writes the new document and edit count in one statement; the
// edit_count guard keeps two racing replaces from both consuming the same
// edit slot.
func (r *CaseRepository) Replace(ctx context.Context, c *caserecord.Case) (*caserecord.Case, error) {
	document, err := json.Marshal(c.Document)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}

	const query = `
		UPDATE cases
		SET document = $2, priority = $3, edit_count = $4, updated_at = NOW()
		WHERE id = $1 AND edit_count = $4 - 1
		RETURNING id, patient_name, patient_age, patient_sex, complaint,
		          priority, document, edit_count, edit_quota, created_by,
		          created_at, updated_at`

	row := r.pool.QueryRow(ctx, query, c.ID, document, c.Priority, c.EditCount)

	updated, err := scanCase(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("case %s changed concurrently", c.ID)
		}
		r.log.Error("failed to replace case", "case_id", c.ID, "error", err)
		return nil, fmt.Errorf("replace case: %w", err)
	}

	return updated, nil
}

func (r *CaseRepository) List(ctx context.Context) ([]caserecord.Summary, error) {
	const query = `
		SELECT id, patient_name, complaint, priority, updated_at
		FROM cases
		ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.log.Error("failed to list cases", "error", err)
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	var out []caserecord.Summary
	for rows.Next() {
		var s caserecord.Summary
		if err := rows.Scan(&s.ID, &s.PatientName, &s.Complaint, &s.Priority, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan case summary: %w", err)
		}
		out = append(out, s)
	}

	return out, rows.Err()
}

func scanCase(row pgx.Row) (*caserecord.Case, error) {
	var (
		c        caserecord.Case
		document []byte
	)

	err := row.Scan(&c.ID, &c.PatientName, &c.PatientAge, &c.PatientSex, &c.Complaint,
		&c.Priority, &document, &c.EditCount, &c.EditQuota, &c.CreatedBy,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(document, &c.Document); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return &c, nil
}
