package caserecord

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/exp/slog"

	"casepad/internal/domain/casesheet"
)

// DefaultEditQuota is the number of accepted replaces a case allows unless
// the department overrides it at creation time.
const DefaultEditQuota = 20

type Servicer interface {
	Create(ctx context.Context, c *Case) (*Case, error)
	Get(ctx context.Context, id string) (*Case, error)
	Replace(ctx context.Context, id string, doc casesheet.Document) (*Case, error)
	List(ctx context.Context) ([]Summary, error)
}

// ServiceConfig carries the department-level policy knobs.
type ServiceConfig struct {
	// DefaultEditQuota is applied to cases created without an explicit quota.
	DefaultEditQuota int
}

type Service struct {
	repo   Repository
	log    *slog.Logger
	config *ServiceConfig
}

func NewService(repo Repository, log *slog.Logger, config *ServiceConfig) *Service {
	if config == nil {
		config = &ServiceConfig{DefaultEditQuota: DefaultEditQuota}
	}
	if config.DefaultEditQuota <= 0 {
		config.DefaultEditQuota = DefaultEditQuota
	}
	return &Service{
		repo:   repo,
		log:    log.With("component", "caserecord_service"),
		config: config,
	}
}

func (s *Service) Create(ctx context.Context, c *Case) (*Case, error) {
	if strings.TrimSpace(c.PatientName) == "" {
		return nil, &ValidationError{Fields: []FieldError{
			{Field: "patient_name", Message: "patient name is required"},
		}}
	}
	if c.EditQuota <= 0 {
		c.EditQuota = s.config.DefaultEditQuota
	}
	c.Priority = DerivePriority(c.Document)

	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create case: %w", err)
	}
	s.log.Info("case created", "case_id", created.ID, "priority", created.Priority)
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Case, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get case: %w", err)
	}
	return c, nil
}

// Replace overwrites the case document wholesale. The edit quota is checked
// before anything is written: a case at its quota is rejected with the
// remediation message and left completely untouched, so a failed commit
// consumes no edits.
func (s *Service) Replace(ctx context.Context, id string, doc casesheet.Document) (*Case, error) {
	cur, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get case: %w", err)
	}

	if cur.EditCount >= cur.EditQuota {
		s.log.Info("replace rejected, edit quota exhausted",
			"case_id", id, "edit_count", cur.EditCount, "edit_quota", cur.EditQuota)
		return nil, NewQuotaError(cur.EditCount, cur.EditQuota)
	}

	cur.Document = doc
	cur.Priority = DerivePriority(doc)
	cur.EditCount++

	updated, err := s.repo.Replace(ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("replace case: %w", err)
	}
	s.log.Info("case replaced",
		"case_id", id, "edit_count", updated.EditCount, "priority", updated.Priority)
	return updated, nil
}

func (s *Service) List(ctx context.Context) ([]Summary, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	return out, nil
}
