package clinician

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

type Servicer interface {
	Register(ctx context.Context, c Clinician, password string) (int, error)
	Authenticate(ctx context.Context, login, password string) (Clinician, error)
}

type Service struct {
	repo      Repository
	validator Validator
	log       *slog.Logger
}

func NewService(repo Repository, validator Validator, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		validator: validator,
		log:       log.With("component", "clinician_service"),
	}
}

func (s *Service) Register(ctx context.Context, c Clinician, password string) (int, error) {
	if err := s.validator.ValidateRegister(c.Login, password); err != nil {
		s.log.Debug("validation failed", "login", c.Login, "error", err)
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}
	c.Password = string(hash)

	return s.repo.Create(ctx, c)
}

func (s *Service) Authenticate(ctx context.Context, login, password string) (Clinician, error) {
	if err := s.validator.ValidateLogin(login); err != nil {
		return Clinician{}, ErrInvalidAuth
	}

	c, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		return c, ErrNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(c.Password), []byte(password)); err != nil {
		return c, ErrInvalidAuth
	}

	return c, nil
}
