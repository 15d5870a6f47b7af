package clinicians

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"casepad/internal/domain/clinician"
	"casepad/internal/domain/session"
)

type Handler struct {
	service    clinician.Servicer
	sessions   session.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service clinician.Servicer, sessions session.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		sessions:   sessions,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.registerOp(), h.register)
	huma.Register(api, h.loginOp(), h.login)
}

func (h *Handler) register(ctx context.Context, input *registerInput) (*registerOutput, error) {
	role := input.Body.Role
	if role == "" {
		role = "doctor"
	}

	id, err := h.service.Register(ctx, clinician.Clinician{
		Login:    input.Body.Login,
		FullName: input.Body.FullName,
		Role:     role,
	}, input.Body.Password)
	if err != nil {
		if errors.Is(err, clinician.ErrInvalidInput) {
			return nil, huma.Error422UnprocessableEntity(err.Error())
		}
		return nil, huma.Error409Conflict("registration failed")
	}

	return &registerOutput{
		Body: RegisterResponse{ID: id, Status: "Ok"},
	}, nil
}

func (h *Handler) login(ctx context.Context, input *loginInput) (*loginOutput, error) {
	c, err := h.service.Authenticate(ctx, input.Body.Login, input.Body.Password)
	if err != nil {
		return nil, huma.Error401Unauthorized("invalid credentials")
	}

	token, err := h.sessions.Create(ctx, c.ID)
	if err != nil {
		h.log.Error("session creation failed", "clinician_id", c.ID, "error", err)
		return nil, huma.Error500InternalServerError("could not create session")
	}

	return &loginOutput{
		Body: LoginResponse{Token: token, Status: "Ok"},
	}, nil
}
