package cases

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"casepad/internal/app/server/api/http/middleware/auth"
	"casepad/internal/domain/caserecord"
)

type Handler struct {
	service    caserecord.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service caserecord.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.getOp(), h.get)
	huma.Register(api, h.replaceOp(), h.replace)
}

func (h *Handler) list(ctx context.Context, _ *struct{}) (*listOutput, error) {
	if _, ok := auth.GetClinicianID(ctx); !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	summaries, err := h.service.List(ctx)
	if err != nil {
		return nil, err
	}

	return &listOutput{
		Body: ListResponse{Cases: summaries},
	}, nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*createOutput, error) {
	clinicianID, ok := auth.GetClinicianID(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	created, err := h.service.Create(ctx, &caserecord.Case{
		PatientName: input.Body.PatientName,
		PatientAge:  input.Body.PatientAge,
		PatientSex:  input.Body.PatientSex,
		Complaint:   input.Body.Complaint,
		Document:    input.Body.Document,
		EditQuota:   input.Body.EditQuota,
		CreatedBy:   clinicianID,
	})
	if err != nil {
		return nil, translateError(err)
	}

	return &createOutput{
		Body: CreateResponse{ID: created.ID, Status: "Ok"},
	}, nil
}

func (h *Handler) get(ctx context.Context, input *getInput) (*getOutput, error) {
	if _, ok := auth.GetClinicianID(ctx); !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	c, err := h.service.Get(ctx, input.ID)
	if err != nil {
		return nil, translateError(err)
	}

	return &getOutput{Body: *c}, nil
}

func (h *Handler) replace(ctx context.Context, input *replaceInput) (*replaceOutput, error) {
	if _, ok := auth.GetClinicianID(ctx); !ok {
		return nil, huma.Error401Unauthorized("Unauthorized")
	}

	updated, err := h.service.Replace(ctx, input.ID, input.Body.Document)
	if err != nil {
		return nil, translateError(err)
	}

	return &replaceOutput{
		Body: ReplaceResponse{
			ID:        updated.ID,
			Status:    "Ok",
			Priority:  updated.Priority,
			EditCount: updated.EditCount,
			EditQuota: updated.EditQuota,
		},
	}, nil
}

// translateError maps domain errors onto the wire contract clients
// discriminate on.
func translateError(err error) error {
	var qe *caserecord.QuotaError
	if errors.As(err, &qe) {
		return &quotaExceededError{
			Code:    "edit_limit_reached",
			Message: qe.Message,
		}
	}

	var ve *caserecord.ValidationError
	if errors.As(err, &ve) {
		details := make([]error, 0, len(ve.Fields))
		for _, f := range ve.Fields {
			details = append(details, &huma.ErrorDetail{
				Message:  f.Message,
				Location: "body.document." + f.Field,
			})
		}
		return huma.Error422UnprocessableEntity("validation failed", details...)
	}

	if errors.Is(err, caserecord.ErrNotFound) {
		return huma.Error404NotFound("case not found")
	}

	return err
}
