package cases

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"casepad/internal/app/server/api/http/middleware/auth"
	"casepad/internal/domain/caserecord"
	"casepad/internal/domain/casesheet"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, c *caserecord.Case) (*caserecord.Case, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*caserecord.Case), args.Error(1)
}

func (m *MockService) Get(ctx context.Context, id string) (*caserecord.Case, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*caserecord.Case), args.Error(1)
}

func (m *MockService) Replace(ctx context.Context, id string, doc casesheet.Document) (*caserecord.Case, error) {
	args := m.Called(ctx, id, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*caserecord.Case), args.Error(1)
}

func (m *MockService) List(ctx context.Context) ([]caserecord.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]caserecord.Summary), args.Error(1)
}

func authedCtx() context.Context {
	return context.WithValue(context.Background(), auth.ClinicianIDKey, 7)
}

func TestHandler_Replace_Success(t *testing.T) {
	svc := new(MockService)
	handler := NewHandler(svc, slog.Default(), huma.Middlewares{})

	doc := casesheet.Document{"history": json.RawMessage(`{}`)}
	svc.On("Replace", mock.Anything, "case-1", doc).Return(&caserecord.Case{
		ID: "case-1", Priority: caserecord.PriorityYellow, EditCount: 5, EditQuota: 20,
	}, nil)

	out, err := handler.replace(authedCtx(), &replaceInput{
		ID:   "case-1",
		Body: ReplaceRequest{Document: doc},
	})
	require.NoError(t, err)
	assert.Equal(t, "Ok", out.Body.Status)
	assert.Equal(t, 5, out.Body.EditCount)
	assert.Equal(t, caserecord.PriorityYellow, out.Body.Priority)
}

func TestHandler_Replace_QuotaExceededWireShape(t *testing.T) {
	svc := new(MockService)
	handler := NewHandler(svc, slog.Default(), huma.Middlewares{})

	svc.On("Replace", mock.Anything, "case-1", mock.Anything).
		Return(nil, caserecord.NewQuotaError(20, 20))

	_, err := handler.replace(authedCtx(), &replaceInput{ID: "case-1"})
	require.Error(t, err)

	var qe *quotaExceededError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, http.StatusForbidden, qe.GetStatus())
	assert.Equal(t, "edit_limit_reached", qe.Code)
	assert.Contains(t, qe.Message, "20 of 20")

	// The wire shape clients discriminate on.
	payload, merr := json.Marshal(qe)
	require.NoError(t, merr)
	assert.JSONEq(t, `{"error":"edit_limit_reached","message":"`+qe.Message+`"}`, string(payload))
}

func TestHandler_Replace_ValidationBecomes422(t *testing.T) {
	svc := new(MockService)
	handler := NewHandler(svc, slog.Default(), huma.Middlewares{})

	svc.On("Replace", mock.Anything, "case-1", mock.Anything).
		Return(nil, &caserecord.ValidationError{Fields: []caserecord.FieldError{
			{Field: "disposition", Message: "outcome is required"},
		}})

	_, err := handler.replace(authedCtx(), &replaceInput{ID: "case-1"})
	require.Error(t, err)

	var se huma.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnprocessableEntity, se.GetStatus())
}

func TestHandler_Replace_Unauthorized(t *testing.T) {
	svc := new(MockService)
	handler := NewHandler(svc, slog.Default(), huma.Middlewares{})

	_, err := handler.replace(context.Background(), &replaceInput{ID: "case-1"})
	require.Error(t, err)

	var se huma.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.GetStatus())
	svc.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_Get_NotFound(t *testing.T) {
	svc := new(MockService)
	handler := NewHandler(svc, slog.Default(), huma.Middlewares{})

	svc.On("Get", mock.Anything, "missing").Return(nil, caserecord.ErrNotFound)

	_, err := handler.get(authedCtx(), &getInput{ID: "missing"})
	require.Error(t, err)

	var se huma.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.GetStatus())
}

func TestHandler_Create_PassesClinician(t *testing.T) {
	svc := new(MockService)
	handler := NewHandler(svc, slog.Default(), huma.Middlewares{})

	svc.On("Create", mock.Anything, mock.MatchedBy(func(c *caserecord.Case) bool {
		return c.CreatedBy == 7 && c.PatientName == "Doe, J"
	})).Return(&caserecord.Case{ID: "case-1"}, nil)

	out, err := handler.create(authedCtx(), &createInput{
		Body: CreateRequest{PatientName: "Doe, J"},
	})
	require.NoError(t, err)
	assert.Equal(t, "case-1", out.Body.ID)
	svc.AssertExpectations(t)
}

func TestHandler_List(t *testing.T) {
	svc := new(MockService)
	handler := NewHandler(svc, slog.Default(), huma.Middlewares{})

	svc.On("List", mock.Anything).Return([]caserecord.Summary{
		{ID: "case-1", PatientName: "Doe, J", Priority: caserecord.PriorityRed},
	}, nil)

	out, err := handler.list(authedCtx(), nil)
	require.NoError(t, err)
	require.Len(t, out.Body.Cases, 1)
	assert.Equal(t, caserecord.PriorityRed, out.Body.Cases[0].Priority)
}

func TestHandler_List_ServiceError(t *testing.T) {
	svc := new(MockService)
	handler := NewHandler(svc, slog.Default(), huma.Middlewares{})

	svc.On("List", mock.Anything).Return(nil, errors.New("database down"))

	_, err := handler.list(authedCtx(), nil)
	assert.Error(t, err)
}
