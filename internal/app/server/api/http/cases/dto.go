package cases

import (
	"net/http"

	"casepad/internal/domain/caserecord"
	"casepad/internal/domain/casesheet"
)

type createInput struct {
	Body CreateRequest
}

type CreateRequest struct {
	PatientName string             `json:"patient_name" validate:"required"`
	PatientAge  int                `json:"patient_age,omitempty"`
	PatientSex  string             `json:"patient_sex,omitempty"`
	Complaint   string             `json:"complaint,omitempty"`
	Document    casesheet.Document `json:"document,omitempty"`
	EditQuota   int                `json:"edit_quota,omitempty"`
}

type createOutput struct {
	Body CreateResponse
}

type CreateResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type getInput struct {
	ID string `path:"id" doc:"Case id"`
}

type getOutput struct {
	Body caserecord.Case
}

type replaceInput struct {
	ID   string `path:"id" doc:"Case id"`
	Body ReplaceRequest
}

type ReplaceRequest struct {
	Document casesheet.Document `json:"document"`
}

type replaceOutput struct {
	Body ReplaceResponse
}

type ReplaceResponse struct {
	ID        string              `json:"id"`
	Status    string              `json:"status"`
	Priority  caserecord.Priority `json:"priority"`
	EditCount int                 `json:"edit_count"`
	EditQuota int                 `json:"edit_quota"`
}

type listOutput struct {
	Body ListResponse
}

type ListResponse struct {
	Cases []caserecord.Summary `json:"cases"`
}

// quotaExceededError is the wire shape clients key the edit-limit flow on:
// {"error": "edit_limit_reached", "message": "..."}.
type quotaExceededError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *quotaExceededError) Error() string {
	return e.Message
}

func (e *quotaExceededError) GetStatus() int {
	return http.StatusForbidden
}
