package caserecord

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound     = errors.New("case not found")
	ErrInvalidInput = errors.New("invalid case payload")
)

// QuotaError is returned when a replace would exceed the case's edit quota.
// Message carries the server's remediation text and must be shown to the
// clinician verbatim, so nothing here rewrites it.
type QuotaError struct {
	Message string
}

func (e *QuotaError) Error() string {
	return e.Message
}

// NewQuotaError builds the canonical quota-exceeded message for a case.
func NewQuotaError(editCount, editQuota int) *QuotaError {
	return &QuotaError{
		Message: fmt.Sprintf(
			"edit limit reached: this case has been edited %d of %d allowed times; contact the department administrator to raise the limit",
			editCount, editQuota),
	}
}

// FieldError is a single server-side validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates per-field failures from a rejected replace.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Field != "" {
			parts = append(parts, f.Field+": "+f.Message)
			continue
		}
		parts = append(parts, f.Message)
	}
	return strings.Join(parts, "; ")
}
