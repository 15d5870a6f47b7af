package caserecord

import (
	"time"

	"casepad/internal/domain/casesheet"
)

// Priority is the derived triage priority of a case. The server recomputes it
// from the primary assessment on every replace, which is why clients
// invalidate their list caches after a commit instead of patching them.
type Priority string

const (
	PriorityRed     Priority = "red"
	PriorityYellow  Priority = "yellow"
	PriorityGreen   Priority = "green"
	PriorityUnknown Priority = "unknown"
)

// Case is the authoritative server-side case record.
type Case struct {
	ID          string             `json:"id"`
	PatientName string             `json:"patient_name"`
	PatientAge  int                `json:"patient_age,omitempty"`
	PatientSex  string             `json:"patient_sex,omitempty"`
	Complaint   string             `json:"complaint,omitempty"`
	Priority    Priority           `json:"priority"`
	Document    casesheet.Document `json:"document"`
	// EditCount counts accepted replaces; EditQuota is the backend-enforced
	// ceiling. Exceeding it is a terminal error for that commit attempt.
	EditCount int       `json:"edit_count"`
	EditQuota int       `json:"edit_quota"`
	CreatedBy int       `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary is the lightweight shape returned by the list endpoint. It omits
// the document, which is exactly why the client keeps a full-case cache for
// export.
type Summary struct {
	ID          string    `json:"id"`
	PatientName string    `json:"patient_name"`
	Complaint   string    `json:"complaint,omitempty"`
	Priority    Priority  `json:"priority"`
	UpdatedAt   time.Time `json:"updated_at"`
}
