package draft

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"casepad/internal/domain/casesheet"
)

// Status of a locally persisted draft.
type Status string

const (
	// StatusDraft marks an editable draft that has not been successfully
	// committed to the server.
	StatusDraft Status = "draft"
	// StatusCommitted marks a draft whose payload was accepted by the
	// server; it is eligible for deletion once the UI has moved on.
	StatusCommitted Status = "committed"
)

// Draft is the unit of local work-in-progress: the full form state of one
// case sheet, owned by this device only.
type Draft struct {
	// DraftID is generated locally at creation and never reused.
	DraftID string `json:"draft_id"`
	// CaseID links the draft to a server-side case. Empty until the case
	// exists server-side (brand-new patient) or supplied up front when
	// resuming an existing case.
	CaseID string `json:"case_id,omitempty"`
	// Data is the union of every tab's form state. It is only ever
	// replaced wholesale; the screen owns the in-memory copy.
	Data      casesheet.Document `json:"data"`
	Status    Status             `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Active reports whether the draft is still editable.
func (d *Draft) Active() bool {
	return d.Status == StatusDraft
}

// NewID returns a process-local unique draft identifier.
func NewID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; fall back to
		// a time-derived id rather than panicking mid-shift.
		return hex.EncodeToString([]byte(time.Now().Format("20060102150405.000000000")))
	}
	return hex.EncodeToString(buf)
}
