package commit

// Reason classifies why a commit did not land. The UI branches on it: quota
// and validation failures carry text for the clinician, network and unknown
// failures render a generic retry prompt.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonEditLimit  Reason = "edit_limit"
	ReasonValidation Reason = "validation"
	ReasonNetwork    Reason = "network"
	ReasonNoDraft    Reason = "no_draft"
	ReasonInFlight   Reason = "in_flight"
	ReasonUnknown    Reason = "unknown"
)

// Result is the outcome of a commit attempt. On failure the draft is
// guaranteed untouched: still active, data intact, ready for retry.
type Result struct {
	Committed bool
	// DraftID identifies the committed draft so the caller can clean it up
	// once the result has been shown. Empty on failure.
	DraftID string
	Reason  Reason
	// Message is shown to the clinician. For ReasonEditLimit it is the
	// server's remediation text verbatim; for ReasonValidation it is the
	// concatenated field errors.
	Message string
}
