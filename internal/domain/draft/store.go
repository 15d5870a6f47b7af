package draft

import (
	"context"

	"casepad/internal/domain/casesheet"
)

// Store is durable on-device CRUD over Draft records. Implementations surface
// storage I/O errors as-is; retries are the caller's responsibility.
type Store interface {
	// Create allocates a new draft with empty data and status draft.
	// caseID may be empty for a patient that does not exist server-side yet.
	Create(ctx context.Context, caseID string) (*Draft, error)

	// Get returns the draft by its local id, or ErrNotFound.
	Get(ctx context.Context, draftID string) (*Draft, error)

	// FindByCaseID returns the active draft linked to a server case. When
	// more than one matches (the single-active-draft invariant was broken
	// somehow), the most recently updated one wins. Returns ErrNotFound if
	// no active draft exists for the case.
	FindByCaseID(ctx context.Context, caseID string) (*Draft, error)

	// Update overwrites the draft's data wholesale and bumps UpdatedAt.
	// Status and CaseID are not touched.
	Update(ctx context.Context, draftID string, data casesheet.Document) error

	// SetCaseID links a previously unlinked draft to its server case.
	SetCaseID(ctx context.Context, draftID, caseID string) error

	// MarkCommitted transitions the draft to StatusCommitted. The record is
	// kept so the UI can still show "last saved" state; deletion is a
	// separate explicit step.
	MarkCommitted(ctx context.Context, draftID string) error

	// Delete removes the draft permanently.
	Delete(ctx context.Context, draftID string) error

	// List returns all stored drafts, most recently updated first.
	List(ctx context.Context) ([]*Draft, error)
}
