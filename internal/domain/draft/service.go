package draft

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/exp/slog"

	"casepad/internal/domain/casesheet"
)

// Manager orchestrates the draft lifecycle a screen drives: resolve-or-create
// on mount, frequent local-only saves while editing, and cleanup after commit.
// It owns the case-to-draft mapping and enforces the single-active-draft
// invariant.
type Manager struct {
	store Store
	log   *slog.Logger

	mu      sync.Mutex
	writers map[string]*draftWriter
	// saveErr keeps the last unrecovered save failure per draft so the UI
	// can render a persistent "not saved" indicator instead of the error
	// being swallowed forever.
	saveErr map[string]error
}

// draftWriter serializes storage writes for one draft. Saves that arrive
// while a write is in flight are coalesced to the latest payload rather than
// queued individually: every save carries the screen's full current state, so
// only the newest one matters.
type draftWriter struct {
	mu      sync.Mutex
	writing bool
	pending *casesheet.Document
}

func NewManager(store Store, log *slog.Logger) *Manager {
	return &Manager{
		store:   store,
		log:     log.With("component", "draft_manager"),
		writers: make(map[string]*draftWriter),
		saveErr: make(map[string]error),
	}
}

// InitForCase resolves or creates the draft for a screen mount. For a known
// case it reuses the existing active draft (resuming an edit the app was
// killed in the middle of); otherwise it creates one. For a brand-new patient
// (empty caseID) it always creates. Calling it twice for the same case
// without an intervening commit returns the same draft.
func (m *Manager) InitForCase(ctx context.Context, caseID string) (*Draft, error) {
	if caseID != "" {
		existing, err := m.store.FindByCaseID(ctx, caseID)
		if err == nil {
			m.log.Debug("resuming existing draft",
				"draft_id", existing.DraftID, "case_id", caseID)
			return existing, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("find draft for case: %w", err)
		}
	}

	created, err := m.store.Create(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}

	m.log.Info("draft created", "draft_id", created.DraftID, "case_id", caseID)
	return created, nil
}

// Load hydrates screen state from a draft. A missing draft is "no prior
// draft", not an error: the screen starts from server-fetched or blank state.
func (m *Manager) Load(ctx context.Context, draftID string) (*Draft, error) {
	d, err := m.store.Get(ctx, draftID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load draft: %w", err)
	}
	return d, nil
}

// Save persists the screen's full current form state. This is the only
// network-free mutation path and is called on every tab switch; it must never
// require connectivity. Writes to the same draft are applied in submission
// order with latest-wins coalescing: a save arriving while another is being
// written replaces any not-yet-started one instead of racing it.
//
// A transient storage failure is retried once before being reported.
func (m *Manager) Save(ctx context.Context, draftID string, data casesheet.Document) error {
	w := m.writerFor(draftID)

	w.mu.Lock()
	snapshot := data.Clone()
	w.pending = &snapshot
	if w.writing {
		// The in-flight writer drains pending payloads; this save is
		// accepted and will land as part of that drain.
		w.mu.Unlock()
		return nil
	}
	w.writing = true

	// The drain may carry payloads coalesced from later callers, so the
	// writes must outlive this caller's context: a cancelled screen must
	// not abort another screen's save mid-flight.
	wctx := context.WithoutCancel(ctx)

	var err error
	for w.pending != nil {
		next := *w.pending
		w.pending = nil
		w.mu.Unlock()

		err = m.store.Update(wctx, draftID, next)
		if err != nil {
			m.log.Warn("draft save failed, retrying",
				"draft_id", draftID, "error", err)
			err = m.store.Update(wctx, draftID, next)
		}

		w.mu.Lock()
	}
	w.writing = false
	w.mu.Unlock()

	m.recordSaveResult(draftID, err)
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// SaveError returns the last unrecovered save failure for the draft, nil when
// the most recent save landed. Screens poll this for the "not saved" badge.
func (m *Manager) SaveError(draftID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveErr[draftID]
}

// FindByCaseID exposes the active draft for a case; list screens use it to
// render the "Draft" badge next to cases with unsynced local edits.
func (m *Manager) FindByCaseID(ctx context.Context, caseID string) (*Draft, error) {
	d, err := m.store.FindByCaseID(ctx, caseID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find draft by case: %w", err)
	}
	return d, nil
}

// LinkCase binds a new-patient draft to the server case created for it.
func (m *Manager) LinkCase(ctx context.Context, draftID, caseID string) error {
	if caseID == "" {
		return ErrInvalidDraft
	}
	if err := m.store.SetCaseID(ctx, draftID, caseID); err != nil {
		return fmt.Errorf("link draft to case: %w", err)
	}
	m.log.Info("draft linked to case", "draft_id", draftID, "case_id", caseID)
	return nil
}

// List returns all local drafts, newest first.
func (m *Manager) List(ctx context.Context) ([]*Draft, error) {
	drafts, err := m.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return drafts, nil
}

// Discard removes a draft permanently: either the clinician explicitly threw
// the work away, or the commit succeeded and the UI has navigated off the
// form. A draft that failed to commit is never discarded implicitly.
func (m *Manager) Discard(ctx context.Context, draftID string) error {
	if err := m.store.Delete(ctx, draftID); err != nil {
		return fmt.Errorf("discard draft: %w", err)
	}

	m.mu.Lock()
	delete(m.writers, draftID)
	delete(m.saveErr, draftID)
	m.mu.Unlock()

	m.log.Info("draft discarded", "draft_id", draftID)
	return nil
}

func (m *Manager) writerFor(draftID string) *draftWriter {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.writers[draftID]
	if !ok {
		w = &draftWriter{}
		m.writers[draftID] = w
	}
	return w
}

func (m *Manager) recordSaveResult(draftID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.saveErr[draftID] = err
	} else {
		delete(m.saveErr, draftID)
	}
}
