package commit

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"golang.org/x/exp/slog"

	"casepad/internal/domain/caserecord"
	"casepad/internal/domain/casesheet"
	"casepad/internal/domain/draft"
)

// CaseWriter pushes a full case document to the server. Implementations
// translate transport failures into caserecord.QuotaError /
// caserecord.ValidationError where the server reported them, and plain errors
// otherwise.
type CaseWriter interface {
	PutCase(ctx context.Context, caseID string, doc casesheet.Document) error
}

// Coordinator turns the locally saved draft of a case into a single replace
// request against the server. One commit per case may be in flight at a time;
// a second request while one is running is rejected immediately rather than
// queued, because the draft it would send is the same one.
type Coordinator struct {
	drafts draft.Store
	api    CaseWriter
	log    *slog.Logger

	// invalidate is called after every accepted commit so stale list
	// snapshots are refetched instead of patched.
	invalidate func()

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewCoordinator(drafts draft.Store, api CaseWriter, invalidate func(), log *slog.Logger) *Coordinator {
	if invalidate == nil {
		invalidate = func() {}
	}
	return &Coordinator{
		drafts:     drafts,
		api:        api,
		log:        log.With("component", "commit"),
		invalidate: invalidate,
		inflight:   make(map[string]struct{}),
	}
}

// Commit sends the active draft of a case to the server as one wholesale
// replace. On success the draft is marked committed and list caches are
// invalidated. On any failure the draft is left exactly as it was.
func (c *Coordinator) Commit(ctx context.Context, caseID string) Result {
	if caseID == "" {
		return Result{Reason: ReasonNoDraft, Message: "no server case to commit to"}
	}

	c.mu.Lock()
	if _, busy := c.inflight[caseID]; busy {
		c.mu.Unlock()
		c.log.Debug("commit already in flight", "case_id", caseID)
		return Result{Reason: ReasonInFlight, Message: "a commit for this case is already running"}
	}
	c.inflight[caseID] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inflight, caseID)
		c.mu.Unlock()
	}()

	d, err := c.drafts.FindByCaseID(ctx, caseID)
	if err != nil {
		if errors.Is(err, draft.ErrNotFound) {
			return Result{Reason: ReasonNoDraft, Message: "nothing to commit: no active draft for this case"}
		}
		c.log.Error("draft lookup failed", "case_id", caseID, "error", err)
		return Result{Reason: ReasonUnknown, Message: "could not read the local draft"}
	}

	if err := c.api.PutCase(ctx, caseID, d.Data); err != nil {
		return c.classify(caseID, err)
	}

	c.invalidate()

	if err := c.drafts.MarkCommitted(ctx, d.DraftID); err != nil {
		// The server accepted the document; the local transition is
		// retried once and otherwise only logged. Worst case the draft is
		// offered again and recommits the same content.
		if err2 := c.drafts.MarkCommitted(ctx, d.DraftID); err2 != nil {
			c.log.Error("draft not marked committed",
				"case_id", caseID, "draft_id", d.DraftID, "error", err2)
		}
	}

	c.log.Info("draft committed", "case_id", caseID, "draft_id", d.DraftID)
	return Result{Committed: true, DraftID: d.DraftID}
}

func (c *Coordinator) classify(caseID string, err error) Result {
	var qe *caserecord.QuotaError
	if errors.As(err, &qe) {
		c.log.Info("commit rejected, edit quota exhausted", "case_id", caseID)
		return Result{Reason: ReasonEditLimit, Message: qe.Message}
	}

	var ve *caserecord.ValidationError
	if errors.As(err, &ve) {
		c.log.Info("commit rejected by validation", "case_id", caseID, "error", ve)
		return Result{Reason: ReasonValidation, Message: ve.Error()}
	}

	var ne net.Error
	if errors.As(err, &ne) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		c.log.Warn("commit failed, server unreachable", "case_id", caseID, "error", err)
		return Result{Reason: ReasonNetwork, Message: "commit failed: the server did not respond; changes are kept locally"}
	}

	c.log.Warn("commit failed", "case_id", caseID, "error", err)
	return Result{
		Reason:  ReasonUnknown,
		Message: fmt.Sprintf("commit failed: %v; changes are kept locally", err),
	}
}
