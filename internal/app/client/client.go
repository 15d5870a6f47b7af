package client

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/exp/slog"

	"casepad/internal/app/client/config"
	"casepad/internal/domain/casecache"
	"casepad/internal/domain/caserecord"
	"casepad/internal/domain/casesheet"
	"casepad/internal/domain/commit"
	"casepad/internal/domain/draft"
)

// CaseAPI is the server surface the client app depends on.
type CaseAPI interface {
	Login(ctx context.Context, login, password string) (string, error)
	HealthCheck(ctx context.Context) error
	CreateCase(ctx context.Context, c *caserecord.Case) (string, error)
	PutCase(ctx context.Context, caseID string, doc casesheet.Document) error
	FetchCase(ctx context.Context, caseID string) (casesheet.Document, error)
	ListCases(ctx context.Context) ([]caserecord.Summary, error)
	SetToken(token string)
}

// CaseListItem is one row of the case list screen: the server summary plus
// whether an uncommitted local draft exists for it.
type CaseListItem struct {
	caserecord.Summary
	HasDraft bool
}

// App wires the on-device storage, the draft lifecycle, the case cache and
// the commit coordinator into the surface the CLI (and tests) drive.
type App struct {
	config  *config.Config
	log     *slog.Logger
	api     CaseAPI
	storage interface{ Close() error }

	drafts *draft.Manager
	cache  *casecache.Service
	commit *commit.Coordinator

	mu        sync.Mutex
	caseList  []caserecord.Summary
	listDirty bool
}

// NewApp builds the client against sqlite storage, falling back to volatile
// memory when the database cannot be opened so triage can continue on a
// broken device.
func NewApp(cfg *config.Config, log *slog.Logger) (*App, error) {
	api, err := NewHTTPClient(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}
	return newApp(cfg, api, log)
}

func newApp(cfg *config.Config, api CaseAPI, log *slog.Logger) (*App, error) {
	var (
		draftStore draft.Store
		cacheStore casecache.Store
		closer     interface{ Close() error }
	)

	sqlite, err := NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		log.Warn("sqlite unavailable, drafts will not survive restart",
			"path", cfg.DBPath, "error", err)
		mem := NewMemoryStorage()
		draftStore, cacheStore, closer = mem, mem.CaseCache(), nopCloser{}
	} else {
		draftStore, cacheStore, closer = sqlite, sqlite.CaseCache(), sqlite
	}

	app := &App{
		config:    cfg,
		log:       log,
		api:       api,
		storage:   closer,
		drafts:    draft.NewManager(draftStore, log),
		cache:     casecache.NewService(cacheStore, api, log),
		listDirty: true,
	}
	app.commit = commit.NewCoordinator(draftStore, api, app.invalidateCaseList, log)

	if token, err := os.ReadFile(cfg.TokenPath); err == nil {
		api.SetToken(strings.TrimSpace(string(token)))
	}

	return app, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Login authenticates against the server and persists the session token for
// subsequent invocations.
func (a *App) Login(ctx context.Context, login, password string) error {
	token, err := a.api.Login(ctx, login, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	if err := os.WriteFile(a.config.TokenPath, []byte(token), 0600); err != nil {
		a.log.Warn("token not persisted, session is process-local", "error", err)
	}
	return nil
}

func (a *App) HealthCheck(ctx context.Context) error {
	return a.api.HealthCheck(ctx)
}

// OpenCase resolves or creates the draft for a case and returns it together
// with the cached server snapshot the form can prefill from.
func (a *App) OpenCase(ctx context.Context, caseID string) (*draft.Draft, casesheet.Document, error) {
	d, err := a.drafts.InitForCase(ctx, caseID)
	if err != nil {
		return nil, nil, err
	}

	var snapshot casesheet.Document
	if caseID != "" {
		// Best effort: a fresh fetch refreshes the cache, a dead uplink
		// falls back to whatever was cached.
		snapshot, err = a.cache.Refresh(ctx, caseID)
		if err != nil {
			snapshot, _ = a.cache.Cached(ctx, caseID)
		}
	}

	return d, snapshot, nil
}

// NewPatientDraft starts a draft for a patient that does not exist
// server-side yet.
func (a *App) NewPatientDraft(ctx context.Context) (*draft.Draft, error) {
	return a.drafts.InitForCase(ctx, "")
}

func (a *App) LoadDraft(ctx context.Context, draftID string) (*draft.Draft, error) {
	return a.drafts.Load(ctx, draftID)
}

// SaveToDraft persists form state locally. It never touches the network.
func (a *App) SaveToDraft(ctx context.Context, draftID string, data casesheet.Document) error {
	return a.drafts.Save(ctx, draftID, data)
}

// DraftSaveError reports the unrecovered save failure for a draft, nil when
// the last save landed.
func (a *App) DraftSaveError(draftID string) error {
	return a.drafts.SaveError(draftID)
}

func (a *App) DraftForCase(ctx context.Context, caseID string) (*draft.Draft, error) {
	return a.drafts.FindByCaseID(ctx, caseID)
}

func (a *App) ListDrafts(ctx context.Context) ([]*draft.Draft, error) {
	return a.drafts.List(ctx)
}

func (a *App) DiscardDraft(ctx context.Context, draftID string) error {
	return a.drafts.Discard(ctx, draftID)
}

// RegisterCase creates the server case for a new-patient draft and links the
// draft to it. The draft stays active; committing it is a separate step.
func (a *App) RegisterCase(ctx context.Context, draftID string, c *caserecord.Case) (string, error) {
	d, err := a.drafts.Load(ctx, draftID)
	if err != nil {
		return "", err
	}
	if d == nil {
		return "", draft.ErrNotFound
	}
	if d.CaseID != "" {
		return "", fmt.Errorf("draft %s already linked to case %s", draftID, d.CaseID)
	}

	if c.Document == nil {
		c.Document = d.Data
	}
	caseID, err := a.api.CreateCase(ctx, c)
	if err != nil {
		return "", fmt.Errorf("create case: %w", err)
	}

	if err := a.drafts.LinkCase(ctx, draftID, caseID); err != nil {
		// The server case exists; surface the broken link loudly so it can
		// be repaired instead of silently spawning a duplicate case later.
		return caseID, fmt.Errorf("case %s created but draft not linked: %w", caseID, err)
	}

	a.invalidateCaseList()
	return caseID, nil
}

// CommitDraft pushes the active draft of a case to the server.
func (a *App) CommitDraft(ctx context.Context, caseID string) commit.Result {
	return a.commit.Commit(ctx, caseID)
}

// ListCases returns the case list annotated with draft badges. The list is
// served from a process-local snapshot that commits invalidate; it is
// refetched rather than patched because the server derives fields (priority
// among them) the client cannot reproduce.
func (a *App) ListCases(ctx context.Context) ([]CaseListItem, error) {
	a.mu.Lock()
	dirty, snapshot := a.listDirty, a.caseList
	a.mu.Unlock()

	if dirty {
		fresh, err := a.api.ListCases(ctx)
		if err != nil {
			return nil, fmt.Errorf("list cases: %w", err)
		}
		a.mu.Lock()
		a.caseList, a.listDirty = fresh, false
		a.mu.Unlock()
		snapshot = fresh
	}

	items := make([]CaseListItem, 0, len(snapshot))
	for _, s := range snapshot {
		d, err := a.drafts.FindByCaseID(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		items = append(items, CaseListItem{Summary: s, HasDraft: d != nil})
	}
	return items, nil
}

func (a *App) invalidateCaseList() {
	a.mu.Lock()
	a.listDirty = true
	a.mu.Unlock()
}

// GetCachedCase returns the locally cached snapshot without any network.
func (a *App) GetCachedCase(ctx context.Context, caseID string) (casesheet.Document, error) {
	return a.cache.Cached(ctx, caseID)
}

// ExportCase assembles the handover document: fresh server state merged over
// the cached snapshot, cache alone when offline.
func (a *App) ExportCase(ctx context.Context, caseID string) (casesheet.Document, error) {
	return a.cache.BuildExport(ctx, caseID)
}

func (a *App) Close() error {
	return a.storage.Close()
}
