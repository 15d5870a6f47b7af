package client

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"casepad/internal/app/client/config"
	"casepad/internal/domain/caserecord"
	"casepad/internal/domain/casesheet"
	"casepad/internal/domain/commit"
)

type fakeAPI struct {
	mu        sync.Mutex
	putErr    error
	putCalls  int
	fetchDoc  casesheet.Document
	fetchErr  error
	cases     []caserecord.Summary
	listCalls int
	nextID    string
}

func (f *fakeAPI) Login(ctx context.Context, login, password string) (string, error) {
	return "tok", nil
}

func (f *fakeAPI) HealthCheck(ctx context.Context) error { return nil }

func (f *fakeAPI) CreateCase(ctx context.Context, c *caserecord.Case) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nextID == "" {
		return "", errors.New("create disabled")
	}
	return f.nextID, nil
}

func (f *fakeAPI) PutCase(ctx context.Context, caseID string, doc casesheet.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putCalls++
	return f.putErr
}

func (f *fakeAPI) FetchCase(ctx context.Context, caseID string) (casesheet.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.fetchDoc.Clone(), nil
}

func (f *fakeAPI) ListCases(ctx context.Context) ([]caserecord.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.cases, nil
}

func (f *fakeAPI) SetToken(token string) {}

func newTestApp(t *testing.T, api CaseAPI) *App {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		ServerAddress: "localhost:0",
		ConfigDir:     dir,
		TokenPath:     filepath.Join(dir, "token"),
		DBPath:        filepath.Join(dir, "casepad.db"),
		HTTPTimeout:   5,
	}

	app, err := newApp(cfg, api, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app
}

func TestApp_OpenCase_IsIdempotent(t *testing.T) {
	api := &fakeAPI{fetchDoc: casesheet.Document{
		"history": json.RawMessage(`{"allergies":"NKDA"}`),
	}}
	app := newTestApp(t, api)
	ctx := context.Background()

	d1, snapshot, err := app.OpenCase(ctx, "case-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"allergies":"NKDA"}`, string(snapshot["history"]))

	// Opening the same case again resumes the same draft.
	d2, _, err := app.OpenCase(ctx, "case-1")
	require.NoError(t, err)
	assert.Equal(t, d1.DraftID, d2.DraftID)
}

func TestApp_SaveIsLocalOnly(t *testing.T) {
	api := &fakeAPI{fetchErr: errors.New("no network")}
	app := newTestApp(t, api)
	ctx := context.Background()

	d, _, err := app.OpenCase(ctx, "case-1")
	require.NoError(t, err)

	doc := casesheet.Document{"treatment": json.RawMessage(`{"meds":["adrenaline"]}`)}
	require.NoError(t, app.SaveToDraft(ctx, d.DraftID, doc))
	assert.NoError(t, app.DraftSaveError(d.DraftID))

	// The save never hit the API.
	assert.Equal(t, 0, api.putCalls)

	loaded, err := app.LoadDraft(ctx, d.DraftID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"meds":["adrenaline"]}`, string(loaded.Data["treatment"]))
}

func TestApp_CommitSuccess_RetiresDraftAndInvalidatesList(t *testing.T) {
	api := &fakeAPI{cases: []caserecord.Summary{{ID: "case-1", PatientName: "Doe, J"}}}
	app := newTestApp(t, api)
	ctx := context.Background()

	d, _, err := app.OpenCase(ctx, "case-1")
	require.NoError(t, err)
	require.NoError(t, app.SaveToDraft(ctx, d.DraftID,
		casesheet.Document{"disposition": json.RawMessage(`{"outcome":"admitted"}`)}))

	// Prime the list snapshot, then commit.
	_, err = app.ListCases(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, api.listCalls)

	res := app.CommitDraft(ctx, "case-1")
	require.True(t, res.Committed, res.Message)
	assert.Equal(t, d.DraftID, res.DraftID)
	assert.Equal(t, 1, api.putCalls)

	// The draft is no longer active.
	active, err := app.DraftForCase(ctx, "case-1")
	require.NoError(t, err)
	assert.Nil(t, active)

	// The CLI removes the committed draft once the result is rendered.
	require.NoError(t, app.DiscardDraft(ctx, res.DraftID))
	gone, err := app.LoadDraft(ctx, res.DraftID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// The list snapshot was invalidated and is refetched.
	_, err = app.ListCases(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, api.listCalls)
}

func TestApp_CommitFailure_KeepsDraftIntact(t *testing.T) {
	api := &fakeAPI{putErr: caserecord.NewQuotaError(20, 20)}
	app := newTestApp(t, api)
	ctx := context.Background()

	d, _, err := app.OpenCase(ctx, "case-1")
	require.NoError(t, err)
	doc := casesheet.Document{"treatment": json.RawMessage(`{"meds":["morphine"]}`)}
	require.NoError(t, app.SaveToDraft(ctx, d.DraftID, doc))

	res := app.CommitDraft(ctx, "case-1")
	assert.False(t, res.Committed)
	assert.Equal(t, commit.ReasonEditLimit, res.Reason)
	assert.Contains(t, res.Message, "20 of 20")

	// Draft still active with the data intact, ready for retry.
	active, err := app.DraftForCase(ctx, "case-1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.JSONEq(t, `{"meds":["morphine"]}`, string(active.Data["treatment"]))
}

func TestApp_CommitOffline_DraftSurvivesAndReloads(t *testing.T) {
	api := &fakeAPI{
		fetchErr: errors.New("no network"),
		putErr: &net.OpError{
			Op: "dial", Net: "tcp", Err: errors.New("connection refused"),
		},
	}
	app := newTestApp(t, api)
	ctx := context.Background()

	d, _, err := app.OpenCase(ctx, "case-1")
	require.NoError(t, err)
	doc := casesheet.Document{"history": json.RawMessage(`{"allergies":"penicillin"}`)}
	require.NoError(t, app.SaveToDraft(ctx, d.DraftID, doc))

	res := app.CommitDraft(ctx, "case-1")
	assert.False(t, res.Committed)
	assert.Equal(t, commit.ReasonNetwork, res.Reason)
	assert.Equal(t, 1, api.putCalls)

	// The draft is still active and reloads with the last-saved data.
	active, err := app.DraftForCase(ctx, "case-1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, d.DraftID, active.DraftID)

	loaded, err := app.LoadDraft(ctx, d.DraftID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"allergies":"penicillin"}`, string(loaded.Data["history"]))
}

func TestApp_ListCases_DraftBadge(t *testing.T) {
	api := &fakeAPI{cases: []caserecord.Summary{
		{ID: "case-1", PatientName: "Doe, J"},
		{ID: "case-2", PatientName: "Roe, R"},
	}}
	app := newTestApp(t, api)
	ctx := context.Background()

	_, _, err := app.OpenCase(ctx, "case-1")
	require.NoError(t, err)

	items, err := app.ListCases(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].HasDraft)
	assert.False(t, items[1].HasDraft)
}

func TestApp_RegisterCase_LinksDraft(t *testing.T) {
	api := &fakeAPI{nextID: "case-9"}
	app := newTestApp(t, api)
	ctx := context.Background()

	d, err := app.NewPatientDraft(ctx)
	require.NoError(t, err)
	assert.Empty(t, d.CaseID)

	caseID, err := app.RegisterCase(ctx, d.DraftID, &caserecord.Case{PatientName: "Doe, J"})
	require.NoError(t, err)
	assert.Equal(t, "case-9", caseID)

	linked, err := app.DraftForCase(ctx, "case-9")
	require.NoError(t, err)
	require.NotNil(t, linked)
	assert.Equal(t, d.DraftID, linked.DraftID)

	// A second registration for the same draft is refused.
	_, err = app.RegisterCase(ctx, d.DraftID, &caserecord.Case{PatientName: "Doe, J"})
	assert.Error(t, err)
}

func TestApp_ExportCase_OfflineUsesCache(t *testing.T) {
	api := &fakeAPI{fetchDoc: casesheet.Document{
		"history": json.RawMessage(`{"allergies":"NKDA"}`),
	}}
	app := newTestApp(t, api)
	ctx := context.Background()

	// Opening the case populates the cache.
	_, _, err := app.OpenCase(ctx, "case-1")
	require.NoError(t, err)

	// Network goes away; export still works from cache.
	api.mu.Lock()
	api.fetchErr = errors.New("connection refused")
	api.mu.Unlock()

	doc, err := app.ExportCase(ctx, "case-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"allergies":"NKDA"}`, string(doc["history"]))
}

func TestApp_NewPatientDraftsAreIndependent(t *testing.T) {
	app := newTestApp(t, &fakeAPI{})
	ctx := context.Background()

	d1, err := app.NewPatientDraft(ctx)
	require.NoError(t, err)
	d2, err := app.NewPatientDraft(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, d1.DraftID, d2.DraftID)
}
