package client

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casepad/internal/domain/casecache"
	"casepad/internal/domain/casesheet"
	"casepad/internal/domain/draft"
)

func TestMemoryStorage_DraftLifecycle(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	d, err := store.Create(ctx, "case-1")
	require.NoError(t, err)
	assert.NotEmpty(t, d.DraftID)
	assert.Equal(t, draft.StatusDraft, d.Status)

	doc := casesheet.Document{"history": json.RawMessage(`{"allergies":"NKDA"}`)}
	require.NoError(t, store.Update(ctx, d.DraftID, doc))

	found, err := store.FindByCaseID(ctx, "case-1")
	require.NoError(t, err)
	assert.Equal(t, d.DraftID, found.DraftID)
	assert.JSONEq(t, `{"allergies":"NKDA"}`, string(found.Data["history"]))

	require.NoError(t, store.MarkCommitted(ctx, d.DraftID))

	// Committed drafts are no longer the active draft for the case.
	_, err = store.FindByCaseID(ctx, "case-1")
	assert.ErrorIs(t, err, draft.ErrNotFound)

	// But the record itself survives until deleted.
	got, err := store.Get(ctx, d.DraftID)
	require.NoError(t, err)
	assert.Equal(t, draft.StatusCommitted, got.Status)

	require.NoError(t, store.Delete(ctx, d.DraftID))
	_, err = store.Get(ctx, d.DraftID)
	assert.ErrorIs(t, err, draft.ErrNotFound)
}

func TestMemoryStorage_FindByCaseID_NewestWins(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	d1, err := store.Create(ctx, "case-1")
	require.NoError(t, err)
	d2, err := store.Create(ctx, "case-1")
	require.NoError(t, err)

	// Touch the second draft so it is newer.
	require.NoError(t, store.Update(ctx, d2.DraftID,
		casesheet.Document{"history": json.RawMessage(`{}`)}))

	found, err := store.FindByCaseID(ctx, "case-1")
	require.NoError(t, err)
	assert.Equal(t, d2.DraftID, found.DraftID)
	assert.NotEqual(t, d1.DraftID, found.DraftID)
}

func TestMemoryStorage_ReturnsCopies(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()

	d, err := store.Create(ctx, "case-1")
	require.NoError(t, err)
	require.NoError(t, store.Update(ctx, d.DraftID,
		casesheet.Document{"history": json.RawMessage(`{"a":1}`)}))

	got, err := store.Get(ctx, d.DraftID)
	require.NoError(t, err)
	got.Data["history"] = json.RawMessage(`{"mutated":true}`)

	again, err := store.Get(ctx, d.DraftID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(again.Data["history"]))
}

func TestMemoryStorage_CaseCache(t *testing.T) {
	store := NewMemoryStorage()
	cache := store.CaseCache()
	ctx := context.Background()

	_, err := cache.Get(ctx, "case-1")
	assert.ErrorIs(t, err, casecache.ErrNotFound)

	require.NoError(t, cache.Put(ctx, &casecache.CachedCase{
		CaseID:    "case-1",
		Document:  casesheet.Document{"history": json.RawMessage(`{"a":1}`)},
		FetchedAt: time.Now(),
	}))

	got, err := cache.Get(ctx, "case-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got.Document["history"]))

	// Overwrite wholesale.
	require.NoError(t, cache.Put(ctx, &casecache.CachedCase{
		CaseID:    "case-1",
		Document:  casesheet.Document{"history": json.RawMessage(`{"a":2}`)},
		FetchedAt: time.Now(),
	}))
	got, err = cache.Get(ctx, "case-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(got.Document["history"]))
}
