package client

import (
	"context"
	"sort"
	"sync"
	"time"

	"casepad/internal/domain/casecache"
	"casepad/internal/domain/casesheet"
	"casepad/internal/domain/draft"
)

// MemoryStorage is the volatile fallback used when the sqlite database
// cannot be opened. Drafts kept here do not survive a restart, so the app
// warns loudly when it runs on top of this.
type MemoryStorage struct {
	mu     sync.RWMutex
	drafts map[string]*draft.Draft
	cache  map[string]*casecache.CachedCase
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		drafts: make(map[string]*draft.Draft),
		cache:  make(map[string]*casecache.CachedCase),
	}
}

func (m *MemoryStorage) Create(_ context.Context, caseID string) (*draft.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	d := &draft.Draft{
		DraftID:   draft.NewID(),
		CaseID:    caseID,
		Status:    draft.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.drafts[d.DraftID] = d
	return cloneDraft(d), nil
}

func (m *MemoryStorage) Get(_ context.Context, draftID string) (*draft.Draft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.drafts[draftID]
	if !ok {
		return nil, draft.ErrNotFound
	}
	return cloneDraft(d), nil
}

func (m *MemoryStorage) FindByCaseID(_ context.Context, caseID string) (*draft.Draft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var best *draft.Draft
	for _, d := range m.drafts {
		if d.CaseID != caseID || d.Status != draft.StatusDraft {
			continue
		}
		if best == nil || d.UpdatedAt.After(best.UpdatedAt) {
			best = d
		}
	}
	if best == nil {
		return nil, draft.ErrNotFound
	}
	return cloneDraft(best), nil
}

func (m *MemoryStorage) Update(_ context.Context, draftID string, data casesheet.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drafts[draftID]
	if !ok {
		return draft.ErrNotFound
	}
	d.Data = data.Clone()
	d.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStorage) SetCaseID(_ context.Context, draftID, caseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drafts[draftID]
	if !ok {
		return draft.ErrNotFound
	}
	d.CaseID = caseID
	return nil
}

func (m *MemoryStorage) MarkCommitted(_ context.Context, draftID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.drafts[draftID]
	if !ok {
		return draft.ErrNotFound
	}
	d.Status = draft.StatusCommitted
	d.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, draftID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.drafts, draftID)
	return nil
}

func (m *MemoryStorage) List(_ context.Context) ([]*draft.Draft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*draft.Draft, 0, len(m.drafts))
	for _, d := range m.drafts {
		out = append(out, cloneDraft(d))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (m *MemoryStorage) Put(_ context.Context, cached *casecache.CachedCase) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cache[cached.CaseID] = &casecache.CachedCase{
		CaseID:    cached.CaseID,
		Document:  cached.Document.Clone(),
		FetchedAt: cached.FetchedAt,
	}
	return nil
}

func (m *MemoryStorage) GetCached(_ context.Context, caseID string) (*casecache.CachedCase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.cache[caseID]
	if !ok {
		return nil, casecache.ErrNotFound
	}
	return &casecache.CachedCase{
		CaseID:    c.CaseID,
		Document:  c.Document.Clone(),
		FetchedAt: c.FetchedAt,
	}, nil
}

// CaseCache adapts the storage to the casecache.Store contract, mirroring
// SQLiteStorage.
func (m *MemoryStorage) CaseCache() casecache.Store {
	return memCacheView{m}
}

type memCacheView struct {
	m *MemoryStorage
}

func (v memCacheView) Put(ctx context.Context, cached *casecache.CachedCase) error {
	return v.m.Put(ctx, cached)
}

func (v memCacheView) Get(ctx context.Context, caseID string) (*casecache.CachedCase, error) {
	return v.m.GetCached(ctx, caseID)
}

func cloneDraft(d *draft.Draft) *draft.Draft {
	out := *d
	out.Data = d.Data.Clone()
	return &out
}
