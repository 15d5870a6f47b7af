package casecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"casepad/internal/domain/casesheet"
)

// Fetcher retrieves the full server representation of a case.
type Fetcher interface {
	FetchCase(ctx context.Context, caseID string) (casesheet.Document, error)
}

// Service is the read-through cache of full case documents. Every successful
// full fetch refreshes the cache; reads merge a fresh fetch over the cached
// snapshot so the server always wins and the cache only fills gaps.
type Service struct {
	store   Store
	fetcher Fetcher
	log     *slog.Logger
	now     func() time.Time
}

func NewService(store Store, fetcher Fetcher, log *slog.Logger) *Service {
	return &Service{
		store:   store,
		fetcher: fetcher,
		log:     log.With("component", "case_cache"),
		now:     time.Now,
	}
}

// Refresh fetches the full case from the server and overwrites the cached
// snapshot. The cache write is best-effort: a storage failure downgrades the
// cache, it does not fail the fetch.
func (s *Service) Refresh(ctx context.Context, caseID string) (casesheet.Document, error) {
	doc, err := s.fetcher.FetchCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("fetch case: %w", err)
	}

	if err := s.store.Put(ctx, &CachedCase{
		CaseID:    caseID,
		Document:  doc,
		FetchedAt: s.now(),
	}); err != nil {
		s.log.Warn("case cache write failed", "case_id", caseID, "error", err)
	}

	return doc, nil
}

// Cached returns the locally cached snapshot without touching the network,
// nil when the case was never cached.
func (s *Service) Cached(ctx context.Context, caseID string) (casesheet.Document, error) {
	cached, err := s.store.Get(ctx, caseID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read case cache: %w", err)
	}
	return cached.Document, nil
}

// BuildExport assembles the document handed to the export flow: a fresh
// server fetch merged over the cached snapshot, server fields winning. When
// the server is unreachable the cached snapshot alone is exported so a
// discharge summary can still be produced on the ward.
func (s *Service) BuildExport(ctx context.Context, caseID string) (casesheet.Document, error) {
	cached, err := s.Cached(ctx, caseID)
	if err != nil {
		return nil, err
	}

	fresh, err := s.Refresh(ctx, caseID)
	if err != nil {
		if cached == nil {
			return nil, err
		}
		s.log.Warn("export falling back to cached snapshot",
			"case_id", caseID, "error", err)
		return cached.Clone(), nil
	}

	return casesheet.Merge(fresh, cached), nil
}
