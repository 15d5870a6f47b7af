package casecache

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("cached case not found")

// Store is durable on-device storage for full case snapshots, keyed by the
// server case id.
type Store interface {
	// Put unconditionally overwrites the snapshot for a case.
	Put(ctx context.Context, cached *CachedCase) error

	// Get returns the snapshot for a case, or ErrNotFound.
	Get(ctx context.Context, caseID string) (*CachedCase, error)
}
