package casecache

import (
	"time"

	"casepad/internal/domain/casesheet"
)

// CachedCase is the last full server snapshot of a committed case. It is a
// read enrichment layer only: never authoritative over the server, never
// written back. Its job is to fill in fields the list/summary endpoints omit
// when building export payloads.
type CachedCase struct {
	CaseID    string             `json:"case_id"`
	Document  casesheet.Document `json:"document"`
	FetchedAt time.Time          `json:"fetched_at"`
}
