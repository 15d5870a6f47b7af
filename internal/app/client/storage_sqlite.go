package client

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"casepad/internal/domain/casecache"
	"casepad/internal/domain/casesheet"
	"casepad/internal/domain/draft"
)

// schemaVersion is recorded in PRAGMA user_version so future releases can
// migrate the on-device database in place.
const schemaVersion = 1

// SQLiteStorage is the on-device store backing both drafts and the case
// cache. A draft survives app restarts and crashes: every accepted save is a
// durable write here.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	storage := &SQLiteStorage{db: db}

	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) initSchema() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return err
	}
	if version >= schemaVersion {
		return nil
	}

	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS drafts (
			draft_id TEXT PRIMARY KEY,
			case_id TEXT NOT NULL DEFAULT '',
			data TEXT NOT NULL DEFAULT 'null',
			status TEXT NOT NULL DEFAULT 'draft',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_drafts_case ON drafts(case_id);
		CREATE INDEX IF NOT EXISTS idx_drafts_updated ON drafts(updated_at);

		CREATE TABLE IF NOT EXISTS case_cache (
			case_id TEXT PRIMARY KEY,
			document TEXT NOT NULL,
			fetched_at DATETIME NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion))
	return err
}

func (s *SQLiteStorage) Create(ctx context.Context, caseID string) (*draft.Draft, error) {
	now := time.Now().UTC()
	d := &draft.Draft{
		DraftID:   draft.NewID(),
		CaseID:    caseID,
		Status:    draft.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO drafts (draft_id, case_id, data, status, created_at, updated_at)
		VALUES (?, ?, 'null', ?, ?, ?)
	`, d.DraftID, d.CaseID, d.Status, d.CreatedAt.Format(time.RFC3339Nano), d.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert draft: %w", err)
	}

	return d, nil
}

func (s *SQLiteStorage) Get(ctx context.Context, draftID string) (*draft.Draft, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT draft_id, case_id, data, status, created_at, updated_at
		FROM drafts
		WHERE draft_id = ?
	`, draftID)

	return scanDraft(row)
}

func (s *SQLiteStorage) FindByCaseID(ctx context.Context, caseID string) (*draft.Draft, error) {
	// Most recently updated wins if the single-active-draft invariant was
	// ever broken by a crash between writes.
	row := s.db.QueryRowContext(ctx, `
		SELECT draft_id, case_id, data, status, created_at, updated_at
		FROM drafts
		WHERE case_id = ? AND status = ?
		ORDER BY updated_at DESC
		LIMIT 1
	`, caseID, draft.StatusDraft)

	return scanDraft(row)
}

func (s *SQLiteStorage) Update(ctx context.Context, draftID string, data casesheet.Document) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal draft data: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE drafts SET data = ?, updated_at = ? WHERE draft_id = ?
	`, string(payload), time.Now().UTC().Format(time.RFC3339Nano), draftID)
	if err != nil {
		return fmt.Errorf("update draft: %w", err)
	}

	return affectedOrNotFound(res)
}

func (s *SQLiteStorage) SetCaseID(ctx context.Context, draftID, caseID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE drafts SET case_id = ? WHERE draft_id = ?
	`, caseID, draftID)
	if err != nil {
		return fmt.Errorf("link draft to case: %w", err)
	}

	return affectedOrNotFound(res)
}

func (s *SQLiteStorage) MarkCommitted(ctx context.Context, draftID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE drafts SET status = ?, updated_at = ? WHERE draft_id = ?
	`, draft.StatusCommitted, time.Now().UTC().Format(time.RFC3339Nano), draftID)
	if err != nil {
		return fmt.Errorf("mark draft committed: %w", err)
	}

	return affectedOrNotFound(res)
}

func (s *SQLiteStorage) Delete(ctx context.Context, draftID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM drafts WHERE draft_id = ?", draftID)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) List(ctx context.Context) ([]*draft.Draft, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT draft_id, case_id, data, status, created_at, updated_at
		FROM drafts
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*draft.Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}

	return drafts, rows.Err()
}

func (s *SQLiteStorage) Put(ctx context.Context, cached *casecache.CachedCase) error {
	payload, err := json.Marshal(cached.Document)
	if err != nil {
		return fmt.Errorf("marshal cached case: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO case_cache (case_id, document, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(case_id) DO UPDATE SET document = excluded.document, fetched_at = excluded.fetched_at
	`, cached.CaseID, string(payload), cached.FetchedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert cached case: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) GetCached(ctx context.Context, caseID string) (*casecache.CachedCase, error) {
	var (
		cached    casecache.CachedCase
		document  string
		fetchedAt string
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT case_id, document, fetched_at FROM case_cache WHERE case_id = ?
	`, caseID).Scan(&cached.CaseID, &document, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, casecache.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cached case: %w", err)
	}

	if err := json.Unmarshal([]byte(document), &cached.Document); err != nil {
		return nil, fmt.Errorf("parse cached case: %w", err)
	}
	cached.FetchedAt, _ = time.Parse(time.RFC3339Nano, fetchedAt)

	return &cached, nil
}

// CaseCache adapts the storage to the casecache.Store contract. Needed
// because drafts and cached cases both expose a Get on their store
// interfaces.
func (s *SQLiteStorage) CaseCache() casecache.Store {
	return cacheView{s}
}

type cacheView struct {
	s *SQLiteStorage
}

func (v cacheView) Put(ctx context.Context, cached *casecache.CachedCase) error {
	return v.s.Put(ctx, cached)
}

func (v cacheView) Get(ctx context.Context, caseID string) (*casecache.CachedCase, error) {
	return v.s.GetCached(ctx, caseID)
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(row rowScanner) (*draft.Draft, error) {
	var (
		d         draft.Draft
		data      string
		createdAt string
		updatedAt string
	)

	err := row.Scan(&d.DraftID, &d.CaseID, &data, &d.Status, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, draft.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan draft: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &d.Data); err != nil {
		return nil, fmt.Errorf("parse draft data: %w", err)
	}
	d.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	d.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

	return &d, nil
}

func affectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return draft.ErrNotFound
	}
	return nil
}
