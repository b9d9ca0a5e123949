// Package store provides SQLite-backed persistence for scraped records,
// raw page snapshots, and generated artifacts.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Sentinel errors surfaced to callers. ErrStoreUnavailable is fatal and must
// be reported verbatim; ErrConstraintViolation aborts the current row only.
var (
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrConstraintViolation = errors.New("constraint violation")
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id          TEXT PRIMARY KEY,
	natural_key TEXT NOT NULL,
	source      TEXT NOT NULL DEFAULT 'generic',
	url         TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	budget      TEXT NOT NULL DEFAULT '',
	skills      TEXT NOT NULL DEFAULT '[]',
	posted_at   TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_natural_key ON records(natural_key);
CREATE INDEX IF NOT EXISTS idx_records_created_at ON records(created_at);

CREATE TABLE IF NOT EXISTS snapshots (
	id             TEXT PRIMARY KEY,
	record_id      TEXT REFERENCES records(id) ON DELETE CASCADE,
	content        TEXT NOT NULL,
	content_length INTEGER NOT NULL,
	page_url       TEXT NOT NULL DEFAULT '',
	page_title     TEXT NOT NULL DEFAULT '',
	captured_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_captured_at ON snapshots(captured_at);
CREATE INDEX IF NOT EXISTS idx_snapshots_record_id ON snapshots(record_id);

CREATE TABLE IF NOT EXISTS artifacts (
	id            TEXT PRIMARY KEY,
	record_id     TEXT NOT NULL REFERENCES records(id) ON DELETE CASCADE,
	provider      TEXT NOT NULL,
	content       TEXT NOT NULL,
	model_version TEXT NOT NULL DEFAULT '',
	used          INTEGER NOT NULL DEFAULT 0,
	created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_artifacts_record_provider ON artifacts(record_id, provider);
`

// Note: natural_key deliberately has no UNIQUE constraint. Uniqueness is
// enforced by the Upsert transaction; the Dedupe sweep collapses any rows
// that slipped past it (e.g. written by an older tool against the same file).

// Store wraps an SQLite database holding records, snapshots, and artifacts.
type Store struct {
	db   *sql.DB
	path string

	// now is swappable in tests for deterministic timestamps.
	now func() time.Time
}

// Open opens (creating if needed) the store at path and applies the schema.
// Pragmas follow the usual production set: foreign keys on, WAL, busy timeout.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	// Pragmas bind per connection; a single pooled connection keeps them in
	// force for every query.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: apply schema: %v", ErrStoreUnavailable, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return &Store{db: db, path: path, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the file path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// SetNowFunc overrides the store's clock. Tests use this to back-date writes.
func (s *Store) SetNowFunc(now func() time.Time) {
	s.now = now
}

// begin starts a transaction, mapping open failures to ErrStoreUnavailable.
func (s *Store) begin(ctx context.Context) (*sql.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %v", ErrStoreUnavailable, err)
	}
	return tx, nil
}

// wrapRowErr maps driver errors onto the store's error taxonomy.
func wrapRowErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isConstraintErr(err) {
		return fmt.Errorf("%w: %s: %v", ErrConstraintViolation, op, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func isConstraintErr(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "constraint")
}

func toUnix(t time.Time) int64 { return t.UnixNano() }

func fromUnix(n int64) time.Time { return time.Unix(0, n).UTC() }
