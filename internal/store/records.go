package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

const recordColumns = `id, natural_key, source, url, title, description, budget, skills, posted_at, created_at, updated_at`

// Upsert inserts a record or, when a row with the same natural key already
// exists, updates its mutable fields. The natural key and creation timestamp
// are never overwritten. The whole call runs in one transaction so that
// concurrent writers cannot both insert the same key. Returns the stored
// record and whether a new row was created.
func (s *Store) Upsert(ctx context.Context, input *RecordInput) (*Record, bool, error) {
	if input == nil || input.NaturalKey == "" {
		return nil, false, fmt.Errorf("record natural key is required")
	}

	skillsJSON, err := json.Marshal(emptyIfNil(input.Skills))
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal skills: %w", err)
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now()

	var existingID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM records WHERE natural_key = ? ORDER BY created_at ASC, id ASC LIMIT 1`,
		input.NaturalKey,
	).Scan(&existingID)

	created := false
	var id string

	switch {
	case err == sql.ErrNoRows:
		id = uuid.New().String()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO records (id, natural_key, source, url, title, description, budget, skills, posted_at, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, input.NaturalKey, defaultSource(input.Source), input.URL, input.Title,
			input.Description, input.Budget, string(skillsJSON), input.PostedAt,
			toUnix(now), toUnix(now),
		)
		if err != nil {
			return nil, false, wrapRowErr("insert record", err)
		}
		created = true
	case err != nil:
		return nil, false, wrapRowErr("look up record", err)
	default:
		id = existingID
		_, err = tx.ExecContext(ctx,
			`UPDATE records
			 SET source = ?, url = ?, title = ?, description = ?, budget = ?, skills = ?, posted_at = ?, updated_at = ?
			 WHERE id = ?`,
			defaultSource(input.Source), input.URL, input.Title, input.Description,
			input.Budget, string(skillsJSON), input.PostedAt, toUnix(now), id,
		)
		if err != nil {
			return nil, false, wrapRowErr("update record", err)
		}
	}

	rec, err := scanRecord(tx.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE id = ?`, id))
	if err != nil {
		return nil, false, wrapRowErr("reload record", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, wrapRowErr("commit upsert", err)
	}
	return rec, created, nil
}

// GetByNaturalKey returns the record for a natural key, or nil when absent.
// With duplicates present (pre-dedupe), the earliest-created row wins.
func (s *Store) GetByNaturalKey(ctx context.Context, key string) (*Record, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE natural_key = ?
		 ORDER BY created_at ASC, id ASC LIMIT 1`, key))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapRowErr("get record by natural key", err)
	}
	return rec, nil
}

// GetByID returns the record with the given row id, or nil when absent.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE id = ?`, id.String()))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapRowErr("get record by id", err)
	}
	return rec, nil
}

// ListRecords returns records newest-first, capped at limit (default 50).
func (s *Store) ListRecords(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, wrapRowErr("list records", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, wrapRowErr("scan record", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// CountRecords returns the total number of records.
func (s *Store) CountRecords(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n); err != nil {
		return 0, wrapRowErr("count records", err)
	}
	return n, nil
}

// DeleteRecord removes a record. Its snapshots and artifacts go with it in
// the same transaction via the cascade foreign keys.
func (s *Store) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id.String())
	if err != nil {
		return wrapRowErr("delete record", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("record not found: %s", id)
	}
	return nil
}

// FindLatestWithoutArtifact returns the next record still lacking an artifact
// of the given provider kind. "Latest" follows the project convention:
// oldest-created among the eligible, so every record is eventually covered.
// Returns nil when every record has one.
func (s *Store) FindLatestWithoutArtifact(ctx context.Context, provider string) (*Record, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records r
		 WHERE NOT EXISTS (
			SELECT 1 FROM artifacts a WHERE a.record_id = r.id AND a.provider = ?
		 )
		 ORDER BY r.created_at ASC, r.id ASC
		 LIMIT 1`, provider))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapRowErr("find record without artifact", err)
	}
	return rec, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec        Record
		id         string
		skillsJSON string
		createdAt  int64
		updatedAt  int64
	)
	err := row.Scan(&id, &rec.NaturalKey, &rec.Source, &rec.URL, &rec.Title,
		&rec.Description, &rec.Budget, &skillsJSON, &rec.PostedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	rec.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid record id %q: %w", id, err)
	}
	if skillsJSON != "" {
		if err := json.Unmarshal([]byte(skillsJSON), &rec.Skills); err != nil {
			return nil, fmt.Errorf("invalid skills payload for record %s: %w", id, err)
		}
	}
	rec.CreatedAt = fromUnix(createdAt)
	rec.UpdatedAt = fromUnix(updatedAt)
	return &rec, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func defaultSource(s string) string {
	if s == "" {
		return "generic"
	}
	return s
}
