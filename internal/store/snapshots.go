package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// AddSnapshot appends a raw page capture. recordID may be nil for orphaned
// snapshots. Content is stored as-is; the store performs no size validation.
func (s *Store) AddSnapshot(ctx context.Context, recordID *uuid.UUID, content, pageURL, pageTitle string) (*Snapshot, error) {
	snap := &Snapshot{
		ID:            uuid.New(),
		RecordID:      recordID,
		Content:       content,
		ContentLength: len(content),
		PageURL:       pageURL,
		PageTitle:     pageTitle,
		CapturedAt:    s.now(),
	}

	var recID any
	if recordID != nil {
		recID = recordID.String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, record_id, content, content_length, page_url, page_title, captured_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snap.ID.String(), recID, content, len(content), pageURL, pageTitle, toUnix(snap.CapturedAt),
	)
	if err != nil {
		return nil, wrapRowErr("add snapshot", err)
	}
	return snap, nil
}

// CountSnapshots returns the total number of snapshots.
func (s *Store) CountSnapshots(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&n); err != nil {
		return 0, wrapRowErr("count snapshots", err)
	}
	return n, nil
}

// ListSnapshots returns snapshot metadata newest-first without the raw
// content, capped at limit (default 50).
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, record_id, content_length, page_url, page_title, captured_at
		 FROM snapshots ORDER BY captured_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, wrapRowErr("list snapshots", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var (
			snap       Snapshot
			id         string
			recordID   sql.NullString
			capturedAt int64
		)
		if err := rows.Scan(&id, &recordID, &snap.ContentLength, &snap.PageURL, &snap.PageTitle, &capturedAt); err != nil {
			return nil, wrapRowErr("scan snapshot", err)
		}
		snap.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, wrapRowErr("parse snapshot id", err)
		}
		if recordID.Valid {
			rid, err := uuid.Parse(recordID.String)
			if err != nil {
				return nil, wrapRowErr("parse snapshot record id", err)
			}
			snap.RecordID = &rid
		}
		snap.CapturedAt = fromUnix(capturedAt)
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// GetSnapshotContent returns the raw content of one snapshot, or empty string
// with false when absent.
func (s *Store) GetSnapshotContent(ctx context.Context, id uuid.UUID) (string, bool, error) {
	var content string
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM snapshots WHERE id = ?`, id.String()).Scan(&content)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrapRowErr("get snapshot content", err)
	}
	return content, true, nil
}
