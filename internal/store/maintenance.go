package store

import (
	"context"
	"os"
	"time"
)

// Dedupe collapses records sharing a natural key into the earliest-created
// row. Snapshots and artifacts owned by the removed duplicates are re-linked
// to the retained row before deletion, so nothing is orphaned. The whole
// sweep is one transaction and is idempotent.
func (s *Store) Dedupe(ctx context.Context) (*DedupeStats, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx,
		`SELECT natural_key FROM records GROUP BY natural_key HAVING COUNT(*) > 1`)
	if err != nil {
		return nil, wrapRowErr("find duplicate groups", err)
	}
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			rows.Close()
			return nil, wrapRowErr("scan duplicate group", err)
		}
		keys = append(keys, k)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapRowErr("iterate duplicate groups", err)
	}

	stats := &DedupeStats{}
	for _, key := range keys {
		var keepID string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM records WHERE natural_key = ? ORDER BY created_at ASC, id ASC LIMIT 1`,
			key).Scan(&keepID)
		if err != nil {
			return nil, wrapRowErr("pick retained record", err)
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE snapshots SET record_id = ?
			 WHERE record_id IN (SELECT id FROM records WHERE natural_key = ? AND id != ?)`,
			keepID, key, keepID)
		if err != nil {
			return nil, wrapRowErr("relink snapshots", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			stats.SnapshotsRelinked += int(n)
		}

		res, err = tx.ExecContext(ctx,
			`UPDATE artifacts SET record_id = ?
			 WHERE record_id IN (SELECT id FROM records WHERE natural_key = ? AND id != ?)`,
			keepID, key, keepID)
		if err != nil {
			return nil, wrapRowErr("relink artifacts", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			stats.ArtifactsRelinked += int(n)
		}

		res, err = tx.ExecContext(ctx,
			`DELETE FROM records WHERE natural_key = ? AND id != ?`, key, keepID)
		if err != nil {
			return nil, wrapRowErr("delete duplicate records", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			stats.RecordsRemoved += int(n)
			stats.GroupsCollapsed++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, wrapRowErr("commit dedupe", err)
	}
	return stats, nil
}

// DuplicateStats reports natural-key collisions without mutating anything.
func (s *Store) DuplicateStats(ctx context.Context) (*DuplicateStats, error) {
	stats := &DuplicateStats{}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&stats.TotalRecords); err != nil {
		return nil, wrapRowErr("count records", err)
	}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(n - 1), 0) FROM (
			SELECT COUNT(*) AS n FROM records GROUP BY natural_key HAVING COUNT(*) > 1
		 )`).Scan(&stats.DuplicateGroups, &stats.DuplicateRows)
	if err != nil {
		return nil, wrapRowErr("count duplicate groups", err)
	}
	return stats, nil
}

// PruneSnapshotsOlderThan deletes snapshots captured before now-window, in
// one transaction. Returns the number deleted.
func (s *Store) PruneSnapshotsOlderThan(ctx context.Context, window time.Duration) (int, error) {
	cutoff := toUnix(s.now().Add(-window))
	return s.pruneExec(ctx, "prune snapshots by age",
		`DELETE FROM snapshots WHERE captured_at < ?`, cutoff)
}

// PruneSnapshotsMaxCount keeps the max most recently captured snapshots and
// deletes the rest, oldest first, in one transaction.
func (s *Store) PruneSnapshotsMaxCount(ctx context.Context, max int) (int, error) {
	if max < 0 {
		max = 0
	}
	return s.pruneExec(ctx, "prune snapshots by count",
		`DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY captured_at DESC, id DESC LIMIT ?
		 )`, max)
}

// PruneRecordsOlderThan deletes records created before now-window. Their
// snapshots and artifacts cascade away in the same transaction.
func (s *Store) PruneRecordsOlderThan(ctx context.Context, window time.Duration) (int, error) {
	cutoff := toUnix(s.now().Add(-window))
	return s.pruneExec(ctx, "prune records by age",
		`DELETE FROM records WHERE created_at < ?`, cutoff)
}

// PruneIncompleteRecords deletes records older than now-window that own
// neither a snapshot nor an artifact, leftovers of interrupted passes.
// Records with any provenance are never touched.
func (s *Store) PruneIncompleteRecords(ctx context.Context, window time.Duration) (int, error) {
	cutoff := toUnix(s.now().Add(-window))
	return s.pruneExec(ctx, "prune incomplete records",
		`DELETE FROM records
		 WHERE created_at < ?
		   AND NOT EXISTS (SELECT 1 FROM snapshots sn WHERE sn.record_id = records.id)
		   AND NOT EXISTS (SELECT 1 FROM artifacts a WHERE a.record_id = records.id)`,
		cutoff)
}

func (s *Store) pruneExec(ctx context.Context, op, query string, args ...any) (int, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, wrapRowErr(op, err)
	}
	n, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, wrapRowErr("commit "+op, err)
	}
	return int(n), nil
}

// Health gathers row counts, file size, a fragmentation estimate, and the
// result of SQLite's integrity check.
func (s *Store) Health(ctx context.Context) (*Health, error) {
	h := &Health{}

	var err error
	if h.Records, err = s.CountRecords(ctx); err != nil {
		return nil, err
	}
	if h.Snapshots, err = s.CountSnapshots(ctx); err != nil {
		return nil, err
	}
	if h.Artifacts, err = s.CountArtifacts(ctx); err != nil {
		return nil, err
	}

	if info, err := os.Stat(s.path); err == nil {
		h.FileSizeBytes = info.Size()
	}

	if err := s.db.QueryRowContext(ctx, `PRAGMA page_count`).Scan(&h.PageCount); err != nil {
		return nil, wrapRowErr("read page count", err)
	}
	if err := s.db.QueryRowContext(ctx, `PRAGMA freelist_count`).Scan(&h.FreelistCount); err != nil {
		return nil, wrapRowErr("read freelist count", err)
	}

	var integrity string
	if err := s.db.QueryRowContext(ctx, `PRAGMA integrity_check`).Scan(&integrity); err != nil {
		return nil, wrapRowErr("run integrity check", err)
	}
	h.IntegrityOK = integrity == "ok"
	if !h.IntegrityOK {
		h.IntegrityMsg = integrity
	}

	return h, nil
}

// Vacuum rebuilds the database file, reclaiming free pages.
func (s *Store) Vacuum(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `VACUUM`); err != nil {
		return wrapRowErr("vacuum", err)
	}
	return nil
}
