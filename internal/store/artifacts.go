package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SaveArtifact stores a generated text for a record. The owning record must
// exist; the foreign key rejects dangling references.
func (s *Store) SaveArtifact(ctx context.Context, recordID uuid.UUID, provider, content, modelVersion string) (*Artifact, error) {
	if provider == "" {
		return nil, fmt.Errorf("artifact provider is required")
	}

	art := &Artifact{
		ID:           uuid.New(),
		RecordID:     recordID,
		Provider:     provider,
		Content:      content,
		ModelVersion: modelVersion,
		CreatedAt:    s.now(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO artifacts (id, record_id, provider, content, model_version, used, created_at)
		 VALUES (?, ?, ?, ?, ?, 0, ?)`,
		art.ID.String(), recordID.String(), provider, content, modelVersion, toUnix(art.CreatedAt),
	)
	if err != nil {
		return nil, wrapRowErr("save artifact", err)
	}
	return art, nil
}

// MarkArtifactUsed flags an artifact as consumed by a downstream step.
func (s *Store) MarkArtifactUsed(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE artifacts SET used = 1 WHERE id = ?`, id.String())
	if err != nil {
		return wrapRowErr("mark artifact used", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("artifact not found: %s", id)
	}
	return nil
}

// ListArtifacts returns artifacts for a record, oldest-first.
func (s *Store) ListArtifacts(ctx context.Context, recordID uuid.UUID) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, record_id, provider, content, model_version, used, created_at
		 FROM artifacts WHERE record_id = ? ORDER BY created_at ASC, id ASC`,
		recordID.String())
	if err != nil {
		return nil, wrapRowErr("list artifacts", err)
	}
	defer rows.Close()

	var arts []Artifact
	for rows.Next() {
		var (
			art       Artifact
			id        string
			recID     string
			used      int
			createdAt int64
		)
		if err := rows.Scan(&id, &recID, &art.Provider, &art.Content, &art.ModelVersion, &used, &createdAt); err != nil {
			return nil, wrapRowErr("scan artifact", err)
		}
		art.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, wrapRowErr("parse artifact id", err)
		}
		art.RecordID, err = uuid.Parse(recID)
		if err != nil {
			return nil, wrapRowErr("parse artifact record id", err)
		}
		art.Used = used != 0
		art.CreatedAt = fromUnix(createdAt)
		arts = append(arts, art)
	}
	return arts, rows.Err()
}

// CountArtifacts returns the total number of artifacts.
func (s *Store) CountArtifacts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM artifacts`).Scan(&n); err != nil {
		return 0, wrapRowErr("count artifacts", err)
	}
	return n, nil
}

// HasArtifact reports whether a record already has an artifact of the given
// provider kind.
func (s *Store) HasArtifact(ctx context.Context, recordID uuid.UUID, provider string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM artifacts WHERE record_id = ? AND provider = ?`,
		recordID.String(), provider).Scan(&n)
	if err != nil {
		return false, wrapRowErr("check artifact", err)
	}
	return n > 0, nil
}
