package store

import (
	"time"

	"github.com/google/uuid"
)

// Record is a structured row extracted from a scraped page, identified by a
// business-level natural key (job UID or canonical URL) rather than its row id.
type Record struct {
	ID          uuid.UUID `json:"id"`
	NaturalKey  string    `json:"natural_key"`
	Source      string    `json:"source"`
	URL         string    `json:"url,omitempty"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Budget      string    `json:"budget,omitempty"`
	Skills      []string  `json:"skills,omitempty"`
	PostedAt    string    `json:"posted_at,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RecordInput holds the mutable fields accepted by Upsert. The natural key is
// the only required field; everything else degrades to empty values.
type RecordInput struct {
	NaturalKey  string
	Source      string
	URL         string
	Title       string
	Description string
	Budget      string
	Skills      []string
	PostedAt    string
}

// Snapshot is a timestamped raw capture of a scraped document. RecordID is
// nil for orphaned snapshots (a pass that yielded no new records).
type Snapshot struct {
	ID            uuid.UUID  `json:"id"`
	RecordID      *uuid.UUID `json:"record_id,omitempty"`
	Content       string     `json:"content,omitempty"`
	ContentLength int        `json:"content_length"`
	PageURL       string     `json:"page_url,omitempty"`
	PageTitle     string     `json:"page_title,omitempty"`
	CapturedAt    time.Time  `json:"captured_at"`
}

// Artifact is a generated text output (cover letter, chat reply) attached to
// a record. Provider identifies the generator kind.
type Artifact struct {
	ID           uuid.UUID `json:"id"`
	RecordID     uuid.UUID `json:"record_id"`
	Provider     string    `json:"provider"`
	Content      string    `json:"content"`
	ModelVersion string    `json:"model_version,omitempty"`
	Used         bool      `json:"used"`
	CreatedAt    time.Time `json:"created_at"`
}

// DuplicateStats summarizes natural-key collisions without mutating anything.
type DuplicateStats struct {
	TotalRecords    int `json:"total_records"`
	DuplicateGroups int `json:"duplicate_groups"`
	DuplicateRows   int `json:"duplicate_rows"`
}

// DedupeStats reports what a dedupe sweep changed.
type DedupeStats struct {
	GroupsCollapsed   int `json:"groups_collapsed"`
	RecordsRemoved    int `json:"records_removed"`
	SnapshotsRelinked int `json:"snapshots_relinked"`
	ArtifactsRelinked int `json:"artifacts_relinked"`
}

// Health is a point-in-time summary of the store, reported by the
// maintenance job and the status command.
type Health struct {
	Records       int    `json:"records"`
	Snapshots     int    `json:"snapshots"`
	Artifacts     int    `json:"artifacts"`
	FileSizeBytes int64  `json:"file_size_bytes"`
	PageCount     int64  `json:"page_count"`
	FreelistCount int64  `json:"freelist_count"`
	IntegrityOK   bool   `json:"integrity_ok"`
	IntegrityMsg  string `json:"integrity_msg,omitempty"`
}

// FragmentationRatio estimates the share of the database file occupied by
// free pages. Zero when the file is empty.
func (h Health) FragmentationRatio() float64 {
	if h.PageCount == 0 {
		return 0
	}
	return float64(h.FreelistCount) / float64(h.PageCount)
}
