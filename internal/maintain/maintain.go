// Package maintain runs the periodic housekeeping job over a store: duplicate
// collapse, retention pruning, and a health summary.
package maintain

import (
	"context"
	"fmt"
	"time"

	"github.com/marek/jobscout/internal/store"
)

// Options configures one maintenance run. Zero windows disable the
// corresponding prune rule.
type Options struct {
	SnapshotRetention   time.Duration
	MaxSnapshotCount    int
	RecordRetention     time.Duration
	IncompleteThreshold time.Duration
	Vacuum              bool
	Verbose             bool
}

// Report summarizes one maintenance run.
type Report struct {
	Dedupe *store.DedupeStats

	SnapshotsPrunedByAge   int
	SnapshotsPrunedByCount int
	RecordsPruned          int
	IncompletePruned       int
	Vacuumed               bool

	Health *store.Health
}

// CheckReport is the read-only counterpart produced by CheckOnly.
type CheckReport struct {
	Duplicates *store.DuplicateStats
	Health     *store.Health
}

// Run executes the maintenance sequence: dedupe sweep, then each configured
// prune rule, then the health summary. Every step is its own transaction, so
// interrupting between steps leaves the store consistent.
func Run(ctx context.Context, s *store.Store, opts Options) (*Report, error) {
	report := &Report{}

	dedupe, err := s.Dedupe(ctx)
	if err != nil {
		return report, fmt.Errorf("dedupe sweep failed: %w", err)
	}
	report.Dedupe = dedupe
	if opts.Verbose {
		fmt.Printf("[VERBOSE] Dedupe: %d groups collapsed, %d records removed\n",
			dedupe.GroupsCollapsed, dedupe.RecordsRemoved)
	}

	if opts.SnapshotRetention > 0 {
		n, err := s.PruneSnapshotsOlderThan(ctx, opts.SnapshotRetention)
		if err != nil {
			return report, fmt.Errorf("snapshot age prune failed: %w", err)
		}
		report.SnapshotsPrunedByAge = n
	}

	if opts.MaxSnapshotCount > 0 {
		n, err := s.PruneSnapshotsMaxCount(ctx, opts.MaxSnapshotCount)
		if err != nil {
			return report, fmt.Errorf("snapshot count prune failed: %w", err)
		}
		report.SnapshotsPrunedByCount = n
	}

	if opts.RecordRetention > 0 {
		n, err := s.PruneRecordsOlderThan(ctx, opts.RecordRetention)
		if err != nil {
			return report, fmt.Errorf("record prune failed: %w", err)
		}
		report.RecordsPruned = n
	}

	if opts.IncompleteThreshold > 0 {
		n, err := s.PruneIncompleteRecords(ctx, opts.IncompleteThreshold)
		if err != nil {
			return report, fmt.Errorf("incomplete record prune failed: %w", err)
		}
		report.IncompletePruned = n
	}

	if opts.Vacuum {
		if err := s.Vacuum(ctx); err != nil {
			return report, fmt.Errorf("vacuum failed: %w", err)
		}
		report.Vacuumed = true
	}

	health, err := s.Health(ctx)
	if err != nil {
		return report, fmt.Errorf("health check failed: %w", err)
	}
	report.Health = health

	return report, nil
}

// CheckOnly inspects the store without mutating it: duplicate statistics plus
// the health summary.
func CheckOnly(ctx context.Context, s *store.Store) (*CheckReport, error) {
	dupes, err := s.DuplicateStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("duplicate check failed: %w", err)
	}

	health, err := s.Health(ctx)
	if err != nil {
		return nil, fmt.Errorf("health check failed: %w", err)
	}

	return &CheckReport{Duplicates: dupes, Health: health}, nil
}
