// Package pipeline provides the high-level orchestration for one ingestion
// pass: capture a page from the running browser, extract candidates, and
// persist records plus the raw snapshot.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/marek/jobscout/internal/browser"
	"github.com/marek/jobscout/internal/extract"
	"github.com/marek/jobscout/internal/store"
)

// RunOptions holds configuration for running one ingestion pass.
type RunOptions struct {
	Session browser.Session
	Store   *store.Store

	// Rules overrides site auto-detection when set.
	Rules *extract.RuleSet

	MinContentLength int
	Verbose          bool
}

// Report summarizes what one pass did. It is always returned, including on
// aborted passes, so callers can print what happened.
type Report struct {
	Created    int
	Updated    int
	Duplicates int
	Dropped    int

	PageURL    string
	PageTitle  string
	Site       string
	SnapshotID *uuid.UUID

	// Reason is set when the pass aborted before writing anything.
	Reason string
}

// Aborted reports whether the pass stopped before any writes.
func (r *Report) Aborted() bool {
	return r.Reason != ""
}

// Run executes one ingestion pass. Capture failures (unreachable browser, no
// open pages, content below the minimum) abort before any write; the report
// carries the reason alongside the returned error. Extraction that yields
// nothing still stores the snapshot, unlinked, so the page can be re-parsed
// later with better rules.
func Run(ctx context.Context, opts RunOptions) (*Report, error) {
	report := &Report{}

	pages, err := opts.Session.ListPages(ctx)
	if err != nil {
		report.Reason = err.Error()
		return report, err
	}

	page, err := browser.PickPage(pages)
	if err != nil {
		report.Reason = err.Error()
		return report, err
	}
	report.PageURL = page.URL
	report.PageTitle = page.Title

	if opts.Verbose {
		fmt.Printf("[VERBOSE] Capturing page: %s (%s)\n", page.Title, page.URL)
	}

	content, err := opts.Session.Content(ctx, page.ID)
	if err != nil {
		report.Reason = err.Error()
		return report, err
	}

	if len(content) < opts.MinContentLength {
		err := fmt.Errorf("%w: %d bytes, minimum %d",
			browser.ErrContentTooSmall, len(content), opts.MinContentLength)
		report.Reason = err.Error()
		return report, err
	}

	rules := opts.Rules
	if rules == nil {
		rules = extract.RulesForSite(extract.DetectSite(content, page.URL))
	}
	report.Site = rules.Site

	candidates, stats, err := extract.Records(content, rules)
	if err != nil {
		report.Reason = err.Error()
		return report, err
	}
	report.Dropped = stats.DroppedNoKey

	if opts.Verbose {
		fmt.Printf("[VERBOSE] Extracted %d candidates from %d elements (selector %q)\n",
			stats.Extracted, stats.ElementsFound, stats.Selector)
	}

	var firstCreated *uuid.UUID
	seen := make(map[string]bool)
	for _, cand := range candidates {
		if seen[cand.NaturalKey] {
			report.Duplicates++
			continue
		}
		seen[cand.NaturalKey] = true

		rec, created, err := opts.Store.Upsert(ctx, &store.RecordInput{
			NaturalKey:  cand.NaturalKey,
			Source:      cand.Site,
			URL:         cand.URL,
			Title:       cand.Title,
			Description: cand.Description,
			Budget:      cand.Budget,
			Skills:      cand.Skills,
			PostedAt:    cand.PostedAt,
		})
		if err != nil {
			// A bad row aborts that row only; anything else is fatal.
			if errors.Is(err, store.ErrConstraintViolation) {
				report.Dropped++
				continue
			}
			return report, fmt.Errorf("failed to store candidate %q: %w", cand.NaturalKey, err)
		}

		if created {
			report.Created++
			if firstCreated == nil {
				id := rec.ID
				firstCreated = &id
			}
		} else {
			report.Updated++
		}
	}

	snap, err := opts.Store.AddSnapshot(ctx, firstCreated, content, page.URL, page.Title)
	if err != nil {
		return report, fmt.Errorf("failed to store snapshot: %w", err)
	}
	report.SnapshotID = &snap.ID

	return report, nil
}
