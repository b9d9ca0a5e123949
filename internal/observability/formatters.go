// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/marek/jobscout/internal/maintain"
	"github.com/marek/jobscout/internal/pipeline"
	"github.com/marek/jobscout/internal/store"
)

// boxWidth is the default width for formatted output boxes
const boxWidth = 60

// Printer handles formatted report output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintIngestReport outputs a human-readable summary of one ingestion pass.
func (p *Printer) PrintIngestReport(report *pipeline.Report) {
	if report == nil {
		return
	}

	var sb strings.Builder

	if report.Aborted() {
		sb.WriteString(fmt.Sprintf("Aborted:  %s\n", report.Reason))
		if report.PageURL != "" {
			sb.WriteString(fmt.Sprintf("Page:     %s\n", report.PageURL))
		}
		p.printBox("INGEST PASS", strings.TrimSuffix(sb.String(), "\n"))
		return
	}

	sb.WriteString(fmt.Sprintf("Page:       %s\n", report.PageURL))
	sb.WriteString(fmt.Sprintf("Site:       %s\n", report.Site))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Created:    %d\n", report.Created))
	sb.WriteString(fmt.Sprintf("Updated:    %d\n", report.Updated))
	sb.WriteString(fmt.Sprintf("Duplicates: %d\n", report.Duplicates))
	sb.WriteString(fmt.Sprintf("Dropped:    %d\n", report.Dropped))
	if report.SnapshotID != nil {
		sb.WriteString(fmt.Sprintf("Snapshot:   %s\n", report.SnapshotID))
	}

	p.printBox("INGEST PASS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMaintenanceReport outputs a human-readable summary of a maintenance run.
func (p *Printer) PrintMaintenanceReport(report *maintain.Report) {
	if report == nil {
		return
	}

	var sb strings.Builder

	if report.Dedupe != nil {
		sb.WriteString(fmt.Sprintf("Duplicate groups collapsed: %d\n", report.Dedupe.GroupsCollapsed))
		sb.WriteString(fmt.Sprintf("Duplicate records removed:  %d\n", report.Dedupe.RecordsRemoved))
		sb.WriteString(fmt.Sprintf("Snapshots re-linked:        %d\n", report.Dedupe.SnapshotsRelinked))
		sb.WriteString(fmt.Sprintf("Artifacts re-linked:        %d\n", report.Dedupe.ArtifactsRelinked))
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Snapshots pruned (age):     %d\n", report.SnapshotsPrunedByAge))
	sb.WriteString(fmt.Sprintf("Snapshots pruned (count):   %d\n", report.SnapshotsPrunedByCount))
	sb.WriteString(fmt.Sprintf("Records pruned (age):       %d\n", report.RecordsPruned))
	sb.WriteString(fmt.Sprintf("Incomplete records pruned:  %d\n", report.IncompletePruned))
	if report.Vacuumed {
		sb.WriteString("Vacuumed:                   yes\n")
	}

	p.printBox("MAINTENANCE", strings.TrimSuffix(sb.String(), "\n"))

	p.PrintHealth(report.Health)
}

// PrintCheckReport outputs the read-only duplicate check.
func (p *Printer) PrintCheckReport(report *maintain.CheckReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	if report.Duplicates != nil {
		sb.WriteString(fmt.Sprintf("Total records:     %d\n", report.Duplicates.TotalRecords))
		sb.WriteString(fmt.Sprintf("Duplicate groups:  %d\n", report.Duplicates.DuplicateGroups))
		sb.WriteString(fmt.Sprintf("Duplicate rows:    %d\n", report.Duplicates.DuplicateRows))
	}
	p.printBox("DUPLICATE CHECK", strings.TrimSuffix(sb.String(), "\n"))

	p.PrintHealth(report.Health)
}

// PrintHealth outputs the store health summary.
func (p *Printer) PrintHealth(h *store.Health) {
	if h == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Records:    %d\n", h.Records))
	sb.WriteString(fmt.Sprintf("Snapshots:  %d\n", h.Snapshots))
	sb.WriteString(fmt.Sprintf("Artifacts:  %d\n", h.Artifacts))
	sb.WriteString(fmt.Sprintf("File size:  %d bytes\n", h.FileSizeBytes))
	sb.WriteString(fmt.Sprintf("Free pages: %d of %d (%.1f%%)\n",
		h.FreelistCount, h.PageCount, h.FragmentationRatio()*100))
	if h.IntegrityOK {
		sb.WriteString("Integrity:  ok\n")
	} else {
		sb.WriteString(fmt.Sprintf("Integrity:  FAILED: %s\n", h.IntegrityMsg))
	}

	p.printBox("STORE HEALTH", strings.TrimSuffix(sb.String(), "\n"))
}
