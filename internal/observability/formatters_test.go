package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/marek/jobscout/internal/maintain"
	"github.com/marek/jobscout/internal/pipeline"
	"github.com/marek/jobscout/internal/store"
)

func TestPrintIngestReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	snapID := uuid.New()
	p.PrintIngestReport(&pipeline.Report{
		Created:    3,
		Updated:    1,
		Duplicates: 2,
		PageURL:    "https://board.example/jobs",
		Site:       "upwork",
		SnapshotID: &snapID,
	})
	output := buf.String()

	assert.Contains(t, output, "INGEST PASS")
	assert.Contains(t, output, "Created:    3")
	assert.Contains(t, output, "Duplicates: 2")
	assert.Contains(t, output, "upwork")
}

func TestPrintIngestReportAborted(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintIngestReport(&pipeline.Report{Reason: "no pages open in browser"})
	output := buf.String()

	assert.Contains(t, output, "Aborted:")
	assert.Contains(t, output, "no pages open")
	assert.NotContains(t, output, "Created:")
}

func TestPrintMaintenanceReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintMaintenanceReport(&maintain.Report{
		Dedupe:                 &store.DedupeStats{GroupsCollapsed: 2, RecordsRemoved: 3},
		SnapshotsPrunedByAge:   5,
		SnapshotsPrunedByCount: 1,
		Vacuumed:               true,
		Health:                 &store.Health{Records: 10, PageCount: 20, IntegrityOK: true},
	})
	output := buf.String()

	assert.Contains(t, output, "MAINTENANCE")
	assert.Contains(t, output, "groups collapsed: 2")
	assert.Contains(t, output, "Snapshots pruned (age):     5")
	assert.Contains(t, output, "Vacuumed")
	assert.Contains(t, output, "STORE HEALTH")
	assert.Contains(t, output, "Integrity:  ok")
}

func TestPrintHealthFailure(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintHealth(&store.Health{IntegrityOK: false, IntegrityMsg: "page 3 corrupt"})
	assert.Contains(t, buf.String(), "FAILED")
}

func TestPrintNilReportsAreQuiet(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintIngestReport(nil)
	p.PrintMaintenanceReport(nil)
	p.PrintCheckReport(nil)
	p.PrintHealth(nil)

	assert.Equal(t, 0, buf.Len())
}

func TestBoxTruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintIngestReport(&pipeline.Report{
		PageURL: "https://board.example/" + strings.Repeat("x", 120),
		Site:    "generic",
	})

	for _, line := range strings.Split(buf.String(), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
}
