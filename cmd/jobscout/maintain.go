package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/marek/jobscout/internal/maintain"
	"github.com/marek/jobscout/internal/observability"
	"github.com/marek/jobscout/internal/store"
)

var maintainCmd = &cobra.Command{
	Use:   "maintain",
	Short: "Run the housekeeping job: dedupe, prune, health check",
	Long:  "Collapse duplicate records, apply the configured retention rules to snapshots and records, and report store health.",
	RunE:  runMaintain,
}

var (
	checkOnly bool
	doVacuum  bool
)

func init() {
	maintainCmd.Flags().BoolVar(&checkOnly, "check-only", false, "Report duplicates and health without changing anything")
	maintainCmd.Flags().BoolVar(&doVacuum, "vacuum", false, "Rebuild the database file after pruning")

	rootCmd.AddCommand(maintainCmd)
}

func runMaintain(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	printer := observability.NewPrinter(os.Stdout)

	if checkOnly {
		s, err := store.Open(cfg.StorePath)
		if err != nil {
			return err
		}
		defer s.Close()

		report, err := maintain.CheckOnly(ctx, s)
		if err != nil {
			return err
		}
		printer.PrintCheckReport(report)
		return nil
	}

	lock, err := store.AcquireLock(cfg.StorePath)
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	s, err := store.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := maintain.Run(ctx, s, maintain.Options{
		SnapshotRetention:   cfg.SnapshotRetention(),
		MaxSnapshotCount:    cfg.SnapshotCap(),
		RecordRetention:     cfg.RecordRetention(),
		IncompleteThreshold: cfg.IncompleteThreshold(),
		Vacuum:              doVacuum,
		Verbose:             cfg.Verbose,
	})
	if err != nil {
		return err
	}

	printer.PrintMaintenanceReport(report)
	return nil
}
