package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/marek/jobscout/internal/observability"
	"github.com/marek/jobscout/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store contents and health",
	Long:  "Print recent records, duplicate statistics, and the store health summary. Read-only; does not take the store lock.",
	RunE:  runStatus,
}

var statusLimit int

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "Number of recent records to list")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	s, err := store.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	defer s.Close()

	// All three reads are independent, so gather them concurrently.
	var (
		records []store.Record
		dupes   *store.DuplicateStats
		health  *store.Health
	)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		records, err = s.ListRecords(ctx, statusLimit)
		return err
	})
	g.Go(func() error {
		var err error
		dupes, err = s.DuplicateStats(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		health, err = s.Health(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("Store: %s\n\n", s.Path())

	if len(records) == 0 {
		fmt.Println("No records yet.")
	} else {
		fmt.Printf("Recent records (%d of %d):\n", len(records), dupes.TotalRecords)
		for _, rec := range records {
			title := rec.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("  %s  [%s]  %s\n", rec.CreatedAt.Format("2006-01-02 15:04"), rec.Source, title)
		}
	}
	fmt.Println()

	if dupes.DuplicateGroups > 0 {
		fmt.Printf("Warning: %d duplicate groups (%d extra rows); run maintain\n\n",
			dupes.DuplicateGroups, dupes.DuplicateRows)
	}

	observability.NewPrinter(os.Stdout).PrintHealth(health)
	return nil
}
