package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marek/jobscout/internal/browser"
	"github.com/marek/jobscout/internal/extract"
	"github.com/marek/jobscout/internal/observability"
	"github.com/marek/jobscout/internal/pipeline"
	"github.com/marek/jobscout/internal/store"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run one ingestion pass against the open browser page",
	Long:  "Capture the first open page from the running browser's debug port, extract job listings, and store new records plus the raw snapshot.",
	RunE:  runIngest,
}

var rulesPath string

func init() {
	ingestCmd.Flags().StringVar(&rulesPath, "rules", "", "Path to a custom extraction rules JSON file")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	if rulesPath != "" {
		cfg.RulesPath = rulesPath
	}

	// Custom rules are validated before touching the browser or the store.
	var rules *extract.RuleSet
	if cfg.RulesPath != "" {
		rules, err = extract.LoadRuleSet(cfg.RulesPath)
		if err != nil {
			return err
		}
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

	ctx := cmd.Context()

	opts := browser.DefaultOptions()
	opts.SettleDelay = cfg.SettleDelay()
	opts.Verbose = cfg.Verbose

	session, err := browser.Connect(ctx, cfg.BrowserURL, opts)
	if err != nil {
		return err
	}
	defer session.Close()

	report, runErr := pipeline.Run(ctx, pipeline.RunOptions{
		Session:          session,
		Store:            s,
		Rules:            rules,
		MinContentLength: cfg.MinContent(),
		Verbose:          cfg.Verbose,
	})

	observability.NewPrinter(os.Stdout).PrintIngestReport(report)

	if runErr != nil {
		return fmt.Errorf("ingestion pass aborted: %w", runErr)
	}
	return nil
}
