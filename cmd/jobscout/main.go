// Package main provides the entry point for the jobscout CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/marek/jobscout/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "jobscout",
	Short: "Job listing scraper and tracker",
	Long:  "jobscout captures job listing pages from an already running browser, extracts structured records with deduplication, and keeps raw snapshots for re-parsing.",
}

var (
	configPath string
	storePath  string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to JSON config file")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Path to the store database file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveConfig builds the effective configuration: file values, environment
// overlay, defaults, then CLI flags on top.
func resolveConfig() (config.Config, error) {
	var cfg config.Config

	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = *loaded
	}

	cfg.ApplyEnv()
	merged := cfg.MergeWithDefaults(config.DefaultConfig())

	if storePath != "" {
		merged.StorePath = storePath
	}
	if verbose {
		merged.Verbose = true
	}

	if err := merged.Validate(); err != nil {
		return merged, err
	}
	return merged, nil
}
