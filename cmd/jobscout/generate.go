package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marek/jobscout/internal/letters"
	"github.com/marek/jobscout/internal/store"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a cover letter for the next uncovered record",
	Long:  "Pick the oldest record that has no generated letter yet, generate one, and store it as an artifact.",
	RunE:  runGenerate,
}

var (
	providerName string
	markUsed     bool
)

func init() {
	generateCmd.Flags().StringVar(&providerName, "provider", letters.GeminiKind, "Generation provider")
	generateCmd.Flags().BoolVar(&markUsed, "mark-used", false, "Flag the generated letter as consumed immediately")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	if providerName != letters.GeminiKind {
		return fmt.Errorf("unknown provider %q", providerName)
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("API key is required for generation; set api_key in config or JOBSCOUT_API_KEY")
	}

	s, err := store.Open(cfg.StorePath)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()

	provider, err := letters.NewGemini(ctx, cfg.APIKey, letters.DefaultGeminiConfig())
	if err != nil {
		return err
	}
	defer func() { _ = provider.Close() }()

	art, rec, err := letters.NewService(s, provider).GenerateNext(ctx)
	if errors.Is(err, letters.ErrNothingPending) {
		fmt.Println("Every record already has a letter; nothing to do.")
		return nil
	}
	if err != nil {
		return err
	}

	if markUsed {
		if err := s.MarkArtifactUsed(ctx, art.ID); err != nil {
			return err
		}
	}

	fmt.Printf("Generated letter for: %s\n", rec.Title)
	fmt.Printf("Record:   %s\n", rec.ID)
	fmt.Printf("Artifact: %s (%s)\n\n", art.ID, art.ModelVersion)
	fmt.Println(art.Content)
	return nil
}
