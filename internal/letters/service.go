package letters

import (
	"context"
	"fmt"

	"github.com/marek/jobscout/internal/store"
)

// Service ties a provider to the store: pick the next uncovered record,
// generate, persist.
type Service struct {
	store    *store.Store
	provider Provider
}

// NewService creates a letter generation service.
func NewService(s *store.Store, p Provider) *Service {
	return &Service{store: s, provider: p}
}

// GenerateNext generates an artifact for the next record lacking one of this
// provider's kind. Returns ErrNothingPending when every record is covered.
// Eligibility flips as a side effect of saving, so repeated calls walk the
// backlog oldest-first.
func (s *Service) GenerateNext(ctx context.Context) (*store.Artifact, *store.Record, error) {
	rec, err := s.store.FindLatestWithoutArtifact(ctx, s.provider.Kind())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find pending record: %w", err)
	}
	if rec == nil {
		return nil, nil, ErrNothingPending
	}

	text, modelVersion, err := s.provider.Generate(ctx, rec)
	if err != nil {
		return nil, rec, fmt.Errorf("generation failed for %q: %w", rec.Title, err)
	}

	art, err := s.store.SaveArtifact(ctx, rec.ID, s.provider.Kind(), text, modelVersion)
	if err != nil {
		return nil, rec, fmt.Errorf("failed to save artifact: %w", err)
	}

	return art, rec, nil
}
