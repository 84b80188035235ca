package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driving"
	"github.com/custodia-labs/quill-cli/internal/logger"
)

// Ensure StyleService implements the interface.
var _ driving.StyleService = (*StyleService)(nil)

// StyleService learns stylistic fingerprints from stored documents.
type StyleService struct {
	docStore     driven.DocumentStore
	profileStore driven.StyleProfileStore
}

// NewStyleService creates a new style service.
func NewStyleService(
	docStore driven.DocumentStore,
	profileStore driven.StyleProfileStore,
) *StyleService {
	return &StyleService{
		docStore:     docStore,
		profileStore: profileStore,
	}
}

// Learn analyses the given documents and stores a new immutable style
// profile aggregated across the sample.
func (s *StyleService) Learn(ctx context.Context, documentIDs []string) (*domain.StyleProfile, error) {
	if len(documentIDs) == 0 {
		return nil, domain.ErrEmptySample
	}

	logger.Section("Style Learning")
	logger.Debug("Sample: %d documents", len(documentIDs))

	analyses := make([]docAnalysis, 0, len(documentIDs))
	for _, id := range documentIDs {
		doc, err := s.docStore.GetDocument(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get document %s: %w", id, err)
		}
		analyses = append(analyses, analyzeDocument(doc.Content))
	}

	profile := &domain.StyleProfile{
		ID:                uuid.NewString(),
		SourceDocumentIDs: append([]string(nil), documentIDs...),
		Features:          aggregateAnalyses(analyses),
		CreatedAt:         time.Now(),
	}

	if err := s.profileStore.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	logger.Info("Learned style profile %s from %d documents (tone: %s)",
		profile.ID, len(documentIDs), profile.Features.Language.Tone)
	return profile, nil
}

// Get retrieves a stored profile by id.
func (s *StyleService) Get(ctx context.Context, profileID string) (*domain.StyleProfile, error) {
	return s.profileStore.GetProfile(ctx, profileID)
}

// List returns all stored profiles, newest first.
func (s *StyleService) List(ctx context.Context) ([]domain.StyleProfile, error) {
	return s.profileStore.ListProfiles(ctx)
}
