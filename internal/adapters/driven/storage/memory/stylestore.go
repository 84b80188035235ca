package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driven"
)

// Ensure StyleProfileStore implements the interface.
var _ driven.StyleProfileStore = (*StyleProfileStore)(nil)

// StyleProfileStore is an in-memory implementation of driven.StyleProfileStore.
type StyleProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]domain.StyleProfile
}

// NewStyleProfileStore creates a new in-memory style profile store.
func NewStyleProfileStore() *StyleProfileStore {
	return &StyleProfileStore{
		profiles: make(map[string]domain.StyleProfile),
	}
}

// SaveProfile stores a profile.
func (s *StyleProfileStore) SaveProfile(_ context.Context, profile *domain.StyleProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ID] = *profile
	return nil
}

// GetProfile retrieves a profile by ID.
func (s *StyleProfileStore) GetProfile(_ context.Context, id string) (*domain.StyleProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &profile, nil
}

// ListProfiles returns all stored profiles, newest first.
func (s *StyleProfileStore) ListProfiles(_ context.Context) ([]domain.StyleProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profiles := make([]domain.StyleProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].CreatedAt.After(profiles[j].CreatedAt)
	})
	return profiles, nil
}
