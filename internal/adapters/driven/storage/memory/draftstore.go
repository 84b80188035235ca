package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driven"
)

// Ensure DraftSessionStore implements the interface.
var _ driven.DraftSessionStore = (*DraftSessionStore)(nil)

// DraftSessionStore is an in-memory implementation of driven.DraftSessionStore.
type DraftSessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.DraftSession
}

// NewDraftSessionStore creates a new in-memory draft session store.
func NewDraftSessionStore() *DraftSessionStore {
	return &DraftSessionStore{
		sessions: make(map[string]domain.DraftSession),
	}
}

// SaveSession stores or updates a session with its revisions.
func (s *DraftSessionStore) SaveSession(_ context.Context, session *domain.DraftSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *session
	stored.Revisions = make([]string, len(session.Revisions))
	copy(stored.Revisions, session.Revisions)
	s.sessions[session.ID] = stored
	return nil
}

// GetSession retrieves a session by ID.
func (s *DraftSessionStore) GetSession(_ context.Context, id string) (*domain.DraftSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	found := session
	found.Revisions = make([]string, len(session.Revisions))
	copy(found.Revisions, session.Revisions)
	return &found, nil
}

// ListSessions returns all sessions, newest first.
func (s *DraftSessionStore) ListSessions(_ context.Context) ([]domain.DraftSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sessions := make([]domain.DraftSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}
