package driving

import (
	"context"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
)

// StyleService learns style profiles from stored documents.
type StyleService interface {
	// Learn analyses the given documents and stores a new immutable
	// StyleProfile aggregated across the sample.
	// Fails with domain.ErrEmptySample when documentIDs is empty.
	Learn(ctx context.Context, documentIDs []string) (*domain.StyleProfile, error)

	// Get retrieves a stored profile by id.
	Get(ctx context.Context, profileID string) (*domain.StyleProfile, error)

	// List returns all stored profiles, newest first.
	List(ctx context.Context) ([]domain.StyleProfile, error)
}

// DraftService runs the drafting state machine over DraftSessions.
type DraftService interface {
	// Create opens a session, generates the first revision conditioned
	// on the style profile, retrieved context and brief, and leaves the
	// session in the reviewing state.
	Create(ctx context.Context, styleProfileID, brief string, useContext bool) (*domain.DraftSession, error)

	// Revise generates a new revision from the current one and the
	// instruction. Allowed only from the reviewing state.
	Revise(ctx context.Context, sessionID, instruction string) (*domain.DraftSession, error)

	// Finalize closes the session to further revisions.
	// Allowed only from the reviewing state.
	Finalize(ctx context.Context, sessionID string) (*domain.DraftSession, error)

	// Get retrieves a session by id.
	Get(ctx context.Context, sessionID string) (*domain.DraftSession, error)

	// List returns all sessions, newest first.
	List(ctx context.Context) ([]domain.DraftSession, error)

	// Suggest returns deterministic improvement suggestions for the
	// session's current revision (unfilled placeholders, missing
	// structure). No model round trip.
	Suggest(ctx context.Context, sessionID string) ([]string, error)
}
