package driven

import (
	"context"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
)

// DocumentStore persists documents and chunks.
// Backed by SQLite for durable storage.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks stores chunks for a document in one transaction.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetByContentHash retrieves a document by content hash, or
	// domain.ErrNotFound. Used for ingestion deduplication.
	GetByContentHash(ctx context.Context, hash string) (*domain.Document, error)

	// GetBySourceURI retrieves the document for a source location, or
	// domain.ErrNotFound. Used to replace superseded versions on
	// re-ingestion.
	GetBySourceURI(ctx context.Context, sourceURI string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document, ordered by ordinal.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// DeleteDocument removes a document and all of its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all stored documents.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// CountChunks returns the total number of stored chunks.
	CountChunks(ctx context.Context) (int, error)
}

// StyleProfileStore persists learned style profiles.
type StyleProfileStore interface {
	// SaveProfile stores a profile. Profiles are immutable; saving an
	// existing id replaces it wholesale.
	SaveProfile(ctx context.Context, profile *domain.StyleProfile) error

	// GetProfile retrieves a profile by ID.
	GetProfile(ctx context.Context, id string) (*domain.StyleProfile, error)

	// ListProfiles returns all stored profiles, newest first.
	ListProfiles(ctx context.Context) ([]domain.StyleProfile, error)
}

// DraftSessionStore persists draft sessions and their revisions.
type DraftSessionStore interface {
	// SaveSession stores or updates a session with its revisions.
	SaveSession(ctx context.Context, session *domain.DraftSession) error

	// GetSession retrieves a session by ID.
	GetSession(ctx context.Context, id string) (*domain.DraftSession, error)

	// ListSessions returns all sessions, newest first.
	ListSessions(ctx context.Context) ([]domain.DraftSession, error)
}
