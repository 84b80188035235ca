package driven

import (
	"context"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
)

// VectorIndex persists chunk vectors with a metadata snapshot and
// supports nearest-neighbour search and cascade deletion.
//
// Consistency contract: DeleteDocument is atomic with respect to
// concurrent searches - a search in flight observes either all or none
// of a document's records, never a partial view. Committed upserts
// survive process restart.
type VectorIndex interface {
	// Upsert inserts or replaces the record for its chunk id.
	// Idempotent: last write wins.
	Upsert(ctx context.Context, record domain.VectorRecord) error

	// UpsertBatch upserts several records, committed together.
	UpsertBatch(ctx context.Context, records []domain.VectorRecord) error

	// DeleteDocument removes every record owned by the document.
	DeleteDocument(ctx context.Context, documentID string) error

	// Search finds up to k records most similar to the query vector,
	// restricted to records matching the filter when non-nil.
	// Cosine similarity, descending; ties break by ordinal ascending
	// then chunk id. An empty index yields an empty result, not an error.
	Search(ctx context.Context, query []float32, k int, filter map[string]string) ([]VectorHit, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Close flushes and releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the chunk's owning document.
	DocumentID string

	// Ordinal is the chunk's position within its document.
	Ordinal int

	// Similarity is the cosine similarity score (-1 to 1).
	Similarity float64

	// Metadata is the snapshot stored with the record.
	Metadata map[string]string
}
