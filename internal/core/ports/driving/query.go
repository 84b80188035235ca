package driving

import (
	"context"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
)

// RetrievedChunk pairs a retrieval hit with its resolved text.
type RetrievedChunk struct {
	Chunk domain.Chunk
	Score float64
}

// QueryService answers questions against the knowledge base.
type QueryService interface {
	// Ask retrieves relevant chunks for the question and synthesises a
	// grounded, cited answer. When nothing clears the relevance floor
	// the answer is the explicit insufficient-context variant.
	Ask(ctx context.Context, question string, opts domain.RetrievalOptions) (domain.Answer, error)

	// Search performs retrieval only, without generation.
	Search(ctx context.Context, query string, opts domain.RetrievalOptions) ([]RetrievedChunk, error)
}
