package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Contract: deterministic for a given provider version; the dimension is
// fixed and declared; batched calls preserve input order in the output.
// Adapters classify failures into domain.ErrInvalidInput (empty or
// malformed text, never retried) and domain.ErrProviderUnavailable
// (transient, retried with backoff inside the adapter before surfacing).
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// The output slice matches the input order element for element.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// EmbeddingCache stores embeddings keyed by the SHA-256 hash of the
// input text, so unchanged chunks are never re-embedded across
// re-ingestion. This is the only persistent shared cache in the core.
type EmbeddingCache interface {
	// Get returns the cached vector for a text hash, or nil if absent.
	Get(ctx context.Context, textHash string) ([]float32, error)

	// Put stores a vector for a text hash.
	Put(ctx context.Context, textHash string, embedding []float32) error
}
