package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidConfig indicates bad chunking or search parameters.
	// Rejected at call time, never retried.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidInput indicates malformed or empty input text.
	// Not retryable, surfaced immediately.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderUnavailable indicates a transient upstream failure from
	// the embedding or generation provider. Retried with backoff inside
	// the provider boundary, surfaced after exhaustion.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrGenerationTimeout indicates the generation provider did not
	// respond within the deadline. Transient and retryable.
	ErrGenerationTimeout = errors.New("generation timeout")

	// ErrGenerationRejected indicates the provider refused the request,
	// for example a content filter. Never retried.
	ErrGenerationRejected = errors.New("generation rejected")

	// ErrEmptySample indicates style learning was requested with no
	// sample documents.
	ErrEmptySample = errors.New("empty style sample")

	// ErrSessionFinalized indicates a revision was attempted on a
	// finalized draft session.
	ErrSessionFinalized = errors.New("draft session finalized")

	// ErrInvalidTransition indicates a draft session operation that is
	// not allowed in the session's current state.
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Ingestion and semantic retrieval are disabled.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the generation service is not
	// configured. Answering and drafting are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not
	// configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
)
