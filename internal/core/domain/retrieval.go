package domain

// ScoredChunk is a single retrieval hit.
type ScoredChunk struct {
	// ChunkID is the retrieved chunk.
	ChunkID string

	// DocumentID is the chunk's owning document.
	DocumentID string

	// Ordinal is the chunk's position within its document.
	Ordinal int

	// Score is the final relevance score, higher is more relevant.
	Score float64
}

// RetrievalResult is an ordered sequence of scored chunks, descending
// by score with ties broken by chunk ordinal ascending.
type RetrievalResult []ScoredChunk

// ChunkIDs returns the chunk ids in result order.
func (r RetrievalResult) ChunkIDs() []string {
	ids := make([]string, len(r))
	for i, sc := range r {
		ids[i] = sc.ChunkID
	}
	return ids
}

// Contains reports whether the result includes the given chunk id.
func (r RetrievalResult) Contains(chunkID string) bool {
	for _, sc := range r {
		if sc.ChunkID == chunkID {
			return true
		}
	}
	return false
}

// RetrievalOptions configures a retrieval request.
type RetrievalOptions struct {
	// K is the maximum number of chunks to return. Zero means the default.
	K int

	// MetadataFilter restricts hits to records whose metadata snapshot
	// contains every listed key-value pair. Nil means no filter.
	MetadataFilter map[string]string

	// Rerank enables lexical-overlap re-ranking of vector candidates.
	Rerank bool
}

// Citation links a claim in a generated answer back to source text.
type Citation struct {
	// ChunkID is the supporting chunk.
	ChunkID string

	// DocumentID is the chunk's owning document.
	DocumentID string

	// Span is a short excerpt of the supporting text.
	Span string
}

// AnswerKind distinguishes grounded answers from explicit refusals.
type AnswerKind string

const (
	// AnswerGrounded means the answer is supported by cited chunks.
	AnswerGrounded AnswerKind = "grounded"

	// AnswerInsufficientContext means no retrieved chunk cleared the
	// relevance floor, so no answer was generated.
	AnswerInsufficientContext AnswerKind = "insufficient_context"
)

// Answer is the result of a grounded generation call.
// Use the constructors so the kind and citations stay consistent:
// callers can never mistake an ungrounded answer for a grounded one.
type Answer struct {
	// Kind distinguishes a grounded answer from an explicit refusal.
	Kind AnswerKind

	// Text is the answer text. Empty for insufficient-context answers.
	Text string

	// Citations are the chunks supporting the answer, in citation order.
	Citations []Citation

	// Confidence is the mean retrieval score of the cited chunks.
	Confidence float64
}

// NewGroundedAnswer builds an answered result with its citations.
func NewGroundedAnswer(text string, citations []Citation, confidence float64) Answer {
	return Answer{
		Kind:       AnswerGrounded,
		Text:       text,
		Citations:  citations,
		Confidence: confidence,
	}
}

// NewInsufficientContextAnswer builds the explicit refusal variant.
func NewInsufficientContextAnswer() Answer {
	return Answer{Kind: AnswerInsufficientContext}
}

// Grounded reports whether the answer is backed by citations.
func (a Answer) Grounded() bool {
	return a.Kind == AnswerGrounded
}
