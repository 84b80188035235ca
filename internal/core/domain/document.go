package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// HashContent returns the SHA-256 hex digest used both as the document
// content hash and as the embedding-cache key for chunk text.
func HashContent(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// ChunkID derives the stable chunk identifier for a document position.
// Derived ids make repeated ingestion of the same document an upsert
// rather than a duplicate insert.
func ChunkID(documentID string, ordinal int) string {
	return documentID + ":" + strconv.Itoa(ordinal)
}

// Document represents an ingested document with metadata.
// It is immutable once stored and identified by content hash so
// re-ingesting unchanged content is a no-op.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// SourceURI is the original location (file path, URL, repository id).
	SourceURI string

	// ContentHash is the SHA-256 hex digest of Content.
	// Two documents with the same hash are the same document.
	ContentHash string

	// Content is the full normalised plain text.
	Content string

	// Metadata contains string key-value pairs (title, author, etc).
	Metadata map[string]string

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time
}

// Chunk is a bounded, overlapping segment of a document's text.
// It is the unit of retrieval. Chunks are created during ingestion,
// never mutated, and deleted together with their owning document.
type Chunk struct {
	// ID is the unique identifier, derived as "<documentID>:<ordinal>"
	// so repeated ingestion of the same document upserts in place.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Ordinal is the position within the document, starting at 0.
	Ordinal int

	// Content is the text content of this chunk.
	Content string

	// TokenStart is the index of the first token covered by this chunk.
	TokenStart int

	// TokenEnd is the index one past the last token covered.
	TokenEnd int

	// Embedding is the vector representation for semantic search.
	Embedding []float32

	// Metadata is a snapshot of document metadata plus chunk fields.
	Metadata map[string]string
}

// VectorRecord is the unit stored and searched in the vector index.
// There is exactly one record per chunk.
type VectorRecord struct {
	// ChunkID identifies the chunk this record belongs to.
	ChunkID string

	// DocumentID identifies the owning document, used for cascade deletes.
	DocumentID string

	// Ordinal is the chunk's position, used for deterministic tie-breaks.
	Ordinal int

	// Embedding is the stored vector.
	Embedding []float32

	// Metadata is the metadata snapshot taken at upsert time.
	Metadata map[string]string
}
