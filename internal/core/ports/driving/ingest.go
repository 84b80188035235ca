package driving

import "context"

// IngestOutcome describes what happened to a single document.
type IngestOutcome string

// Per-document ingestion outcomes.
const (
	// IngestStored means the document was chunked, embedded and indexed.
	IngestStored IngestOutcome = "stored"

	// IngestUnchanged means an identical content hash already exists,
	// so nothing was written.
	IngestUnchanged IngestOutcome = "unchanged"

	// IngestFailed means this document failed; the rest of the batch
	// is unaffected.
	IngestFailed IngestOutcome = "failed"
)

// IngestResult reports the outcome for one document in a batch.
type IngestResult struct {
	// Location is the source location that was ingested.
	Location string

	// DocumentID is set when the document was stored or already existed.
	DocumentID string

	// ChunkCount is the number of chunks produced.
	ChunkCount int

	// Outcome classifies what happened.
	Outcome IngestOutcome

	// Err holds the per-document failure, nil otherwise.
	Err error
}

// IngestService ingests documents into the knowledge base.
type IngestService interface {
	// Ingest processes a single already-loaded document.
	Ingest(ctx context.Context, loadedText, sourceURI string, metadata map[string]string) (*IngestResult, error)

	// IngestBatch loads and processes many locations concurrently with
	// bounded parallelism. One result per location, input order; a bad
	// document never aborts the batch.
	IngestBatch(ctx context.Context, locations []string) []IngestResult

	// Delete removes a document, its chunks and its vector records.
	Delete(ctx context.Context, documentID string) error
}

// KnowledgeBaseStats summarises the stored corpus.
type KnowledgeBaseStats struct {
	DocumentCount  int
	ChunkCount     int
	VectorCount    int
	EmbeddingModel string
	StorePath      string
}

// StatsService reports knowledge-base statistics.
type StatsService interface {
	// Stats returns counts and configuration of the knowledge base.
	Stats(ctx context.Context) (*KnowledgeBaseStats, error)
}
