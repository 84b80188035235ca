package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/quill-cli/internal/chunker"
	"github.com/custodia-labs/quill-cli/internal/core/domain"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driving"
	"github.com/custodia-labs/quill-cli/internal/logger"
)

// Ensure Ingestor implements the interfaces.
var (
	_ driving.IngestService = (*Ingestor)(nil)
	_ driving.StatsService  = (*Ingestor)(nil)
)

// DefaultIngestWorkers bounds batch ingestion parallelism.
const DefaultIngestWorkers = 4

// Ingestor runs the ingestion pipeline: load, deduplicate, chunk,
// embed and index.
type Ingestor struct {
	loader      driven.DocumentLoader
	docStore    driven.DocumentStore
	vectorIndex driven.VectorIndex
	embedder    driven.EmbeddingService
	chunker     *chunker.Chunker

	cache     driven.EmbeddingCache
	limiter   *rate.Limiter
	workers   int
	storePath string

	// hashLocks serialises concurrent ingestion of identical content,
	// so two workers never both miss the dedupe check and store twice.
	mu        sync.Mutex
	hashLocks map[string]*sync.Mutex
}

// NewIngestor creates a new ingestion service.
func NewIngestor(
	loader driven.DocumentLoader,
	docStore driven.DocumentStore,
	vectorIndex driven.VectorIndex,
	embedder driven.EmbeddingService,
	ch *chunker.Chunker,
) *Ingestor {
	return &Ingestor{
		loader:      loader,
		docStore:    docStore,
		vectorIndex: vectorIndex,
		embedder:    embedder,
		chunker:     ch,
		workers:     DefaultIngestWorkers,
		hashLocks:   make(map[string]*sync.Mutex),
	}
}

// SetEmbeddingCache sets an optional cache so unchanged chunks are
// never re-embedded.
func (s *Ingestor) SetEmbeddingCache(cache driven.EmbeddingCache) {
	s.cache = cache
}

// SetRateLimit throttles embedding calls to the given requests per second.
func (s *Ingestor) SetRateLimit(rps float64, burst int) {
	s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// SetWorkers sets the batch ingestion parallelism.
func (s *Ingestor) SetWorkers(n int) {
	if n > 0 {
		s.workers = n
	}
}

// SetStorePath records the data directory for stats reporting.
func (s *Ingestor) SetStorePath(path string) {
	s.storePath = path
}

// Ingest processes a single already-loaded document. Content identical
// to an already-stored document is detected by hash and skipped;
// modified content for a known source replaces the stored version.
func (s *Ingestor) Ingest(
	ctx context.Context, loadedText, sourceURI string, metadata map[string]string,
) (*driving.IngestResult, error) {
	text := strings.TrimSpace(loadedText)
	if text == "" {
		return nil, fmt.Errorf("%w: empty document text", domain.ErrInvalidInput)
	}

	hash := domain.HashContent(text)
	unlock := s.lockHash(hash)
	defer unlock()

	// Dedupe by content hash
	existing, err := s.docStore.GetByContentHash(ctx, hash)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("dedupe lookup: %w", err)
	}
	if err == nil {
		logger.Debug("Ingest: unchanged content for %s (document %s)", sourceURI, existing.ID)
		return &driving.IngestResult{
			Location:   sourceURI,
			DocumentID: existing.ID,
			Outcome:    driving.IngestUnchanged,
		}, nil
	}

	// Modified content under a known source replaces the stored version.
	// Vectors go first so searches never return hits that can no longer
	// be hydrated.
	prev, err := s.docStore.GetBySourceURI(ctx, sourceURI)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("superseded version lookup: %w", err)
	}
	if err == nil {
		if err := s.vectorIndex.DeleteDocument(ctx, prev.ID); err != nil {
			return nil, fmt.Errorf("delete superseded vectors: %w", err)
		}
		if err := s.docStore.DeleteDocument(ctx, prev.ID); err != nil {
			return nil, fmt.Errorf("delete superseded document: %w", err)
		}
		logger.Debug("Ingest: %s modified, replacing document %s", sourceURI, prev.ID)
	}

	doc := &domain.Document{
		ID:          uuid.NewString(),
		SourceURI:   sourceURI,
		ContentHash: hash,
		Content:     text,
		Metadata:    metadata,
		CreatedAt:   time.Now(),
	}

	chunks, err := s.chunker.Chunk(doc)
	if err != nil {
		return nil, fmt.Errorf("chunk document: %w", err)
	}
	logger.Debug("Ingest: %s produced %d chunks", sourceURI, len(chunks))

	if err := s.embedChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	if err := s.docStore.SaveChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("save chunks: %w", err)
	}

	records := make([]domain.VectorRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = domain.VectorRecord{
			ChunkID:    chunk.ID,
			DocumentID: chunk.DocumentID,
			Ordinal:    chunk.Ordinal,
			Embedding:  chunk.Embedding,
			Metadata:   chunk.Metadata,
		}
	}
	if err := s.vectorIndex.UpsertBatch(ctx, records); err != nil {
		return nil, fmt.Errorf("index vectors: %w", err)
	}

	logger.Info("Ingested %s as document %s (%d chunks)", sourceURI, doc.ID, len(chunks))

	return &driving.IngestResult{
		Location:   sourceURI,
		DocumentID: doc.ID,
		ChunkCount: len(chunks),
		Outcome:    driving.IngestStored,
	}, nil
}

// IngestBatch loads and processes many locations with bounded
// parallelism. One result per location in input order; a bad document
// never aborts the batch.
func (s *Ingestor) IngestBatch(ctx context.Context, locations []string) []driving.IngestResult {
	logger.Section("Batch Ingestion")
	logger.Debug("Locations: %d, workers: %d", len(locations), s.workers)

	results := make([]driving.IngestResult, len(locations))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	for i, location := range locations {
		wg.Add(1)
		go func(i int, location string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result := s.ingestLocation(ctx, location)
			results[i] = *result
		}(i, location)
	}

	wg.Wait()
	return results
}

// ingestLocation loads one location and runs the pipeline, converting
// failures into per-document results.
func (s *Ingestor) ingestLocation(ctx context.Context, location string) *driving.IngestResult {
	loaded, err := s.loader.Load(ctx, location)
	if err != nil {
		logger.Warn("Load failed for %s: %v", location, err)
		return &driving.IngestResult{
			Location: location,
			Outcome:  driving.IngestFailed,
			Err:      fmt.Errorf("load %s: %w", location, err),
		}
	}

	result, err := s.Ingest(ctx, loaded.Text, loaded.SourceURI, loaded.Metadata)
	if err != nil {
		logger.Warn("Ingest failed for %s: %v", location, err)
		return &driving.IngestResult{
			Location: location,
			Outcome:  driving.IngestFailed,
			Err:      err,
		}
	}
	return result
}

// Delete removes a document, its chunks and its vector records.
// Vector records go first so searches never return hits that can no
// longer be hydrated.
func (s *Ingestor) Delete(ctx context.Context, documentID string) error {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return err
	}

	if err := s.vectorIndex.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete vectors: %w", err)
	}
	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	logger.Info("Deleted document %s", documentID)
	return nil
}

// Stats returns counts and configuration of the knowledge base.
func (s *Ingestor) Stats(ctx context.Context) (*driving.KnowledgeBaseStats, error) {
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	chunkCount, err := s.docStore.CountChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	vectorCount, err := s.vectorIndex.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count vectors: %w", err)
	}

	stats := &driving.KnowledgeBaseStats{
		DocumentCount: len(docs),
		ChunkCount:    chunkCount,
		VectorCount:   vectorCount,
		StorePath:     s.storePath,
	}
	if s.embedder != nil {
		stats.EmbeddingModel = s.embedder.ModelName()
	}
	return stats, nil
}

// embedChunks fills in chunk embeddings, consulting the cache first and
// batching the misses into a single provider call.
func (s *Ingestor) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	missing := make([]int, 0, len(chunks))
	texts := make([]string, 0, len(chunks))

	for i := range chunks {
		if s.cache != nil {
			textHash := domain.HashContent(chunks[i].Content)
			cached, err := s.cache.Get(ctx, textHash)
			if err == nil && cached != nil {
				chunks[i].Embedding = cached
				continue
			}
		}
		missing = append(missing, i)
		texts = append(texts, chunks[i].Content)
	}

	if len(missing) == 0 {
		logger.Debug("Embeddings: all %d chunks served from cache", len(chunks))
		return nil
	}
	logger.Debug("Embeddings: %d cached, %d to generate", len(chunks)-len(missing), len(missing))

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(embeddings) != len(missing) {
		return fmt.Errorf("%w: got %d embeddings for %d texts",
			domain.ErrEmbeddingUnavailable, len(embeddings), len(missing))
	}

	for j, i := range missing {
		chunks[i].Embedding = embeddings[j]
		if s.cache != nil {
			textHash := domain.HashContent(chunks[i].Content)
			if err := s.cache.Put(ctx, textHash, embeddings[j]); err != nil {
				logger.Warn("Embedding cache write failed: %v", err)
			}
		}
	}
	return nil
}

// lockHash acquires the per-content-hash mutex and returns its release.
func (s *Ingestor) lockHash(hash string) func() {
	s.mu.Lock()
	m, ok := s.hashLocks[hash]
	if !ok {
		m = &sync.Mutex{}
		s.hashLocks[hash] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}
