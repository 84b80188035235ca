package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quill-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/quill-cli/internal/chunker"
	"github.com/custodia-labs/quill-cli/internal/core/domain"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driving"
)

func newTestIngestor(t *testing.T) (*Ingestor, *memory.DocumentStore, *mockVectorIndex) {
	t.Helper()

	ch, err := chunker.New(chunker.WithSize(10), chunker.WithOverlap(2), chunker.WithTolerance(2))
	require.NoError(t, err)

	docStore := memory.NewDocumentStore()
	index := &mockVectorIndex{}
	loader := &mockLoader{docs: map[string]*driven.LoadedDocument{
		"notes.txt":  {SourceURI: "file://notes.txt", Text: "Alpha beta gamma delta epsilon zeta eta theta.", Metadata: map[string]string{"title": "notes"}},
		"report.txt": {SourceURI: "file://report.txt", Text: "One two three four five six seven eight.", Metadata: nil},
	}}

	ingestor := NewIngestor(loader, docStore, index, &mockEmbeddingService{embedding: []float32{1, 2}}, ch)
	return ingestor, docStore, index
}

func TestIngestor_StoresDocumentChunksAndVectors(t *testing.T) {
	ingestor, docStore, index := newTestIngestor(t)
	ctx := context.Background()

	result, err := ingestor.Ingest(ctx, "Alpha beta gamma delta.", "file://a.txt", nil)
	require.NoError(t, err)

	assert.Equal(t, driving.IngestStored, result.Outcome)
	assert.NotEmpty(t, result.DocumentID)
	assert.Equal(t, 1, result.ChunkCount)

	doc, err := docStore.GetDocument(ctx, result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "file://a.txt", doc.SourceURI)
	assert.Equal(t, domain.HashContent("Alpha beta gamma delta."), doc.ContentHash)

	chunks, err := docStore.GetChunks(ctx, result.DocumentID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, []float32{1, 2}, chunks[0].Embedding)

	require.Len(t, index.upserted, 1)
	assert.Equal(t, chunks[0].ID, index.upserted[0].ChunkID)
}

func TestIngestor_DeduplicatesByContentHash(t *testing.T) {
	ingestor, _, index := newTestIngestor(t)
	ctx := context.Background()

	first, err := ingestor.Ingest(ctx, "Same content here.", "file://a.txt", nil)
	require.NoError(t, err)
	require.Equal(t, driving.IngestStored, first.Outcome)

	// Identical content under a different location is not re-stored.
	second, err := ingestor.Ingest(ctx, "Same content here.", "file://copy.txt", nil)
	require.NoError(t, err)

	assert.Equal(t, driving.IngestUnchanged, second.Outcome)
	assert.Equal(t, first.DocumentID, second.DocumentID)
	assert.Len(t, index.upserted, 1)
}

func TestIngestor_ReplacesModifiedDocument(t *testing.T) {
	ingestor, docStore, index := newTestIngestor(t)
	ctx := context.Background()

	first, err := ingestor.Ingest(ctx, "version one", "file://a.txt", nil)
	require.NoError(t, err)
	require.Equal(t, driving.IngestStored, first.Outcome)

	second, err := ingestor.Ingest(ctx, "version two", "file://a.txt", nil)
	require.NoError(t, err)
	require.Equal(t, driving.IngestStored, second.Outcome)
	assert.NotEqual(t, first.DocumentID, second.DocumentID)

	// The superseded version is gone from both the store and the index.
	_, err = docStore.GetDocument(ctx, first.DocumentID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, []string{first.DocumentID}, index.deleted)

	current, err := docStore.GetBySourceURI(ctx, "file://a.txt")
	require.NoError(t, err)
	assert.Equal(t, second.DocumentID, current.ID)
	assert.Equal(t, "version two", current.Content)
}

type failingHashDocStore struct {
	*memory.DocumentStore
}

func (s *failingHashDocStore) GetByContentHash(context.Context, string) (*domain.Document, error) {
	return nil, errors.New("disk i/o error")
}

func TestIngestor_PropagatesDedupeLookupFailure(t *testing.T) {
	ingestor, _, index := newTestIngestor(t)
	ingestor.docStore = &failingHashDocStore{memory.NewDocumentStore()}

	_, err := ingestor.Ingest(context.Background(), "some text", "file://a.txt", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "dedupe lookup")
	assert.Empty(t, index.upserted, "a failing store must not be written to")
}

func TestIngestor_RejectsEmptyText(t *testing.T) {
	ingestor, _, _ := newTestIngestor(t)

	_, err := ingestor.Ingest(context.Background(), "   \n ", "file://empty.txt", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestor_BatchKeepsInputOrderAndIsolatesFailures(t *testing.T) {
	ingestor, _, _ := newTestIngestor(t)

	results := ingestor.IngestBatch(context.Background(), []string{
		"notes.txt", "missing.txt", "report.txt",
	})
	require.Len(t, results, 3)

	assert.Equal(t, "notes.txt", results[0].Location)
	assert.Equal(t, driving.IngestStored, results[0].Outcome)

	assert.Equal(t, "missing.txt", results[1].Location)
	assert.Equal(t, driving.IngestFailed, results[1].Outcome)
	assert.Error(t, results[1].Err)

	assert.Equal(t, "report.txt", results[2].Location)
	assert.Equal(t, driving.IngestStored, results[2].Outcome)
}

func TestIngestor_EmbeddingCacheSkipsProviderCalls(t *testing.T) {
	ingestor, _, _ := newTestIngestor(t)
	cache := memory.NewEmbeddingCache()
	ingestor.SetEmbeddingCache(cache)
	ctx := context.Background()

	text := "Cached once, reused after."
	require.NoError(t, cache.Put(ctx, domain.HashContent(text), []float32{9, 9}))

	result, err := ingestor.Ingest(ctx, text, "file://cached.txt", nil)
	require.NoError(t, err)
	require.Equal(t, driving.IngestStored, result.Outcome)

	chunks, err := ingestor.docStore.GetChunks(ctx, result.DocumentID)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, []float32{9, 9}, chunks[0].Embedding)
}

func TestIngestor_DeleteCascades(t *testing.T) {
	ingestor, docStore, index := newTestIngestor(t)
	ctx := context.Background()

	result, err := ingestor.Ingest(ctx, "Document to be removed.", "file://gone.txt", nil)
	require.NoError(t, err)

	require.NoError(t, ingestor.Delete(ctx, result.DocumentID))

	_, err = docStore.GetDocument(ctx, result.DocumentID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, []string{result.DocumentID}, index.deleted)
}

func TestIngestor_DeleteUnknownDocument(t *testing.T) {
	ingestor, _, _ := newTestIngestor(t)

	err := ingestor.Delete(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestor_Stats(t *testing.T) {
	ingestor, _, _ := newTestIngestor(t)
	ingestor.SetStorePath("/tmp/quill-test")
	ctx := context.Background()

	_, err := ingestor.Ingest(ctx, "Some stats fodder text.", "file://s.txt", nil)
	require.NoError(t, err)

	stats, err := ingestor.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.DocumentCount)
	assert.Equal(t, 1, stats.ChunkCount)
	assert.Equal(t, 1, stats.VectorCount)
	assert.Equal(t, "mock-embed", stats.EmbeddingModel)
	assert.Equal(t, "/tmp/quill-test", stats.StorePath)
}
