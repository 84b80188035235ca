package sqlite

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driven"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func seedRecords(t *testing.T, idx *Index) {
	t.Helper()
	require.NoError(t, idx.UpsertBatch(context.Background(), []domain.VectorRecord{
		{ChunkID: "a:0", DocumentID: "a", Ordinal: 0, Embedding: []float32{1, 0, 0},
			Metadata: map[string]string{"source_uri": "file://a.txt"}},
		{ChunkID: "a:1", DocumentID: "a", Ordinal: 1, Embedding: []float32{0, 1, 0},
			Metadata: map[string]string{"source_uri": "file://a.txt"}},
		{ChunkID: "b:0", DocumentID: "b", Ordinal: 0, Embedding: []float32{0.9, 0.1, 0},
			Metadata: map[string]string{"source_uri": "file://b.txt"}},
	}))
}

func TestIndex_SearchRanksByCosineSimilarity(t *testing.T) {
	idx := newTestIndex(t)
	seedRecords(t, idx)

	hits, err := idx.Search(context.Background(), []float32{1, 0, 0}, 3, nil)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "a:0", hits[0].ChunkID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	assert.Equal(t, "b:0", hits[1].ChunkID)
	assert.Equal(t, "a:1", hits[2].ChunkID)
	assert.Greater(t, hits[1].Similarity, hits[2].Similarity)
}

func TestIndex_SearchTieBreaksDeterministically(t *testing.T) {
	idx := newTestIndex(t)
	require.NoError(t, idx.UpsertBatch(context.Background(), []domain.VectorRecord{
		{ChunkID: "z:1", DocumentID: "z", Ordinal: 1, Embedding: []float32{1, 0}},
		{ChunkID: "z:0", DocumentID: "z", Ordinal: 0, Embedding: []float32{1, 0}},
		{ChunkID: "a:0", DocumentID: "a", Ordinal: 0, Embedding: []float32{1, 0}},
	}))

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 3, nil)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	// Equal scores: ordinal ascending, then chunk id.
	assert.Equal(t, "a:0", hits[0].ChunkID)
	assert.Equal(t, "z:0", hits[1].ChunkID)
	assert.Equal(t, "z:1", hits[2].ChunkID)
}

func TestIndex_SearchHonoursMetadataFilter(t *testing.T) {
	idx := newTestIndex(t)
	seedRecords(t, idx)

	hits, err := idx.Search(context.Background(), []float32{1, 0, 0}, 10,
		map[string]string{"source_uri": "file://b.txt"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "b:0", hits[0].ChunkID)
}

func TestIndex_EmptyIndexYieldsEmptyResult(t *testing.T) {
	idx := newTestIndex(t)

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 5, nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_UpsertIsIdempotent(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	record := domain.VectorRecord{ChunkID: "a:0", DocumentID: "a", Ordinal: 0, Embedding: []float32{1, 0}}
	require.NoError(t, idx.Upsert(ctx, record))

	record.Embedding = []float32{0, 1}
	require.NoError(t, idx.Upsert(ctx, record))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	hits, err := idx.Search(ctx, []float32{0, 1}, 1, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
}

func TestIndex_DeleteDocumentRemovesAllItsRecords(t *testing.T) {
	idx := newTestIndex(t)
	seedRecords(t, idx)
	ctx := context.Background()

	require.NoError(t, idx.DeleteDocument(ctx, "a"))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 10, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "b:0", hits[0].ChunkID)
}

func TestIndex_DeleteDocumentIsAtomicUnderConcurrentSearch(t *testing.T) {
	idx := newTestIndex(t)
	seedRecords(t, idx)
	ctx := context.Background()

	var wg sync.WaitGroup
	start := make(chan struct{})

	results := make([][]driven.VectorHit, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			hits, err := idx.Search(ctx, []float32{1, 0, 0}, 10, nil)
			assert.NoError(t, err)
			results[i] = hits
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		assert.NoError(t, idx.DeleteDocument(ctx, "a"))
	}()

	close(start)
	wg.Wait()

	// Each search sees the document either fully or not at all, never a
	// partially deleted record set.
	for _, hits := range results {
		var docAChunks int
		for _, hit := range hits {
			if hit.DocumentID == "a" {
				docAChunks++
			}
		}
		assert.Contains(t, []int{0, 2}, docAChunks)
	}
}

func TestIndex_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	idx, err := NewIndex(dir)
	require.NoError(t, err)
	require.NoError(t, idx.Upsert(ctx, domain.VectorRecord{
		ChunkID: "a:0", DocumentID: "a", Ordinal: 0, Embedding: []float32{0.5, 0.5},
		Metadata: map[string]string{"title": "kept"},
	}))
	require.NoError(t, idx.Close())

	reopened, err := NewIndex(dir)
	require.NoError(t, err)
	defer reopened.Close()

	hits, err := reopened.Search(ctx, []float32{0.5, 0.5}, 1, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a:0", hits[0].ChunkID)
	assert.Equal(t, "kept", hits[0].Metadata["title"])
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 0}))
	assert.Zero(t, cosineSimilarity([]float32{1}, []float32{1, 0}))
}
