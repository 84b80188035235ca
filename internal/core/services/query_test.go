package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quill-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/quill-cli/internal/core/domain"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedding []float32
	embedErr  error
	dims      int
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return 384
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	hits      []driven.VectorHit
	searchErr error
	upserted  []domain.VectorRecord
	deleted   []string
}

func (m *mockVectorIndex) Upsert(_ context.Context, record domain.VectorRecord) error {
	m.upserted = append(m.upserted, record)
	return nil
}

func (m *mockVectorIndex) UpsertBatch(_ context.Context, records []domain.VectorRecord) error {
	m.upserted = append(m.upserted, records...)
	return nil
}

func (m *mockVectorIndex) DeleteDocument(_ context.Context, documentID string) error {
	m.deleted = append(m.deleted, documentID)
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int, _ map[string]string) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockVectorIndex) Count(_ context.Context) (int, error) {
	return len(m.upserted), nil
}

func (m *mockVectorIndex) Close() error {
	return nil
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	generateResult string
	generateErr    error
	rewriteResult  string
	rewriteErr     error
	prompts        []string
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.generateResult, nil
}

func (m *mockLLMService) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	return "", nil
}

func (m *mockLLMService) RewriteQuery(_ context.Context, query string) (string, error) {
	if m.rewriteErr != nil {
		return "", m.rewriteErr
	}
	if m.rewriteResult != "" {
		return m.rewriteResult, nil
	}
	return query, nil
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

// mockLoader implements driven.DocumentLoader for testing.
type mockLoader struct {
	docs map[string]*driven.LoadedDocument
}

func (m *mockLoader) Load(_ context.Context, location string) (*driven.LoadedDocument, error) {
	doc, ok := m.docs[location]
	if !ok {
		return nil, errors.New("no such location")
	}
	return doc, nil
}

// --- Test fixtures ---

// seedChunks stores a document with three chunks and returns the store.
func seedChunks(t *testing.T) *memory.DocumentStore {
	t.Helper()
	store := memory.NewDocumentStore()

	chunks := []domain.Chunk{
		{ID: "doc-1:0", DocumentID: "doc-1", Ordinal: 0, Content: "The reactor uses a closed coolant loop."},
		{ID: "doc-1:1", DocumentID: "doc-1", Ordinal: 1, Content: "Maintenance occurs every six months without fail."},
		{ID: "doc-1:2", DocumentID: "doc-1", Ordinal: 2, Content: "Unrelated appendix about catering arrangements."},
	}
	require.NoError(t, store.SaveChunks(context.Background(), chunks))
	return store
}

// --- Tests ---

func TestQueryService_Ask_GroundedWithCitations(t *testing.T) {
	docStore := seedChunks(t)

	index := &mockVectorIndex{hits: []driven.VectorHit{
		{ChunkID: "doc-1:1", DocumentID: "doc-1", Ordinal: 1, Similarity: 0.9},
		{ChunkID: "doc-1:0", DocumentID: "doc-1", Ordinal: 0, Similarity: 0.5},
		{ChunkID: "doc-1:2", DocumentID: "doc-1", Ordinal: 2, Similarity: 0.1},
	}}
	llm := &mockLLMService{generateResult: "Maintenance happens every six months [1]."}

	retriever := NewRetriever(&mockEmbeddingService{embedding: []float32{1, 0}}, index, docStore)
	generator := NewGenerator(llm)
	svc := NewQueryService(retriever, generator, docStore, nil)

	answer, err := svc.Ask(context.Background(), "how often is maintenance?", domain.RetrievalOptions{K: 3})
	require.NoError(t, err)

	assert.True(t, answer.Grounded())
	assert.Equal(t, "Maintenance happens every six months [1].", answer.Text)
	require.Len(t, answer.Citations, 1)
	assert.Equal(t, "doc-1:1", answer.Citations[0].ChunkID)
	assert.Equal(t, "doc-1", answer.Citations[0].DocumentID)
	assert.InDelta(t, 0.9, answer.Confidence, 1e-9)

	// The low-scoring appendix chunk never reaches the prompt.
	require.Len(t, llm.prompts, 1)
	assert.NotContains(t, llm.prompts[0], "catering")
}

func TestQueryService_Ask_InsufficientContext(t *testing.T) {
	docStore := seedChunks(t)

	index := &mockVectorIndex{hits: []driven.VectorHit{
		{ChunkID: "doc-1:2", DocumentID: "doc-1", Ordinal: 2, Similarity: 0.12},
	}}
	llm := &mockLLMService{generateResult: "should never be called"}

	retriever := NewRetriever(&mockEmbeddingService{embedding: []float32{1, 0}}, index, docStore)
	generator := NewGenerator(llm)
	svc := NewQueryService(retriever, generator, docStore, nil)

	answer, err := svc.Ask(context.Background(), "what colour is the moon?", domain.RetrievalOptions{})
	require.NoError(t, err)

	assert.False(t, answer.Grounded())
	assert.Equal(t, domain.AnswerInsufficientContext, answer.Kind)
	assert.Empty(t, answer.Text)
	assert.Empty(t, answer.Citations)
	assert.Empty(t, llm.prompts)
}

func TestQueryService_Ask_EmptyIndex(t *testing.T) {
	docStore := memory.NewDocumentStore()
	index := &mockVectorIndex{}

	retriever := NewRetriever(&mockEmbeddingService{embedding: []float32{1, 0}}, index, docStore)
	generator := NewGenerator(&mockLLMService{})
	svc := NewQueryService(retriever, generator, docStore, nil)

	answer, err := svc.Ask(context.Background(), "anything", domain.RetrievalOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.AnswerInsufficientContext, answer.Kind)
}

func TestQueryService_Ask_RewriteFailureFallsBack(t *testing.T) {
	docStore := seedChunks(t)
	index := &mockVectorIndex{hits: []driven.VectorHit{
		{ChunkID: "doc-1:0", DocumentID: "doc-1", Ordinal: 0, Similarity: 0.8},
	}}
	llm := &mockLLMService{
		generateResult: "The coolant loop is closed [1].",
		rewriteErr:     errors.New("llm down"),
	}

	retriever := NewRetriever(&mockEmbeddingService{embedding: []float32{1, 0}}, index, docStore)
	generator := NewGenerator(llm)
	svc := NewQueryService(retriever, generator, docStore, llm)

	answer, err := svc.Ask(context.Background(), "describe the coolant", domain.RetrievalOptions{})
	require.NoError(t, err)
	assert.True(t, answer.Grounded())
}

func TestQueryService_Search_HydratesChunks(t *testing.T) {
	docStore := seedChunks(t)
	index := &mockVectorIndex{hits: []driven.VectorHit{
		{ChunkID: "doc-1:1", DocumentID: "doc-1", Ordinal: 1, Similarity: 0.9},
		{ChunkID: "doc-1:0", DocumentID: "doc-1", Ordinal: 0, Similarity: 0.4},
	}}

	retriever := NewRetriever(&mockEmbeddingService{embedding: []float32{1, 0}}, index, docStore)
	generator := NewGenerator(&mockLLMService{})
	svc := NewQueryService(retriever, generator, docStore, nil)

	results, err := svc.Search(context.Background(), "maintenance", domain.RetrievalOptions{K: 5})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "doc-1:1", results[0].Chunk.ID)
	assert.Contains(t, results[0].Chunk.Content, "Maintenance")
	assert.InDelta(t, 0.9, results[0].Score, 1e-9)
	assert.Equal(t, "doc-1:0", results[1].Chunk.ID)
}

func TestQueryService_Search_SkipsDeletedChunks(t *testing.T) {
	docStore := seedChunks(t)
	index := &mockVectorIndex{hits: []driven.VectorHit{
		{ChunkID: "doc-1:1", DocumentID: "doc-1", Ordinal: 1, Similarity: 0.9},
		{ChunkID: "gone:0", DocumentID: "gone", Ordinal: 0, Similarity: 0.8},
	}}

	retriever := NewRetriever(&mockEmbeddingService{embedding: []float32{1, 0}}, index, docStore)
	generator := NewGenerator(&mockLLMService{})
	svc := NewQueryService(retriever, generator, docStore, nil)

	results, err := svc.Search(context.Background(), "maintenance", domain.RetrievalOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc-1:1", results[0].Chunk.ID)
}
