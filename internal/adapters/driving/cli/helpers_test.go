package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driving"
)

// setupTestServices swaps the package-level services for mocks and
// returns a cleanup that restores the previous wiring.
func setupTestServices() func() {
	oldIngest := ingestService
	oldStats := statsService
	oldQuery := queryService
	oldStyle := styleService
	oldDraft := draftService
	oldExport := exportService
	oldEmbedding := embeddingService
	oldLLM := llmService

	ingestService = &mockIngestService{}
	statsService = &mockStatsService{}
	queryService = &mockQueryService{}
	styleService = &mockStyleService{}
	draftService = &mockDraftService{}
	exportService = &mockExporter{}
	embeddingService = &mockEmbeddingService{}
	llmService = &mockLLMService{}

	return func() {
		ingestService = oldIngest
		statsService = oldStats
		queryService = oldQuery
		styleService = oldStyle
		draftService = oldDraft
		exportService = oldExport
		embeddingService = oldEmbedding
		llmService = oldLLM
	}
}

type mockQueryService struct{}

func (m *mockQueryService) Ask(_ context.Context, _ string, _ domain.RetrievalOptions) (domain.Answer, error) {
	return domain.NewGroundedAnswer(
		"The retention period is six years.",
		[]domain.Citation{{ChunkID: "doc-1:0", DocumentID: "doc-1", Span: "retained for six years"}},
		0.82,
	), nil
}

func (m *mockQueryService) Search(_ context.Context, _ string, _ domain.RetrievalOptions) ([]driving.RetrievedChunk, error) {
	return []driving.RetrievedChunk{
		{
			Chunk: domain.Chunk{
				ID:         "doc-1:0",
				DocumentID: "doc-1",
				Ordinal:    0,
				Content:    "Records are retained for six years after termination.",
				Metadata:   map[string]string{"title": "Retention Policy"},
			},
			Score: 0.82,
		},
	}, nil
}

type mockIngestService struct{}

func (m *mockIngestService) Ingest(_ context.Context, _, sourceURI string, _ map[string]string) (*driving.IngestResult, error) {
	return &driving.IngestResult{
		Location:   sourceURI,
		DocumentID: "doc-1",
		ChunkCount: 3,
		Outcome:    driving.IngestStored,
	}, nil
}

func (m *mockIngestService) IngestBatch(_ context.Context, locations []string) []driving.IngestResult {
	results := make([]driving.IngestResult, len(locations))
	for i, loc := range locations {
		results[i] = driving.IngestResult{
			Location:   loc,
			DocumentID: "doc-1",
			ChunkCount: 3,
			Outcome:    driving.IngestStored,
		}
	}
	return results
}

func (m *mockIngestService) Delete(_ context.Context, _ string) error {
	return nil
}

type mockStatsService struct{}

func (m *mockStatsService) Stats(_ context.Context) (*driving.KnowledgeBaseStats, error) {
	return &driving.KnowledgeBaseStats{
		DocumentCount:  2,
		ChunkCount:     14,
		VectorCount:    14,
		EmbeddingModel: "nomic-embed-text",
	}, nil
}

type mockStyleService struct{}

func (m *mockStyleService) Learn(_ context.Context, documentIDs []string) (*domain.StyleProfile, error) {
	return m.profile(documentIDs), nil
}

func (m *mockStyleService) Get(_ context.Context, _ string) (*domain.StyleProfile, error) {
	return m.profile([]string{"doc-1"}), nil
}

func (m *mockStyleService) List(_ context.Context) ([]domain.StyleProfile, error) {
	return []domain.StyleProfile{*m.profile([]string{"doc-1"})}, nil
}

func (m *mockStyleService) profile(documentIDs []string) *domain.StyleProfile {
	return &domain.StyleProfile{
		ID:                "profile-1",
		SourceDocumentIDs: documentIDs,
		Features: domain.StyleFeatures{
			Language:   domain.LanguageFeatures{Tone: "formal", AvgSentenceLength: 18.5},
			SampleSize: len(documentIDs),
		},
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

type mockDraftService struct{}

func (m *mockDraftService) session() *domain.DraftSession {
	return &domain.DraftSession{
		ID:             "session-1",
		StyleProfileID: "profile-1",
		Brief:          "termination letter for a supplier contract",
		Revisions:      []string{"Dear [NAME],\n\nWe hereby terminate the agreement."},
		Status:         domain.SessionReviewing,
	}
}

func (m *mockDraftService) Create(_ context.Context, _, _ string, _ bool) (*domain.DraftSession, error) {
	return m.session(), nil
}

func (m *mockDraftService) Revise(_ context.Context, _, _ string) (*domain.DraftSession, error) {
	return m.session(), nil
}

func (m *mockDraftService) Finalize(_ context.Context, _ string) (*domain.DraftSession, error) {
	s := m.session()
	s.Status = domain.SessionFinalized
	return s, nil
}

func (m *mockDraftService) Get(_ context.Context, _ string) (*domain.DraftSession, error) {
	return m.session(), nil
}

func (m *mockDraftService) List(_ context.Context) ([]domain.DraftSession, error) {
	return []domain.DraftSession{*m.session()}, nil
}

func (m *mockDraftService) Suggest(_ context.Context, _ string) ([]string, error) {
	return []string{"Fill in placeholder: [NAME]"}, nil
}

type mockExporter struct {
	exported string
}

func (m *mockExporter) Export(_ context.Context, content, _ string) error {
	m.exported = content
	return nil
}

type mockEmbeddingService struct{}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return 2 }

func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error { return nil }

type mockLLMService struct{}

func (m *mockLLMService) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	return "generated", nil
}

func (m *mockLLMService) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	return "chat", nil
}

func (m *mockLLMService) RewriteQuery(_ context.Context, query string) (string, error) {
	return query, nil
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }

func (m *mockLLMService) Ping(_ context.Context) error { return nil }

func (m *mockLLMService) Close() error { return nil }
