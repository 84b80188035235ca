package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driving"
	"github.com/custodia-labs/quill-cli/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService answers questions against the knowledge base by
// composing retrieval and grounded generation.
type QueryService struct {
	retriever *Retriever
	generator *Generator
	docStore  driven.DocumentStore
	llm       driven.LLMService
}

// NewQueryService creates a new query service.
// The llm parameter enables query rewriting and is optional (can be nil).
func NewQueryService(
	retriever *Retriever,
	generator *Generator,
	docStore driven.DocumentStore,
	llm driven.LLMService,
) *QueryService {
	return &QueryService{
		retriever: retriever,
		generator: generator,
		docStore:  docStore,
		llm:       llm,
	}
}

// Ask retrieves relevant chunks and synthesises a grounded, cited
// answer. When nothing clears the relevance floor the answer is the
// explicit insufficient-context variant.
func (s *QueryService) Ask(
	ctx context.Context, question string, opts domain.RetrievalOptions,
) (domain.Answer, error) {
	logger.Section("Question Answering")
	logger.Debug("Question: %q", question)

	searchQuery := s.rewriteQuery(ctx, question)

	result, err := s.retriever.Retrieve(ctx, searchQuery, opts)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("retrieve: %w", err)
	}
	if len(result) == 0 {
		logger.Info("No chunks retrieved, returning insufficient context")
		return domain.NewInsufficientContextAnswer(), nil
	}

	chunks, result, err := s.hydrate(ctx, result)
	if err != nil {
		return domain.Answer{}, err
	}
	if len(chunks) == 0 {
		return domain.NewInsufficientContextAnswer(), nil
	}

	return s.generator.Answer(ctx, question, chunks, result)
}

// Search performs retrieval only, without generation.
func (s *QueryService) Search(
	ctx context.Context, query string, opts domain.RetrievalOptions,
) ([]driving.RetrievedChunk, error) {
	logger.Section("Search")
	logger.Debug("Query: %q", query)

	result, err := s.retriever.Retrieve(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	chunks, result, err := s.hydrate(ctx, result)
	if err != nil {
		return nil, err
	}

	retrieved := make([]driving.RetrievedChunk, len(chunks))
	for i, chunk := range chunks {
		retrieved[i] = driving.RetrievedChunk{Chunk: chunk, Score: result[i].Score}
	}
	return retrieved, nil
}

// rewriteQuery expands the question for better recall when an LLM is
// available, falling back to the original on any failure.
func (s *QueryService) rewriteQuery(ctx context.Context, question string) string {
	if s.llm == nil {
		return question
	}
	rewritten, err := s.llm.RewriteQuery(ctx, question)
	if err != nil || rewritten == "" {
		if err != nil {
			logger.Warn("Query rewrite failed: %v (using original)", err)
		}
		return question
	}
	logger.Debug("Query rewritten to %q", rewritten)
	return rewritten
}

// hydrate resolves scored chunk ids to full chunks, dropping entries
// whose chunk has been deleted since indexing. The returned result is
// realigned with the returned chunks element for element.
func (s *QueryService) hydrate(
	ctx context.Context, result domain.RetrievalResult,
) ([]domain.Chunk, domain.RetrievalResult, error) {
	chunks := make([]domain.Chunk, 0, len(result))
	kept := make(domain.RetrievalResult, 0, len(result))

	for _, sc := range result {
		chunk, err := s.docStore.GetChunk(ctx, sc.ChunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				logger.Debug("Chunk %s vanished since indexing, skipping", sc.ChunkID)
				continue
			}
			return nil, nil, fmt.Errorf("get chunk %s: %w", sc.ChunkID, err)
		}
		chunks = append(chunks, *chunk)
		kept = append(kept, sc)
	}
	return chunks, kept, nil
}
