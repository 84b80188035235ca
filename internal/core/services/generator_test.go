package services

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
)

func groundingFixture() ([]domain.Chunk, domain.RetrievalResult) {
	chunks := []domain.Chunk{
		{ID: "d:0", DocumentID: "d", Ordinal: 0, Content: "The warranty covers parts for two years."},
		{ID: "d:1", DocumentID: "d", Ordinal: 1, Content: "Labour costs are excluded after ninety days."},
	}
	scores := domain.RetrievalResult{
		{ChunkID: "d:0", DocumentID: "d", Ordinal: 0, Score: 0.8},
		{ChunkID: "d:1", DocumentID: "d", Ordinal: 1, Score: 0.6},
	}
	return chunks, scores
}

func TestGenerator_CitesMarkedChunks(t *testing.T) {
	chunks, scores := groundingFixture()
	llm := &mockLLMService{generateResult: "Parts are covered for two years [1], labour only for ninety days [2]."}
	gen := NewGenerator(llm)

	answer, err := gen.Answer(context.Background(), "what does the warranty cover?", chunks, scores)
	require.NoError(t, err)

	assert.True(t, answer.Grounded())
	require.Len(t, answer.Citations, 2)
	assert.Equal(t, "d:0", answer.Citations[0].ChunkID)
	assert.Equal(t, "d:1", answer.Citations[1].ChunkID)
	assert.InDelta(t, 0.7, answer.Confidence, 1e-9)
}

func TestGenerator_IgnoresOutOfRangeMarkers(t *testing.T) {
	chunks, scores := groundingFixture()
	llm := &mockLLMService{generateResult: "Covered for two years [1] per section [9]."}
	gen := NewGenerator(llm)

	answer, err := gen.Answer(context.Background(), "coverage?", chunks, scores)
	require.NoError(t, err)

	require.Len(t, answer.Citations, 1)
	assert.Equal(t, "d:0", answer.Citations[0].ChunkID)
	assert.InDelta(t, 0.8, answer.Confidence, 1e-9)
}

func TestGenerator_UnmarkedAnswerStillCited(t *testing.T) {
	chunks, scores := groundingFixture()
	llm := &mockLLMService{generateResult: "The warranty covers parts for two years."}
	gen := NewGenerator(llm)

	answer, err := gen.Answer(context.Background(), "coverage?", chunks, scores)
	require.NoError(t, err)

	// No [n] markers: citation falls back to lexical overlap, so the
	// grounded answer never goes out uncited.
	assert.True(t, answer.Grounded())
	require.NotEmpty(t, answer.Citations)
	assert.Equal(t, "d:0", answer.Citations[0].ChunkID)
}

func TestGenerator_RefusesBelowScoreFloor(t *testing.T) {
	chunks, _ := groundingFixture()
	scores := domain.RetrievalResult{
		{ChunkID: "d:0", DocumentID: "d", Ordinal: 0, Score: 0.2},
		{ChunkID: "d:1", DocumentID: "d", Ordinal: 1, Score: 0.1},
	}
	llm := &mockLLMService{generateResult: "should not be used"}
	gen := NewGenerator(llm)

	answer, err := gen.Answer(context.Background(), "coverage?", chunks, scores)
	require.NoError(t, err)

	assert.Equal(t, domain.AnswerInsufficientContext, answer.Kind)
	assert.Empty(t, llm.prompts)
}

func TestGenerator_CustomScoreFloor(t *testing.T) {
	chunks, scores := groundingFixture()
	llm := &mockLLMService{generateResult: "Only parts coverage applies [1]."}
	gen := NewGenerator(llm)
	gen.SetScoreFloor(0.7)

	answer, err := gen.Answer(context.Background(), "coverage?", chunks, scores)
	require.NoError(t, err)

	// Only d:0 (0.8) clears the raised floor; [1] therefore maps to it.
	require.Len(t, answer.Citations, 1)
	assert.Equal(t, "d:0", answer.Citations[0].ChunkID)

	require.Len(t, llm.prompts, 1)
	assert.NotContains(t, llm.prompts[0], "Labour costs")
}

func TestGenerator_CitationSpanKeepsRunesIntact(t *testing.T) {
	long := strings.Repeat("Garantie über zwölf Monate. ", 10)
	chunks := []domain.Chunk{{ID: "d:0", DocumentID: "d", Ordinal: 0, Content: long}}
	scores := domain.RetrievalResult{{ChunkID: "d:0", DocumentID: "d", Ordinal: 0, Score: 0.9}}
	llm := &mockLLMService{generateResult: "Zwölf Monate [1]."}
	gen := NewGenerator(llm)

	answer, err := gen.Answer(context.Background(), "wie lange?", chunks, scores)
	require.NoError(t, err)

	require.Len(t, answer.Citations, 1)
	span := answer.Citations[0].Span
	assert.True(t, utf8.ValidString(span))
	assert.Equal(t, citationSpanLimit, utf8.RuneCountInString(strings.TrimSuffix(span, "...")))
}

func TestGenerator_NumberedContextInPrompt(t *testing.T) {
	chunks, scores := groundingFixture()
	llm := &mockLLMService{generateResult: "answer [1]"}
	gen := NewGenerator(llm)

	_, err := gen.Answer(context.Background(), "coverage?", chunks, scores)
	require.NoError(t, err)

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "[1] The warranty covers parts for two years.")
	assert.Contains(t, llm.prompts[0], "[2] Labour costs are excluded after ninety days.")
	assert.Contains(t, llm.prompts[0], "coverage?")
}
