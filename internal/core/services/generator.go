package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quill-cli/internal/logger"
)

// Ensure Generator can receive a custom prompt store.
var _ driven.PromptStoreAware = (*Generator)(nil)

// defaultGroundedAnswerPrompt is used when no prompt store is injected.
const defaultGroundedAnswerPrompt = `You are a helpful assistant that answers questions based only on the provided context from documents.

CONTEXT:
%s

QUESTION:
%s

INSTRUCTIONS:
1. Answer the question based only on the information provided in the context
2. Cite the context passages you used with their [n] markers
3. If the context does not contain enough information to answer, say so
4. Be concise and accurate

ANSWER:`

// citationMarker matches [n] references in generated answers.
var citationMarker = regexp.MustCompile(`\[(\d+)\]`)

// citationSpanLimit caps the excerpt stored with each citation.
const citationSpanLimit = 120

// Generator synthesises grounded, cited answers from retrieved chunks.
type Generator struct {
	llm        driven.LLMService
	prompts    driven.PromptStore
	scoreFloor float64
}

// NewGenerator creates a new answer generator.
func NewGenerator(llm driven.LLMService) *Generator {
	return &Generator{
		llm:        llm,
		scoreFloor: domain.DefaultScoreFloor,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (g *Generator) SetPromptStore(store driven.PromptStore) {
	g.prompts = store
}

// SetScoreFloor overrides the minimum retrieval score a chunk must
// clear before it may ground an answer.
func (g *Generator) SetScoreFloor(floor float64) {
	g.scoreFloor = floor
}

// Answer generates a grounded answer to the question from the supplied
// chunks. Chunks below the score floor are excluded; when none remain
// the explicit insufficient-context variant is returned instead of a
// fabricated answer. Citations only ever point at supplied chunks.
func (g *Generator) Answer(
	ctx context.Context, question string, chunks []domain.Chunk, scores domain.RetrievalResult,
) (domain.Answer, error) {
	grounding := g.selectGrounding(chunks, scores)
	if len(grounding) == 0 {
		logger.Info("No chunk cleared the score floor (%.2f), refusing to answer", g.scoreFloor)
		return domain.NewInsufficientContextAnswer(), nil
	}
	logger.Debug("Answer: %d of %d chunks cleared the floor", len(grounding), len(chunks))

	prompt := fmt.Sprintf(g.promptTemplate(), numberedContext(grounding), question)

	text, err := g.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   1024,
		Temperature: 0.2,
	})
	if err != nil {
		return domain.Answer{}, fmt.Errorf("generate answer: %w", err)
	}
	text = strings.TrimSpace(text)

	citations, confidence := g.extractCitations(text, grounding)
	return domain.NewGroundedAnswer(text, citations, confidence), nil
}

// groundedChunk pairs a chunk with its retrieval score for prompting
// and citation mapping.
type groundedChunk struct {
	chunk domain.Chunk
	score float64
}

// selectGrounding filters the chunks to those clearing the score floor,
// preserving retrieval order.
func (g *Generator) selectGrounding(
	chunks []domain.Chunk, scores domain.RetrievalResult,
) []groundedChunk {
	byID := make(map[string]domain.Chunk, len(chunks))
	for _, chunk := range chunks {
		byID[chunk.ID] = chunk
	}

	grounding := make([]groundedChunk, 0, len(scores))
	for _, sc := range scores {
		if sc.Score < g.scoreFloor {
			continue
		}
		chunk, ok := byID[sc.ChunkID]
		if !ok {
			continue
		}
		grounding = append(grounding, groundedChunk{chunk: chunk, score: sc.Score})
	}
	return grounding
}

// numberedContext renders the grounding chunks as numbered passages,
// matching the [n] citation convention in the prompt.
func numberedContext(grounding []groundedChunk) string {
	var builder strings.Builder
	for i, gc := range grounding {
		if i > 0 {
			builder.WriteString("\n\n")
		}
		fmt.Fprintf(&builder, "[%d] %s", i+1, gc.chunk.Content)
	}
	return builder.String()
}

// extractCitations maps [n] markers in the answer back to the grounding
// chunks. When the model emitted no markers, citations fall back to
// lexical overlap against the grounding set, and finally to the
// top-ranked chunk, so a grounded answer never goes out uncited.
func (g *Generator) extractCitations(
	answer string, grounding []groundedChunk,
) ([]domain.Citation, float64) {
	cited := make([]bool, len(grounding))
	found := false

	for _, match := range citationMarker.FindAllStringSubmatch(answer, -1) {
		n, err := strconv.Atoi(match[1])
		if err != nil || n < 1 || n > len(grounding) {
			continue
		}
		cited[n-1] = true
		found = true
	}

	if !found {
		answerTerms := termSet(answer)
		for i, gc := range grounding {
			if termOverlap(answerTerms, gc.chunk.Content) >= 0.1 {
				cited[i] = true
				found = true
			}
		}
	}
	if !found {
		cited[0] = true
	}

	var citations []domain.Citation
	var scoreSum float64
	for i, gc := range grounding {
		if !cited[i] {
			continue
		}
		citations = append(citations, domain.Citation{
			ChunkID:    gc.chunk.ID,
			DocumentID: gc.chunk.DocumentID,
			Span:       excerpt(gc.chunk.Content),
		})
		scoreSum += gc.score
	}

	return citations, scoreSum / float64(len(citations))
}

// excerpt trims chunk content down to a short citation span, cutting
// on a rune boundary so multi-byte text stays valid UTF-8.
func excerpt(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= citationSpanLimit {
		return content
	}
	return string(runes[:citationSpanLimit]) + "..."
}

// promptTemplate loads the grounded-answer prompt, falling back to the
// built-in default.
func (g *Generator) promptTemplate() string {
	if g.prompts != nil {
		if tmpl, err := g.prompts.Load(driven.PromptGroundedAnswer); err == nil && tmpl != "" {
			return tmpl
		}
	}
	return defaultGroundedAnswerPrompt
}
