package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quill-cli/internal/logger"
)

// Weights for blending vector similarity with lexical overlap when
// re-ranking is enabled.
const (
	vectorWeight  = 0.7
	lexicalWeight = 0.3
)

// Retriever turns a natural-language query into a ranked list of
// relevant chunks.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	docStore driven.DocumentStore
	defaultK int
}

// NewRetriever creates a new retriever.
func NewRetriever(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	docStore driven.DocumentStore,
) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
		docStore: docStore,
		defaultK: domain.DefaultRetrievalK,
	}
}

// SetDefaultK overrides the default result count.
func (r *Retriever) SetDefaultK(k int) {
	if k > 0 {
		r.defaultK = k
	}
}

// Retrieve embeds the query, searches the vector index and returns up
// to k scored chunks, descending by score. Ties break by ordinal
// ascending then chunk id so rankings are reproducible. An empty query
// or empty index yields an empty result, not an error.
func (r *Retriever) Retrieve(
	ctx context.Context, query string, opts domain.RetrievalOptions,
) (domain.RetrievalResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.RetrievalResult{}, nil
	}

	k := opts.K
	if k <= 0 {
		k = r.defaultK
	}

	// Over-fetch so re-ranking and dedupe have candidates to work with.
	fetchK := k * 3
	logger.Debug("Retrieve: query=%q, k=%d, fetch=%d, rerank=%t", query, k, fetchK, opts.Rerank)

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.index.Search(ctx, embedding, fetchK, opts.MetadataFilter)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Retrieve: %d candidate hits", len(hits))

	result := make(domain.RetrievalResult, 0, len(hits))
	seen := make(map[string]bool, len(hits))
	for _, hit := range hits {
		if seen[hit.ChunkID] {
			continue
		}
		seen[hit.ChunkID] = true
		result = append(result, domain.ScoredChunk{
			ChunkID:    hit.ChunkID,
			DocumentID: hit.DocumentID,
			Ordinal:    hit.Ordinal,
			Score:      hit.Similarity,
		})
	}

	if opts.Rerank {
		result = r.rerank(ctx, query, result)
	}

	sortRetrieval(result)
	if len(result) > k {
		result = result[:k]
	}
	return result, nil
}

// rerank blends vector similarity with lexical term overlap between the
// query and the chunk text. Chunks whose text cannot be resolved keep
// their vector score.
func (r *Retriever) rerank(
	ctx context.Context, query string, result domain.RetrievalResult,
) domain.RetrievalResult {
	queryTerms := termSet(query)
	if len(queryTerms) == 0 {
		return result
	}

	for i := range result {
		chunk, err := r.docStore.GetChunk(ctx, result[i].ChunkID)
		if err != nil {
			continue
		}
		overlap := termOverlap(queryTerms, chunk.Content)
		result[i].Score = vectorWeight*result[i].Score + lexicalWeight*overlap
	}
	return result
}

// sortRetrieval orders by score descending, breaking ties by ordinal
// ascending then chunk id.
func sortRetrieval(result domain.RetrievalResult) {
	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		if result[i].Ordinal != result[j].Ordinal {
			return result[i].Ordinal < result[j].Ordinal
		}
		return result[i].ChunkID < result[j].ChunkID
	})
}

// termSet lower-cases and splits text into a set of terms.
func termSet(text string) map[string]bool {
	terms := make(map[string]bool)
	for _, term := range strings.Fields(strings.ToLower(text)) {
		term = strings.Trim(term, ".,;:!?\"'()[]")
		if term != "" {
			terms[term] = true
		}
	}
	return terms
}

// termOverlap returns the fraction of query terms present in the text.
func termOverlap(queryTerms map[string]bool, text string) float64 {
	if len(queryTerms) == 0 {
		return 0
	}
	textTerms := termSet(text)
	matched := 0
	for term := range queryTerms {
		if textTerms[term] {
			matched++
		}
	}
	return float64(matched) / float64(len(queryTerms))
}
