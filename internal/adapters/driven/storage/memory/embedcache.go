package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/quill-cli/internal/core/ports/driven"
)

// Ensure EmbeddingCache implements the interface.
var _ driven.EmbeddingCache = (*EmbeddingCache)(nil)

// EmbeddingCache is an in-memory implementation of driven.EmbeddingCache.
type EmbeddingCache struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

// NewEmbeddingCache creates a new in-memory embedding cache.
func NewEmbeddingCache() *EmbeddingCache {
	return &EmbeddingCache{
		vectors: make(map[string][]float32),
	}
}

// Get returns the cached vector for a text hash, or nil if absent.
func (c *EmbeddingCache) Get(_ context.Context, textHash string) ([]float32, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vec, ok := c.vectors[textHash]
	if !ok {
		return nil, nil
	}
	out := make([]float32, len(vec))
	copy(out, vec)
	return out, nil
}

// Put stores a vector for a text hash.
func (c *EmbeddingCache) Put(_ context.Context, textHash string, embedding []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := make([]float32, len(embedding))
	copy(stored, embedding)
	c.vectors[textHash] = stored
	return nil
}
