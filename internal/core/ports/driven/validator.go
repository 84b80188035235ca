package driven

import "github.com/custodia-labs/quill-cli/internal/core/domain"

// AIConfigValidator validates AI provider configurations, typically by
// creating a throwaway service and pinging the provider.
type AIConfigValidator interface {
	// ValidateEmbedding checks that an embedding configuration can reach
	// its provider.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM checks that an LLM configuration can reach its provider.
	ValidateLLM(config *domain.LLMSettings) error
}
