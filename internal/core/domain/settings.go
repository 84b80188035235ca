package domain

// AIProvider identifies an embedding or LLM backend.
type AIProvider string

// Supported providers.
const (
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderOllama    AIProvider = "ollama"
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderOllama, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// EmbeddingSettings configures the embedding provider.
type EmbeddingSettings struct {
	Provider AIProvider
	Model    string
	APIKey   string
	BaseURL  string
}

// IsConfigured returns true if enough is set to create a service.
func (s *EmbeddingSettings) IsConfigured() bool {
	if s == nil || !s.Provider.IsValid() {
		return false
	}
	// Ollama runs locally and needs no key.
	if s.Provider == AIProviderOllama {
		return true
	}
	return s.APIKey != ""
}

// LLMSettings configures the text-generation provider.
type LLMSettings struct {
	Provider AIProvider
	Model    string
	APIKey   string
	BaseURL  string
}

// IsConfigured returns true if enough is set to create a service.
func (s *LLMSettings) IsConfigured() bool {
	if s == nil || !s.Provider.IsValid() {
		return false
	}
	if s.Provider == AIProviderOllama {
		return true
	}
	return s.APIKey != ""
}

// ChunkingSettings configures the chunker.
type ChunkingSettings struct {
	// Size is the target chunk size in tokens.
	Size int

	// Overlap is the number of tokens shared by consecutive chunks.
	Overlap int
}

// Default chunking values.
const (
	DefaultChunkSize    = 200
	DefaultChunkOverlap = 40
)

// Validate rejects configurations the chunker cannot honour.
func (s ChunkingSettings) Validate() error {
	if s.Size <= 0 || s.Overlap < 0 || s.Overlap >= s.Size {
		return ErrInvalidConfig
	}
	return nil
}

// RetrievalSettings configures the retriever and the grounding floor.
type RetrievalSettings struct {
	// K is the default number of chunks to retrieve.
	K int

	// ScoreFloor is the minimum top-hit similarity required before the
	// generator will answer instead of refusing.
	ScoreFloor float64
}

// Default retrieval values.
const (
	DefaultRetrievalK = 5
	DefaultScoreFloor = 0.25
)

// EmbeddingDimensions returns known model dimensions.
// Used to size the vector index before the first embedding call.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		"nomic-embed-text":       768,
		"all-minilm":             384,
	}
}
