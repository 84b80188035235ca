package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/quill-cli/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/quill-cli/internal/adapters/driven/config/file"
	exportfile "github.com/custodia-labs/quill-cli/internal/adapters/driven/export/file"
	"github.com/custodia-labs/quill-cli/internal/adapters/driven/loader/filesystem"
	"github.com/custodia-labs/quill-cli/internal/adapters/driven/storage/sqlite"
	vectorsqlite "github.com/custodia-labs/quill-cli/internal/adapters/driven/vector/sqlite"
	"github.com/custodia-labs/quill-cli/internal/chunker"
	"github.com/custodia-labs/quill-cli/internal/core/domain"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quill-cli/internal/core/services"
	"github.com/custodia-labs/quill-cli/internal/logger"
)

// Handles that need closing at shutdown.
var (
	appStore *sqlite.Store
	appIndex *vectorsqlite.Index
)

// bootstrap wires the full service graph from configuration under
// ~/.quill. An unreachable AI provider degrades to a warning so
// commands that do not need it keep working.
func bootstrap() error {
	cfg, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	configStore = cfg

	prompts, err := configfile.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("loading prompts: %w", err)
	}
	promptStore = prompts

	configValidator = ai.NewConfigValidator()
	exportService = exportfile.NewExporter()

	dataDir := cfg.GetString("storage.data_dir")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".quill", "data")
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening document store: %w", err)
	}
	appStore = store

	index, err := vectorsqlite.NewIndex(dataDir)
	if err != nil {
		return fmt.Errorf("opening vector index: %w", err)
	}
	appIndex = index

	embeddingService, err = ai.CreateAndValidateEmbeddingService(embeddingSettingsFromConfig(cfg))
	if err != nil {
		logger.Warn("embedding provider unavailable: %v", err)
		embeddingService = nil
	}
	llmService, err = ai.CreateAndValidateLLMService(llmSettingsFromConfig(cfg))
	if err != nil {
		logger.Warn("llm provider unavailable: %v", err)
		llmService = nil
	}

	ch, err := chunkerFromConfig(cfg)
	if err != nil {
		return err
	}

	ingestor := services.NewIngestor(
		filesystem.NewLoader(),
		store.DocumentStore(),
		index,
		embeddingService,
		ch,
	)
	ingestor.SetEmbeddingCache(store.EmbeddingCache())
	ingestor.SetStorePath(dataDir)
	if workers := cfg.GetInt("ingest.workers"); workers > 0 {
		ingestor.SetWorkers(workers)
	}
	if rps := cfg.GetFloat("ingest.embed_rps"); rps > 0 {
		burst := cfg.GetInt("ingest.embed_burst")
		if burst <= 0 {
			burst = 1
		}
		ingestor.SetRateLimit(rps, burst)
	}

	retriever := services.NewRetriever(embeddingService, index, store.DocumentStore())
	if k := cfg.GetInt("retrieval.k"); k > 0 {
		retriever.SetDefaultK(k)
	}

	generator := services.NewGenerator(llmService)
	generator.SetPromptStore(prompts)
	if floor := cfg.GetFloat("retrieval.score_floor"); floor > 0 {
		generator.SetScoreFloor(floor)
	}

	query := services.NewQueryService(retriever, generator, store.DocumentStore(), llmService)

	drafter := services.NewDrafter(
		store.StyleProfileStore(),
		store.DraftSessionStore(),
		llmService,
		query,
	)
	drafter.SetPromptStore(prompts)

	ingestService = ingestor
	statsService = ingestor
	queryService = query
	styleService = services.NewStyleService(store.DocumentStore(), store.StyleProfileStore())
	draftService = drafter

	return nil
}

// shutdown releases the handles opened during bootstrap.
func shutdown() {
	if embeddingService != nil {
		embeddingService.Close()
	}
	if llmService != nil {
		llmService.Close()
	}
	if appIndex != nil {
		if err := appIndex.Close(); err != nil {
			logger.Warn("closing vector index: %v", err)
		}
	}
	if appStore != nil {
		if err := appStore.Close(); err != nil {
			logger.Warn("closing document store: %v", err)
		}
	}
}

// chunkerFromConfig builds the chunker from persisted settings,
// falling back to defaults when unset.
func chunkerFromConfig(cfg driven.ConfigStore) (*chunker.Chunker, error) {
	size := cfg.GetInt("chunking.size")
	if size == 0 {
		size = domain.DefaultChunkSize
	}
	overlap := cfg.GetInt("chunking.overlap")
	if overlap == 0 {
		overlap = domain.DefaultChunkOverlap
	}

	ch, err := chunker.New(chunker.WithSize(size), chunker.WithOverlap(overlap))
	if err != nil {
		return nil, fmt.Errorf("invalid chunking settings (size=%d overlap=%d): %w", size, overlap, err)
	}
	return ch, nil
}

// embeddingSettingsFromConfig reads the embedding provider settings,
// falling back to the provider's conventional environment variable for
// the API key. An unset provider yields an unconfigured settings value.
func embeddingSettingsFromConfig(cfg driven.ConfigStore) *domain.EmbeddingSettings {
	provider := domain.AIProvider(cfg.GetString("embedding.provider"))
	settings := &domain.EmbeddingSettings{
		Provider: provider,
		Model:    cfg.GetString("embedding.model"),
		APIKey:   cfg.GetString("embedding.api_key"),
		BaseURL:  cfg.GetString("embedding.base_url"),
	}
	if settings.APIKey == "" {
		settings.APIKey = apiKeyFromEnv(provider)
	}
	return settings
}

// llmSettingsFromConfig reads the LLM provider settings with the same
// environment fallback.
func llmSettingsFromConfig(cfg driven.ConfigStore) *domain.LLMSettings {
	provider := domain.AIProvider(cfg.GetString("llm.provider"))
	settings := &domain.LLMSettings{
		Provider: provider,
		Model:    cfg.GetString("llm.model"),
		APIKey:   cfg.GetString("llm.api_key"),
		BaseURL:  cfg.GetString("llm.base_url"),
	}
	if settings.APIKey == "" {
		settings.APIKey = apiKeyFromEnv(provider)
	}
	return settings
}

func apiKeyFromEnv(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case domain.AIProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	default:
		return ""
	}
}
