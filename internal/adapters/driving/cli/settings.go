package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
)

// Providers offered by the interactive configuration, local first.
var (
	embeddingProviders = []domain.AIProvider{domain.AIProviderOllama, domain.AIProviderOpenAI}
	llmProviders       = []domain.AIProvider{domain.AIProviderOllama, domain.AIProviderOpenAI, domain.AIProviderAnthropic}

	defaultEmbeddingModels = map[domain.AIProvider]string{
		domain.AIProviderOllama: "nomic-embed-text",
		domain.AIProviderOpenAI: "text-embedding-3-small",
	}
	defaultLLMModels = map[domain.AIProvider]string{
		domain.AIProviderOllama:    "llama3.1",
		domain.AIProviderOpenAI:    "gpt-4o-mini",
		domain.AIProviderAnthropic: "claude-sonnet-4-5",
	}
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, chunking and retrieval options.

Use subcommands to configure specific settings.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	Long:  `Configure the embedding provider used for ingestion and retrieval.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the LLM provider",
	Long:  `Configure the LLM provider used for answering and drafting.`,
	RunE:  runSettingsLLM,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Set a configuration value by dotted key, for example:

  quill settings set chunking.size 200
  quill settings set retrieval.score_floor 0.25`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	embedding := embeddingSettingsFromConfig(configStore)
	llm := llmSettingsFromConfig(configStore)

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	printProviderSettings(cmd, providerView{
		configured: embedding.IsConfigured(),
		provider:   string(embedding.Provider),
		model:      embedding.Model,
		baseURL:    embedding.BaseURL,
		apiKey:     embedding.APIKey,
	})
	cmd.Println()

	cmd.Println("[LLM]")
	printProviderSettings(cmd, providerView{
		configured: llm.IsConfigured(),
		provider:   string(llm.Provider),
		model:      llm.Model,
		baseURL:    llm.BaseURL,
		apiKey:     llm.APIKey,
	})
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Size: %d tokens\n", orDefaultInt(configStore.GetInt("chunking.size"), domain.DefaultChunkSize))
	cmd.Printf("  Overlap: %d tokens\n", orDefaultInt(configStore.GetInt("chunking.overlap"), domain.DefaultChunkOverlap))
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  K: %d\n", orDefaultInt(configStore.GetInt("retrieval.k"), domain.DefaultRetrievalK))
	floor := configStore.GetFloat("retrieval.score_floor")
	if floor == 0 {
		floor = domain.DefaultScoreFloor
	}
	cmd.Printf("  Score floor: %.2f\n", floor)
	cmd.Println()

	cmd.Printf("Config file: %s\n", configStore.Path())
	return nil
}

// providerView is the provider-agnostic shape shown by settings.
type providerView struct {
	configured bool
	provider   string
	model      string
	baseURL    string
	apiKey     string
}

func printProviderSettings(cmd *cobra.Command, v providerView) {
	if v.provider == "" {
		cmd.Println("  Provider: (not set)")
		return
	}
	cmd.Printf("  Provider: %s\n", v.provider)
	cmd.Printf("  Model: %s\n", v.model)
	if v.baseURL != "" {
		cmd.Printf("  Base URL: %s\n", v.baseURL)
	}
	if v.provider != string(domain.AIProviderOllama) {
		if v.apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(v.apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !v.configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select Embedding Provider")
	for i, p := range embeddingProviders {
		cmd.Printf("  %d. %s\n", i+1, p)
	}
	cmd.Print("\nEnter choice [1]: ")
	provider := embeddingProviders[parseChoice(readLine(reader), len(embeddingProviders), 1)-1]

	model := askModel(cmd, reader, defaultEmbeddingModels[provider])

	apiKey, err := askAPIKey(cmd, provider)
	if err != nil {
		return err
	}

	settings := &domain.EmbeddingSettings{Provider: provider, Model: model, APIKey: apiKey}

	cmd.Print("Validating configuration... ")
	if configValidator != nil {
		if err := configValidator.ValidateEmbedding(settings); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("embedding configuration validation failed: %w", err)
		}
	}
	cmd.Println("OK")

	if err := saveProviderSettings("embedding", string(provider), model, apiKey); err != nil {
		return err
	}

	cmd.Printf("Embedding provider configured: %s (%s)\n", provider, model)
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select LLM Provider")
	for i, p := range llmProviders {
		cmd.Printf("  %d. %s\n", i+1, p)
	}
	cmd.Print("\nEnter choice [1]: ")
	provider := llmProviders[parseChoice(readLine(reader), len(llmProviders), 1)-1]

	model := askModel(cmd, reader, defaultLLMModels[provider])

	apiKey, err := askAPIKey(cmd, provider)
	if err != nil {
		return err
	}

	settings := &domain.LLMSettings{Provider: provider, Model: model, APIKey: apiKey}

	cmd.Print("Validating configuration... ")
	if configValidator != nil {
		if err := configValidator.ValidateLLM(settings); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("LLM configuration validation failed: %w", err)
		}
	}
	cmd.Println("OK")

	if err := saveProviderSettings("llm", string(provider), model, apiKey); err != nil {
		return err
	}

	cmd.Printf("LLM provider configured: %s (%s)\n", provider, model)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	if err := configStore.Set(args[0], parseConfigValue(args[1])); err != nil {
		return fmt.Errorf("saving setting: %w", err)
	}
	cmd.Printf("Set %s.\n", args[0])
	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	value, ok := configStore.Get(args[0])
	if !ok {
		return fmt.Errorf("key %s not set", args[0])
	}
	if strings.HasSuffix(args[0], "api_key") || strings.HasSuffix(args[0], "token") {
		value = maskAPIKey(fmt.Sprint(value))
	}
	cmd.Printf("%v\n", value)
	return nil
}

// Helper functions.

func askModel(cmd *cobra.Command, reader *bufio.Reader, defaultModel string) string {
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}
	return model
}

func askAPIKey(cmd *cobra.Command, provider domain.AIProvider) (string, error) {
	if provider == domain.AIProviderOllama {
		return "", nil
	}
	cmd.Print("Enter API key: ")
	apiKey := readPassword()
	cmd.Println()
	if apiKey == "" {
		return "", errors.New("API key is required for this provider")
	}
	return apiKey, nil
}

func saveProviderSettings(section, provider, model, apiKey string) error {
	if err := configStore.Set(section+".provider", provider); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	if err := configStore.Set(section+".model", model); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	if apiKey != "" {
		if err := configStore.Set(section+".api_key", apiKey); err != nil {
			return fmt.Errorf("saving settings: %w", err)
		}
	}
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Read without echo when attached to a terminal.
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// parseConfigValue keeps numeric and boolean settings typed in the
// config file.
func parseConfigValue(raw string) any {
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		return v
	}
	return raw
}

func orDefaultInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}
