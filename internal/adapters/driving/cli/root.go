// Package cli implements the quill command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/quill-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driving"
	"github.com/custodia-labs/quill-cli/internal/logger"
)

// version is set by Execute from the build's version string.
var version = "dev"

// Services wired during bootstrap. Commands guard against nil so a
// partial bootstrap still produces a usable error message instead of a
// panic. The AI handles stay nil when no provider is configured.
var (
	ingestService driving.IngestService
	statsService  driving.StatsService
	queryService  driving.QueryService
	styleService  driving.StyleService
	draftService  driving.DraftService

	exportService   driven.Exporter
	configStore     driven.ConfigStore
	promptStore     driven.PromptStore
	configValidator driven.AIConfigValidator

	embeddingService driven.EmbeddingService
	llmService       driven.LLMService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Grounded question answering and style-aware drafting over your documents",
	Long: `Quill ingests your documents into a local knowledge base, answers
questions with citations into the stored text, learns the writing style
of a document sample, and drafts new documents in that style.

All data lives under ~/.quill. No document content leaves your machine
except the text sent to the configured AI provider.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute wires the service graph and runs the root command.
func Execute(v string) error {
	if v != "" {
		version = v
	}

	if err := bootstrap(); err != nil {
		return err
	}
	defer shutdown()

	return rootCmd.Execute()
}
