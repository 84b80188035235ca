package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
)

var (
	askK      int
	askRerank bool
	askFilter []string
	askJSON   bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question against the knowledge base",
	Long: `Retrieves the most relevant chunks for the question and generates a
grounded answer with citations into the stored documents. When nothing
relevant enough is found, quill says so instead of guessing.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askK, "top", "k", 0, "number of chunks to retrieve (0 uses the configured default)")
	askCmd.Flags().BoolVar(&askRerank, "rerank", false, "re-rank vector hits by lexical overlap")
	askCmd.Flags().StringArrayVar(&askFilter, "filter", nil, "metadata filter as key=value (repeatable)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}
	if embeddingService == nil {
		return errors.New("embedding provider not configured, run 'quill settings embedding'")
	}
	if llmService == nil {
		return errors.New("llm provider not configured, run 'quill settings llm'")
	}

	filter, err := parseMetadataFilter(askFilter)
	if err != nil {
		return err
	}

	opts := domain.RetrievalOptions{
		K:              askK,
		MetadataFilter: filter,
		Rerank:         askRerank,
	}

	answer, err := queryService.Ask(context.Background(), args[0], opts)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if !answer.Grounded() {
		cmd.Println("The knowledge base does not contain enough relevant context to answer this question.")
		return nil
	}

	cmd.Println(answer.Text)
	cmd.Println()
	cmd.Printf("Confidence: %.2f\n", answer.Confidence)
	cmd.Println("Sources:")
	for i, c := range answer.Citations {
		cmd.Printf("  [%d] %s\n", i+1, c.ChunkID)
		if c.Span != "" {
			cmd.Printf("      %s\n", c.Span)
		}
	}
	return nil
}

// parseMetadataFilter turns repeated key=value flags into a filter map.
func parseMetadataFilter(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	filter := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q, expected key=value", pair)
		}
		filter[key] = value
	}
	return filter, nil
}
