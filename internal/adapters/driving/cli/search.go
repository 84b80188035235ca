package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driving"
)

var (
	searchLimit  int
	searchJSON   bool
	searchRerank bool
	searchFilter []string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the knowledge base without generating an answer",
	Long: `Performs semantic retrieval only and prints the matching chunks with
their scores. Useful for inspecting what 'ask' would ground its answer
on.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 uses the configured default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchRerank, "rerank", false, "re-rank vector hits by lexical overlap")
	searchCmd.Flags().StringArrayVar(&searchFilter, "filter", nil, "metadata filter as key=value (repeatable)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}
	if embeddingService == nil {
		return errors.New("embedding provider not configured, run 'quill settings embedding'")
	}

	filter, err := parseMetadataFilter(searchFilter)
	if err != nil {
		return err
	}

	opts := domain.RetrievalOptions{
		K:              searchLimit,
		MetadataFilter: filter,
		Rerank:         searchRerank,
	}

	results, err := queryService.Search(context.Background(), args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []driving.RetrievedChunk) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []driving.RetrievedChunk) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, res := range results {
		title := res.Chunk.Metadata["title"]
		if title == "" {
			title = res.Chunk.DocumentID
		}

		cmd.Printf("  [%d] %s #%d (%.2f)\n", i+1, title, res.Chunk.Ordinal, res.Score)
		cmd.Printf("      %s\n", snippet(res.Chunk.Content, 160))
		cmd.Println()
	}
	return nil
}

// snippet truncates text to at most n characters on a rune boundary.
func snippet(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
