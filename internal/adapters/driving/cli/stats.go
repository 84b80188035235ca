package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if statsService == nil {
		return errors.New("stats service not configured")
	}

	stats, err := statsService.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}

	cmd.Println("Knowledge base")
	cmd.Printf("  Documents: %d\n", stats.DocumentCount)
	cmd.Printf("  Chunks: %d\n", stats.ChunkCount)
	cmd.Printf("  Vectors: %d\n", stats.VectorCount)
	if stats.EmbeddingModel != "" {
		cmd.Printf("  Embedding model: %s\n", stats.EmbeddingModel)
	}
	if stats.StorePath != "" {
		cmd.Printf("  Store: %s\n", stats.StorePath)
	}
	return nil
}
