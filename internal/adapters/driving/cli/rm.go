package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm [doc-id...]",
	Short: "Remove documents from the knowledge base",
	Long: `Removes each document together with its chunks and vector records.
Style profiles learned from the document are kept.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := context.Background()
	for _, id := range args {
		if err := ingestService.Delete(ctx, id); err != nil {
			return fmt.Errorf("removing %s: %w", id, err)
		}
		cmd.Printf("Removed %s.\n", id)
	}
	return nil
}
