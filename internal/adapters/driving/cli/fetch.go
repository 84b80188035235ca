package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quill-cli/internal/adapters/driven/dms/netdocs"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driving"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [doc-id...]",
	Short: "Fetch documents from the document management system",
	Long: `Downloads documents from the configured document management service
by id and ingests them into the knowledge base. Requires an access
token in the 'dms.token' setting or the QUILL_DMS_TOKEN environment
variable.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if embeddingService == nil {
		return errors.New("embedding provider not configured, run 'quill settings embedding'")
	}

	repo, err := newDocumentRepository()
	if err != nil {
		return err
	}

	ctx := context.Background()
	failed := 0
	for _, id := range args {
		doc, err := repo.Fetch(ctx, id)
		if err != nil {
			failed++
			cmd.Printf("  failed     %s: %v\n", id, err)
			continue
		}

		res, err := ingestService.Ingest(ctx, doc.Text, doc.SourceURI, doc.Metadata)
		if err != nil {
			failed++
			cmd.Printf("  failed     %s: %v\n", id, err)
			continue
		}

		if res.Outcome == driving.IngestUnchanged {
			cmd.Printf("  unchanged  %s\n", id)
		} else {
			cmd.Printf("  stored     %s (%d chunks)\n", id, res.ChunkCount)
		}
	}

	cmd.Printf("\nFetched %d of %d documents.\n", len(args)-failed, len(args))
	if failed > 0 {
		return fmt.Errorf("%d documents failed", failed)
	}
	return nil
}

// newDocumentRepository builds the DMS client from configuration. The
// token never appears in command output.
func newDocumentRepository() (*netdocs.Client, error) {
	token := ""
	if configStore != nil {
		token = configStore.GetString("dms.token")
	}
	if token == "" {
		token = os.Getenv("QUILL_DMS_TOKEN")
	}
	if token == "" {
		return nil, errors.New("no DMS access token, set 'dms.token' or QUILL_DMS_TOKEN")
	}

	baseURL := ""
	if configStore != nil {
		baseURL = configStore.GetString("dms.base_url")
	}

	return netdocs.NewClient(netdocs.Config{
		AccessToken: token,
		BaseURL:     baseURL,
	})
}
