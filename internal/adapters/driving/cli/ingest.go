package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quill-cli/internal/adapters/driven/loader/filesystem"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driving"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Ingest documents into the knowledge base",
	Long: `Loads the given files, chunks them, embeds the chunks and stores
everything in the local knowledge base. Directories are expanded to the
supported text files they contain. Re-ingesting unchanged content is a
no-op.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if embeddingService == nil {
		return errors.New("embedding provider not configured, run 'quill settings embedding'")
	}

	locations, err := expandLocations(args)
	if err != nil {
		return err
	}
	if len(locations) == 0 {
		return errors.New("no supported documents found")
	}

	results := ingestService.IngestBatch(context.Background(), locations)

	failed := 0
	for _, res := range results {
		switch res.Outcome {
		case driving.IngestFailed:
			failed++
			cmd.Printf("  failed     %s: %v\n", res.Location, res.Err)
		case driving.IngestUnchanged:
			cmd.Printf("  unchanged  %s\n", res.Location)
		default:
			cmd.Printf("  stored     %s (%d chunks)\n", res.Location, res.ChunkCount)
		}
	}

	cmd.Printf("\nIngested %d of %d documents.\n", len(results)-failed, len(results))
	if failed > 0 {
		return fmt.Errorf("%d documents failed", failed)
	}
	return nil
}

// expandLocations resolves directories to the supported files inside
// them, leaving plain file paths untouched.
func expandLocations(args []string) ([]string, error) {
	var locations []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			// Let the loader report the failure per-document.
			locations = append(locations, arg)
			continue
		}
		if !info.IsDir() {
			locations = append(locations, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filesystem.IsSupported(path) {
				locations = append(locations, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", arg, err)
		}
	}
	return locations, nil
}
