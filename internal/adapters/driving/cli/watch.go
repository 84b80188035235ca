package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/quill-cli/internal/adapters/driven/loader/filesystem"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driving"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Watch a directory and ingest documents as they change",
	Long: `Watches the directory for new or modified text files and ingests
each one after it settles. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if embeddingService == nil {
		return errors.New("embedding provider not configured, run 'quill settings embedding'")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher, err := filesystem.NewWatcher(args[0], func(path string) {
		results := ingestService.IngestBatch(ctx, []string{path})
		for _, res := range results {
			if res.Outcome == driving.IngestFailed {
				cmd.Printf("  failed     %s: %v\n", res.Location, res.Err)
			} else {
				cmd.Printf("  %-9s  %s\n", res.Outcome, res.Location)
			}
		}
	})
	if err != nil {
		return err
	}

	watcher.Start()
	defer watcher.Stop()

	cmd.Printf("Watching %s. Press Ctrl+C to stop.\n", args[0])
	<-ctx.Done()
	cmd.Println("\nStopped.")
	return nil
}
