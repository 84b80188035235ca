// Package file writes finalized drafts and answers to local files.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driven"
)

// Ensure Exporter implements the interface.
var _ driven.Exporter = (*Exporter)(nil)

// supportedFormats lists the extensions the exporter will write.
var supportedFormats = map[string]bool{
	".txt": true,
	".md":  true,
}

// Exporter writes content as plain text or markdown.
type Exporter struct{}

// NewExporter creates a file exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export writes content to the destination path. The destination's
// extension selects the format; a missing extension defaults to .txt.
// Parent directories are created as needed.
func (e *Exporter) Export(_ context.Context, content, destination string) error {
	if strings.TrimSpace(destination) == "" {
		return fmt.Errorf("destination path is required: %w", domain.ErrInvalidInput)
	}

	ext := strings.ToLower(filepath.Ext(destination))
	if ext == "" {
		destination += ".txt"
	} else if !supportedFormats[ext] {
		return fmt.Errorf("unsupported export format %s: %w", ext, domain.ErrInvalidInput)
	}

	if dir := filepath.Dir(destination); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}

	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	if err := os.WriteFile(destination, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing export file: %w", err)
	}
	return nil
}
