// Package filesystem loads plain-text documents from the local
// filesystem and can watch a directory for changes.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// maxFileSize bounds a single document read.
const maxFileSize = 10 << 20 // 10 MiB

// supportedExtensions lists the plain-text formats the loader accepts.
// Rich formats (PDF, DOCX) are not parsed.
var supportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".text":     true,
	".rst":      true,
}

// Loader reads plain-text documents from disk.
type Loader struct{}

// NewLoader creates a filesystem document loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and normalises the document at the given path.
// Line endings are normalised to LF and a UTF-8 BOM is stripped.
func (l *Loader) Load(_ context.Context, location string) (*driven.LoadedDocument, error) {
	path := strings.TrimPrefix(location, "file://")

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("document %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, domain.ErrInvalidInput)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("%s exceeds %d bytes: %w", path, int64(maxFileSize), domain.ErrInvalidInput)
	}
	if !IsSupported(abs) {
		return nil, fmt.Errorf("unsupported file type %s: %w", filepath.Ext(abs), domain.ErrInvalidInput)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%s is not valid UTF-8 text: %w", path, domain.ErrInvalidInput)
	}

	text := normaliseText(string(data))
	name := filepath.Base(abs)

	return &driven.LoadedDocument{
		SourceURI: "file://" + abs,
		Text:      text,
		Metadata: map[string]string{
			"filename": name,
			"title":    strings.TrimSuffix(name, filepath.Ext(name)),
		},
	}, nil
}

// IsSupported reports whether the loader can handle the file.
func IsSupported(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// normaliseText converts CRLF line endings to LF and strips a leading BOM.
func normaliseText(text string) string {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
