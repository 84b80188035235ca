package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
)

func TestExporter_WritesMarkdown(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "draft.md")

	require.NoError(t, NewExporter().Export(context.Background(), "# Final Draft", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "# Final Draft\n", string(data))
}

func TestExporter_DefaultsToText(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "draft")

	require.NoError(t, NewExporter().Export(context.Background(), "body\n", dest))

	data, err := os.ReadFile(dest + ".txt")
	require.NoError(t, err)
	assert.Equal(t, "body\n", string(data))
}

func TestExporter_CreatesParentDirectories(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out", "nested", "draft.txt")

	require.NoError(t, NewExporter().Export(context.Background(), "x", dest))

	_, err := os.Stat(dest)
	assert.NoError(t, err)
}

func TestExporter_RejectsUnsupportedFormat(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "draft.docx")

	err := NewExporter().Export(context.Background(), "x", dest)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExporter_RejectsEmptyDestination(t *testing.T) {
	err := NewExporter().Export(context.Background(), "x", "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
