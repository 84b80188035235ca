package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoader_LoadPlainText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "line one\r\nline two\n")

	doc, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "line one\nline two\n", doc.Text)
	assert.Equal(t, "notes.txt", doc.Metadata["filename"])
	assert.Equal(t, "notes", doc.Metadata["title"])
	assert.Equal(t, "file://"+path, doc.SourceURI)
}

func TestLoader_StripsFileScheme(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "readme.md", "# hello")

	doc, err := NewLoader().Load(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, "# hello", doc.Text)
}

func TestLoader_StripsByteOrderMark(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bom.txt", "\ufeffcontent")

	doc, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "content", doc.Text)
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "absent.txt"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoader_RejectsUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "report.pdf", "%PDF-1.4")

	_, err := NewLoader().Load(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoader_RejectsDirectory(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoader_RejectsBinaryContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.txt")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x80}, 0600))

	_, err := NewLoader().Load(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("a.txt"))
	assert.True(t, IsSupported("A.MD"))
	assert.False(t, IsSupported("a.pdf"))
	assert.False(t, IsSupported("a"))
}

func TestWatcher_ReportsCreatedFiles(t *testing.T) {
	dir := t.TempDir()
	changes := make(chan string, 4)

	w, err := NewWatcher(dir, func(path string) { changes <- path })
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	path := writeFile(t, dir, "incoming.txt", "fresh document")

	select {
	case got := <-changes:
		assert.Equal(t, path, got)
	case <-time.After(3 * time.Second):
		t.Fatal("no change event received")
	}
}

func TestWatcher_IgnoresUnsupportedFiles(t *testing.T) {
	dir := t.TempDir()
	changes := make(chan string, 4)

	w, err := NewWatcher(dir, func(path string) { changes <- path })
	require.NoError(t, err)
	w.Start()
	defer w.Stop()

	writeFile(t, dir, "image.png", "not text")

	select {
	case got := <-changes:
		t.Fatalf("unexpected change event for %s", got)
	case <-time.After(debounceWindow * 2):
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), nil)
	require.NoError(t, err)
	w.Start()
	w.Stop()
	w.Stop()
}
