package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [path...]", ingestCmd.Use)
}

func TestIngestCmd_ReportsPerDocumentOutcome(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	path := filepath.Join(dir, "policy.txt")
	require.NoError(t, os.WriteFile(path, []byte("records are retained"), 0600))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "stored")
	assert.Contains(t, buf.String(), "policy.txt")
	assert.Contains(t, buf.String(), "Ingested 1 of 1 documents.")
}

func TestIngestCmd_ExpandsDirectories(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("b"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.pdf"), []byte("x"), 0600))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", dir})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "a.txt")
	assert.Contains(t, buf.String(), "b.md")
	assert.NotContains(t, buf.String(), "skip.pdf")
	assert.Contains(t, buf.String(), "Ingested 2 of 2 documents.")
}

func TestIngestCmd_RequiresEmbeddingProvider(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	embeddingService = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", "somefile.txt"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "embedding provider not configured")
}
