package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driving"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
}

func TestAskCmd_PrintsAnswerWithCitations(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "how long are records retained?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "The retention period is six years.")
	assert.Contains(t, buf.String(), "Sources:")
	assert.Contains(t, buf.String(), "doc-1:0")
	assert.Contains(t, buf.String(), "Confidence: 0.82")
}

type mockQueryServiceNoContext struct {
	mockQueryService
}

func (m *mockQueryServiceNoContext) Ask(_ context.Context, _ string, _ domain.RetrievalOptions) (domain.Answer, error) {
	return domain.NewInsufficientContextAnswer(), nil
}

func TestAskCmd_ReportsInsufficientContext(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	var oldService driving.QueryService
	oldService, queryService = queryService, &mockQueryServiceNoContext{}
	defer func() {
		queryService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "what colour is the moon?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "does not contain enough relevant context")
}

func TestAskCmd_RequiresLLMProvider(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	llmService = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "anything"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "llm provider not configured")
}
