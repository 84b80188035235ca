package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quill-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/quill-cli/internal/core/domain"
)

func seedProfile(t *testing.T) (*memory.StyleProfileStore, string) {
	t.Helper()
	store := memory.NewStyleProfileStore()

	profile := &domain.StyleProfile{
		ID: "profile-1",
		Features: domain.StyleFeatures{
			Structure: domain.StructureFeatures{AvgHeaderCount: 4, AvgParagraphLength: 220, BulletRatio: 0.8},
			Language:  domain.LanguageFeatures{Tone: "formal", AvgSentenceLength: 24},
			Sections: []domain.SectionPattern{
				{Title: "AGREEMENT OVERVIEW", Frequency: 3},
				{Title: "Payment Terms", Frequency: 2},
			},
			SampleSize: 3,
		},
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.SaveProfile(context.Background(), profile))
	return store, profile.ID
}

func newTestDrafter(t *testing.T, llm *mockLLMService) (*Drafter, *memory.DraftSessionStore, string) {
	t.Helper()
	profiles, profileID := seedProfile(t)
	sessions := memory.NewDraftSessionStore()
	return NewDrafter(profiles, sessions, llm, nil), sessions, profileID
}

func TestDrafter_CreateProducesFirstRevision(t *testing.T) {
	llm := &mockLLMService{generateResult: "DRAFT AGREEMENT\n\n\n\nBetween [NAME] and [COMPANY NAME]."}
	drafter, _, profileID := newTestDrafter(t, llm)

	session, err := drafter.Create(context.Background(), profileID, "a supplier agreement", false)
	require.NoError(t, err)

	assert.Equal(t, domain.SessionReviewing, session.Status)
	assert.Equal(t, profileID, session.StyleProfileID)
	require.Len(t, session.Revisions, 1)

	// Generated text is tidied: blank-line runs collapse.
	assert.Equal(t, "DRAFT AGREEMENT\n\nBetween [NAME] and [COMPANY NAME].", session.CurrentRevision())

	// The prompt carries the learned style guidance and the brief.
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "formal, professional language")
	assert.Contains(t, llm.prompts[0], "approximately 4 main sections")
	assert.Contains(t, llm.prompts[0], "AGREEMENT OVERVIEW")
	assert.Contains(t, llm.prompts[0], "bullet points")
	assert.Contains(t, llm.prompts[0], "a supplier agreement")
}

func TestDrafter_CreateUnknownProfile(t *testing.T) {
	drafter, _, _ := newTestDrafter(t, &mockLLMService{})

	_, err := drafter.Create(context.Background(), "no-such-profile", "brief", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDrafter_CreateEmptyBrief(t *testing.T) {
	drafter, _, profileID := newTestDrafter(t, &mockLLMService{})

	_, err := drafter.Create(context.Background(), profileID, "  ", false)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDrafter_ReviseAppendsRevision(t *testing.T) {
	llm := &mockLLMService{generateResult: "First draft."}
	drafter, _, profileID := newTestDrafter(t, llm)
	ctx := context.Background()

	session, err := drafter.Create(ctx, profileID, "a supplier agreement", false)
	require.NoError(t, err)

	llm.generateResult = "Second draft with payment section."
	revised, err := drafter.Revise(ctx, session.ID, "add a payment section")
	require.NoError(t, err)

	assert.Equal(t, domain.SessionReviewing, revised.Status)
	require.Len(t, revised.Revisions, 2)
	assert.Equal(t, "First draft.", revised.Revisions[0])
	assert.Equal(t, "Second draft with payment section.", revised.CurrentRevision())

	// The revise prompt carries the instruction and the current draft.
	prompt := llm.prompts[len(llm.prompts)-1]
	assert.Contains(t, prompt, "add a payment section")
	assert.Contains(t, prompt, "First draft.")
}

func TestDrafter_FinalizeClosesSession(t *testing.T) {
	llm := &mockLLMService{generateResult: "Draft."}
	drafter, sessions, profileID := newTestDrafter(t, llm)
	ctx := context.Background()

	session, err := drafter.Create(ctx, profileID, "brief", false)
	require.NoError(t, err)

	finalized, err := drafter.Finalize(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionFinalized, finalized.Status)

	// Finalized sessions reject further revisions and re-finalization.
	_, err = drafter.Revise(ctx, session.ID, "more changes")
	assert.ErrorIs(t, err, domain.ErrSessionFinalized)
	_, err = drafter.Finalize(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionFinalized)

	// The revision history is intact after the rejected attempts.
	stored, err := sessions.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Revisions, 1)
}

func TestDrafter_ReviseUnknownSession(t *testing.T) {
	drafter, _, _ := newTestDrafter(t, &mockLLMService{})

	_, err := drafter.Revise(context.Background(), "no-such-session", "change it")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDrafter_SuggestFlagsPlaceholdersAndStructure(t *testing.T) {
	llm := &mockLLMService{generateResult: "Short text with [NAME] and [DATE] placeholders."}
	drafter, _, profileID := newTestDrafter(t, llm)
	ctx := context.Background()

	session, err := drafter.Create(ctx, profileID, "brief", false)
	require.NoError(t, err)

	suggestions, err := drafter.Suggest(ctx, session.ID)
	require.NoError(t, err)

	require.Len(t, suggestions, 3)
	assert.Contains(t, suggestions[0], "expanding the document")
	assert.Contains(t, suggestions[1], "Replace 2 placeholders")
	assert.Contains(t, suggestions[2], "clear sections")
}

func TestDrafter_ListNewestFirst(t *testing.T) {
	llm := &mockLLMService{generateResult: "Draft."}
	drafter, _, profileID := newTestDrafter(t, llm)
	ctx := context.Background()

	first, err := drafter.Create(ctx, profileID, "first brief", false)
	require.NoError(t, err)
	second, err := drafter.Create(ctx, profileID, "second brief", false)
	require.NoError(t, err)

	sessions, err := drafter.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, second.ID, sessions[0].ID)
	assert.Equal(t, first.ID, sessions[1].ID)
}
