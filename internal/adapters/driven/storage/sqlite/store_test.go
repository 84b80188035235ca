package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_DocumentRoundTrip(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	doc := &domain.Document{
		ID:          "doc-1",
		SourceURI:   "file://a.txt",
		ContentHash: domain.HashContent("hello world"),
		Content:     "hello world",
		Metadata:    map[string]string{"title": "a"},
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, docs.SaveDocument(ctx, doc))

	got, err := docs.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, doc.SourceURI, got.SourceURI)
	assert.Equal(t, doc.ContentHash, got.ContentHash)
	assert.Equal(t, doc.Content, got.Content)
	assert.Equal(t, "a", got.Metadata["title"])

	byHash, err := docs.GetByContentHash(ctx, doc.ContentHash)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", byHash.ID)

	_, err = docs.GetByContentHash(ctx, "deadbeef")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	bySource, err := docs.GetBySourceURI(ctx, "file://a.txt")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", bySource.ID)

	_, err = docs.GetBySourceURI(ctx, "file://absent.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ChunkRoundTripPreservesEmbedding(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	doc := &domain.Document{ID: "doc-1", SourceURI: "file://a.txt", Content: "x", CreatedAt: time.Now().UTC()}
	require.NoError(t, docs.SaveDocument(ctx, doc))

	chunks := []domain.Chunk{
		{ID: "doc-1:0", DocumentID: "doc-1", Ordinal: 0, Content: "first", TokenStart: 0, TokenEnd: 5,
			Embedding: []float32{0.1, -2.5, 3.75}, Metadata: map[string]string{"source_uri": "file://a.txt"}},
		{ID: "doc-1:1", DocumentID: "doc-1", Ordinal: 1, Content: "second", TokenStart: 3, TokenEnd: 9},
	}
	require.NoError(t, docs.SaveChunks(ctx, chunks))

	got, err := docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []float32{0.1, -2.5, 3.75}, got[0].Embedding)
	assert.Equal(t, "file://a.txt", got[0].Metadata["source_uri"])
	assert.Equal(t, 3, got[1].TokenStart)

	single, err := docs.GetChunk(ctx, "doc-1:1")
	require.NoError(t, err)
	assert.Equal(t, "second", single.Content)

	count, err := docs.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStore_SaveChunksIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	doc := &domain.Document{ID: "doc-1", SourceURI: "file://a.txt", Content: "x", CreatedAt: time.Now().UTC()}
	require.NoError(t, docs.SaveDocument(ctx, doc))

	chunk := domain.Chunk{ID: "doc-1:0", DocumentID: "doc-1", Ordinal: 0, Content: "v1"}
	require.NoError(t, docs.SaveChunks(ctx, []domain.Chunk{chunk}))

	chunk.Content = "v2"
	require.NoError(t, docs.SaveChunks(ctx, []domain.Chunk{chunk}))

	got, err := docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "v2", got[0].Content)
}

func TestStore_DeleteDocumentCascadesToChunks(t *testing.T) {
	store := newTestStore(t)
	docs := store.DocumentStore()
	ctx := context.Background()

	doc := &domain.Document{ID: "doc-1", SourceURI: "file://a.txt", Content: "x", CreatedAt: time.Now().UTC()}
	require.NoError(t, docs.SaveDocument(ctx, doc))
	require.NoError(t, docs.SaveChunks(ctx, []domain.Chunk{
		{ID: "doc-1:0", DocumentID: "doc-1", Ordinal: 0, Content: "c"},
	}))

	require.NoError(t, docs.DeleteDocument(ctx, "doc-1"))

	_, err := docs.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = docs.GetChunk(ctx, "doc-1:0")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_StyleProfileRoundTrip(t *testing.T) {
	store := newTestStore(t)
	profiles := store.StyleProfileStore()
	ctx := context.Background()

	profile := &domain.StyleProfile{
		ID:                "prof-1",
		SourceDocumentIDs: []string{"doc-1", "doc-2"},
		Features: domain.StyleFeatures{
			Language:   domain.LanguageFeatures{Tone: "formal", FormalityScore: 7.5},
			Sections:   []domain.SectionPattern{{Title: "Payment Terms", Frequency: 2, AvgLength: 300}},
			SampleSize: 2,
		},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, profiles.SaveProfile(ctx, profile))

	got, err := profiles.GetProfile(ctx, "prof-1")
	require.NoError(t, err)
	assert.Equal(t, profile.SourceDocumentIDs, got.SourceDocumentIDs)
	assert.Equal(t, "formal", got.Features.Language.Tone)
	require.Len(t, got.Features.Sections, 1)
	assert.Equal(t, "Payment Terms", got.Features.Sections[0].Title)

	_, err = profiles.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_DraftSessionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	sessions := store.DraftSessionStore()
	ctx := context.Background()

	session := &domain.DraftSession{
		ID:             "sess-1",
		StyleProfileID: "prof-1",
		Brief:          "a supplier agreement",
		Revisions:      []string{"first draft"},
		Status:         domain.SessionReviewing,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	require.NoError(t, sessions.SaveSession(ctx, session))

	session.Revisions = append(session.Revisions, "second draft")
	session.Status = domain.SessionFinalized
	require.NoError(t, sessions.SaveSession(ctx, session))

	got, err := sessions.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionFinalized, got.Status)
	assert.Equal(t, []string{"first draft", "second draft"}, got.Revisions)
	assert.Equal(t, "second draft", got.CurrentRevision())
}

func TestStore_EmbeddingCacheRoundTrip(t *testing.T) {
	store := newTestStore(t)
	cache := store.EmbeddingCache()
	ctx := context.Background()

	hash := domain.HashContent("some chunk text")

	missing, err := cache.Get(ctx, hash)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, cache.Put(ctx, hash, []float32{1.5, -0.25}))

	got, err := cache.Get(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, -0.25}, got)
}

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.DocumentStore().SaveDocument(ctx, &domain.Document{
		ID: "doc-1", SourceURI: "file://a.txt", Content: "persisted", CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.DocumentStore().GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Content)
}
