package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/quill-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/quill-cli/internal/core/domain"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.quill/data/metadata.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".quill", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// StyleProfileStore returns a StyleProfileStore interface backed by this store.
func (s *Store) StyleProfileStore() driven.StyleProfileStore {
	return &styleProfileStore{store: s}
}

// DraftSessionStore returns a DraftSessionStore interface backed by this store.
func (s *Store) DraftSessionStore() driven.DraftSessionStore {
	return &draftSessionStore{store: s}
}

// EmbeddingCache returns an EmbeddingCache interface backed by this store.
func (s *Store) EmbeddingCache() driven.EmbeddingCache {
	return &embeddingCache{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument stores or updates a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, source_uri, content_hash, content, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_uri = excluded.source_uri,
			content_hash = excluded.content_hash,
			content = excluded.content,
			metadata = excluded.metadata
	`, doc.ID, doc.SourceURI, doc.ContentHash, doc.Content, string(metadataJSON), doc.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// SaveChunks stores chunks for a document in one transaction.
func (s *documentStore) SaveChunks(ctx context.Context, chunks []domain.Chunk) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, ordinal, content, token_start, token_end, embedding, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			ordinal = excluded.ordinal,
			content = excluded.content,
			token_start = excluded.token_start,
			token_end = excluded.token_end,
			embedding = excluded.embedding,
			metadata = excluded.metadata
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}

		embeddingBlob := float32SliceToBytes(chunk.Embedding)

		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.Ordinal,
			chunk.Content, chunk.TokenStart, chunk.TokenEnd, embeddingBlob,
			string(metadataJSON)); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, source_uri, content_hash, content, metadata, created_at
		FROM documents WHERE id = ?
	`, id)

	return scanDocument(row)
}

// GetByContentHash retrieves a document by content hash.
func (s *documentStore) GetByContentHash(ctx context.Context, hash string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, source_uri, content_hash, content, metadata, created_at
		FROM documents WHERE content_hash = ?
	`, hash)

	return scanDocument(row)
}

// GetBySourceURI retrieves the document for a source location. The
// newest wins if historical versions were ever left behind.
func (s *documentStore) GetBySourceURI(ctx context.Context, sourceURI string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, source_uri, content_hash, content, metadata, created_at
		FROM documents WHERE source_uri = ?
		ORDER BY created_at DESC LIMIT 1
	`, sourceURI)

	return scanDocument(row)
}

// GetChunks retrieves all chunks for a document, ordered by ordinal.
func (s *documentStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, ordinal, content, token_start, token_end, embedding, metadata
		FROM chunks WHERE document_id = ?
		ORDER BY ordinal
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *documentStore) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, document_id, ordinal, content, token_start, token_end, embedding, metadata
		FROM chunks WHERE id = ?
	`, id)

	return scanChunkRow(row)
}

// DeleteDocument removes a document and its chunks.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ListDocuments returns all stored documents.
func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, source_uri, content_hash, content, metadata, created_at
		FROM documents ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// CountChunks returns the total number of stored chunks.
func (s *documentStore) CountChunks(ctx context.Context) (int, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// ==================== Style Profile Store ====================

// styleProfileStore implements driven.StyleProfileStore.
type styleProfileStore struct {
	store *Store
}

var _ driven.StyleProfileStore = (*styleProfileStore)(nil)

// SaveProfile stores a profile.
func (s *styleProfileStore) SaveProfile(ctx context.Context, profile *domain.StyleProfile) error {
	idsJSON, err := json.Marshal(profile.SourceDocumentIDs)
	if err != nil {
		return fmt.Errorf("marshalling source document ids: %w", err)
	}
	featuresJSON, err := json.Marshal(profile.Features)
	if err != nil {
		return fmt.Errorf("marshalling features: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO style_profiles (id, source_document_ids, features, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_document_ids = excluded.source_document_ids,
			features = excluded.features
	`, profile.ID, string(idsJSON), string(featuresJSON), profile.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving style profile: %w", err)
	}
	return nil
}

// GetProfile retrieves a profile by ID.
func (s *styleProfileStore) GetProfile(ctx context.Context, id string) (*domain.StyleProfile, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, source_document_ids, features, created_at
		FROM style_profiles WHERE id = ?
	`, id)

	return scanStyleProfile(row)
}

// ListProfiles returns all stored profiles, newest first.
func (s *styleProfileStore) ListProfiles(ctx context.Context) ([]domain.StyleProfile, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, source_document_ids, features, created_at
		FROM style_profiles ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying style profiles: %w", err)
	}
	defer rows.Close()

	var profiles []domain.StyleProfile //nolint:prealloc // size unknown from query
	for rows.Next() {
		var profile domain.StyleProfile
		var idsJSON, featuresJSON string
		if err := rows.Scan(&profile.ID, &idsJSON, &featuresJSON, &profile.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning style profile: %w", err)
		}
		if err := json.Unmarshal([]byte(idsJSON), &profile.SourceDocumentIDs); err != nil {
			return nil, fmt.Errorf("unmarshalling source document ids: %w", err)
		}
		if err := json.Unmarshal([]byte(featuresJSON), &profile.Features); err != nil {
			return nil, fmt.Errorf("unmarshalling features: %w", err)
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating style profiles: %w", err)
	}

	return profiles, nil
}

// ==================== Draft Session Store ====================

// draftSessionStore implements driven.DraftSessionStore.
type draftSessionStore struct {
	store *Store
}

var _ driven.DraftSessionStore = (*draftSessionStore)(nil)

// SaveSession stores or updates a session with its revisions.
func (s *draftSessionStore) SaveSession(ctx context.Context, session *domain.DraftSession) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO draft_sessions (id, style_profile_id, brief, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			style_profile_id = excluded.style_profile_id,
			brief = excluded.brief,
			status = excluded.status,
			updated_at = excluded.updated_at
	`, session.ID, session.StyleProfileID, session.Brief, string(session.Status),
		session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving draft session: %w", err)
	}

	// Revisions are append-only; upserting each ordinal keeps existing
	// rows untouched on re-save.
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO draft_revisions (session_id, ordinal, content)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id, ordinal) DO UPDATE SET
			content = excluded.content
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, revision := range session.Revisions {
		if _, err := stmt.ExecContext(ctx, session.ID, i, revision); err != nil {
			return fmt.Errorf("saving revision %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *draftSessionStore) GetSession(ctx context.Context, id string) (*domain.DraftSession, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, style_profile_id, brief, status, created_at, updated_at
		FROM draft_sessions WHERE id = ?
	`, id)

	session, err := scanDraftSession(row)
	if err != nil {
		return nil, err
	}

	revisions, err := s.loadRevisions(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Revisions = revisions

	return session, nil
}

// ListSessions returns all sessions, newest first.
func (s *draftSessionStore) ListSessions(ctx context.Context) ([]domain.DraftSession, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, style_profile_id, brief, status, created_at, updated_at
		FROM draft_sessions ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying draft sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.DraftSession //nolint:prealloc // size unknown from query
	for rows.Next() {
		var session domain.DraftSession
		var status string
		if err := rows.Scan(&session.ID, &session.StyleProfileID, &session.Brief,
			&status, &session.CreatedAt, &session.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning draft session: %w", err)
		}
		session.Status = domain.SessionStatus(status)
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating draft sessions: %w", err)
	}

	for i := range sessions {
		revisions, err := s.loadRevisions(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
		sessions[i].Revisions = revisions
	}

	return sessions, nil
}

// loadRevisions returns a session's revisions, oldest first.
func (s *draftSessionStore) loadRevisions(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT content FROM draft_revisions
		WHERE session_id = ? ORDER BY ordinal
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying revisions: %w", err)
	}
	defer rows.Close()

	var revisions []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, fmt.Errorf("scanning revision: %w", err)
		}
		revisions = append(revisions, content)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating revisions: %w", err)
	}

	return revisions, nil
}

// ==================== Embedding Cache ====================

// embeddingCache implements driven.EmbeddingCache.
type embeddingCache struct {
	store *Store
}

var _ driven.EmbeddingCache = (*embeddingCache)(nil)

// Get returns the cached vector for a text hash, or nil if absent.
func (c *embeddingCache) Get(ctx context.Context, textHash string) ([]float32, error) {
	var blob []byte
	err := c.store.db.QueryRowContext(ctx,
		"SELECT embedding FROM embedding_cache WHERE text_hash = ?", textHash).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying embedding cache: %w", err)
	}
	return bytesToFloat32Slice(blob), nil
}

// Put stores a vector for a text hash.
func (c *embeddingCache) Put(ctx context.Context, textHash string, embedding []float32) error {
	_, err := c.store.db.ExecContext(ctx, `
		INSERT INTO embedding_cache (text_hash, embedding)
		VALUES (?, ?)
		ON CONFLICT(text_hash) DO UPDATE SET
			embedding = excluded.embedding
	`, textHash, float32SliceToBytes(embedding))
	if err != nil {
		return fmt.Errorf("saving cached embedding: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanDocument scans a single document row.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var metadataJSON string

	if err := row.Scan(&doc.ID, &doc.SourceURI, &doc.ContentHash, &doc.Content,
		&metadataJSON, &doc.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}

	return &doc, nil
}

// scanDocumentRows scans a document from *sql.Rows.
func scanDocumentRows(rows *sql.Rows) (*domain.Document, error) {
	var doc domain.Document
	var metadataJSON string

	if err := rows.Scan(&doc.ID, &doc.SourceURI, &doc.ContentHash, &doc.Content,
		&metadataJSON, &doc.CreatedAt); err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}

	return &doc, nil
}

// scanChunk scans a chunk from *sql.Rows.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte
	var metadataJSON string

	if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Ordinal, &chunk.Content,
		&chunk.TokenStart, &chunk.TokenEnd, &embeddingBlob, &metadataJSON); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
	}

	return &chunk, nil
}

// scanChunkRow scans a chunk from *sql.Row.
func scanChunkRow(row *sql.Row) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte
	var metadataJSON string

	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Ordinal, &chunk.Content,
		&chunk.TokenStart, &chunk.TokenEnd, &embeddingBlob, &metadataJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
		}
	}

	return &chunk, nil
}

// scanStyleProfile scans a single style profile row.
func scanStyleProfile(row *sql.Row) (*domain.StyleProfile, error) {
	var profile domain.StyleProfile
	var idsJSON, featuresJSON string

	if err := row.Scan(&profile.ID, &idsJSON, &featuresJSON, &profile.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning style profile: %w", err)
	}

	if err := json.Unmarshal([]byte(idsJSON), &profile.SourceDocumentIDs); err != nil {
		return nil, fmt.Errorf("unmarshalling source document ids: %w", err)
	}
	if err := json.Unmarshal([]byte(featuresJSON), &profile.Features); err != nil {
		return nil, fmt.Errorf("unmarshalling features: %w", err)
	}

	return &profile, nil
}

// scanDraftSession scans a single draft session row.
func scanDraftSession(row *sql.Row) (*domain.DraftSession, error) {
	var session domain.DraftSession
	var status string

	if err := row.Scan(&session.ID, &session.StyleProfileID, &session.Brief,
		&status, &session.CreatedAt, &session.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning draft session: %w", err)
	}

	session.Status = domain.SessionStatus(status)
	return &session, nil
}
