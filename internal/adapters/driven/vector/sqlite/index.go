// Package sqlite implements the vector index on SQLite with an
// in-memory mirror.
//
// Vectors are durably stored in vectors.db and mirrored into memory on
// open, so searches are pure in-memory cosine scans while committed
// upserts survive restart. A read-write mutex gives searches a
// consistent snapshot: a document deletion is atomic with respect to
// concurrent searches, which observe either all or none of its records.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/quill-cli/internal/core/domain"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is a SQLite-backed cosine-similarity vector index.
type Index struct {
	db   *sql.DB
	path string

	mu      sync.RWMutex
	records map[string]domain.VectorRecord
}

// NewIndex creates a vector index at the specified data directory.
// If dataDir is empty, defaults to ~/.quill/data/vectors.db.
func NewIndex(dataDir string) (*Index, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".quill", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vectors.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening vector database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS vector_records (
			chunk_id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			ordinal INTEGER NOT NULL,
			embedding BLOB NOT NULL,
			metadata TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_vector_records_document_id ON vector_records(document_id);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vector schema: %w", err)
	}

	idx := &Index{
		db:      db,
		path:    dbPath,
		records: make(map[string]domain.VectorRecord),
	}

	if err := idx.load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("loading vector records: %w", err)
	}

	return idx, nil
}

// Path returns the database file path.
func (idx *Index) Path() string {
	return idx.path
}

// Upsert inserts or replaces the record for its chunk id.
func (idx *Index) Upsert(ctx context.Context, record domain.VectorRecord) error {
	return idx.UpsertBatch(ctx, []domain.VectorRecord{record})
}

// UpsertBatch upserts several records, committed together.
func (idx *Index) UpsertBatch(ctx context.Context, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vector_records (chunk_id, document_id, ordinal, embedding, metadata)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			document_id = excluded.document_id,
			ordinal = excluded.ordinal,
			embedding = excluded.embedding,
			metadata = excluded.metadata
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		metadataJSON, err := json.Marshal(record.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, record.ChunkID, record.DocumentID,
			record.Ordinal, float32SliceToBytes(record.Embedding), string(metadataJSON)); err != nil {
			return fmt.Errorf("upserting record %s: %w", record.ChunkID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	// Mirror only after the durable write committed.
	idx.mu.Lock()
	for _, record := range records {
		idx.records[record.ChunkID] = record
	}
	idx.mu.Unlock()

	return nil
}

// DeleteDocument removes every record owned by the document. The mirror
// update happens under the write lock, so an in-flight search observes
// all of the document's records or none of them.
func (idx *Index) DeleteDocument(ctx context.Context, documentID string) error {
	if _, err := idx.db.ExecContext(ctx,
		"DELETE FROM vector_records WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting vector records: %w", err)
	}

	idx.mu.Lock()
	for id, record := range idx.records {
		if record.DocumentID == documentID {
			delete(idx.records, id)
		}
	}
	idx.mu.Unlock()

	return nil
}

// Search finds up to k records most similar to the query vector.
// Cosine similarity, descending; ties break by ordinal ascending then
// chunk id. An empty index yields an empty result, not an error.
func (idx *Index) Search(
	_ context.Context, query []float32, k int, filter map[string]string,
) ([]driven.VectorHit, error) {
	if k <= 0 || len(query) == 0 {
		return []driven.VectorHit{}, nil
	}

	idx.mu.RLock()
	hits := make([]driven.VectorHit, 0, len(idx.records))
	for _, record := range idx.records {
		if !matchesFilter(record.Metadata, filter) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ChunkID:    record.ChunkID,
			DocumentID: record.DocumentID,
			Ordinal:    record.Ordinal,
			Similarity: cosineSimilarity(query, record.Embedding),
			Metadata:   record.Metadata,
		})
	}
	idx.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		if hits[i].Ordinal != hits[j].Ordinal {
			return hits[i].Ordinal < hits[j].Ordinal
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of stored records.
func (idx *Index) Count(_ context.Context) (int, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.records), nil
}

// Close flushes and releases resources.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// load populates the in-memory mirror from the durable table.
func (idx *Index) load() error {
	rows, err := idx.db.Query(
		"SELECT chunk_id, document_id, ordinal, embedding, metadata FROM vector_records")
	if err != nil {
		return fmt.Errorf("querying vector records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var record domain.VectorRecord
		var blob []byte
		var metadataJSON string
		if err := rows.Scan(&record.ChunkID, &record.DocumentID, &record.Ordinal,
			&blob, &metadataJSON); err != nil {
			return fmt.Errorf("scanning vector record: %w", err)
		}
		record.Embedding = bytesToFloat32Slice(blob)
		if metadataJSON != "" {
			if err := json.Unmarshal([]byte(metadataJSON), &record.Metadata); err != nil {
				return fmt.Errorf("unmarshaling metadata: %w", err)
			}
		}
		idx.records[record.ChunkID] = record
	}

	return rows.Err()
}

// matchesFilter reports whether the metadata snapshot contains every
// listed key-value pair. A nil filter matches everything.
func matchesFilter(metadata, filter map[string]string) bool {
	for key, want := range filter {
		if metadata[key] != want {
			return false
		}
	}
	return true
}

// cosineSimilarity returns the cosine of the angle between two vectors,
// or 0 when either has zero magnitude or the dimensions differ.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

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
