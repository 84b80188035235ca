package driven

import "context"

// LoadedDocument is the normalised output of a document loader.
type LoadedDocument struct {
	// SourceURI is where the text came from.
	SourceURI string

	// Text is normalised plain text, ready for chunking.
	Text string

	// Metadata carries source-specific fields (title, filename, etc).
	Metadata map[string]string
}

// DocumentLoader yields normalised plain text for a source location.
// Format-specific parsing (PDF, DOCX) lives behind this boundary and is
// out of scope for the core.
type DocumentLoader interface {
	// Load reads and normalises the document at the given location.
	Load(ctx context.Context, location string) (*LoadedDocument, error)
}

// DocumentRepository fetches documents from an external
// document-management system. Authentication and the sync protocol are
// the adapter's concern; the core only needs fetch-by-id.
type DocumentRepository interface {
	// Fetch retrieves a remote document's text and metadata by id.
	Fetch(ctx context.Context, id string) (*LoadedDocument, error)
}

// Exporter renders a finalized draft or answer into a target file.
// Rich output formats are out of scope; adapters may support plain
// text or markdown.
type Exporter interface {
	// Export writes content to the destination path.
	Export(ctx context.Context, content, destination string) error
}
