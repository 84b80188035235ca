// Package chunker splits normalised document text into overlapping,
// token-bounded passages for embedding and retrieval.
package chunker

import (
	"strings"
	"unicode"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
)

// Default chunking values.
const (
	DefaultSize      = domain.DefaultChunkSize
	DefaultOverlap   = domain.DefaultChunkOverlap
	DefaultTolerance = 12
)

// token is a whitespace-delimited word with its byte offsets in the
// original text, so chunk content can be sliced without losing the
// document's own spacing.
type token struct {
	start int
	end   int
}

// Chunker splits text into overlapping token windows, snapping window
// ends to sentence boundaries when one exists within the tolerance.
type Chunker struct {
	size      int
	overlap   int
	tolerance int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithSize sets the target chunk size in tokens.
func WithSize(size int) Option {
	return func(c *Chunker) {
		c.size = size
	}
}

// WithOverlap sets the overlap between consecutive chunks in tokens.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// WithTolerance sets the sentence-snap window in tokens.
func WithTolerance(tolerance int) Option {
	return func(c *Chunker) {
		c.tolerance = tolerance
	}
}

// New creates a chunker. Returns domain.ErrInvalidConfig when the
// overlap is not strictly smaller than the size, or either is negative.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		size:      DefaultSize,
		overlap:   DefaultOverlap,
		tolerance: DefaultTolerance,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.size <= 0 || c.overlap < 0 || c.overlap >= c.size || c.tolerance < 0 {
		return nil, domain.ErrInvalidConfig
	}

	return c, nil
}

// Chunk splits the document's content into ordered chunks covering the
// full text with no gaps. Consecutive chunks always share exactly
// `overlap` tokens: each window starts at the previous window's end
// minus the overlap, even when the end was snapped to a sentence
// boundary. Deterministic: same text and config produce identical
// boundaries.
func (c *Chunker) Chunk(doc *domain.Document) ([]domain.Chunk, error) {
	tokens := tokenise(doc.Content)
	if len(tokens) == 0 {
		return nil, nil
	}

	total := len(tokens)
	estimated := total/(c.size-c.overlap) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	start := 0
	ordinal := 0

	for start < total {
		end := start + c.size
		if end >= total {
			end = total
		} else {
			end = c.snapToSentence(doc.Content, tokens, start, end)
		}

		content := doc.Content[tokens[start].start:tokens[end-1].end]

		chunks = append(chunks, domain.Chunk{
			ID:         domain.ChunkID(doc.ID, ordinal),
			DocumentID: doc.ID,
			Ordinal:    ordinal,
			Content:    content,
			TokenStart: start,
			TokenEnd:   end,
			Metadata:   snapshotMetadata(doc),
		})
		ordinal++

		if end == total {
			break
		}
		start = end - c.overlap
	}

	return chunks, nil
}

// snapToSentence moves the window end to the nearest sentence boundary
// within the tolerance, when one exists. The returned end always leaves
// room for forward progress (end > start + overlap).
func (c *Chunker) snapToSentence(text string, tokens []token, start, end int) int {
	if endsSentence(text, tokens[end-1]) {
		return end
	}

	minEnd := start + c.overlap + 1
	best := -1
	bestDist := c.tolerance + 1

	lo := end - c.tolerance
	if lo < minEnd {
		lo = minEnd
	}
	hi := end + c.tolerance
	if hi > len(tokens) {
		hi = len(tokens)
	}

	for cand := lo; cand <= hi; cand++ {
		if !endsSentence(text, tokens[cand-1]) {
			continue
		}
		dist := cand - end
		if dist < 0 {
			dist = -dist
		}
		// Prefer the closest boundary; on a tie keep the earlier one
		// so results do not depend on scan direction.
		if dist < bestDist {
			bestDist = dist
			best = cand
		}
	}

	if best == -1 {
		return end
	}
	return best
}

// endsSentence reports whether a token terminates a sentence.
// Trailing quotes and brackets after the terminator are tolerated.
func endsSentence(text string, t token) bool {
	word := strings.TrimRightFunc(text[t.start:t.end], func(r rune) bool {
		switch r {
		case '"', '\'', ')', ']', '”', '’':
			return true
		default:
			return false
		}
	})
	if word == "" {
		return false
	}
	switch word[len(word)-1] {
	case '.', '!', '?':
		return true
	default:
		return false
	}
}

// tokenise returns whitespace-delimited tokens with byte offsets.
func tokenise(text string) []token {
	var tokens []token
	inToken := false
	start := 0

	for i, r := range text {
		if unicode.IsSpace(r) {
			if inToken {
				tokens = append(tokens, token{start: start, end: i})
				inToken = false
			}
			continue
		}
		if !inToken {
			start = i
			inToken = true
		}
	}
	if inToken {
		tokens = append(tokens, token{start: start, end: len(text)})
	}

	return tokens
}

// snapshotMetadata copies document metadata into the chunk so vector
// records carry a stable filter snapshot.
func snapshotMetadata(doc *domain.Document) map[string]string {
	meta := make(map[string]string, len(doc.Metadata)+1)
	for k, v := range doc.Metadata {
		meta[k] = v
	}
	meta["source_uri"] = doc.SourceURI
	return meta
}
