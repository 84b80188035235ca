package domain

import "time"

// StyleProfile is the aggregated stylistic fingerprint of a document
// sample. Profiles are immutable: a new learning pass produces a new
// profile rather than mutating an old one.
type StyleProfile struct {
	// ID is the unique identifier for the profile.
	ID string

	// SourceDocumentIDs are the documents the profile was learned from.
	SourceDocumentIDs []string

	// Features are the aggregated stylistic dimensions.
	Features StyleFeatures

	// CreatedAt is when the learning pass completed.
	CreatedAt time.Time
}

// StyleFeatures groups the learned stylistic dimensions.
// Aggregation is statistical (means, medians, frequencies) so the
// profile generalises across the sample instead of memorising one
// document.
type StyleFeatures struct {
	Structure  StructureFeatures  `json:"structure"`
	Language   LanguageFeatures   `json:"language"`
	Formatting FormattingFeatures `json:"formatting"`

	// Sections are generalised section title patterns that recur across
	// the sample, most frequent first.
	Sections []SectionPattern `json:"sections"`

	// SampleSize is the number of documents aggregated.
	SampleSize int `json:"sample_size"`
}

// StructureFeatures describes document layout patterns.
type StructureFeatures struct {
	// AvgHeaderCount is the mean number of headers per document.
	AvgHeaderCount float64 `json:"avg_header_count"`

	// AvgParagraphLength is the mean paragraph length in characters.
	AvgParagraphLength float64 `json:"avg_paragraph_length"`

	// BulletRatio is the fraction of sample documents using bullets.
	BulletRatio float64 `json:"bullet_ratio"`

	// NumberingRatio is the fraction using numbered lists.
	NumberingRatio float64 `json:"numbering_ratio"`
}

// LanguageFeatures describes tone and sentence construction.
type LanguageFeatures struct {
	// Tone is the dominant register: "formal", "technical" or "plain".
	Tone string `json:"tone"`

	// FormalityScore is formal-marker occurrences per thousand words.
	FormalityScore float64 `json:"formality_score"`

	// TechnicalScore is technical-marker occurrences per thousand words.
	TechnicalScore float64 `json:"technical_score"`

	// AvgSentenceLength is the mean sentence length in words.
	AvgSentenceLength float64 `json:"avg_sentence_length"`

	// AvgWordLength is the mean word length in characters.
	AvgWordLength float64 `json:"avg_word_length"`

	// VocabularyRichness is unique words over total words.
	VocabularyRichness float64 `json:"vocabulary_richness"`
}

// FormattingFeatures describes recurring formatting markers as the
// fraction of sample documents exhibiting each marker.
type FormattingFeatures struct {
	DateRatio      float64 `json:"date_ratio"`
	NumberingRatio float64 `json:"numbering_ratio"`
	CapsRatio      float64 `json:"caps_ratio"`
}

// SectionPattern is a generalised section title recurring in the sample.
type SectionPattern struct {
	// Title is the generalised title, with names and dates replaced by
	// placeholders such as [NAME] and [YEAR].
	Title string `json:"title"`

	// Frequency is how many sample documents contained the section.
	Frequency int `json:"frequency"`

	// AvgLength is the mean section body length in characters.
	AvgLength float64 `json:"avg_length"`
}

// SessionStatus is the lifecycle state of a draft session.
type SessionStatus string

// Draft session states.
const (
	// SessionDrafting means a revision is being generated.
	SessionDrafting SessionStatus = "drafting"

	// SessionReviewing means the latest revision awaits user action.
	SessionReviewing SessionStatus = "reviewing"

	// SessionFinalized means the session is closed to further revisions.
	SessionFinalized SessionStatus = "finalized"
)

// IsValid returns true if the status is recognised.
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionDrafting, SessionReviewing, SessionFinalized:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s SessionStatus) String() string {
	return string(s)
}

// DraftSession tracks an iterative drafting conversation.
// Revisions are append-only; the last revision is the current draft.
type DraftSession struct {
	// ID is the unique identifier for the session.
	ID string

	// StyleProfileID is the profile conditioning the draft.
	StyleProfileID string

	// Brief is the user's description of the document to produce.
	Brief string

	// Revisions holds every generated draft text, oldest first.
	Revisions []string

	// Status is the session's lifecycle state.
	Status SessionStatus

	// CreatedAt is when the session was opened.
	CreatedAt time.Time

	// UpdatedAt is when the last revision or transition happened.
	UpdatedAt time.Time
}

// CurrentRevision returns the latest draft text, or empty if none.
func (d *DraftSession) CurrentRevision() string {
	if len(d.Revisions) == 0 {
		return ""
	}
	return d.Revisions[len(d.Revisions)-1]
}
