package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/quill-cli/internal/core/domain"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quill-cli/internal/core/ports/driving"
	"github.com/custodia-labs/quill-cli/internal/logger"
)

// Ensure Drafter implements the interfaces.
var (
	_ driving.DraftService    = (*Drafter)(nil)
	_ driven.PromptStoreAware = (*Drafter)(nil)
)

// Default prompts used when no prompt store is injected.
const (
	defaultDraftPrompt = `You are an expert document writer.
Your task is to draft a professional document based on the user's request and learned style patterns.

STYLE GUIDELINES:
%s

RELEVANT CONTEXT:
%s

USER REQUEST:
%s

DRAFTING INSTRUCTIONS:
1. Create a complete, professional document that addresses the user's request
2. Follow the style guidelines closely to match the established patterns
3. Use appropriate section headers and structure
4. Include placeholder text like [COMPANY NAME], [DATE], [NAME] where specific information is needed
5. Ensure the tone and complexity match the style guidelines

Please draft the document now:`

	defaultRevisePrompt = `Please refine the following document based on the user's request:

USER'S REFINEMENT REQUEST:
%s

CURRENT DOCUMENT:
%s

Please provide the refined version of the document, incorporating the requested changes while maintaining the overall style and structure:`
)

// draftContextK is how many chunks of knowledge-base context feed the
// first revision.
const draftContextK = 3

var (
	placeholder    = regexp.MustCompile(`\[([^\]]+)\]`)
	headerish      = regexp.MustCompile(`(?m)^[A-Z][A-Za-z\s]+:?\s*$`)
	excessNewlines = regexp.MustCompile(`\n\s*\n\s*\n`)
)

// Drafter runs the iterative drafting state machine over draft
// sessions. Revisions are append-only and a finalized session is closed
// to further changes.
type Drafter struct {
	profileStore driven.StyleProfileStore
	sessionStore driven.DraftSessionStore
	llm          driven.LLMService
	query        driving.QueryService
	prompts      driven.PromptStore
}

// NewDrafter creates a new draft service.
// The query parameter provides knowledge-base context and is optional
// (can be nil).
func NewDrafter(
	profileStore driven.StyleProfileStore,
	sessionStore driven.DraftSessionStore,
	llm driven.LLMService,
	query driving.QueryService,
) *Drafter {
	return &Drafter{
		profileStore: profileStore,
		sessionStore: sessionStore,
		llm:          llm,
		query:        query,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *Drafter) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// Create opens a session, generates the first revision conditioned on
// the style profile, retrieved context and brief, and leaves the
// session in the reviewing state.
func (s *Drafter) Create(
	ctx context.Context, styleProfileID, brief string, useContext bool,
) (*domain.DraftSession, error) {
	brief = strings.TrimSpace(brief)
	if brief == "" {
		return nil, fmt.Errorf("%w: empty brief", domain.ErrInvalidInput)
	}

	profile, err := s.profileStore.GetProfile(ctx, styleProfileID)
	if err != nil {
		return nil, fmt.Errorf("get style profile %s: %w", styleProfileID, err)
	}

	logger.Section("Draft Creation")
	logger.Debug("Profile: %s, context: %t", styleProfileID, useContext)

	now := time.Now()
	session := &domain.DraftSession{
		ID:             uuid.NewString(),
		StyleProfileID: styleProfileID,
		Brief:          brief,
		Status:         domain.SessionDrafting,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	contextText := "(none)"
	if useContext {
		contextText = s.retrieveContext(ctx, brief)
	}

	prompt := fmt.Sprintf(s.promptTemplate(driven.PromptDraft, defaultDraftPrompt),
		styleGuidance(profile), contextText, brief)

	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   2048,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("generate draft: %w", err)
	}

	session.Revisions = append(session.Revisions, tidyDraft(text))
	session.Status = domain.SessionReviewing
	session.UpdatedAt = time.Now()

	if err := s.sessionStore.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	logger.Info("Created draft session %s", session.ID)
	return session, nil
}

// Revise generates a new revision from the current one and the
// instruction. Allowed only from the reviewing state.
func (s *Drafter) Revise(ctx context.Context, sessionID, instruction string) (*domain.DraftSession, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil, fmt.Errorf("%w: empty instruction", domain.ErrInvalidInput)
	}

	session, err := s.sessionStore.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := requireReviewing(session); err != nil {
		return nil, err
	}

	session.Status = domain.SessionDrafting

	prompt := fmt.Sprintf(s.promptTemplate(driven.PromptRevise, defaultRevisePrompt),
		instruction, session.CurrentRevision())

	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   2048,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("generate revision: %w", err)
	}

	session.Revisions = append(session.Revisions, tidyDraft(text))
	session.Status = domain.SessionReviewing
	session.UpdatedAt = time.Now()

	if err := s.sessionStore.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	logger.Info("Session %s revised (revision %d)", session.ID, len(session.Revisions))
	return session, nil
}

// Finalize closes the session to further revisions.
func (s *Drafter) Finalize(ctx context.Context, sessionID string) (*domain.DraftSession, error) {
	session, err := s.sessionStore.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := requireReviewing(session); err != nil {
		return nil, err
	}

	session.Status = domain.SessionFinalized
	session.UpdatedAt = time.Now()

	if err := s.sessionStore.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	logger.Info("Session %s finalized", session.ID)
	return session, nil
}

// Get retrieves a session by id.
func (s *Drafter) Get(ctx context.Context, sessionID string) (*domain.DraftSession, error) {
	return s.sessionStore.GetSession(ctx, sessionID)
}

// List returns all sessions, newest first.
func (s *Drafter) List(ctx context.Context) ([]domain.DraftSession, error) {
	return s.sessionStore.ListSessions(ctx)
}

// Suggest returns deterministic improvement suggestions for the
// session's current revision. No model round trip.
func (s *Drafter) Suggest(ctx context.Context, sessionID string) ([]string, error) {
	session, err := s.sessionStore.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	draft := session.CurrentRevision()
	var suggestions []string

	if len(strings.Fields(draft)) < 100 {
		suggestions = append(suggestions,
			"Consider expanding the document with more detail and supporting information")
	}

	if n := len(placeholder.FindAllString(draft, -1)); n > 0 {
		suggestions = append(suggestions,
			fmt.Sprintf("Replace %d placeholders with actual information", n))
	}

	if len(headerish.FindAllString(draft, -1)) < 2 {
		suggestions = append(suggestions,
			"Consider organizing content into clear sections with headers")
	}

	return suggestions, nil
}

// requireReviewing gates revision and finalization on the session state.
func requireReviewing(session *domain.DraftSession) error {
	switch session.Status {
	case domain.SessionReviewing:
		return nil
	case domain.SessionFinalized:
		return domain.ErrSessionFinalized
	default:
		return fmt.Errorf("%w: session is %s", domain.ErrInvalidTransition, session.Status)
	}
}

// retrieveContext pulls the most relevant knowledge-base passages for
// the brief. Failures degrade to drafting without context.
func (s *Drafter) retrieveContext(ctx context.Context, brief string) string {
	if s.query == nil {
		return "(none)"
	}

	retrieved, err := s.query.Search(ctx, brief, domain.RetrievalOptions{K: draftContextK})
	if err != nil {
		logger.Warn("Context retrieval failed: %v (drafting without context)", err)
		return "(none)"
	}
	if len(retrieved) == 0 {
		return "(none)"
	}

	var builder strings.Builder
	for i, rc := range retrieved {
		if i > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString(rc.Chunk.Content)
	}
	return builder.String()
}

// styleGuidance renders a learned profile as prose instructions for the
// drafting prompt.
func styleGuidance(profile *domain.StyleProfile) string {
	f := profile.Features
	var lines []string

	lines = append(lines, "STRUCTURE:")
	lines = append(lines, fmt.Sprintf("- Use approximately %.0f main sections", f.Structure.AvgHeaderCount))
	lines = append(lines, fmt.Sprintf("- Target paragraph length: %.0f characters", f.Structure.AvgParagraphLength))
	if f.Structure.BulletRatio > 0.5 {
		lines = append(lines, "- Include bullet points for lists")
	}
	if f.Structure.NumberingRatio > 0.5 {
		lines = append(lines, "- Use numbered lists where appropriate")
	}

	lines = append(lines, "", "LANGUAGE STYLE:")
	switch f.Language.Tone {
	case "formal":
		lines = append(lines, "- Use formal, professional language")
	case "technical":
		lines = append(lines, "- Use technical, precise terminology")
	default:
		lines = append(lines, "- Use clear, accessible language")
	}
	if f.Language.AvgSentenceLength > 20 {
		lines = append(lines, "- Use longer, complex sentences")
	} else {
		lines = append(lines, "- Use concise, clear sentences")
	}

	if len(f.Sections) > 0 {
		lines = append(lines, "", "COMMON SECTIONS:")
		limit := len(f.Sections)
		if limit > 5 {
			limit = 5
		}
		for _, section := range f.Sections[:limit] {
			lines = append(lines, "- "+section.Title)
		}
	}

	lines = append(lines, "", "FORMATTING:")
	if f.Formatting.DateRatio > 0.5 {
		lines = append(lines, "- Include dates where relevant")
	}
	if f.Formatting.NumberingRatio > 0.5 {
		lines = append(lines, "- Use section numbering (1.1, 1.2, etc.)")
	}
	if f.Formatting.CapsRatio > 0.5 {
		lines = append(lines, "- Use ALL CAPS for emphasis on key terms")
	}

	return strings.Join(lines, "\n")
}

// tidyDraft collapses runs of blank lines and trims the generated text.
func tidyDraft(text string) string {
	return strings.TrimSpace(excessNewlines.ReplaceAllString(text, "\n\n"))
}

// promptTemplate loads a named prompt, falling back to the built-in
// default.
func (s *Drafter) promptTemplate(name, fallback string) string {
	if s.prompts != nil {
		if tmpl, err := s.prompts.Load(name); err == nil && tmpl != "" {
			return tmpl
		}
	}
	return fallback
}
