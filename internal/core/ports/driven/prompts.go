package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a
	// sensible default or an error, depending on whether the prompt is
	// required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next
	// access. Useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptGroundedAnswer instructs the model to answer only from the
	// supplied context and cite sources with [n] markers.
	// Expects %s (context) and %s (question) placeholders.
	PromptGroundedAnswer = "grounded_answer"

	// PromptDraft produces a first draft from a brief, style guidance
	// and optional context.
	// Expects %s (style guidance), %s (context), %s (brief) placeholders.
	PromptDraft = "draft"

	// PromptRevise rewrites an existing draft per an instruction.
	// Expects %s (instruction) and %s (current draft) placeholders.
	PromptRevise = "revise"

	// PromptQueryRewrite expands search queries for better recall.
	// Expects a %s placeholder for the original query.
	PromptQueryRewrite = "query_rewrite"
)

// PromptStoreAware is an optional interface for services that can use
// custom prompts. Services implementing it can have their templates
// customised by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable
	// prompts. If not set, the service uses hardcoded defaults.
	SetPromptStore(store PromptStore)
}
