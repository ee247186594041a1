package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used by chat models.
const (
	// PromptSummarise creates summaries of document content.
	// The template expects %d (max length) and %s (content) placeholders.
	PromptSummarise = "summarise"

	// PromptAnswerSystem is the system prompt for questions about a document.
	// The template expects one %s placeholder for the document text.
	PromptAnswerSystem = "answer_system"
)
