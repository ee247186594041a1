package llm

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// DefaultPrompts returns the built-in prompt templates keyed by prompt name.
func DefaultPrompts() map[string]string {
	return map[string]string{
		driven.PromptSummarise: `Summarise the following document in %d characters or less.
Cover its purpose, the key figures and any dates or parties it names.

Document:
%s

Summary:`,

		driven.PromptAnswerSystem: `You answer questions about a single PDF document.
Use only the document text below. If the answer is not in the document, say so plainly.
Quote figures exactly as they appear and mention the page when the text makes it clear.

Document:
%s`,
	}
}

// Prompts renders prompt templates from an optional store.
// The zero value uses the built-in templates.
type Prompts struct {
	store driven.PromptStore
}

// NewPrompts creates a renderer backed by store. A nil store means built-in templates only.
func NewPrompts(store driven.PromptStore) Prompts {
	return Prompts{store: store}
}

// Summarise renders the summary request.
func (p Prompts) Summarise(content string, maxLength int) string {
	return p.render(driven.PromptSummarise, maxLength, content)
}

// AnswerSystem renders the system prompt for a question about documentText.
func (p Prompts) AnswerSystem(documentText string) string {
	return p.render(driven.PromptAnswerSystem, documentText)
}

// render formats the named template. A custom template whose placeholders
// do not match args falls back to the built-in one.
func (p Prompts) render(name string, args ...any) string {
	if p.store != nil {
		tmpl, err := p.store.Load(name)
		switch {
		case err != nil:
			logger.Warn("loading prompt %s: %v", name, err)
		case !placeholdersMatch(tmpl, args):
			logger.Warn("prompt %s has mismatched placeholders, using built-in template", name)
		default:
			return fmt.Sprintf(tmpl, args...)
		}
	}
	return fmt.Sprintf(DefaultPrompts()[name], args...)
}

// placeholdersMatch formats tmpl with zero values of args and reports
// whether fmt flagged a missing, extra or mistyped verb.
func placeholdersMatch(tmpl string, args []any) bool {
	probe := make([]any, len(args))
	for i, a := range args {
		switch a.(type) {
		case int:
			probe[i] = 0
		default:
			probe[i] = ""
		}
	}
	return !strings.Contains(fmt.Sprintf(tmpl, probe...), "%!")
}

// Conversation roles accepted in chat history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// NormaliseRole maps a history role onto RoleUser or RoleAssistant.
// It reports false for roles that should be dropped.
func NormaliseRole(role string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "user", "human":
		return RoleUser, true
	case "assistant", "model", "ai", "bot":
		return RoleAssistant, true
	default:
		return "", false
	}
}
