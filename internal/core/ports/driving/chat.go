package driving

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// ChatService answers questions about a stored document.
type ChatService interface {
	// Ask sends question with the document's text to the chat model.
	Ask(ctx context.Context, documentID, question string, history []driven.ChatMessage) (string, error)

	// Available reports whether a chat model is configured.
	Available() bool
}
