package driven

import "context"

// ChatModel answers questions over a text context.
// This is an optional service - when nil, summaries and chat are disabled.
//
// Implementations include:
//   - OpenAI and OpenAI-compatible servers
//   - Google Gemini
type ChatModel interface {
	// Answer replies to question using only the given document context.
	Answer(ctx context.Context, documentText, question string, history []ChatMessage) (string, error)

	// Summarise creates a summary of document content.
	Summarise(ctx context.Context, content string, maxLength int) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "user" or "assistant".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}
