// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/folio/internal/core/domain"
)

// SearchCompleted carries page matches back to the search view.
type SearchCompleted struct {
	Query   string
	Matches []domain.SearchMatch
	Err     error
}

// MatchSelected opens the document behind a search match.
type MatchSelected struct {
	Match domain.SearchMatch
}

// ChatOpened starts a chat about one document.
type ChatOpened struct {
	DocumentID string
	Filename   string
}

// ChatAnswered carries the model's reply to one question.
type ChatAnswered struct {
	DocumentID string
	Question   string
	Answer     string
	Err        error
}

// DocumentContentLoaded carries the stored pages of a document.
type DocumentContentLoaded struct {
	DocumentID string
	Content    *domain.DocumentContent
	Err        error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewSearch is the query input and match list.
	ViewSearch ViewType = iota
	// ViewDocContent shows the pages of one document.
	ViewDocContent
	// ViewChat is the question and answer transcript for one document.
	ViewChat
	// ViewHelp lists the keybindings.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewDocContent:
		return "doc_content"
	case ViewChat:
		return "chat"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
