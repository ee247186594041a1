// Package tui provides the interactive terminal interface for folio:
// search extracted pages, read a document and chat about it.
package tui

import (
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI calls.
type Ports struct {
	// Search finds pages matching a query.
	Search driving.SearchService

	// Documents loads stored pages.
	Documents driving.DocumentService

	// Chat answers questions about a document. Optional.
	Chat driving.ChatService
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Documents == nil {
		return ErrMissingDocumentService
	}
	return nil
}
