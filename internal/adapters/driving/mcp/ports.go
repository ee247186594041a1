package mcp

import (
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls.
type Ports struct {
	// Search provides text search and statistics.
	Search driving.SearchService

	// Document reads stored documents. Optional; without it the
	// document resources report not found.
	Document driving.DocumentService

	// Chat answers questions about a document. Optional; without it
	// the ask tool is not registered.
	Chat driving.ChatService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
