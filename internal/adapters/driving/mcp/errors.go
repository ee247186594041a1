// Package mcp provides an MCP (Model Context Protocol) server adapter for folio.
// It lets AI assistants search extracted PDF text and read stored documents.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
