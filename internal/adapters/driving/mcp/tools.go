package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// defaultLimit is the search limit when the caller gives none.
const defaultLimit = 10

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"text to find in extracted PDF pages (case-insensitive)"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10, max 200)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single matching page.
type SearchResultOutput struct {
	DocumentID string `json:"document_id,omitempty"`
	Filename   string `json:"filename"`
	PageNumber int    `json:"page_number"`
	Snippet    string `json:"snippet"`
	URI        string `json:"uri,omitempty"`
}

// StatsInput is the empty input of the stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the stats tool.
type StatsOutput struct {
	Documents   int   `json:"documents"`
	Files       int   `json:"files"`
	Pages       int   `json:"pages"`
	Tables      int   `json:"tables"`
	UploadBytes int64 `json:"upload_bytes"`
	TextBytes   int64 `json:"text_bytes"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	DocumentID string               `json:"document_id" jsonschema:"ID of the document to ask about"`
	Question   string               `json:"question" jsonschema:"the question to answer from the document text"`
	History    []driven.ChatMessage `json:"history,omitempty" jsonschema:"earlier turns of the conversation"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer string `json:"answer"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the text of every stored PDF page",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "stats",
		Description: "Report how many documents, pages and tables are stored",
	}, s.handleStats)

	if s.ports.Chat != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question using the text of one stored document",
		}, s.handleAsk)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchOutput{}, errors.New("query is required")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	matches, err := s.ports.Search.Search(ctx, input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(matches)),
		Count:   len(matches),
	}
	for i, m := range matches {
		output.Results[i] = SearchResultOutput{
			DocumentID: m.DocumentID,
			Filename:   m.Filename,
			PageNumber: m.PageNumber,
			Snippet:    m.Snippet,
		}
		if m.DocumentID != "" {
			output.Results[i].URI = documentURI(m.DocumentID)
		}
	}
	return nil, output, nil
}

// handleStats handles the stats tool invocation.
func (s *Server) handleStats(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	stats, err := s.ports.Search.Stats(ctx)
	if err != nil {
		return nil, StatsOutput{}, err
	}
	return nil, StatsOutput{
		Documents:   stats.TotalDocuments,
		Files:       stats.TotalFiles,
		Pages:       stats.TotalPages,
		Tables:      stats.TotalTables,
		UploadBytes: stats.TotalUploadBytes,
		TextBytes:   stats.TotalTextBytes,
	}, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if !s.ports.Chat.Available() {
		return nil, AskOutput{}, domain.ErrLLMUnavailable
	}
	answer, err := s.ports.Chat.Ask(ctx, input.DocumentID, input.Question, input.History)
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{Answer: answer}, nil
}
