package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// uriScheme is the custom URI scheme for folio resources.
const uriScheme = "folio://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "Every stored PDF with its processing status",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document-content",
		Description: "Extracted text of a document, page by page",
		MIMEType:    "text/plain",
	}, s.handleDocumentContentResource)
}

// documentInfo is one entry of the documents resource.
type documentInfo struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Pages    int    `json:"pages"`
	URI      string `json:"uri"`
}

// handleDocumentsResource lists stored documents.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	infos := []documentInfo{}
	if s.ports.Document != nil {
		docs, err := s.ports.Document.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing documents: %w", err)
		}
		for i := range docs {
			infos = append(infos, documentInfo{
				ID:       docs[i].ID,
				Filename: docs[i].OriginalFilename,
				Status:   string(docs[i].Status),
				Pages:    docs[i].TotalPages,
				URI:      documentURI(docs[i].ID),
			})
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentContentResource returns the extracted text of one document.
func (s *Server) handleDocumentContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Document == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	content, err := s.ports.Document.GetContent(ctx, docID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting document content: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     renderContent(content),
		}},
	}, nil
}

// renderContent formats pages with headers so page numbers survive as plain text.
func renderContent(content *domain.DocumentContent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s (%d pages)\n", content.Document.OriginalFilename, len(content.Pages))
	for _, page := range content.Pages {
		fmt.Fprintf(&b, "\n--- Page %d ---\n%s\n", page.PageNumber, page.Text)
		for i, table := range page.Tables {
			fmt.Fprintf(&b, "\n[table %d]\n", i+1)
			for _, row := range table.Rows {
				b.WriteString(strings.Join(row, " | "))
				b.WriteByte('\n')
			}
		}
	}
	return b.String()
}

func documentURI(id string) string {
	return uriScheme + "documents/" + id
}

// extractDocumentID extracts the document ID from a URI like folio://documents/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"
	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
