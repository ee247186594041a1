package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// snippetRadius is the number of runes kept either side of a match.
const snippetRadius = 80

// SearchService provides text search and statistics.
type SearchService struct {
	textStore driven.TextStore
	docStore  driven.DocumentStore
}

// NewSearchService creates a new search service.
func NewSearchService(textStore driven.TextStore, docStore driven.DocumentStore) *SearchService {
	return &SearchService{
		textStore: textStore,
		docStore:  docStore,
	}
}

// Search returns matching pages, most relevant first.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]domain.SearchMatch, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q limit=%d", query, limit)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchMatch{}, nil
	}

	records, err := s.textStore.SearchText(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching text: %w", err)
	}

	docs := make(map[string]*domain.Document)
	matches := make([]domain.SearchMatch, 0, len(records))
	for i := range records {
		rec := &records[i]
		doc, ok := docs[rec.FileName]
		if !ok {
			doc, err = s.docStore.GetByStoredFilename(ctx, rec.FileName)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("resolving %s: %w", rec.FileName, err)
			}
			docs[rec.FileName] = doc
		}

		match := domain.SearchMatch{
			RecordID:       rec.ID,
			Filename:       rec.FileName,
			StoredFilename: rec.FileName,
			PageNumber:     rec.PageNumber,
			Snippet:        snippet(rec.TextContent, query, snippetRadius),
			CreatedAt:      rec.CreatedAt,
		}
		if doc != nil {
			match.DocumentID = doc.ID
			match.Filename = doc.OriginalFilename
		}
		matches = append(matches, match)
	}

	logger.Debug("Results: %d", len(matches))
	return matches, nil
}

// SearchDocuments returns documents whose filename contains query.
func (s *SearchService) SearchDocuments(ctx context.Context, query string) ([]domain.Document, error) {
	return s.docStore.SearchByFilename(ctx, query)
}

// Stats combines record and document statistics.
func (s *SearchService) Stats(ctx context.Context) (*domain.Stats, error) {
	stats, err := s.textStore.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("record stats: %w", err)
	}
	docStats, err := s.docStore.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("document stats: %w", err)
	}
	stats.TotalDocuments = docStats.TotalDocuments
	stats.TotalUploadBytes = docStats.TotalBytes
	return stats, nil
}

// snippet returns the text around the first case-insensitive occurrence of
// query, with ellipses where it was cut.
func snippet(text, query string, radius int) string {
	runes := []rune(text)
	lower := []rune(strings.ToLower(text))
	needle := []rune(strings.ToLower(query))

	pos := -1
	if len(lower) == len(runes) {
		pos = runeIndex(lower, needle)
	}
	if pos < 0 {
		return collapse(truncateRunes(text, 2*radius))
	}

	start := max(0, pos-radius)
	end := min(len(runes), pos+len(needle)+radius)
	out := collapse(string(runes[start:end]))
	if start > 0 {
		out = "..." + out
	}
	if end < len(runes) {
		out += "..."
	}
	return out
}

// runeIndex returns the index of needle in haystack, or -1.
func runeIndex(haystack, needle []rune) int {
	if len(needle) == 0 {
		return -1
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j := range needle {
			if haystack[i+j] != needle[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}

// collapse folds whitespace runs into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
