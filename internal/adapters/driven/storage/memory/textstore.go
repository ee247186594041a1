package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure TextStore implements the interface.
var _ driven.TextStore = (*TextStore)(nil)

// TextStore is an in-memory implementation of driven.TextStore for testing.
type TextStore struct {
	mu      sync.RWMutex
	nextID  int64
	records []domain.StoredTextRecord
	tables  []domain.StoredTable

	// Now returns the timestamp given to new records.
	Now func() time.Time

	// FailOn, when set, is consulted before every write.
	// A non-nil error aborts the write with nothing stored.
	FailOn func(fileName string) error
}

// NewTextStore creates a new in-memory text store.
func NewTextStore() *TextStore {
	return &TextStore{
		Now: func() time.Time { return time.Now().UTC() },
	}
}

// StorePages writes all pages and tables of a file atomically.
func (s *TextStore) StorePages(ctx context.Context, fileName string, pages []domain.ExtractedPage) ([]int64, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, fmt.Errorf("storing pages: empty file name: %w", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.FailOn != nil {
		if err := s.FailOn(fileName); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int]bool, len(pages))
	for i := range s.records {
		if s.records[i].FileName == fileName {
			seen[s.records[i].PageNumber] = true
		}
	}
	for i := range pages {
		n := pages[i].PageNumber
		if n <= 0 {
			return nil, fmt.Errorf("storing pages: page number %d: %w", n, domain.ErrInvalidInput)
		}
		if seen[n] {
			return nil, fmt.Errorf("storing pages: page %d of %s: %w", n, fileName, domain.ErrAlreadyExists)
		}
		seen[n] = true
	}

	createdAt := s.Now()
	ids := make([]int64, 0, len(pages))
	for i := range pages {
		s.nextID++
		s.records = append(s.records, domain.StoredTextRecord{
			ID:          s.nextID,
			FileName:    fileName,
			PageNumber:  pages[i].PageNumber,
			TextContent: pages[i].Text,
			CreatedAt:   createdAt,
		})
		ids = append(ids, s.nextID)
		for idx, table := range pages[i].Tables {
			s.tables = append(s.tables, domain.StoredTable{
				ID:         int64(len(s.tables) + 1),
				FileName:   fileName,
				PageNumber: pages[i].PageNumber,
				Index:      idx,
				Table:      table,
				CreatedAt:  createdAt,
			})
		}
	}
	return ids, nil
}

// SearchText finds records containing query, most occurrences first.
func (s *TextStore) SearchText(_ context.Context, query string, limit int) ([]domain.StoredTextRecord, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []domain.StoredTextRecord{}, nil
	}
	limit = domain.NormaliseLimit(limit)

	s.mu.RLock()
	type hit struct {
		rec   domain.StoredTextRecord
		count int
	}
	var hits []hit
	for i := range s.records {
		n := strings.Count(strings.ToLower(s.records[i].TextContent), query)
		if n > 0 {
			hits = append(hits, hit{rec: s.records[i], count: n})
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].count != hits[j].count {
			return hits[i].count > hits[j].count
		}
		if !hits[i].rec.CreatedAt.Equal(hits[j].rec.CreatedAt) {
			return hits[i].rec.CreatedAt.After(hits[j].rec.CreatedAt)
		}
		return hits[i].rec.ID > hits[j].rec.ID
	})

	result := make([]domain.StoredTextRecord, 0, min(limit, len(hits)))
	for i := 0; i < len(hits) && i < limit; i++ {
		result = append(result, hits[i].rec)
	}
	return result, nil
}

// GetFilePages returns all records of a file ordered by page number.
func (s *TextStore) GetFilePages(_ context.Context, fileName string) ([]domain.StoredTextRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []domain.StoredTextRecord{}
	for i := range s.records {
		if s.records[i].FileName == fileName {
			result = append(result, s.records[i])
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PageNumber < result[j].PageNumber })
	return result, nil
}

// GetFileTables returns all tables of a file ordered by page then index.
func (s *TextStore) GetFileTables(_ context.Context, fileName string) ([]domain.StoredTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []domain.StoredTable{}
	for i := range s.tables {
		if s.tables[i].FileName == fileName {
			result = append(result, s.tables[i])
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].PageNumber != result[j].PageNumber {
			return result[i].PageNumber < result[j].PageNumber
		}
		return result[i].Index < result[j].Index
	})
	return result, nil
}

// GetStats returns record counts, sizes and per-day growth.
func (s *TextStore) GetStats(_ context.Context) (*domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &domain.Stats{TotalPages: len(s.records), TotalTables: len(s.tables)}
	files := make(map[string]bool)
	days := make(map[string]map[string]int)
	for i := range s.records {
		rec := &s.records[i]
		files[rec.FileName] = true
		stats.TotalTextBytes += int64(len(rec.TextContent))
		day := rec.CreatedAt.UTC().Format("2006-01-02")
		if days[day] == nil {
			days[day] = make(map[string]int)
		}
		days[day][rec.FileName]++
	}
	stats.TotalFiles = len(files)

	stats.Growth = make([]domain.GrowthPoint, 0, len(days))
	for day, perFile := range days {
		point := domain.GrowthPoint{Day: day, Files: len(perFile)}
		for _, n := range perFile {
			point.Pages += n
		}
		stats.Growth = append(stats.Growth, point)
	}
	sort.Slice(stats.Growth, func(i, j int) bool { return stats.Growth[i].Day < stats.Growth[j].Day })
	return stats, nil
}

// DeleteFile removes every page and table of a file.
func (s *TextStore) DeleteFile(_ context.Context, fileName string) (int64, error) {
	if s.FailOn != nil {
		if err := s.FailOn(fileName); err != nil {
			return 0, err
		}
	}
	return s.remove(func(name string, _ time.Time) bool { return name == fileName }), nil
}

// CleanupOldRecords deletes pages and tables created before the cutoff.
func (s *TextStore) CleanupOldRecords(_ context.Context, olderThan time.Duration) (int64, error) {
	if olderThan < 0 {
		return 0, fmt.Errorf("cleanup: negative age %s: %w", olderThan, domain.ErrInvalidInput)
	}
	cutoff := s.Now().Add(-olderThan)
	return s.remove(func(_ string, at time.Time) bool { return at.Before(cutoff) }), nil
}

func (s *TextStore) remove(match func(name string, at time.Time) bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	records := s.records[:0]
	for _, rec := range s.records {
		if match(rec.FileName, rec.CreatedAt) {
			removed++
			continue
		}
		records = append(records, rec)
	}
	s.records = records

	tables := s.tables[:0]
	for _, st := range s.tables {
		if !match(st.FileName, st.CreatedAt) {
			tables = append(tables, st)
		}
	}
	s.tables = tables
	return removed
}
