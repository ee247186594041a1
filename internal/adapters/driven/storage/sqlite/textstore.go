package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// textStore implements driven.TextStore.
type textStore struct {
	store *Store
}

var _ driven.TextStore = (*textStore)(nil)

// StorePages writes all pages and tables of a file in a single transaction.
func (s *textStore) StorePages(ctx context.Context, fileName string, pages []domain.ExtractedPage) ([]int64, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, fmt.Errorf("storing pages: empty file name: %w", domain.ErrInvalidInput)
	}
	for i := range pages {
		if pages[i].PageNumber <= 0 {
			return nil, fmt.Errorf("storing pages: page number %d: %w", pages[i].PageNumber, domain.ErrInvalidInput)
		}
	}

	createdAt := formatTime(s.store.now())

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	pageStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO extracted_texts (file_name, page_number, text_content, created_at)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing page statement: %w", err)
	}
	defer pageStmt.Close()

	tableStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO extracted_tables
			(file_name, page_number, table_index, source, confidence, row_count, column_count, rows_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("preparing table statement: %w", err)
	}
	defer tableStmt.Close()

	ids := make([]int64, 0, len(pages))
	for i := range pages {
		page := &pages[i]
		res, err := pageStmt.ExecContext(ctx, fileName, page.PageNumber, page.Text, createdAt)
		if err != nil {
			return nil, fmt.Errorf("saving page %d: %w", page.PageNumber, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("reading record id: %w", err)
		}
		ids = append(ids, id)

		for idx, table := range page.Tables {
			rowsJSON, err := json.Marshal(table.Rows)
			if err != nil {
				return nil, fmt.Errorf("marshalling table rows: %w", err)
			}
			var confidence sql.NullFloat64
			if table.Confidence != nil {
				confidence = sql.NullFloat64{Float64: *table.Confidence, Valid: true}
			}
			if _, err := tableStmt.ExecContext(ctx, fileName, page.PageNumber, idx, string(table.Source),
				confidence, table.RowCount, table.ColumnCount, string(rowsJSON), createdAt); err != nil {
				return nil, fmt.Errorf("saving table %d of page %d: %w", idx, page.PageNumber, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return ids, nil
}

// SearchText finds records containing query, most occurrences first.
func (s *textStore) SearchText(ctx context.Context, query string, limit int) ([]domain.StoredTextRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.StoredTextRecord{}, nil
	}
	limit = domain.NormaliseLimit(limit)

	needle := asciiLower(query)
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, file_name, page_number, text_content, created_at,
			(length(text_content) - length(replace(lower(text_content), ?, ''))) / ? AS hits
		FROM extracted_texts
		WHERE lower(text_content) LIKE ? ESCAPE '\'
		ORDER BY hits DESC, created_at DESC, id DESC
		LIMIT ?
	`, needle, utf8.RuneCountInString(needle), "%"+escapeLike(needle)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("searching text: %w", err)
	}
	defer rows.Close()

	records := make([]domain.StoredTextRecord, 0, limit)
	for rows.Next() {
		var (
			rec       domain.StoredTextRecord
			createdAt string
			hits      int
		)
		if err := rows.Scan(&rec.ID, &rec.FileName, &rec.PageNumber, &rec.TextContent, &createdAt, &hits); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		if rec.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

// GetFilePages returns all records of a file ordered by page number.
func (s *textStore) GetFilePages(ctx context.Context, fileName string) ([]domain.StoredTextRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, file_name, page_number, text_content, created_at
		FROM extracted_texts
		WHERE file_name = ?
		ORDER BY page_number ASC
	`, fileName)
	if err != nil {
		return nil, fmt.Errorf("querying pages: %w", err)
	}
	defer rows.Close()

	records := []domain.StoredTextRecord{} //nolint:prealloc // size unknown from query
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pages: %w", err)
	}
	return records, nil
}

// GetFileTables returns all tables of a file ordered by page then index.
func (s *textStore) GetFileTables(ctx context.Context, fileName string) ([]domain.StoredTable, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, file_name, page_number, table_index, source, confidence, rows_json, created_at
		FROM extracted_tables
		WHERE file_name = ?
		ORDER BY page_number ASC, table_index ASC
	`, fileName)
	if err != nil {
		return nil, fmt.Errorf("querying tables: %w", err)
	}
	defer rows.Close()

	tables := []domain.StoredTable{} //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			st         domain.StoredTable
			source     string
			confidence sql.NullFloat64
			rowsJSON   string
			createdAt  string
		)
		if err := rows.Scan(&st.ID, &st.FileName, &st.PageNumber, &st.Index, &source,
			&confidence, &rowsJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning table: %w", err)
		}
		var cells [][]string
		if err := json.Unmarshal([]byte(rowsJSON), &cells); err != nil {
			return nil, fmt.Errorf("unmarshalling table rows: %w", err)
		}
		var conf *float64
		if confidence.Valid {
			conf = &confidence.Float64
		}
		st.Table = domain.NewTable(cells, domain.TableSource(source), conf)
		if st.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		tables = append(tables, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tables: %w", err)
	}
	return tables, nil
}

// GetStats returns record counts, sizes and per-day growth.
func (s *textStore) GetStats(ctx context.Context) (*domain.Stats, error) {
	var stats domain.Stats

	row := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT file_name), COUNT(*), COALESCE(SUM(length(CAST(text_content AS BLOB))), 0)
		FROM extracted_texts
	`)
	if err := row.Scan(&stats.TotalFiles, &stats.TotalPages, &stats.TotalTextBytes); err != nil {
		return nil, fmt.Errorf("counting records: %w", err)
	}

	row = s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM extracted_tables")
	if err := row.Scan(&stats.TotalTables); err != nil {
		return nil, fmt.Errorf("counting tables: %w", err)
	}

	row = s.store.db.QueryRowContext(ctx, `
		SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()
	`)
	if err := row.Scan(&stats.DatabaseSizeBytes); err != nil {
		return nil, fmt.Errorf("reading database size: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT substr(created_at, 1, 10) AS day, COUNT(*), COUNT(DISTINCT file_name)
		FROM extracted_texts
		GROUP BY day
		ORDER BY day ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying growth: %w", err)
	}
	defer rows.Close()

	stats.Growth = []domain.GrowthPoint{}
	for rows.Next() {
		var point domain.GrowthPoint
		if err := rows.Scan(&point.Day, &point.Pages, &point.Files); err != nil {
			return nil, fmt.Errorf("scanning growth: %w", err)
		}
		stats.Growth = append(stats.Growth, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating growth: %w", err)
	}

	return &stats, nil
}

// DeleteFile removes every page and table of a file.
func (s *textStore) DeleteFile(ctx context.Context, fileName string) (int64, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM extracted_tables WHERE file_name = ?", fileName); err != nil {
		return 0, fmt.Errorf("deleting tables: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM extracted_texts WHERE file_name = ?", fileName)
	if err != nil {
		return 0, fmt.Errorf("deleting pages: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted pages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return n, nil
}

// CleanupOldRecords deletes pages and tables created before the cutoff.
func (s *textStore) CleanupOldRecords(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan < 0 {
		return 0, fmt.Errorf("cleanup: negative age %s: %w", olderThan, domain.ErrInvalidInput)
	}
	cutoff := formatTime(s.store.now().Add(-olderThan))

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM extracted_tables WHERE created_at < ?", cutoff); err != nil {
		return 0, fmt.Errorf("deleting old tables: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM extracted_texts WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting old pages: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted pages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return n, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord scans a single extracted_texts row.
func scanRecord(row rowScanner) (*domain.StoredTextRecord, error) {
	var rec domain.StoredTextRecord
	var createdAt string
	if err := row.Scan(&rec.ID, &rec.FileName, &rec.PageNumber, &rec.TextContent, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning record: %w", err)
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = t
	return &rec, nil
}
