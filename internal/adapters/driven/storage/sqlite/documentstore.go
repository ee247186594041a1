package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// documentColumns is the column list shared by every documents query.
const documentColumns = `id, original_filename, stored_filename, fingerprint, file_size, total_pages,
	status, summary, error, upload_date, updated_at`

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// Save stores or updates a document.
func (s *documentStore) Save(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" || doc.StoredFilename == "" || doc.Fingerprint == "" {
		return domain.ErrInvalidInput
	}

	now := s.store.now().UTC()
	if doc.UploadDate.IsZero() {
		doc.UploadDate = now
	}
	doc.UpdatedAt = now
	if doc.Status == "" {
		doc.Status = domain.StatusPending
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			original_filename = excluded.original_filename,
			stored_filename = excluded.stored_filename,
			fingerprint = excluded.fingerprint,
			file_size = excluded.file_size,
			total_pages = excluded.total_pages,
			status = excluded.status,
			summary = excluded.summary,
			error = excluded.error,
			updated_at = excluded.updated_at
	`, doc.ID, doc.OriginalFilename, doc.StoredFilename, string(doc.Fingerprint), doc.FileSize,
		doc.TotalPages, string(doc.Status), doc.Summary, doc.Error,
		formatTime(doc.UploadDate), formatTime(doc.UpdatedAt))

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("saving document: %w", domain.ErrAlreadyExists)
		}
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// Get retrieves a document by ID.
func (s *documentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	return scanDocument(row)
}

// GetByFingerprint retrieves the document with an exact fingerprint match.
func (s *documentStore) GetByFingerprint(ctx context.Context, fp domain.Fingerprint) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE fingerprint = ?", string(fp))
	return scanDocument(row)
}

// GetByStoredFilename retrieves the document owning a record file name.
func (s *documentStore) GetByStoredFilename(ctx context.Context, storedFilename string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE stored_filename = ?", storedFilename)
	return scanDocument(row)
}

// List returns all documents, newest first.
func (s *documentStore) List(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+documentColumns+" FROM documents ORDER BY upload_date DESC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()
	return scanDocuments(rows)
}

// SearchByFilename returns documents whose original filename contains query.
func (s *documentStore) SearchByFilename(ctx context.Context, query string) ([]domain.Document, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Document{}, nil
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE lower(original_filename) LIKE ? ESCAPE '\'
		ORDER BY upload_date DESC, id ASC
	`, "%"+escapeLike(asciiLower(query))+"%")
	if err != nil {
		return nil, fmt.Errorf("searching documents: %w", err)
	}
	defer rows.Close()
	return scanDocuments(rows)
}

// UpdateStatus changes the processing status, page count and error.
func (s *documentStore) UpdateStatus(
	ctx context.Context, id string, status domain.ProcessingStatus, totalPages int, errMsg string,
) error {
	if !status.IsValid() {
		return fmt.Errorf("updating status %q: %w", status, domain.ErrInvalidInput)
	}
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE documents SET status = ?, total_pages = ?, error = ?, updated_at = ?
		WHERE id = ?
	`, string(status), totalPages, errMsg, formatTime(s.store.now()), id)
	if err != nil {
		return fmt.Errorf("updating document status: %w", err)
	}
	return requireAffected(res)
}

// UpdateSummary stores the generated summary.
func (s *documentStore) UpdateSummary(ctx context.Context, id, summary string) error {
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE documents SET summary = ?, updated_at = ? WHERE id = ?",
		summary, formatTime(s.store.now()), id)
	if err != nil {
		return fmt.Errorf("updating document summary: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a document.
func (s *documentStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// Stats returns aggregate document counts.
func (s *documentStore) Stats(ctx context.Context) (*domain.DocumentStats, error) {
	var stats domain.DocumentStats
	row := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(file_size), 0), COALESCE(SUM(total_pages), 0)
		FROM documents
	`)
	if err := row.Scan(&stats.TotalDocuments, &stats.TotalBytes, &stats.TotalPages); err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	return &stats, nil
}

// requireAffected maps a zero-row update to domain.ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("counting affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanDocument scans a single documents row.
func scanDocument(row rowScanner) (*domain.Document, error) {
	var (
		doc                   domain.Document
		fingerprint, status   string
		uploadDate, updatedAt string
	)
	if err := row.Scan(&doc.ID, &doc.OriginalFilename, &doc.StoredFilename, &fingerprint,
		&doc.FileSize, &doc.TotalPages, &status, &doc.Summary, &doc.Error,
		&uploadDate, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.Fingerprint = domain.Fingerprint(fingerprint)
	doc.Status = domain.ProcessingStatus(status)

	var err error
	if doc.UploadDate, err = parseTime(uploadDate); err != nil {
		return nil, err
	}
	if doc.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &doc, nil
}

// scanDocuments drains rows into a slice.
func scanDocuments(rows *sql.Rows) ([]domain.Document, error) {
	docs := []domain.Document{} //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}
