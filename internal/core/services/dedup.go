package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// DuplicateDetector recognises byte-identical uploads.
type DuplicateDetector struct {
	docStore driven.DocumentStore
}

// NewDuplicateDetector creates a detector backed by the document store.
func NewDuplicateDetector(docStore driven.DocumentStore) *DuplicateDetector {
	return &DuplicateDetector{docStore: docStore}
}

// Fingerprint returns the lowercase hex SHA-256 of data.
func Fingerprint(data []byte) domain.Fingerprint {
	sum := sha256.Sum256(data)
	return domain.Fingerprint(hex.EncodeToString(sum[:]))
}

// FindExisting returns the document with fingerprint fp, or nil if none exists.
func (d *DuplicateDetector) FindExisting(ctx context.Context, fp domain.Fingerprint) (*domain.Document, error) {
	doc, err := d.docStore.GetByFingerprint(ctx, fp)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Check fingerprints data and looks it up.
func (d *DuplicateDetector) Check(ctx context.Context, data []byte) (domain.Fingerprint, *domain.Document, error) {
	fp := Fingerprint(data)
	doc, err := d.FindExisting(ctx, fp)
	return fp, doc, err
}

// IsDuplicate reports whether doc short-circuits a new upload.
// A failed document is retried instead.
func IsDuplicate(doc *domain.Document) bool {
	return doc != nil && doc.Status != domain.StatusFailed
}
