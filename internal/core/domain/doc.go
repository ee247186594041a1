// Package domain defines the core business entities for folio.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ExtractionResult: Per-page text and tables produced from one PDF
//   - StoredTextRecord: A persisted page of extracted text
//   - Document: An uploaded PDF with its fingerprint and processing status
//   - BatchReport: The aggregate outcome of one batch call
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
