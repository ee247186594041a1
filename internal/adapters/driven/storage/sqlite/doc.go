// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - TextStore: Extracted page text and tables
//   - DocumentStore: Uploaded document metadata and fingerprints
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each .up.sql file records its own version in
// schema_migrations.
//
// Timestamps are stored as fixed-width UTC text so that string comparison
// matches time ordering; retention and recency queries rely on that.
//
// # Data Location
//
// By default, the database is stored at ~/.folio/data/folio.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode. StorePages runs in its own transaction per file.
package sqlite
