// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ContentExtractor: Converts PDF bytes into per-page text and tables
//   - TextStore: Page text and table persistence, search and retention
//   - DocumentStore: Uploaded document metadata and fingerprints
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - BlobStore: Keeps the original PDF bytes. Without it, serving PDFs is disabled.
//   - ArtifactWriter: Writes per-file JSON and text outputs for batches.
//   - ChatModel: Language model operations. Without it, summaries and chat are disabled.
//   - TableExporter: Spreadsheet export of stored tables.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
