// Package driving defines what the CLI, the HTTP API, the MCP server and
// the inbox watcher may ask of folio: uploads and batches, document
// retrieval, search, chat, retention and settings.
//
// internal/core/services implements every interface here.
package driving
