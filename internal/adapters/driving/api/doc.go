// Package api exposes the folio services over HTTP.
//
// Routes are registered on a net/http ServeMux using method patterns.
// Responses are JSON except for the PDF and spreadsheet downloads.
// Batch progress is streamed to websocket clients by ProgressHub.
package api
