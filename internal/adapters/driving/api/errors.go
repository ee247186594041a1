package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// errTooLarge marks a request body over Options.MaxUploadBytes.
var errTooLarge = errors.New("upload too large")

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error string           `json:"error"`
	Kind  domain.ErrorKind `json:"kind,omitempty"`
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes), errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrLLMUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON encodes v with status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errchkjson
}

// writeError writes err with the status statusFor assigns.
// Internal errors are logged and their message hidden from clients.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = http.StatusText(status)
	}
	resp := errorResponse{Error: msg}
	if status == http.StatusBadRequest {
		resp.Kind = domain.KindOf(err)
	}
	writeJSON(w, status, resp)
}
