package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// searchResponse is the body of GET /api/search.
type searchResponse struct {
	Query   string               `json:"query"`
	Count   int                  `json:"count"`
	Results []domain.SearchMatch `json:"results"`
}

// summaryResponse is the body of GET /api/documents/{id}/summary.
type summaryResponse struct {
	DocumentID string `json:"document_id"`
	Summary    string `json:"summary"`
	Cached     bool   `json:"cached"`
}

// chatRequest is the body of POST /api/chat.
type chatRequest struct {
	DocumentID string               `json:"document_id"`
	Question   string               `json:"question"`
	History    []driven.ChatMessage `json:"history"`
}

// chatResponse is the body of a successful POST /api/chat.
type chatResponse struct {
	DocumentID string `json:"document_id"`
	Answer     string `json:"answer"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"chat_available": s.svc.Chat != nil && s.svc.Chat.Available(),
		"time":           time.Now().UTC(),
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.writeError(w, r, formError(err))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	headers := r.MultipartForm.File["file"]
	if len(headers) != 1 {
		s.writeError(w, r, fmt.Errorf("expected exactly one file field: %w", domain.ErrInvalidInput))
		return
	}
	file, err := readPart(headers[0])
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.svc.Upload.Upload(r.Context(), file.Filename, file.Data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, result)
}

func (s *Server) handleUploadBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.writeError(w, r, formError(err))
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	opts := domain.BatchOptions{Persist: true, Workers: s.opts.Workers}
	var err error
	if opts.ExtractTables, err = formBool(r, "extract_tables", s.opts.ExtractTables); err != nil {
		s.writeError(w, r, err)
		return
	}
	if opts.SaveToFiles, err = formBool(r, "save_to_files", s.opts.SaveToFiles); err != nil {
		s.writeError(w, r, err)
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.writeError(w, r, fmt.Errorf("no files field: %w", domain.ErrInvalidInput))
		return
	}
	files := make([]domain.InputFile, 0, len(headers))
	var rejected []domain.FileFailure
	for _, h := range headers {
		file, err := readPart(h)
		if err != nil {
			name := partName(h)
			rejected = append(rejected, domain.FileFailure{
				Filename: name,
				Kind:     domain.KindInvalidFormat,
				Error:    domain.NewInvalidFormat(name, err).Error(),
			})
			continue
		}
		files = append(files, file)
	}

	report, err := s.svc.Upload.UploadBatch(r.Context(), files, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report.Reject(rejected...)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	var (
		docs []domain.Document
		err  error
	)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		docs, err = s.svc.Search.SearchDocuments(r.Context(), q)
	} else {
		docs, err = s.svc.Documents.List(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.Documents.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Documents.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	content, err := s.svc.Documents.GetContent(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	summary, cached, err := s.svc.Documents.Summary(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{DocumentID: id, Summary: summary, Cached: cached})
}

func (s *Server) handleServePDF(w http.ResponseWriter, r *http.Request) {
	body, doc, err := s.svc.Documents.OpenPDF(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer body.Close() //nolint:errcheck

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", contentDisposition("inline", doc.OriginalFilename))
	http.ServeContent(w, r, doc.StoredFilename, doc.UpdatedAt, body)
}

func (s *Server) handleExportTables(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	data, err := s.svc.Documents.ExportTables(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", contentDisposition("attachment", id+"-tables.xlsx"))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, r, fmt.Errorf("limit %q: %w", raw, domain.ErrInvalidInput))
			return
		}
		limit = n
	}

	matches, err := s.svc.Search.Search(r.Context(), query, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Query: query, Count: len(matches), Results: matches})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Search.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.svc.Chat == nil || !s.svc.Chat.Available() {
		s.writeError(w, r, fmt.Errorf("chat: %w", domain.ErrLLMUnavailable))
		return
	}

	var req chatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("decode chat request: %w: %w", domain.ErrInvalidInput, err))
		return
	}
	if strings.TrimSpace(req.DocumentID) == "" {
		s.writeError(w, r, fmt.Errorf("document_id is required: %w", domain.ErrInvalidInput))
		return
	}

	answer, err := s.svc.Chat.Ask(r.Context(), req.DocumentID, req.Question, req.History)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{DocumentID: req.DocumentID, Answer: answer})
}

// readPart reads one uploaded PDF into memory.
func readPart(h *multipart.FileHeader) (domain.InputFile, error) {
	name := partName(h)
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return domain.InputFile{}, fmt.Errorf("%s: only PDF files are accepted: %w", name, domain.ErrInvalidInput)
	}
	f, err := h.Open()
	if err != nil {
		return domain.InputFile{}, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close() //nolint:errcheck

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.InputFile{}, fmt.Errorf("read %s: %w", name, err)
	}
	return domain.InputFile{Filename: name, Data: data}, nil
}

// partName strips any client-side directory from an uploaded filename.
func partName(h *multipart.FileHeader) string {
	return filepath.Base(strings.ReplaceAll(h.Filename, `\`, "/"))
}

// formError classifies a multipart parse failure.
func formError(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) || strings.Contains(err.Error(), "request body too large") {
		return fmt.Errorf("%w: %w", errTooLarge, err)
	}
	return fmt.Errorf("parse multipart form: %w: %w", domain.ErrInvalidInput, err)
}

// formBool parses an optional boolean form value.
func formBool(r *http.Request, key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(r.FormValue(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s=%q: %w", key, raw, domain.ErrInvalidInput)
	}
	return v, nil
}

// contentDisposition builds a header value safe for non-ASCII filenames.
func contentDisposition(kind, filename string) string {
	ascii := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, filename)
	return fmt.Sprintf(`%s; filename="%s"; filename*=UTF-8''%s`, kind, ascii, url.PathEscape(filename))
}
