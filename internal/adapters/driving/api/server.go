package api

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Server timeouts. Uploads and chat answers can be slow, so writes get longer.
const (
	readHeaderTimeout = 10 * time.Second
	writeTimeout      = 10 * time.Minute
	shutdownTimeout   = 5 * time.Second

	defaultMaxUpload = 100 << 20
	multipartMemory  = 32 << 20
)

// Services are the driving ports the API calls.
// Chat may be nil, in which case /api/chat answers 503.
type Services struct {
	Upload    driving.UploadService
	Documents driving.DocumentService
	Search    driving.SearchService
	Chat      driving.ChatService
}

// Options configures request handling.
type Options struct {
	// MaxUploadBytes bounds a request body (default 100 MiB).
	MaxUploadBytes int64

	// ExtractTables is the batch default when the form omits extract_tables.
	ExtractTables bool

	// SaveToFiles is the batch default when the form omits save_to_files.
	SaveToFiles bool

	// Workers is passed to batch uploads.
	Workers int

	// Progress streams batch events. Optional.
	Progress *ProgressHub

	// Logger receives request logs. Defaults to a discarding logger.
	Logger *slog.Logger
}

// Server is the folio HTTP API.
type Server struct {
	svc     Services
	opts    Options
	log     *slog.Logger
	handler http.Handler
}

// NewServer creates the API server and registers its routes.
func NewServer(svc Services, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUpload
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	s := &Server{svc: svc, opts: opts, log: opts.Logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("POST /api/upload/batch", s.handleUploadBatch)
	mux.HandleFunc("GET /api/documents", s.handleListDocuments)
	mux.HandleFunc("GET /api/documents/{id}", s.handleGetDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", s.handleDeleteDocument)
	mux.HandleFunc("GET /api/documents/{id}/content", s.handleGetContent)
	mux.HandleFunc("GET /api/documents/{id}/summary", s.handleSummary)
	mux.HandleFunc("GET /api/documents/{id}/pdf", s.handleServePDF)
	mux.HandleFunc("GET /api/documents/{id}/tables.xlsx", s.handleExportTables)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	if opts.Progress != nil {
		mux.Handle("GET /api/ws/progress", opts.Progress)
	}

	s.handler = s.logRequests(cors(mux))
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if s.opts.Progress != nil {
		s.opts.Progress.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("http server stopped")
	return nil
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack hands the connection to the websocket upgrader.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	r.status = http.StatusSwitchingProtocols
	return http.NewResponseController(r.ResponseWriter).Hijack()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(started))
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
