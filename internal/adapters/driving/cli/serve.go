package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/adapters/driving/api"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the upload, document, search and chat API over HTTP.

Batch progress is streamed to WebSocket clients on /api/ws/progress.
The listen address defaults to server.addr from settings.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default from settings)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if uploadService == nil || documentService == nil || searchService == nil {
		return errors.New("services not configured")
	}

	settings := domain.DefaultAppSettings()
	if settingsService != nil {
		s, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		settings = *s
	}

	addr := serveAddr
	if addr == "" {
		addr = settings.Server.Addr
	}

	log := logger.NewStructured(cmd.ErrOrStderr(), verbose)
	hub := api.NewProgressHub(log)
	if onProgress != nil {
		onProgress(hub.Publish)
	}

	server := api.NewServer(api.Services{
		Upload:    uploadService,
		Documents: documentService,
		Search:    searchService,
		Chat:      chatService,
	}, api.Options{
		MaxUploadBytes: settings.Server.MaxUploadBytes,
		ExtractTables:  settings.Extraction.Tables,
		SaveToFiles:    settings.Batch.SaveToFiles,
		Workers:        settings.Batch.Workers,
		Progress:       hub,
		Logger:         log,
	})

	cmd.Printf("Folio API listening on http://%s\n", addr)
	return server.ListenAndServe(commandContext(cmd), addr)
}
