// Command folio extracts, stores and searches the text and tables of PDF files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/folio/internal/adapters/driven/ai"
	"github.com/custodia-labs/folio/internal/adapters/driven/artifacts"
	"github.com/custodia-labs/folio/internal/adapters/driven/config/file"
	"github.com/custodia-labs/folio/internal/adapters/driven/export"
	"github.com/custodia-labs/folio/internal/adapters/driven/llm"
	"github.com/custodia-labs/folio/internal/adapters/driven/storage/blob"
	"github.com/custodia-labs/folio/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/folio/internal/adapters/driving/cli"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/services"
	"github.com/custodia-labs/folio/internal/extractors/pdf"
	"github.com/custodia-labs/folio/internal/logger"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("loading .env: %v", err)
	}

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening configuration: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("invalid settings, using defaults: %v", err)
		defaults := settingsService.GetDefaults()
		settings = &defaults
	}

	dataDir, err := resolveDataDir(settings.DataDir)
	if err != nil {
		return err
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close() //nolint:errcheck

	blobs, err := blob.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening upload store: %w", err)
	}

	extractor := pdf.New(pdf.Config{
		OCR:           settings.Extraction.OCR,
		OCRLanguage:   settings.Extraction.OCRLanguage,
		OCRResolution: settings.Extraction.OCRResolution,
	})

	pipeline := services.NewPipeline(extractor, store.DocumentStore(), store.TextStore(), blobs)
	outputDir := settings.Batch.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(dataDir, "outputs")
	}
	writer, err := artifacts.NewWriter(outputDir)
	if err != nil {
		return fmt.Errorf("opening output directory: %w", err)
	}
	pipeline.SetArtifactWriter(writer)

	orchestrator := services.NewOrchestrator(pipeline, services.BatchConfig{
		Workers: settings.Batch.Workers,
		Timeout: settings.Batch.Timeout,
	})
	uploadService := services.NewUploadService(pipeline, orchestrator, settings.Extraction.Tables)

	documentService := services.NewDocumentService(store.DocumentStore(), store.TextStore(), blobs)
	documentService.SetTableExporter(export.NewXLSXExporter())

	chatModel := newChatModel(ctx, &settings.LLM)
	if chatModel != nil {
		documentService.SetChatModel(chatModel)
	}

	maintenanceService := services.NewMaintenanceService(store.TextStore())
	maintenanceService.SetBackup(store)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Upload:      uploadService,
		Documents:   documentService,
		Search:      services.NewSearchService(store.TextStore(), store.DocumentStore()),
		Chat:        services.NewChatService(documentService, chatModel),
		Maintenance: maintenanceService,
		Settings:    settingsService,
		OnProgress:  orchestrator.OnProgress,
	})

	return cli.Execute(ctx)
}

// newChatModel builds the configured chat model. Nil disables summaries and chat.
func newChatModel(ctx context.Context, settings *domain.LLMSettings) driven.ChatModel {
	var prompts driven.PromptStore
	if store, err := file.NewPromptStore("", llm.DefaultPrompts()); err != nil {
		logger.Warn("prompt store unavailable, using built-in prompts: %v", err)
	} else {
		prompts = store
	}

	model, err := ai.NewChatModel(ctx, settings, prompts)
	if err != nil {
		logger.Warn("%v", err)
		return nil
	}
	return model
}

// resolveDataDir returns dir, or ~/.folio/data when dir is empty.
func resolveDataDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	base, err := file.DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "data"), nil
}
