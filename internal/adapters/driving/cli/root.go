// Package cli implements the folio command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// version is set at build time.
var version = "dev"

// Services wired in by main.
var (
	uploadService      driving.UploadService
	documentService    driving.DocumentService
	searchService      driving.SearchService
	chatService        driving.ChatService
	maintenanceService driving.MaintenanceService
	settingsService    driving.SettingsService
	onProgress         func(domain.ProgressFunc)
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Extract, store and search text and tables from PDFs",
	Long: `Folio extracts text and tables from PDF files, stores them page by page,
and lets you search, summarise and chat with what was extracted.

Run 'folio serve' for the HTTP API or 'folio mcp serve' for AI assistants.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		logger.SetVerbose(verbose)
	},
}

// Services holds the driving ports the commands call.
type Services struct {
	Upload      driving.UploadService
	Documents   driving.DocumentService
	Search      driving.SearchService
	Chat        driving.ChatService
	Maintenance driving.MaintenanceService
	Settings    driving.SettingsService

	// OnProgress subscribes to batch progress events. Optional.
	OnProgress func(domain.ProgressFunc)
}

// SetServices installs the services used by all commands.
func SetServices(s Services) {
	uploadService = s.Upload
	documentService = s.Documents
	searchService = s.Search
	chatService = s.Chat
	maintenanceService = s.Maintenance
	settingsService = s.Settings
	onProgress = s.OnProgress
}

// SetVersion sets the version reported by 'folio version'.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// commandContext returns the command's context, never nil.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
