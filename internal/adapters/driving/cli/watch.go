package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/adapters/driving/watch"
	"github.com/custodia-labs/folio/internal/logger"
)

var (
	watchInitialScan bool
	watchDebounce    time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Upload PDFs as they appear in a directory",
	Long: `Watches a directory tree and uploads every PDF that is created or changed.

Files already stored are recognised by content and skipped. Press Ctrl-C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchInitialScan, "initial-scan", false, "upload PDFs already in the directory")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before uploading a file")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if uploadService == nil {
		return errors.New("upload service not configured")
	}

	w, err := watch.New(uploadService, watch.Config{
		Root:        args[0],
		InitialScan: watchInitialScan,
		Debounce:    watchDebounce,
		Logger:      logger.NewStructured(cmd.ErrOrStderr(), verbose),
	})
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s for PDFs. Press Ctrl-C to stop.\n", args[0])
	return w.Run(commandContext(cmd), nil)
}
