package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui"
)

// runProgram runs a TUI app on the command's streams. Tests replace it.
var runProgram = func(ctx context.Context, app *tui.App, in io.Reader, out io.Writer) error {
	return app.Run(ctx, in, out)
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal interface.

Search the extracted pages, open a match to read the document page by page,
and press c to chat about it when an LLM provider is configured.

Controls:
  enter    - Search / Open match
  ↑/k, ↓/j - Navigate matches or scroll
  c        - Chat about the selected document
  n        - New search
  esc      - Back
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// newTUIApp builds the app from the installed services.
func newTUIApp() (*tui.App, error) {
	if searchService == nil || documentService == nil {
		return nil, errors.New("search and document services not configured")
	}
	app, err := tui.NewApp(&tui.Ports{
		Search:    searchService,
		Documents: documentService,
		Chat:      chatService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create TUI: %w", err)
	}
	return app, nil
}

func runTUI(cmd *cobra.Command, _ []string) error {
	app, err := newTUIApp()
	if err != nil {
		return err
	}
	if err := runProgram(commandContext(cmd), app, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
