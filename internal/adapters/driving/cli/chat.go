package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat [doc-id] [question...]",
	Short: "Ask questions about a document",
	Long: `Answers questions using the extracted text of one document.

With a question the answer is printed and the command exits. Without one the
terminal UI opens on a chat about the document. Earlier turns are sent along
with each question. Press esc or Ctrl-C to leave.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatService == nil || !chatService.Available() {
		return fmt.Errorf("%w: run 'folio settings llm' to configure a provider", domain.ErrLLMUnavailable)
	}

	docID := args[0]
	ctx := commandContext(cmd)

	if len(args) > 1 {
		answer, err := chatService.Ask(ctx, docID, strings.Join(args[1:], " "), nil)
		if err != nil {
			return fmt.Errorf("chat failed: %w", err)
		}
		cmd.Println(answer)
		return nil
	}

	if documentService == nil {
		return errors.New("document service not configured")
	}
	doc, err := documentService.Get(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	app, err := newTUIApp()
	if err != nil {
		return err
	}
	app.StartChat(doc.ID, doc.OriginalFilename)
	if err := runProgram(ctx, app, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("chat session failed: %w", err)
	}
	return nil
}
