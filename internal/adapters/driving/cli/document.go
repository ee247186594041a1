package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage stored documents",
	Long:  `List, view, summarise, export, or delete stored documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print extracted text page by page",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its pages",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentSummaryCmd = &cobra.Command{
	Use:   "summary [doc-id]",
	Short: "Summarise a document with the configured LLM",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentSummary,
}

var documentExportCmd = &cobra.Command{
	Use:   "export [doc-id]",
	Short: "Export the document's tables to a spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentExport,
}

var documentDownloadCmd = &cobra.Command{
	Use:   "download [doc-id]",
	Short: "Write the original PDF to a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDownload,
}

var (
	documentListJSON bool
	documentPage     int
	documentOutput   string
)

func init() {
	documentListCmd.Flags().BoolVar(&documentListJSON, "json", false, "output documents as JSON")
	documentContentCmd.Flags().IntVarP(&documentPage, "page", "p", 0, "print only this page")
	documentExportCmd.Flags().StringVarP(&documentOutput, "output", "o", "", "output file (default <doc-id>-tables.xlsx)")
	documentDownloadCmd.Flags().StringVarP(&documentOutput, "output", "o", "", "output file (default original filename)")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentContentCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentSummaryCmd)
	documentCmd.AddCommand(documentExportCmd)
	documentCmd.AddCommand(documentDownloadCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if documentListJSON {
		return printJSON(cmd, docs)
	}

	if len(docs) == 0 {
		cmd.Println("No documents stored.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    File:   %s\n", docs[i].OriginalFilename)
		cmd.Printf("    Status: %s\n", docs[i].Status)
		cmd.Printf("    Pages:  %d\n", docs[i].TotalPages)
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  File:        %s\n", doc.OriginalFilename)
	cmd.Printf("  Stored as:   %s\n", doc.StoredFilename)
	cmd.Printf("  Size:        %s\n", humanBytes(doc.FileSize))
	cmd.Printf("  Pages:       %d\n", doc.TotalPages)
	cmd.Printf("  Status:      %s\n", doc.Status)
	cmd.Printf("  Fingerprint: %s\n", doc.Fingerprint.Short())
	cmd.Printf("  Uploaded:    %s\n", doc.UploadDate.Format(time.DateTime))
	if doc.Error != "" {
		cmd.Printf("  Error:       %s\n", doc.Error)
	}
	if doc.Summary != "" {
		cmd.Printf("\n  Summary:\n    %s\n", strings.ReplaceAll(doc.Summary, "\n", "\n    "))
	}
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	content, err := documentService.GetContent(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document content: %w", err)
	}

	printed := false
	for _, page := range content.Pages {
		if documentPage > 0 && page.PageNumber != documentPage {
			continue
		}
		printed = true
		cmd.Printf("--- Page %d ---\n%s\n", page.PageNumber, page.Text)
		for i, table := range page.Tables {
			cmd.Printf("\n[table %d, %s]\n", i+1, table.Source)
			for _, row := range table.Rows {
				cmd.Println(strings.Join(row, " | "))
			}
		}
		cmd.Println()
	}
	if documentPage > 0 && !printed {
		return fmt.Errorf("document %s has no page %d", args[0], documentPage)
	}
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Delete(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %s deleted.\n", args[0])
	return nil
}

func runDocumentSummary(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	summary, cached, err := documentService.Summary(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to summarise document: %w", err)
	}

	cmd.Println(summary)
	if cached {
		cmd.Println()
		cmd.Println("(cached)")
	}
	return nil
}

func runDocumentExport(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	data, err := documentService.ExportTables(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to export tables: %w", err)
	}

	out := documentOutput
	if out == "" {
		out = args[0] + "-tables.xlsx"
	}
	if err := os.WriteFile(out, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	cmd.Printf("Tables written to %s\n", out)
	return nil
}

func runDocumentDownload(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	rc, doc, err := documentService.OpenPDF(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	defer rc.Close() //nolint:errcheck

	out := documentOutput
	if out == "" {
		out = doc.OriginalFilename
	}
	f, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	if _, err := io.Copy(f, rc); err != nil {
		f.Close() //nolint:errcheck,gosec
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	cmd.Printf("PDF written to %s\n", out)
	return nil
}
