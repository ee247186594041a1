package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
	searchFiles bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search extracted text",
	Long: `Finds pages whose extracted text contains the query, ignoring case.

With --files the query is matched against document filenames instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show storage statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchFiles, "files", false, "match document filenames")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(statsCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	if searchService == nil {
		return errors.New("search service not configured")
	}

	ctx := commandContext(cmd)
	if searchFiles {
		docs, err := searchService.SearchDocuments(ctx, query)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		if searchJSON {
			return printJSON(cmd, docs)
		}
		if len(docs) == 0 {
			cmd.Println("No documents found.")
			return nil
		}
		for i := range docs {
			cmd.Printf("  %s  %s (%d pages)\n", docs[i].ID, docs[i].OriginalFilename, docs[i].TotalPages)
		}
		return nil
	}

	matches, err := searchService.Search(ctx, query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return printJSON(cmd, matches)
	}
	return outputSearchTable(cmd, matches)
}

func outputSearchTable(cmd *cobra.Command, matches []domain.SearchMatch) error {
	if len(matches) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range matches {
		// Format: [N] filename, page P
		cmd.Printf("  [%d] %s, page %d\n", i+1, matches[i].Filename, matches[i].PageNumber)
		if matches[i].DocumentID != "" {
			cmd.Printf("      Document: %s\n", matches[i].DocumentID)
		}
		if matches[i].Snippet != "" {
			cmd.Printf("      %s\n", matches[i].Snippet)
		}
		cmd.Println()
	}
	return nil
}

func runStats(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	stats, err := searchService.Stats(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}

	if statsJSON {
		return printJSON(cmd, stats)
	}

	cmd.Printf("Documents:    %d\n", stats.TotalDocuments)
	cmd.Printf("Stored files: %d\n", stats.TotalFiles)
	cmd.Printf("Pages:        %d\n", stats.TotalPages)
	cmd.Printf("Tables:       %d\n", stats.TotalTables)
	cmd.Printf("Uploads:      %s\n", humanBytes(stats.TotalUploadBytes))
	cmd.Printf("Text:         %s\n", humanBytes(stats.TotalTextBytes))
	cmd.Printf("Storage:      %s\n", humanBytes(stats.TotalSizeEstimate()))
	if len(stats.Growth) > 0 {
		cmd.Println()
		cmd.Println("Pages stored per day:")
		for _, g := range stats.Growth {
			cmd.Printf("  %s  %d\n", g.Day, g.Pages)
		}
	}
	return nil
}
