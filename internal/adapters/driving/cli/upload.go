package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/core/domain"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Extract and store a single PDF",
	Long: `Extracts the text and tables of one PDF and stores them page by page.

Uploading a file whose contents are already stored returns the existing
document instead of storing a copy.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

var (
	batchDir         string
	batchRecursive   bool
	batchTables      bool
	batchSaveToFiles bool
	batchNoStore     bool
	batchWorkers     int
	batchJSON        bool
)

var batchCmd = &cobra.Command{
	Use:   "batch [files...]",
	Short: "Extract many PDFs in one run",
	Long: `Runs every given PDF through extraction and reports per-file results.

A file that fails never stops the batch. Files can be listed directly or
collected from a directory with --dir.

Examples:
  folio batch a.pdf b.pdf
  folio batch --dir ./scans --recursive --workers 4 --save-files`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchDir, "dir", "d", "", "collect PDFs from this directory")
	batchCmd.Flags().BoolVarP(&batchRecursive, "recursive", "r", false, "include subdirectories of --dir")
	batchCmd.Flags().BoolVar(&batchTables, "tables", true, "extract tables")
	batchCmd.Flags().BoolVar(&batchSaveToFiles, "save-files", false, "write JSON and text artifacts per file")
	batchCmd.Flags().BoolVar(&batchNoStore, "no-store", false, "extract without storing pages")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "parallel workers (0 = configured default)")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(batchCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if uploadService == nil {
		return errors.New("upload service not configured")
	}

	path := args[0]
	if !isPDF(path) {
		return fmt.Errorf("%s: only .pdf files are accepted: %w", path, domain.ErrInvalidInput)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	result, err := uploadService.Upload(commandContext(cmd), filepath.Base(path), data)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	doc := result.Document
	if result.Duplicate {
		cmd.Printf("%s is already stored as %s (uploaded %s).\n",
			filepath.Base(path), doc.ID, doc.UploadDate.Format(time.DateTime))
		return nil
	}

	cmd.Printf("Stored %s\n\n", doc.OriginalFilename)
	cmd.Printf("  ID:         %s\n", doc.ID)
	cmd.Printf("  Pages:      %d\n", doc.TotalPages)
	cmd.Printf("  Characters: %d\n", result.TextLength)
	cmd.Printf("  Took:       %s\n", result.Duration.Round(time.Millisecond))
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	if uploadService == nil {
		return errors.New("upload service not configured")
	}

	paths, err := collectPDFs(args, batchDir, batchRecursive)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no PDF files given: %w", domain.ErrInvalidInput)
	}

	files := make([]domain.InputFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		files = append(files, domain.InputFile{Filename: filepath.Base(p), Data: data})
	}

	if onProgress != nil && !batchJSON {
		out := cmd.ErrOrStderr()
		onProgress(func(ev domain.ProgressEvent) {
			printProgress(out, ev)
		})
	}

	report, err := uploadService.UploadBatch(commandContext(cmd), files, domain.BatchOptions{
		ExtractTables: batchTables,
		Persist:       !batchNoStore,
		SaveToFiles:   batchSaveToFiles,
		Workers:       batchWorkers,
	})
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	if batchJSON {
		return printJSON(cmd, report)
	}
	renderReport(cmd.OutOrStdout(), report)
	return nil
}

// collectPDFs merges explicit paths with PDFs found under dir, sorted and deduplicated.
func collectPDFs(args []string, dir string, recursive bool) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, a := range args {
		add(filepath.Clean(a))
	}

	if dir != "" {
		var found []string
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != dir && (!recursive || strings.HasPrefix(d.Name(), ".")) {
					return filepath.SkipDir
				}
				return nil
			}
			if isPDF(path) && !strings.HasPrefix(d.Name(), ".") {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
		}
		sort.Strings(found)
		for _, p := range found {
			add(p)
		}
	}
	return out, nil
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

func printProgress(w io.Writer, ev domain.ProgressEvent) {
	status := "ok"
	switch {
	case ev.Duplicate:
		status = "duplicate"
	case !ev.Success:
		status = "failed: " + ev.Error
	}
	fmt.Fprintf(w, "[%d/%d] %s %s\n", ev.Completed, ev.Total, ev.Filename, status)
}

// renderReport prints a batch report for humans.
func renderReport(w io.Writer, report *domain.BatchReport) {
	st := newStyles(w)

	fmt.Fprintln(w, st.Title.Render(fmt.Sprintf("Batch complete: %d files in %s",
		report.TotalFiles, report.TotalDuration.Round(time.Millisecond))))
	fmt.Fprintf(w, "  %s %d   %s %d   %s %.1f%%\n",
		st.Label.Render("Processed:"), len(report.Processed),
		st.Label.Render("Failed:"), len(report.Failed),
		st.Label.Render("Success:"), report.SuccessRate*100)
	fmt.Fprintf(w, "  %s %d   %s %.1f\n\n",
		st.Label.Render("Pages:"), report.TotalPages,
		st.Label.Render("Avg pages/file:"), report.AveragePagesPerFile)

	for i := range report.Processed {
		o := report.Processed[i]
		if o.Duplicate {
			fmt.Fprintf(w, "  %s %s %s\n", st.Warning.Render("="), o.Filename,
				st.Muted.Render("duplicate of "+o.DocumentID))
			continue
		}
		detail := fmt.Sprintf("%d pages, %d tables", o.PagesCount, o.TablesCount)
		if o.DocumentID != "" {
			detail += ", " + o.DocumentID
		}
		fmt.Fprintf(w, "  %s %s %s\n", st.Success.Render("✓"), o.Filename, st.Muted.Render(detail))
		for _, a := range o.Artifacts {
			fmt.Fprintf(w, "      %s\n", st.Muted.Render(a))
		}
	}
	for _, f := range report.Failed {
		fmt.Fprintf(w, "  %s %s %s\n", st.Error.Render("✗"), f.Filename,
			st.Muted.Render(string(f.Kind)+": "+f.Error))
	}
}
