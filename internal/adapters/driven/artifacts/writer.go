package artifacts

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure Writer implements the interface.
var _ driven.ArtifactWriter = (*Writer)(nil)

//go:embed schema.json
var schemaJSON []byte

const (
	schemaURL  = "folio://schemas/extraction.json"
	suffix     = "_extracted"
	ruleLength = 50
)

// Writer writes extraction artifacts into a single directory.
type Writer struct {
	dir    string
	schema *jsonschema.Schema
}

// NewWriter creates the output directory and compiles the artifact schema.
func NewWriter(dir string) (*Writer, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("artifact directory: %w", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	return &Writer{dir: dir, schema: schema}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// artifact is the JSON rendering of one extraction.
type artifact struct {
	OriginalFilename    string                 `json:"original_filename"`
	ExtractionTimestamp string                 `json:"extraction_timestamp"`
	PagesCount          int                    `json:"pages_count"`
	ExtractedText       string                 `json:"extracted_text"`
	Pages               []domain.ExtractedPage `json:"pages"`
}

// Write renders result as JSON and text and returns both paths.
func (w *Writer) Write(ctx context.Context, result *domain.ExtractionResult) ([]string, error) {
	if result == nil {
		return nil, fmt.Errorf("write artifacts: nil result: %w", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := w.Render(result)
	if err != nil {
		return nil, err
	}

	stem := Stem(result.OriginalFilename)
	jsonPath := filepath.Join(w.dir, stem+suffix+".json")
	txtPath := filepath.Join(w.dir, stem+suffix+".txt")

	if err := writeFile(jsonPath, data); err != nil {
		return nil, err
	}
	if err := writeFile(txtPath, []byte(RenderText(result))); err != nil {
		return nil, err
	}
	return []string{jsonPath, txtPath}, nil
}

// Render returns the validated JSON artifact for result.
func (w *Writer) Render(result *domain.ExtractionResult) ([]byte, error) {
	doc := artifact{
		OriginalFilename:    result.OriginalFilename,
		ExtractionTimestamp: result.ExtractionTimestamp.UTC().Format(time.RFC3339Nano),
		PagesCount:          result.PagesCount,
		ExtractedText:       result.ConcatenatedText,
		Pages:               normalisePages(result.Pages),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal artifact: %w", err)
	}
	if err := w.validate(data); err != nil {
		return nil, err
	}
	return data, nil
}

func (w *Writer) validate(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decode artifact: %w", err)
	}
	if err := w.schema.Validate(v); err != nil {
		return fmt.Errorf("artifact does not match schema: %w", err)
	}
	return nil
}

// RenderText returns the plain-text artifact for result.
func RenderText(result *domain.ExtractionResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Extracted from: %s\n", result.OriginalFilename)
	fmt.Fprintf(&b, "Pages: %d\n", result.PagesCount)
	b.WriteString(strings.Repeat("=", ruleLength))
	b.WriteString("\n\n")
	for i := range result.Pages {
		fmt.Fprintf(&b, "--- Page %d ---\n", result.Pages[i].PageNumber)
		b.WriteString(result.Pages[i].Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// Stem returns the base name of filename without its extension.
func Stem(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == ".." || stem == "/" {
		return "document"
	}
	return stem
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// normalisePages replaces nil slices so they encode as empty arrays.
func normalisePages(pages []domain.ExtractedPage) []domain.ExtractedPage {
	out := make([]domain.ExtractedPage, len(pages))
	for i, p := range pages {
		tables := make([]domain.Table, len(p.Tables))
		for j, t := range p.Tables {
			rows := make([][]string, len(t.Rows))
			for k, row := range t.Rows {
				if row == nil {
					row = []string{}
				}
				rows[k] = row
			}
			t.Rows = rows
			tables[j] = t
		}
		p.Tables = tables
		out[i] = p
	}
	return out
}

// writeFile writes data to a temporary file and renames it into place.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".artifact-*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
