package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	pdfreader "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/folio/internal/logger"
)

// pdfSignature is the required file prefix.
var pdfSignature = []byte("%PDF-")

// errMissingSignature is the cause for inputs without the PDF header.
var errMissingSignature = errors.New("missing %PDF- header")

// inspect reads the document structure with pdfcpu and returns its page count.
// Validation problems are logged; a document pdfcpu cannot read is an error,
// including one that makes the parser panic.
func inspect(data []byte) (pages int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = 0, fmt.Errorf("reading structure: %v", rec)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("reading structure: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		logger.Warn("pdf validation: %v", err)
	}
	return ctx.PageCount, nil
}

// pageReader reads text and glyphs page by page.
type pageReader struct {
	r *pdfreader.Reader
}

// openReader opens data with ledongthuc/pdf, turning panics into errors.
func openReader(data []byte) (pr *pageReader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			pr, err = nil, fmt.Errorf("opening pages: %v", rec)
		}
	}()
	r, err := pdfreader.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening pages: %w", err)
	}
	return &pageReader{r: r}, nil
}

// numPage returns the page count seen by the page reader, or -1 when
// the page tree cannot be walked.
func (p *pageReader) numPage() (n int) {
	defer func() {
		if rec := recover(); rec != nil {
			n = -1
		}
	}()
	return p.r.NumPage()
}

// page returns the plain text and positioned glyphs of page n.
// Text without printable characters is returned empty.
func (p *pageReader) page(n int, withGlyphs bool) (text string, glyphs []Glyph, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, glyphs, err = "", nil, fmt.Errorf("reading page %d: %v", n, rec)
		}
	}()
	if n > p.numPage() {
		return "", nil, nil
	}
	page := p.r.Page(n)
	if page.V.IsNull() {
		return "", nil, nil
	}

	raw, err := page.GetPlainText(nil)
	if err != nil {
		return "", nil, fmt.Errorf("reading page %d text: %w", n, err)
	}
	text = strings.TrimSpace(raw)
	if !hasPrintable(text) {
		text = ""
	}

	if withGlyphs {
		content := page.Content()
		glyphs = make([]Glyph, 0, len(content.Text))
		for _, t := range content.Text {
			glyphs = append(glyphs, Glyph{X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize, S: t.S})
		}
	}
	return text, glyphs, nil
}
