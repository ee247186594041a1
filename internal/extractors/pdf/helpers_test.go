package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// buildPDF writes a minimal PDF with one Helvetica text line per page.
// An empty string produces a page without a text layer.
func buildPDF(pageTexts ...string) []byte {
	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")

	fontID := 3 + 2*len(pageTexts)
	kids := make([]string, len(pageTexts))
	var pageObjects []string
	for i, text := range pageTexts {
		pageID := 3 + 2*i
		contentID := pageID + 1
		kids[i] = fmt.Sprintf("%d 0 R", pageID)

		var stream string
		if text != "" {
			stream = fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		}
		pageObjects = append(pageObjects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
				"/Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>", fontID, contentID),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>",
		strings.Join(kids, " "), len(pageTexts)))
	objects = append(objects, pageObjects...)
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

// noTools is a LookPath that finds nothing.
func noTools(string) (string, error) {
	return "", exec.ErrNotFound
}

// allTools is a LookPath that finds everything.
func allTools(file string) (string, error) {
	return "/usr/bin/" + file, nil
}

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	mu      sync.Mutex
	outputs map[string][]byte
	errs    map[string]error
	calls   [][]string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, append([]string{name}, args...))
	if err := m.errs[name]; err != nil {
		return nil, err
	}
	return m.outputs[name], nil
}

var errToolCrashed = errors.New("tool crashed")
