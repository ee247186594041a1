// Package doccontent provides the scrolling page view of one document.
package doccontent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// ErrNoDocumentService indicates that no document service was provided.
var ErrNoDocumentService = errors.New("document service is required")

// reservedLines are taken by the title, separator, position and help.
const reservedLines = 6

type lineKind int

const (
	lineText lineKind = iota
	linePageHeader
	lineTable
)

type line struct {
	kind lineKind
	text string
}

// View shows the extracted pages of one document.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService
	ctx             context.Context

	documentID   string
	focusPage    int
	content      *domain.DocumentContent
	lines        []line
	scrollOffset int
	width        int
	height       int
	err          error
	loading      bool
}

// NewView creates a document content view.
func NewView(s *styles.Styles, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:          s,
		documentService: documentService,
		ctx:             context.Background(),
		width:           80,
		height:          24,
	}
}

// WithContext sets the context used to load content.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetDocument clears the view and loads the document's pages. When page is
// positive the view scrolls to that page once loaded.
func (v *View) SetDocument(documentID string, page int) tea.Cmd {
	v.documentID = documentID
	v.focusPage = page
	v.content = nil
	v.lines = nil
	v.scrollOffset = 0
	v.err = nil
	v.loading = true
	return v.loadContent()
}

func (v *View) loadContent() tea.Cmd {
	svc, ctx, id := v.documentService, v.ctx, v.documentID
	return func() tea.Msg {
		if svc == nil {
			return messages.DocumentContentLoaded{DocumentID: id, Err: ErrNoDocumentService}
		}
		content, err := svc.GetContent(ctx, id)
		return messages.DocumentContentLoaded{DocumentID: id, Content: content, Err: err}
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the content view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentContentLoaded:
		if msg.DocumentID != v.documentID {
			return v, nil
		}
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.content = msg.Content
		v.layout()
		v.scrollToPage(v.focusPage)
		return v, nil

	case messages.ErrorOccurred:
		v.loading = false
		v.err = msg.Err
		return v, nil
	}
	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		v.scrollOffset = max(v.scrollOffset-1, 0)
	case "down", "j":
		v.scrollOffset = min(v.scrollOffset+1, v.maxScrollOffset())
	case "pgup", "ctrl+u":
		v.scrollOffset = max(v.scrollOffset-v.visibleLines(), 0)
	case "pgdown", "ctrl+d":
		v.scrollOffset = min(v.scrollOffset+v.visibleLines(), v.maxScrollOffset())
	case "home", "g":
		v.scrollOffset = 0
	case "end", "G":
		v.scrollOffset = v.maxScrollOffset()
	case "c":
		if v.content == nil {
			return v, nil
		}
		doc := v.content.Document
		return v, func() tea.Msg {
			return messages.ChatOpened{DocumentID: doc.ID, Filename: doc.OriginalFilename}
		}
	case "esc":
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewSearch} }
	}
	return v, nil
}

// layout flattens the pages into wrapped display lines.
func (v *View) layout() {
	v.lines = nil
	if v.content == nil {
		return
	}
	width := max(v.width-4, 20)
	for _, page := range v.content.Pages {
		v.lines = append(v.lines, line{kind: linePageHeader, text: fmt.Sprintf("Page %d", page.PageNumber)})
		text := strings.TrimRight(page.Text, "\n")
		if text == "" {
			v.lines = append(v.lines, line{kind: lineText, text: "(no text layer)"})
		} else {
			for _, raw := range strings.Split(text, "\n") {
				for _, chunk := range wrap(raw, width) {
					v.lines = append(v.lines, line{kind: lineText, text: chunk})
				}
			}
		}
		for i, table := range page.Tables {
			v.lines = append(v.lines, line{kind: lineTable,
				text: fmt.Sprintf("Table %d (%d x %d, %s)", i+1, table.RowCount, table.ColumnCount, table.Source)})
			for _, row := range table.Rows {
				for _, chunk := range wrap("  "+strings.Join(row, " | "), width) {
					v.lines = append(v.lines, line{kind: lineTable, text: chunk})
				}
			}
		}
		v.lines = append(v.lines, line{kind: lineText})
	}
}

// wrap splits s into chunks of at most width runes.
func wrap(s string, width int) []string {
	r := []rune(s)
	if len(r) <= width {
		return []string{s}
	}
	out := make([]string, 0, len(r)/width+1)
	for len(r) > width {
		out = append(out, string(r[:width]))
		r = r[width:]
	}
	if len(r) > 0 {
		out = append(out, string(r))
	}
	return out
}

// scrollToPage moves the first line of page to the top of the view.
func (v *View) scrollToPage(page int) {
	if page <= 0 {
		return
	}
	header := fmt.Sprintf("Page %d", page)
	for i, l := range v.lines {
		if l.kind == linePageHeader && l.text == header {
			v.scrollOffset = min(i, v.maxScrollOffset())
			return
		}
	}
}

func (v *View) visibleLines() int {
	return max(v.height-reservedLines, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the content view.
func (v *View) View() string {
	var b strings.Builder

	title := v.documentID
	if v.content != nil {
		doc := v.content.Document
		title = fmt.Sprintf("%s (%d pages)", doc.OriginalFilename, doc.TotalPages)
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 1), 60)))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading pages..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.lines) == 0:
		b.WriteString(v.styles.Muted.Render("(No pages stored)"))
	default:
		v.renderLines(&b)
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [c] chat  [esc] back"))
	return b.String()
}

func (v *View) renderLines(b *strings.Builder) {
	visible := v.visibleLines()
	end := min(v.scrollOffset+visible, len(v.lines))
	for _, l := range v.lines[v.scrollOffset:end] {
		switch l.kind {
		case linePageHeader:
			b.WriteString(v.styles.PageHeader.Render("── " + l.text + " ──"))
		case lineTable:
			b.WriteString(v.styles.Subtitle.Render(l.text))
		default:
			b.WriteString(v.styles.Normal.Render(l.text))
		}
		b.WriteString("\n")
	}
	if len(v.lines) > visible {
		percent := 0
		if m := v.maxScrollOffset(); m > 0 {
			percent = v.scrollOffset * 100 / m
		}
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("\n  [%d%%] Line %d-%d of %d",
			percent, v.scrollOffset+1, end, len(v.lines))))
	}
}

// SetDimensions sets the view dimensions and re-wraps the pages.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.layout()
	v.scrollOffset = min(v.scrollOffset, v.maxScrollOffset())
}

// DocumentID returns the document being shown.
func (v *View) DocumentID() string {
	return v.documentID
}

// Content returns the loaded content, nil until loaded.
func (v *View) Content() *domain.DocumentContent {
	return v.content
}

// ScrollOffset returns the index of the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// LineCount returns the number of display lines.
func (v *View) LineCount() int {
	return len(v.lines)
}

// Loading reports whether content is being fetched.
func (v *View) Loading() bool {
	return v.loading
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
