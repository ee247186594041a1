// Package list provides the search match list for the TUI.
package list

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/core/domain"
)

// linesPerMatch is the rendered height of one match.
const linesPerMatch = 2

// MatchList displays page matches in a navigable list.
type MatchList struct {
	matches  []domain.SearchMatch
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewMatchList creates an empty match list.
func NewMatchList(s *styles.Styles) *MatchList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &MatchList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the list.
func (l *MatchList) Init() tea.Cmd {
	return nil
}

// Update handles navigation keys.
func (l *MatchList) Update(msg tea.Msg) (*MatchList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			l.MoveUp()
		case "down", "j":
			l.MoveDown()
		}
	}
	return l, nil
}

// View renders the visible window of matches around the selection.
func (l *MatchList) View() string {
	if len(l.matches) == 0 {
		return l.styles.Muted.Render("No matches")
	}

	lines := make([]string, 0, len(l.matches)*linesPerMatch+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Matches (%d)", len(l.matches))), "")

	visible := (l.height - 2) / linesPerMatch
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.matches))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderMatch(i, &l.matches[i]))
	}
	return strings.Join(lines, "\n")
}

// renderMatch formats one match as a title line and a snippet line.
func (l *MatchList) renderMatch(index int, m *domain.SearchMatch) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	page := fmt.Sprintf("page %d", m.PageNumber)
	nameWidth := max(l.width-len(page)-6, 10)
	name := truncate(m.Filename, nameWidth)

	var title string
	if index == l.selected {
		title = l.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, nameWidth, name, page))
	} else {
		title = l.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, nameWidth, name)) +
			l.styles.Muted.Render(page)
	}

	snippet := truncate(m.Snippet, max(l.width-6, 20))
	return title + "\n" + l.styles.Muted.Render("    "+snippet)
}

// truncate shortens s to n runes with a trailing ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// SetMatches replaces the list and selects the first match.
func (l *MatchList) SetMatches(matches []domain.SearchMatch) {
	l.matches = matches
	l.selected = 0
}

// Matches returns the current matches.
func (l *MatchList) Matches() []domain.SearchMatch {
	return l.matches
}

// Selected returns the index of the selected match.
func (l *MatchList) Selected() int {
	return l.selected
}

// SetSelected sets the selected index. Out of range indexes are ignored.
func (l *MatchList) SetSelected(index int) {
	if index >= 0 && index < len(l.matches) {
		l.selected = index
	}
}

// SelectedMatch returns the selected match, or nil when the list is empty.
func (l *MatchList) SelectedMatch() *domain.SearchMatch {
	if l.selected < 0 || l.selected >= len(l.matches) {
		return nil
	}
	return &l.matches[l.selected]
}

// MoveUp moves selection up.
func (l *MatchList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *MatchList) MoveDown() {
	if l.selected < len(l.matches)-1 {
		l.selected++
	}
}

// SetDimensions sets the list dimensions.
func (l *MatchList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of matches.
func (l *MatchList) Count() int {
	return len(l.matches)
}

// IsEmpty returns whether the list is empty.
func (l *MatchList) IsEmpty() bool {
	return len(l.matches) == 0
}
