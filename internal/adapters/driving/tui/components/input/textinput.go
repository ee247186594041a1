// Package input provides the single-line text input used for queries and
// chat questions.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
)

// charLimit bounds one query or question.
const charLimit = 512

// minWidth is the narrowest input field.
const minWidth = 20

// Field wraps a bubbles textinput with a label.
type Field struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	width     int
}

// NewField creates a focused input with the given label and placeholder.
func NewField(s *styles.Styles, label, placeholder string) *Field {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = charLimit
	ti.Width = 50
	ti.Focus()

	return &Field{
		textinput: ti,
		styles:    s,
		label:     label,
		width:     60,
	}
}

// NewSearchField creates the query input of the search view.
func NewSearchField(s *styles.Styles) *Field {
	return NewField(s, "Search: ", "Words to find in extracted pages...")
}

// Init starts the cursor blink.
func (f *Field) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (f *Field) Update(msg tea.Msg) (*Field, tea.Cmd) {
	var cmd tea.Cmd
	f.textinput, cmd = f.textinput.Update(msg)
	return f, cmd
}

// View renders the label and the bordered input.
func (f *Field) View() string {
	label := f.styles.Title.Render(f.label)
	field := f.styles.InputField.Render(f.textinput.View())
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the current input value.
func (f *Field) Value() string {
	return f.textinput.Value()
}

// SetValue sets the input value.
func (f *Field) SetValue(value string) {
	f.textinput.SetValue(value)
}

// Focus sets focus on the input.
func (f *Field) Focus() tea.Cmd {
	return f.textinput.Focus()
}

// Blur removes focus from the input.
func (f *Field) Blur() {
	f.textinput.Blur()
}

// Focused returns whether the input is focused.
func (f *Field) Focused() bool {
	return f.textinput.Focused()
}

// SetWidth sizes the field to the terminal width, leaving room for the label.
func (f *Field) SetWidth(width int) {
	f.width = width
	inner := width - lipgloss.Width(f.label) - 4
	if inner < minWidth {
		inner = minWidth
	}
	f.textinput.Width = inner
}

// Width returns the current width.
func (f *Field) Width() int {
	return f.width
}

// Label returns the text shown before the field.
func (f *Field) Label() string {
	return f.label
}

// Reset clears the input.
func (f *Field) Reset() {
	f.textinput.Reset()
}
