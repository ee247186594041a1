// Package styles provides the colour theme for the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour palette. It matches the palette of the plain
// command output.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Border    lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:   lipgloss.Color("#7C3AED"),
		Secondary: lipgloss.Color("#06B6D4"),
		Text:      lipgloss.Color("#CDD6F4"),
		Muted:     lipgloss.Color("#6C7086"),
		Success:   lipgloss.Color("#A6E3A1"),
		Warning:   lipgloss.Color("#F9E2AF"),
		Error:     lipgloss.Color("#F38BA8"),
		Border:    lipgloss.Color("#45475A"),
	}
}

// Styles contains the lipgloss styles shared by the views.
type Styles struct {
	theme *Theme

	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style

	// PageHeader marks the start of each page in the content view.
	PageHeader lipgloss.Style

	// Question and Answer label the chat transcript.
	Question lipgloss.Style
	Answer   lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme uses DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme:    theme,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Subtitle: lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary),
		Normal:   lipgloss.NewStyle().Foreground(theme.Text),
		Muted:    lipgloss.NewStyle().Foreground(theme.Muted),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Text).
			Background(theme.Primary),
		Error:   lipgloss.NewStyle().Foreground(theme.Error),
		Success: lipgloss.NewStyle().Foreground(theme.Success),
		Warning: lipgloss.NewStyle().Foreground(theme.Warning),
		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(lipgloss.Color("#181825")).
			Padding(0, 1),
		Help: lipgloss.NewStyle().Foreground(theme.Muted),
		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),
		PageHeader: lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary),
		Question:   lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Answer:     lipgloss.NewStyle().Foreground(theme.Success),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}
