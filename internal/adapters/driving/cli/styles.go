package cli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Palette used for command output.
var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6C7086")
	colorSuccess = lipgloss.Color("#A6E3A1")
	colorWarning = lipgloss.Color("#F9E2AF")
	colorError   = lipgloss.Color("#F38BA8")
)

// styles renders command output for one writer. Colour is dropped when
// the writer is not a terminal.
type styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		Title:   r.NewStyle().Bold(true).Foreground(colorPrimary),
		Label:   r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(colorMuted),
		Success: r.NewStyle().Foreground(colorSuccess),
		Warning: r.NewStyle().Foreground(colorWarning),
		Error:   r.NewStyle().Foreground(colorError).Bold(true),
	}
}
