// Package status provides the status bar shown under each view.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
)

// State is what the bar reports on its left side.
type State string

const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateLoading   State = "loading"
	StateAsking    State = "asking"
	StateResults   State = "results"
	StateError     State = "error"
)

// Bar displays the view state and keybinding hints.
type Bar struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	state      State
	message    string
	matchCount int
	hints      []key.Binding
	width      int
}

// NewBar creates a status bar in the ready state.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// View renders the bar padded to its width.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()
	padding := max(b.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (b *Bar) renderLeft() string {
	switch b.state {
	case StateSearching:
		return b.styles.Muted.Render("Searching...")
	case StateLoading:
		return b.styles.Muted.Render("Loading pages...")
	case StateAsking:
		return b.styles.Muted.Render("Waiting for the model...")
	case StateError:
		if b.message != "" {
			return b.styles.Error.Render("Error: " + b.message)
		}
		return b.styles.Error.Render("Error")
	case StateResults:
		if b.message != "" {
			return b.styles.Normal.Render(b.message)
		}
		return b.styles.Normal.Render(fmt.Sprintf("%d matches", b.matchCount))
	}
	if b.message != "" {
		return b.styles.Normal.Render(b.message)
	}
	return b.styles.Muted.Render("Ready")
}

func (b *Bar) renderRight() string {
	bindings := b.hints
	if bindings == nil {
		if b.state == StateResults && b.matchCount > 0 {
			bindings = b.keymap.ResultsHelp()
		} else {
			bindings = b.keymap.ShortHelp()
		}
	}

	hints := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets the text shown instead of the default for the state.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// SetMatchCount sets the number of matches reported in the results state.
func (b *Bar) SetMatchCount(count int) {
	b.matchCount = count
}

// MatchCount returns the current match count.
func (b *Bar) MatchCount() int {
	return b.matchCount
}

// SetHints overrides the keybinding hints. Nil restores the defaults.
func (b *Bar) SetHints(bindings []key.Binding) {
	b.hints = bindings
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Width returns the current width.
func (b *Bar) Width() int {
	return b.width
}

// Clear resets the bar to the ready state.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
	b.matchCount = 0
}
