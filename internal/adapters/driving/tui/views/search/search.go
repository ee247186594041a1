// Package search provides the query and match list view of the TUI.
package search

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// DefaultLimit is the number of matches requested per query.
const DefaultLimit = 50

// View is the search view: query input, match list and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.Field
	list      *list.MatchList
	statusbar *status.Bar

	searchService driving.SearchService
	ctx           context.Context
	limit         int

	width      int
	height     int
	ready      bool
	err        error
	focusInput bool // true while typing, false while browsing matches
}

// NewView creates a search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, searchService driving.SearchService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:        s,
		keymap:        km,
		input:         input.NewSearchField(s),
		list:          list.NewMatchList(s),
		statusbar:     status.NewBar(s, km),
		searchService: searchService,
		ctx:           context.Background(),
		limit:         DefaultLimit,
		width:         80,
		height:        24,
		focusInput:    true,
	}
}

// WithContext sets the context used for searches.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetLimit sets the number of matches requested per query.
func (v *View) SetLimit(limit int) {
	if limit > 0 {
		v.limit = limit
	}
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	if v.focusInput {
		v.input, cmd = v.input.Update(msg)
	}
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.focusInput {
		switch msg.Type {
		case tea.KeyEsc:
			if v.list.IsEmpty() {
				return v, func() tea.Msg { return messages.Quit{} }
			}
			v.focusInput = false
			v.input.Blur()
			return v, nil
		case tea.KeyEnter:
			query := strings.TrimSpace(v.input.Value())
			if query == "" {
				return v, nil
			}
			v.err = nil
			v.statusbar.SetState(status.StateSearching)
			v.statusbar.SetMessage("")
			v.focusInput = false
			v.input.Blur()
			return v, v.performSearch(query)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(key, v.keymap.Down):
		v.list.MoveDown()
	case keymap.Matches(key, v.keymap.NewSearch):
		v.focusInput = true
		v.input.SetValue("")
		return v, v.input.Focus()
	case keymap.Matches(key, v.keymap.Back):
		v.focusInput = true
		return v, v.input.Focus()
	case keymap.Matches(key, v.keymap.Help):
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewHelp} }
	case keymap.Matches(key, v.keymap.Quit):
		return v, func() tea.Msg { return messages.Quit{} }
	case keymap.Matches(key, v.keymap.Open):
		return v, v.selectionCmd(func(m domain.SearchMatch) tea.Msg {
			return messages.MatchSelected{Match: m}
		})
	case keymap.Matches(key, v.keymap.Chat):
		return v, v.selectionCmd(func(m domain.SearchMatch) tea.Msg {
			return messages.ChatOpened{DocumentID: m.DocumentID, Filename: m.Filename}
		})
	}
	return v, nil
}

// selectionCmd emits a message for the selected match. Matches whose
// records have no registered document cannot be opened.
func (v *View) selectionCmd(build func(domain.SearchMatch) tea.Msg) tea.Cmd {
	m := v.list.SelectedMatch()
	if m == nil {
		return nil
	}
	if m.DocumentID == "" {
		v.statusbar.SetMessage(fmt.Sprintf("%s has no registered document", m.Filename))
		return nil
	}
	match := *m
	return func() tea.Msg { return build(match) }
}

// performSearch runs the query off the update loop.
func (v *View) performSearch(query string) tea.Cmd {
	svc, ctx, limit := v.searchService, v.ctx, v.limit
	return func() tea.Msg {
		if svc == nil {
			return messages.ErrorOccurred{Err: ErrNoSearchService}
		}
		matches, err := svc.Search(ctx, query, limit)
		return messages.SearchCompleted{Query: query, Matches: matches, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		v.focusInput = true
		v.input.Focus()
		return
	}

	v.err = nil
	v.list.SetMatches(msg.Matches)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage("")
	v.statusbar.SetMatchCount(len(msg.Matches))
	if len(msg.Matches) == 0 {
		v.focusInput = true
		v.input.Focus()
		return
	}
	v.focusInput = false
	v.input.Blur()
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render("Folio"), "", v.input.View(), "")
	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}
	sections = append(sections, v.list.View(), "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the search query.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Matches returns the current matches.
func (v *View) Matches() []domain.SearchMatch {
	return v.list.Matches()
}

// SelectedIndex returns the index of the selected match.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// StatusMessage returns the status bar message.
func (v *View) StatusMessage() string {
	return v.statusbar.Message()
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// InputFocused returns whether the query input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}

// Reset clears the query and matches.
func (v *View) Reset() {
	v.focusInput = true
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetMatches(nil)
	v.err = nil
	v.statusbar.Clear()
}
