package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/views/doccontent"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/views/search"
)

// App is the root Bubbletea model. It routes messages to the active view.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	searchView     *search.View
	docContentView *doccontent.View
	chatView       *chat.View

	currentView messages.ViewType
	helpReturn  messages.ViewType
	quitOnBack  bool

	err    error
	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the TUI on top of ports. It opens on the search view.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	return &App{
		ports:          ports,
		ctx:            context.Background(),
		styles:         s,
		keymap:         km,
		searchView:     search.NewView(s, km, ports.Search),
		docContentView: doccontent.NewView(s, ports.Documents),
		chatView:       chat.NewView(s, km, ports.Chat),
		currentView:    messages.ViewSearch,
	}, nil
}

// WithContext sets the context passed to every service call.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.docContentView.WithContext(ctx)
	a.chatView.WithContext(ctx)
	return a
}

// StartChat opens the app on the chat view for one document. Leaving the
// chat quits instead of returning to search.
func (a *App) StartChat(documentID, filename string) tea.Cmd {
	a.currentView = messages.ViewChat
	a.quitOnBack = true
	return a.chatView.Open(documentID, filename, messages.ViewSearch)
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle("folio")}
	switch a.currentView {
	case messages.ViewChat:
		cmds = append(cmds, a.chatView.Init())
	default:
		cmds = append(cmds, a.searchView.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.currentView == messages.ViewHelp {
			if msg.Type == tea.KeyEsc || keymap.Matches(msg.String(), a.keymap.Help) {
				a.currentView = a.helpReturn
			}
			return a, nil
		}
		return a, a.forward(msg)

	case messages.ViewChanged:
		if msg.View == messages.ViewSearch && a.currentView == messages.ViewChat && a.quitOnBack {
			return a, tea.Quit
		}
		if msg.View == messages.ViewHelp {
			a.helpReturn = a.currentView
		}
		a.currentView = msg.View
		return a, nil

	case messages.SearchCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = a.searchView.Err()
		return a, cmd

	case messages.MatchSelected:
		a.currentView = messages.ViewDocContent
		return a, a.docContentView.SetDocument(msg.Match.DocumentID, msg.Match.PageNumber)

	case messages.DocumentContentLoaded:
		a.docContentView, cmd = a.docContentView.Update(msg)
		a.err = msg.Err
		return a, cmd

	case messages.ChatOpened:
		back := a.currentView
		a.currentView = messages.ViewChat
		return a, a.chatView.Open(msg.DocumentID, msg.Filename, back)

	case messages.ChatAnswered:
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, a.forward(msg)

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// forward sends msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewDocContent:
		a.docContentView, cmd = a.docContentView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	switch a.currentView {
	case messages.ViewDocContent:
		return a.docContentView.View()
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.searchView.View()
	}
}

// viewHelp lists the bindings from the keymap.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Keys"))
	b.WriteString("\n\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "  %-10s %s\n", h.Key, h.Desc)
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Help.Render("Search: type a query, enter to run it, esc to browse or quit.\n" +
		"Document: c starts a chat. Chat: enter asks, esc goes back.\n\n[esc] back"))
	return b.String()
}

// Run starts the program on the terminal until the user quits or ctx ends.
func (a *App) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	a.WithContext(ctx)
	p := tea.NewProgram(a,
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error reported by a view.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the terminal size is known.
func (a *App) Ready() bool {
	return a.ready
}

// SearchView returns the search view.
func (a *App) SearchView() *search.View {
	return a.searchView
}

// DocContentView returns the document content view.
func (a *App) DocContentView() *doccontent.View {
	return a.docContentView
}

// ChatView returns the chat view.
func (a *App) ChatView() *chat.View {
	return a.chatView
}

// SetDimensions sizes every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.searchView.SetDimensions(width, height)
	a.docContentView.SetDimensions(width, height)
	a.chatView.SetDimensions(width, height)
}
