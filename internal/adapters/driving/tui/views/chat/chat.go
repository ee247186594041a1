// Package chat provides the question and answer view for one document.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/folio/internal/adapters/driven/llm"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// ErrChatUnavailable is shown when no chat model is configured.
var ErrChatUnavailable = fmt.Errorf("%w: run 'folio settings llm' to configure a provider", domain.ErrLLMUnavailable)

// turn is one question with its answer or error.
type turn struct {
	question string
	answer   string
	err      error
}

// View is a chat transcript with an input for the next question.
type View struct {
	styles      *styles.Styles
	keymap      *keymap.KeyMap
	input       *input.Field
	statusbar   *status.Bar
	chatService driving.ChatService
	ctx         context.Context

	documentID string
	filename   string
	back       messages.ViewType
	history    []driven.ChatMessage
	turns      []turn
	asking     bool
	err        error
	width      int
	height     int
}

// NewView creates a chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, chatService driving.ChatService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	bar := status.NewBar(s, km)
	bar.SetHints(km.ShortHelp())
	return &View{
		styles:      s,
		keymap:      km,
		input:       input.NewField(s, "Ask: ", "Question about this document..."),
		statusbar:   bar,
		chatService: chatService,
		ctx:         context.Background(),
		back:        messages.ViewSearch,
		width:       80,
		height:      24,
	}
}

// WithContext sets the context used for questions.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Open starts a fresh conversation about a document. Esc returns to back.
func (v *View) Open(documentID, filename string, back messages.ViewType) tea.Cmd {
	v.documentID = documentID
	v.filename = filename
	v.back = back
	v.history = nil
	v.turns = nil
	v.asking = false
	v.err = nil
	v.input.Reset()
	v.statusbar.Clear()
	if v.chatService == nil || !v.chatService.Available() {
		v.err = ErrChatUnavailable
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(v.err.Error())
	}
	v.input.Focus()
	return v.input.Init()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ChatAnswered:
		if msg.DocumentID != v.documentID {
			return v, nil
		}
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.asking = false
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		back := v.back
		return v, func() tea.Msg { return messages.ViewChanged{View: back} }
	case tea.KeyEnter:
		return v, v.submit()
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit sends the typed question with the earlier turns as history.
func (v *View) submit() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.asking {
		return nil
	}
	if errors.Is(v.err, domain.ErrLLMUnavailable) {
		return nil
	}

	v.input.Reset()
	v.asking = true
	v.statusbar.SetState(status.StateAsking)
	v.statusbar.SetMessage("")

	svc, ctx, id := v.chatService, v.ctx, v.documentID
	history := append([]driven.ChatMessage(nil), v.history...)
	return func() tea.Msg {
		answer, err := svc.Ask(ctx, id, question, history)
		return messages.ChatAnswered{DocumentID: id, Question: question, Answer: answer, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.ChatAnswered) {
	v.asking = false
	v.turns = append(v.turns, turn{question: msg.Question, answer: msg.Answer, err: msg.Err})
	if msg.Err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return
	}
	v.history = append(v.history,
		driven.ChatMessage{Role: llm.RoleUser, Content: msg.Question},
		driven.ChatMessage{Role: llm.RoleAssistant, Content: msg.Answer},
	)
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetMessage(fmt.Sprintf("%d questions asked", len(v.history)/2))
}

// View renders the transcript, newest turns last, above the input.
func (v *View) View() string {
	title := v.styles.Title.Render("Chat: " + v.filename)
	sections := []string{title, ""}

	if v.err != nil && len(v.turns) == 0 {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}
	sections = append(sections, v.renderTranscript(), "", v.input.View(), "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderTranscript keeps the last lines that fit above the input.
func (v *View) renderTranscript() string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render("Ask a question about the extracted text.")
	}

	width := max(v.width-4, 20)
	var lines []string
	for _, t := range v.turns {
		lines = append(lines, v.styles.Question.Render("> "+t.question))
		if t.err != nil {
			lines = append(lines, v.styles.Error.Render("error: "+t.err.Error()))
		} else {
			for _, chunk := range wrapWords(t.answer, width) {
				lines = append(lines, v.styles.Answer.Render(chunk))
			}
		}
		lines = append(lines, "")
	}
	if v.asking {
		lines = append(lines, v.styles.Muted.Render("..."))
	}

	room := max(v.height-9, 3)
	if len(lines) > room {
		lines = lines[len(lines)-room:]
	}
	return strings.Join(lines, "\n")
}

// wrapWords breaks text on spaces so no line exceeds width runes, except
// single words that are longer than width.
func wrapWords(text string, width int) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		current := words[0]
		for _, w := range words[1:] {
			if len([]rune(current))+1+len([]rune(w)) > width {
				out = append(out, current)
				current = w
				continue
			}
			current += " " + w
		}
		out = append(out, current)
	}
	return out
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
}

// DocumentID returns the document being discussed.
func (v *View) DocumentID() string {
	return v.documentID
}

// History returns the turns sent with the next question.
func (v *View) History() []driven.ChatMessage {
	return v.history
}

// Asking reports whether a question is in flight.
func (v *View) Asking() bool {
	return v.asking
}

// TurnCount returns the number of questions answered or failed.
func (v *View) TurnCount() int {
	return len(v.turns)
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// SetQuestion fills the input.
func (v *View) SetQuestion(q string) {
	v.input.SetValue(q)
}
