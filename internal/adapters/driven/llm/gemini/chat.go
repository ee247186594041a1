// Package gemini provides a chat model adapter for Google Gemini.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/custodia-labs/folio/internal/adapters/driven/llm"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure ChatModel implements the interface.
var _ driven.ChatModel = (*ChatModel)(nil)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-1.5-flash"

const temperature = 0.2

// Gemini names the assistant role "model".
const roleModel = "model"

// Config holds configuration for the Gemini chat model.
type Config struct {
	// APIKey is the Google AI Studio API key (required).
	APIKey string

	// Model is the model name (default: gemini-1.5-flash).
	Model string

	// Options are appended to the client options, e.g. option.WithEndpoint.
	Options []option.ClientOption
}

// ChatModel answers questions and writes summaries with the Gemini API.
type ChatModel struct {
	client  *genai.Client
	model   string
	prompts llm.Prompts
}

// New creates a Gemini chat model. The client is closed by Close.
func New(ctx context.Context, cfg Config, prompts llm.Prompts) (*ChatModel, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	opts := append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, cfg.Options...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &ChatModel{client: client, model: cfg.Model, prompts: prompts}, nil
}

// Answer replies to question grounded in documentText.
func (m *ChatModel) Answer(
	ctx context.Context, documentText, question string, history []driven.ChatMessage,
) (string, error) {
	gm := m.generativeModel()
	gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(m.prompts.AnswerSystem(documentText))}}

	session := gm.StartChat()
	session.History = toHistory(history)

	resp, err := session.SendMessage(ctx, genai.Text(question))
	if err != nil {
		return "", classify(err)
	}
	return responseText(resp)
}

// Summarise creates a summary of content of at most roughly maxLength characters.
func (m *ChatModel) Summarise(ctx context.Context, content string, maxLength int) (string, error) {
	gm := m.generativeModel()
	resp, err := gm.GenerateContent(ctx, genai.Text(m.prompts.Summarise(content, maxLength)))
	if err != nil {
		return "", classify(err)
	}
	return responseText(resp)
}

// ModelName returns the configured model.
func (m *ChatModel) ModelName() string {
	return m.model
}

// Close releases the underlying client.
func (m *ChatModel) Close() error {
	return m.client.Close()
}

func (m *ChatModel) generativeModel() *genai.GenerativeModel {
	gm := m.client.GenerativeModel(m.model)
	gm.SetTemperature(temperature)
	return gm
}

// toHistory converts chat history to Gemini contents.
// Unknown roles and empty messages are dropped.
func toHistory(history []driven.ChatMessage) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role, ok := llm.NormaliseRole(msg.Role)
		if !ok || msg.Content == "" {
			continue
		}
		if role == llm.RoleAssistant {
			role = roleModel
		}
		out = append(out, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(msg.Content)}})
	}
	return out
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini: %w: empty response", domain.ErrLLMUnavailable)
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", fmt.Errorf("gemini: %w: response blocked (%s)", domain.ErrLLMUnavailable, candidate.FinishReason)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", fmt.Errorf("gemini: %w: no text in response", domain.ErrLLMUnavailable)
	}
	return out, nil
}

// classify wraps API failures with domain.ErrLLMUnavailable.
// Context errors pass through unchanged.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("gemini: %w: %w", domain.ErrLLMUnavailable, err)
}
