// Package openai provides a chat model adapter for OpenAI and
// OpenAI-compatible chat completion APIs.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/folio/internal/adapters/driven/llm"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure ChatModel implements the interface.
var _ driven.ChatModel = (*ChatModel)(nil)

// Default configuration values.
const (
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second

	temperature  = 0.2
	minMaxTokens = 64
)

// Config holds configuration for the OpenAI chat model.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL overrides the API endpoint, e.g. for a local compatible server.
	BaseURL string

	// Model is the chat model (default: gpt-4o-mini).
	Model string

	// Timeout bounds each request (default: 120s).
	Timeout time.Duration

	// HTTPClient replaces the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// ChatModel answers questions and writes summaries with the chat completions API.
type ChatModel struct {
	client  *openai.Client
	model   string
	prompts llm.Prompts
}

// New creates an OpenAI chat model.
func New(cfg Config, prompts llm.Prompts) (*ChatModel, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	} else {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &ChatModel{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		prompts: prompts,
	}, nil
}

// Answer replies to question grounded in documentText.
// History entries with unknown roles are skipped.
func (m *ChatModel) Answer(
	ctx context.Context, documentText, question string, history []driven.ChatMessage,
) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: m.prompts.AnswerSystem(documentText),
	})
	for _, msg := range history {
		role, ok := llm.NormaliseRole(msg.Role)
		if !ok || msg.Content == "" {
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: question,
	})

	return m.complete(ctx, openai.ChatCompletionRequest{
		Model:       m.model,
		Messages:    messages,
		Temperature: temperature,
	})
}

// Summarise creates a summary of content of at most roughly maxLength characters.
func (m *ChatModel) Summarise(ctx context.Context, content string, maxLength int) (string, error) {
	return m.complete(ctx, openai.ChatCompletionRequest{
		Model: m.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: m.prompts.Summarise(content, maxLength),
		}},
		MaxTokens:   max(minMaxTokens, maxLength/2),
		Temperature: temperature,
	})
}

// ModelName returns the configured model.
func (m *ChatModel) ModelName() string {
	return m.model
}

// Close is a no-op.
func (m *ChatModel) Close() error {
	return nil
}

func (m *ChatModel) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := m.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: %w: empty response", domain.ErrLLMUnavailable)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// classify wraps API failures with domain.ErrLLMUnavailable.
// Context errors pass through unchanged.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("openai: %w: authentication failed: %s", domain.ErrLLMUnavailable, apiErr.Message)
		case http.StatusTooManyRequests:
			return fmt.Errorf("openai: %w: rate limited: %s", domain.ErrLLMUnavailable, apiErr.Message)
		}
		return fmt.Errorf("openai: %w: status %d: %s", domain.ErrLLMUnavailable, apiErr.HTTPStatusCode, apiErr.Message)
	}
	return fmt.Errorf("openai: %w: %w", domain.ErrLLMUnavailable, err)
}
