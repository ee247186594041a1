// Package ai creates the configured chat model adapter.
package ai

import (
	"context"
	"fmt"

	"github.com/custodia-labs/folio/internal/adapters/driven/llm"
	"github.com/custodia-labs/folio/internal/adapters/driven/llm/gemini"
	"github.com/custodia-labs/folio/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// NewChatModel creates the chat model for settings, rate limited when
// RequestsPerMinute is set. It returns nil, nil when no provider is configured.
func NewChatModel(
	ctx context.Context, settings *domain.LLMSettings, prompts driven.PromptStore,
) (driven.ChatModel, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	renderer := llm.NewPrompts(prompts)
	model, err := createChatModel(ctx, settings, renderer)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'folio settings llm' to fix", domain.ErrLLMUnavailable, err)
	}

	logger.Debug("chat model: %s %s (limit %d/min)", settings.Provider, model.ModelName(), settings.RequestsPerMinute)
	return llm.WithRateLimit(model, settings.RequestsPerMinute), nil
}

func createChatModel(ctx context.Context, settings *domain.LLMSettings, prompts llm.Prompts) (driven.ChatModel, error) {
	switch settings.Provider {
	case domain.AIProviderOpenAI:
		return openai.New(openai.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}, prompts)

	case domain.AIProviderGemini:
		return gemini.New(ctx, gemini.Config{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		}, prompts)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
