package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAIProvider_IsValid(t *testing.T) {
	assert.True(t, AIProviderOpenAI.IsValid())
	assert.True(t, AIProviderGemini.IsValid())
	assert.False(t, AIProviderNone.IsValid())
	assert.False(t, AIProvider("anthropic").IsValid())
}

func TestAIProvider_Description(t *testing.T) {
	assert.Equal(t, "Google Gemini", AIProviderGemini.Description())
	assert.Equal(t, unknownDescription, AIProvider("other").Description())
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	assert.False(t, LLMSettings{}.IsConfigured())
	assert.False(t, LLMSettings{Provider: AIProviderGemini}.IsConfigured())
	assert.True(t, LLMSettings{Provider: AIProviderGemini, APIKey: "k"}.IsConfigured())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()
	assert.False(t, s.LLM.IsConfigured())
	assert.True(t, s.Extraction.Tables)
	assert.Equal(t, "eng", s.Extraction.OCRLanguage)
	assert.Equal(t, 1, s.Batch.Workers)
	assert.Equal(t, 30, s.Retention.Days)
	assert.NotEmpty(t, s.Server.Addr)
}

func TestDefaultLLMModels(t *testing.T) {
	models := DefaultLLMModels()
	for _, p := range AllAIProviders() {
		assert.NotEmpty(t, models[p], p)
	}
}
