package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies a chat model provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderNone disables summaries and chat.
	AIProviderNone AIProvider = ""

	// AIProviderOpenAI is the OpenAI API or any compatible endpoint.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGemini is Google Gemini.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOpenAI, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
// An OpenAI-compatible local endpoint still takes a placeholder key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderGemini || p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderNone:
		return "None (summaries and chat disabled)"
	case AIProviderOpenAI:
		return "OpenAI (or compatible endpoint)"
	case AIProviderGemini:
		return "Google Gemini"
	default:
		return unknownDescription
	}
}

// AllAIProviders returns the selectable providers.
func AllAIProviders() []AIProvider {
	return []AIProvider{AIProviderOpenAI, AIProviderGemini}
}

// DefaultLLMModels returns the default model per provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOpenAI: "gpt-4o-mini",
		AIProviderGemini: "gemini-1.5-flash",
	}
}

// LLMSettings holds chat model configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL overrides the API endpoint (OpenAI-compatible servers).
	BaseURL string

	// APIKey is the provider API key.
	APIKey string

	// RequestsPerMinute bounds calls to the provider. Zero means unlimited.
	RequestsPerMinute int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ExtractionSettings controls the content extractor.
type ExtractionSettings struct {
	// Tables enables table extraction for single uploads.
	Tables bool

	// OCR enables the OCR table strategy when the tools are installed.
	OCR bool

	// OCRLanguage is the tesseract language code.
	OCRLanguage string

	// OCRResolution is the rasterisation DPI.
	OCRResolution int
}

// BatchSettings controls the batch orchestrator.
type BatchSettings struct {
	// SaveToFiles writes artifacts by default.
	SaveToFiles bool

	// OutputDir receives artifacts. Empty means <data dir>/outputs.
	OutputDir string

	// Timeout bounds a whole batch. Zero means no deadline.
	Timeout time.Duration

	// Workers enables parallel processing when > 1.
	Workers int
}

// ServerSettings controls the HTTP server.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// MaxUploadBytes bounds request bodies.
	MaxUploadBytes int64
}

// RetentionSettings controls the retention sweep.
type RetentionSettings struct {
	// Days is the default age used by cleanup.
	Days int
}

// AppSettings holds all application settings.
type AppSettings struct {
	DataDir    string
	LLM        LLMSettings
	Extraction ExtractionSettings
	Batch      BatchSettings
	Server     ServerSettings
	Retention  RetentionSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		// LLM is left unconfigured - summaries and chat stay disabled until set
		LLM: LLMSettings{},
		Extraction: ExtractionSettings{
			Tables:        true,
			OCR:           false,
			OCRLanguage:   "eng",
			OCRResolution: 300,
		},
		Batch: BatchSettings{
			Workers: 1,
		},
		Server: ServerSettings{
			Addr:           "127.0.0.1:8000",
			MaxUploadBytes: 100 << 20,
		},
		Retention: RetentionSettings{
			Days: 30,
		},
	}
}
