package services

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir          = "data_dir"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMRPM           = "llm.requests_per_minute"
	keyExtractTables    = "extraction.tables"
	keyExtractOCR       = "extraction.ocr"
	keyOCRLanguage      = "extraction.ocr_language"
	keyOCRResolution    = "extraction.ocr_resolution"
	keyBatchSave        = "batch.save_to_files"
	keyBatchOutputDir   = "batch.output_dir"
	keyBatchTimeout     = "batch.timeout"
	keyBatchWorkers     = "batch.workers"
	keyServerAddr       = "server.addr"
	keyServerMaxUpload  = "server.max_upload_bytes"
	keyRetentionDays    = "retention.days"
	envPrefix           = "FOLIO_"
	envOpenAIKey        = "OPENAI_API_KEY"
	envGeminiKey        = "GEMINI_API_KEY"
	maxOCRResolutionDPI = 1200
)

// settingKind is the storage type of a setting.
type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindBool
	kindDuration
)

// knownSettings lists every key Set accepts.
var knownSettings = map[string]settingKind{
	keyDataDir:         kindString,
	keyLLMProvider:     kindString,
	keyLLMModel:        kindString,
	keyLLMBaseURL:      kindString,
	keyLLMAPIKey:       kindString,
	keyLLMRPM:          kindInt,
	keyExtractTables:   kindBool,
	keyExtractOCR:      kindBool,
	keyOCRLanguage:     kindString,
	keyOCRResolution:   kindInt,
	keyBatchSave:       kindBool,
	keyBatchOutputDir:  kindString,
	keyBatchTimeout:    kindDuration,
	keyBatchWorkers:    kindInt,
	keyServerAddr:      kindString,
	keyServerMaxUpload: kindInt,
	keyRetentionDays:   kindInt,
}

// SettingKeys returns the accepted setting keys in sorted order.
func SettingKeys() []string {
	keys := make([]string, 0, len(knownSettings))
	for k := range knownSettings {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
// Values from the environment take precedence over the store.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// SetEnvLookup replaces the environment lookup. Nil disables overrides.
func (s *SettingsService) SetEnvLookup(fn func(string) (string, bool)) {
	if fn == nil {
		fn = func(string) (string, bool) { return "", false }
	}
	s.lookupEnv = fn
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	timeout, err := s.getDuration(keyBatchTimeout, defaults.Batch.Timeout)
	if err != nil {
		return nil, err
	}

	settings := &domain.AppSettings{
		DataDir: s.getString(keyDataDir, defaults.DataDir),
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(defaults.LLM.Provider),
			Model:             s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:           s.getString(keyLLMBaseURL, ""),
			APIKey:            s.getString(keyLLMAPIKey, ""),
			RequestsPerMinute: s.getInt(keyLLMRPM, defaults.LLM.RequestsPerMinute),
		},
		Extraction: domain.ExtractionSettings{
			Tables:        s.getBool(keyExtractTables, defaults.Extraction.Tables),
			OCR:           s.getBool(keyExtractOCR, defaults.Extraction.OCR),
			OCRLanguage:   s.getString(keyOCRLanguage, defaults.Extraction.OCRLanguage),
			OCRResolution: s.getInt(keyOCRResolution, defaults.Extraction.OCRResolution),
		},
		Batch: domain.BatchSettings{
			SaveToFiles: s.getBool(keyBatchSave, defaults.Batch.SaveToFiles),
			OutputDir:   s.getString(keyBatchOutputDir, defaults.Batch.OutputDir),
			Timeout:     timeout,
			Workers:     s.getInt(keyBatchWorkers, defaults.Batch.Workers),
		},
		Server: domain.ServerSettings{
			Addr:           s.getString(keyServerAddr, defaults.Server.Addr),
			MaxUploadBytes: int64(s.getInt(keyServerMaxUpload, int(defaults.Server.MaxUploadBytes))),
		},
		Retention: domain.RetentionSettings{
			Days: s.getInt(keyRetentionDays, defaults.Retention.Days),
		},
	}

	// Provider-specific keys fill the gap when no folio key is set
	if settings.LLM.APIKey == "" {
		switch settings.LLM.Provider {
		case domain.AIProviderOpenAI:
			settings.LLM.APIKey = s.env(envOpenAIKey)
		case domain.AIProviderGemini:
			settings.LLM.APIKey = s.env(envGeminiKey)
		}
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyDataDir, settings.DataDir},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMRPM, settings.LLM.RequestsPerMinute},
		{keyExtractTables, settings.Extraction.Tables},
		{keyExtractOCR, settings.Extraction.OCR},
		{keyOCRLanguage, settings.Extraction.OCRLanguage},
		{keyOCRResolution, settings.Extraction.OCRResolution},
		{keyBatchSave, settings.Batch.SaveToFiles},
		{keyBatchOutputDir, settings.Batch.OutputDir},
		{keyBatchTimeout, settings.Batch.Timeout.String()},
		{keyBatchWorkers, settings.Batch.Workers},
		{keyServerAddr, settings.Server.Addr},
		{keyServerMaxUpload, int(settings.Server.MaxUploadBytes)},
		{keyRetentionDays, settings.Retention.Days},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Keys are only written when given, so one from the environment is never copied to disk
	if settings.LLM.APIKey != "" && settings.LLM.APIKey != s.envAPIKey(settings.LLM.Provider) {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyLLMAPIKey, err)
		}
	}

	return nil
}

// Set stores a single setting, converting value to the key's type.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := knownSettings[key]
	if !ok {
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}

	var stored any
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be a non-negative integer, got %q: %w", key, value, domain.ErrInvalidInput)
		}
		stored = n
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false, got %q: %w", key, value, domain.ErrInvalidInput)
		}
		stored = b
	case kindDuration:
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return fmt.Errorf("%s must be a duration like 10m, got %q: %w", key, value, domain.ErrInvalidInput)
		}
		stored = d.String()
	default:
		if key == keyLLMProvider && value != "" && !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("invalid LLM provider %q: %w", value, domain.ErrInvalidInput)
		}
		stored = value
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" && s.envAPIKey(provider) == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else if defaultModel, ok := domain.DefaultLLMModels()[provider]; ok {
		settings.LLM.Model = defaultModel
	}

	// Gemini has no compatible-endpoint mode
	if provider == domain.AIProviderGemini {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that the current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var problems []string
	if p := domain.AIProvider(s.getString(keyLLMProvider, "")); p != domain.AIProviderNone && !p.IsValid() {
		problems = append(problems, fmt.Sprintf("unknown LLM provider %q", p))
	}
	if settings.LLM.Provider.IsValid() && !settings.LLM.IsConfigured() {
		problems = append(problems, fmt.Sprintf("LLM provider %s has no API key", settings.LLM.Provider))
	}
	if settings.Batch.Workers < 1 {
		problems = append(problems, "batch.workers must be at least 1")
	}
	if r := settings.Extraction.OCRResolution; r < 72 || r > maxOCRResolutionDPI {
		problems = append(problems, fmt.Sprintf("extraction.ocr_resolution %d outside 72..%d", r, maxOCRResolutionDPI))
	}
	if settings.Retention.Days < 1 {
		problems = append(problems, "retention.days must be at least 1")
	}
	if settings.Server.MaxUploadBytes <= 0 {
		problems = append(problems, "server.max_upload_bytes must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid settings: %s: %w", strings.Join(problems, "; "), domain.ErrInvalidInput)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.
// An environment variable named FOLIO_ plus the upper-cased key wins over the store.

func (s *SettingsService) env(name string) string {
	if s.lookupEnv == nil {
		return ""
	}
	v, _ := s.lookupEnv(name)
	return strings.TrimSpace(v)
}

func (s *SettingsService) envAPIKey(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return s.env(envOpenAIKey)
	case domain.AIProviderGemini:
		return s.env(envGeminiKey)
	default:
		return ""
	}
}

// envName maps "llm.api_key" to "FOLIO_LLM_API_KEY".
func envName(key string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if v := s.env(envName(key)); v != "" {
		return v
	}
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if v := s.env(envName(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if v := s.env(envName(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := s.getString(key, "")
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	val := s.getString(keyLLMProvider, "")
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
