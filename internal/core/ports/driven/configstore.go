package driven

// ConfigStore holds user settings under flattened dot keys such as
// "batch.workers" or "llm.api_key". Typed getters return the zero value
// when a key is missing or holds another type.
type ConfigStore interface {
	// Get returns the raw value for key and whether it was set.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores value under key and persists it immediately.
	Set(key string, value any) error

	// Save writes every value to storage.
	Save() error

	// Load replaces the in-memory values with the stored ones.
	Load() error

	// Path returns where the settings are stored.
	Path() string
}
