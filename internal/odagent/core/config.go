package core

// Storage backends selectable for the config stores.
const (
	StorageMemory = "memory"
	StorageSQL    = "sql"
	StorageBolt   = "bolt"
)

// OdaContextConfig is the bootstrap configuration consumed by OdaContext.
// The host parses it (flags, config file, environment); the context only
// reads it.
type OdaContextConfig struct {
	// Storage selects the config-store backend: "memory", "sql" or "bolt".
	Storage string `json:"storage" mapstructure:"storage"`

	// SQLitePath is the database file used when Storage is "sql".
	SQLitePath string `json:"sqlite_path" mapstructure:"sqlite_path"`

	// BoltPath is the database file used when Storage is "bolt".
	BoltPath string `json:"bolt_path" mapstructure:"bolt_path"`

	// Default LLM settings. When all three are present the model config
	// manager caches the built-in default config.
	DefaultLLMBaseURL string `json:"default_llm_base_url" mapstructure:"default_llm_base_url"`
	DefaultLLMAPIKey  string `json:"default_llm_api_key" mapstructure:"default_llm_api_key"`
	DefaultLLMModel   string `json:"default_llm_model" mapstructure:"default_llm_model"`

	// MaxRetries configures every executor the agent manager produces.
	MaxRetries int `json:"max_retries" mapstructure:"max_retries"`

	// MaxConcurrentSessions caps the session pool; zero means unlimited.
	MaxConcurrentSessions int `json:"max_concurrent_sessions" mapstructure:"max_concurrent_sessions"`
}

// NewOdaContextConfig returns a config with defaults filled.
func NewOdaContextConfig() *OdaContextConfig {
	return &OdaContextConfig{
		Storage:    StorageMemory,
		SQLitePath: "data/odagent.db",
		BoltPath:   "data/odagent.bolt",
	}
}
