package options

import (
	"fmt"
	"time"

	"github.com/onedragon/odagent/internal/odagent/core"
	"github.com/spf13/pflag"
)

// Options holds every runtime flag of the odagent server: HTTP serving,
// bootstrap storage selection, and the default LLM settings.
type Options struct {
	BindAddress string `json:"bind-address" mapstructure:"bind-address"`
	BindPort    int    `json:"bind-port" mapstructure:"bind-port"`
	EnablePprof bool   `json:"enable-pprof" mapstructure:"enable-pprof"`
	LogLevel    string `json:"log-level" mapstructure:"log-level"`
	LogPath     string `json:"log-path" mapstructure:"log-path"`

	Storage    string `json:"storage" mapstructure:"storage"`
	SQLitePath string `json:"sqlite-path" mapstructure:"sqlite-path"`
	BoltPath   string `json:"bolt-path" mapstructure:"bolt-path"`

	DefaultLLMBaseURL string `json:"default-llm-base-url" mapstructure:"default-llm-base-url"`
	DefaultLLMAPIKey  string `json:"default-llm-api-key" mapstructure:"default-llm-api-key"`
	DefaultLLMModel   string `json:"default-llm-model" mapstructure:"default-llm-model"`

	MaxRetries            int           `json:"max-retries" mapstructure:"max-retries"`
	MaxConcurrentSessions int           `json:"max-concurrent-sessions" mapstructure:"max-concurrent-sessions"`
	SessionIdleTimeout    time.Duration `json:"session-idle-timeout" mapstructure:"session-idle-timeout"`
	SessionReapInterval   time.Duration `json:"session-reap-interval" mapstructure:"session-reap-interval"`
}

// NewOptions returns options with defaults filled.
func NewOptions() *Options {
	return &Options{
		BindAddress:         "127.0.0.1",
		BindPort:            11788,
		LogLevel:            "info",
		LogPath:             "logs/odagent.log",
		Storage:             core.StorageMemory,
		SQLitePath:          "data/odagent.db",
		BoltPath:            "data/odagent.bolt",
		MaxRetries:          3,
		SessionIdleTimeout:  30 * time.Minute,
		SessionReapInterval: time.Minute,
	}
}

// AddFlags registers all option flags on fs.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.BindAddress, "bind-address", o.BindAddress, "Address the HTTP server listens on.")
	fs.IntVar(&o.BindPort, "bind-port", o.BindPort, "Port the HTTP server listens on.")
	fs.BoolVar(&o.EnablePprof, "enable-pprof", o.EnablePprof, "Expose pprof endpoints under /debug/pprof.")
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Log level: debug, info, warn or error.")
	fs.StringVar(&o.LogPath, "log-path", o.LogPath, "Log file path.")

	fs.StringVar(&o.Storage, "storage", o.Storage, "Config store backend: 'memory', 'sql' or 'bolt'.")
	fs.StringVar(&o.SQLitePath, "sqlite-path", o.SQLitePath, "SQLite database path for the 'sql' backend.")
	fs.StringVar(&o.BoltPath, "bolt-path", o.BoltPath, "BoltDB database path for the 'bolt' backend.")

	fs.StringVar(&o.DefaultLLMBaseURL, "default-llm-base-url", o.DefaultLLMBaseURL, "Base URL of the default LLM endpoint.")
	fs.StringVar(&o.DefaultLLMAPIKey, "default-llm-api-key", o.DefaultLLMAPIKey, "API key for the default LLM endpoint.")
	fs.StringVar(&o.DefaultLLMModel, "default-llm-model", o.DefaultLLMModel, "Model name of the default LLM endpoint.")

	fs.IntVar(&o.MaxRetries, "max-retries", o.MaxRetries, "Retry budget for each agent execution.")
	fs.IntVar(&o.MaxConcurrentSessions, "max-concurrent-sessions", o.MaxConcurrentSessions, "Concurrent session cap; 0 means unlimited.")
	fs.DurationVar(&o.SessionIdleTimeout, "session-idle-timeout", o.SessionIdleTimeout, "Idle duration after which sessions are reaped.")
	fs.DurationVar(&o.SessionReapInterval, "session-reap-interval", o.SessionReapInterval, "How often the idle-session reaper runs.")
}

// Validate checks option consistency.
func (o *Options) Validate() []error {
	var errs []error
	switch o.Storage {
	case core.StorageMemory, core.StorageSQL, core.StorageBolt:
	default:
		errs = append(errs, fmt.Errorf("invalid storage %q, must be 'memory', 'sql' or 'bolt'", o.Storage))
	}
	if o.BindPort <= 0 || o.BindPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid bind-port %d", o.BindPort))
	}
	if o.SessionReapInterval <= 0 {
		errs = append(errs, fmt.Errorf("session-reap-interval must be positive"))
	}
	return errs
}

// ContextConfig derives the OdaContext bootstrap config.
func (o *Options) ContextConfig() *core.OdaContextConfig {
	return &core.OdaContextConfig{
		Storage:               o.Storage,
		SQLitePath:            o.SQLitePath,
		BoltPath:              o.BoltPath,
		DefaultLLMBaseURL:     o.DefaultLLMBaseURL,
		DefaultLLMAPIKey:      o.DefaultLLMAPIKey,
		DefaultLLMModel:       o.DefaultLLMModel,
		MaxRetries:            o.MaxRetries,
		MaxConcurrentSessions: o.MaxConcurrentSessions,
	}
}
