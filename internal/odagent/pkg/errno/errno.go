// Package errno centralizes the sentinel errors shared by managers, stores
// and the session runtime. Every mutation path checks reserved identifiers
// against the constants here; the storage layer never enforces them.
package errno

import (
	"errors"
)

var (
	// ErrNotFound is returned when a config, tool or session lookup misses.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned on duplicate create.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidReference is returned when an agent config points to a
	// model, MCP or tool that does not resolve.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrReservedID is returned on mutation attempts against built-in ids.
	ErrReservedID = errors.New("reserved identifier")

	// ErrNotPermitted is returned when unregistering a built-in MCP config.
	ErrNotPermitted = errors.New("operation not permitted")

	// ErrValidation is returned on structural invariant violations.
	ErrValidation = errors.New("validation failed")

	// ErrOverloaded is returned when the concurrent-session cap is exceeded.
	ErrOverloaded = errors.New("concurrent session limit reached")

	// ErrInvalidState is returned on use before Start, after Stop, or on
	// a double Start.
	ErrInvalidState = errors.New("invalid state")
)

// Reserved identifiers. Clients must not create, update or delete these.
const (
	// DefaultLLMConfigID is the model id of the built-in default model
	// config derived from bootstrap configuration.
	DefaultLLMConfigID = "__default_llm_config"

	// DefaultAppName is the synthetic app name carried by the built-in
	// default model config.
	DefaultAppName = "__default_app"

	// DefaultAgentName is the name of the built-in agent config.
	DefaultAgentName = "default"
)
