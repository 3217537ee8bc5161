package mcp

import (
	"context"
)

// Manager handles the complete lifecycle of MCP tool configurations across
// two disjoint tiers: built-in configs registered at startup and held in
// memory, and custom configs persisted through the ConfigRepository.
// Lookups consult the built-in tier first.
type Manager interface {
	// RegisterBuiltinConfig adds a built-in config. Built-ins are immutable
	// and survive for the process lifetime.
	RegisterBuiltinConfig(ctx context.Context, config *OdaMcpConfig) error

	// UnregisterBuiltinConfig always fails with errno.ErrNotPermitted for
	// registered built-ins; they are meant to be permanent.
	UnregisterBuiltinConfig(ctx context.Context, appName, mcpID string) error

	RegisterCustomConfig(ctx context.Context, config *OdaMcpConfig) error
	UpdateCustomConfig(ctx context.Context, appName, mcpID string, config *OdaMcpConfig) error
	UnregisterCustomConfig(ctx context.Context, appName, mcpID string) error

	// GetConfig returns the first hit across both tiers, or nil.
	GetConfig(ctx context.Context, appName, mcpID string) (*OdaMcpConfig, error)

	// ListConfigs returns the union of both tiers for one app, keyed by
	// "app_name:mcp_id".
	ListConfigs(ctx context.Context, appName string) (map[string]*OdaMcpConfig, error)

	// CreateToolset resolves a config into a fresh toolset handle. Handles
	// are not cached; each agent creation constructs its own.
	CreateToolset(ctx context.Context, appName, mcpID string) (*Toolset, error)
}
