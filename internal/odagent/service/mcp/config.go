package mcp

import (
	"fmt"

	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
)

// Server types supported by MCP configs.
const (
	ServerTypeStdio = "stdio"
	ServerTypeSSE   = "sse"
	ServerTypeHTTP  = "http"
)

const (
	defaultTimeoutSeconds = 30
	defaultRetryCount     = 3
)

// OdaMcpConfig describes one MCP server binding. mcp_id is unique within
// (app_name, tier); built-in and custom tiers keep disjoint namespaces.
type OdaMcpConfig struct {
	AppName     string `json:"app_name"`
	McpID       string `json:"mcp_id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// ServerType selects the transport: "stdio", "sse" or "http".
	ServerType string `json:"server_type"`

	// Command/Args/Env apply to stdio servers.
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`

	// URL/Headers apply to sse and http servers.
	URL     string            `json:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`

	// ToolFilter restricts which server tools are exposed; empty means all.
	ToolFilter []string `json:"tool_filter,omitempty"`

	// Connection parameters consumed by the engine layer.
	TimeoutSeconds int `json:"timeout,omitempty"`
	RetryCount     int `json:"retry_count,omitempty"`
}

// GlobalID returns the "app_name:mcp_id" identifier surfaced by list
// operations.
func (c *OdaMcpConfig) GlobalID() string {
	return GlobalID(c.AppName, c.McpID)
}

// GlobalID formats the global MCP identifier.
func GlobalID(appName, mcpID string) string {
	return fmt.Sprintf("%s:%s", appName, mcpID)
}

// Validate checks the structural invariants and fills connection-parameter
// defaults.
func (c *OdaMcpConfig) Validate() error {
	if c.AppName == "" {
		return fmt.Errorf("app_name is required: %w", errno.ErrValidation)
	}
	if c.McpID == "" {
		return fmt.Errorf("mcp_id is required: %w", errno.ErrValidation)
	}

	switch c.ServerType {
	case ServerTypeStdio:
		if c.Command == "" {
			return fmt.Errorf("mcp config %q: command is required for stdio server: %w", c.GlobalID(), errno.ErrValidation)
		}
	case ServerTypeSSE, ServerTypeHTTP:
		if c.URL == "" {
			return fmt.Errorf("mcp config %q: url is required for %s server: %w", c.GlobalID(), c.ServerType, errno.ErrValidation)
		}
	default:
		return fmt.Errorf("mcp config %q: unsupported server type %q: %w", c.GlobalID(), c.ServerType, errno.ErrValidation)
	}

	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.RetryCount <= 0 {
		c.RetryCount = defaultRetryCount
	}
	return nil
}
