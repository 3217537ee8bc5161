package mcp

import (
	"context"
)

// ConfigRepository persists custom MCP configs keyed by (app_name, mcp_id).
//
// Get returns (nil, nil) on a miss. Create fails with errno.ErrAlreadyExists
// when the key exists; Update fails with errno.ErrNotFound when it does not;
// Delete is idempotent.
type ConfigRepository interface {
	Create(ctx context.Context, config *OdaMcpConfig) error
	Get(ctx context.Context, appName, mcpID string) (*OdaMcpConfig, error)
	Update(ctx context.Context, config *OdaMcpConfig) error
	Delete(ctx context.Context, appName, mcpID string) error
	List(ctx context.Context) ([]*OdaMcpConfig, error)
}
