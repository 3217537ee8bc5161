package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jinzhu/copier"
	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/internal/odagent/service/mcp"
)

// McpConfigStore is the in-memory implementation of mcp.ConfigRepository,
// keyed by the "app_name:mcp_id" global identifier.
type McpConfigStore struct {
	mu      sync.RWMutex
	configs map[string]*mcp.OdaMcpConfig
}

var _ mcp.ConfigRepository = (*McpConfigStore)(nil)

// NewMcpConfigStore creates an empty in-memory store.
func NewMcpConfigStore() *McpConfigStore {
	return &McpConfigStore{
		configs: make(map[string]*mcp.OdaMcpConfig),
	}
}

func cloneMcpConfig(config *mcp.OdaMcpConfig) *mcp.OdaMcpConfig {
	out := &mcp.OdaMcpConfig{}
	_ = copier.CopyWithOption(out, config, copier.Option{DeepCopy: true})
	return out
}

func (s *McpConfigStore) Create(_ context.Context, config *mcp.OdaMcpConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := config.GlobalID()
	if _, ok := s.configs[key]; ok {
		return fmt.Errorf("mcp config %q: %w", key, errno.ErrAlreadyExists)
	}
	s.configs[key] = cloneMcpConfig(config)
	return nil
}

func (s *McpConfigStore) Get(_ context.Context, appName, mcpID string) (*mcp.OdaMcpConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	config, ok := s.configs[mcp.GlobalID(appName, mcpID)]
	if !ok {
		return nil, nil
	}
	return cloneMcpConfig(config), nil
}

func (s *McpConfigStore) Update(_ context.Context, config *mcp.OdaMcpConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := config.GlobalID()
	if _, ok := s.configs[key]; !ok {
		return fmt.Errorf("mcp config %q: %w", key, errno.ErrNotFound)
	}
	s.configs[key] = cloneMcpConfig(config)
	return nil
}

func (s *McpConfigStore) Delete(_ context.Context, appName, mcpID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.configs, mcp.GlobalID(appName, mcpID))
	return nil
}

func (s *McpConfigStore) List(_ context.Context) ([]*mcp.OdaMcpConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	configs := make([]*mcp.OdaMcpConfig, 0, len(s.configs))
	for _, config := range s.configs {
		configs = append(configs, cloneMcpConfig(config))
	}
	return configs, nil
}
