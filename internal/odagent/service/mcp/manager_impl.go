package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/pkg/logger"
)

const moduleName = "mcp"

type managerImpl struct {
	mu       sync.RWMutex
	builtins map[string]*OdaMcpConfig

	customStore ConfigRepository
}

var _ Manager = (*managerImpl)(nil)

// NewManager creates a Manager over the given custom-config store.
func NewManager(customStore ConfigRepository) Manager {
	return &managerImpl{
		builtins:    make(map[string]*OdaMcpConfig),
		customStore: customStore,
	}
}

func (m *managerImpl) RegisterBuiltinConfig(_ context.Context, config *OdaMcpConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	globalID := config.GlobalID()
	if _, ok := m.builtins[globalID]; ok {
		return fmt.Errorf("built-in mcp config %q: %w", globalID, errno.ErrAlreadyExists)
	}
	m.builtins[globalID] = config
	logger.InfoX(moduleName, "registered built-in MCP config: %s", globalID)
	return nil
}

func (m *managerImpl) UnregisterBuiltinConfig(_ context.Context, appName, mcpID string) error {
	m.mu.RLock()
	_, ok := m.builtins[GlobalID(appName, mcpID)]
	m.mu.RUnlock()

	if ok {
		return fmt.Errorf("built-in mcp config %q: %w", GlobalID(appName, mcpID), errno.ErrNotPermitted)
	}
	logger.WarnX(moduleName, "attempted to unregister non-existent built-in config: %s", GlobalID(appName, mcpID))
	return nil
}

func (m *managerImpl) RegisterCustomConfig(ctx context.Context, config *OdaMcpConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if err := m.customStore.Create(ctx, config); err != nil {
		return err
	}
	logger.InfoX(moduleName, "registered custom MCP config: %s", config.GlobalID())
	return nil
}

// UpdateCustomConfig consults the custom tier only: the tiers are disjoint,
// so a key that exists only as a built-in fails with errno.ErrNotFound.
func (m *managerImpl) UpdateCustomConfig(ctx context.Context, appName, mcpID string, config *OdaMcpConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	globalID := GlobalID(appName, mcpID)
	existing, err := m.customStore.Get(ctx, appName, mcpID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("custom mcp config %q: %w", globalID, errno.ErrNotFound)
	}

	if err := m.customStore.Update(ctx, config); err != nil {
		return err
	}
	logger.InfoX(moduleName, "updated custom MCP config: %s", globalID)
	return nil
}

func (m *managerImpl) UnregisterCustomConfig(ctx context.Context, appName, mcpID string) error {
	if err := m.customStore.Delete(ctx, appName, mcpID); err != nil {
		return err
	}
	logger.InfoX(moduleName, "unregistered custom MCP config: %s", GlobalID(appName, mcpID))
	return nil
}

func (m *managerImpl) GetConfig(ctx context.Context, appName, mcpID string) (*OdaMcpConfig, error) {
	m.mu.RLock()
	config, ok := m.builtins[GlobalID(appName, mcpID)]
	m.mu.RUnlock()
	if ok {
		return config, nil
	}
	return m.customStore.Get(ctx, appName, mcpID)
}

func (m *managerImpl) ListConfigs(ctx context.Context, appName string) (map[string]*OdaMcpConfig, error) {
	configs := make(map[string]*OdaMcpConfig)

	m.mu.RLock()
	for globalID, config := range m.builtins {
		if config.AppName == appName {
			configs[globalID] = config
		}
	}
	m.mu.RUnlock()

	custom, err := m.customStore.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, config := range custom {
		if config.AppName == appName {
			configs[config.GlobalID()] = config
		}
	}
	return configs, nil
}

func (m *managerImpl) CreateToolset(ctx context.Context, appName, mcpID string) (*Toolset, error) {
	config, err := m.GetConfig(ctx, appName, mcpID)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, fmt.Errorf("mcp config %q: %w", GlobalID(appName, mcpID), errno.ErrNotFound)
	}
	logger.InfoX(moduleName, "creating toolset for %s", config.GlobalID())
	return NewToolset(config), nil
}
