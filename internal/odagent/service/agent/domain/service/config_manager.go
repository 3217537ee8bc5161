package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/internal/odagent/service/agent/domain/entity"
	"github.com/onedragon/odagent/internal/odagent/service/agent/domain/repo"
	"github.com/onedragon/odagent/internal/odagent/service/mcp"
	modelService "github.com/onedragon/odagent/internal/odagent/service/model/domain/service"
)

// OdaAgentConfigManager provides CRUD over agent configs with
// cross-reference validation against the model and MCP managers, plus the
// built-in "default" agent config.
type OdaAgentConfigManager struct {
	store        repo.AgentConfigRepository
	modelManager modelService.ModelConfigManager
	mcpManager   mcp.Manager

	once          sync.Once
	defaultConfig *entity.OdaAgentConfig
}

// NewOdaAgentConfigManager creates the manager.
func NewOdaAgentConfigManager(
	store repo.AgentConfigRepository,
	modelManager modelService.ModelConfigManager,
	mcpManager mcp.Manager,
) *OdaAgentConfigManager {
	return &OdaAgentConfigManager{
		store:        store,
		modelManager: modelManager,
		mcpManager:   mcpManager,
	}
}

// CreateConfig persists a new agent config after validating every
// reference it carries.
func (m *OdaAgentConfigManager) CreateConfig(ctx context.Context, config *entity.OdaAgentConfig) error {
	if config.AgentName == errno.DefaultAgentName {
		return fmt.Errorf("agent config %q: %w", config.AgentName, errno.ErrReservedID)
	}
	if err := m.validateReferences(ctx, config); err != nil {
		return err
	}
	return m.store.Create(ctx, config)
}

// GetConfig returns the built-in config for the reserved name, or the
// persisted record.
func (m *OdaAgentConfigManager) GetConfig(ctx context.Context, agentName string) (*entity.OdaAgentConfig, error) {
	if agentName == errno.DefaultAgentName {
		m.once.Do(func() {
			m.defaultConfig = entity.NewDefaultAgentConfig(errno.DefaultAppName)
		})
		return m.defaultConfig, nil
	}
	return m.store.Get(ctx, agentName)
}

// UpdateConfig replaces a persisted agent config after re-validating its
// references.
func (m *OdaAgentConfigManager) UpdateConfig(ctx context.Context, config *entity.OdaAgentConfig) error {
	if config.AgentName == errno.DefaultAgentName {
		return fmt.Errorf("agent config %q: %w", config.AgentName, errno.ErrReservedID)
	}
	if err := m.validateReferences(ctx, config); err != nil {
		return err
	}
	return m.store.Update(ctx, config)
}

func (m *OdaAgentConfigManager) DeleteConfig(ctx context.Context, agentName string) error {
	if agentName == errno.DefaultAgentName {
		return fmt.Errorf("agent config %q: %w", agentName, errno.ErrReservedID)
	}
	return m.store.Delete(ctx, agentName)
}

// ListConfigs returns the persisted records only; the built-in config is
// surfaced through GetConfig, not here.
func (m *OdaAgentConfigManager) ListConfigs(ctx context.Context) ([]*entity.OdaAgentConfig, error) {
	return m.store.List(ctx)
}

// ValidateModelConfig reports whether modelConfigID resolves for appName.
func (m *OdaAgentConfigManager) ValidateModelConfig(ctx context.Context, appName, modelConfigID string) (bool, error) {
	return m.modelManager.ValidateModelConfig(ctx, appName, modelConfigID)
}

// ValidateMcpConfig reports whether every id in mcpIDs resolves for appName
// in either MCP tier.
func (m *OdaAgentConfigManager) ValidateMcpConfig(ctx context.Context, appName string, mcpIDs []string) (bool, error) {
	for _, mcpID := range mcpIDs {
		config, err := m.mcpManager.GetConfig(ctx, appName, mcpID)
		if err != nil {
			return false, err
		}
		if config == nil {
			return false, nil
		}
	}
	return true, nil
}

// IsBuiltinConfig reports whether agentName names the built-in config.
func (m *OdaAgentConfigManager) IsBuiltinConfig(agentName string) bool {
	return agentName == errno.DefaultAgentName
}

func (m *OdaAgentConfigManager) validateReferences(ctx context.Context, config *entity.OdaAgentConfig) error {
	ok, err := m.ValidateModelConfig(ctx, config.AppName, config.ModelConfigID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("agent config %q: model config %q: %w",
			config.AgentName, config.ModelConfigID, errno.ErrInvalidReference)
	}

	ok, err = m.ValidateMcpConfig(ctx, config.AppName, config.McpIDs)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("agent config %q: mcp ids %v: %w",
			config.AgentName, config.McpIDs, errno.ErrInvalidReference)
	}
	return nil
}
