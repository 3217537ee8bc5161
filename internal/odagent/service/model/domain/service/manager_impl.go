package service

import (
	"context"
	"fmt"

	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/internal/odagent/service/model/domain/entity"
	"github.com/onedragon/odagent/internal/odagent/service/model/domain/repo"
	"github.com/onedragon/odagent/pkg/logger"
)

const moduleName = "model"

type managerImpl struct {
	store repo.ModelConfigRepository

	// defaultConfig is derived once from bootstrap configuration and is
	// read-only afterwards. It never reaches the persistent store.
	defaultConfig *entity.OdaModelConfig
}

var _ ModelConfigManager = (*managerImpl)(nil)

// NewModelConfigManager creates the manager. When the bootstrap defaults
// are complete, the built-in default config is cached under the reserved id.
func NewModelConfigManager(store repo.ModelConfigRepository, defaults DefaultLLM) ModelConfigManager {
	m := &managerImpl{store: store}
	if defaults.Complete() {
		m.defaultConfig = &entity.OdaModelConfig{
			AppName: errno.DefaultAppName,
			ModelID: errno.DefaultLLMConfigID,
			BaseURL: defaults.BaseURL,
			APIKey:  defaults.APIKey,
			Model:   defaults.Model,
		}
		logger.InfoX(moduleName, "built-in default model config cached (model=%s)", defaults.Model)
	}
	return m
}

func (m *managerImpl) CreateConfig(ctx context.Context, config *entity.OdaModelConfig) error {
	if config.ModelID == errno.DefaultLLMConfigID {
		return fmt.Errorf("model config %q: %w", config.ModelID, errno.ErrReservedID)
	}
	return m.store.Create(ctx, config)
}

func (m *managerImpl) GetConfig(ctx context.Context, modelID string) (*entity.OdaModelConfig, error) {
	if modelID == errno.DefaultLLMConfigID {
		return m.defaultConfig, nil
	}
	return m.store.Get(ctx, modelID)
}

func (m *managerImpl) UpdateConfig(ctx context.Context, config *entity.OdaModelConfig) error {
	if config.ModelID == errno.DefaultLLMConfigID {
		return fmt.Errorf("model config %q: %w", config.ModelID, errno.ErrReservedID)
	}
	return m.store.Update(ctx, config)
}

func (m *managerImpl) DeleteConfig(ctx context.Context, modelID string) error {
	if modelID == errno.DefaultLLMConfigID {
		return fmt.Errorf("model config %q: %w", modelID, errno.ErrReservedID)
	}
	return m.store.Delete(ctx, modelID)
}

// ListConfigs returns the persisted records followed by the built-in
// default, which always appears last when present.
func (m *managerImpl) ListConfigs(ctx context.Context) ([]*entity.OdaModelConfig, error) {
	configs, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	if m.defaultConfig != nil {
		configs = append(configs, m.defaultConfig)
	}
	return configs, nil
}

func (m *managerImpl) GetDefaultConfig() *entity.OdaModelConfig {
	return m.defaultConfig
}

// ValidateModelConfig resolves modelID and checks app scope. The built-in
// default may be referenced by any app.
func (m *managerImpl) ValidateModelConfig(ctx context.Context, appName, modelID string) (bool, error) {
	config, err := m.GetConfig(ctx, modelID)
	if err != nil {
		return false, err
	}
	if config == nil {
		return false, nil
	}
	if modelID == errno.DefaultLLMConfigID {
		return true, nil
	}
	return config.AppName == appName, nil
}
