package service

import (
	"context"

	"github.com/onedragon/odagent/internal/odagent/service/model/domain/entity"
)

// DefaultLLM carries the bootstrap default-model settings. When all three
// fields are present the manager caches a built-in config under the
// reserved default id.
type DefaultLLM struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Complete reports whether all bootstrap fields are set.
func (d DefaultLLM) Complete() bool {
	return d.BaseURL != "" && d.APIKey != "" && d.Model != ""
}

// ModelConfigManager provides CRUD over model configs plus the read-only
// built-in default derived from bootstrap configuration.
type ModelConfigManager interface {
	CreateConfig(ctx context.Context, config *entity.OdaModelConfig) error
	GetConfig(ctx context.Context, modelID string) (*entity.OdaModelConfig, error)
	UpdateConfig(ctx context.Context, config *entity.OdaModelConfig) error
	DeleteConfig(ctx context.Context, modelID string) error
	ListConfigs(ctx context.Context) ([]*entity.OdaModelConfig, error)

	// GetDefaultConfig returns the cached built-in default, or nil when the
	// bootstrap configuration was incomplete.
	GetDefaultConfig() *entity.OdaModelConfig

	// ValidateModelConfig reports whether modelID resolves for app_name.
	ValidateModelConfig(ctx context.Context, appName, modelID string) (bool, error)
}
