package service

import (
	"context"
	"testing"

	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/internal/odagent/service/model/domain/entity"
	"github.com/onedragon/odagent/internal/odagent/service/model/store/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaults = DefaultLLM{
	BaseURL: "https://llm.example.com/v1",
	APIKey:  "sk-test",
	Model:   "gpt-4o-mini",
}

func sampleConfig(appName, modelID string) *entity.OdaModelConfig {
	return &entity.OdaModelConfig{
		AppName: appName,
		ModelID: modelID,
		BaseURL: "https://other.example.com/v1",
		APIKey:  "sk-other",
		Model:   "qwen-plus",
	}
}

func TestDefaultConfigCached(t *testing.T) {
	m := NewModelConfigManager(inmemory.NewModelConfigStore(), defaults)

	def := m.GetDefaultConfig()
	require.NotNil(t, def)
	assert.Equal(t, errno.DefaultAppName, def.AppName)
	assert.Equal(t, errno.DefaultLLMConfigID, def.ModelID)
	assert.Equal(t, defaults.Model, def.Model)

	got, err := m.GetConfig(context.Background(), errno.DefaultLLMConfigID)
	require.NoError(t, err)
	assert.Same(t, def, got)
}

func TestDefaultConfigAbsentWithoutBootstrap(t *testing.T) {
	m := NewModelConfigManager(inmemory.NewModelConfigStore(), DefaultLLM{Model: "only-model"})

	assert.Nil(t, m.GetDefaultConfig())

	got, err := m.GetConfig(context.Background(), errno.DefaultLLMConfigID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReservedIDRejected(t *testing.T) {
	m := NewModelConfigManager(inmemory.NewModelConfigStore(), defaults)
	ctx := context.Background()

	reserved := sampleConfig("app", errno.DefaultLLMConfigID)
	assert.ErrorIs(t, m.CreateConfig(ctx, reserved), errno.ErrReservedID)
	assert.ErrorIs(t, m.UpdateConfig(ctx, reserved), errno.ErrReservedID)
	assert.ErrorIs(t, m.DeleteConfig(ctx, errno.DefaultLLMConfigID), errno.ErrReservedID)
}

func TestCrudRoundTrip(t *testing.T) {
	m := NewModelConfigManager(inmemory.NewModelConfigStore(), defaults)
	ctx := context.Background()

	config := sampleConfig("app", "m1")
	require.NoError(t, m.CreateConfig(ctx, config))

	got, err := m.GetConfig(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, config, got)

	// Update to an equal record keeps the observable state.
	require.NoError(t, m.UpdateConfig(ctx, got))
	again, err := m.GetConfig(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, got, again)

	require.NoError(t, m.DeleteConfig(ctx, "m1"))
	gone, err := m.GetConfig(ctx, "m1")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestListPutsDefaultLast(t *testing.T) {
	m := NewModelConfigManager(inmemory.NewModelConfigStore(), defaults)
	ctx := context.Background()

	require.NoError(t, m.CreateConfig(ctx, sampleConfig("app", "m1")))
	require.NoError(t, m.CreateConfig(ctx, sampleConfig("app", "m2")))

	configs, err := m.ListConfigs(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 3)
	assert.Equal(t, errno.DefaultLLMConfigID, configs[len(configs)-1].ModelID)
}

func TestListWithoutDefault(t *testing.T) {
	m := NewModelConfigManager(inmemory.NewModelConfigStore(), DefaultLLM{})
	configs, err := m.ListConfigs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, configs)
}

func TestValidateModelConfig(t *testing.T) {
	m := NewModelConfigManager(inmemory.NewModelConfigStore(), defaults)
	ctx := context.Background()

	require.NoError(t, m.CreateConfig(ctx, sampleConfig("app", "m1")))

	ok, err := m.ValidateModelConfig(ctx, "app", "m1")
	require.NoError(t, err)
	assert.True(t, ok)

	// Wrong app scope does not resolve.
	ok, err = m.ValidateModelConfig(ctx, "other-app", "m1")
	require.NoError(t, err)
	assert.False(t, ok)

	// The built-in default resolves for every app.
	ok, err = m.ValidateModelConfig(ctx, "any-app", errno.DefaultLLMConfigID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.ValidateModelConfig(ctx, "app", "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
