package service

import (
	"context"
	"testing"

	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/internal/odagent/service/agent/domain/entity"
	agentInmemory "github.com/onedragon/odagent/internal/odagent/service/agent/store/inmemory"
	"github.com/onedragon/odagent/internal/odagent/service/mcp"
	mcpInmemory "github.com/onedragon/odagent/internal/odagent/service/mcp/store/inmemory"
	modelEntity "github.com/onedragon/odagent/internal/odagent/service/model/domain/entity"
	modelService "github.com/onedragon/odagent/internal/odagent/service/model/domain/service"
	modelInmemory "github.com/onedragon/odagent/internal/odagent/service/model/store/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	manager      *OdaAgentConfigManager
	modelManager modelService.ModelConfigManager
	mcpManager   mcp.Manager
}

func newFixture(t *testing.T, defaults modelService.DefaultLLM) *fixture {
	t.Helper()
	modelManager := modelService.NewModelConfigManager(modelInmemory.NewModelConfigStore(), defaults)
	mcpManager := mcp.NewManager(mcpInmemory.NewMcpConfigStore())
	return &fixture{
		manager:      NewOdaAgentConfigManager(agentInmemory.NewAgentConfigStore(), modelManager, mcpManager),
		modelManager: modelManager,
		mcpManager:   mcpManager,
	}
}

func agentConfig(name, modelConfigID string, mcpIDs ...string) *entity.OdaAgentConfig {
	if mcpIDs == nil {
		mcpIDs = []string{}
	}
	return &entity.OdaAgentConfig{
		AppName:       "app",
		AgentName:     name,
		AgentType:     entity.AgentTypeLLM,
		Instruction:   "You answer questions.",
		ModelConfigID: modelConfigID,
		ToolIDs:       []string{},
		McpIDs:        mcpIDs,
		SubAgentNames: []string{},
	}
}

func (f *fixture) addModel(t *testing.T, modelID string) {
	t.Helper()
	require.NoError(t, f.modelManager.CreateConfig(context.Background(), &modelEntity.OdaModelConfig{
		AppName: "app",
		ModelID: modelID,
		BaseURL: "https://llm.example.com/v1",
		APIKey:  "sk-test",
		Model:   "gpt-4o-mini",
	}))
}

func TestCreateValidatesModelReference(t *testing.T) {
	f := newFixture(t, modelService.DefaultLLM{})
	ctx := context.Background()

	err := f.manager.CreateConfig(ctx, agentConfig("a1", "nope"))
	require.ErrorIs(t, err, errno.ErrInvalidReference)

	// Once the model exists the same create succeeds.
	f.addModel(t, "nope")
	require.NoError(t, f.manager.CreateConfig(ctx, agentConfig("a1", "nope")))
}

func TestCreateValidatesMcpReferences(t *testing.T) {
	f := newFixture(t, modelService.DefaultLLM{})
	ctx := context.Background()
	f.addModel(t, "m1")

	err := f.manager.CreateConfig(ctx, agentConfig("a1", "m1", "missing-mcp"))
	require.ErrorIs(t, err, errno.ErrInvalidReference)

	require.NoError(t, f.mcpManager.RegisterCustomConfig(ctx, &mcp.OdaMcpConfig{
		AppName:    "app",
		McpID:      "missing-mcp",
		ServerType: mcp.ServerTypeStdio,
		Command:    "npx",
	}))
	require.NoError(t, f.manager.CreateConfig(ctx, agentConfig("a1", "m1", "missing-mcp")))
}

func TestReservedAgentNameRejected(t *testing.T) {
	f := newFixture(t, modelService.DefaultLLM{})
	ctx := context.Background()
	f.addModel(t, "m1")

	reserved := agentConfig(errno.DefaultAgentName, "m1")
	assert.ErrorIs(t, f.manager.CreateConfig(ctx, reserved), errno.ErrReservedID)
	assert.ErrorIs(t, f.manager.UpdateConfig(ctx, reserved), errno.ErrReservedID)
	assert.ErrorIs(t, f.manager.DeleteConfig(ctx, errno.DefaultAgentName), errno.ErrReservedID)
}

func TestBuiltinDefaultSurfacedViaGetNotList(t *testing.T) {
	f := newFixture(t, modelService.DefaultLLM{})
	ctx := context.Background()

	config, err := f.manager.GetConfig(ctx, errno.DefaultAgentName)
	require.NoError(t, err)
	require.NotNil(t, config)
	assert.Equal(t, errno.DefaultAgentName, config.AgentName)
	assert.Equal(t, errno.DefaultLLMConfigID, config.ModelConfigID)

	configs, err := f.manager.ListConfigs(ctx)
	require.NoError(t, err)
	assert.Empty(t, configs)
}

func TestUpdateRevalidatesReferences(t *testing.T) {
	f := newFixture(t, modelService.DefaultLLM{})
	ctx := context.Background()
	f.addModel(t, "m1")

	require.NoError(t, f.manager.CreateConfig(ctx, agentConfig("a1", "m1")))

	broken := agentConfig("a1", "gone")
	assert.ErrorIs(t, f.manager.UpdateConfig(ctx, broken), errno.ErrInvalidReference)
}

func TestIsBuiltinConfig(t *testing.T) {
	f := newFixture(t, modelService.DefaultLLM{})
	assert.True(t, f.manager.IsBuiltinConfig(errno.DefaultAgentName))
	assert.False(t, f.manager.IsBuiltinConfig("anything-else"))
}
