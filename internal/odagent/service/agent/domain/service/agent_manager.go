package service

import (
	"context"
	"fmt"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/onedragon/odagent/internal/odagent/engine"
	"github.com/onedragon/odagent/internal/odagent/engine/einoengine"
	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/internal/odagent/service/agent/domain/entity"
	"github.com/onedragon/odagent/internal/odagent/service/agent/domain/service/runtime"
	"github.com/onedragon/odagent/internal/odagent/service/mcp"
	modelService "github.com/onedragon/odagent/internal/odagent/service/model/domain/service"
	"github.com/onedragon/odagent/internal/odagent/service/tool"
	"github.com/onedragon/odagent/pkg/logger"
)

const moduleName = "agent"

// OdaAgentManager materializes agent instances: it resolves an agent config
// into an engine agent bound to a session triple and wraps the resulting
// runner in a retrying executor. The manager is stateless beyond its held
// service references; every call produces a fresh executor.
type OdaAgentManager struct {
	sessionService  engine.SessionService
	artifactService engine.ArtifactService
	memoryService   engine.MemoryService

	toolManager        *tool.OdaToolManager
	mcpManager         mcp.Manager
	modelManager       modelService.ModelConfigManager
	agentConfigManager *OdaAgentConfigManager

	maxRetries int
}

// NewOdaAgentManager creates the factory. maxRetries configures every
// executor it produces; non-positive values fall back to the runtime
// default.
func NewOdaAgentManager(
	sessionService engine.SessionService,
	artifactService engine.ArtifactService,
	memoryService engine.MemoryService,
	toolManager *tool.OdaToolManager,
	mcpManager mcp.Manager,
	modelManager modelService.ModelConfigManager,
	agentConfigManager *OdaAgentConfigManager,
	maxRetries int,
) *OdaAgentManager {
	return &OdaAgentManager{
		sessionService:     sessionService,
		artifactService:    artifactService,
		memoryService:      memoryService,
		toolManager:        toolManager,
		mcpManager:         mcpManager,
		modelManager:       modelManager,
		agentConfigManager: agentConfigManager,
		maxRetries:         maxRetries,
	}
}

// CreateAgent builds an executor for agentName bound to the session triple.
func (m *OdaAgentManager) CreateAgent(ctx context.Context, agentName, appName, userID, sessionID string) (*runtime.OdaAgent, error) {
	config, err := m.agentConfigManager.GetConfig(ctx, agentName)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, fmt.Errorf("agent config %q: %w", agentName, errno.ErrNotFound)
	}

	modelConfig, err := m.modelManager.GetConfig(ctx, config.ModelConfigID)
	if err != nil {
		return nil, err
	}
	if modelConfig == nil {
		return nil, fmt.Errorf("agent %q: model config %q: %w",
			agentName, config.ModelConfigID, errno.ErrInvalidReference)
	}

	tools, err := m.resolveTools(config)
	if err != nil {
		return nil, err
	}

	toolsets, sources, err := m.resolveToolsets(ctx, config)
	if err != nil {
		return nil, err
	}

	chatModel, err := einoengine.NewOpenAIChatModel(ctx, modelConfig.BaseURL, modelConfig.APIKey, modelConfig.Model)
	if err != nil {
		return nil, err
	}

	agent, err := einoengine.NewAgent(einoengine.AgentSpec{
		Name:        config.AgentName,
		Instruction: config.Instruction,
		ChatModel:   chatModel,
		Tools:       tools,
		Toolsets:    sources,
	})
	if err != nil {
		return nil, err
	}

	runner := einoengine.NewRunner(appName, agent, m.sessionService, m.artifactService, m.memoryService)

	odaAgent := runtime.NewOdaAgent(runner, appName, userID, sessionID, m.maxRetries)
	for _, ts := range toolsets {
		odaAgent.AttachResource(ts)
	}

	logger.InfoX(moduleName, "created agent instance: %s for session %s", agentName, sessionID)
	return odaAgent, nil
}

// resolveTools looks up every referenced tool handle. A missing tool is an
// invalid reference; tool ids are checked here only, not when the agent
// config is written.
func (m *OdaAgentManager) resolveTools(config *entity.OdaAgentConfig) ([]einotool.BaseTool, error) {
	tools := make([]einotool.BaseTool, 0, len(config.ToolIDs))
	for _, toolID := range config.ToolIDs {
		handle := m.toolManager.GetTool(config.AppName, toolID)
		if handle == nil {
			return nil, fmt.Errorf("agent %q: tool %q: %w",
				config.AgentName, tool.GlobalID(config.AppName, toolID), errno.ErrInvalidReference)
		}
		tools = append(tools, handle)
	}
	return tools, nil
}

// resolveToolsets creates one fresh toolset handle per referenced MCP
// config. Handles connect lazily; the executor owns their cleanup.
func (m *OdaAgentManager) resolveToolsets(ctx context.Context, config *entity.OdaAgentConfig) ([]*mcp.Toolset, []einoengine.ToolSource, error) {
	toolsets := make([]*mcp.Toolset, 0, len(config.McpIDs))
	sources := make([]einoengine.ToolSource, 0, len(config.McpIDs))
	for _, mcpID := range config.McpIDs {
		ts, err := m.mcpManager.CreateToolset(ctx, config.AppName, mcpID)
		if err != nil {
			return nil, nil, fmt.Errorf("agent %q: mcp %q: %w", config.AgentName, mcpID, err)
		}
		toolsets = append(toolsets, ts)
		sources = append(sources, ts)
	}
	return toolsets, sources, nil
}
