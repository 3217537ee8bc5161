// Package einoengine implements the engine facade on top of the eino
// framework: chat models come from the openai-compatible component, tool
// calling runs through the react agent flow, and runner output is adapted
// into the engine event schema.
package einoengine

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"
)

// ToolSource yields engine tools on demand. MCP toolset handles satisfy
// this so server connections are deferred until the agent actually runs.
type ToolSource interface {
	Tools(ctx context.Context) ([]tool.BaseTool, error)
}

// Agent is one engine agent instance: a named model binding plus the tool
// handles it may call. Instances are built per session by the agent factory
// and are not shared.
type Agent struct {
	name        string
	instruction string
	chatModel   model.ToolCallingChatModel
	tools       []tool.BaseTool
	toolsets    []ToolSource
}

// AgentSpec carries everything needed to construct an Agent.
type AgentSpec struct {
	Name        string
	Instruction string
	ChatModel   model.ToolCallingChatModel
	Tools       []tool.BaseTool
	Toolsets    []ToolSource
}

// NewAgent builds an engine agent from a spec.
func NewAgent(spec AgentSpec) (*Agent, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("agent name is required")
	}
	if spec.ChatModel == nil {
		return nil, fmt.Errorf("agent %q: chat model is required", spec.Name)
	}
	return &Agent{
		name:        spec.Name,
		instruction: spec.Instruction,
		chatModel:   spec.ChatModel,
		tools:       spec.Tools,
		toolsets:    spec.Toolsets,
	}, nil
}

// Name returns the agent name, used as the author of its events.
func (a *Agent) Name() string {
	return a.name
}

// stream executes one model turn over the prepared messages. With tools
// present the react flow handles the tool-call loop; without tools the
// chat model is streamed directly. Toolset handles are materialized here,
// on first use, not at agent construction.
func (a *Agent) stream(ctx context.Context, messages []*schema.Message) (*schema.StreamReader[*schema.Message], error) {
	tools := make([]tool.BaseTool, 0, len(a.tools))
	tools = append(tools, a.tools...)
	for _, ts := range a.toolsets {
		resolved, err := ts.Tools(ctx)
		if err != nil {
			return nil, fmt.Errorf("agent %q: failed to resolve toolset: %w", a.name, err)
		}
		tools = append(tools, resolved...)
	}

	if len(tools) == 0 {
		return a.chatModel.Stream(ctx, messages)
	}

	ra, err := react.NewAgent(ctx, &react.AgentConfig{
		ToolCallingModel: a.chatModel,
		ToolsConfig: compose.ToolsNodeConfig{
			Tools: tools,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build react agent %q: %w", a.name, err)
	}
	return ra.Stream(ctx, messages)
}

// NewOpenAIChatModel builds a tool-calling chat model against an
// openai-compatible endpoint.
func NewOpenAIChatModel(ctx context.Context, baseURL, apiKey, modelName string) (model.ToolCallingChatModel, error) {
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   modelName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build chat model %q: %w", modelName, err)
	}
	return cm, nil
}
