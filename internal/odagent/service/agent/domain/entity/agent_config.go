package entity

import (
	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
)

// AgentTypeLLM is the only agent type the runtime currently materializes.
const AgentTypeLLM = "llm_agent"

// OdaAgentConfig describes one agent: the model it speaks through, the
// tools and MCP toolsets it may call, and its instruction.
//
// agent_name is unique within app_name. The reserved name "default"
// denotes the built-in agent bound to the built-in default model config;
// it is immutable and never persisted.
type OdaAgentConfig struct {
	AppName       string   `json:"app_name"`
	AgentName     string   `json:"agent_name"`
	AgentType     string   `json:"agent_type"`
	Description   string   `json:"description"`
	Instruction   string   `json:"instruction"`
	ModelConfigID string   `json:"model_config_id"`
	ToolIDs       []string `json:"tool_ids"`
	McpIDs        []string `json:"mcp_ids"`
	SubAgentNames []string `json:"sub_agent_names"`
}

// NewDefaultAgentConfig builds the built-in agent config for one app. It
// references the reserved default model config, so materializing it fails
// unless the bootstrap LLM settings were provided.
func NewDefaultAgentConfig(appName string) *OdaAgentConfig {
	return &OdaAgentConfig{
		AppName:       appName,
		AgentName:     errno.DefaultAgentName,
		AgentType:     AgentTypeLLM,
		Description:   "Built-in default agent",
		Instruction:   "You are a helpful assistant.",
		ModelConfigID: errno.DefaultLLMConfigID,
		ToolIDs:       []string{},
		McpIDs:        []string{},
		SubAgentNames: []string{},
	}
}
