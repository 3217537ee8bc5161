package v1

import (
	"github.com/jinzhu/copier"
	agentEntity "github.com/onedragon/odagent/internal/odagent/service/agent/domain/entity"
	"github.com/onedragon/odagent/internal/odagent/service/mcp"
	modelEntity "github.com/onedragon/odagent/internal/odagent/service/model/domain/entity"
)

// ModelConfigRequest is the request/response body for model config CRUD.
type ModelConfigRequest struct {
	AppName string `json:"app_name" binding:"required"`
	ModelID string `json:"model_id" binding:"required"`
	BaseURL string `json:"base_url" binding:"required"`
	APIKey  string `json:"api_key" binding:"required"`
	Model   string `json:"model" binding:"required"`
}

// ToEntity converts the DTO into the domain record.
func (r *ModelConfigRequest) ToEntity() *modelEntity.OdaModelConfig {
	out := &modelEntity.OdaModelConfig{}
	_ = copier.Copy(out, r)
	return out
}

// ModelConfigResponse mirrors a model config without the credential.
type ModelConfigResponse struct {
	AppName string `json:"app_name"`
	ModelID string `json:"model_id"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
}

// NewModelConfigResponse converts a domain record into the response DTO.
func NewModelConfigResponse(config *modelEntity.OdaModelConfig) ModelConfigResponse {
	out := ModelConfigResponse{}
	_ = copier.Copy(&out, config)
	return out
}

// AgentConfigRequest is the request body for agent config CRUD.
type AgentConfigRequest struct {
	AppName       string   `json:"app_name" binding:"required"`
	AgentName     string   `json:"agent_name" binding:"required"`
	AgentType     string   `json:"agent_type"`
	Description   string   `json:"description"`
	Instruction   string   `json:"instruction"`
	ModelConfigID string   `json:"model_config_id" binding:"required"`
	ToolIDs       []string `json:"tool_ids"`
	McpIDs        []string `json:"mcp_ids"`
	SubAgentNames []string `json:"sub_agent_names"`
}

// ToEntity converts the DTO into the domain record.
func (r *AgentConfigRequest) ToEntity() *agentEntity.OdaAgentConfig {
	out := &agentEntity.OdaAgentConfig{}
	_ = copier.Copy(out, r)
	if out.AgentType == "" {
		out.AgentType = agentEntity.AgentTypeLLM
	}
	return out
}

// McpConfigRequest is the request body for custom MCP config CRUD.
type McpConfigRequest struct {
	McpID       string            `json:"mcp_id" binding:"required"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	ServerType  string            `json:"server_type" binding:"required"`
	Command     string            `json:"command"`
	Args        []string          `json:"args"`
	URL         string            `json:"url"`
	Env         map[string]string `json:"env"`
	Headers     map[string]string `json:"headers"`
	ToolFilter  []string          `json:"tool_filter"`
	Timeout     int               `json:"timeout"`
	RetryCount  int               `json:"retry_count"`
}

// ToEntity converts the DTO into the domain record for appName.
func (r *McpConfigRequest) ToEntity(appName string) *mcp.OdaMcpConfig {
	out := &mcp.OdaMcpConfig{}
	_ = copier.Copy(out, r)
	out.AppName = appName
	out.TimeoutSeconds = r.Timeout
	return out
}

// SessionResponse describes one session wrapper.
type SessionResponse struct {
	AppName    string `json:"app_name"`
	UserID     string `json:"user_id"`
	SessionID  string `json:"session_id"`
	AgentCount int    `json:"agent_count"`
}

// CreateSessionRequest carries the optional session id.
type CreateSessionRequest struct {
	SessionID string `json:"session_id"`
}

// ChatRequest carries one user message for a session.
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	AgentName string `json:"agent_name"`
	Stream    bool   `json:"stream"`
}

// ChatResponse is the non-streaming chat result.
type ChatResponse struct {
	Content string `json:"content"`
	Failed  bool   `json:"failed,omitempty"`
	Error   string `json:"error,omitempty"`
}
