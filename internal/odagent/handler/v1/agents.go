package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	agentService "github.com/onedragon/odagent/internal/odagent/service/agent/domain/service"
)

// AgentHandler exposes agent config CRUD.
type AgentHandler struct {
	manager *agentService.OdaAgentConfigManager
}

// NewAgentHandler creates an AgentHandler.
func NewAgentHandler(manager *agentService.OdaAgentConfigManager) *AgentHandler {
	return &AgentHandler{manager: manager}
}

// Create handles POST /v1/agents.
func (h *AgentHandler) Create(c *gin.Context) {
	req := &AgentConfigRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		writeBindError(c, err)
		return
	}
	if err := h.manager.CreateConfig(c.Request.Context(), req.ToEntity()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"agent_name": req.AgentName})
}

// Get handles GET /v1/agents/:agent_name.
func (h *AgentHandler) Get(c *gin.Context) {
	agentName := c.Param("agent_name")
	config, err := h.manager.GetConfig(c.Request.Context(), agentName)
	if err != nil {
		writeError(c, err)
		return
	}
	if config == nil {
		writeError(c, fmt.Errorf("agent config %q: %w", agentName, errno.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, config)
}

// Update handles PUT /v1/agents/:agent_name.
func (h *AgentHandler) Update(c *gin.Context) {
	req := &AgentConfigRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		writeBindError(c, err)
		return
	}
	config := req.ToEntity()
	config.AgentName = c.Param("agent_name")
	if err := h.manager.UpdateConfig(c.Request.Context(), config); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agent_name": config.AgentName})
}

// Delete handles DELETE /v1/agents/:agent_name.
func (h *AgentHandler) Delete(c *gin.Context) {
	agentName := c.Param("agent_name")
	if err := h.manager.DeleteConfig(c.Request.Context(), agentName); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agent_name": agentName, "deleted": true})
}

// List handles GET /v1/agents. The built-in config is surfaced only via
// Get, never listed.
func (h *AgentHandler) List(c *gin.Context) {
	configs, err := h.manager.ListConfigs(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": configs})
}
