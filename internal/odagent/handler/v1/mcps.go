package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/internal/odagent/service/mcp"
)

// McpHandler exposes custom MCP config CRUD scoped by app. Built-in
// configs are readable through Get/List but mutate only via code.
type McpHandler struct {
	manager mcp.Manager
}

// NewMcpHandler creates an McpHandler.
func NewMcpHandler(manager mcp.Manager) *McpHandler {
	return &McpHandler{manager: manager}
}

// Create handles POST /v1/apps/:app/mcps.
func (h *McpHandler) Create(c *gin.Context) {
	req := &McpConfigRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		writeBindError(c, err)
		return
	}
	config := req.ToEntity(c.Param("app"))
	if err := h.manager.RegisterCustomConfig(c.Request.Context(), config); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"global_id": config.GlobalID()})
}

// Get handles GET /v1/apps/:app/mcps/:mcp_id.
func (h *McpHandler) Get(c *gin.Context) {
	appName, mcpID := c.Param("app"), c.Param("mcp_id")
	config, err := h.manager.GetConfig(c.Request.Context(), appName, mcpID)
	if err != nil {
		writeError(c, err)
		return
	}
	if config == nil {
		writeError(c, fmt.Errorf("mcp config %q: %w", mcp.GlobalID(appName, mcpID), errno.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, config)
}

// Update handles PUT /v1/apps/:app/mcps/:mcp_id.
func (h *McpHandler) Update(c *gin.Context) {
	req := &McpConfigRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		writeBindError(c, err)
		return
	}
	appName, mcpID := c.Param("app"), c.Param("mcp_id")
	config := req.ToEntity(appName)
	config.McpID = mcpID
	if err := h.manager.UpdateCustomConfig(c.Request.Context(), appName, mcpID, config); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"global_id": config.GlobalID()})
}

// Delete handles DELETE /v1/apps/:app/mcps/:mcp_id.
func (h *McpHandler) Delete(c *gin.Context) {
	appName, mcpID := c.Param("app"), c.Param("mcp_id")
	if err := h.manager.UnregisterCustomConfig(c.Request.Context(), appName, mcpID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"global_id": mcp.GlobalID(appName, mcpID), "deleted": true})
}

// List handles GET /v1/apps/:app/mcps, returning both tiers keyed by
// global id.
func (h *McpHandler) List(c *gin.Context) {
	configs, err := h.manager.ListConfigs(c.Request.Context(), c.Param("app"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": configs})
}
