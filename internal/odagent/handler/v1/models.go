package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	modelService "github.com/onedragon/odagent/internal/odagent/service/model/domain/service"
)

// ModelHandler exposes model config CRUD.
type ModelHandler struct {
	manager modelService.ModelConfigManager
}

// NewModelHandler creates a ModelHandler.
func NewModelHandler(manager modelService.ModelConfigManager) *ModelHandler {
	return &ModelHandler{manager: manager}
}

// Create handles POST /v1/models.
func (h *ModelHandler) Create(c *gin.Context) {
	req := &ModelConfigRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		writeBindError(c, err)
		return
	}
	if err := h.manager.CreateConfig(c.Request.Context(), req.ToEntity()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"model_id": req.ModelID})
}

// Get handles GET /v1/models/:model_id.
func (h *ModelHandler) Get(c *gin.Context) {
	modelID := c.Param("model_id")
	config, err := h.manager.GetConfig(c.Request.Context(), modelID)
	if err != nil {
		writeError(c, err)
		return
	}
	if config == nil {
		writeError(c, fmt.Errorf("model config %q: %w", modelID, errno.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, NewModelConfigResponse(config))
}

// Update handles PUT /v1/models/:model_id.
func (h *ModelHandler) Update(c *gin.Context) {
	req := &ModelConfigRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		writeBindError(c, err)
		return
	}
	config := req.ToEntity()
	config.ModelID = c.Param("model_id")
	if err := h.manager.UpdateConfig(c.Request.Context(), config); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"model_id": config.ModelID})
}

// Delete handles DELETE /v1/models/:model_id.
func (h *ModelHandler) Delete(c *gin.Context) {
	modelID := c.Param("model_id")
	if err := h.manager.DeleteConfig(c.Request.Context(), modelID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"model_id": modelID, "deleted": true})
}

// List handles GET /v1/models.
func (h *ModelHandler) List(c *gin.Context) {
	configs, err := h.manager.ListConfigs(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]ModelConfigResponse, 0, len(configs))
	for _, config := range configs {
		resp = append(resp, NewModelConfigResponse(config))
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
