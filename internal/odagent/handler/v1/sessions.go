package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/internal/odagent/service/session"
)

// SessionHandler exposes session lifecycle endpoints.
type SessionHandler struct {
	manager *session.OdaSessionManager
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(manager *session.OdaSessionManager) *SessionHandler {
	return &SessionHandler{manager: manager}
}

func sessionResponse(s *session.OdaSession) SessionResponse {
	return SessionResponse{
		AppName:    s.AppName(),
		UserID:     s.UserID(),
		SessionID:  s.SessionID(),
		AgentCount: s.AgentCount(),
	}
}

// Create handles POST /v1/apps/:app/users/:user/sessions.
func (h *SessionHandler) Create(c *gin.Context) {
	req := &CreateSessionRequest{}
	if err := c.ShouldBindJSON(req); err != nil && c.Request.ContentLength > 0 {
		writeBindError(c, err)
		return
	}

	s, err := h.manager.CreateSession(c.Request.Context(), c.Param("app"), c.Param("user"), req.SessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse(s))
}

// Get handles GET /v1/apps/:app/users/:user/sessions/:session_id.
func (h *SessionHandler) Get(c *gin.Context) {
	s, err := h.manager.GetSession(c.Request.Context(), c.Param("app"), c.Param("user"), c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if s == nil {
		writeError(c, fmt.Errorf("session %q: %w", c.Param("session_id"), errno.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, sessionResponse(s))
}

// List handles GET /v1/apps/:app/users/:user/sessions.
func (h *SessionHandler) List(c *gin.Context) {
	sessions := h.manager.ListSessions(c.Request.Context(), c.Param("app"), c.Param("user"))
	resp := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, sessionResponse(s))
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// Delete handles DELETE /v1/apps/:app/users/:user/sessions/:session_id.
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.manager.DeleteSession(c.Request.Context(), c.Param("app"), c.Param("user"), c.Param("session_id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": c.Param("session_id"), "deleted": true})
}
