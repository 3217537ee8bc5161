package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/onedragon/odagent/internal/odagent/engine"
	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/internal/odagent/service/agent/domain/service/runtime"
	"github.com/onedragon/odagent/internal/odagent/service/session"
)

// ChatHandler dispatches user messages into sessions and streams the
// resulting events.
type ChatHandler struct {
	manager *session.OdaSessionManager
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(manager *session.OdaSessionManager) *ChatHandler {
	return &ChatHandler{manager: manager}
}

// Handle handles POST /v1/apps/:app/users/:user/sessions/:session_id/chat.
// With stream=true the events are relayed over SSE as they arrive;
// otherwise the final assistant content is returned once the run ends.
func (h *ChatHandler) Handle(c *gin.Context) {
	req := &ChatRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		writeBindError(c, err)
		return
	}

	s, err := h.manager.GetSession(c.Request.Context(), c.Param("app"), c.Param("user"), c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if s == nil {
		writeError(c, fmt.Errorf("session %q: %w", c.Param("session_id"), errno.ErrNotFound))
		return
	}

	stream, err := s.ProcessMessage(c.Request.Context(), req.Message, req.AgentName)
	if err != nil {
		writeError(c, err)
		return
	}
	defer stream.Close()

	if req.Stream {
		h.relaySSE(c, stream)
		return
	}
	h.collect(c, stream)
}

func (h *ChatHandler) relaySSE(c *gin.Context, stream interface {
	Recv() (*engine.Event, error)
}) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	w := c.Writer
	for {
		ev, err := stream.Recv()
		if err != nil {
			_ = sse.Encode(w, sse.Event{Event: "done", Data: "[DONE]"})
			w.Flush()
			return
		}
		_ = sse.Encode(w, sse.Event{Event: "event", Data: ev})
		w.Flush()
	}
}

func (h *ChatHandler) collect(c *gin.Context, stream interface {
	Recv() (*engine.Event, error)
}) {
	resp := ChatResponse{}
	for {
		ev, err := stream.Recv()
		if err != nil {
			break
		}
		if ev.ErrorCode == runtime.ErrorCodeMaxRetriesExceeded {
			resp.Failed = true
			resp.Error = ev.ErrorMessage
			continue
		}
		if ev.Partial || ev.IsError() || ev.Content == nil {
			continue
		}
		if ev.Author != engine.RoleUser && ev.Author != engine.AuthorSystem {
			resp.Content = ev.Content.Text()
		}
	}
	c.JSON(http.StatusOK, resp)
}
