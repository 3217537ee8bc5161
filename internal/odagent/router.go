package odagent

import (
	"github.com/gin-gonic/gin"
	"github.com/onedragon/odagent/internal/odagent/core"
	v1 "github.com/onedragon/odagent/internal/odagent/handler/v1"
)

func initRouter(g *gin.Engine, odaCtx *core.OdaContext) {
	modelHandler := v1.NewModelHandler(odaCtx.ModelConfigManager())
	agentHandler := v1.NewAgentHandler(odaCtx.AgentConfigManager())
	mcpHandler := v1.NewMcpHandler(odaCtx.McpManager())
	sessionHandler := v1.NewSessionHandler(odaCtx.SessionManager())
	chatHandler := v1.NewChatHandler(odaCtx.SessionManager())

	apiV1 := g.Group("/v1")
	{
		models := apiV1.Group("/models")
		{
			models.POST("", modelHandler.Create)
			models.GET("", modelHandler.List)
			models.GET("/:model_id", modelHandler.Get)
			models.PUT("/:model_id", modelHandler.Update)
			models.DELETE("/:model_id", modelHandler.Delete)
		}

		agents := apiV1.Group("/agents")
		{
			agents.POST("", agentHandler.Create)
			agents.GET("", agentHandler.List)
			agents.GET("/:agent_name", agentHandler.Get)
			agents.PUT("/:agent_name", agentHandler.Update)
			agents.DELETE("/:agent_name", agentHandler.Delete)
		}

		apps := apiV1.Group("/apps/:app")
		{
			mcps := apps.Group("/mcps")
			{
				mcps.POST("", mcpHandler.Create)
				mcps.GET("", mcpHandler.List)
				mcps.GET("/:mcp_id", mcpHandler.Get)
				mcps.PUT("/:mcp_id", mcpHandler.Update)
				mcps.DELETE("/:mcp_id", mcpHandler.Delete)
			}

			sessions := apps.Group("/users/:user/sessions")
			{
				sessions.POST("", sessionHandler.Create)
				sessions.GET("", sessionHandler.List)
				sessions.GET("/:session_id", sessionHandler.Get)
				sessions.DELETE("/:session_id", sessionHandler.Delete)
				sessions.POST("/:session_id/chat", chatHandler.Handle)
			}
		}
	}
}
