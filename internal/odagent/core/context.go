// Package core holds OdaContext, the root object that constructs every
// service and manager in dependency order and tears them down in reverse.
// It is a holder, not a singleton: tests construct their own.
package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/onedragon/odagent/internal/odagent/engine"
	engineInmemory "github.com/onedragon/odagent/internal/odagent/engine/inmemory"
	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	agentRepo "github.com/onedragon/odagent/internal/odagent/service/agent/domain/repo"
	agentService "github.com/onedragon/odagent/internal/odagent/service/agent/domain/service"
	agentBolt "github.com/onedragon/odagent/internal/odagent/service/agent/store/boltdb"
	agentInmemory "github.com/onedragon/odagent/internal/odagent/service/agent/store/inmemory"
	agentSQL "github.com/onedragon/odagent/internal/odagent/service/agent/store/sqldb"
	"github.com/onedragon/odagent/internal/odagent/service/mcp"
	mcpBolt "github.com/onedragon/odagent/internal/odagent/service/mcp/store/boltdb"
	mcpInmemory "github.com/onedragon/odagent/internal/odagent/service/mcp/store/inmemory"
	mcpSQL "github.com/onedragon/odagent/internal/odagent/service/mcp/store/sqldb"
	modelRepo "github.com/onedragon/odagent/internal/odagent/service/model/domain/repo"
	modelService "github.com/onedragon/odagent/internal/odagent/service/model/domain/service"
	modelBolt "github.com/onedragon/odagent/internal/odagent/service/model/store/boltdb"
	modelInmemory "github.com/onedragon/odagent/internal/odagent/service/model/store/inmemory"
	modelSQL "github.com/onedragon/odagent/internal/odagent/service/model/store/sqldb"
	"github.com/onedragon/odagent/internal/odagent/service/session"
	"github.com/onedragon/odagent/internal/odagent/service/tool"
	storageBolt "github.com/onedragon/odagent/internal/odagent/storage/boltdb"
	storageSQL "github.com/onedragon/odagent/internal/odagent/storage/sqldb"
	"github.com/onedragon/odagent/pkg/logger"
)

const moduleName = "core"

// OdaContext is the global resource holder. Start builds the component
// graph; Stop releases it. Accessors return nil outside the started window
// so lifecycle bugs surface immediately.
type OdaContext struct {
	config *OdaContextConfig

	mu      sync.Mutex
	started bool

	sessionService  engine.SessionService
	artifactService engine.ArtifactService
	memoryService   engine.MemoryService

	sqlDB  *storageSQL.DB
	boltDB *storageBolt.DB

	toolManager        *tool.OdaToolManager
	mcpManager         mcp.Manager
	modelConfigManager modelService.ModelConfigManager
	agentConfigManager *agentService.OdaAgentConfigManager
	agentManager       *agentService.OdaAgentManager
	sessionManager     *session.OdaSessionManager
}

// NewOdaContext creates an unstarted context. A nil config gets defaults.
func NewOdaContext(config *OdaContextConfig) *OdaContext {
	if config == nil {
		config = NewOdaContextConfig()
	}
	return &OdaContext{config: config}
}

// Start initializes all services and managers in dependency order. A second
// Start without an intervening Stop fails with errno.ErrInvalidState.
func (c *OdaContext) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return fmt.Errorf("context already started: %w", errno.ErrInvalidState)
	}

	// Engine services first; everything downstream binds to them.
	c.sessionService = engineInmemory.NewSessionService()
	c.artifactService = engineInmemory.NewArtifactService()
	c.memoryService = engineInmemory.NewMemoryService()

	modelStore, agentStore, mcpStore, err := c.buildStores()
	if err != nil {
		return err
	}

	c.toolManager = tool.NewOdaToolManager()

	c.mcpManager = mcp.NewManager(mcpStore)
	logger.InfoX(moduleName, "OdaMcpManager created")

	c.modelConfigManager = modelService.NewModelConfigManager(modelStore, modelService.DefaultLLM{
		BaseURL: c.config.DefaultLLMBaseURL,
		APIKey:  c.config.DefaultLLMAPIKey,
		Model:   c.config.DefaultLLMModel,
	})
	logger.InfoX(moduleName, "OdaModelConfigManager created")

	c.agentConfigManager = agentService.NewOdaAgentConfigManager(agentStore, c.modelConfigManager, c.mcpManager)
	logger.InfoX(moduleName, "OdaAgentConfigManager created")

	c.agentManager = agentService.NewOdaAgentManager(
		c.sessionService,
		c.artifactService,
		c.memoryService,
		c.toolManager,
		c.mcpManager,
		c.modelConfigManager,
		c.agentConfigManager,
		c.config.MaxRetries,
	)
	logger.InfoX(moduleName, "OdaAgentManager created")

	c.sessionManager = session.NewOdaSessionManager(c.sessionService, c.agentManager)
	if c.config.MaxConcurrentSessions > 0 {
		c.sessionManager.SetConcurrentLimit(c.config.MaxConcurrentSessions)
	}
	logger.InfoX(moduleName, "OdaSessionManager created")

	c.started = true
	return nil
}

func (c *OdaContext) buildStores() (modelRepo.ModelConfigRepository, agentRepo.AgentConfigRepository, mcp.ConfigRepository, error) {
	switch c.config.Storage {
	case StorageMemory:
		return modelInmemory.NewModelConfigStore(),
			agentInmemory.NewAgentConfigStore(),
			mcpInmemory.NewMcpConfigStore(),
			nil
	case StorageSQL:
		db, err := storageSQL.Open(c.config.SQLitePath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open sqlite at %s: %w", c.config.SQLitePath, err)
		}
		c.sqlDB = db
		logger.InfoX(moduleName, "using SQL config stores at %s", c.config.SQLitePath)
		return modelSQL.NewModelConfigStore(db),
			agentSQL.NewAgentConfigStore(db),
			mcpSQL.NewMcpConfigStore(db),
			nil
	case StorageBolt:
		db, err := storageBolt.Open(c.config.BoltPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open boltdb at %s: %w", c.config.BoltPath, err)
		}
		c.boltDB = db
		logger.InfoX(moduleName, "using Bolt config stores at %s", c.config.BoltPath)
		return modelBolt.NewModelConfigStore(db),
			agentBolt.NewAgentConfigStore(db),
			mcpBolt.NewMcpConfigStore(db),
			nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported storage type %q: %w", c.config.Storage, errno.ErrValidation)
	}
}

// Stop tears everything down in reverse dependency order: sessions first,
// then managers, then storage handles and engine services.
func (c *OdaContext) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return fmt.Errorf("context not started: %w", errno.ErrInvalidState)
	}

	if c.sessionManager != nil {
		c.sessionManager.Shutdown(ctx)
	}

	c.sessionManager = nil
	c.agentManager = nil
	c.agentConfigManager = nil
	c.modelConfigManager = nil
	c.mcpManager = nil
	c.toolManager = nil

	if c.sqlDB != nil {
		if err := c.sqlDB.Close(); err != nil {
			logger.WarnX(moduleName, "failed to close sqlite handle: %v", err)
		}
		c.sqlDB = nil
	}
	if c.boltDB != nil {
		if err := c.boltDB.Close(); err != nil {
			logger.WarnX(moduleName, "failed to close bolt handle: %v", err)
		}
		c.boltDB = nil
	}

	if c.artifactService != nil {
		_ = c.artifactService.Close(ctx)
	}
	if c.memoryService != nil {
		_ = c.memoryService.Close(ctx)
	}
	c.sessionService = nil
	c.artifactService = nil
	c.memoryService = nil

	c.started = false
	return nil
}

// Config returns the bootstrap configuration.
func (c *OdaContext) Config() *OdaContextConfig {
	return c.config
}

// SessionService returns the engine session service, or nil when the
// context is not started.
func (c *OdaContext) SessionService() engine.SessionService {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionService
}

// ArtifactService returns the engine artifact service, or nil.
func (c *OdaContext) ArtifactService() engine.ArtifactService {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.artifactService
}

// MemoryService returns the engine memory service, or nil.
func (c *OdaContext) MemoryService() engine.MemoryService {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.memoryService
}

// ToolManager returns the tool registry, or nil.
func (c *OdaContext) ToolManager() *tool.OdaToolManager {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.toolManager
}

// McpManager returns the MCP manager, or nil.
func (c *OdaContext) McpManager() mcp.Manager {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mcpManager
}

// ModelConfigManager returns the model config manager, or nil.
func (c *OdaContext) ModelConfigManager() modelService.ModelConfigManager {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modelConfigManager
}

// AgentConfigManager returns the agent config manager, or nil.
func (c *OdaContext) AgentConfigManager() *agentService.OdaAgentConfigManager {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agentConfigManager
}

// AgentManager returns the agent factory, or nil.
func (c *OdaContext) AgentManager() *agentService.OdaAgentManager {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agentManager
}

// SessionManager returns the session manager, or nil.
func (c *OdaContext) SessionManager() *session.OdaSessionManager {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionManager
}
