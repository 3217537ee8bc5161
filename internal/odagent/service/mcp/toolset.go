package mcp

import (
	"context"
	"fmt"
	"sync"

	mcpTool "github.com/cloudwego/eino-ext/components/tool/mcp"
	"github.com/cloudwego/eino/components/tool"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/onedragon/odagent/pkg/logger"
)

// Toolset is an opaque handle over one MCP config. The engine materializes
// it into tools on first use; until then no connection is opened. Each
// agent creation gets its own handle, so closing one agent's toolset never
// disturbs another's.
type Toolset struct {
	config *OdaMcpConfig

	mu     sync.Mutex
	client client.MCPClient
	tools  []tool.BaseTool
}

// NewToolset wraps a resolved config. The connection is established lazily
// by Tools.
func NewToolset(config *OdaMcpConfig) *Toolset {
	return &Toolset{config: config}
}

// GlobalID returns the "app_name:mcp_id" identifier of the backing config.
func (t *Toolset) GlobalID() string {
	return t.config.GlobalID()
}

// Tools connects to the MCP server on first call and returns the discovered
// tools, filtered by the config's tool filter.
func (t *Toolset) Tools(ctx context.Context) ([]tool.BaseTool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tools != nil {
		return t.tools, nil
	}

	cli, err := t.createClient()
	if err != nil {
		return nil, fmt.Errorf("mcp %q: failed to create client: %w", t.GlobalID(), err)
	}

	initReq := mcpproto.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcpproto.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcpproto.Implementation{
		Name:    "OneDragon-Agent",
		Version: "0.1.0",
	}
	if _, err := cli.Initialize(ctx, initReq); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("mcp %q: failed to initialize: %w", t.GlobalID(), err)
	}

	tools, err := mcpTool.GetTools(ctx, &mcpTool.Config{
		Cli:          cli,
		ToolNameList: t.config.ToolFilter,
	})
	if err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("mcp %q: failed to get tools: %w", t.GlobalID(), err)
	}

	t.client = cli
	t.tools = tools
	logger.InfoX(moduleName, "toolset %s connected (%d tools)", t.GlobalID(), len(tools))
	return tools, nil
}

// Close disconnects the MCP client if a connection was opened.
func (t *Toolset) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	t.tools = nil
	return err
}

func (t *Toolset) createClient() (client.MCPClient, error) {
	cfg := t.config
	switch cfg.ServerType {
	case ServerTypeStdio:
		env := make([]string, 0, len(cfg.Env))
		for k, v := range cfg.Env {
			env = append(env, k+"="+v)
		}
		return client.NewStdioMCPClient(cfg.Command, env, cfg.Args...)
	case ServerTypeSSE:
		if len(cfg.Headers) > 0 {
			return client.NewSSEMCPClient(cfg.URL, transport.WithHeaders(cfg.Headers))
		}
		return client.NewSSEMCPClient(cfg.URL)
	case ServerTypeHTTP:
		if len(cfg.Headers) > 0 {
			return client.NewStreamableHttpClient(cfg.URL, transport.WithHTTPHeaders(cfg.Headers))
		}
		return client.NewStreamableHttpClient(cfg.URL)
	default:
		return nil, fmt.Errorf("unknown server type: %s", cfg.ServerType)
	}
}
