// Package tool holds the in-process registry of engine tool handles.
// Tools are registered through code at startup and looked up by
// (app_name, tool_id); the registry does not own tool lifetimes.
package tool

import (
	"context"
	"fmt"
	"sync"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/pkg/logger"
)

const moduleName = "tool"

// InvokeFunc is the signature accepted by RegisterFunc: a plain function
// taking the tool arguments as JSON and returning the tool result.
type InvokeFunc func(ctx context.Context, argumentsInJSON string) (string, error)

// OdaToolManager indexes engine tool handles per app.
type OdaToolManager struct {
	mu sync.RWMutex

	// appIndex maps app_name -> tool_id -> handle.
	appIndex map[string]map[string]einotool.BaseTool
}

// NewOdaToolManager creates an empty registry.
func NewOdaToolManager() *OdaToolManager {
	return &OdaToolManager{
		appIndex: make(map[string]map[string]einotool.BaseTool),
	}
}

// RegisterTool stores a pre-built engine-compatible tool handle.
func (m *OdaToolManager) RegisterTool(handle einotool.BaseTool, appName, toolID string) error {
	if handle == nil {
		return fmt.Errorf("tool handle is required: %w", errno.ErrValidation)
	}
	if appName == "" {
		return fmt.Errorf("app_name cannot be empty: %w", errno.ErrValidation)
	}
	if toolID == "" {
		return fmt.Errorf("tool_id cannot be empty: %w", errno.ErrValidation)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.appIndex[appName][toolID]; ok {
		return fmt.Errorf("tool %q: %w", GlobalID(appName, toolID), errno.ErrAlreadyExists)
	}
	if m.appIndex[appName] == nil {
		m.appIndex[appName] = make(map[string]einotool.BaseTool)
	}
	m.appIndex[appName][toolID] = handle

	logger.InfoX(moduleName, "registered tool: %s", GlobalID(appName, toolID))
	return nil
}

// RegisterFunc wraps fn into an engine-compatible invokable tool described
// by info and registers it.
func (m *OdaToolManager) RegisterFunc(fn InvokeFunc, info *schema.ToolInfo, appName, toolID string) error {
	if fn == nil {
		return fmt.Errorf("fn is required: %w", errno.ErrValidation)
	}
	if info == nil {
		return fmt.Errorf("tool info is required: %w", errno.ErrValidation)
	}
	return m.RegisterTool(&funcTool{info: info, fn: fn}, appName, toolID)
}

// GetTool returns the handle for (app_name, tool_id), or nil.
func (m *OdaToolManager) GetTool(appName, toolID string) einotool.BaseTool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.appIndex[appName][toolID]
}

// ListTools returns handles keyed by "app_name:tool_id". An empty appName
// lists every app.
func (m *OdaToolManager) ListTools(appName string) map[string]einotool.BaseTool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]einotool.BaseTool)
	for app, tools := range m.appIndex {
		if appName != "" && app != appName {
			continue
		}
		for toolID, handle := range tools {
			result[GlobalID(app, toolID)] = handle
		}
	}
	return result
}

// GlobalID formats the global tool identifier "app_name:tool_id".
func GlobalID(appName, toolID string) string {
	return fmt.Sprintf("%s:%s", appName, toolID)
}

// funcTool adapts a plain function into an engine invokable tool.
type funcTool struct {
	info *schema.ToolInfo
	fn   InvokeFunc
}

var _ einotool.InvokableTool = (*funcTool)(nil)

func (t *funcTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return t.info, nil
}

func (t *funcTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...einotool.Option) (string, error) {
	return t.fn(ctx, argumentsInJSON)
}
