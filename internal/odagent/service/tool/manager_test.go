package tool

import (
	"context"
	"testing"

	einotool "github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticTool struct {
	name string
}

func (t *staticTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{Name: t.name, Desc: "static test tool"}, nil
}

func TestRegisterAndGetTool(t *testing.T) {
	m := NewOdaToolManager()

	require.NoError(t, m.RegisterTool(&staticTool{name: "echo"}, "app", "echo"))
	assert.NotNil(t, m.GetTool("app", "echo"))
	assert.Nil(t, m.GetTool("app", "missing"))
	assert.Nil(t, m.GetTool("other", "echo"))
}

func TestRegisterDuplicateFails(t *testing.T) {
	m := NewOdaToolManager()

	require.NoError(t, m.RegisterTool(&staticTool{name: "echo"}, "app", "echo"))
	assert.ErrorIs(t, m.RegisterTool(&staticTool{name: "echo"}, "app", "echo"), errno.ErrAlreadyExists)

	// Same tool id in another app is fine.
	assert.NoError(t, m.RegisterTool(&staticTool{name: "echo"}, "other", "echo"))
}

func TestRegisterValidation(t *testing.T) {
	m := NewOdaToolManager()

	assert.ErrorIs(t, m.RegisterTool(nil, "app", "t"), errno.ErrValidation)
	assert.ErrorIs(t, m.RegisterTool(&staticTool{}, "", "t"), errno.ErrValidation)
	assert.ErrorIs(t, m.RegisterTool(&staticTool{}, "app", ""), errno.ErrValidation)
}

func TestRegisterFuncWrapsInvokable(t *testing.T) {
	m := NewOdaToolManager()

	fn := func(_ context.Context, argumentsInJSON string) (string, error) {
		return argumentsInJSON, nil
	}
	info := &schema.ToolInfo{Name: "echo", Desc: "echoes its arguments"}
	require.NoError(t, m.RegisterFunc(fn, info, "app", "echo"))

	handle := m.GetTool("app", "echo")
	require.NotNil(t, handle)

	invokable, ok := handle.(einotool.InvokableTool)
	require.True(t, ok)

	out, err := invokable.InvokableRun(context.Background(), `{"text":"hi"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"text":"hi"}`, out)

	gotInfo, err := handle.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "echo", gotInfo.Name)
}

func TestRegisterFuncValidation(t *testing.T) {
	m := NewOdaToolManager()

	assert.ErrorIs(t, m.RegisterFunc(nil, &schema.ToolInfo{Name: "x"}, "app", "x"), errno.ErrValidation)
	assert.ErrorIs(t, m.RegisterFunc(func(context.Context, string) (string, error) { return "", nil }, nil, "app", "x"), errno.ErrValidation)
}

func TestListToolsGlobalIDs(t *testing.T) {
	m := NewOdaToolManager()

	require.NoError(t, m.RegisterTool(&staticTool{name: "a"}, "app", "a"))
	require.NoError(t, m.RegisterTool(&staticTool{name: "b"}, "app", "b"))
	require.NoError(t, m.RegisterTool(&staticTool{name: "c"}, "other", "c"))

	all := m.ListTools("")
	assert.Len(t, all, 3)
	assert.Contains(t, all, "app:a")
	assert.Contains(t, all, "other:c")

	scoped := m.ListTools("app")
	assert.Len(t, scoped, 2)
	assert.Contains(t, scoped, "app:b")
}

func TestGlobalIDFormat(t *testing.T) {
	assert.Equal(t, "app:tool", GlobalID("app", "tool"))
}
