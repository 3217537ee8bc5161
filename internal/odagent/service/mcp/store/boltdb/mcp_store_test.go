package boltdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/internal/odagent/service/mcp"
	"github.com/onedragon/odagent/internal/odagent/storage/boltdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *McpConfigStore {
	t.Helper()
	db, err := boltdb.Open(filepath.Join(t.TempDir(), "test.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewMcpConfigStore(db)
}

func config(appName, mcpID string) *mcp.OdaMcpConfig {
	return &mcp.OdaMcpConfig{
		AppName:    appName,
		McpID:      mcpID,
		Name:       "filesystem",
		ServerType: mcp.ServerTypeStdio,
		Command:    "npx",
	}
}

func TestBoltRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	original := config("app", "fs")
	require.NoError(t, s.Create(ctx, original))

	got, err := s.Get(ctx, "app", "fs")
	require.NoError(t, err)
	assert.Equal(t, original, got)

	got.Description = "updated"
	require.NoError(t, s.Update(ctx, got))

	updated, err := s.Get(ctx, "app", "fs")
	require.NoError(t, err)
	assert.Equal(t, "updated", updated.Description)

	require.NoError(t, s.Delete(ctx, "app", "fs"))
	gone, err := s.Get(ctx, "app", "fs")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestBoltCreateDuplicate(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, config("app", "fs")))
	assert.ErrorIs(t, s.Create(ctx, config("app", "fs")), errno.ErrAlreadyExists)
}

func TestBoltUpdateMissing(t *testing.T) {
	s := newStore(t)
	assert.ErrorIs(t, s.Update(context.Background(), config("app", "ghost")), errno.ErrNotFound)
}

func TestBoltKeysScopedByApp(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, config("app-a", "fs")))
	require.NoError(t, s.Create(ctx, config("app-b", "fs")))

	configs, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, configs, 2)

	got, err := s.Get(ctx, "app-a", "fs")
	require.NoError(t, err)
	assert.Equal(t, "app-a", got.AppName)
}
