package sqldb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/internal/odagent/service/model/domain/entity"
	"github.com/onedragon/odagent/internal/odagent/storage/sqldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *ModelConfigStore {
	t.Helper()
	db, err := sqldb.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewModelConfigStore(db)
}

func config(modelID string) *entity.OdaModelConfig {
	return &entity.OdaModelConfig{
		AppName: "app",
		ModelID: modelID,
		BaseURL: "https://llm.example.com/v1",
		APIKey:  "sk-test",
		Model:   "gpt-4o-mini",
	}
}

func TestSQLRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	original := config("m1")
	require.NoError(t, s.Create(ctx, original))

	got, err := s.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, original, got)

	got.Model = "qwen-plus"
	require.NoError(t, s.Update(ctx, got))

	updated, err := s.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "qwen-plus", updated.Model)

	require.NoError(t, s.Delete(ctx, "m1"))
	gone, err := s.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestSQLCreateDuplicate(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, config("m1")))
	assert.ErrorIs(t, s.Create(ctx, config("m1")), errno.ErrAlreadyExists)
}

func TestSQLUpdateMissing(t *testing.T) {
	s := newStore(t)
	assert.ErrorIs(t, s.Update(context.Background(), config("nope")), errno.ErrNotFound)
}

func TestSQLDeleteIdempotent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, "never-existed"))
}

func TestSQLList(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, config("m1")))
	require.NoError(t, s.Create(ctx, config("m2")))

	configs, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, configs, 2)
}
