package inmemory

import (
	"context"
	"testing"

	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/internal/odagent/service/model/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func config(modelID string) *entity.OdaModelConfig {
	return &entity.OdaModelConfig{
		AppName: "app",
		ModelID: modelID,
		BaseURL: "https://llm.example.com/v1",
		APIKey:  "sk-test",
		Model:   "gpt-4o-mini",
	}
}

func TestCreateDuplicateFails(t *testing.T) {
	s := NewModelConfigStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, config("m1")))
	assert.ErrorIs(t, s.Create(ctx, config("m1")), errno.ErrAlreadyExists)
}

func TestUpdateMissingFails(t *testing.T) {
	s := NewModelConfigStore()
	assert.ErrorIs(t, s.Update(context.Background(), config("nope")), errno.ErrNotFound)
}

func TestDeleteIdempotent(t *testing.T) {
	s := NewModelConfigStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, config("m1")))
	require.NoError(t, s.Delete(ctx, "m1"))
	require.NoError(t, s.Delete(ctx, "m1"))
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewModelConfigStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, config("m1")))
	first, err := s.Get(ctx, "m1")
	require.NoError(t, err)
	first.Model = "mutated"

	second, err := s.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", second.Model)
}

func TestListReturnsAll(t *testing.T) {
	s := NewModelConfigStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, config("m1")))
	require.NoError(t, s.Create(ctx, config("m2")))

	configs, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, configs, 2)
}
