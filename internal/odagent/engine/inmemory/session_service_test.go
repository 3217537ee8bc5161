package inmemory

import (
	"context"
	"testing"

	"github.com/onedragon/odagent/internal/odagent/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGeneratesID(t *testing.T) {
	svc := NewSessionService()

	session, err := svc.Create(context.Background(), "app", "u", "", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.NotNil(t, session.State)
	assert.Empty(t, session.Events)
}

func TestCreateIdempotentOnTriple(t *testing.T) {
	svc := NewSessionService()
	ctx := context.Background()

	first, err := svc.Create(ctx, "app", "u", "s1", nil)
	require.NoError(t, err)
	second, err := svc.Create(ctx, "app", "u", "s1", nil)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestGetUnknownReturnsNil(t *testing.T) {
	svc := NewSessionService()

	session, err := svc.Get(context.Background(), "app", "u", "nope")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestDeleteIdempotent(t *testing.T) {
	svc := NewSessionService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "app", "u", "s1", nil)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "app", "u", "s1"))
	require.NoError(t, svc.Delete(ctx, "app", "u", "s1"))

	session, err := svc.Get(ctx, "app", "u", "s1")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestListFiltersByAppAndUser(t *testing.T) {
	svc := NewSessionService()
	ctx := context.Background()

	_, _ = svc.Create(ctx, "app", "alice", "s1", nil)
	_, _ = svc.Create(ctx, "app", "alice", "s2", nil)
	_, _ = svc.Create(ctx, "app", "bob", "s3", nil)

	sessions, err := svc.List(ctx, "app", "alice")
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestAppendEventRecordsHistoryAndState(t *testing.T) {
	svc := NewSessionService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "app", "u", "s1", nil)
	require.NoError(t, err)

	require.NoError(t, svc.AppendEvent(ctx, "app", "u", "s1", &engine.Event{
		Author:  "user",
		Content: engine.NewUserContent("hello"),
		Actions: engine.EventActions{StateDelta: map[string]any{"topic": "greeting"}},
	}))

	session, err := svc.Get(ctx, "app", "u", "s1")
	require.NoError(t, err)
	require.Len(t, session.Events, 1)
	assert.Equal(t, "hello", session.Events[0].Content.Text())
	assert.Equal(t, "greeting", session.State["topic"])
}
