package einoengine

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/onedragon/odagent/internal/odagent/engine"
	"github.com/onedragon/odagent/internal/odagent/engine/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatModel streams scripted chunks and records its inputs.
type fakeChatModel struct {
	mu     sync.Mutex
	chunks []string
	inputs [][]*schema.Message
}

var _ model.ToolCallingChatModel = (*fakeChatModel)(nil)

func (m *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.record(input)
	out := ""
	for _, c := range m.chunks {
		out += c
	}
	return schema.AssistantMessage(out, nil), nil
}

func (m *fakeChatModel) Stream(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	m.record(input)
	sr, sw := schema.Pipe[*schema.Message](len(m.chunks))
	go func() {
		defer sw.Close()
		for _, c := range m.chunks {
			sw.Send(schema.AssistantMessage(c, nil), nil)
		}
	}()
	return sr, nil
}

func (m *fakeChatModel) WithTools(_ []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

func (m *fakeChatModel) record(input []*schema.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([]*schema.Message, len(input))
	copy(copied, input)
	m.inputs = append(m.inputs, copied)
}

func (m *fakeChatModel) lastInput() []*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.inputs) == 0 {
		return nil
	}
	return m.inputs[len(m.inputs)-1]
}

func newTestRunner(t *testing.T, cm model.ToolCallingChatModel) (*Runner, *inmemory.SessionService) {
	t.Helper()
	agent, err := NewAgent(AgentSpec{
		Name:        "assistant",
		Instruction: "Be brief.",
		ChatModel:   cm,
	})
	require.NoError(t, err)

	svc := inmemory.NewSessionService()
	runner := NewRunner("app", agent, svc, inmemory.NewArtifactService(), inmemory.NewMemoryService())
	return runner, svc
}

func drainRunner(t *testing.T, sr *schema.StreamReader[*engine.Event]) []*engine.Event {
	t.Helper()
	defer sr.Close()
	var events []*engine.Event
	for {
		ev, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			return events
		}
		require.NoError(t, err)
		events = append(events, ev)
	}
}

func TestRunAsyncUnknownSessionFails(t *testing.T) {
	runner, _ := newTestRunner(t, &fakeChatModel{chunks: []string{"hi"}})

	_, err := runner.RunAsync(context.Background(), "u", "nope", engine.NewUserContent("hello"))
	require.Error(t, err)
}

func TestRunAsyncAppendsUserAndAssistantEvents(t *testing.T) {
	cm := &fakeChatModel{chunks: []string{"Hel", "lo"}}
	runner, svc := newTestRunner(t, cm)
	ctx := context.Background()

	_, err := svc.Create(ctx, "app", "u", "s1", nil)
	require.NoError(t, err)

	sr, err := runner.RunAsync(ctx, "u", "s1", engine.NewUserContent("hi there"))
	require.NoError(t, err)
	events := drainRunner(t, sr)

	// Two partial chunks plus the final full message.
	require.Len(t, events, 3)
	assert.True(t, events[0].Partial)
	assert.True(t, events[1].Partial)
	final := events[2]
	assert.False(t, final.Partial)
	assert.Equal(t, "assistant", final.Author)
	assert.Equal(t, "Hello", final.Content.Text())

	// Session history carries user turn then assistant turn.
	session, err := svc.Get(ctx, "app", "u", "s1")
	require.NoError(t, err)
	require.Len(t, session.Events, 2)
	assert.Equal(t, "hi there", session.Events[0].Content.Text())
	assert.Equal(t, "Hello", session.Events[1].Content.Text())

	// The model saw the instruction and the user turn.
	input := cm.lastInput()
	require.Len(t, input, 2)
	assert.Equal(t, schema.System, input[0].Role)
	assert.Equal(t, "hi there", input[1].Content)
}

func TestRunAsyncNilMessageResumesFromHistory(t *testing.T) {
	cm := &fakeChatModel{chunks: []string{"again"}}
	runner, svc := newTestRunner(t, cm)
	ctx := context.Background()

	_, err := svc.Create(ctx, "app", "u", "s1", nil)
	require.NoError(t, err)

	sr, err := runner.RunAsync(ctx, "u", "s1", engine.NewUserContent("first"))
	require.NoError(t, err)
	drainRunner(t, sr)

	// Retry-style invocation: no new user turn is appended.
	sr, err = runner.RunAsync(ctx, "u", "s1", nil)
	require.NoError(t, err)
	drainRunner(t, sr)

	session, err := svc.Get(ctx, "app", "u", "s1")
	require.NoError(t, err)

	userTurns := 0
	for _, ev := range session.Events {
		if ev.Content != nil && ev.Content.Role == engine.RoleUser {
			userTurns++
		}
	}
	assert.Equal(t, 1, userTurns)

	// The second invocation still saw the first user turn in its input.
	input := cm.lastInput()
	found := false
	for _, msg := range input {
		if msg.Role == schema.User && msg.Content == "first" {
			found = true
		}
	}
	assert.True(t, found)
}
