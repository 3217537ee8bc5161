package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/onedragon/odagent/internal/odagent/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRunner scripts engine behaviour per attempt and records how each
// attempt was invoked.
type stubRunner struct {
	mu       sync.Mutex
	attempts int
	messages []*engine.Content

	// failUntil makes every attempt up to and including this 1-based
	// index fail with a stream error after eventsPerAttempt events.
	failUntil        int
	eventsPerAttempt int

	// errorEvent, when set, is emitted as a terminal engine error event
	// instead of a raised stream error.
	errorEvent *engine.Event

	closed bool
}

func (r *stubRunner) RunAsync(_ context.Context, _, _ string, newMessage *engine.Content) (*schema.StreamReader[*engine.Event], error) {
	r.mu.Lock()
	r.attempts++
	attempt := r.attempts
	r.messages = append(r.messages, newMessage)
	r.mu.Unlock()

	sr, sw := schema.Pipe[*engine.Event](10)
	go func() {
		defer sw.Close()
		for i := 0; i < r.eventsPerAttempt; i++ {
			sw.Send(&engine.Event{
				Author:  "stub",
				Content: engine.NewAssistantContent(fmt.Sprintf("attempt-%d-event-%d", attempt, i)),
			}, nil)
		}
		if attempt <= r.failUntil {
			if r.errorEvent != nil {
				sw.Send(r.errorEvent, nil)
				return
			}
			sw.Send(nil, errors.New("engine blew up"))
		}
	}()
	return sr, nil
}

func (r *stubRunner) Close(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *stubRunner) attemptCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}

func (r *stubRunner) recordedMessages() []*engine.Content {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*engine.Content, len(r.messages))
	copy(out, r.messages)
	return out
}

func collectEvents(t *testing.T, sr *schema.StreamReader[*engine.Event]) []*engine.Event {
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

func TestRunAsyncSucceedsFirstAttempt(t *testing.T) {
	runner := &stubRunner{eventsPerAttempt: 2}
	agent := NewOdaAgent(runner, "app", "u", "s", 3)

	events := collectEvents(t, agent.RunAsync(context.Background(), "hi"))

	require.Len(t, events, 2)
	for _, ev := range events {
		assert.Empty(t, ev.ErrorCode)
	}
	assert.Equal(t, 1, runner.attemptCount())
	assert.Equal(t, StateSucceeded, agent.CurrentState())
}

func TestRunAsyncRetryThenSucceed(t *testing.T) {
	runner := &stubRunner{failUntil: 1, eventsPerAttempt: 1}
	agent := NewOdaAgent(runner, "app", "u", "s", 3)

	start := time.Now()
	events := collectEvents(t, agent.RunAsync(context.Background(), "x"))
	elapsed := time.Since(start)

	// attempt-1 event, retry notification, attempt-2 event.
	require.Len(t, events, 3)
	assert.Equal(t, "attempt-1-event-0", events[0].Content.Text())

	retry := events[1]
	assert.Equal(t, engine.AuthorSystem, retry.Author)
	assert.Equal(t, ErrorCodeRetryAttempt, retry.ErrorCode)
	assert.Equal(t, "Retry attempt 1/3 for agent execution", retry.ErrorMessage)
	require.NotNil(t, retry.Content)
	assert.Equal(t, "Retry attempt 1/3 for agent execution", retry.Content.Text())
	assert.False(t, retry.Actions.Escalate)

	assert.Equal(t, "attempt-2-event-0", events[2].Content.Text())
	for _, ev := range events {
		assert.NotEqual(t, ErrorCodeMaxRetriesExceeded, ev.ErrorCode)
	}

	// One 1s delay between the attempts.
	assert.GreaterOrEqual(t, elapsed, time.Second)
	assert.Less(t, elapsed, 2*time.Second)

	// The user message is submitted exactly once.
	messages := runner.recordedMessages()
	require.Len(t, messages, 2)
	require.NotNil(t, messages[0])
	assert.Equal(t, "x", messages[0].Text())
	assert.Nil(t, messages[1])
}

func TestRunAsyncExhaustsRetries(t *testing.T) {
	runner := &stubRunner{failUntil: 10, eventsPerAttempt: 1}
	agent := NewOdaAgent(runner, "app", "u", "s", 2)

	start := time.Now()
	events := collectEvents(t, agent.RunAsync(context.Background(), "x"))
	elapsed := time.Since(start)

	// Per attempt one engine event; two retry notifications; final failure.
	var retries, finals []*engine.Event
	for _, ev := range events {
		switch ev.ErrorCode {
		case ErrorCodeRetryAttempt:
			retries = append(retries, ev)
		case ErrorCodeMaxRetriesExceeded:
			finals = append(finals, ev)
		}
	}
	require.Len(t, retries, 2)
	assert.Equal(t, "Retry attempt 1/2 for agent execution", retries[0].ErrorMessage)
	assert.Equal(t, "Retry attempt 2/2 for agent execution", retries[1].ErrorMessage)

	require.Len(t, finals, 1)
	final := finals[0]
	assert.Equal(t, engine.AuthorSystem, final.Author)
	assert.Nil(t, final.Content)
	assert.True(t, final.Actions.Escalate)
	assert.Equal(t, "Agent execution failed after 2 retry attempts", final.ErrorMessage)

	// Final failure terminates the stream.
	assert.Same(t, final, events[len(events)-1])

	// maxRetries+1 attempts total, message only on the first.
	assert.Equal(t, 3, runner.attemptCount())
	messages := runner.recordedMessages()
	require.NotNil(t, messages[0])
	for _, msg := range messages[1:] {
		assert.Nil(t, msg)
	}

	// Delays 1s then 2s.
	assert.GreaterOrEqual(t, elapsed, 3*time.Second)
	assert.Equal(t, StateFailed, agent.CurrentState())
}

func TestRunAsyncOrderingWithinAttempts(t *testing.T) {
	runner := &stubRunner{failUntil: 1, eventsPerAttempt: 3}
	agent := NewOdaAgent(runner, "app", "u", "s", 3)

	events := collectEvents(t, agent.RunAsync(context.Background(), "x"))

	// Strict concatenation: attempt-1 events, retry, attempt-2 events.
	require.Len(t, events, 7)
	for i := 0; i < 3; i++ {
		assert.Equal(t, fmt.Sprintf("attempt-1-event-%d", i), events[i].Content.Text())
	}
	assert.Equal(t, ErrorCodeRetryAttempt, events[3].ErrorCode)
	for i := 0; i < 3; i++ {
		assert.Equal(t, fmt.Sprintf("attempt-2-event-%d", i), events[4+i].Content.Text())
	}
}

func TestRunAsyncTerminalErrorEventIsRetryable(t *testing.T) {
	runner := &stubRunner{
		failUntil:        1,
		eventsPerAttempt: 0,
		errorEvent: &engine.Event{
			Author:       "stub",
			ErrorCode:    "UPSTREAM_TIMEOUT",
			ErrorMessage: "model timed out",
		},
	}
	agent := NewOdaAgent(runner, "app", "u", "s", 3)

	events := collectEvents(t, agent.RunAsync(context.Background(), "x"))

	// The engine error event is forwarded unchanged, then a retry follows.
	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, "UPSTREAM_TIMEOUT", events[0].ErrorCode)
	assert.Equal(t, ErrorCodeRetryAttempt, events[1].ErrorCode)
	assert.Equal(t, 2, runner.attemptCount())
}

func TestRunAsyncConsumerCancellation(t *testing.T) {
	runner := &stubRunner{failUntil: 10, eventsPerAttempt: 1}
	agent := NewOdaAgent(runner, "app", "u", "s", 3)

	ctx, cancel := context.WithCancel(context.Background())
	sr := agent.RunAsync(ctx, "x")

	// Read the first engine event, then walk away.
	_, err := sr.Recv()
	require.NoError(t, err)
	cancel()
	sr.Close()

	// Cancellation is honored at the next suspension point: the pending
	// retry sleep is skipped and no further attempt starts.
	time.Sleep(300 * time.Millisecond)
	attempts := runner.attemptCount()
	assert.LessOrEqual(t, attempts, 1)
	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, attempts, runner.attemptCount())
}

func TestRunCollectsFullStream(t *testing.T) {
	runner := &stubRunner{eventsPerAttempt: 2}
	agent := NewOdaAgent(runner, "app", "u", "s", 3)

	events := agent.Run(context.Background(), "hi")
	assert.Len(t, events, 2)
}

func TestCleanupClosesRunnerAndResources(t *testing.T) {
	runner := &stubRunner{eventsPerAttempt: 1}
	agent := NewOdaAgent(runner, "app", "u", "s", 3)

	closed := false
	agent.AttachResource(closerFunc(func() error {
		closed = true
		return nil
	}))

	require.NoError(t, agent.Cleanup(context.Background()))
	assert.True(t, closed)
	assert.True(t, runner.closed)
	assert.Equal(t, 0, agent.RetryCount())
}

func TestNewOdaAgentDefaultsRetries(t *testing.T) {
	agent := NewOdaAgent(&stubRunner{}, "app", "u", "s", 0)
	assert.Equal(t, DefaultMaxRetries, agent.MaxRetries())
	assert.True(t, agent.IsReady())

	info := agent.GetAgentInfo()
	assert.Equal(t, "app", info["app_name"])
	assert.Equal(t, DefaultMaxRetries, info["max_retries"])
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
