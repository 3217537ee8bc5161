// Package runtime contains the per-message execution wrapper around an
// engine runner: event forwarding, retry with exponential spacing, and the
// injected retry / final-failure notifications.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/onedragon/odagent/internal/odagent/engine"
	"github.com/onedragon/odagent/pkg/logger"
	"github.com/onedragon/odagent/pkg/utils/safego"
)

const moduleName = "agent"

// Error codes carried by runtime-injected events.
const (
	ErrorCodeRetryAttempt       = "RETRY_ATTEMPT"
	ErrorCodeMaxRetriesExceeded = "MAX_RETRIES_EXCEEDED"
)

// DefaultMaxRetries bounds reattempts when the caller does not configure one.
const DefaultMaxRetries = 3

// State is the executor's position in its run lifecycle.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateRetrying
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateRetrying:
		return "retrying"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// OdaAgent wraps one engine runner bound to one session triple.
//
// The user message reaches the engine exactly once: the first attempt passes
// it through, and every retry invokes the runner with a nil message so the
// engine resumes from the session history it already recorded. Engine events
// are forwarded unchanged; the executor injects only retry notifications and
// the terminal max-retries failure, and it never raises a stream error to
// the consumer.
type OdaAgent struct {
	runner     engine.Runner
	appName    string
	userID     string
	sessionID  string
	maxRetries int

	mu         sync.Mutex
	retryCount int
	state      State
	resources  []io.Closer
}

// NewOdaAgent wraps runner for the given session triple. maxRetries
// defaults to DefaultMaxRetries when non-positive.
func NewOdaAgent(runner engine.Runner, appName, userID, sessionID string, maxRetries int) *OdaAgent {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &OdaAgent{
		runner:     runner,
		appName:    appName,
		userID:     userID,
		sessionID:  sessionID,
		maxRetries: maxRetries,
	}
}

// AttachResource registers a resource to be closed on Cleanup, such as the
// MCP toolsets materialized for this agent.
func (a *OdaAgent) AttachResource(c io.Closer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resources = append(a.resources, c)
}

// RunAsync executes the agent and returns the event stream. The stream is
// forward-only and non-restartable; it terminates when the run completes or
// after the final-failure event. Cancelling ctx stops the run at the next
// suspension point, including a pending retry delay. Closing the reader
// stops the run when the executor next forwards an event; it does not cut
// short a pending retry delay, so a reader closed during the delay is
// noticed only once the next attempt emits its first event.
func (a *OdaAgent) RunAsync(ctx context.Context, newMessage string) *schema.StreamReader[*engine.Event] {
	sr, sw := schema.Pipe[*engine.Event](20)
	safego.Go(ctx, func() {
		defer sw.Close()
		a.runLoop(ctx, sw, newMessage)
	})
	return sr
}

// Run is the synchronous mirror of RunAsync: it collects the full event
// stream with identical retry semantics.
func (a *OdaAgent) Run(ctx context.Context, newMessage string) []*engine.Event {
	sr := a.RunAsync(ctx, newMessage)
	defer sr.Close()

	var events []*engine.Event
	for {
		ev, err := sr.Recv()
		if err != nil {
			break
		}
		events = append(events, ev)
	}
	return events
}

func (a *OdaAgent) runLoop(ctx context.Context, sw *schema.StreamWriter[*engine.Event], newMessage string) {
	a.setRetryCount(0)
	a.setState(StateRunning)

	for {
		// The original message is submitted on the first attempt only;
		// retries resume from the engine's recorded session state.
		var message *engine.Content
		if a.RetryCount() == 0 {
			message = engine.NewUserContent(newMessage)
		}

		attemptErr, consumerGone := a.attempt(ctx, sw, message)
		if consumerGone || ctx.Err() != nil {
			a.setState(StateIdle)
			return
		}
		if attemptErr == nil {
			a.setState(StateSucceeded)
			return
		}

		retry := a.incRetryCount()
		if retry > a.maxRetries {
			a.setState(StateFailed)
			logger.ErrorX(moduleName, "agent execution failed after %d retry attempts (session=%s): %v",
				a.maxRetries, a.sessionID, attemptErr)
			sw.Send(a.finalFailureEvent(), nil)
			return
		}

		a.setState(StateRetrying)
		if closed := sw.Send(a.retryEvent(retry), nil); closed {
			a.setState(StateIdle)
			return
		}

		delay := time.Duration(1<<(retry-1)) * time.Second
		logger.WarnX(moduleName, "agent execution failed, retrying in %s (attempt %d/%d, session=%s): %v",
			delay, retry, a.maxRetries, a.sessionID, attemptErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			a.setState(StateIdle)
			return
		case <-timer.C:
		}
		a.setState(StateRunning)
	}
}

// attempt runs the engine once, forwarding its events. It reports a non-nil
// error when the attempt failed, and consumerGone when the downstream reader
// was closed mid-stream.
func (a *OdaAgent) attempt(
	ctx context.Context,
	sw *schema.StreamWriter[*engine.Event],
	message *engine.Content,
) (attemptErr error, consumerGone bool) {
	es, err := a.runner.RunAsync(ctx, a.userID, a.sessionID, message)
	if err != nil {
		return err, false
	}
	defer es.Close()

	for {
		ev, rerr := es.Recv()
		if errors.Is(rerr, io.EOF) {
			return nil, false
		}
		if rerr != nil {
			return rerr, false
		}
		if ev == nil {
			continue
		}
		if closed := sw.Send(ev, nil); closed {
			return nil, true
		}
		// A terminal engine error event counts as a failed attempt. The
		// event itself has already been forwarded unchanged.
		if ev.IsError() && ev.ErrorCode != ErrorCodeRetryAttempt {
			return fmt.Errorf("engine error event: %s", ev.ErrorMessage), false
		}
	}
}

func (a *OdaAgent) retryEvent(retry int) *engine.Event {
	message := fmt.Sprintf("Retry attempt %d/%d for agent execution", retry, a.maxRetries)
	return &engine.Event{
		Author:       engine.AuthorSystem,
		Content:      &engine.Content{Parts: []engine.Part{{Text: message}}},
		ErrorCode:    ErrorCodeRetryAttempt,
		ErrorMessage: message,
		Timestamp:    time.Now(),
	}
}

func (a *OdaAgent) finalFailureEvent() *engine.Event {
	return &engine.Event{
		Author:       engine.AuthorSystem,
		Actions:      engine.EventActions{Escalate: true},
		ErrorCode:    ErrorCodeMaxRetriesExceeded,
		ErrorMessage: fmt.Sprintf("Agent execution failed after %d retry attempts", a.maxRetries),
		Timestamp:    time.Now(),
	}
}

// Cleanup releases the runner and any attached resources.
func (a *OdaAgent) Cleanup(ctx context.Context) error {
	a.mu.Lock()
	resources := a.resources
	a.resources = nil
	a.retryCount = 0
	a.state = StateIdle
	a.mu.Unlock()

	var firstErr error
	for _, r := range resources {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := a.runner.Close(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// IsReady reports whether the agent can execute.
func (a *OdaAgent) IsReady() bool {
	return a.runner != nil
}

// GetAgentInfo returns the executor's identity and retry bookkeeping.
func (a *OdaAgent) GetAgentInfo() map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return map[string]any{
		"app_name":    a.appName,
		"user_id":     a.userID,
		"session_id":  a.sessionID,
		"max_retries": a.maxRetries,
		"retry_count": a.retryCount,
		"state":       a.state.String(),
	}
}

// MaxRetries returns the configured retry budget.
func (a *OdaAgent) MaxRetries() int {
	return a.maxRetries
}

// RetryCount returns the number of failures seen by the current run.
func (a *OdaAgent) RetryCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.retryCount
}

func (a *OdaAgent) incRetryCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.retryCount++
	return a.retryCount
}

func (a *OdaAgent) setRetryCount(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.retryCount = n
}

func (a *OdaAgent) setState(s State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = s
}

// CurrentState returns the executor state for introspection.
func (a *OdaAgent) CurrentState() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}
