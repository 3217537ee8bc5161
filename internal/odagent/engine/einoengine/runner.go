package einoengine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"github.com/onedragon/odagent/internal/odagent/engine"
	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/pkg/logger"
	"github.com/onedragon/odagent/pkg/utils/safego"
)

const moduleName = "einoengine"

// Runner drives one Agent against one app's session store. A nil newMessage
// resumes from the session history as recorded by earlier attempts, which is
// what the retry layer relies on to avoid duplicating the user turn.
type Runner struct {
	appName         string
	agent           *Agent
	sessionService  engine.SessionService
	artifactService engine.ArtifactService
	memoryService   engine.MemoryService
}

var _ engine.Runner = (*Runner)(nil)

// NewRunner wires an agent to the engine services for one app.
func NewRunner(
	appName string,
	agent *Agent,
	sessionService engine.SessionService,
	artifactService engine.ArtifactService,
	memoryService engine.MemoryService,
) *Runner {
	return &Runner{
		appName:         appName,
		agent:           agent,
		sessionService:  sessionService,
		artifactService: artifactService,
		memoryService:   memoryService,
	}
}

// RunAsync executes one turn and streams events as they are produced.
// The user message, when present, is appended to the session history before
// the model runs; the final assistant message is appended after.
func (r *Runner) RunAsync(ctx context.Context, userID, sessionID string, newMessage *engine.Content) (*schema.StreamReader[*engine.Event], error) {
	session, err := r.sessionService.Get(ctx, r.appName, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %q: %w", sessionID, err)
	}
	if session == nil {
		return nil, fmt.Errorf("session %q: %w", sessionID, errno.ErrNotFound)
	}

	if newMessage != nil {
		userEvent := &engine.Event{
			ID:        uuid.New().String(),
			Author:    engine.RoleUser,
			Content:   newMessage,
			Timestamp: time.Now(),
		}
		if err := r.sessionService.AppendEvent(ctx, r.appName, userID, sessionID, userEvent); err != nil {
			return nil, fmt.Errorf("failed to append user event: %w", err)
		}
	}

	messages := r.buildMessages(session.Events)

	sr, sw := schema.Pipe[*engine.Event](20)
	safego.Go(ctx, func() {
		defer sw.Close()
		r.execute(ctx, userID, sessionID, messages, sw)
	})
	return sr, nil
}

// execute streams model output into the event pipe and persists the final
// assistant message on success.
func (r *Runner) execute(
	ctx context.Context,
	userID, sessionID string,
	messages []*schema.Message,
	sw *schema.StreamWriter[*engine.Event],
) {
	ms, err := r.agent.stream(ctx, messages)
	if err != nil {
		sw.Send(nil, fmt.Errorf("agent stream failed: %w", err))
		return
	}
	defer ms.Close()

	var chunks []*schema.Message
	for {
		msg, err := ms.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			sw.Send(nil, fmt.Errorf("stream recv error: %w", err))
			return
		}
		if msg == nil {
			continue
		}
		chunks = append(chunks, msg)

		if msg.Content != "" {
			closed := sw.Send(&engine.Event{
				ID:        uuid.New().String(),
				Author:    r.agent.Name(),
				Content:   engine.NewAssistantContent(msg.Content),
				Partial:   true,
				Timestamp: time.Now(),
			}, nil)
			if closed {
				return
			}
		}
	}

	final := ""
	if len(chunks) > 0 {
		msg, err := schema.ConcatMessages(chunks)
		if err != nil {
			sw.Send(nil, fmt.Errorf("failed to concat messages: %w", err))
			return
		}
		final = msg.Content
	}

	finalEvent := &engine.Event{
		ID:        uuid.New().String(),
		Author:    r.agent.Name(),
		Content:   engine.NewAssistantContent(final),
		Timestamp: time.Now(),
	}
	if err := r.sessionService.AppendEvent(ctx, r.appName, userID, sessionID, finalEvent); err != nil {
		logger.WarnX(moduleName, "failed to persist assistant event for session %s: %v", sessionID, err)
	}
	sw.Send(finalEvent, nil)
}

// buildMessages converts the session event history into model input.
// Partial events and runtime notifications carry no conversational state
// and are skipped.
func (r *Runner) buildMessages(events []*engine.Event) []*schema.Message {
	messages := make([]*schema.Message, 0, len(events)+1)
	if instruction := r.agent.instruction; instruction != "" {
		messages = append(messages, schema.SystemMessage(instruction))
	}
	for _, ev := range events {
		if ev.Partial || ev.IsError() || ev.Content == nil {
			continue
		}
		text := ev.Content.Text()
		if text == "" {
			continue
		}
		if ev.Content.Role == engine.RoleUser {
			messages = append(messages, schema.UserMessage(text))
		} else {
			messages = append(messages, schema.AssistantMessage(text, nil))
		}
	}
	return messages
}

// Close releases runner-held resources. Session state is owned by the
// services and survives the runner.
func (r *Runner) Close(_ context.Context) error {
	return nil
}
