// Package engine defines the facade through which the runtime consumes the
// underlying LLM execution engine: the event schema, the session/artifact/
// memory services, and the per-agent Runner. The core orchestration layer
// only depends on these interfaces; the eino-backed implementation lives in
// the einoengine subpackage and the in-memory reference services in inmemory.
package engine

import (
	"context"
	"time"

	"github.com/cloudwego/eino/schema"
)

// RoleUser and RoleAssistant are the content roles the runtime produces.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// AuthorSystem is the author of runtime-injected events (retry and
// final-failure notifications).
const AuthorSystem = "system"

// Part is one piece of event content.
type Part struct {
	Text string `json:"text,omitempty"`
}

// Content is the message payload carried by an Event.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts,omitempty"`
}

// Text concatenates the text of all parts.
func (c *Content) Text() string {
	if c == nil {
		return ""
	}
	out := ""
	for _, p := range c.Parts {
		out += p.Text
	}
	return out
}

// NewUserContent builds a single-part user Content from plain text.
func NewUserContent(text string) *Content {
	return &Content{Role: RoleUser, Parts: []Part{{Text: text}}}
}

// NewAssistantContent builds a single-part assistant Content from plain text.
func NewAssistantContent(text string) *Content {
	return &Content{Role: RoleAssistant, Parts: []Part{{Text: text}}}
}

// EventActions carries engine-side directives attached to an event.
type EventActions struct {
	// Escalate signals that the run failed terminally and the caller
	// should surface the failure.
	Escalate bool `json:"escalate,omitempty"`

	// StateDelta carries session state mutations requested by the agent.
	StateDelta map[string]any `json:"state_delta,omitempty"`
}

// Event is one element of a runner's output stream. The orchestration core
// forwards engine events unchanged and injects only two shapes of its own:
// retry notifications and the terminal max-retries failure.
type Event struct {
	ID           string       `json:"id,omitempty"`
	Author       string       `json:"author"`
	Content      *Content     `json:"content,omitempty"`
	Actions      EventActions `json:"actions,omitempty"`
	Partial      bool         `json:"partial,omitempty"`
	ErrorCode    string       `json:"error_code,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Timestamp    time.Time    `json:"timestamp,omitempty"`
}

// IsError reports whether the event carries an engine error code.
func (e *Event) IsError() bool {
	return e != nil && e.ErrorCode != ""
}

// Session is the engine-side conversation record identified by the
// (app_name, user_id, session_id) triple. All per-conversation state lives
// here; the orchestration layer's session wrappers hold none of it.
type Session struct {
	AppName   string         `json:"app_name"`
	UserID    string         `json:"user_id"`
	ID        string         `json:"id"`
	State     map[string]any `json:"state,omitempty"`
	Events    []*Event       `json:"events"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// SessionService stores engine session records.
//
// Get returns (nil, nil) when the triple is unknown; Delete is idempotent.
type SessionService interface {
	Create(ctx context.Context, appName, userID, sessionID string, state map[string]any) (*Session, error)
	Get(ctx context.Context, appName, userID, sessionID string) (*Session, error)
	Delete(ctx context.Context, appName, userID, sessionID string) error
	List(ctx context.Context, appName, userID string) ([]*Session, error)
	AppendEvent(ctx context.Context, appName, userID, sessionID string, event *Event) error
}

// ArtifactService stores binary artifacts produced during runs. Opaque to
// the orchestration core; passed through to runner construction.
type ArtifactService interface {
	Save(ctx context.Context, appName, userID, sessionID, name string, data []byte) error
	Load(ctx context.Context, appName, userID, sessionID, name string) ([]byte, error)
	Close(ctx context.Context) error
}

// MemoryService provides long-term memory for agents. Opaque to the
// orchestration core.
type MemoryService interface {
	AddSessionToMemory(ctx context.Context, session *Session) error
	Close(ctx context.Context) error
}

// Runner executes one agent bound to one app. RunAsync appends newMessage to
// the session history before execution when it is non-nil; a nil newMessage
// resumes from the current session state without adding a user turn. The
// returned stream terminates with io.EOF on success and with the underlying
// error on failure.
type Runner interface {
	RunAsync(ctx context.Context, userID, sessionID string, newMessage *Content) (*schema.StreamReader[*Event], error)
	Close(ctx context.Context) error
}
