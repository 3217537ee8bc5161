// Package session owns the per-conversation orchestration layer: each
// OdaSession keeps a pool of executors keyed by agent name, and the
// OdaSessionManager owns the global set of sessions.
package session

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/schema"
	"github.com/onedragon/odagent/internal/odagent/engine"
	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/internal/odagent/service/agent/domain/service/runtime"
	"github.com/onedragon/odagent/pkg/logger"
)

const moduleName = "session"

// AgentFactory materializes executors bound to a session triple. The agent
// manager implements it; tests substitute stubs.
type AgentFactory interface {
	CreateAgent(ctx context.Context, agentName, appName, userID, sessionID string) (*runtime.OdaAgent, error)
}

// OdaSession is one isolated conversation. It owns its executor pool and
// nothing else: all conversational state lives in the engine's session
// service under the triple.
type OdaSession struct {
	appName   string
	userID    string
	sessionID string

	agentFactory AgentFactory

	mu     sync.Mutex
	agents map[string]*runtime.OdaAgent

	// touch is set by the session manager to record activity.
	touch func()
}

// NewOdaSession creates a session wrapper for the given triple.
func NewOdaSession(appName, userID, sessionID string, agentFactory AgentFactory) *OdaSession {
	return &OdaSession{
		appName:      appName,
		userID:       userID,
		sessionID:    sessionID,
		agentFactory: agentFactory,
		agents:       make(map[string]*runtime.OdaAgent),
	}
}

// AppName returns the application name of the triple.
func (s *OdaSession) AppName() string { return s.appName }

// UserID returns the user id of the triple.
func (s *OdaSession) UserID() string { return s.userID }

// SessionID returns the session id of the triple.
func (s *OdaSession) SessionID() string { return s.sessionID }

// ProcessMessage dispatches message to the named agent, lazily creating the
// executor on first use. An empty agentName selects the built-in default
// agent. The pool lock covers lookup and creation only; the run itself
// starts after release.
func (s *OdaSession) ProcessMessage(ctx context.Context, message, agentName string) (*schema.StreamReader[*engine.Event], error) {
	if s.agentFactory == nil {
		return nil, errno.ErrInvalidState
	}
	if agentName == "" {
		agentName = errno.DefaultAgentName
	}

	if s.touch != nil {
		s.touch()
	}

	agent, err := s.getOrCreateAgent(ctx, agentName)
	if err != nil {
		return nil, err
	}
	return agent.RunAsync(ctx, message), nil
}

func (s *OdaSession) getOrCreateAgent(ctx context.Context, agentName string) (*runtime.OdaAgent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if agent, ok := s.agents[agentName]; ok {
		return agent, nil
	}

	agent, err := s.agentFactory.CreateAgent(ctx, agentName, s.appName, s.userID, s.sessionID)
	if err != nil {
		return nil, err
	}
	s.agents[agentName] = agent
	logger.InfoX(moduleName, "created agent %s for session %s", agentName, s.sessionID)
	return agent, nil
}

// AgentCount returns the number of pooled executors.
func (s *OdaSession) AgentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.agents)
}

// Cleanup disposes every pooled executor and empties the pool. Holding the
// session lock here keeps cleanup from interleaving with an in-flight
// ProcessMessage dispatch.
func (s *OdaSession) Cleanup(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for agentName, agent := range s.agents {
		if err := agent.Cleanup(ctx); err != nil {
			logger.WarnX(moduleName, "failed to clean up agent %s for session %s: %v", agentName, s.sessionID, err)
			continue
		}
		logger.InfoX(moduleName, "cleaned up agent %s for session %s", agentName, s.sessionID)
	}
	s.agents = make(map[string]*runtime.OdaAgent)
}
