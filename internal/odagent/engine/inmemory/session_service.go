package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/onedragon/odagent/internal/odagent/engine"
)

// SessionService is the in-memory implementation of engine.SessionService.
// Records live for the process lifetime.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*engine.Session
}

var _ engine.SessionService = (*SessionService)(nil)

// NewSessionService creates an empty in-memory session service.
func NewSessionService() *SessionService {
	return &SessionService{
		sessions: make(map[string]*engine.Session),
	}
}

func sessionKey(appName, userID, sessionID string) string {
	return appName + ":" + userID + ":" + sessionID
}

func (s *SessionService) Create(_ context.Context, appName, userID, sessionID string, state map[string]any) (*engine.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	key := sessionKey(appName, userID, sessionID)
	if existing, ok := s.sessions[key]; ok {
		return existing, nil
	}

	now := time.Now()
	session := &engine.Session{
		AppName:   appName,
		UserID:    userID,
		ID:        sessionID,
		State:     state,
		Events:    make([]*engine.Event, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if session.State == nil {
		session.State = make(map[string]any)
	}
	s.sessions[key] = session
	return session, nil
}

func (s *SessionService) Get(_ context.Context, appName, userID, sessionID string) (*engine.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionKey(appName, userID, sessionID)]
	if !ok {
		return nil, nil
	}
	return session, nil
}

func (s *SessionService) Delete(_ context.Context, appName, userID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionKey(appName, userID, sessionID))
	return nil
}

func (s *SessionService) List(_ context.Context, appName, userID string) ([]*engine.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*engine.Session, 0)
	for _, session := range s.sessions {
		if session.AppName == appName && session.UserID == userID {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}

func (s *SessionService) AppendEvent(_ context.Context, appName, userID, sessionID string, event *engine.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionKey(appName, userID, sessionID)]
	if !ok {
		return nil
	}
	session.Events = append(session.Events, event)
	session.UpdatedAt = time.Now()
	for k, v := range event.Actions.StateDelta {
		session.State[k] = v
	}
	return nil
}
