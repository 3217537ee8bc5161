package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/onedragon/odagent/internal/odagent/engine"
	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/pkg/logger"
)

// OdaSessionManager owns the global session pool: creation, lookup,
// listing, deletion, the concurrency cap, and idle reaping. Only the
// manager mutates the pool, always under its lock; engine calls and
// per-session cleanup happen against individual sessions.
type OdaSessionManager struct {
	sessionService engine.SessionService
	agentFactory   AgentFactory

	mu            sync.Mutex
	pool          map[string]*OdaSession
	lastAccess    map[string]time.Time
	maxConcurrent int
}

// NewOdaSessionManager creates an empty manager. A zero cap means
// unlimited concurrent sessions.
func NewOdaSessionManager(sessionService engine.SessionService, agentFactory AgentFactory) *OdaSessionManager {
	return &OdaSessionManager{
		sessionService: sessionService,
		agentFactory:   agentFactory,
		pool:           make(map[string]*OdaSession),
		lastAccess:     make(map[string]time.Time),
	}
}

func sessionKey(appName, userID, sessionID string) string {
	return fmt.Sprintf("%s:%s:%s", appName, userID, sessionID)
}

// CreateSession creates a session for the triple, generating session_id
// when absent. Creating an existing triple returns the existing session.
// With a cap set, exceeding it fails with errno.ErrOverloaded.
func (m *OdaSessionManager) CreateSession(ctx context.Context, appName, userID, sessionID string) (*OdaSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sessionID != "" {
		if existing, ok := m.pool[sessionKey(appName, userID, sessionID)]; ok {
			m.lastAccess[sessionKey(appName, userID, sessionID)] = time.Now()
			return existing, nil
		}
	}

	if m.maxConcurrent > 0 && len(m.pool) >= m.maxConcurrent {
		return nil, fmt.Errorf("maximum concurrent sessions limit (%d) reached: %w",
			m.maxConcurrent, errno.ErrOverloaded)
	}

	record, err := m.sessionService.Create(ctx, appName, userID, sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine session: %w", err)
	}

	session := m.newPooledSession(appName, userID, record.ID)
	logger.InfoX(moduleName, "created session: %s for user %s in app %s", record.ID, userID, appName)
	return session, nil
}

// GetSession returns the pooled session for the triple. On a pool miss the
// engine session store is consulted: a known triple is materialized into a
// fresh wrapper, an unknown one yields nil.
func (m *OdaSessionManager) GetSession(ctx context.Context, appName, userID, sessionID string) (*OdaSession, error) {
	key := sessionKey(appName, userID, sessionID)

	m.mu.Lock()
	if session, ok := m.pool[key]; ok {
		m.lastAccess[key] = time.Now()
		m.mu.Unlock()
		return session, nil
	}
	m.mu.Unlock()

	record, err := m.sessionService.Get(ctx, appName, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query engine session: %w", err)
	}
	if record == nil {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.pool[key]; ok {
		m.lastAccess[key] = time.Now()
		return session, nil
	}
	return m.newPooledSession(appName, userID, sessionID), nil
}

// ListSessions returns every pooled session for (appName, userID).
func (m *OdaSessionManager) ListSessions(_ context.Context, appName, userID string) []*OdaSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := appName + ":" + userID + ":"
	sessions := make([]*OdaSession, 0)
	for key, session := range m.pool {
		if strings.HasPrefix(key, prefix) {
			sessions = append(sessions, session)
		}
	}
	return sessions
}

// DeleteSession removes the session from the pool, disposes its executors,
// and deletes the engine record. Deleting an absent session succeeds.
func (m *OdaSessionManager) DeleteSession(ctx context.Context, appName, userID, sessionID string) error {
	key := sessionKey(appName, userID, sessionID)

	m.mu.Lock()
	session := m.pool[key]
	delete(m.pool, key)
	delete(m.lastAccess, key)
	m.mu.Unlock()

	if session != nil {
		session.Cleanup(ctx)
	}

	if err := m.sessionService.Delete(ctx, appName, userID, sessionID); err != nil {
		return fmt.Errorf("failed to delete engine session: %w", err)
	}
	logger.InfoX(moduleName, "deleted session: %s for user %s in app %s", sessionID, userID, appName)
	return nil
}

// CleanupInactiveSessions deletes every session idle for longer than
// timeout. Invoked by the host; the manager runs no timer of its own.
func (m *OdaSessionManager) CleanupInactiveSessions(ctx context.Context, timeout time.Duration) error {
	now := time.Now()

	m.mu.Lock()
	expired := make([]*OdaSession, 0)
	for key, last := range m.lastAccess {
		if now.Sub(last) > timeout {
			if session, ok := m.pool[key]; ok {
				expired = append(expired, session)
			}
			delete(m.pool, key)
			delete(m.lastAccess, key)
		}
	}
	m.mu.Unlock()

	for _, session := range expired {
		session.Cleanup(ctx)
		if err := m.sessionService.Delete(ctx, session.AppName(), session.UserID(), session.SessionID()); err != nil {
			logger.WarnX(moduleName, "failed to delete expired engine session %s: %v", session.SessionID(), err)
			continue
		}
		logger.InfoX(moduleName, "cleaned up expired session: %s for user %s in app %s",
			session.SessionID(), session.UserID(), session.AppName())
	}
	return nil
}

// SetConcurrentLimit updates the session cap. Existing sessions are not
// evicted; a zero or negative n removes the cap.
func (m *OdaSessionManager) SetConcurrentLimit(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxConcurrent = n
}

// SessionCount returns the number of pooled sessions.
func (m *OdaSessionManager) SessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pool)
}

// Shutdown deletes every pooled session, used by the context teardown.
func (m *OdaSessionManager) Shutdown(ctx context.Context) {
	m.mu.Lock()
	sessions := make([]*OdaSession, 0, len(m.pool))
	for _, session := range m.pool {
		sessions = append(sessions, session)
	}
	m.pool = make(map[string]*OdaSession)
	m.lastAccess = make(map[string]time.Time)
	m.mu.Unlock()

	for _, session := range sessions {
		session.Cleanup(ctx)
		if err := m.sessionService.Delete(ctx, session.AppName(), session.UserID(), session.SessionID()); err != nil {
			logger.WarnX(moduleName, "failed to delete engine session %s during shutdown: %v", session.SessionID(), err)
		}
	}
}

// newPooledSession wraps a triple, installs the activity callback, and
// inserts it into the pool. Callers hold m.mu.
func (m *OdaSessionManager) newPooledSession(appName, userID, sessionID string) *OdaSession {
	key := sessionKey(appName, userID, sessionID)
	session := NewOdaSession(appName, userID, sessionID, m.agentFactory)
	session.touch = func() {
		m.mu.Lock()
		// A session already evicted from the pool must not regain a
		// last-access entry.
		if _, ok := m.pool[key]; ok {
			m.lastAccess[key] = time.Now()
		}
		m.mu.Unlock()
	}
	m.pool[key] = session
	m.lastAccess[key] = time.Now()
	return session
}
