package inmemory

import (
	"context"
	"sync"

	"github.com/onedragon/odagent/internal/odagent/engine"
)

// MemoryService retains completed sessions for recall. The in-memory
// variant keeps whole session records in the order they were added.
type MemoryService struct {
	mu       sync.Mutex
	sessions []*engine.Session
}

var _ engine.MemoryService = (*MemoryService)(nil)

// NewMemoryService creates an empty in-memory memory service.
func NewMemoryService() *MemoryService {
	return &MemoryService{}
}

func (s *MemoryService) AddSessionToMemory(_ context.Context, session *engine.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = append(s.sessions, session)
	return nil
}

func (s *MemoryService) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = nil
	return nil
}
