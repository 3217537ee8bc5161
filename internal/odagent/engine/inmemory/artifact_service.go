package inmemory

import (
	"context"
	"sync"

	"github.com/onedragon/odagent/internal/odagent/engine"
	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
)

// ArtifactService keeps run artifacts in process memory.
type ArtifactService struct {
	mu        sync.RWMutex
	artifacts map[string][]byte
}

var _ engine.ArtifactService = (*ArtifactService)(nil)

// NewArtifactService creates an empty in-memory artifact service.
func NewArtifactService() *ArtifactService {
	return &ArtifactService{
		artifacts: make(map[string][]byte),
	}
}

func artifactKey(appName, userID, sessionID, name string) string {
	return appName + ":" + userID + ":" + sessionID + ":" + name
}

func (s *ArtifactService) Save(_ context.Context, appName, userID, sessionID, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	s.artifacts[artifactKey(appName, userID, sessionID, name)] = buf
	return nil
}

func (s *ArtifactService) Load(_ context.Context, appName, userID, sessionID, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.artifacts[artifactKey(appName, userID, sessionID, name)]
	if !ok {
		return nil, errno.ErrNotFound
	}
	return data, nil
}

func (s *ArtifactService) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.artifacts = make(map[string][]byte)
	return nil
}
