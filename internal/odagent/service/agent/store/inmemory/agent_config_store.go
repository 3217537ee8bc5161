package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jinzhu/copier"
	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/internal/odagent/service/agent/domain/entity"
	"github.com/onedragon/odagent/internal/odagent/service/agent/domain/repo"
)

// AgentConfigStore is the in-memory implementation of
// repo.AgentConfigRepository.
type AgentConfigStore struct {
	mu      sync.RWMutex
	configs map[string]*entity.OdaAgentConfig
}

var _ repo.AgentConfigRepository = (*AgentConfigStore)(nil)

// NewAgentConfigStore creates an empty in-memory store.
func NewAgentConfigStore() *AgentConfigStore {
	return &AgentConfigStore{
		configs: make(map[string]*entity.OdaAgentConfig),
	}
}

func cloneAgentConfig(config *entity.OdaAgentConfig) *entity.OdaAgentConfig {
	out := &entity.OdaAgentConfig{}
	_ = copier.CopyWithOption(out, config, copier.Option{DeepCopy: true})
	return out
}

func (s *AgentConfigStore) Create(_ context.Context, config *entity.OdaAgentConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.configs[config.AgentName]; ok {
		return fmt.Errorf("agent config %q: %w", config.AgentName, errno.ErrAlreadyExists)
	}
	s.configs[config.AgentName] = cloneAgentConfig(config)
	return nil
}

func (s *AgentConfigStore) Get(_ context.Context, agentName string) (*entity.OdaAgentConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	config, ok := s.configs[agentName]
	if !ok {
		return nil, nil
	}
	return cloneAgentConfig(config), nil
}

func (s *AgentConfigStore) Update(_ context.Context, config *entity.OdaAgentConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.configs[config.AgentName]; !ok {
		return fmt.Errorf("agent config %q: %w", config.AgentName, errno.ErrNotFound)
	}
	s.configs[config.AgentName] = cloneAgentConfig(config)
	return nil
}

func (s *AgentConfigStore) Delete(_ context.Context, agentName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.configs, agentName)
	return nil
}

func (s *AgentConfigStore) List(_ context.Context) ([]*entity.OdaAgentConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	configs := make([]*entity.OdaAgentConfig, 0, len(s.configs))
	for _, config := range s.configs {
		configs = append(configs, cloneAgentConfig(config))
	}
	return configs, nil
}
