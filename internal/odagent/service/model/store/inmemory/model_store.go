package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jinzhu/copier"
	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/internal/odagent/service/model/domain/entity"
	"github.com/onedragon/odagent/internal/odagent/service/model/domain/repo"
)

// ModelConfigStore is the in-memory implementation of
// repo.ModelConfigRepository. Records are copied on the way in and out so
// callers cannot mutate stored state.
type ModelConfigStore struct {
	mu      sync.RWMutex
	configs map[string]*entity.OdaModelConfig
}

var _ repo.ModelConfigRepository = (*ModelConfigStore)(nil)

// NewModelConfigStore creates an empty in-memory store.
func NewModelConfigStore() *ModelConfigStore {
	return &ModelConfigStore{
		configs: make(map[string]*entity.OdaModelConfig),
	}
}

func cloneModelConfig(config *entity.OdaModelConfig) *entity.OdaModelConfig {
	out := &entity.OdaModelConfig{}
	_ = copier.CopyWithOption(out, config, copier.Option{DeepCopy: true})
	return out
}

func (s *ModelConfigStore) Create(_ context.Context, config *entity.OdaModelConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.configs[config.ModelID]; ok {
		return fmt.Errorf("model config %q: %w", config.ModelID, errno.ErrAlreadyExists)
	}
	s.configs[config.ModelID] = cloneModelConfig(config)
	return nil
}

func (s *ModelConfigStore) Get(_ context.Context, modelID string) (*entity.OdaModelConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	config, ok := s.configs[modelID]
	if !ok {
		return nil, nil
	}
	return cloneModelConfig(config), nil
}

func (s *ModelConfigStore) Update(_ context.Context, config *entity.OdaModelConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.configs[config.ModelID]; !ok {
		return fmt.Errorf("model config %q: %w", config.ModelID, errno.ErrNotFound)
	}
	s.configs[config.ModelID] = cloneModelConfig(config)
	return nil
}

func (s *ModelConfigStore) Delete(_ context.Context, modelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.configs, modelID)
	return nil
}

func (s *ModelConfigStore) List(_ context.Context) ([]*entity.OdaModelConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	configs := make([]*entity.OdaModelConfig, 0, len(s.configs))
	for _, config := range s.configs {
		configs = append(configs, cloneModelConfig(config))
	}
	return configs, nil
}
