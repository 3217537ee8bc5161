package boltdb

import (
	"context"
	"fmt"

	"github.com/boltdb/bolt"
	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/internal/odagent/service/agent/domain/entity"
	"github.com/onedragon/odagent/internal/odagent/service/agent/domain/repo"
	"github.com/onedragon/odagent/internal/odagent/storage/boltdb"
	"github.com/onedragon/odagent/pkg/utils/json"
)

// AgentConfigStore is the Bolt-backed implementation of
// repo.AgentConfigRepository.
type AgentConfigStore struct {
	boltDB *bolt.DB
}

var _ repo.AgentConfigRepository = (*AgentConfigStore)(nil)

// NewAgentConfigStore creates a store over the shared Bolt handle.
func NewAgentConfigStore(db *boltdb.DB) *AgentConfigStore {
	return &AgentConfigStore{boltDB: db.Bolt()}
}

func (s *AgentConfigStore) Create(_ context.Context, config *entity.OdaAgentConfig) error {
	return s.boltDB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltdb.BucketAgentConfigs)
		if b.Get([]byte(config.AgentName)) != nil {
			return fmt.Errorf("agent config %q: %w", config.AgentName, errno.ErrAlreadyExists)
		}
		data, err := json.Marshal(config)
		if err != nil {
			return fmt.Errorf("failed to marshal agent config: %w", err)
		}
		return b.Put([]byte(config.AgentName), data)
	})
}

func (s *AgentConfigStore) Get(_ context.Context, agentName string) (*entity.OdaAgentConfig, error) {
	var config *entity.OdaAgentConfig
	err := s.boltDB.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(boltdb.BucketAgentConfigs).Get([]byte(agentName))
		if data == nil {
			return nil
		}
		config = &entity.OdaAgentConfig{}
		return json.Unmarshal(data, config)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get agent config %q: %w", agentName, err)
	}
	return config, nil
}

func (s *AgentConfigStore) Update(_ context.Context, config *entity.OdaAgentConfig) error {
	return s.boltDB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltdb.BucketAgentConfigs)
		if b.Get([]byte(config.AgentName)) == nil {
			return fmt.Errorf("agent config %q: %w", config.AgentName, errno.ErrNotFound)
		}
		data, err := json.Marshal(config)
		if err != nil {
			return fmt.Errorf("failed to marshal agent config: %w", err)
		}
		return b.Put([]byte(config.AgentName), data)
	})
}

func (s *AgentConfigStore) Delete(_ context.Context, agentName string) error {
	return s.boltDB.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltdb.BucketAgentConfigs).Delete([]byte(agentName))
	})
}

func (s *AgentConfigStore) List(_ context.Context) ([]*entity.OdaAgentConfig, error) {
	var configs []*entity.OdaAgentConfig
	err := s.boltDB.View(func(tx *bolt.Tx) error {
		return tx.Bucket(boltdb.BucketAgentConfigs).ForEach(func(_, v []byte) error {
			config := &entity.OdaAgentConfig{}
			if err := json.Unmarshal(v, config); err != nil {
				return fmt.Errorf("failed to unmarshal agent config: %w", err)
			}
			configs = append(configs, config)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list agent configs: %w", err)
	}
	if configs == nil {
		configs = make([]*entity.OdaAgentConfig, 0)
	}
	return configs, nil
}
