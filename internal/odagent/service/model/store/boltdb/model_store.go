package boltdb

import (
	"context"
	"fmt"

	"github.com/boltdb/bolt"
	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/internal/odagent/service/model/domain/entity"
	"github.com/onedragon/odagent/internal/odagent/service/model/domain/repo"
	"github.com/onedragon/odagent/internal/odagent/storage/boltdb"
	"github.com/onedragon/odagent/pkg/utils/json"
)

// ModelConfigStore is the Bolt-backed implementation of
// repo.ModelConfigRepository.
type ModelConfigStore struct {
	boltDB *bolt.DB
}

var _ repo.ModelConfigRepository = (*ModelConfigStore)(nil)

// NewModelConfigStore creates a store over the shared Bolt handle.
func NewModelConfigStore(db *boltdb.DB) *ModelConfigStore {
	return &ModelConfigStore{boltDB: db.Bolt()}
}

func (s *ModelConfigStore) Create(_ context.Context, config *entity.OdaModelConfig) error {
	return s.boltDB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltdb.BucketModelConfigs)
		if b.Get([]byte(config.ModelID)) != nil {
			return fmt.Errorf("model config %q: %w", config.ModelID, errno.ErrAlreadyExists)
		}
		data, err := json.Marshal(config)
		if err != nil {
			return fmt.Errorf("failed to marshal model config: %w", err)
		}
		return b.Put([]byte(config.ModelID), data)
	})
}

func (s *ModelConfigStore) Get(_ context.Context, modelID string) (*entity.OdaModelConfig, error) {
	var config *entity.OdaModelConfig
	err := s.boltDB.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(boltdb.BucketModelConfigs).Get([]byte(modelID))
		if data == nil {
			return nil
		}
		config = &entity.OdaModelConfig{}
		return json.Unmarshal(data, config)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get model config %q: %w", modelID, err)
	}
	return config, nil
}

func (s *ModelConfigStore) Update(_ context.Context, config *entity.OdaModelConfig) error {
	return s.boltDB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltdb.BucketModelConfigs)
		if b.Get([]byte(config.ModelID)) == nil {
			return fmt.Errorf("model config %q: %w", config.ModelID, errno.ErrNotFound)
		}
		data, err := json.Marshal(config)
		if err != nil {
			return fmt.Errorf("failed to marshal model config: %w", err)
		}
		return b.Put([]byte(config.ModelID), data)
	})
}

func (s *ModelConfigStore) Delete(_ context.Context, modelID string) error {
	return s.boltDB.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltdb.BucketModelConfigs).Delete([]byte(modelID))
	})
}

func (s *ModelConfigStore) List(_ context.Context) ([]*entity.OdaModelConfig, error) {
	var configs []*entity.OdaModelConfig
	err := s.boltDB.View(func(tx *bolt.Tx) error {
		return tx.Bucket(boltdb.BucketModelConfigs).ForEach(func(_, v []byte) error {
			config := &entity.OdaModelConfig{}
			if err := json.Unmarshal(v, config); err != nil {
				return fmt.Errorf("failed to unmarshal model config: %w", err)
			}
			configs = append(configs, config)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list model configs: %w", err)
	}
	if configs == nil {
		configs = make([]*entity.OdaModelConfig, 0)
	}
	return configs, nil
}
