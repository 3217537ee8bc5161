package boltdb

import (
	"context"
	"fmt"

	"github.com/boltdb/bolt"
	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/internal/odagent/service/mcp"
	"github.com/onedragon/odagent/internal/odagent/storage/boltdb"
	"github.com/onedragon/odagent/pkg/utils/json"
)

// McpConfigStore is the Bolt-backed implementation of mcp.ConfigRepository.
// Keys are the "app_name:mcp_id" global identifiers.
type McpConfigStore struct {
	boltDB *bolt.DB
}

var _ mcp.ConfigRepository = (*McpConfigStore)(nil)

// NewMcpConfigStore creates a store over the shared Bolt handle.
func NewMcpConfigStore(db *boltdb.DB) *McpConfigStore {
	return &McpConfigStore{boltDB: db.Bolt()}
}

func (s *McpConfigStore) Create(_ context.Context, config *mcp.OdaMcpConfig) error {
	return s.boltDB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltdb.BucketMcpConfigs)
		key := []byte(config.GlobalID())
		if b.Get(key) != nil {
			return fmt.Errorf("mcp config %q: %w", config.GlobalID(), errno.ErrAlreadyExists)
		}
		data, err := json.Marshal(config)
		if err != nil {
			return fmt.Errorf("failed to marshal mcp config: %w", err)
		}
		return b.Put(key, data)
	})
}

func (s *McpConfigStore) Get(_ context.Context, appName, mcpID string) (*mcp.OdaMcpConfig, error) {
	var config *mcp.OdaMcpConfig
	err := s.boltDB.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(boltdb.BucketMcpConfigs).Get([]byte(mcp.GlobalID(appName, mcpID)))
		if data == nil {
			return nil
		}
		config = &mcp.OdaMcpConfig{}
		return json.Unmarshal(data, config)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get mcp config %q: %w", mcp.GlobalID(appName, mcpID), err)
	}
	return config, nil
}

func (s *McpConfigStore) Update(_ context.Context, config *mcp.OdaMcpConfig) error {
	return s.boltDB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltdb.BucketMcpConfigs)
		key := []byte(config.GlobalID())
		if b.Get(key) == nil {
			return fmt.Errorf("mcp config %q: %w", config.GlobalID(), errno.ErrNotFound)
		}
		data, err := json.Marshal(config)
		if err != nil {
			return fmt.Errorf("failed to marshal mcp config: %w", err)
		}
		return b.Put(key, data)
	})
}

func (s *McpConfigStore) Delete(_ context.Context, appName, mcpID string) error {
	return s.boltDB.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltdb.BucketMcpConfigs).Delete([]byte(mcp.GlobalID(appName, mcpID)))
	})
}

func (s *McpConfigStore) List(_ context.Context) ([]*mcp.OdaMcpConfig, error) {
	var configs []*mcp.OdaMcpConfig
	err := s.boltDB.View(func(tx *bolt.Tx) error {
		return tx.Bucket(boltdb.BucketMcpConfigs).ForEach(func(_, v []byte) error {
			config := &mcp.OdaMcpConfig{}
			if err := json.Unmarshal(v, config); err != nil {
				return fmt.Errorf("failed to unmarshal mcp config: %w", err)
			}
			configs = append(configs, config)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list mcp configs: %w", err)
	}
	if configs == nil {
		configs = make([]*mcp.OdaMcpConfig, 0)
	}
	return configs, nil
}
