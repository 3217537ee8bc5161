package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/internal/odagent/service/model/domain/entity"
	"github.com/onedragon/odagent/internal/odagent/service/model/domain/repo"
	"github.com/onedragon/odagent/internal/odagent/storage/sqldb"
	"github.com/onedragon/odagent/pkg/utils/json"
)

// ModelConfigStore is the SQL-backed implementation of
// repo.ModelConfigRepository. Rows are keyed by (app_name, model_id) with
// the full record serialized into the value column.
type ModelConfigStore struct {
	db *sql.DB
}

var _ repo.ModelConfigRepository = (*ModelConfigStore)(nil)

// NewModelConfigStore creates a store over the shared SQLite handle.
func NewModelConfigStore(db *sqldb.DB) *ModelConfigStore {
	return &ModelConfigStore{db: db.SQL()}
}

func (s *ModelConfigStore) Create(ctx context.Context, config *entity.OdaModelConfig) error {
	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal model config: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO `+sqldb.TableModelConfigs+` (app_name, model_id, value)
		 SELECT ?, ?, ? WHERE NOT EXISTS (
			SELECT 1 FROM `+sqldb.TableModelConfigs+` WHERE app_name = ? AND model_id = ?)`,
		config.AppName, config.ModelID, string(data), config.AppName, config.ModelID)
	if err != nil {
		return fmt.Errorf("failed to create model config %q: %w", config.ModelID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("model config %q: %w", config.ModelID, errno.ErrAlreadyExists)
	}
	return nil
}

func (s *ModelConfigStore) Get(ctx context.Context, modelID string) (*entity.OdaModelConfig, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM `+sqldb.TableModelConfigs+` WHERE model_id = ? LIMIT 1`,
		modelID).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get model config %q: %w", modelID, err)
	}

	config := &entity.OdaModelConfig{}
	if err := json.Unmarshal([]byte(value), config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model config %q: %w", modelID, err)
	}
	return config, nil
}

func (s *ModelConfigStore) Update(ctx context.Context, config *entity.OdaModelConfig) error {
	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal model config: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE `+sqldb.TableModelConfigs+` SET value = ? WHERE app_name = ? AND model_id = ?`,
		string(data), config.AppName, config.ModelID)
	if err != nil {
		return fmt.Errorf("failed to update model config %q: %w", config.ModelID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("model config %q: %w", config.ModelID, errno.ErrNotFound)
	}
	return nil
}

func (s *ModelConfigStore) Delete(ctx context.Context, modelID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM `+sqldb.TableModelConfigs+` WHERE model_id = ?`, modelID); err != nil {
		return fmt.Errorf("failed to delete model config %q: %w", modelID, err)
	}
	return nil
}

func (s *ModelConfigStore) List(ctx context.Context) ([]*entity.OdaModelConfig, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT value FROM `+sqldb.TableModelConfigs+` ORDER BY app_name, model_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list model configs: %w", err)
	}
	defer rows.Close()

	configs := make([]*entity.OdaModelConfig, 0)
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to scan model config row: %w", err)
		}
		config := &entity.OdaModelConfig{}
		if err := json.Unmarshal([]byte(value), config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal model config: %w", err)
		}
		configs = append(configs, config)
	}
	return configs, rows.Err()
}
