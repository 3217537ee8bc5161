package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/internal/odagent/service/agent/domain/entity"
	"github.com/onedragon/odagent/internal/odagent/service/agent/domain/repo"
	"github.com/onedragon/odagent/internal/odagent/storage/sqldb"
	"github.com/onedragon/odagent/pkg/utils/json"
)

// AgentConfigStore is the SQL-backed implementation of
// repo.AgentConfigRepository.
type AgentConfigStore struct {
	db *sql.DB
}

var _ repo.AgentConfigRepository = (*AgentConfigStore)(nil)

// NewAgentConfigStore creates a store over the shared SQLite handle.
func NewAgentConfigStore(db *sqldb.DB) *AgentConfigStore {
	return &AgentConfigStore{db: db.SQL()}
}

func (s *AgentConfigStore) Create(ctx context.Context, config *entity.OdaAgentConfig) error {
	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal agent config: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO `+sqldb.TableAgentConfigs+` (app_name, agent_name, value)
		 SELECT ?, ?, ? WHERE NOT EXISTS (
			SELECT 1 FROM `+sqldb.TableAgentConfigs+` WHERE app_name = ? AND agent_name = ?)`,
		config.AppName, config.AgentName, string(data), config.AppName, config.AgentName)
	if err != nil {
		return fmt.Errorf("failed to create agent config %q: %w", config.AgentName, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("agent config %q: %w", config.AgentName, errno.ErrAlreadyExists)
	}
	return nil
}

func (s *AgentConfigStore) Get(ctx context.Context, agentName string) (*entity.OdaAgentConfig, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM `+sqldb.TableAgentConfigs+` WHERE agent_name = ? LIMIT 1`,
		agentName).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agent config %q: %w", agentName, err)
	}

	config := &entity.OdaAgentConfig{}
	if err := json.Unmarshal([]byte(value), config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal agent config %q: %w", agentName, err)
	}
	return config, nil
}

func (s *AgentConfigStore) Update(ctx context.Context, config *entity.OdaAgentConfig) error {
	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal agent config: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE `+sqldb.TableAgentConfigs+` SET value = ? WHERE app_name = ? AND agent_name = ?`,
		string(data), config.AppName, config.AgentName)
	if err != nil {
		return fmt.Errorf("failed to update agent config %q: %w", config.AgentName, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("agent config %q: %w", config.AgentName, errno.ErrNotFound)
	}
	return nil
}

func (s *AgentConfigStore) Delete(ctx context.Context, agentName string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM `+sqldb.TableAgentConfigs+` WHERE agent_name = ?`, agentName); err != nil {
		return fmt.Errorf("failed to delete agent config %q: %w", agentName, err)
	}
	return nil
}

func (s *AgentConfigStore) List(ctx context.Context) ([]*entity.OdaAgentConfig, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT value FROM `+sqldb.TableAgentConfigs+` ORDER BY app_name, agent_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list agent configs: %w", err)
	}
	defer rows.Close()

	configs := make([]*entity.OdaAgentConfig, 0)
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to scan agent config row: %w", err)
		}
		config := &entity.OdaAgentConfig{}
		if err := json.Unmarshal([]byte(value), config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal agent config: %w", err)
		}
		configs = append(configs, config)
	}
	return configs, rows.Err()
}
