package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/onedragon/odagent/internal/odagent/pkg/errno"
	"github.com/onedragon/odagent/internal/odagent/service/mcp"
	"github.com/onedragon/odagent/internal/odagent/storage/sqldb"
	"github.com/onedragon/odagent/pkg/utils/json"
)

// McpConfigStore is the SQL-backed implementation of mcp.ConfigRepository.
type McpConfigStore struct {
	db *sql.DB
}

var _ mcp.ConfigRepository = (*McpConfigStore)(nil)

// NewMcpConfigStore creates a store over the shared SQLite handle.
func NewMcpConfigStore(db *sqldb.DB) *McpConfigStore {
	return &McpConfigStore{db: db.SQL()}
}

func (s *McpConfigStore) Create(ctx context.Context, config *mcp.OdaMcpConfig) error {
	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal mcp config: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO `+sqldb.TableMcpConfigs+` (app_name, mcp_id, value)
		 SELECT ?, ?, ? WHERE NOT EXISTS (
			SELECT 1 FROM `+sqldb.TableMcpConfigs+` WHERE app_name = ? AND mcp_id = ?)`,
		config.AppName, config.McpID, string(data), config.AppName, config.McpID)
	if err != nil {
		return fmt.Errorf("failed to create mcp config %q: %w", config.GlobalID(), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("mcp config %q: %w", config.GlobalID(), errno.ErrAlreadyExists)
	}
	return nil
}

func (s *McpConfigStore) Get(ctx context.Context, appName, mcpID string) (*mcp.OdaMcpConfig, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM `+sqldb.TableMcpConfigs+` WHERE app_name = ? AND mcp_id = ?`,
		appName, mcpID).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mcp config %q: %w", mcp.GlobalID(appName, mcpID), err)
	}

	config := &mcp.OdaMcpConfig{}
	if err := json.Unmarshal([]byte(value), config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mcp config %q: %w", mcp.GlobalID(appName, mcpID), err)
	}
	return config, nil
}

func (s *McpConfigStore) Update(ctx context.Context, config *mcp.OdaMcpConfig) error {
	data, err := json.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal mcp config: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE `+sqldb.TableMcpConfigs+` SET value = ? WHERE app_name = ? AND mcp_id = ?`,
		string(data), config.AppName, config.McpID)
	if err != nil {
		return fmt.Errorf("failed to update mcp config %q: %w", config.GlobalID(), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("mcp config %q: %w", config.GlobalID(), errno.ErrNotFound)
	}
	return nil
}

func (s *McpConfigStore) Delete(ctx context.Context, appName, mcpID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM `+sqldb.TableMcpConfigs+` WHERE app_name = ? AND mcp_id = ?`,
		appName, mcpID); err != nil {
		return fmt.Errorf("failed to delete mcp config %q: %w", mcp.GlobalID(appName, mcpID), err)
	}
	return nil
}

func (s *McpConfigStore) List(ctx context.Context) ([]*mcp.OdaMcpConfig, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT value FROM `+sqldb.TableMcpConfigs+` ORDER BY app_name, mcp_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list mcp configs: %w", err)
	}
	defer rows.Close()

	configs := make([]*mcp.OdaMcpConfig, 0)
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to scan mcp config row: %w", err)
		}
		config := &mcp.OdaMcpConfig{}
		if err := json.Unmarshal([]byte(value), config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal mcp config: %w", err)
		}
		configs = append(configs, config)
	}
	return configs, rows.Err()
}
