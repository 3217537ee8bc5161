// Package sqldb owns the SQLite handle shared by the sql-backed config
// stores. Each config kind uses one table keyed by (app_name, inner id)
// with a single JSON value column carrying the remaining fields.
package sqldb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const (
	TableModelConfigs = "model_configs"
	TableAgentConfigs = "agent_configs"
	TableMcpConfigs   = "mcp_configs"
)

// DB wraps a SQLite database and manages its lifecycle.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + TableModelConfigs + ` (
			app_name TEXT NOT NULL,
			model_id TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (app_name, model_id)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + TableAgentConfigs + ` (
			app_name TEXT NOT NULL,
			agent_name TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (app_name, agent_name)
		)`,
		`CREATE TABLE IF NOT EXISTS ` + TableMcpConfigs + ` (
			app_name TEXT NOT NULL,
			mcp_id TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (app_name, mcp_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec schema: %w", err)
		}
	}
	return nil
}

// SQL returns the underlying database handle.
func (d *DB) SQL() *sql.DB {
	return d.db
}

// Close closes the underlying database.
func (d *DB) Close() error {
	return d.db.Close()
}
