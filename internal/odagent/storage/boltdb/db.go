// Package boltdb owns the Bolt handle shared by the bolt-backed config
// stores. One bucket per config kind, JSON values.
package boltdb

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/boltdb/bolt"
)

var (
	BucketModelConfigs = []byte("model_configs")
	BucketAgentConfigs = []byte("agent_configs")
	BucketMcpConfigs   = []byte("mcp_configs")
)

// DB wraps a BoltDB instance and manages its lifecycle.
type DB struct {
	db *bolt.DB
}

// Open opens (or creates) the database at path and ensures all buckets.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{BucketModelConfigs, BucketAgentConfigs, BucketMcpConfigs} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %q: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}
	return &DB{db: db}, nil
}

// Bolt returns the underlying BoltDB instance.
func (d *DB) Bolt() *bolt.DB {
	return d.db
}

// Close closes the underlying BoltDB instance.
func (d *DB) Close() error {
	return d.db.Close()
}
