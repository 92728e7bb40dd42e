package localstore

import (
	"fmt"
	"path/filepath"

	"edulite-cli/internal/config"
	"edulite-cli/internal/edu"
	"edulite-cli/internal/localstore/migrations"
)

// NewStoreFromConfig creates a Store based on the local_store config type.
// The memory store is migrated on open; a file-backed store reports a schema
// mismatch instead, so the user runs the migrate command deliberately.
func NewStoreFromConfig(cfg config.LocalStoreConfig, clock edu.Clock) (Store, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite local store")
		}
		store, err := NewSQLiteStore(filepath.Join(cfg.DataDir, "edulite.db"), clock)
		if err != nil {
			return nil, err
		}
		if err := migrations.CheckDBMigrationStatus(store.DB()); err != nil {
			store.Close()
			return nil, fmt.Errorf("local store schema check failed: %w", err)
		}
		return store, nil
	case "memory":
		store, err := NewSQLiteStore(":memory:", clock)
		if err != nil {
			return nil, err
		}
		if err := migrations.MigrateUp(store.DB()); err != nil {
			store.Close()
			return nil, fmt.Errorf("migrating memory store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown local store type: %s", cfg.Type)
	}
}
