package storage

import (
	"fmt"

	"github.com/Garsondee/Drone-Fleet/internal/config"
	"github.com/Garsondee/Drone-Fleet/internal/storage/gormstore"
	"github.com/Garsondee/Drone-Fleet/internal/storage/memory"
	"github.com/rs/zerolog"
)

// NewBackend creates a storage backend based on configuration. Type "none"
// (or empty) returns a nil backend and no error.
func NewBackend(cfg config.StorageConfig, log zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "memory":
		return memory.New(cfg.Memory), nil
	case "sqlite":
		return gormstore.NewSQLite(cfg.SQLite, log), nil
	case "postgres":
		return gormstore.NewPostgres(cfg.DB, log), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
