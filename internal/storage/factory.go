// internal/storage/factory.go
package storage

import (
	"fmt"
	"log/slog"

	"github.com/OCAP2/dirline/internal/config"
	"github.com/OCAP2/dirline/internal/database"
	"github.com/OCAP2/dirline/internal/storage/gormstore"
	"github.com/OCAP2/dirline/internal/storage/memory"
)

// NewBackend creates a snapshot store based on configuration
func NewBackend(cfg config.StorageConfig, log *slog.Logger) (Backend, error) {
	if log == nil {
		log = slog.Default()
	}
	switch cfg.Type {
	case "postgres":
		db, err := database.OpenPostgres(cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return gormstore.New(gormstore.Dependencies{DB: db, Logger: log}), nil
	case "sqlite":
		return gormstore.NewSQLite(gormstore.SQLiteConfig{
			DumpPath:     cfg.SQLite.Path,
			DumpInterval: cfg.SQLite.DumpInterval,
		}, log)
	case "memory", "":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
