package storage

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rasim/simcore/internal/cache"
	"github.com/rasim/simcore/internal/config"
	"github.com/rasim/simcore/internal/logging"
	"github.com/rasim/simcore/internal/mission"
	"github.com/rasim/simcore/internal/storage/memory"
	"github.com/rasim/simcore/internal/storage/postgres"
	sqlitestorage "github.com/rasim/simcore/internal/storage/sqlite"
)

// Dependencies holds what the database-backed implementations share with the engine.
type Dependencies struct {
	Rows       *cache.RowCache
	LogManager *logging.SlogManager
	Context    *mission.Context
	DBLogger   zerolog.Logger
}

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, db config.DBConfig, deps Dependencies) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		return postgres.New(db, postgres.Dependencies{
			Rows:       deps.Rows,
			LogManager: deps.LogManager,
			Context:    deps.Context,
			Logger:     deps.DBLogger,
		}), nil
	case "sqlite":
		b, err := sqlitestorage.New(sqlitestorage.Config{
			DumpInterval: cfg.SQLite.DumpInterval,
			DumpPath:     cfg.SQLite.DumpPath,
		}, deps.Rows, deps.LogManager, deps.Context)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "memory", "":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
