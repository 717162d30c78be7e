// Package postgres implements the storage backend on PostgreSQL. It owns the connection and
// hands the writes to the GORM backend.
package postgres

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rasim/simcore/internal/cache"
	"github.com/rasim/simcore/internal/config"
	"github.com/rasim/simcore/internal/database"
	"github.com/rasim/simcore/internal/logging"
	"github.com/rasim/simcore/internal/mission"
	gormstorage "github.com/rasim/simcore/internal/storage/gorm"
)

// Dependencies holds all dependencies for the Postgres storage backend.
type Dependencies struct {
	Rows       *cache.RowCache
	LogManager *logging.SlogManager
	Context    *mission.Context
	Logger     zerolog.Logger
}

// Backend connects to Postgres on Init and writes through an embedded GORM backend.
type Backend struct {
	*gormstorage.Backend
	cfg     config.DBConfig
	deps    Dependencies
	manager *database.Manager
}

// New creates a Postgres storage backend. Nothing is opened until Init.
func New(cfg config.DBConfig, deps Dependencies) *Backend {
	return &Backend{cfg: cfg, deps: deps}
}

// Init connects to the database and starts the writer. When Postgres cannot be reached the
// manager falls back to an in-memory SQLite database and the session is kept locally.
func (b *Backend) Init() error {
	b.manager = database.NewManager(b.deps.Logger)
	if err := b.manager.Connect(b.cfg); err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}

	b.Backend = gormstorage.New(gormstorage.Dependencies{
		DB:         b.manager.DB,
		Rows:       b.deps.Rows,
		LogManager: b.deps.LogManager,
		Context:    b.deps.Context,
	})
	if err := b.Backend.Init(); err != nil {
		_ = b.manager.Close()
		return err
	}
	return nil
}

// IsLocal reports whether Init fell back to the local SQLite database.
func (b *Backend) IsLocal() bool {
	return b.manager != nil && b.manager.ShouldSaveLocal
}

// Close drains the writer and releases the connection pool.
func (b *Backend) Close() error {
	if b.Backend == nil {
		return nil
	}
	err := b.Backend.Close()
	if cerr := b.manager.Close(); err == nil {
		err = cerr
	}
	return err
}
