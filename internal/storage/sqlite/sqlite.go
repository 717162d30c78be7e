// Package sqlitestorage implements the storage backend on an in-memory SQLite database with
// periodic disk dumps via VACUUM INTO. It wraps the GORM backend and only adds the
// in-memory database and the dump loop.
package sqlitestorage

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/rasim/simcore/internal/cache"
	"github.com/rasim/simcore/internal/database"
	"github.com/rasim/simcore/internal/logging"
	"github.com/rasim/simcore/internal/mission"
	gormstorage "github.com/rasim/simcore/internal/storage/gorm"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	DumpInterval time.Duration
	DumpPath     string // Path for periodic VACUUM INTO dumps
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db       *gorm.DB
	cfg      Config
	log      *logging.SlogManager
	stopChan chan struct{}
	done     chan struct{}
	closed   bool
}

// New creates a new SQLite storage backend.
func New(cfg Config, rows *cache.RowCache, logManager *logging.SlogManager, ctx *mission.Context) (*Backend, error) {
	db, err := database.OpenSqlite("")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}
	if logManager == nil {
		logManager = logging.NewSlogManager()
	}

	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			DB:         db,
			Rows:       rows,
			LogManager: logManager,
			Context:    ctx,
		}),
		db:       db,
		cfg:      cfg,
		log:      logManager,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Init initializes the embedded GORM backend and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		go b.dumpLoop()
	} else {
		close(b.done)
	}
	return nil
}

// Close stops the dump goroutine, closes the embedded GORM backend and writes a final dump.
func (b *Backend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	close(b.stopChan)
	<-b.done

	if err := b.Backend.Close(); err != nil {
		return err
	}
	if b.cfg.DumpPath == "" {
		return nil
	}
	if err := database.DumpMemoryDBToDisk(b.db, b.cfg.DumpPath); err != nil {
		return fmt.Errorf("final dump: %w", err)
	}
	return nil
}

// ExportedFilePath returns the dump file, or "" when dumps are disabled.
func (b *Backend) ExportedFilePath() string {
	return b.cfg.DumpPath
}

// dumpLoop periodically dumps the in-memory SQLite database to disk via VACUUM INTO.
// VACUUM INTO creates a point-in-time snapshot, so no pause mechanism is needed.
func (b *Backend) dumpLoop() {
	defer close(b.done)
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			start := time.Now()
			if err := b.Flush(); err != nil {
				b.log.WriteLog("sqlite:dumpLoop", fmt.Sprintf("Error flushing before dump: %v", err), "WARN")
			}
			if err := database.DumpMemoryDBToDisk(b.db, b.cfg.DumpPath); err != nil {
				b.log.WriteLog("sqlite:dumpLoop", fmt.Sprintf("Error dumping to disk: %v", err), "ERROR")
			} else {
				b.log.WriteLog("sqlite:dumpLoop", fmt.Sprintf("Dumped to disk in %s", time.Since(start)), "DEBUG")
			}
		}
	}
}
