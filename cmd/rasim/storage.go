package main

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/rasim/simcore/internal/api"
	"github.com/rasim/simcore/internal/config"
	"github.com/rasim/simcore/internal/model"
	"github.com/rasim/simcore/internal/storage"
	"github.com/rasim/simcore/internal/storage/memory"
)

func createStorageBackend(storageCfg config.StorageConfig) (storage.Backend, error) {
	backend, err := storage.NewBackend(storageCfg, config.GetDBConfig(), storage.Dependencies{
		Rows:       rowCache,
		LogManager: SlogManager,
		Context:    missionCtx,
		DBLogger:   ZLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}
	Logger.Info("Storage backend created", "type", storageCfg.Type)
	return backend, nil
}

// databaseOf returns the connection behind a database-backed storage, or nil for the memory
// backend.
func databaseOf(b storage.Backend) *gorm.DB {
	if d, ok := b.(interface{ DB() *gorm.DB }); ok {
		return d.DB()
	}
	return nil
}

// uploadReport sends the file the backend left behind to the results server when the API is
// enabled. Failures are logged; the local file is kept either way.
func uploadReport(lastScenario string) {
	if !config.GetBool("api.enabled") {
		return
	}
	ex, ok := storageBackend.(storage.Exporter)
	if !ok || ex.ExportedFilePath() == "" {
		Logger.Info("Nothing to upload", "storage", config.GetStorageConfig().Type)
		return
	}

	sess := model.Session{UUID: engine.SessionID()}
	if mem, ok := storageBackend.(*memory.Backend); ok {
		sess = mem.Report().Session
	}

	client := api.New(config.GetString("api.serverUrl"), config.GetString("api.apiKey"))
	if err := client.Healthcheck(); err != nil {
		Logger.Warn("Results server is offline, report not uploaded", "error", err, "path", ex.ExportedFilePath())
		return
	}
	meta := api.MetadataFor(sess, lastScenario, config.GetString("api.tag"))
	if err := client.Upload(ex.ExportedFilePath(), meta); err != nil {
		Logger.Error("Failed to upload report", "error", err, "path", ex.ExportedFilePath())
		return
	}
	Logger.Info("Report uploaded", "path", ex.ExportedFilePath(), "session", meta.SessionID)
}
