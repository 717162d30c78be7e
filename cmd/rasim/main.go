package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/rasim/simcore/internal/cache"
	"github.com/rasim/simcore/internal/config"
	"github.com/rasim/simcore/internal/dispatcher"
	"github.com/rasim/simcore/internal/influx"
	"github.com/rasim/simcore/internal/logging"
	"github.com/rasim/simcore/internal/mission"
	"github.com/rasim/simcore/internal/monitor"
	intOtel "github.com/rasim/simcore/internal/otel"
	"github.com/rasim/simcore/internal/session"
	"github.com/rasim/simcore/internal/storage"
	"github.com/rasim/simcore/internal/worker"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "rasim"
)

// global variables
var (
	// ConfigDir is where rasim.cfg.json is looked up, overridable with RASIM_CONFIG_DIR.
	ConfigDir string = "."

	LogFilePath string
	LogFile     *os.File

	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// ZLogger feeds the dispatcher, database and InfluxDB managers
	ZLogger zerolog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	SessionStartTime time.Time = time.Now()

	// lastScenario is the scenario most recently started, reported with the upload
	lastScenario string

	// Services
	missionCtx      *mission.Context
	rowCache        *cache.RowCache
	fileCache       *cache.FileCache
	influxManager   *influx.Manager
	storageBackend  storage.Backend
	engine          *session.Engine
	workerManager   *worker.Manager
	monitorService  *monitor.Service
	eventDispatcher *dispatcher.Dispatcher
)

func main() {
	if dir := os.Getenv("RASIM_CONFIG_DIR"); dir != "" {
		ConfigDir = dir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runCLI(ctx, os.Args[1:], os.Stdout); err != nil {
		if Logger != nil {
			Logger.Error("rasim failed", "error", err)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setupLogging loads the configuration and routes logs to the session log file, Graylog and
// OTel as configured.
func setupLogging() error {
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, "info", nil, nil)
	Logger = SlogManager.Logger()

	if err := config.Load(ConfigDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config", "dir", ConfigDir)
	}

	LogFilePath = logging.LogFilePath(config.GetString("logsDir"), AppName, SessionStartTime)
	var err error
	if LogFile, err = logging.OpenLogFile(LogFilePath); err != nil {
		return err
	}

	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		OTelProvider, err = intOtel.New(intOtel.Config{
			Enabled:      otelCfg.Enabled,
			ServiceName:  otelCfg.ServiceName,
			BatchTimeout: otelCfg.BatchTimeout,
			Version:      CurrentVersion,
			LogWriter:    LogFile,
			Endpoint:     otelCfg.Endpoint,
			Insecure:     otelCfg.Insecure,
			Attributes: []attribute.KeyValue{
				attribute.String("rasim.session.type", config.GetString("session.type")),
			},
		})
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		} else {
			Logger.Info("OTel provider initialized", "file", LogFilePath, "endpoint", otelCfg.Endpoint)
		}
	}

	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}

	var gelfWriter io.Writer
	if config.GetBool("graylog.enabled") {
		w, err := logging.NewGelfWriter(config.GetString("graylog.address"))
		if err != nil {
			Logger.Error("Failed to connect to Graylog", "error", err)
		} else {
			gelfWriter = w
		}
	}

	level := config.GetString("logLevel")
	missionCtx = mission.NewContext()
	SlogManager.SetContextProvider(missionCtx.Attrs)
	SlogManager.Setup(LogFile, level, otelLogProvider, gelfWriter)
	Logger = SlogManager.Logger()
	ZLogger = logging.NewZerolog(LogFile, level)

	Logger.Info("Logging to file", "path", LogFilePath, "version", CurrentVersion, "build", BuildDate)
	return nil
}

// startServices builds everything a session needs: storage, telemetry, the engine, the command
// dispatcher and the status monitor.
func startServices(ctx context.Context) error {
	rowCache = cache.NewRowCache()
	fileCache = cache.NewFileCache()

	backend, err := createStorageBackend(config.GetStorageConfig())
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	storageBackend = backend

	influxManager = influx.NewManager(ZLogger, config.GetInfluxConfig(),
		filepath.Join(config.GetString("dataDir"), fmt.Sprintf("%s_%s.lp.gz", AppName, SessionStartTime.Format("20060102_150405"))))
	if err := influxManager.Connect(ctx); err != nil && !errors.Is(err, influx.ErrDisabled) {
		Logger.Warn("InfluxDB unavailable, tick metrics go to backup file", "error", err)
	}

	sessionCfg, err := config.GetSessionConfig()
	if err != nil {
		return err
	}
	engine, err = session.New(session.Dependencies{
		Config:  sessionCfg,
		Logger:  Logger,
		Storage: storageBackend,
		Influx:  influxManager,
		Context: missionCtx,
		Files:   fileCache,
	})
	if err != nil {
		return err
	}

	eventDispatcher, err = dispatcher.New(logging.NewDispatcherLogger(ZLogger))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	workerManager = worker.NewManager(ctx, worker.Dependencies{
		Engine:     engine,
		LogManager: SlogManager,
	})
	workerManager.RegisterHandlers(eventDispatcher)
	Logger.Debug("Worker handlers registered with dispatcher", "commands", eventDispatcher.Commands())

	if config.GetBool("monitor.enabled") {
		monitorService = monitor.NewService(monitor.Dependencies{
			DB:         databaseOf(storageBackend),
			LogManager: SlogManager,
			Engine:     engine,
			Queues:     eventDispatcher,
			StatusDir:  config.GetString("logsDir"),
			Interval:   config.GetDuration("monitor.interval"),
		})
		if db := databaseOf(storageBackend); db != nil && db.Dialector.Name() == "postgres" && config.GetBool("db.timescale") {
			if err := monitorService.ValidateHypertables(map[string][]string{
				"engine_status": {"session_id"},
			}); err != nil {
				Logger.Warn("Hypertable setup failed", "error", err)
			}
		}
		if err := monitorService.Start(); err != nil {
			Logger.Warn("Status monitor not started", "error", err)
		}
	}
	return nil
}

// stopServices shuts everything down in reverse order and uploads the session report once the
// storage has written it. It is safe to call after a partial start.
func stopServices() {
	if monitorService != nil {
		monitorService.Stop()
	}
	if eventDispatcher != nil {
		eventDispatcher.Close()
	}
	if engine != nil {
		if err := engine.End(session.ResultAbandoned); err != nil {
			Logger.Error("Failed to end session", "error", err)
		}
	}
	if storageBackend != nil {
		if err := storageBackend.Close(); err != nil {
			Logger.Error("Failed to close storage backend", "error", err)
		}
		uploadReport(lastScenario)
	}
	if influxManager != nil {
		if err := influxManager.Close(); err != nil {
			Logger.Warn("Failed to close InfluxDB", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if SlogManager != nil {
		if err := SlogManager.Flush(ctx); err != nil {
			Logger.Warn("Log flush failed", "error", err)
		}
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Warn("OTel shutdown failed", "error", err)
		}
	}
	if LogFile != nil {
		LogFile.Close()
	}
}
