// Package monitor samples the engine once a second, keeps status.txt current and stores each
// sample as an EngineStatus row when a database is attached.
package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rasim/simcore/internal/logging"
	"github.com/rasim/simcore/internal/model"
	"github.com/rasim/simcore/internal/session"

	"gorm.io/gorm"
)

// StatusSource is what the monitor samples.
type StatusSource interface {
	Status() session.Status
}

// QueueSource reports how many commands are waiting.
type QueueSource interface {
	QueueDepth() int
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	DB         *gorm.DB
	LogManager *logging.SlogManager
	Engine     StatusSource
	Queues     QueueSource
	StatusDir  string
	Interval   time.Duration
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// StatusFilePath is where the running monitor keeps the latest sample.
func (s *Service) StatusFilePath() string {
	return filepath.Join(s.deps.StatusDir, "status.txt")
}

// GetStatus samples the engine and returns the sample both as printable lines and as a row.
func (s *Service) GetStatus() (output []string, row model.EngineStatus) {
	st := s.deps.Engine.Status()
	row = model.EngineStatus{
		Time:      time.Now(),
		SessionID: st.SessionRowID,
		Scenario:  st.Scenario,
		Frame:     st.Frame,
		Active:    st.Active,
		Teams:     st.Teams,
		Feet:      st.Feet,
		Buildings: st.Buildings,
		Credits:   st.Credits,
	}
	if s.deps.Queues != nil {
		row.QueueDepth = s.deps.Queues.QueueDepth()
	}

	statusStr, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		statusStr = []byte(fmt.Sprintf(`{"error": "%s"}`, err))
	}
	output = append(output, string(statusStr))
	output = append(output, fmt.Sprintf("queue: %d", row.QueueDepth))
	return output, row
}

// ValidateHypertables turns the given tables into TimescaleDB hypertables partitioned on their
// time column, compressed by the listed segment columns after 14 days.
func (s *Service) ValidateHypertables(tables map[string][]string) error {
	logger := s.deps.LogManager.Logger().With("function", "validateHypertables")

	for table, segmentBy := range tables {
		var existing int64
		s.deps.DB.Raw(`SELECT count(*) FROM timescaledb_information.hypertables WHERE hypertable_name = ?`, table).Scan(&existing)
		if existing > 0 {
			logger.Info("table is already a hypertable", "table", table)
			continue
		}

		queryCreateHypertable := fmt.Sprintf(`
				SELECT create_hypertable('%s', 'time', chunk_time_interval => interval '1 day', if_not_exists => true);
			`, table)
		if err := s.deps.DB.Exec(queryCreateHypertable).Error; err != nil {
			logger.Error("failed to create hypertable", "table", table, "error", err)
			return err
		}

		queryCompressHypertable := fmt.Sprintf(`
				ALTER TABLE %s SET (
					timescaledb.compress,
					timescaledb.compress_segmentby = ?);
			`, table)
		if err := s.deps.DB.Exec(queryCompressHypertable, strings.Join(segmentBy, ",")).Error; err != nil {
			logger.Error("failed to enable compression", "table", table, "error", err)
			return err
		}

		queryCompressAfterHypertable := fmt.Sprintf(`
				SELECT add_compression_policy(
					'%s',
					compress_after => interval '14 day');
			`, table)
		if err := s.deps.DB.Exec(queryCompressAfterHypertable).Error; err != nil {
			logger.Error("failed to set compress_after", "table", table, "error", err)
			return err
		}
		logger.Info("created hypertable", "table", table)
	}
	return nil
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}

	statusFile, err := os.Create(s.StatusFilePath())
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("creating status file: %w", err)
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	stop, done := s.stopChan, s.done
	s.mu.Unlock()

	go func() {
		defer func() {
			statusFile.Close()
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
			close(done)
		}()

		logger := s.deps.LogManager.Logger()
		logger.Debug("Starting status monitor goroutine", "function", "startStatusMonitor")

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				lines, row := s.GetStatus()
				if row.SessionID == 0 && row.Scenario == "" {
					continue
				}

				statusFile.Truncate(0)
				statusFile.Seek(0, 0)
				for _, line := range lines {
					statusFile.WriteString(line + "\n")
				}

				if s.deps.DB != nil {
					if err := s.deps.DB.Create(&row).Error; err != nil {
						logger.Error("Error writing engine status", "error", err)
					}
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor and waits for the goroutine to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()
	<-done
}
