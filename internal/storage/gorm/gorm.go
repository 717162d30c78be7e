// Package gormstorage implements the storage backend on GORM with internal queues and a
// background writer goroutine. The sqlite and postgres backends wrap it.
package gormstorage

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/rasim/simcore/internal/cache"
	"github.com/rasim/simcore/internal/database"
	"github.com/rasim/simcore/internal/logging"
	"github.com/rasim/simcore/internal/mission"
	"github.com/rasim/simcore/internal/model"
	"github.com/rasim/simcore/internal/queue"
)

// DefaultFlushInterval is how often the writer drains the queues.
const DefaultFlushInterval = 2 * time.Second

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB         *gorm.DB
	Rows       *cache.RowCache
	LogManager *logging.SlogManager
	Context    *mission.Context
}

// queues holds all the write queues for batch DB insertion.
type queues struct {
	Loads    *queue.Queue[model.ScenarioLoad]
	Teams    *queue.Queue[model.TeamRecord]
	Disbands *queue.Queue[model.TeamRecord]
	Houses   *queue.Queue[model.HouseSummary]
	Outcomes *queue.Queue[model.Outcome]
}

func newQueues() *queues {
	return &queues{
		Loads:    queue.New[model.ScenarioLoad](),
		Teams:    queue.New[model.TeamRecord](),
		Disbands: queue.New[model.TeamRecord](),
		Houses:   queue.New[model.HouseSummary](),
		Outcomes: queue.New[model.Outcome](),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes. Without a DB
// it only queues, which is how the unit tests drive it.
type Backend struct {
	deps      Dependencies
	queues    *queues
	sessionID atomic.Uint64
	interval  time.Duration

	flushMu  sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Rows == nil {
		deps.Rows = cache.NewRowCache()
	}
	if deps.LogManager == nil {
		deps.LogManager = logging.NewSlogManager()
	}
	return &Backend{
		deps:     deps,
		interval: DefaultFlushInterval,
	}
}

// SetFlushInterval changes the writer period. It must be called before Init.
func (b *Backend) SetFlushInterval(d time.Duration) {
	if d > 0 {
		b.interval = d
	}
}

// DB returns the connection the backend writes to, or nil in queue-only mode.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init creates internal queues, runs schema migration, and starts the DB writer goroutine.
func (b *Backend) Init() error {
	b.queues = newQueues()
	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})

	if b.deps.DB == nil {
		close(b.done)
		return nil
	}

	b.deps.LogManager.WriteLog("setupDB", "Migrating schema", "INFO")
	if err := database.Migrate(b.deps.DB); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	go b.writeLoop()
	return nil
}

// Close stops the writer goroutine and writes whatever is still queued.
func (b *Backend) Close() error {
	if b.stopChan == nil {
		return nil
	}
	b.stopOnce.Do(func() { close(b.stopChan) })
	<-b.done
	return b.Flush()
}

// StartSession inserts the session synchronously (not queued) because every later row needs
// its ID.
func (b *Backend) StartSession(s *model.Session) error {
	if b.deps.DB != nil {
		if err := b.deps.DB.Create(s).Error; err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
	}
	b.sessionID.Store(uint64(s.ID))
	if b.deps.Context != nil {
		b.deps.Context.SetSession(s.UUID, s.ID)
	}
	return nil
}

// SetSessionID sets the session row the writer stamps onto queued records.
func (b *Backend) SetSessionID(id uint) {
	b.sessionID.Store(uint64(id))
}

// EndSession writes the queues out and closes the session row.
func (b *Backend) EndSession(result string, frames int) error {
	if err := b.Flush(); err != nil {
		return err
	}
	if b.deps.DB == nil {
		return nil
	}
	id := uint(b.sessionID.Load())
	if id == 0 {
		return errors.New("no session started")
	}
	err := b.deps.DB.Model(&model.Session{}).Where("id = ?", id).Updates(map[string]any{
		"end_time": time.Now(),
		"result":   result,
		"frames":   frames,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	return nil
}

// RecordScenarioLoad queues a scenario load.
func (b *Backend) RecordScenarioLoad(l *model.ScenarioLoad) error {
	b.queues.Loads.Push(*l)
	return nil
}

// RecordHouseSummary queues a house summary.
func (b *Backend) RecordHouseSummary(h *model.HouseSummary) error {
	b.queues.Houses.Push(*h)
	return nil
}

// RecordOutcome queues a scenario outcome.
func (b *Backend) RecordOutcome(o *model.Outcome) error {
	b.queues.Outcomes.Push(*o)
	return nil
}

// RecordTeamCreated queues a new team record.
func (b *Backend) RecordTeamCreated(rec *model.TeamRecord) error {
	b.queues.Teams.Push(*rec)
	return nil
}

// RecordTeamDisbanded queues the retirement of a team recorded earlier.
func (b *Backend) RecordTeamDisbanded(rec *model.TeamRecord) error {
	b.queues.Disbands.Push(*rec)
	return nil
}

// QueueLengths reports the pending rows per queue.
func (b *Backend) QueueLengths() map[string]int {
	return map[string]int{
		"loads":    b.queues.Loads.Len(),
		"teams":    b.queues.Teams.Len(),
		"disbands": b.queues.Disbands.Len(),
		"houses":   b.queues.Houses.Len(),
		"outcomes": b.queues.Outcomes.Len(),
	}
}

// writeQueue writes all items from a queue to the database in a transaction. A failed batch
// goes back to the front of its queue.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, prepare func([]T), onSuccess func([]T)) error {
	items := q.Drain()
	if len(items) == 0 {
		return nil
	}
	if prepare != nil {
		prepare(items)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&items).Error
	})
	if err != nil {
		q.Requeue(items...)
		return fmt.Errorf("error creating %s: %w", name, err)
	}
	if onSuccess != nil {
		onSuccess(items)
	}
	return nil
}

// Flush drains every queue into the database. Team retirements are applied after the teams
// they close have been written.
func (b *Backend) Flush() error {
	if b.deps.DB == nil || b.queues == nil {
		return nil
	}
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	db := b.deps.DB
	sessionID := uint(b.sessionID.Load())

	var errs []error
	errs = append(errs, writeQueue(db, b.queues.Loads, "scenario loads", func(items []model.ScenarioLoad) {
		for i := range items {
			items[i].SessionID = sessionID
		}
	}, nil))
	teamErr := writeQueue(db, b.queues.Teams, "team records", func(items []model.TeamRecord) {
		for i := range items {
			items[i].SessionID = sessionID
		}
	}, func(items []model.TeamRecord) {
		for _, rec := range items {
			b.deps.Rows.Set(cache.TeamKey(rec.Serial), rec.ID)
		}
	})
	errs = append(errs, teamErr)
	if teamErr == nil {
		errs = append(errs, b.writeDisbands(db, sessionID))
	}
	errs = append(errs, writeQueue(db, b.queues.Houses, "house summaries", func(items []model.HouseSummary) {
		for i := range items {
			items[i].SessionID = sessionID
		}
	}, nil))
	errs = append(errs, writeQueue(db, b.queues.Outcomes, "outcomes", func(items []model.Outcome) {
		for i := range items {
			items[i].SessionID = sessionID
		}
	}, nil))

	return errors.Join(errs...)
}

// writeDisbands closes the team rows named by the queued retirements.
func (b *Backend) writeDisbands(db *gorm.DB, sessionID uint) error {
	items := b.queues.Disbands.Drain()
	for i, rec := range items {
		key := cache.TeamKey(rec.Serial)
		q := db.Model(&model.TeamRecord{})
		if id, ok := b.deps.Rows.Get(key); ok {
			q = q.Where("id = ?", id)
		} else {
			q = q.Where("session_id = ? AND serial = ?", sessionID, rec.Serial)
		}
		err := q.Updates(map[string]any{
			"disbanded_frame": rec.DisbandedFrame,
			"disbanded_time":  rec.DisbandedTime,
			"members":         rec.Members,
		}).Error
		if err != nil {
			b.queues.Disbands.Requeue(items[i:]...)
			return fmt.Errorf("error closing team %s: %w", rec.TypeName, err)
		}
		b.deps.Rows.Delete(key)
	}
	return nil
}

// writeLoop periodically drains the queues until Close.
func (b *Backend) writeLoop() {
	defer close(b.done)
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			start := time.Now()
			if err := b.Flush(); err != nil {
				b.deps.LogManager.WriteLog(":DB:WRITER:", err.Error(), "ERROR")
				continue
			}
			b.deps.LogManager.WriteLog(":DB:WRITER:", fmt.Sprintf("Flushed in %s", time.Since(start)), "DEBUG")
		}
	}
}
