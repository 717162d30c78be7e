// Package memory keeps a session's records in memory and writes them out as one JSON report
// when the session ends.
package memory

import (
	"errors"
	"sync"

	"github.com/rasim/simcore/internal/config"
	"github.com/rasim/simcore/internal/model"
)

// Report is everything recorded for one session.
type Report struct {
	Session  model.Session        `json:"session"`
	Loads    []model.ScenarioLoad `json:"loads"`
	Teams    []model.TeamRecord   `json:"teams"`
	Houses   []model.HouseSummary `json:"houses"`
	Outcomes []model.Outcome      `json:"outcomes"`
}

// Backend stores session data in memory and exports to JSON
type Backend struct {
	cfg     config.MemoryConfig
	started bool
	report  Report

	openTeams map[int]int // serial -> index into report.Teams

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:       cfg,
		openTeams: make(map[int]int),
	}
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartSession begins recording a new session, dropping anything held from the last one.
func (b *Backend) StartSession(s *model.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.started = true
	b.report = Report{Session: *s}
	b.openTeams = make(map[int]int)
	b.lastExportPath = ""
	return nil
}

// EndSession finalizes and exports the session data
func (b *Backend) EndSession(result string, frames int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return errors.New("no session started")
	}
	b.report.Session.Result = result
	b.report.Session.Frames = frames
	b.report.Session.EndTime.Time = now()
	b.report.Session.EndTime.Valid = true
	return b.exportJSON()
}

// RecordScenarioLoad appends a scenario load.
func (b *Backend) RecordScenarioLoad(l *model.ScenarioLoad) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.report.Loads = append(b.report.Loads, *l)
	return nil
}

// RecordHouseSummary appends a house summary.
func (b *Backend) RecordHouseSummary(h *model.HouseSummary) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.report.Houses = append(b.report.Houses, *h)
	return nil
}

// RecordOutcome appends a scenario outcome.
func (b *Backend) RecordOutcome(o *model.Outcome) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.report.Outcomes = append(b.report.Outcomes, *o)
	return nil
}

// RecordTeamCreated appends a team record and keeps it open under its serial.
func (b *Backend) RecordTeamCreated(rec *model.TeamRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.openTeams[rec.Serial] = len(b.report.Teams)
	b.report.Teams = append(b.report.Teams, *rec)
	return nil
}

// RecordTeamDisbanded closes the open record with the same serial. Unknown serials are
// ignored.
func (b *Backend) RecordTeamDisbanded(rec *model.TeamRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i, ok := b.openTeams[rec.Serial]
	if !ok {
		return nil
	}
	delete(b.openTeams, rec.Serial)
	t := &b.report.Teams[i]
	t.DisbandedFrame = rec.DisbandedFrame
	t.DisbandedTime = rec.DisbandedTime
	t.Members = rec.Members
	return nil
}

// Report returns a copy of what has been recorded so far.
func (b *Backend) Report() Report {
	b.mu.RLock()
	defer b.mu.RUnlock()

	r := b.report
	r.Loads = append([]model.ScenarioLoad(nil), r.Loads...)
	r.Teams = append([]model.TeamRecord(nil), r.Teams...)
	r.Houses = append([]model.HouseSummary(nil), r.Houses...)
	r.Outcomes = append([]model.Outcome(nil), r.Outcomes...)
	return r
}

// ExportedFilePath returns the path of the last written report.
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
