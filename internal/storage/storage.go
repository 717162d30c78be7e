// Package storage defines where session events go once the engine has produced them.
package storage

import "github.com/rasim/simcore/internal/model"

// Backend is the interface all storage implementations must satisfy. Record calls come from
// the simulation goroutine and must not block on I/O.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management (StartSession assigns the row ID to the passed pointer)
	StartSession(s *model.Session) error
	EndSession(result string, frames int) error

	// Scenario lifecycle
	RecordScenarioLoad(l *model.ScenarioLoad) error
	RecordHouseSummary(h *model.HouseSummary) error
	RecordOutcome(o *model.Outcome) error

	// Teams (rec.Serial identifies the team across both calls)
	RecordTeamCreated(rec *model.TeamRecord) error
	RecordTeamDisbanded(rec *model.TeamRecord) error
}

// Exporter is an optional interface for backends that leave a report file behind when the
// session ends.
type Exporter interface {
	ExportedFilePath() string
}
