package session

import (
	"time"

	"github.com/rasim/simcore/internal/model"
	"github.com/rasim/simcore/internal/model/convert"
	"github.com/rasim/simcore/internal/team"
)

// recorder turns scheduler events into team records. It runs inside engine commands, so the
// engine lock is already held.
type recorder struct {
	e *Engine
}

func (r recorder) TeamCreated(t *team.Team) {
	e := r.e
	rec := convert.TeamToModel(t, e.w.Scen, e.serial.Next(), e.w.Frame, time.Now())
	e.open[t] = &rec
	if err := e.deps.Storage.RecordTeamCreated(&rec); err != nil {
		e.log.Error("failed to record team", "team", rec.TypeName, "serial", rec.Serial, "error", err)
	}
}

func (r recorder) TeamDisbanded(t *team.Team) {
	e := r.e
	rec, ok := e.open[t]
	if !ok {
		return
	}
	delete(e.open, t)
	e.closeRecord(t, rec)
}

func (e *Engine) closeRecord(t *team.Team, rec *model.TeamRecord) {
	convert.CloseTeam(rec, t, e.w.Frame, time.Now())
	if err := e.deps.Storage.RecordTeamDisbanded(rec); err != nil {
		e.log.Error("failed to record team disband", "team", rec.TypeName, "serial", rec.Serial, "error", err)
	}
}
