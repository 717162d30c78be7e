// Package convert turns live simulation state into the storage models and decodes the JSON and
// geometry columns of those models back into simulation terms.
package convert

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"

	"github.com/rasim/simcore/internal/geo"
	"github.com/rasim/simcore/internal/model"
	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/scenario"
	"github.com/rasim/simcore/internal/team"
	"github.com/rasim/simcore/internal/util"
	"github.com/rasim/simcore/internal/world"
)

// Player is a lobby seat as stored in Session.Players.
type Player struct {
	Name  string `json:"name"`
	House string `json:"house"`
	Color int    `json:"color"`
}

// toJSON marshals v, falling back to fallback when v cannot be encoded.
func toJSON(v any, fallback string) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON(fallback)
	}
	return datatypes.JSON(data)
}

// SessionToModel converts the session settings into a Session row.
func SessionToModel(uuid string, s *world.Session, diff core.DiffType, start time.Time) model.Session {
	players := make([]Player, len(s.Players))
	for i, p := range s.Players {
		players[i] = Player{Name: p.Name, House: p.House.String(), Color: p.Color}
	}
	return model.Session{
		UUID:       uuid,
		GameType:   s.Type.String(),
		BuildLevel: s.BuildLevel,
		Seed:       s.Seed,
		Difficulty: diff.String(),
		Players:    toJSON(players, "[]"),
		Options:    toJSON(s.Options, "{}"),
		StartTime:  start,
	}
}

// ScenarioLoadToModel describes the outcome of reading name into w. loadErr is the error the
// loader returned; a *scenario.LoadError supplies the failing stage.
func ScenarioLoadToModel(w *world.WorldState, name string, loadErr error, elapsed time.Duration, at time.Time) model.ScenarioLoad {
	l := model.ScenarioLoad{
		Time:        at,
		Name:        name,
		Number:      w.Scen.Scenario,
		Description: util.Truncate(util.TrimQuotes(w.Scen.Description), 127),
		Theater:     w.Scen.Theater.String(),
		PlayerHouse: core.HouseNone.String(),
		Difficulty:  w.Scen.Difficulty.String(),
		DurationMs:  float64(elapsed.Microseconds()) / 1000,
		RequiredCD:  w.Scen.RequiredCD,
	}

	if loadErr != nil {
		l.Stage = "unknown"
		var le *scenario.LoadError
		if errors.As(loadErr, &le) {
			l.Stage = le.Stage
		}
		l.Error = util.Truncate(loadErr.Error(), 255)
		return l
	}

	if w.PlayerPtr != nil {
		l.PlayerHouse = w.PlayerPtr.Class.String()
	}
	l.TeamTypes = w.TeamTypes.Count()
	l.Triggers = w.Triggers.Count()
	l.Objects = len(w.Feet()) + w.Buildings.Count()
	l.BridgeCount = w.Scen.BridgeCount
	l.StartPositions = geo.CellSetWKT(StartCells(w))
	return l
}

// StartCells returns where each side begins: the start cell of every seated multiplayer house,
// or the home waypoint of a campaign mission.
func StartCells(w *world.WorldState) []core.Cell {
	if !w.Session.IsMultiplayer() {
		if c := w.Scen.Waypoint(core.WaypointHome); c != core.CellNone {
			return []core.Cell{c}
		}
		return nil
	}
	var cells []core.Cell
	for _, h := range w.Houses {
		if h == nil || !h.Class.IsMulti() || h.IsDefeated {
			continue
		}
		cells = append(cells, h.Center.Cell())
	}
	return cells
}

// TeamToModel opens a record for a team that was just formed.
func TeamToModel(t *team.Team, scen *world.Scenario, serial, frame int, at time.Time) model.TeamRecord {
	tt := t.Class
	missions := make([]model.TeamMission, len(tt.Missions))
	quota := 0
	for _, m := range tt.Members {
		quota += m.Quantity
	}
	for i, m := range tt.Missions {
		missions[i] = model.TeamMission{Mission: m.Mission.String(), Arg: m.Arg}
	}
	return model.TeamRecord{
		Serial:       serial,
		Scenario:     scen.Name,
		TeamID:       t.ID(),
		TypeName:     tt.Name,
		House:        t.House.Class.String(),
		Priority:     tt.RecruitPriority,
		Quota:        quota,
		IsAutocreate: tt.IsAutocreate,
		IsSuicide:    tt.IsSuicide,
		Missions:     toJSON(missions, "[]"),
		RallyPath:    geo.CellPathWKT(RallyPath(tt, scen)),
		CreatedFrame: frame,
		CreatedTime:  at,
	}
}

// CloseTeam stamps rec with the retirement of t.
func CloseTeam(rec *model.TeamRecord, t *team.Team, frame int, at time.Time) {
	rec.DisbandedFrame = sql.NullInt32{Int32: int32(frame), Valid: true}
	rec.DisbandedTime = sql.NullTime{Time: at, Valid: true}
	rec.Members = len(t.Members())
}

// RallyPath lists the cells a team type's program sends it to, starting from its origin.
func RallyPath(tt *world.TeamType, scen *world.Scenario) []core.Cell {
	var path []core.Cell
	add := func(c core.Cell) {
		if c != core.CellNone && (len(path) == 0 || path[len(path)-1] != c) {
			path = append(path, c)
		}
	}
	add(scen.Waypoint(tt.Origin))
	for _, m := range tt.Missions {
		switch m.Mission {
		case core.TMissionMove, core.TMissionPatrol, core.TMissionAttWaypt, core.TMissionSpy:
			add(scen.Waypoint(m.Arg))
		case core.TMissionMoveCell:
			if c := core.Cell(m.Arg); c.IsValid() {
				add(c)
			}
		}
	}
	return path
}

// HouseSummaries reports every house that took part in the scenario.
func HouseSummaries(w *world.WorldState) []model.HouseSummary {
	type tally struct{ units, infantry, buildings int }
	counts := map[core.HouseType]*tally{}
	get := func(h core.HouseType) *tally {
		if counts[h] == nil {
			counts[h] = &tally{}
		}
		return counts[h]
	}
	for _, f := range w.Feet() {
		if f.IsInLimbo {
			continue
		}
		if f.Kind == world.FootInfantry {
			get(f.House).infantry++
		} else {
			get(f.House).units++
		}
	}
	for _, b := range w.Buildings.Items() {
		get(b.House).buildings++
	}

	var out []model.HouseSummary
	for _, h := range w.Houses {
		if h == nil {
			continue
		}
		c := get(h.Class)
		if !h.IsHuman && c.units+c.infantry+c.buildings == 0 {
			continue
		}
		out = append(out, model.HouseSummary{
			Scenario:   w.Scen.Name,
			Frame:      w.Frame,
			House:      h.Class.String(),
			ActLike:    h.ActLike.String(),
			Name:       h.IniName,
			IsHuman:    h.IsHuman,
			IsDefeated: h.IsDefeated,
			Credits:    h.Credits,
			TechLevel:  h.TechLevel,
			Units:      c.units,
			Infantry:   c.infantry,
			Buildings:  c.buildings,
		})
	}
	return out
}
