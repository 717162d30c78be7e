package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rasim/simcore/internal/model"
	"github.com/rasim/simcore/internal/model/convert"
	"github.com/rasim/simcore/internal/scenario"
)

// Variants a campaign map may come in, tried in order.
const variants = "ABCD"

// ScenarioName builds a scenario file name from its parts. Numbers past 99 use the two-character
// base-36 form of the expansion missions.
func ScenarioName(number int, player, dir, variant byte) string {
	if number < 100 {
		return fmt.Sprintf("SC%c%02d%c%c.INI", player, number, dir, variant)
	}
	const digits = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	return fmt.Sprintf("SC%c%c%c%c%c.INI", player, 'A'+byte(number/36), digits[number%36], dir, variant)
}

// NextScenarioName picks the mission that follows current. A map without selection advances to
// the B variant of the same number. Otherwise the next number is tried with the same direction
// and then the other one, taking the first variant exists reports; when none is found the A
// variant in the current direction is returned so the load reports the missing file.
func NextScenarioName(current string, noMapSel bool, exists func(string) (string, bool)) string {
	p := scenario.DisectName(current)
	player, dir := p.Player, p.Dir
	if player == 0 {
		player = 'G'
	}
	if dir != 'W' {
		dir = 'E'
	}
	if noMapSel {
		name := ScenarioName(p.Scenario, player, dir, 'B')
		if found, ok := exists(name); ok {
			return found
		}
		return name
	}

	number := p.Scenario + 1
	other := byte('W')
	if dir == 'W' {
		other = 'E'
	}
	for _, d := range []byte{dir, other} {
		for i := 0; i < len(variants); i++ {
			if found, ok := exists(ScenarioName(number, player, d, variants[i])); ok {
				return found
			}
		}
	}
	return ScenarioName(number, player, dir, 'A')
}

// DoWin ends the current scenario as won. A multiplayer game, a one-time mission or the final
// mission ends the session. Otherwise the player's credits carry into the next mission, along
// with the surviving forces when the mission says so, and the next mission is started. The name
// of that mission is returned, or "" when the session ended.
func (e *Engine) DoWin(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return "", ErrNoScenario
	}
	w := e.w
	e.recordHouses()

	if w.Session.IsMultiplayer() || w.Scen.IsOneTimeOnly || w.Scen.IsEndOfGame {
		e.recordOutcome(model.OutcomeWin, "", 0)
		e.active = false
		return "", e.end(ResultWon)
	}

	next := NextScenarioName(e.scenario, w.Scen.IsNoMapSel, e.sessionFileExists)
	if w.PlayerPtr != nil {
		w.Scen.CarryOverMoney = w.PlayerPtr.Credits
	}
	if w.Scen.IsToCarryOver {
		w.RecordCarryOver()
	}
	e.carryTimer = w.Scen.MissionTimer
	e.recordOutcome(model.OutcomeWin, next, w.Scen.CarryOverMoney)

	if err := e.startScenario(ctx, next); err != nil {
		return next, err
	}
	e.inheritTimer()
	return next, nil
}

// DoLose ends the current scenario as lost. The scenario stays stopped; a restart replays it.
func (e *Engine) DoLose(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.active {
		return ErrNoScenario
	}
	e.recordHouses()
	e.recordOutcome(model.OutcomeLose, "", 0)
	e.active = false
	if e.w.Session.IsMultiplayer() {
		return e.end(ResultLost)
	}
	e.log.InfoContext(ctx, "scenario lost", "scenario", e.scenario)
	return nil
}

// DoRestart reloads the scenario last started. The mission number and the player's house come
// from the file again, so they are unchanged.
func (e *Engine) DoRestart(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.scenario == "" {
		return ErrNoScenario
	}
	if e.active {
		e.recordHouses()
	}
	e.recordOutcome(model.OutcomeRestart, e.scenario, e.w.Scen.CarryOverMoney)
	if err := e.startScenario(ctx, e.scenario); err != nil {
		return err
	}
	e.inheritTimer()
	return nil
}

// inheritTimer carries the mission timer of the last won mission into one that asks for it.
func (e *Engine) inheritTimer() {
	if e.w.Scen.IsInheritTimer {
		e.w.Scen.MissionTimer = e.carryTimer
	}
}

func (e *Engine) recordHouses() {
	for _, h := range convert.HouseSummaries(e.w) {
		if err := e.deps.Storage.RecordHouseSummary(&h); err != nil {
			e.log.Error("failed to record house summary", "house", h.House, "error", err)
		}
	}
}

func (e *Engine) recordOutcome(kind, next string, carry int) {
	o := model.Outcome{
		Time:           time.Now(),
		Frame:          e.w.Frame,
		Kind:           kind,
		Scenario:       e.scenario,
		Next:           next,
		CarryOverMoney: carry,
	}
	if err := e.deps.Storage.RecordOutcome(&o); err != nil {
		e.log.Error("failed to record outcome", "kind", kind, "error", err)
	}
	e.log.Info("scenario ended", "scenario", e.scenario, "outcome", kind, "frame", e.w.Frame, "next", next)
}
