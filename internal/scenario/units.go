package scenario

import (
	"github.com/rasim/simcore/internal/house"
	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/world"
)

// Start positions come from the first 26 waypoints.
const startWaypoints = 26

// maxScanRadius bounds the search ScanPlaceObject makes around its centre cell.
const maxScanRadius = 32

// crateTries bounds the random search for an empty crate cell.
const crateTries = 1000

// unitTier is one tech-gated row of starting vehicles. Allied houses receive every listed
// type per slot, Soviet houses the single Soviet type.
type unitTier struct {
	minLevel int
	allied   []string
	soviet   string
}

var unitTiers = []unitTier{
	{4, []string{"2TNK", "1TNK"}, "3TNK"},
	{5, []string{"APC"}, "V2RL"},
	{8, []string{"ARTY", "JEEP"}, "3TNK"},
	{10, []string{"2TNK", "2TNK"}, "4TNK"},
}

type infantryTier struct {
	minLevel int
	allied   string
	soviet   string
}

var infantryTiers = []infantryTier{
	{0, "E1", "E1"},
	{2, "E3", "E2"},
	{4, "E3", "E4"},
}

// multiplayerFixups runs after a multiplayer scenario is read: computer seats not in play are
// removed, starting forces are synthesized for maps without an authored base, and crates are
// scattered when enabled.
func multiplayerFixups(w *world.WorldState, official bool) {
	s := w.Session
	if s.Options.AIPlayers+len(s.Players) < w.Rules.MaxPlayers {
		house.RemoveAIPlayers(w)
	}

	if w.Base.IsEmpty() {
		saved := w.ScenarioInit
		w.ScenarioInit = 0
		CreateUnits(w, official)
		w.ScenarioInit = saved
	}

	if s.Options.Goodies {
		count := min(max(w.Rules.CrateMinimum, s.NumPlayers()), w.Rules.CrateMaximum)
		for i := 0; i < count; i++ {
			placeCrate(w)
		}
	}
}

// distribute spreads total round-robin over n slots.
func distribute(total, n int) []int {
	counts := make([]int, n)
	if n == 0 {
		return counts
	}
	for i := 0; i < total; i++ {
		counts[i%n]++
	}
	return counts
}

// CreateUnits gives every seated multiplayer house its starting forces around a start
// position. The tiers available follow the player's tech level; a third of the unit count
// goes to infantry.
func CreateUnits(w *world.WorldState, official bool) {
	if w.PlayerPtr == nil {
		return
	}
	tech := w.PlayerPtr.TechLevel

	uLimit, iLimit := 0, 0
	for i, t := range unitTiers {
		if tech >= t.minLevel {
			uLimit = i + 1
		}
	}
	for i, t := range infantryTiers {
		if tech >= t.minLevel {
			iLimit = i + 1
		}
	}

	totUnits := w.Session.Options.UnitCount * 2 / 3
	if uLimit == 0 {
		totUnits = 0
	}
	numUnits := distribute(totUnits, uLimit)
	numInfantry := distribute(w.Session.Options.UnitCount-totUnits, iLimit)

	waypoints := startPositions(w, official)
	taken := make([]bool, len(waypoints))
	numTaken := 0

	for slot := 0; slot < w.Rules.MaxPlayers && slot < core.MultiCount; slot++ {
		hp := w.House(core.HouseMulti1 + core.HouseType(slot))
		if hp == nil || hp.IsDefeated {
			continue
		}

		var centroid core.Cell
		switch {
		case hp.StartLocationOverride >= 0 && hp.StartLocationOverride < len(waypoints):
			centroid = waypoints[hp.StartLocationOverride]
			taken[hp.StartLocationOverride] = true
		case numTaken == 0:
			pick := w.Rand.Range(0, len(waypoints)-1)
			centroid = waypoints[pick]
			taken[pick] = true
		default:
			best := furthestWaypoint(waypoints, taken)
			centroid = waypoints[best]
			taken[best] = true
		}
		numTaken++
		hp.Center = core.CellCoord(centroid)

		if w.Session.Options.Bases {
			placeStarting(w, hp, "MCV", centroid, false)
		}

		for i := 0; i < uLimit; i++ {
			center := w.Map.ClipScatter(centroid, 4, w.Rand)
			for j := 0; j < numUnits[i]; j++ {
				if hp.IsSoviet() {
					placeStarting(w, hp, unitTiers[i].soviet, center, true)
					continue
				}
				for _, name := range unitTiers[i].allied {
					placeStarting(w, hp, name, center, true)
				}
			}
		}

		for i := 0; i < iLimit; i++ {
			center := w.Map.ClipScatter(centroid, 4, w.Rand)
			for j := 0; j < numInfantry[i]; j++ {
				name := infantryTiers[i].allied
				if hp.IsSoviet() {
					name = infantryTiers[i].soviet
				}
				placeStarting(w, hp, name, center, true)
			}
		}
	}
}

// startPositions collects the authored start waypoints and tops the list up with random
// reachable cells. Official maps need a position per seat (at least four); other maps
// are offered eight.
func startPositions(w *world.WorldState, official bool) []core.Cell {
	var cells []core.Cell
	for i := 0; i < startWaypoints; i++ {
		if c := w.Scen.Waypoints[i]; c != core.CellNone {
			cells = append(cells, c)
		}
	}

	lookFor := max(4, w.Session.NumPlayers())
	if !official {
		lookFor = 8
	}
	for len(cells) < lookFor {
		c := w.Map.RandomCell(w.Rand)
		if near := w.Map.NearbyLocation(c, world.FootUnit, core.SpeedTrack); near != core.CellNone {
			c = near
		}
		cells = append(cells, c)
	}
	return cells
}

// furthestWaypoint returns the untaken waypoint with the largest summed distance to every
// taken one.
func furthestWaypoint(waypoints []core.Cell, taken []bool) int {
	best, bestValue := 0, 0
	for i, c := range waypoints {
		score := 0
		if !taken[i] {
			for j, other := range waypoints {
				if taken[j] {
					score += core.Distance(core.CellCoord(c), core.CellCoord(other))
				}
			}
		}
		if score > bestValue || bestValue == 0 {
			best, bestValue = i, score
		}
	}
	return best
}

// placeStarting creates one object of the named type near cell. Scattered objects are given
// a guard order suited to their owner.
func placeStarting(w *world.WorldState, hp *world.House, typeName string, cell core.Cell, scan bool) {
	class := w.Rules.Registry.Type(typeName)
	if class == nil {
		return
	}
	obj, err := w.CreateFoot(class, hp.Class)
	if err != nil {
		w.Log.Warn("starting unit not created", "type", typeName, "house", hp.Class, "error", err)
		return
	}

	placed := false
	if !scan {
		placed = obj.Unlimbo(w, cell, core.FacingN)
	}
	if !placed {
		placed = ScanPlaceObject(w, obj, cell)
	}
	if !placed {
		w.DeleteFoot(obj)
		return
	}
	if !scan {
		return
	}
	if hp.IsHuman {
		obj.AssignMission(core.MissionGuard)
	} else {
		obj.AssignMission(core.MissionGuardArea)
	}
}

// ScanPlaceObject places obj in cell or, failing that, as close to it as possible: each ring
// out to 31 cells is tried along the eight facings from a random start, first exactly and
// then with a one-cell jitter. It reports false, leaving obj in limbo, when nothing fits.
func ScanPlaceObject(w *world.WorldState, obj *world.Foot, cell core.Cell) bool {
	if w.Map.InRadar(cell) && cellAccepts(w, obj, cell) && obj.Unlimbo(w, cell, core.FacingN) {
		return true
	}

	for dist := 1; dist < maxScanRadius; dist++ {
		rot := core.FacingType(w.Rand.Range(int(core.FacingN), int(core.FacingNW)))
		for try := 0; try < 2; try++ {
			for n := 0; n < int(core.FacingCount); n++ {
				next := w.Map.ClipMove(cell, rot, dist)
				if try > 0 {
					next = w.Map.ClipScatter(next, 1, w.Rand)
				}
				if next != cell && cellAccepts(w, obj, next) && obj.Unlimbo(w, next, core.FacingN) {
					return true
				}
				rot = (rot + 1) % core.FacingCount
			}
		}
	}
	return false
}

// cellAccepts reports whether obj may share c with its current occupant. Only infantry stack.
func cellAccepts(w *world.WorldState, obj *world.Foot, c core.Cell) bool {
	occupant := w.Map.Techno(c)
	return !occupant.IsValid() || (occupant.Kind == core.RTTIInfantry && obj.Kind == world.FootInfantry)
}

// placeCrate drops a crate on a random empty cell.
func placeCrate(w *world.WorldState) bool {
	for i := 0; i < crateTries; i++ {
		c := w.Map.RandomCell(w.Rand)
		mc := w.Map.Cell(c)
		if mc == nil || mc.Overlay != world.OverlayNone || len(mc.Objects) > 0 {
			continue
		}
		switch mc.Land {
		case core.LandClear, core.LandRoad, core.LandRough:
			w.Map.SetOverlay(c, world.OverlayWoodCrate, 0)
			return true
		case core.LandWater:
			w.Map.SetOverlay(c, world.OverlayWaterCrate, 0)
			return true
		}
	}
	return false
}
