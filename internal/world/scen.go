package world

import (
	"github.com/rasim/simcore/internal/fixed"
	"github.com/rasim/simcore/internal/model/core"
)

// GlobalCount is the number of scenario global flags.
const GlobalCount = 30

// Scenario is the per-scenario state ("Scen").
type Scenario struct {
	Difficulty  core.DiffType
	CDifficulty core.DiffType

	// Scenario is the campaign mission number; Name is the file it was loaded from.
	Scenario    int
	Name        string
	Description string
	Theater     core.TheaterType
	PlayerHouse core.HouseType

	IntroMovie   string
	BriefMovie   string
	WinMovie     string
	WinMovie2    string
	WinMovie3    string
	WinMovie4    string
	LoseMovie    string
	ActionMovie  string
	TransitTheme string
	Briefing     string

	CarryOverPercent fixed.Fixed
	CarryOverMoney   int
	CarryOverCap     int
	Percent          int

	Waypoints       [core.WaypointCount]core.Cell
	View            core.Cell
	Globals         [GlobalCount]bool
	IsGlobalChanged bool

	MissionTimer int
	ShroudTimer  int
	ElapsedTime  int

	IsToCarryOver   bool
	IsToInherit     bool
	IsInheritTimer  bool
	IsEndOfGame     bool
	IsTanyaEvac     bool
	IsNoSpyPlane    bool
	IsSkipScore     bool
	IsOneTimeOnly   bool
	IsNoMapSel      bool
	IsTruckCrate    bool
	IsMoneyTiberium bool
	IsOfficial      bool

	NewINIFormat int
	BridgeCount  int
	RequiredCD   int
}

// NewScenario returns the state before any scenario has been loaded.
func NewScenario() *Scenario {
	s := &Scenario{
		Difficulty:  core.DiffNormal,
		CDifficulty: core.DiffNormal,
		Scenario:    1,
		Theater:     core.TheaterTemperate,
		PlayerHouse: core.HouseGreece,
		RequiredCD:  -1,
	}
	s.ClearMission()
	return s
}

// ClearMission resets the fields that belong to one mission. Difficulty, the scenario number and
// name, the player house and the carried-over money survive so a restart or the next campaign
// mission can use them.
func (s *Scenario) ClearMission() {
	s.Description = ""
	s.IntroMovie, s.BriefMovie, s.ActionMovie = "", "", ""
	s.WinMovie, s.WinMovie2, s.WinMovie3, s.WinMovie4, s.LoseMovie = "", "", "", "", ""
	s.TransitTheme = ""
	s.Briefing = ""

	s.CarryOverPercent = fixed.Zero
	s.CarryOverCap = 0
	s.Percent = 0

	for i := range s.Waypoints {
		s.Waypoints[i] = core.CellNone
	}
	s.View = core.CellNone
	s.Globals = [GlobalCount]bool{}
	s.IsGlobalChanged = false

	s.MissionTimer, s.ShroudTimer, s.ElapsedTime = 0, 0, 0

	s.IsToCarryOver = false
	s.IsToInherit = false
	s.IsInheritTimer = false
	s.IsEndOfGame = false
	s.IsTanyaEvac = false
	s.IsNoSpyPlane = false
	s.IsSkipScore = false
	s.IsOneTimeOnly = false
	s.IsNoMapSel = false
	s.IsTruckCrate = false
	s.IsMoneyTiberium = false
	s.IsOfficial = false

	s.NewINIFormat = 0
	s.BridgeCount = 0
}

// Waypoint returns the cell of waypoint i, or CellNone.
func (s *Scenario) Waypoint(i int) core.Cell {
	if i < 0 || i >= core.WaypointCount {
		return core.CellNone
	}
	return s.Waypoints[i]
}
