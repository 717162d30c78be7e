package scenario

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rasim/simcore/internal/fixed"
	"github.com/rasim/simcore/internal/house"
	"github.com/rasim/simcore/internal/ini"
	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/rules"
	"github.com/rasim/simcore/internal/world"
)

const (
	basicSection        = "Basic"
	mapSection          = "Map"
	waypointSection     = "Waypoints"
	cellTriggerSection  = "CellTriggers"
	teamTypeSection     = "TeamTypes"
	triggerSection      = "Trigs"
	briefingSection     = "Briefing"
	mapPackSection      = "MapPack"
	overlayPackSection  = "OverlayPack"
	defaultScenarioName = "<none>"
)

// layerRules rebuilds the rules from the base and expansion files, then the scenario itself.
// A fresh rules value per load keeps one scenario's overrides out of the next.
func (l *Loader) layerRules(w *world.WorldState, f *ini.File) {
	r := rules.New()
	if l.opts.Rules != nil {
		r.Read(l.opts.Rules)
	}
	if l.opts.Aftermath != nil && w.Session.IsAftermath {
		r.Read(l.opts.Aftermath)
	}
	r.Read(f)

	if w.Session.IsMultiplayer() {
		r.Countries[core.HouseEngland].ArmorBias = fixed.FromRatio(9, 10)
		r.Countries[core.HouseFrance].ROFBias = fixed.FromRatio(9, 10)
	}

	w.Rules = r
	w.InitHeaps()
	w.CreateHouses()
}

func readBasic(f *ini.File, s *world.Scenario) {
	b := basicSection
	s.Description = f.GetString(b, "Name", defaultScenarioName)
	s.IntroMovie = f.GetString(b, "Intro", "")
	s.BriefMovie = f.GetString(b, "Brief", "")
	s.WinMovie = f.GetString(b, "Win", "")
	s.WinMovie2 = f.GetString(b, "Win2", "")
	s.WinMovie3 = f.GetString(b, "Win3", "")
	s.WinMovie4 = f.GetString(b, "Win4", "")
	s.LoseMovie = f.GetString(b, "Lose", "")
	s.ActionMovie = f.GetString(b, "Action", "")
	s.IsToCarryOver = f.GetBool(b, "ToCarryOver", false)
	s.IsToInherit = f.GetBool(b, "ToInherit", false)
	s.IsInheritTimer = f.GetBool(b, "TimerInherit", false)
	s.IsEndOfGame = f.GetBool(b, "EndOfGame", false)
	s.IsTanyaEvac = f.GetBool(b, "CivEvac", false)
	s.TransitTheme = f.GetString(b, "Theme", "")
	s.NewINIFormat = f.GetInt(b, "NewINIFormat", 0)
	s.CarryOverPercent = f.GetFixed(b, "CarryOverMoney", fixed.Zero).Saturate(fixed.One)
	s.CarryOverCap = f.GetInt(b, "CarryOverCap", 0)
	s.IsNoSpyPlane = f.GetBool(b, "NoSpyPlane", false)
	s.IsSkipScore = f.GetBool(b, "SkipScore", false)
	s.IsOneTimeOnly = f.GetBool(b, "OneTimeOnly", false)
	s.IsNoMapSel = f.GetBool(b, "SkipMapSelect", false)
	s.IsTruckCrate = f.GetBool(b, "TruckCrate", false)
	s.IsMoneyTiberium = f.GetBool(b, "FillSilos", false)
	s.Percent = f.GetInt(b, "Percent", 0)
	s.IsOfficial = f.GetBool(b, "Official", false)
}

var edgeNames = map[string]core.FacingType{
	"north": core.FacingN,
	"east":  core.FacingE,
	"south": core.FacingS,
	"west":  core.FacingW,
}

// readHouses applies the per-house sections. Credits are authored in hundreds.
func readHouses(f *ini.File, w *world.WorldState) error {
	for h := core.HouseType(0); h < core.HouseCount; h++ {
		s := h.String()
		if !f.HasSection(s) {
			continue
		}
		hp := w.House(h)
		hp.Credits = f.GetInt(s, "Credits", hp.Credits/100) * 100
		hp.InitialCredits = hp.Credits
		if e, ok := edgeNames[strings.ToLower(f.GetString(s, "Edge", ""))]; ok {
			hp.Edge = e
		}
		hp.MaxUnit = f.GetInt(s, "MaxUnit", hp.MaxUnit)
		hp.MaxBuilding = f.GetInt(s, "MaxBuilding", hp.MaxBuilding)
		hp.TechLevel = f.GetInt(s, "TechLevel", hp.TechLevel)
		hp.IQ = f.GetInt(s, "IQ", hp.IQ)
		hp.IsPlayerControl = f.GetBool(s, "PlayerControl", hp.IsPlayerControl)
		hp.Color = f.GetInt(s, "Color", hp.Color)
		for _, name := range strings.Split(f.GetString(s, "Allies", ""), ",") {
			if ally := core.HouseFromName(strings.TrimSpace(name)); ally != core.HouseNone {
				hp.MakeAlly(ally)
			}
		}
	}
	return nil
}

// readTeamTypes allocates every team type first so programs may reference teams declared later.
func readTeamTypes(f *ini.File, w *world.WorldState) error {
	names := f.Entries(teamTypeSection)
	types := make([]*world.TeamType, len(names))
	for i, name := range names {
		tt, err := w.NewTeamType(name)
		if err != nil {
			return fmt.Errorf("allocating team type %s: %w", name, err)
		}
		types[i] = tt
	}
	for i, name := range names {
		if err := types[i].FillIn(name, f.GetString(teamTypeSection, name, ""), w.Rules.Registry, w.Scen.NewINIFormat); err != nil {
			return err
		}
	}
	return nil
}

// readTriggerTypes allocates every trigger type first; action clauses refer to other triggers
// by allocation index.
func readTriggerTypes(f *ini.File, w *world.WorldState) error {
	names := f.Entries(triggerSection)
	types := make([]*world.TriggerType, len(names))
	for i, name := range names {
		tt, err := w.NewTriggerType(name)
		if err != nil {
			return fmt.Errorf("allocating trigger type %s: %w", name, err)
		}
		types[i] = tt
	}
	for i, name := range names {
		if err := types[i].FillIn(name, f.GetString(triggerSection, name, "")); err != nil {
			return err
		}
	}
	return nil
}

func readMap(f *ini.File, w *world.WorldState) error {
	m := w.Map
	m.Theater = f.GetTheater(mapSection, "Theater", core.TheaterTemperate)
	w.Scen.Theater = m.Theater
	m.MapCellX = f.GetInt(mapSection, "X", m.MapCellX)
	m.MapCellY = f.GetInt(mapSection, "Y", m.MapCellY)
	m.MapCellWidth = f.GetInt(mapSection, "Width", m.MapCellWidth)
	m.MapCellHeight = f.GetInt(mapSection, "Height", m.MapCellHeight)

	if f.HasSection(mapPackSection) {
		data, err := world.DecodePack(f.TextBlockJoined(mapPackSection, ""))
		if err != nil {
			return fmt.Errorf("map pack: %w", err)
		}
		if err := m.ReadBinary(data); err != nil {
			return err
		}
	}

	for _, entry := range f.Entries(waypointSection) {
		n, err := strconv.Atoi(entry)
		if err != nil || n < 0 || n >= core.WaypointCount {
			continue
		}
		c := core.Cell(f.GetInt(waypointSection, entry, int(core.CellNone)))
		w.Scen.Waypoints[n] = c
		if mc := m.Cell(c); mc != nil {
			mc.IsWaypoint = true
		}
	}

	for _, entry := range f.Entries(cellTriggerSection) {
		n, err := strconv.Atoi(entry)
		if err != nil {
			continue
		}
		mc := m.Cell(core.Cell(n))
		tt := w.TriggerTypeByName(f.GetString(cellTriggerSection, entry, ""))
		if mc == nil || tt == nil {
			continue
		}
		t, err := w.FindOrMakeTrigger(tt)
		if err != nil {
			return err
		}
		mc.Trigger = t
		t.AttachCount++
	}
	return nil
}

// bindPlayer selects the player house. Campaigns name it in [Basic] and add carried-over money;
// multiplayer sessions seat the lobby.
func bindPlayer(f *ini.File, w *world.WorldState) error {
	s := w.Scen
	if w.Session.Type == core.GameNormal {
		s.PlayerHouse = f.GetHouse(basicSection, "Player", core.HouseGreece)
		w.PlayerPtr = w.House(s.PlayerHouse)
		w.PlayerPtr.AssignHandicap(s.Difficulty)

		carry := s.CarryOverPercent.MulInt(s.CarryOverMoney)
		if s.CarryOverCap != -1 {
			carry = min(carry, s.CarryOverCap)
		}
		w.PlayerPtr.Credits += carry
		w.PlayerPtr.InitialCredits += carry
	} else if err := house.AssignHouses(w); err != nil {
		return err
	}

	w.PlayerPtr.IsHuman = true
	w.PlayerPtr.IsPlayerControl = true
	return nil
}

// readBriefing prefers the mission file override for this scenario over its own text.
func (l *Loader) readBriefing(f *ini.File, w *world.WorldState) {
	if l.opts.Mission != nil && l.opts.Mission.HasSection(w.Scen.Name) {
		w.Scen.Briefing = l.opts.Mission.TextBlock(w.Scen.Name)
		return
	}
	w.Scen.Briefing = f.TextBlock(briefingSection)
}
