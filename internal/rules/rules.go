// Package rules holds the game balance data that scenario files and the base rules files layer
// over each other: general constants, AI tuning, difficulty biases, per-country biases and the
// techno type table.
package rules

import (
	"strings"

	"github.com/rasim/simcore/internal/fixed"
	"github.com/rasim/simcore/internal/ini"
	"github.com/rasim/simcore/internal/model/core"
)

// TicksPerMinute is the simulation rate the rules times are expressed against.
const TicksPerMinute = 60 * 15

// Difficulty holds the biases applied to a house playing at a given difficulty.
type Difficulty struct {
	FirepowerBias   fixed.Fixed
	GroundspeedBias fixed.Fixed
	AirspeedBias    fixed.Fixed
	ArmorBias       fixed.Fixed
	ROFBias         fixed.Fixed
	CostBias        fixed.Fixed
	BuildSpeedBias  fixed.Fixed
	RepairDelay     fixed.Fixed
	BuildDelay      fixed.Fixed
	IsBuildSlowdown bool
	IsWallDestroyer bool
	IsContentScan   bool
}

// Country holds the per-house biases from the country sections.
type Country struct {
	FirepowerBias fixed.Fixed
	ArmorBias     fixed.Fixed
	ROFBias       fixed.Fixed
	CostBias      fixed.Fixed
	SpeedBias     fixed.Fixed
	BuildTimeBias fixed.Fixed
}

// Rules is the layered rules data.
type Rules struct {
	MaxPlayers      int
	CrateMinimum    int
	CrateMaximum    int
	IsCompEasyBonus bool
	MaxIQ           int

	// Distances in leptons.
	StrayDistance int
	CloseEnough   int
	SupportRange  int

	// Times in minutes.
	SuspendDelay fixed.Fixed
	PatrolTime   fixed.Fixed
	TeamDelay    fixed.Fixed

	SuspendPriority int
	RepairThreshold fixed.Fixed

	IronCurtainDuration fixed.Fixed

	// Object pool capacities.
	InfantryMax int
	UnitMax     int
	AircraftMax int
	VesselMax   int
	BuildingMax int
	TerrainMax  int
	TriggerMax  int
	TeamMax     int

	Diff      [core.DiffCount]Difficulty
	Countries [core.HouseCount]Country

	// BuildLevelTech maps the session build level to a house tech level.
	BuildLevelTech []int

	Registry *Registry
}

// New returns the rules defaults before any file is layered on.
func New() *Rules {
	r := &Rules{
		MaxPlayers:          8,
		CrateMinimum:        1,
		CrateMaximum:        255,
		IsCompEasyBonus:     true,
		MaxIQ:               5,
		StrayDistance:       2 * core.CellLeptons,
		CloseEnough:         (11 * core.CellLeptons) / 4,
		SupportRange:        3 * core.CellLeptons,
		SuspendDelay:        fixed.FromInt(2),
		PatrolTime:          fixed.FromRatio(1, 60),
		TeamDelay:           fixed.FromRatio(6, 10),
		SuspendPriority:     20,
		RepairThreshold:     fixed.FromRatio(1, 2),
		IronCurtainDuration: fixed.FromRatio(1, 2),
		InfantryMax:         500,
		UnitMax:             500,
		AircraftMax:         100,
		VesselMax:           100,
		BuildingMax:         500,
		TerrainMax:          500,
		TriggerMax:          400,
		TeamMax:             60,
		BuildLevelTech:      []int{2, 2, 4, 5, 7, 8, 9, 10, 11, 12, 13},
		Registry:            NewRegistry(),
	}

	for i := range r.Diff {
		r.Diff[i] = Difficulty{
			FirepowerBias:   fixed.One,
			GroundspeedBias: fixed.One,
			AirspeedBias:    fixed.One,
			ArmorBias:       fixed.One,
			ROFBias:         fixed.One,
			CostBias:        fixed.One,
			BuildSpeedBias:  fixed.One,
			RepairDelay:     fixed.FromRatio(2, 100),
			BuildDelay:      fixed.FromRatio(3, 100),
			IsContentScan:   true,
		}
	}
	r.Diff[core.DiffEasy].FirepowerBias = fixed.FromRatio(12, 10)
	r.Diff[core.DiffEasy].ArmorBias = fixed.FromRatio(12, 10)
	r.Diff[core.DiffEasy].CostBias = fixed.FromRatio(8, 10)
	r.Diff[core.DiffHard].FirepowerBias = fixed.FromRatio(8, 10)
	r.Diff[core.DiffHard].ArmorBias = fixed.FromRatio(8, 10)
	r.Diff[core.DiffHard].CostBias = fixed.FromRatio(12, 10)
	r.Diff[core.DiffHard].IsBuildSlowdown = true

	for i := range r.Countries {
		r.Countries[i] = Country{
			FirepowerBias: fixed.One,
			ArmorBias:     fixed.One,
			ROFBias:       fixed.One,
			CostBias:      fixed.One,
			SpeedBias:     fixed.One,
			BuildTimeBias: fixed.One,
		}
	}

	return r
}

// TechLevel returns the tech level granted by a session build level.
func (r *Rules) TechLevel(buildLevel int) int {
	if buildLevel < 0 {
		return r.BuildLevelTech[0]
	}
	if buildLevel >= len(r.BuildLevelTech) {
		return r.BuildLevelTech[len(r.BuildLevelTech)-1]
	}
	return r.BuildLevelTech[buildLevel]
}

var diffSections = [core.DiffCount]string{"Easy", "Normal", "Difficult"}

// Read layers the values present in f over the current rules. Absent keys keep their value,
// so base rules, expansion rules and scenario overrides can be applied in that order.
func (r *Rules) Read(f *ini.File) {
	r.readGeneral(f)
	r.readAI(f)
	r.readIQ(f)
	r.readDifficulty(f)
	r.readCountries(f)
	r.readObjects(f)
}

func (r *Rules) readGeneral(f *ini.File) {
	const s = "General"
	r.MaxPlayers = f.GetInt(s, "MaxPlayers", r.MaxPlayers)
	r.IsCompEasyBonus = f.GetBool(s, "CompEasyBonus", r.IsCompEasyBonus)
	r.StrayDistance = leptons(f, s, "Stray", r.StrayDistance)
	r.CloseEnough = leptons(f, s, "CloseEnough", r.CloseEnough)
	r.SupportRange = leptons(f, s, "SupportRange", r.SupportRange)
	r.RepairThreshold = f.GetFixed(s, "RepairThreshhold", r.RepairThreshold)
	r.IronCurtainDuration = f.GetFixed(s, "IronCurtain", r.IronCurtainDuration)

	r.InfantryMax = f.GetInt(s, "InfantryMax", r.InfantryMax)
	r.UnitMax = f.GetInt(s, "UnitMax", r.UnitMax)
	r.AircraftMax = f.GetInt(s, "AircraftMax", r.AircraftMax)
	r.VesselMax = f.GetInt(s, "ShipMax", r.VesselMax)
	r.BuildingMax = f.GetInt(s, "BuildMax", r.BuildingMax)
	r.TerrainMax = f.GetInt(s, "TerrainMax", r.TerrainMax)
	r.TriggerMax = f.GetInt(s, "TriggerMax", r.TriggerMax)
	r.TeamMax = f.GetInt(s, "TeamMax", r.TeamMax)

	const c = "CrateRules"
	r.CrateMinimum = f.GetInt(c, "CrateMinimum", r.CrateMinimum)
	r.CrateMaximum = f.GetInt(c, "CrateMaximum", r.CrateMaximum)
}

func (r *Rules) readAI(f *ini.File) {
	const s = "AI"
	r.SuspendDelay = f.GetFixed(s, "SuspendDelay", r.SuspendDelay)
	r.SuspendPriority = f.GetInt(s, "SuspendPriority", r.SuspendPriority)
	r.PatrolTime = f.GetFixed(s, "PatrolScan", r.PatrolTime)
	r.TeamDelay = f.GetFixed(s, "TeamDelay", r.TeamDelay)
}

func (r *Rules) readIQ(f *ini.File) {
	r.MaxIQ = f.GetInt("IQ", "MaxIQLevels", r.MaxIQ)
}

func (r *Rules) readDifficulty(f *ini.File) {
	for i, s := range diffSections {
		if !f.HasSection(s) {
			continue
		}
		d := &r.Diff[i]
		d.FirepowerBias = f.GetFixed(s, "FirePower", d.FirepowerBias)
		d.GroundspeedBias = f.GetFixed(s, "Groundspeed", d.GroundspeedBias)
		d.AirspeedBias = f.GetFixed(s, "Airspeed", d.AirspeedBias)
		d.ArmorBias = f.GetFixed(s, "Armor", d.ArmorBias)
		d.ROFBias = f.GetFixed(s, "ROF", d.ROFBias)
		d.CostBias = f.GetFixed(s, "Cost", d.CostBias)
		d.BuildSpeedBias = f.GetFixed(s, "BuildTime", d.BuildSpeedBias)
		d.RepairDelay = f.GetFixed(s, "RepairDelay", d.RepairDelay)
		d.BuildDelay = f.GetFixed(s, "BuildDelay", d.BuildDelay)
		d.IsBuildSlowdown = f.GetBool(s, "BuildSlowdown", d.IsBuildSlowdown)
		d.IsWallDestroyer = f.GetBool(s, "DestroyWalls", d.IsWallDestroyer)
		d.IsContentScan = f.GetBool(s, "ContentScan", d.IsContentScan)
	}
}

func (r *Rules) readCountries(f *ini.File) {
	for h := core.HouseType(0); h < core.HouseCount; h++ {
		s := h.String()
		if !f.HasSection(s) {
			continue
		}
		c := &r.Countries[h]
		c.FirepowerBias = f.GetFixed(s, "Firepower", c.FirepowerBias)
		c.ArmorBias = f.GetFixed(s, "Armor", c.ArmorBias)
		c.ROFBias = f.GetFixed(s, "ROF", c.ROFBias)
		c.CostBias = f.GetFixed(s, "Cost", c.CostBias)
		c.SpeedBias = f.GetFixed(s, "GroundSpeed", c.SpeedBias)
		c.BuildTimeBias = f.GetFixed(s, "BuildTime", c.BuildTimeBias)
	}
}

func (r *Rules) readObjects(f *ini.File) {
	for _, w := range r.Registry.Weapons {
		if !f.HasSection(w.Name) {
			continue
		}
		w.Damage = f.GetInt(w.Name, "Damage", w.Damage)
		w.Burst = f.GetInt(w.Name, "Burst", w.Burst)
		w.ROF = f.GetInt(w.Name, "ROF", w.ROF)
		w.Range = leptons(f, w.Name, "Range", w.Range)
	}

	for _, t := range r.Registry.Types {
		if !f.HasSection(t.Name) {
			continue
		}
		s := t.Name
		t.Strength = f.GetInt(s, "Strength", t.Strength)
		t.MaxSpeed = f.GetInt(s, "Speed", t.MaxSpeed)
		t.TechLevel = f.GetInt(s, "TechLevel", t.TechLevel)
		t.Points = f.GetInt(s, "Points", t.Points)
		t.Sight = f.GetInt(s, "Sight", t.Sight)
		t.MaxPassengers = f.GetInt(s, "Passengers", t.MaxPassengers)
		t.IsCaptureable = f.GetBool(s, "Capturable", t.IsCaptureable)
		t.Capacity = f.GetInt(s, "Storage", t.Capacity)
		if w := r.Registry.Weapon(f.GetString(s, "Primary", "")); w != nil {
			t.Primary = w
		}
		if w := r.Registry.Weapon(f.GetString(s, "Secondary", "")); w != nil {
			t.Secondary = w
		}
		if owner := f.GetString(s, "Owner", ""); owner != "" {
			t.IsSoviet = !strings.Contains(strings.ToLower(owner), "allies")
		}
	}
}

func leptons(f *ini.File, section, entry string, def int) int {
	if !f.Has(section, entry) {
		return def
	}
	v := f.GetFixed(section, entry, fixed.Zero)
	return v.MulInt(core.CellLeptons)
}
