package world

import (
	"github.com/rasim/simcore/internal/fixed"
	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/rules"
)

// House is the control block of one side.
type House struct {
	Class   core.HouseType
	ActLike core.HouseType
	IniName string

	Credits        int
	InitialCredits int
	Tiberium       int
	Capacity       int

	TechLevel   int
	Difficulty  core.DiffType
	IQ          int
	Color       int
	Edge        core.FacingType
	MaxUnit     int
	MaxBuilding int

	FirepowerBias   fixed.Fixed
	GroundspeedBias fixed.Fixed
	AirspeedBias    fixed.Fixed
	ArmorBias       fixed.Fixed
	ROFBias         fixed.Fixed
	CostBias        fixed.Fixed
	BuildSpeedBias  fixed.Fixed

	IsHuman         bool
	IsPlayerControl bool
	IsStarted       bool
	IsDefeated      bool

	// Allies is a bit set indexed by HouseType.
	Allies uint32

	StartLocationOverride int
	Center                core.Coord

	// Blockage counts the triggers owned by this house that gate a win.
	Blockage int

	// Owned tallies live buildings by type name.
	Owned map[string]int

	rules *rules.Rules
}

// NewHouse returns a house with the defaults of an unconfigured side.
func NewHouse(h core.HouseType, r *rules.Rules) *House {
	house := &House{
		Class:                 h,
		ActLike:               h,
		IniName:               h.String(),
		TechLevel:             r.TechLevel(len(r.BuildLevelTech) - 1),
		Difficulty:            core.DiffNormal,
		MaxUnit:               r.UnitMax,
		MaxBuilding:           r.BuildingMax,
		StartLocationOverride: -1,
		Owned:                 make(map[string]int),
		rules:                 r,
	}
	house.MakeAlly(h)
	house.AssignHandicap(core.DiffNormal)
	return house
}

// InitData seeds a multiplayer slot from the lobby.
func (h *House) InitData(color int, actLike core.HouseType, credits int) {
	h.Color = color
	h.ActLike = actLike
	h.Credits = credits
	h.InitialCredits = credits
}

// AssignHandicap applies the difficulty biases and returns the previous setting.
func (h *House) AssignHandicap(diff core.DiffType) core.DiffType {
	old := h.Difficulty
	h.Difficulty = diff

	d := h.rules.Diff[diff]
	h.FirepowerBias = d.FirepowerBias
	h.GroundspeedBias = d.GroundspeedBias
	h.AirspeedBias = d.AirspeedBias
	h.ArmorBias = d.ArmorBias
	h.ROFBias = d.ROFBias
	h.CostBias = d.CostBias
	h.BuildSpeedBias = d.BuildSpeedBias
	return old
}

// IsAlly reports whether other is allied with this house.
func (h *House) IsAlly(other core.HouseType) bool {
	if !other.IsValid() {
		return false
	}
	return h.Allies&(1<<uint(other)) != 0
}

// MakeAlly adds other to the alliance set.
func (h *House) MakeAlly(other core.HouseType) {
	if other.IsValid() {
		h.Allies |= 1 << uint(other)
	}
}

// MakeEnemy removes other from the alliance set. A house is always its own ally.
func (h *House) MakeEnemy(other core.HouseType) {
	if other.IsValid() && other != h.Class {
		h.Allies &^= 1 << uint(other)
	}
}

// IsSoviet reports whether the house fields the Soviet arsenal.
func (h *House) IsSoviet() bool {
	return h.ActLike == core.HouseUSSR || h.ActLike == core.HouseUkraine
}

// SpendMoney drains tiberium before credits. It reports false when the house cannot pay.
func (h *House) SpendMoney(amount int) bool {
	if amount > h.Credits+h.Tiberium {
		return false
	}
	if amount <= h.Tiberium {
		h.Tiberium -= amount
		return true
	}
	amount -= h.Tiberium
	h.Tiberium = 0
	h.Credits -= amount
	return true
}

// FillSilos moves credits into spare tiberium storage.
func (h *House) FillSilos() {
	tomove := h.Capacity - h.Tiberium
	if tomove > h.Credits {
		tomove = h.Credits
	}
	if tomove <= 0 {
		return
	}
	h.Credits -= tomove
	h.Tiberium += tomove
}
