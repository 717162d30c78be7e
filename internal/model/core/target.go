package core

import "fmt"

// RTTIType tags what a Target points at.
type RTTIType int

const (
	RTTINone RTTIType = iota
	RTTICell
	RTTIInfantry
	RTTIUnit
	RTTIAircraft
	RTTIVessel
	RTTIBuilding
	RTTITerrain
	RTTITeam
	RTTITeamType
	RTTITriggerType
	RTTIHouse
)

func (r RTTIType) String() string {
	switch r {
	case RTTICell:
		return "cell"
	case RTTIInfantry:
		return "infantry"
	case RTTIUnit:
		return "unit"
	case RTTIAircraft:
		return "aircraft"
	case RTTIVessel:
		return "vessel"
	case RTTIBuilding:
		return "building"
	case RTTITerrain:
		return "terrain"
	case RTTITeam:
		return "team"
	case RTTITeamType:
		return "teamtype"
	case RTTITriggerType:
		return "triggertype"
	case RTTIHouse:
		return "house"
	}
	return "none"
}

// Target is a compact handle to any addressable game entity or cell.
type Target struct {
	Kind RTTIType `json:"kind"`
	ID   int      `json:"id"`
}

// TargetNone is the empty target.
var TargetNone = Target{}

// IsValid reports whether t refers to something.
func (t Target) IsValid() bool {
	return t.Kind != RTTINone
}

// IsCell reports whether t is a cell target.
func (t Target) IsCell() bool {
	return t.Kind == RTTICell
}

// AsCellTarget wraps a cell number.
func AsCellTarget(c Cell) Target {
	return Target{Kind: RTTICell, ID: int(c)}
}

// Cell returns the cell of a cell target, or CellNone.
func (t Target) Cell() Cell {
	if t.Kind != RTTICell {
		return CellNone
	}
	return Cell(t.ID)
}

// Raw packs the target into the 32-bit form stored in scenario and save data.
func (t Target) Raw() int32 {
	if !t.IsValid() {
		return 0
	}
	return int32(t.Kind)<<24 | int32(t.ID&0xFFFFFF)
}

// TargetFromRaw unpacks a 32-bit target value.
func TargetFromRaw(raw int32) Target {
	kind := RTTIType(raw >> 24)
	if kind == RTTINone {
		return TargetNone
	}
	return Target{Kind: kind, ID: int(raw & 0xFFFFFF)}
}

func (t Target) String() string {
	if !t.IsValid() {
		return "none"
	}
	return fmt.Sprintf("%s:%d", t.Kind, t.ID)
}
