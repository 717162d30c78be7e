package world

import "strings"

// OverlayType is a cell overlay: walls, ore, gems and crates.
type OverlayType int

const (
	OverlayNone OverlayType = iota - 1
	OverlaySandbagWall
	OverlayCycloneWall
	OverlayBrickWall
	OverlayBarbwireWall
	OverlayWoodWall
	OverlayGold1
	OverlayGold2
	OverlayGold3
	OverlayGold4
	OverlayGems1
	OverlayGems2
	OverlayGems3
	OverlayGems4
	OverlayV12
	OverlayV13
	OverlayV14
	OverlayV15
	OverlayV16
	OverlayV17
	OverlayV18
	OverlayFlagSpot
	OverlayWoodCrate
	OverlaySteelCrate
	OverlayFence
	OverlayWaterCrate

	OverlayCount
)

var overlayNames = [OverlayCount]string{
	"SBAG", "CYCL", "BRIK", "BARB", "WOOD",
	"GOLD01", "GOLD02", "GOLD03", "GOLD04",
	"GEM01", "GEM02", "GEM03", "GEM04",
	"V12", "V13", "V14", "V15", "V16", "V17", "V18",
	"FPLS", "WCRATE", "SCRATE", "FENC", "WWCRATE",
}

func (o OverlayType) String() string {
	if o < 0 || o >= OverlayCount {
		return "none"
	}
	return overlayNames[o]
}

// OverlayFromName resolves an INI overlay name.
func OverlayFromName(name string) OverlayType {
	for i, n := range overlayNames {
		if strings.EqualFold(n, name) {
			return OverlayType(i)
		}
	}
	return OverlayNone
}

// IsWall reports whether the overlay blocks movement as a wall.
func (o OverlayType) IsWall() bool {
	switch o {
	case OverlaySandbagWall, OverlayCycloneWall, OverlayBrickWall, OverlayBarbwireWall,
		OverlayWoodWall, OverlayFence:
		return true
	}
	return false
}

// IsTiberium reports whether the overlay is harvestable ore or gems.
func (o OverlayType) IsTiberium() bool {
	return o >= OverlayGold1 && o <= OverlayGems4
}

// IsCrate reports whether the overlay is a bonus crate.
func (o OverlayType) IsCrate() bool {
	return o == OverlayWoodCrate || o == OverlaySteelCrate || o == OverlayWaterCrate
}
