package scenario

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rasim/simcore/internal/ini"
	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/rules"
	"github.com/rasim/simcore/internal/world"
)

const (
	unitSection      = "Units"
	shipSection      = "Ships"
	infantrySection  = "Infantry"
	aircraftSection  = "Aircraft"
	structureSection = "Structures"
	terrainSection   = "Terrain"
	overlaySection   = "Overlay"
	smudgeSection    = "Smudge"
	baseSection      = "Base"

	// fullStrength is the authored strength of an undamaged object.
	fullStrength = 256
	noTrigger    = "None"
)

// fields splits an object line on commas.
type fields []string

func splitFields(entry string) fields {
	parts := strings.Split(entry, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func (f fields) str(i int) string {
	if i >= len(f) {
		return ""
	}
	return f[i]
}

func (f fields) num(i, def int) int {
	n, err := strconv.Atoi(f.str(i))
	if err != nil {
		return def
	}
	return n
}

// objectSpec is the decoded part of an object line common to every foot section.
type objectSpec struct {
	house    core.HouseType
	class    *rules.TechnoType
	strength int
	cell     core.Cell
	facing   core.FacingType
	mission  core.MissionType
	trigger  string
	subCell  int
}

// dirFacing converts an authored 0..255 direction to one of the eight facings.
func dirFacing(dir int) core.FacingType {
	return core.FacingType((dir / 32) & 7)
}

// scaleStrength maps the authored 0..256 strength onto the type's hit points. Values within a
// rounding error of full health are treated as full.
func scaleStrength(full, authored int) int {
	authored = min(max(authored, 0), fullStrength)
	s := full * authored / fullStrength
	if s > full-3 {
		s = full
	}
	if s < 1 {
		s = 1
	}
	return s
}

func readUnits(f *ini.File, w *world.WorldState) error {
	return readFeet(f, w, unitSection, rules.KindUnit, func(v fields) objectSpec {
		return objectSpec{strength: v.num(2, fullStrength), cell: core.Cell(v.num(3, -1)),
			facing: dirFacing(v.num(4, 0)), mission: core.MissionFromName(v.str(5)), trigger: v.str(6)}
	})
}

func readShips(f *ini.File, w *world.WorldState) error {
	return readFeet(f, w, shipSection, rules.KindVessel, func(v fields) objectSpec {
		return objectSpec{strength: v.num(2, fullStrength), cell: core.Cell(v.num(3, -1)),
			facing: dirFacing(v.num(4, 0)), mission: core.MissionFromName(v.str(5)), trigger: v.str(6)}
	})
}

func readInfantry(f *ini.File, w *world.WorldState) error {
	return readFeet(f, w, infantrySection, rules.KindInfantry, func(v fields) objectSpec {
		return objectSpec{strength: v.num(2, fullStrength), cell: core.Cell(v.num(3, -1)),
			subCell: v.num(4, 0), mission: core.MissionFromName(v.str(5)),
			facing: dirFacing(v.num(6, 0)), trigger: v.str(7)}
	})
}

func readAircraft(f *ini.File, w *world.WorldState) error {
	return readFeet(f, w, aircraftSection, rules.KindAircraft, func(v fields) objectSpec {
		return objectSpec{strength: v.num(2, fullStrength), cell: core.Cell(v.num(3, -1)),
			facing: dirFacing(v.num(4, 0)), mission: core.MissionFromName(v.str(5)), trigger: noTrigger}
	})
}

// readFeet creates and places every object of one foot section. Lines naming an unknown house
// or type are skipped; an object that cannot be placed is deleted again.
func readFeet(f *ini.File, w *world.WorldState, section string, kind rules.Kind, decode func(fields) objectSpec) error {
	for _, entry := range f.Entries(section) {
		v := splitFields(f.GetString(section, entry, ""))
		spec := decode(v)
		spec.house = core.HouseFromName(v.str(0))
		spec.class = w.Rules.Registry.TypeOfKind(v.str(1), kind)
		if spec.house == core.HouseNone || spec.class == nil {
			w.Log.Warn("skipping object", "section", section, "entry", entry)
			continue
		}

		obj, err := w.CreateFoot(spec.class, spec.house)
		if err != nil {
			return fmt.Errorf("%s %s: %w", section, entry, err)
		}
		obj.Strength = scaleStrength(spec.class.Strength, spec.strength)
		obj.SubCell = spec.subCell
		if err := attachTrigger(w, spec.trigger, &obj.Trigger); err != nil {
			return err
		}

		h := w.House(spec.house)
		if w.Session.Type == core.GameNormal || (h != nil && h.IsHuman) {
			if spec.mission != core.MissionNone {
				obj.AssignMission(spec.mission)
			}
		} else {
			obj.EnterIdleMode(w)
		}

		if !obj.Unlimbo(w, spec.cell, spec.facing) {
			w.DeleteFoot(obj)
		}
	}
	return nil
}

// attachTrigger binds the named trigger type's instance to an object slot.
func attachTrigger(w *world.WorldState, name string, slot **world.Trigger) error {
	if name == "" || strings.EqualFold(name, noTrigger) {
		return nil
	}
	tt := w.TriggerTypeByName(name)
	if tt == nil {
		return nil
	}
	t, err := w.FindOrMakeTrigger(tt)
	if err != nil {
		return err
	}
	*slot = t
	t.AttachCount++
	return nil
}

// readStructures reads house,type,strength,cell,facing,trigger[,sellable,rebuild].
func readStructures(f *ini.File, w *world.WorldState) error {
	for _, entry := range f.Entries(structureSection) {
		v := splitFields(f.GetString(structureSection, entry, ""))
		h := core.HouseFromName(v.str(0))
		class := w.Rules.Registry.TypeOfKind(v.str(1), rules.KindBuilding)
		cell := core.Cell(v.num(3, -1))
		if h == core.HouseNone || class == nil || !cell.IsValid() {
			w.Log.Warn("skipping object", "section", structureSection, "entry", entry)
			continue
		}

		b, err := w.CreateBuilding(class, h, cell)
		if err != nil {
			return fmt.Errorf("%s %s: %w", structureSection, entry, err)
		}
		b.Strength = scaleStrength(class.Strength, v.num(2, fullStrength))
		b.Facing = dirFacing(v.num(4, 0))
		if err := attachTrigger(w, v.str(5), &b.Trigger); err != nil {
			return err
		}
		if len(v) > 6 {
			b.IsSellable = v.num(6, 1) != 0
		}
		if len(v) > 7 {
			b.IsRebuild = v.num(7, 0) != 0
		}
	}
	return nil
}

func readTerrain(f *ini.File, w *world.WorldState) error {
	for _, entry := range f.Entries(terrainSection) {
		n, err := strconv.Atoi(entry)
		if err != nil || !core.Cell(n).IsValid() {
			continue
		}
		if _, err := w.CreateTerrain(f.GetString(terrainSection, entry, ""), core.Cell(n)); err != nil {
			return fmt.Errorf("%s %s: %w", terrainSection, entry, err)
		}
	}
	return nil
}

// readBase reads the authored rebuild list: Player=house, Count=n, NNN=type,cell.
func readBase(f *ini.File, w *world.WorldState) error {
	if !f.HasSection(baseSection) {
		return nil
	}
	w.Base.House = f.GetHouse(baseSection, "Player", core.HouseNone)
	count := f.GetInt(baseSection, "Count", 0)
	for i := 0; i < count; i++ {
		v := splitFields(f.GetString(baseSection, fmt.Sprintf("%03d", i), ""))
		class := w.Rules.Registry.TypeOfKind(v.str(0), rules.KindBuilding)
		cell := core.Cell(v.num(1, -1))
		if class == nil || !cell.IsValid() {
			continue
		}
		w.Base.Nodes = append(w.Base.Nodes, world.BaseNode{Type: class, Cell: cell})
	}
	return nil
}

// readOverlay prefers the packed plane; older files list overlays one cell at a time.
func readOverlay(f *ini.File, w *world.WorldState) error {
	if f.HasSection(overlayPackSection) {
		data, err := world.DecodePack(f.TextBlockJoined(overlayPackSection, ""))
		if err != nil {
			return fmt.Errorf("overlay pack: %w", err)
		}
		return w.Map.ReadOverlayBinary(data)
	}
	for _, entry := range f.Entries(overlaySection) {
		n, err := strconv.Atoi(entry)
		if err != nil {
			continue
		}
		if o := world.OverlayFromName(f.GetString(overlaySection, entry, "")); o != world.OverlayNone {
			w.Map.SetOverlay(core.Cell(n), o, 0)
		}
	}
	return nil
}

// readSmudge reads cell=type,cell,data.
func readSmudge(f *ini.File, w *world.WorldState) error {
	for _, entry := range f.Entries(smudgeSection) {
		v := splitFields(f.GetString(smudgeSection, entry, ""))
		mc := w.Map.Cell(core.Cell(v.num(1, -1)))
		if mc == nil || v.str(0) == "" {
			continue
		}
		mc.Smudge = v.str(0)
		mc.SmudgeData = v.num(2, 0)
	}
	return nil
}
