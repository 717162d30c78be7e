package world

import (
	"errors"
	"math"

	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/rules"
)

// ErrNotFoot is returned when a non-mobile type is created as a foot object.
var ErrNotFoot = errors.New("type is not a mobile object")

// FormOffsetNone marks a foot object that holds no formation slot.
const FormOffsetNone = math.MinInt32

// GroupNone is the group number of an object outside any formation.
const GroupNone = 0xFF

// FootKind is the closed set of mobile object families.
type FootKind int

const (
	FootInfantry FootKind = iota
	FootUnit
	FootAircraft
	FootVessel
)

// FootKinds lists every kind in pool order.
var FootKinds = [...]FootKind{FootInfantry, FootUnit, FootAircraft, FootVessel}

func (k FootKind) String() string {
	switch k {
	case FootInfantry:
		return "infantry"
	case FootUnit:
		return "unit"
	case FootAircraft:
		return "aircraft"
	case FootVessel:
		return "vessel"
	}
	return "unknown"
}

// RTTI returns the target kind of objects of this family.
func (k FootKind) RTTI() core.RTTIType {
	switch k {
	case FootInfantry:
		return core.RTTIInfantry
	case FootUnit:
		return core.RTTIUnit
	case FootAircraft:
		return core.RTTIAircraft
	case FootVessel:
		return core.RTTIVessel
	}
	return core.RTTINone
}

// FootKindOf maps a rules kind to a foot kind. Buildings have none.
func FootKindOf(k rules.Kind) (FootKind, bool) {
	switch k {
	case rules.KindInfantry:
		return FootInfantry, true
	case rules.KindUnit:
		return FootUnit, true
	case rules.KindAircraft:
		return FootAircraft, true
	case rules.KindVessel:
		return FootVessel, true
	case rules.KindBuilding:
		return 0, false
	}
	return 0, false
}

func footKindOfRTTI(r core.RTTIType) (FootKind, bool) {
	switch r {
	case core.RTTIInfantry:
		return FootInfantry, true
	case core.RTTIUnit:
		return FootUnit, true
	case core.RTTIAircraft:
		return FootAircraft, true
	case core.RTTIVessel:
		return FootVessel, true
	}
	return 0, false
}

// Object is anything on the map that can be targeted.
type Object interface {
	AsTarget() core.Target
	Center() core.Coord
	Owner() core.HouseType
	TechnoType() *rules.TechnoType
	IsAlive(w *WorldState) bool
	TakeDamage(w *WorldState, damage int, source core.Target)
}

// TeamOwner is the team a foot object belongs to.
type TeamOwner interface {
	ID() int
	Priority() int
	Remove(f *Foot) bool
	TookDamage(f *Foot, source core.Target)
}

// Gesture is the idle animation an infantry plays when its team moves out.
type Gesture int

const (
	GestureNone Gesture = iota
	Gesture1
	Gesture2
)

// Foot is a mobile object: infantry, vehicle, aircraft or vessel.
type Foot struct {
	ID       int
	Kind     FootKind
	Type     *rules.TechnoType
	House    core.HouseType
	Coord    core.Coord
	Facing   core.FacingType
	Strength int

	IsActive  bool
	IsInLimbo bool

	Team        TeamOwner
	IsInitiated bool

	Mission          core.MissionType
	MissionQueue     core.MissionType
	SuspendedMission core.MissionType
	SuspendedTarCom  core.Target
	SuspendedNavCom  core.Target

	TarCom core.Target
	NavCom core.Target

	Group             int
	XFormOffset       int
	YFormOffset       int
	IsFormationMove   bool
	FormationSpeed    core.SpeedType
	FormationMaxSpeed int

	Cargo     []*Foot
	Transport *Foot
	IsALoaner bool

	Ammo    int
	Reload  int
	Height  int
	Gesture Gesture
	SubCell int
	Trigger *Trigger

	IronCurtainCountDown int

	RadioContact *Foot

	IsScanLimited bool
	IsLocked      bool
}

func (f *Foot) init(id int, kind FootKind, t *rules.TechnoType, house core.HouseType) {
	f.ID = id
	f.Kind = kind
	f.Type = t
	f.House = house
	f.Strength = t.Strength
	f.IsActive = true
	f.IsInLimbo = true
	f.Mission = core.MissionNone
	f.MissionQueue = core.MissionNone
	f.SuspendedMission = core.MissionNone
	f.Group = GroupNone
	f.XFormOffset = FormOffsetNone
	f.YFormOffset = FormOffsetNone
	f.Ammo = -1
	if (kind == FootAircraft && t.IsArmed()) || t.IsMineLayer {
		f.Ammo = 5
	}
}

// AsTarget returns the handle of f.
func (f *Foot) AsTarget() core.Target {
	return core.Target{Kind: f.Kind.RTTI(), ID: f.ID}
}

// Center returns the lepton position.
func (f *Foot) Center() core.Coord { return f.Coord }

// Cell returns the cell f stands in.
func (f *Foot) Cell() core.Cell { return f.Coord.Cell() }

// Owner returns the owning house.
func (f *Foot) Owner() core.HouseType { return f.House }

// TechnoType returns the type data.
func (f *Foot) TechnoType() *rules.TechnoType { return f.Type }

// IsAlive is Breathing.
func (f *Foot) IsAlive(w *WorldState) bool { return f.Breathing(w) }

// Breathing reports whether f exists in the world. Objects in limbo count only while a
// scenario is being built.
func (f *Foot) Breathing(w *WorldState) bool {
	return f.IsActive && f.Strength > 0 && (!f.IsInLimbo || w.ScenarioInit != 0)
}

// Playing reports whether f takes part in its team's orders: breathing and either initiated
// or an aircraft.
func (f *Foot) Playing(w *WorldState) bool {
	return f.Breathing(w) && (f.IsInitiated || f.Kind == FootAircraft)
}

// IsTransport reports whether f carries passengers.
func (f *Foot) IsTransport() bool { return f.Type.IsTransport() }

// GetMission returns the queued mission if any, otherwise the current one.
func (f *Foot) GetMission() core.MissionType {
	if f.MissionQueue != core.MissionNone {
		return f.MissionQueue
	}
	return f.Mission
}

// AssignMission queues a new order; it takes effect on the next tick.
func (f *Foot) AssignMission(m core.MissionType) {
	f.MissionQueue = m
}

// AssignTarget sets the attack target.
func (f *Foot) AssignTarget(t core.Target) { f.TarCom = t }

// AssignDestination sets the movement target.
func (f *Foot) AssignDestination(t core.Target) { f.NavCom = t }

// EnterIdleMode picks the default order for an object with nothing to do.
func (f *Foot) EnterIdleMode(w *WorldState) {
	switch {
	case f.Type.IsHarvester:
		f.AssignMission(core.MissionHarvest)
	case w.House(f.House) != nil && w.House(f.House).IsHuman:
		f.AssignMission(core.MissionGuard)
	default:
		f.AssignMission(core.MissionGuardArea)
	}
}

// CanEnterCell reports whether f may stand in c.
func (f *Foot) CanEnterCell(w *WorldState, c core.Cell) bool {
	return w.Map.CanEnter(c, f.Kind, f.Type.Speed)
}

// AdjustDest returns a cell near c that f can actually enter.
func (f *Foot) AdjustDest(w *WorldState, c core.Cell) core.Cell {
	if f.Kind == FootAircraft || f.CanEnterCell(w, c) {
		return c
	}
	if near := w.Map.NearbyLocation(c, f.Kind, f.Type.Speed); near != core.CellNone {
		return near
	}
	return c
}

// Unlimbo places f on the map at c. It reports false if the cell cannot take it.
func (f *Foot) Unlimbo(w *WorldState, c core.Cell, facing core.FacingType) bool {
	if !f.IsInLimbo || !c.IsValid() || !f.CanEnterCell(w, c) {
		return false
	}
	f.Coord = core.CellCoord(c)
	f.Facing = facing
	f.IsInLimbo = false
	f.IsLocked = f.IsLocked || w.Map.InRadar(c)
	w.Map.addObject(c, f.AsTarget())
	if f.GetMission() == core.MissionNone {
		f.EnterIdleMode(w)
	}
	return true
}

// Limbo removes f from the map without destroying it.
func (f *Foot) Limbo(w *WorldState) {
	if f.IsInLimbo {
		return
	}
	w.Map.removeObject(f.Cell(), f.AsTarget())
	f.IsInLimbo = true
}

// IsInRange reports whether t lies within f's weapon range.
func (f *Foot) IsInRange(w *WorldState, t core.Target) bool {
	c, ok := w.TargetCoord(t)
	if !ok {
		return false
	}
	return core.Distance(f.Coord, c) <= f.Type.Range()
}

// TakeDamage applies damage and tells the team who hit it.
func (f *Foot) TakeDamage(w *WorldState, damage int, source core.Target) {
	if f.IronCurtainCountDown > 0 || !f.Breathing(w) {
		return
	}
	f.Strength -= damage
	if f.Strength <= 0 {
		f.Strength = 0
		w.DeleteFoot(f)
		return
	}
	if f.Team != nil {
		f.Team.TookDamage(f, source)
	}
}

// Board puts f inside transport. It reports false when the transport is full.
func (f *Foot) Board(w *WorldState, transport *Foot) bool {
	if len(transport.Cargo) >= transport.Type.MaxPassengers {
		return false
	}
	f.Limbo(w)
	f.Transport = transport
	transport.Cargo = append(transport.Cargo, f)
	return true
}

func (f *Foot) removeCargo(p *Foot) {
	for i, c := range f.Cargo {
		if c == p {
			f.Cargo = append(f.Cargo[:i], f.Cargo[i+1:]...)
			break
		}
	}
	p.Transport = nil
}

func (f *Foot) speed() int {
	if f.IsFormationMove && f.FormationMaxSpeed > 0 {
		return f.FormationMaxSpeed
	}
	return f.Type.MaxSpeed
}

// Tick advances f by one game frame.
func (f *Foot) Tick(w *WorldState) {
	if !f.Breathing(w) || f.IsInLimbo {
		return
	}
	if f.MissionQueue != core.MissionNone {
		f.Mission = f.MissionQueue
		f.MissionQueue = core.MissionNone
	}
	if f.IronCurtainCountDown > 0 {
		f.IronCurtainCountDown--
	}
	if f.Reload > 0 {
		f.Reload--
	}

	switch f.Mission {
	case core.MissionAttack, core.MissionHunt, core.MissionGuardArea:
		f.fight(w)
	case core.MissionEnter, core.MissionCapture:
		f.enter(w)
		return
	case core.MissionUnload:
		f.unload(w)
		return
	}

	if w.IsLegal(f.NavCom) {
		f.step(w)
	}
}

func (f *Foot) fight(w *WorldState) {
	if !w.IsLegal(f.TarCom) || !f.Type.IsArmed() {
		return
	}
	if !f.IsInRange(w, f.TarCom) {
		if !w.IsLegal(f.NavCom) {
			f.NavCom = f.TarCom
		}
		return
	}
	if f.NavCom == f.TarCom {
		f.NavCom = core.TargetNone
	}
	if f.Reload > 0 || f.Ammo == 0 {
		return
	}
	weapon := f.Type.Primary
	if weapon == nil {
		weapon = f.Type.Secondary
	}
	if o := w.Object(f.TarCom); o != nil {
		o.TakeDamage(w, weapon.Damage*weapon.Burst, f.AsTarget())
	}
	f.Reload = weapon.ROF
	if f.Ammo > 0 {
		f.Ammo--
	}
}

func (f *Foot) enter(w *WorldState) {
	dest := f.NavCom
	if !w.IsLegal(dest) {
		f.AssignMission(core.MissionGuard)
		return
	}
	c, _ := w.TargetCoord(dest)
	if core.Distance(f.Coord, c) > core.CellLeptons*3/2 {
		f.step(w)
		return
	}

	switch o := w.Object(dest).(type) {
	case *Foot:
		if o.IsTransport() && f.Board(w, o) {
			f.NavCom = core.TargetNone
			f.AssignMission(core.MissionSleep)
			return
		}
	case *Building:
		if f.Mission == core.MissionCapture && f.Type.IsEngineer && o.Type.IsCaptureable {
			w.CaptureBuilding(o, f.House)
			w.DeleteFoot(f)
			return
		}
	}
	f.NavCom = core.TargetNone
	f.AssignMission(core.MissionGuard)
}

func (f *Foot) unload(w *WorldState) {
	switch {
	case f.Type.IsDeployable:
		cell, house := f.Cell(), f.House
		fact := w.Rules.Registry.TypeOfKind("FACT", rules.KindBuilding)
		w.DeleteFoot(f)
		if fact != nil {
			if _, err := w.CreateBuilding(fact, house, cell); err != nil {
				w.Log.Warn("deploy failed", "house", house, "cell", cell, "error", err)
			}
		}
		return

	case f.Type.IsMineLayer:
		if f.Ammo > 0 {
			f.Ammo--
		}

	case len(f.Cargo) > 0:
		for _, p := range append([]*Foot(nil), f.Cargo...) {
			c := w.Map.NearbyLocation(f.Cell(), p.Kind, p.Type.Speed)
			if c == core.CellNone {
				break
			}
			f.removeCargo(p)
			p.Unlimbo(w, c, f.Facing)
			p.EnterIdleMode(w)
		}
	}
	f.AssignMission(core.MissionGuard)
}

// step moves f toward NavCom by its speed, tracking cell occupancy.
func (f *Foot) step(w *WorldState) {
	dest, ok := w.TargetCoord(f.NavCom)
	if !ok {
		f.NavCom = core.TargetNone
		return
	}
	dx, dy := dest.X-f.Coord.X, dest.Y-f.Coord.Y
	dist := core.Distance(f.Coord, dest)
	speed := f.speed()
	if speed <= 0 {
		return
	}

	next := dest
	if dist > speed {
		next = core.Coord{X: f.Coord.X + dx*speed/dist, Y: f.Coord.Y + dy*speed/dist}
	}

	from, to := f.Coord.Cell(), next.Cell()
	if from != to {
		if !f.CanEnterCell(w, to) {
			return
		}
		w.Map.removeObject(from, f.AsTarget())
		w.Map.addObject(to, f.AsTarget())
	}
	f.Coord = next
	f.IsLocked = f.IsLocked || w.Map.InRadar(to)

	if next == dest && f.NavCom.IsCell() {
		f.NavCom = core.TargetNone
	}
}

// GreatestThreat scans the enemies of f and returns the most valuable one that matches the
// threat filter. Ties go to the first in scan order.
func (f *Foot) GreatestThreat(w *WorldState, threat core.ThreatType) core.Target {
	if !f.Type.IsArmed() {
		return core.TargetNone
	}
	owner := w.House(f.House)

	best := core.TargetNone
	bestValue := -1
	consider := func(o Object) {
		if !o.IsAlive(w) || (owner != nil && owner.IsAlly(o.Owner())) {
			return
		}
		if !threatMatches(o, threat) {
			return
		}
		if ft, ok := o.(*Foot); ok && ft.Kind == FootAircraft {
			if !f.Type.CanAttackAir() {
				return
			}
		} else if !f.Type.CanAttackGround() {
			return
		}
		dist := core.Distance(f.Coord, o.Center())
		if threat&core.ThreatRange != 0 && dist > f.Type.Range() {
			return
		}
		if threat&core.ThreatArea != 0 && dist > f.Type.Range()*2 {
			return
		}
		value := (o.TechnoType().Points + 1) * core.CellLeptons * 16 / (dist + core.CellLeptons)
		if value > bestValue {
			bestValue = value
			best = o.AsTarget()
		}
	}

	for _, o := range w.Feet() {
		if o.IsInLimbo {
			continue
		}
		consider(o)
	}
	for _, b := range w.Buildings.Items() {
		consider(b)
	}
	return best
}

const threatKinds = core.ThreatAir | core.ThreatInfantry | core.ThreatVehicles | core.ThreatBuildings |
	core.ThreatTiberium | core.ThreatBoats | core.ThreatCivilians | core.ThreatCapture |
	core.ThreatFakes | core.ThreatPower | core.ThreatFactories | core.ThreatBaseDefense

func threatMatches(o Object, threat core.ThreatType) bool {
	if threat&threatKinds == 0 {
		return true
	}
	t := o.TechnoType()
	switch v := o.(type) {
	case *Foot:
		switch v.Kind {
		case FootInfantry:
			return threat&core.ThreatInfantry != 0
		case FootUnit:
			return threat&core.ThreatVehicles != 0 || (threat&core.ThreatTiberium != 0 && t.IsHarvester)
		case FootAircraft:
			return threat&core.ThreatAir != 0
		case FootVessel:
			return threat&core.ThreatBoats != 0
		}
	case *Building:
		switch {
		case threat&core.ThreatBuildings != 0:
			return true
		case threat&core.ThreatFactories != 0 && t.IsFactory:
			return true
		case threat&core.ThreatBaseDefense != 0 && t.IsDefense:
			return true
		case threat&core.ThreatPower != 0 && t.IsPower:
			return true
		case threat&core.ThreatFakes != 0 && t.IsFake:
			return true
		case threat&core.ThreatCapture != 0 && t.IsCaptureable:
			return true
		}
	}
	return false
}
