package rules

import (
	"strings"

	"github.com/rasim/simcore/internal/model/core"
)

// Kind is the object family a techno type belongs to.
type Kind int

const (
	KindInfantry Kind = iota
	KindUnit
	KindAircraft
	KindVessel
	KindBuilding
)

func (k Kind) String() string {
	switch k {
	case KindInfantry:
		return "infantry"
	case KindUnit:
		return "unit"
	case KindAircraft:
		return "aircraft"
	case KindVessel:
		return "vessel"
	case KindBuilding:
		return "building"
	}
	return "unknown"
}

// Weapon is a named weapon entry ([Sniper], [90mm], ...).
type Weapon struct {
	Name     string
	Damage   int
	Range    int // leptons
	Burst    int
	ROF      int
	AntiAir  bool
	AntiGnd  bool
	IsCamera bool
}

// TechnoType is the shared type data of every buildable or placeable object.
type TechnoType struct {
	Name      string
	Kind      Kind
	Strength  int
	MaxSpeed  int // leptons per tick
	Speed     core.SpeedType
	TechLevel int
	Points    int
	Sight     int
	Primary   *Weapon
	Secondary *Weapon

	// Soviet or allied ownership: true when only Soviet houses can build it.
	IsSoviet bool

	MaxPassengers int
	IsCrew        bool
	IsHarvester   bool
	IsDeployable  bool // MCV
	IsMineLayer   bool
	IsSpy         bool
	IsThief       bool
	IsDog         bool
	IsEngineer    bool

	// Building data.
	IsCaptureable bool
	IsFactory     bool
	IsPower       bool
	IsFake        bool
	IsRepairPad   bool
	IsDefense     bool
	Capacity      int // tiberium storage
	Width         int
	Height        int
}

// IsArmed reports whether the type carries any weapon.
func (t *TechnoType) IsArmed() bool {
	return t.Primary != nil || t.Secondary != nil
}

// CanAttackAir reports whether any weapon can engage aircraft.
func (t *TechnoType) CanAttackAir() bool {
	return (t.Primary != nil && t.Primary.AntiAir) || (t.Secondary != nil && t.Secondary.AntiAir)
}

// CanAttackGround reports whether any weapon can engage ground targets.
func (t *TechnoType) CanAttackGround() bool {
	return (t.Primary != nil && t.Primary.AntiGnd) || (t.Secondary != nil && t.Secondary.AntiGnd)
}

// Range returns the longest weapon range in leptons.
func (t *TechnoType) Range() int {
	r := 0
	if t.Primary != nil {
		r = t.Primary.Range
	}
	if t.Secondary != nil && t.Secondary.Range > r {
		r = t.Secondary.Range
	}
	return r
}

// IsTransport reports whether the type carries passengers.
func (t *TechnoType) IsTransport() bool {
	return t.MaxPassengers > 0
}

// Registry indexes techno types and weapons by their INI names.
type Registry struct {
	Weapons map[string]*Weapon
	Types   map[string]*TechnoType
	order   []string
}

// NewRegistry returns the built-in type table.
func NewRegistry() *Registry {
	r := &Registry{
		Weapons: make(map[string]*Weapon),
		Types:   make(map[string]*TechnoType),
	}
	r.seed()
	return r
}

// Weapon looks a weapon up by name.
func (r *Registry) Weapon(name string) *Weapon {
	return r.Weapons[strings.ToUpper(name)]
}

// Type looks a techno type up by name.
func (r *Registry) Type(name string) *TechnoType {
	return r.Types[strings.ToUpper(name)]
}

// TypeOfKind looks a techno type up by name and kind.
func (r *Registry) TypeOfKind(name string, kind Kind) *TechnoType {
	t := r.Type(name)
	if t == nil || t.Kind != kind {
		return nil
	}
	return t
}

// Names returns every type name in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) addWeapon(w *Weapon) *Weapon {
	r.Weapons[strings.ToUpper(w.Name)] = w
	return w
}

func (r *Registry) add(t *TechnoType) {
	key := strings.ToUpper(t.Name)
	if _, ok := r.Types[key]; !ok {
		r.order = append(r.order, key)
	}
	r.Types[key] = t
}

func cells(n float64) int {
	return int(n * core.CellLeptons)
}

func (r *Registry) seed() {
	colt := r.addWeapon(&Weapon{Name: "Colt45", Damage: 50, Range: cells(5.75), Burst: 1, ROF: 20, AntiGnd: true})
	m1 := r.addWeapon(&Weapon{Name: "M1Carbine", Damage: 15, Range: cells(3), Burst: 1, ROF: 20, AntiGnd: true})
	grenade := r.addWeapon(&Weapon{Name: "Grenade", Damage: 50, Range: cells(4), Burst: 1, ROF: 60, AntiGnd: true})
	dragon := r.addWeapon(&Weapon{Name: "Dragon", Damage: 35, Range: cells(5), Burst: 1, ROF: 50, AntiAir: true, AntiGnd: true})
	flamer := r.addWeapon(&Weapon{Name: "Flamer", Damage: 70, Range: cells(3.5), Burst: 1, ROF: 50, AntiGnd: true})
	sniper := r.addWeapon(&Weapon{Name: "Sniper", Damage: 100, Range: cells(5.5), Burst: 1, ROF: 40, AntiGnd: true})
	dogJaw := r.addWeapon(&Weapon{Name: "DogJaw", Damage: 100, Range: cells(2.2), Burst: 1, ROF: 10, AntiGnd: true})
	mg := r.addWeapon(&Weapon{Name: "M60mg", Damage: 15, Range: cells(4), Burst: 1, ROF: 20, AntiGnd: true})
	c75 := r.addWeapon(&Weapon{Name: "75mm", Damage: 25, Range: cells(4), Burst: 1, ROF: 40, AntiGnd: true})
	c90 := r.addWeapon(&Weapon{Name: "90mm", Damage: 30, Range: cells(4.75), Burst: 1, ROF: 50, AntiGnd: true})
	c105 := r.addWeapon(&Weapon{Name: "105mm", Damage: 30, Range: cells(4.75), Burst: 2, ROF: 70, AntiGnd: true})
	c120 := r.addWeapon(&Weapon{Name: "120mm", Damage: 40, Range: cells(4.75), Burst: 2, ROF: 80, AntiGnd: true})
	mammoth := r.addWeapon(&Weapon{Name: "MammothTusk", Damage: 75, Range: cells(5), Burst: 2, ROF: 80, AntiAir: true, AntiGnd: true})
	c155 := r.addWeapon(&Weapon{Name: "155mm", Damage: 150, Range: cells(6), Burst: 1, ROF: 65, AntiGnd: true})
	scud := r.addWeapon(&Weapon{Name: "SCUD", Damage: 600, Range: cells(10), Burst: 1, ROF: 400, AntiGnd: true})
	turret := r.addWeapon(&Weapon{Name: "TurretGun", Damage: 40, Range: cells(6), Burst: 1, ROF: 50, AntiGnd: true})
	vulcan := r.addWeapon(&Weapon{Name: "Vulcan", Damage: 40, Range: cells(5), Burst: 1, ROF: 10, AntiGnd: true})
	tesla := r.addWeapon(&Weapon{Name: "TeslaZap", Damage: 100, Range: cells(8.5), Burst: 1, ROF: 120, AntiGnd: true})
	flak := r.addWeapon(&Weapon{Name: "ZSU-23", Damage: 25, Range: cells(10), Burst: 1, ROF: 10, AntiAir: true})
	torpedo := r.addWeapon(&Weapon{Name: "TorpTube", Damage: 90, Range: cells(9), Burst: 2, ROF: 60, AntiGnd: true})
	stinger := r.addWeapon(&Weapon{Name: "Stinger", Damage: 30, Range: cells(9), Burst: 2, ROF: 60, AntiAir: true, AntiGnd: true})
	hellfire := r.addWeapon(&Weapon{Name: "Hellfire", Damage: 40, Range: cells(4), Burst: 2, ROF: 60, AntiGnd: true})
	chain := r.addWeapon(&Weapon{Name: "ChainGun", Damage: 40, Range: cells(5), Burst: 1, ROF: 3, AntiAir: true, AntiGnd: true})
	maverick := r.addWeapon(&Weapon{Name: "Maverick", Damage: 50, Range: cells(6), Burst: 2, ROF: 3, AntiGnd: true})
	camera := r.addWeapon(&Weapon{Name: "Camera", Range: cells(1), IsCamera: true})

	// Infantry.
	r.add(&TechnoType{Name: "E1", Kind: KindInfantry, Strength: 50, MaxSpeed: 4, Speed: core.SpeedFoot, TechLevel: 1, Points: 5, Primary: m1})
	r.add(&TechnoType{Name: "E2", Kind: KindInfantry, Strength: 50, MaxSpeed: 5, Speed: core.SpeedFoot, TechLevel: 1, Points: 5, Primary: grenade, IsSoviet: true})
	r.add(&TechnoType{Name: "E3", Kind: KindInfantry, Strength: 45, MaxSpeed: 3, Speed: core.SpeedFoot, TechLevel: 2, Points: 10, Primary: dragon})
	r.add(&TechnoType{Name: "E4", Kind: KindInfantry, Strength: 40, MaxSpeed: 3, Speed: core.SpeedFoot, TechLevel: 6, Points: 10, Primary: flamer, IsSoviet: true})
	r.add(&TechnoType{Name: "E6", Kind: KindInfantry, Strength: 25, MaxSpeed: 4, Speed: core.SpeedFoot, TechLevel: 5, Points: 5, IsEngineer: true})
	r.add(&TechnoType{Name: "E7", Kind: KindInfantry, Strength: 100, MaxSpeed: 5, Speed: core.SpeedFoot, TechLevel: 11, Points: 25, Primary: colt})
	r.add(&TechnoType{Name: "SPY", Kind: KindInfantry, Strength: 25, MaxSpeed: 4, Speed: core.SpeedFoot, TechLevel: 6, Points: 15, IsSpy: true})
	r.add(&TechnoType{Name: "THF", Kind: KindInfantry, Strength: 25, MaxSpeed: 4, Speed: core.SpeedFoot, TechLevel: 11, Points: 15, IsThief: true})
	r.add(&TechnoType{Name: "DOG", Kind: KindInfantry, Strength: 12, MaxSpeed: 6, Speed: core.SpeedFoot, TechLevel: 3, Points: 5, Primary: dogJaw, IsDog: true, IsSoviet: true})
	r.add(&TechnoType{Name: "SHOK", Kind: KindInfantry, Strength: 80, MaxSpeed: 3, Speed: core.SpeedFoot, TechLevel: 8, Points: 15, Primary: tesla, IsSoviet: true})
	r.add(&TechnoType{Name: "SNIPER", Kind: KindInfantry, Strength: 80, MaxSpeed: 4, Speed: core.SpeedFoot, TechLevel: -1, Points: 15, Primary: sniper})
	r.add(&TechnoType{Name: "C1", Kind: KindInfantry, Strength: 25, MaxSpeed: 4, Speed: core.SpeedFoot, TechLevel: -1, Points: 1, Primary: colt})

	// Vehicles.
	r.add(&TechnoType{Name: "1TNK", Kind: KindUnit, Strength: 300, MaxSpeed: 9, Speed: core.SpeedTrack, TechLevel: 4, Points: 20, Primary: c75})
	r.add(&TechnoType{Name: "2TNK", Kind: KindUnit, Strength: 400, MaxSpeed: 8, Speed: core.SpeedTrack, TechLevel: 4, Points: 25, Primary: c90})
	r.add(&TechnoType{Name: "3TNK", Kind: KindUnit, Strength: 400, MaxSpeed: 7, Speed: core.SpeedTrack, TechLevel: 4, Points: 30, Primary: c105, IsSoviet: true})
	r.add(&TechnoType{Name: "4TNK", Kind: KindUnit, Strength: 600, MaxSpeed: 4, Speed: core.SpeedTrack, TechLevel: 10, Points: 50, Primary: c120, Secondary: mammoth, IsSoviet: true})
	r.add(&TechnoType{Name: "APC", Kind: KindUnit, Strength: 200, MaxSpeed: 10, Speed: core.SpeedTrack, TechLevel: 5, Points: 15, Primary: mg, MaxPassengers: 5})
	r.add(&TechnoType{Name: "V2RL", Kind: KindUnit, Strength: 150, MaxSpeed: 7, Speed: core.SpeedWheel, TechLevel: 4, Points: 40, Primary: scud, IsSoviet: true})
	r.add(&TechnoType{Name: "ARTY", Kind: KindUnit, Strength: 75, MaxSpeed: 6, Speed: core.SpeedTrack, TechLevel: 8, Points: 35, Primary: c155})
	r.add(&TechnoType{Name: "JEEP", Kind: KindUnit, Strength: 150, MaxSpeed: 13, Speed: core.SpeedWheel, TechLevel: 3, Points: 10, Primary: mg})
	r.add(&TechnoType{Name: "MCV", Kind: KindUnit, Strength: 600, MaxSpeed: 6, Speed: core.SpeedTrack, TechLevel: 11, Points: 60, IsDeployable: true})
	r.add(&TechnoType{Name: "HARV", Kind: KindUnit, Strength: 600, MaxSpeed: 6, Speed: core.SpeedTrack, TechLevel: 1, Points: 30, IsHarvester: true})
	r.add(&TechnoType{Name: "MNLY", Kind: KindUnit, Strength: 100, MaxSpeed: 9, Speed: core.SpeedTrack, TechLevel: 3, Points: 10, IsMineLayer: true})
	r.add(&TechnoType{Name: "TRUK", Kind: KindUnit, Strength: 110, MaxSpeed: 10, Speed: core.SpeedWheel, TechLevel: 10, Points: 5})
	r.add(&TechnoType{Name: "MGG", Kind: KindUnit, Strength: 110, MaxSpeed: 9, Speed: core.SpeedWheel, TechLevel: 11, Points: 20})

	// Vessels.
	r.add(&TechnoType{Name: "SS", Kind: KindVessel, Strength: 120, MaxSpeed: 6, Speed: core.SpeedFloat, TechLevel: 5, Points: 25, Primary: torpedo, IsSoviet: true})
	r.add(&TechnoType{Name: "DD", Kind: KindVessel, Strength: 400, MaxSpeed: 6, Speed: core.SpeedFloat, TechLevel: 7, Points: 35, Primary: stinger})
	r.add(&TechnoType{Name: "CA", Kind: KindVessel, Strength: 700, MaxSpeed: 4, Speed: core.SpeedFloat, TechLevel: 10, Points: 50, Primary: c155})
	r.add(&TechnoType{Name: "PT", Kind: KindVessel, Strength: 200, MaxSpeed: 9, Speed: core.SpeedFloat, TechLevel: 5, Points: 20, Primary: c75})
	r.add(&TechnoType{Name: "LST", Kind: KindVessel, Strength: 350, MaxSpeed: 14, Speed: core.SpeedFloat, TechLevel: 3, Points: 20, MaxPassengers: 5})

	// Aircraft.
	r.add(&TechnoType{Name: "TRAN", Kind: KindAircraft, Strength: 90, MaxSpeed: 12, Speed: core.SpeedWinged, TechLevel: 11, Points: 20, MaxPassengers: 5})
	r.add(&TechnoType{Name: "HELI", Kind: KindAircraft, Strength: 225, MaxSpeed: 16, Speed: core.SpeedWinged, TechLevel: 9, Points: 40, Primary: hellfire})
	r.add(&TechnoType{Name: "HIND", Kind: KindAircraft, Strength: 225, MaxSpeed: 12, Speed: core.SpeedWinged, TechLevel: 9, Points: 40, Primary: chain, IsSoviet: true})
	r.add(&TechnoType{Name: "MIG", Kind: KindAircraft, Strength: 50, MaxSpeed: 20, Speed: core.SpeedWinged, TechLevel: 10, Points: 50, Primary: maverick, IsSoviet: true})
	r.add(&TechnoType{Name: "YAK", Kind: KindAircraft, Strength: 60, MaxSpeed: 16, Speed: core.SpeedWinged, TechLevel: 5, Points: 30, Primary: chain, IsSoviet: true})
	r.add(&TechnoType{Name: "U2", Kind: KindAircraft, Strength: 2000, MaxSpeed: 40, Speed: core.SpeedWinged, TechLevel: -1, Points: 0, Primary: camera})

	// Buildings.
	r.add(&TechnoType{Name: "FACT", Kind: KindBuilding, Strength: 1000, TechLevel: -1, Points: 80, IsCaptureable: true, IsFactory: true, Width: 3, Height: 3})
	r.add(&TechnoType{Name: "POWR", Kind: KindBuilding, Strength: 400, TechLevel: 1, Points: 10, IsCaptureable: true, IsPower: true, Width: 2, Height: 2})
	r.add(&TechnoType{Name: "APWR", Kind: KindBuilding, Strength: 700, TechLevel: 8, Points: 25, IsCaptureable: true, IsPower: true, Width: 3, Height: 3})
	r.add(&TechnoType{Name: "PROC", Kind: KindBuilding, Strength: 900, TechLevel: 1, Points: 30, IsCaptureable: true, Capacity: 2000, Width: 3, Height: 3})
	r.add(&TechnoType{Name: "SILO", Kind: KindBuilding, Strength: 300, TechLevel: 1, Points: 5, IsCaptureable: true, Capacity: 1500, Width: 1, Height: 1})
	r.add(&TechnoType{Name: "WEAP", Kind: KindBuilding, Strength: 1000, TechLevel: 3, Points: 35, IsCaptureable: true, IsFactory: true, Width: 3, Height: 2})
	r.add(&TechnoType{Name: "TENT", Kind: KindBuilding, Strength: 800, TechLevel: 1, Points: 10, IsCaptureable: true, IsFactory: true, Width: 2, Height: 2})
	r.add(&TechnoType{Name: "BARR", Kind: KindBuilding, Strength: 800, TechLevel: 1, Points: 10, IsCaptureable: true, IsFactory: true, Width: 2, Height: 2, IsSoviet: true})
	r.add(&TechnoType{Name: "DOME", Kind: KindBuilding, Strength: 1000, TechLevel: 3, Points: 30, IsCaptureable: true, Width: 2, Height: 2})
	r.add(&TechnoType{Name: "FIX", Kind: KindBuilding, Strength: 800, TechLevel: 3, Points: 20, IsCaptureable: true, IsRepairPad: true, Width: 3, Height: 3})
	r.add(&TechnoType{Name: "HPAD", Kind: KindBuilding, Strength: 800, TechLevel: 9, Points: 25, IsCaptureable: true, IsFactory: true, Width: 2, Height: 2})
	r.add(&TechnoType{Name: "AFLD", Kind: KindBuilding, Strength: 1000, TechLevel: 5, Points: 30, IsCaptureable: true, IsFactory: true, Width: 3, Height: 2, IsSoviet: true})
	r.add(&TechnoType{Name: "SYRD", Kind: KindBuilding, Strength: 1000, TechLevel: 3, Points: 30, IsCaptureable: true, IsFactory: true, Width: 3, Height: 3})
	r.add(&TechnoType{Name: "SPEN", Kind: KindBuilding, Strength: 1000, TechLevel: 3, Points: 30, IsCaptureable: true, IsFactory: true, Width: 3, Height: 3, IsSoviet: true})
	r.add(&TechnoType{Name: "PBOX", Kind: KindBuilding, Strength: 400, TechLevel: 2, Points: 15, IsCaptureable: true, IsDefense: true, Primary: vulcan, Width: 1, Height: 1})
	r.add(&TechnoType{Name: "HBOX", Kind: KindBuilding, Strength: 600, TechLevel: 3, Points: 20, IsDefense: true, Primary: vulcan, Width: 1, Height: 1})
	r.add(&TechnoType{Name: "GUN", Kind: KindBuilding, Strength: 400, TechLevel: 5, Points: 25, IsDefense: true, Primary: turret, Width: 1, Height: 1})
	r.add(&TechnoType{Name: "TSLA", Kind: KindBuilding, Strength: 400, TechLevel: 7, Points: 35, IsDefense: true, Primary: tesla, Width: 1, Height: 2, IsSoviet: true})
	r.add(&TechnoType{Name: "SAM", Kind: KindBuilding, Strength: 400, TechLevel: 9, Points: 25, IsDefense: true, Primary: flak, Width: 2, Height: 1, IsSoviet: true})
	r.add(&TechnoType{Name: "FTUR", Kind: KindBuilding, Strength: 400, TechLevel: 2, Points: 20, IsDefense: true, Primary: flamer, Width: 1, Height: 1, IsSoviet: true})
	r.add(&TechnoType{Name: "FACF", Kind: KindBuilding, Strength: 30, TechLevel: 1, Points: 5, IsFake: true, Width: 3, Height: 3})
	r.add(&TechnoType{Name: "WEAF", Kind: KindBuilding, Strength: 30, TechLevel: 3, Points: 5, IsFake: true, Width: 3, Height: 2})
	r.add(&TechnoType{Name: "MISS", Kind: KindBuilding, Strength: 400, TechLevel: -1, Points: 10, IsCaptureable: true, Width: 3, Height: 2})
	r.add(&TechnoType{Name: "V01", Kind: KindBuilding, Strength: 200, TechLevel: -1, Points: 1, Width: 2, Height: 2})
}
