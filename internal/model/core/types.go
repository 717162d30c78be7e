// internal/model/core/types.go
package core

import "strings"

// HouseType identifies a house (faction or player slot) control block.
type HouseType int

const (
	HouseNone HouseType = -1

	HouseSpain HouseType = iota - 1
	HouseGreece
	HouseUSSR
	HouseEngland
	HouseUkraine
	HouseGermany
	HouseFrance
	HouseTurkey
	HouseGood
	HouseBad
	HouseNeutral
	HouseSpecial
	HouseMulti1
	HouseMulti2
	HouseMulti3
	HouseMulti4
	HouseMulti5
	HouseMulti6
	HouseMulti7
	HouseMulti8

	HouseCount
)

// MultiCount is the number of multiplayer house slots.
const MultiCount = int(HouseMulti8-HouseMulti1) + 1

var houseNames = [HouseCount]string{
	"Spain", "Greece", "USSR", "England", "Ukraine", "Germany", "France", "Turkey",
	"GoodGuy", "BadGuy", "Neutral", "Special",
	"Multi1", "Multi2", "Multi3", "Multi4", "Multi5", "Multi6", "Multi7", "Multi8",
}

func (h HouseType) String() string {
	if h < 0 || h >= HouseCount {
		return "None"
	}
	return houseNames[h]
}

// IsValid reports whether h indexes a real house.
func (h HouseType) IsValid() bool {
	return h >= 0 && h < HouseCount
}

// IsMulti reports whether h is one of the multiplayer slots.
func (h HouseType) IsMulti() bool {
	return h >= HouseMulti1 && h <= HouseMulti8
}

// HouseFromName resolves an INI house name. Unknown names return HouseNone.
func HouseFromName(name string) HouseType {
	for i, n := range houseNames {
		if strings.EqualFold(n, name) {
			return HouseType(i)
		}
	}
	return HouseNone
}

// TheaterType selects the terrain art set of a map.
type TheaterType int

const (
	TheaterNone TheaterType = iota - 1
	TheaterTemperate
	TheaterSnow
	TheaterInterior
)

var theaterNames = []string{"TEMPERATE", "SNOW", "INTERIOR"}

func (t TheaterType) String() string {
	if t < 0 || int(t) >= len(theaterNames) {
		return "NONE"
	}
	return theaterNames[t]
}

// TheaterFromName resolves a theater by name, case-insensitively.
func TheaterFromName(name string) TheaterType {
	for i, n := range theaterNames {
		if strings.EqualFold(n, name) {
			return TheaterType(i)
		}
	}
	return TheaterNone
}

// DiffType is a difficulty setting.
type DiffType int

const (
	DiffEasy DiffType = iota
	DiffNormal
	DiffHard

	DiffCount
)

func (d DiffType) String() string {
	switch d {
	case DiffEasy:
		return "easy"
	case DiffNormal:
		return "normal"
	case DiffHard:
		return "hard"
	}
	return "unknown"
}

// DiffFromName parses "easy", "normal" or "hard". Anything else is normal.
func DiffFromName(name string) DiffType {
	switch strings.ToLower(name) {
	case "easy":
		return DiffEasy
	case "hard", "difficult":
		return DiffHard
	}
	return DiffNormal
}

// GameType is the session mode.
type GameType int

const (
	GameNormal GameType = iota
	GameModem
	GameNullModem
	GameIPX
	GameInternet
	GameSkirmish
	GameTeamInternet
)

func (g GameType) String() string {
	switch g {
	case GameNormal:
		return "normal"
	case GameModem:
		return "modem"
	case GameNullModem:
		return "nullmodem"
	case GameIPX:
		return "network"
	case GameInternet:
		return "internet"
	case GameSkirmish:
		return "skirmish"
	case GameTeamInternet:
		return "teaminternet"
	}
	return "unknown"
}

// GameFromName parses a session type name from configuration.
func GameFromName(name string) GameType {
	switch strings.ToLower(name) {
	case "skirmish":
		return GameSkirmish
	case "network", "ipx":
		return GameIPX
	case "internet":
		return GameInternet
	case "modem":
		return GameModem
	case "nullmodem":
		return GameNullModem
	case "teaminternet":
		return GameTeamInternet
	}
	return GameNormal
}

// MissionType is the order a foot object is currently carrying out.
type MissionType int

const (
	MissionNone MissionType = iota - 1
	MissionSleep
	MissionAttack
	MissionMove
	MissionQMove
	MissionRetreat
	MissionGuard
	MissionSticky
	MissionEnter
	MissionCapture
	MissionHarvest
	MissionGuardArea
	MissionReturn
	MissionStop
	MissionAmbush
	MissionHunt
	MissionUnload
	MissionSabotage
	MissionConstruction
	MissionDeconstruction
	MissionRepair
	MissionRescue
	MissionMissile

	MissionCount
)

var missionNames = [MissionCount]string{
	"Sleep", "Attack", "Move", "QMove", "Retreat", "Guard", "Sticky", "Enter", "Capture",
	"Harvest", "Area Guard", "Return", "Stop", "Ambush", "Hunt", "Unload", "Sabotage",
	"Construction", "Selling", "Repair", "Rescue", "Missile",
}

func (m MissionType) String() string {
	if m < 0 || m >= MissionCount {
		return "None"
	}
	return missionNames[m]
}

// MissionFromName resolves the INI spelling of a mission.
func MissionFromName(name string) MissionType {
	for i, n := range missionNames {
		if strings.EqualFold(n, name) {
			return MissionType(i)
		}
	}
	return MissionNone
}

// IsRecruitable reports whether a foot object doing m may be pulled into a team.
func (m MissionType) IsRecruitable() bool {
	switch m {
	case MissionNone, MissionSleep, MissionGuard, MissionGuardArea, MissionHunt, MissionStop,
		MissionAmbush, MissionSticky, MissionAttack, MissionMove, MissionQMove:
		return true
	}
	return false
}

// TeamMissionType is a team program opcode. The order is the authored and saved wire format.
type TeamMissionType int

const (
	TMissionNone TeamMissionType = iota - 1
	TMissionAttack
	TMissionAttWaypt
	TMissionFormation
	TMissionMove
	TMissionMoveCell
	TMissionGuard
	TMissionLoop
	TMissionAttackTarcom
	TMissionUnload
	TMissionDeploy
	TMissionHoundDog
	TMissionDo
	TMissionSetGlobal
	TMissionInvulnerable
	TMissionLoad
	TMissionSpy
	TMissionPatrol

	TMissionCount
)

var teamMissionNames = [TMissionCount]string{
	"Attack...", "Attack Waypoint...", "Change Formation to...", "Move to waypoint...",
	"Move to Cell...", "Guard area (1/10th min)...", "Jump to line #...", "Attack TarCom",
	"Unload", "Deploy", "Follow friendlies", "Do this...", "Set global...", "Invulnerable",
	"Load onto Transport", "Spy on bldg @ waypt...", "Patrol to waypoint...",
}

func (t TeamMissionType) String() string {
	if t < 0 || t >= TMissionCount {
		return "<none>"
	}
	return teamMissionNames[t]
}

// QuarryType selects the kind of target an attack opcode searches for.
type QuarryType int

const (
	QuarryNone QuarryType = iota
	QuarryAnything
	QuarryBuildings
	QuarryHarvesters
	QuarryInfantry
	QuarryVehicles
	QuarryVessels
	QuarryFactories
	QuarryDefense
	QuarryThreat
	QuarryPower
	QuarryFakes

	QuarryCount
)

// FormationType is the shape requested by the formation opcode.
type FormationType int

const (
	FormationNone FormationType = iota
	FormationTight
	FormationLoose
	FormationWedgeN
	FormationWedgeE
	FormationWedgeS
	FormationWedgeW
	FormationLineNS
	FormationLineEW

	FormationCount
)

// ThreatType is a bit set of threat search filters.
type ThreatType int

const (
	ThreatNormal      ThreatType = 0
	ThreatRange       ThreatType = 0x0001
	ThreatArea        ThreatType = 0x0002
	ThreatAir         ThreatType = 0x0004
	ThreatInfantry    ThreatType = 0x0008
	ThreatVehicles    ThreatType = 0x0010
	ThreatBuildings   ThreatType = 0x0020
	ThreatTiberium    ThreatType = 0x0040
	ThreatBoats       ThreatType = 0x0080
	ThreatCivilians   ThreatType = 0x0100
	ThreatCapture     ThreatType = 0x0200
	ThreatFakes       ThreatType = 0x0400
	ThreatPower       ThreatType = 0x0800
	ThreatFactories   ThreatType = 0x1000
	ThreatBaseDefense ThreatType = 0x2000

	ThreatGround = ThreatVehicles | ThreatBuildings | ThreatInfantry
)

// Threat maps a quarry to the threat filter used for target scanning.
func (q QuarryType) Threat() ThreatType {
	switch q {
	case QuarryAnything, QuarryThreat:
		return ThreatNormal
	case QuarryBuildings:
		return ThreatBuildings
	case QuarryHarvesters:
		return ThreatTiberium
	case QuarryInfantry:
		return ThreatInfantry
	case QuarryVehicles:
		return ThreatVehicles
	case QuarryVessels:
		return ThreatBoats
	case QuarryFactories:
		return ThreatFactories
	case QuarryDefense:
		return ThreatBaseDefense
	case QuarryPower:
		return ThreatPower
	case QuarryFakes:
		return ThreatFakes
	}
	return ThreatNormal
}

// Waypoint indices with a fixed meaning.
const (
	WaypointHome    = 98
	WaypointReinf   = 99
	WaypointSpecial = 100
	WaypointCount   = 101
)

// SpeedType is the locomotion class of a mobile object.
type SpeedType int

const (
	SpeedFoot SpeedType = iota
	SpeedTrack
	SpeedWheel
	SpeedWinged
	SpeedFloat
)

// LandType is the passability class of a cell.
type LandType int

const (
	LandClear LandType = iota
	LandRoad
	LandWater
	LandRock
	LandWall
	LandTiberium
	LandBeach
	LandRough
	LandRiver

	LandCount
)

// Passable reports whether objects using speed may occupy land.
func (l LandType) Passable(speed SpeedType) bool {
	switch speed {
	case SpeedWinged:
		return true
	case SpeedFloat:
		return l == LandWater
	}
	switch l {
	case LandWater, LandRock, LandWall, LandRiver:
		return false
	}
	return true
}
