package core

// TEventType is a trigger event. The order is the authored wire format.
type TEventType int

const (
	TEventNone TEventType = iota
	TEventPlayerEntered
	TEventSpied
	TEventThieved
	TEventDiscovered
	TEventHouseDiscovered
	TEventAttacked
	TEventDestroyed
	TEventAny
	TEventUnitsDestroyed
	TEventBuildingsDestroyed
	TEventAllDestroyed
	TEventCredits
	TEventTime
	TEventMissionTimerExpired
	TEventNBuildingsDestroyed
	TEventNUnitsDestroyed
	TEventNoFactories
	TEventEvacCivilian
	TEventBuild
	TEventBuildUnit
	TEventBuildInfantry
	TEventBuildAircraft
	TEventLeavesMap
	TEventEntersZone
	TEventCrossHorizontal
	TEventCrossVertical
	TEventGlobalSet
	TEventGlobalClear
	TEventFakesDestroyed
	TEventLowPower
	TEventAllBridgesDestroyed
	TEventBuildingExists

	TEventCount
)

// TActionType is a trigger action. The order is the authored wire format.
type TActionType int

const (
	TActionNone TActionType = iota
	TActionWin
	TActionLose
	TActionBeginProduction
	TActionCreateTeam
	TActionDestroyTeam
	TActionAllHunt
	TActionReinforcements
	TActionDZ
	TActionFireSale
	TActionPlayMovie
	TActionTextTrigger
	TActionDestroyTrigger
	TActionAutocreate
	TActionWinLose
	TActionAllowWin
	TActionRevealAll
	TActionRevealSome
	TActionRevealZone
	TActionPlaySound
	TActionPlayMusic
	TActionPlaySpeech
	TActionForceTrigger
	TActionStartTimer
	TActionStopTimer
	TActionAddTimer
	TActionSubTimer
	TActionSetTimer
	TActionSetGlobal
	TActionClearGlobal
	TActionBaseBuilding
	TActionCreepShadow
	TActionDestroyObject
	TAction1Special
	TActionFullSpecial
	TActionPreferredTarget
	TActionLaunchNukes

	TActionCount
)

// MultiStyleType combines the two events or two actions of a trigger.
type MultiStyleType int

const (
	MultiOnly MultiStyleType = iota
	MultiAnd
	MultiOr
	MultiLinked
)

// PersistantType controls when a trigger is removed after springing.
type PersistantType int

const (
	PersistVolatile PersistantType = iota
	PersistSemi
	PersistPersistant
)

// AttachType is the set of things a trigger may be attached to.
type AttachType int

const (
	AttachNone    AttachType = 0
	AttachCell    AttachType = 0x01
	AttachObject  AttachType = 0x02
	AttachMap     AttachType = 0x04
	AttachHouse   AttachType = 0x08
	AttachGeneral AttachType = 0x10
	AttachTeam    AttachType = 0x20
)

// EventAttachesTo returns the attach scopes an event can be evaluated from.
func EventAttachesTo(event TEventType) AttachType {
	attach := AttachNone

	switch event {
	case TEventCrossHorizontal, TEventCrossVertical, TEventEntersZone, TEventPlayerEntered,
		TEventAny, TEventDiscovered, TEventNone:
		attach |= AttachCell
	}

	switch event {
	case TEventSpied, TEventPlayerEntered, TEventDiscovered, TEventDestroyed, TEventAttacked,
		TEventAny, TEventNone:
		attach |= AttachObject
	}

	switch event {
	case TEventEntersZone, TEventAny:
		attach |= AttachMap
	}

	switch event {
	case TEventLowPower, TEventEvacCivilian, TEventBuildingExists, TEventBuild, TEventBuildUnit,
		TEventBuildInfantry, TEventBuildAircraft, TEventNoFactories, TEventBuildingsDestroyed,
		TEventNBuildingsDestroyed, TEventUnitsDestroyed, TEventNUnitsDestroyed, TEventAllDestroyed,
		TEventHouseDiscovered, TEventCredits, TEventThieved, TEventAny, TEventFakesDestroyed:
		attach |= AttachHouse
	}

	switch event {
	case TEventTime, TEventGlobalSet, TEventGlobalClear, TEventMissionTimerExpired, TEventAny,
		TEventAllBridgesDestroyed, TEventLeavesMap:
		attach |= AttachGeneral
	}

	return attach
}
