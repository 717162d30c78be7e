package world

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/rules"
)

// TEvent is one event clause of a trigger type.
type TEvent struct {
	Event core.TEventType
	Team  int // team type ID, -1 for none
	Value int
}

// IsGlobal reports whether the event waits on the given global flag.
func (e TEvent) IsGlobal(global int) bool {
	return (e.Event == core.TEventGlobalSet || e.Event == core.TEventGlobalClear) && e.Value == global
}

// Reset clears the tripped state and restarts an elapsed-time countdown.
func (e TEvent) Reset(state *EventState) {
	state.IsTripped = false
	if e.Event == core.TEventTime {
		state.Timer = e.Value * (rules.TicksPerMinute / 10)
	}
}

// TAction is one action clause of a trigger type.
type TAction struct {
	Action  core.TActionType
	Team    int // team type ID, -1 for none
	Trigger int // trigger type ID, -1 for none
	Value   int
}

// TriggerType is the authored definition of a trigger.
type TriggerType struct {
	ID            int
	Name          string
	House         core.HouseType
	IsPersistant  core.PersistantType
	EventControl  core.MultiStyleType
	ActionControl core.MultiStyleType
	Event1        TEvent
	Event2        TEvent
	Action1       TAction
	Action2       TAction
}

// AttachesTo returns the scopes this trigger must be registered in. The second event counts
// only when the trigger combines two events.
func (tt *TriggerType) AttachesTo() core.AttachType {
	attach := core.EventAttachesTo(tt.Event1.Event)
	if tt.EventControl != core.MultiOnly {
		attach |= core.EventAttachesTo(tt.Event2.Event)
	}
	return attach
}

// AsTarget returns the handle of tt.
func (tt *TriggerType) AsTarget() core.Target {
	return core.Target{Kind: core.RTTITriggerType, ID: tt.ID}
}

// IsAllowWin reports whether springing the trigger gates the player's victory.
func (tt *TriggerType) IsAllowWin() bool {
	return tt.Action1.Action == core.TActionAllowWin ||
		(tt.ActionControl != core.MultiOnly && tt.Action2.Action == core.TActionAllowWin)
}

// FillIn parses a [Trigs] entry:
// persist,house,eventControl,actionControl,ev1,team,data,ev2,team,data,act1,team,trigger,data,act2,team,trigger,data
func (tt *TriggerType) FillIn(name, entry string) error {
	fields := strings.Split(entry, ",")
	if len(fields) < 18 {
		return fmt.Errorf("trigger %s: %d fields, want 18", name, len(fields))
	}
	v := make([]int, 18)
	for i := range v {
		n, err := strconv.Atoi(strings.TrimSpace(fields[i]))
		if err != nil {
			return fmt.Errorf("trigger %s field %d: %w", name, i, err)
		}
		v[i] = n
	}

	tt.Name = name
	tt.IsPersistant = core.PersistantType(v[0])
	tt.House = core.HouseType(v[1])
	tt.EventControl = core.MultiStyleType(v[2])
	tt.ActionControl = core.MultiStyleType(v[3])
	tt.Event1 = TEvent{Event: core.TEventType(v[4]), Team: v[5], Value: v[6]}
	tt.Event2 = TEvent{Event: core.TEventType(v[7]), Team: v[8], Value: v[9]}
	tt.Action1 = TAction{Action: core.TActionType(v[10]), Team: v[11], Trigger: v[12], Value: v[13]}
	tt.Action2 = TAction{Action: core.TActionType(v[14]), Team: v[15], Trigger: v[16], Value: v[17]}
	return nil
}

// BuildINIEntry is the inverse of FillIn.
func (tt *TriggerType) BuildINIEntry() string {
	return fmt.Sprintf("%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d,%d",
		tt.IsPersistant, tt.House, tt.EventControl, tt.ActionControl,
		tt.Event1.Event, tt.Event1.Team, tt.Event1.Value,
		tt.Event2.Event, tt.Event2.Team, tt.Event2.Value,
		tt.Action1.Action, tt.Action1.Team, tt.Action1.Trigger, tt.Action1.Value,
		tt.Action2.Action, tt.Action2.Team, tt.Action2.Trigger, tt.Action2.Value)
}

// EventState is the runtime state of one event clause.
type EventState struct {
	IsTripped bool
	Timer     int
}

// Trigger is a live instance of a trigger type.
type Trigger struct {
	ID          int
	Class       *TriggerType
	House       core.HouseType
	AttachCount int
	Event1      EventState
	Event2      EventState
}

// NewTriggerType allocates an empty trigger type.
func (w *WorldState) NewTriggerType(name string) (*TriggerType, error) {
	tt, id, err := w.TriggerTypes.Allocate()
	if err != nil {
		return nil, err
	}
	*tt = TriggerType{
		ID:            id,
		Name:          name,
		House:         core.HouseNone,
		Event1:        TEvent{Team: -1},
		Event2:        TEvent{Team: -1},
		Action1:       TAction{Team: -1, Trigger: -1},
		Action2:       TAction{Team: -1, Trigger: -1},
		EventControl:  core.MultiOnly,
		ActionControl: core.MultiOnly,
	}
	return tt, nil
}

// TriggerTypeByName finds a trigger type by name, case-insensitively.
func (w *WorldState) TriggerTypeByName(name string) *TriggerType {
	for _, tt := range w.TriggerTypes.Items() {
		if strings.EqualFold(tt.Name, name) {
			return tt
		}
	}
	return nil
}

// CreateTrigger makes a new live instance of tt.
func (w *WorldState) CreateTrigger(tt *TriggerType) (*Trigger, error) {
	t, id, err := w.Triggers.Allocate()
	if err != nil {
		return nil, err
	}
	*t = Trigger{ID: id, Class: tt, House: tt.House}
	tt.Event1.Reset(&t.Event1)
	tt.Event2.Reset(&t.Event2)
	return t, nil
}

// FindOrMakeTrigger returns the existing instance of tt or creates one.
func (w *WorldState) FindOrMakeTrigger(tt *TriggerType) (*Trigger, error) {
	for _, t := range w.Triggers.Items() {
		if t.Class == tt {
			return t, nil
		}
	}
	return w.CreateTrigger(tt)
}

// DeleteTrigger removes an instance from every scope list and its pool.
func (w *WorldState) DeleteTrigger(t *Trigger) {
	w.MapTriggers = removeTrigger(w.MapTriggers, t)
	w.LogicTriggers = removeTrigger(w.LogicTriggers, t)
	for h := range w.HouseTriggers {
		w.HouseTriggers[h] = removeTrigger(w.HouseTriggers[h], t)
	}
	for i := range w.Map.Cells {
		if w.Map.Cells[i].Trigger == t {
			w.Map.Cells[i].Trigger = nil
		}
	}
	w.Triggers.Free(t.ID)
}

func removeTrigger(list []*Trigger, t *Trigger) []*Trigger {
	for i, x := range list {
		if x == t {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// AddUniqueTrigger appends t to list unless it is already there.
func AddUniqueTrigger(list []*Trigger, t *Trigger) []*Trigger {
	for _, x := range list {
		if x == t {
			return list
		}
	}
	return append(list, t)
}
