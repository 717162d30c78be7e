package world

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/rules"
)

// Team type limits.
const (
	MaxTeamClassCount = 5
	MaxTeamMissions   = 20
)

// Team type flag bits as stored in the INI.
const (
	TeamFlagRoundAbout   = 0x0001
	TeamFlagSuicide      = 0x0002
	TeamFlagAutocreate   = 0x0004
	TeamFlagPrebuilt     = 0x0008
	TeamFlagReinforcable = 0x0010
)

// TeamMember is one (type, quantity) slot of a team type.
type TeamMember struct {
	Class    *rules.TechnoType
	Quantity int
}

// TeamMission is one instruction of a team program.
type TeamMission struct {
	Mission core.TeamMissionType
	Arg     int
}

// TeamType is the authored template a team is built from.
type TeamType struct {
	ID    int
	Name  string
	House core.HouseType

	IsRoundAbout   bool
	IsSuicide      bool
	IsAutocreate   bool
	IsPrebuilt     bool
	IsReinforcable bool

	RecruitPriority int
	InitNum         int
	MaxAllowed      int
	Origin          int
	Trigger         int // trigger type ID, -1 for none

	Members  []TeamMember
	Missions []TeamMission

	// Number counts the live teams of this type.
	Number int
}

// NewTeamType allocates a team type with the authoring defaults.
func (w *WorldState) NewTeamType(name string) (*TeamType, error) {
	tt, id, err := w.TeamTypes.Allocate()
	if err != nil {
		return nil, err
	}
	*tt = TeamType{
		ID:              id,
		Name:            name,
		House:           core.HouseNone,
		IsPrebuilt:      true,
		IsReinforcable:  true,
		RecruitPriority: 7,
		Origin:          -1,
		Trigger:         -1,
	}
	return tt, nil
}

// TeamTypeByName finds a team type by name, case-insensitively.
func (w *WorldState) TeamTypeByName(name string) *TeamType {
	for _, tt := range w.TeamTypes.Items() {
		if strings.EqualFold(tt.Name, name) {
			return tt
		}
	}
	return nil
}

// AsTarget returns the handle of tt.
func (tt *TeamType) AsTarget() core.Target {
	return core.Target{Kind: core.RTTITeamType, ID: tt.ID}
}

// Flags packs the boolean options into the INI bit code.
func (tt *TeamType) Flags() int {
	code := 0
	if tt.IsRoundAbout {
		code |= TeamFlagRoundAbout
	}
	if tt.IsSuicide {
		code |= TeamFlagSuicide
	}
	if tt.IsAutocreate {
		code |= TeamFlagAutocreate
	}
	if tt.IsPrebuilt {
		code |= TeamFlagPrebuilt
	}
	if tt.IsReinforcable {
		code |= TeamFlagReinforcable
	}
	return code
}

// DesiredTotal sums the member quantities.
func (tt *TeamType) DesiredTotal() int {
	n := 0
	for _, m := range tt.Members {
		n += m.Quantity
	}
	return n
}

// IsTransport reports whether any member type carries passengers.
func (tt *TeamType) IsTransport() bool {
	for _, m := range tt.Members {
		if m.Class.IsTransport() {
			return true
		}
	}
	return false
}

type tokenizer struct {
	fields []string
	pos    int
	err    error
}

func (t *tokenizer) next() string {
	if t.pos >= len(t.fields) {
		if t.err == nil {
			t.err = fmt.Errorf("entry truncated after %d fields", t.pos)
		}
		return ""
	}
	s := strings.TrimSpace(t.fields[t.pos])
	t.pos++
	return s
}

func (t *tokenizer) number() int {
	s := t.next()
	if t.err != nil {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		t.err = err
	}
	return n
}

// FillIn parses a [TeamTypes] entry:
// house,flags,priority,initNum,maxAllowed,origin,trigger,N,Type:qty...,M,op:arg...
// Format versions before 2 carry five separate flag fields and the trigger at the end.
// Unknown member type names are dropped; at most five member slots are kept.
func (tt *TeamType) FillIn(name, entry string, reg *rules.Registry, format int) error {
	tok := &tokenizer{fields: strings.FieldsFunc(entry, func(r rune) bool { return r == ',' || r == ':' })}

	tt.Name = name
	tt.House = core.HouseType(tok.number())

	if format >= 2 {
		code := tok.number()
		tt.IsRoundAbout = code&TeamFlagRoundAbout != 0
		tt.IsSuicide = code&TeamFlagSuicide != 0
		tt.IsAutocreate = code&TeamFlagAutocreate != 0
		tt.IsPrebuilt = code&TeamFlagPrebuilt != 0
		tt.IsReinforcable = code&TeamFlagReinforcable != 0
	} else {
		tt.IsRoundAbout = tok.number() != 0
		tt.IsSuicide = tok.number() != 0
		tt.IsAutocreate = tok.number() != 0
		tt.IsPrebuilt = tok.number() != 0
		tt.IsReinforcable = tok.number() != 0
	}

	tt.RecruitPriority = tok.number()
	tt.InitNum = tok.number()
	tt.MaxAllowed = tok.number()
	tt.Origin = tok.number()
	if format >= 2 {
		tt.Trigger = tok.number()
	} else {
		tok.next()
	}

	tt.Members = tt.Members[:0]
	classes := tok.number()
	for i := 0; i < classes; i++ {
		typeName := tok.next()
		qty := tok.number()
		t := memberType(reg, typeName)
		if t == nil || len(tt.Members) >= MaxTeamClassCount {
			continue
		}
		tt.Members = append(tt.Members, TeamMember{Class: t, Quantity: qty})
	}

	tt.Missions = tt.Missions[:0]
	missions := tok.number()
	for i := 0; i < missions; i++ {
		op := core.TeamMissionType(tok.number())
		arg := tok.number()
		if len(tt.Missions) < MaxTeamMissions {
			tt.Missions = append(tt.Missions, TeamMission{Mission: op, Arg: arg})
		}
	}

	if format < 2 {
		tt.Trigger = tok.number()
	}

	if tok.err != nil {
		return fmt.Errorf("team type %s: %w", name, tok.err)
	}
	return nil
}

// memberType resolves a member name, trying infantry, vehicles, aircraft and vessels in turn.
func memberType(reg *rules.Registry, name string) *rules.TechnoType {
	for _, k := range []rules.Kind{rules.KindInfantry, rules.KindUnit, rules.KindAircraft, rules.KindVessel} {
		if t := reg.TypeOfKind(name, k); t != nil {
			return t
		}
	}
	return nil
}

// BuildINIEntry is the inverse of FillIn in the current format.
func (tt *TeamType) BuildINIEntry() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d,%d,%d,%d,%d,%d,%d",
		tt.House, tt.Flags(), tt.RecruitPriority, tt.InitNum, tt.MaxAllowed, tt.Origin, tt.Trigger)

	fmt.Fprintf(&b, ",%d", len(tt.Members))
	for _, m := range tt.Members {
		fmt.Fprintf(&b, ",%s:%d", m.Class.Name, m.Quantity)
	}

	fmt.Fprintf(&b, ",%d", len(tt.Missions))
	for _, m := range tt.Missions {
		fmt.Fprintf(&b, ",%d:%d", m.Mission, m.Arg)
	}
	return b.String()
}

// NeedType is the kind of argument a team mission takes.
type NeedType int

const (
	NeedNone NeedType = iota
	NeedMission
	NeedWaypoint
	NeedNumber
	NeedHexNumber
	NeedQuarry
	NeedFormation
)

// MissionNeeds returns the argument kind of a team mission opcode.
func MissionNeeds(m core.TeamMissionType) NeedType {
	switch m {
	case core.TMissionFormation:
		return NeedFormation
	case core.TMissionAttack:
		return NeedQuarry
	case core.TMissionMoveCell:
		return NeedHexNumber
	case core.TMissionSetGlobal, core.TMissionGuard, core.TMissionLoop:
		return NeedNumber
	case core.TMissionPatrol, core.TMissionMove, core.TMissionAttWaypt, core.TMissionSpy:
		return NeedWaypoint
	case core.TMissionDo:
		return NeedMission
	}
	return NeedNone
}
