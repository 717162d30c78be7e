package model

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []any{
	&Session{},
	&ScenarioLoad{},
	&TeamRecord{},
	&HouseSummary{},
	&Outcome{},
	&EngineStatus{},
}

////////////////////////
// SESSION MODELS
////////////////////////

// Session is one run of the engine, from bootstrap to shutdown.
type Session struct {
	gorm.Model
	UUID       string         `json:"uuid" gorm:"size:36;uniqueIndex"`
	GameType   string         `json:"gameType" gorm:"size:16"`
	BuildLevel int            `json:"buildLevel"`
	Seed       uint32         `json:"seed"`
	Difficulty string         `json:"difficulty" gorm:"size:16"`
	Players    datatypes.JSON `json:"players"`
	Options    datatypes.JSON `json:"options"`
	StartTime  time.Time      `json:"startTime" gorm:"index:idx_session_start"`
	EndTime    sql.NullTime   `json:"endTime"`
	Result     string         `json:"result" gorm:"size:16"`
	Frames     int            `json:"frames"`
}

func (*Session) TableName() string {
	return "sessions"
}

// ScenarioLoad is one attempt to read a scenario into the world. Stage and Error are empty when
// the load succeeded.
type ScenarioLoad struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	SessionID   uint      `json:"sessionId" gorm:"index:idx_scenarioload_session_id"`
	Time        time.Time `json:"time"`
	Name        string    `json:"name" gorm:"size:64"`
	Number      int       `json:"number"`
	Description string    `json:"description" gorm:"size:127"`
	Theater     string    `json:"theater" gorm:"size:16"`
	PlayerHouse string    `json:"playerHouse" gorm:"size:16"`
	Difficulty  string    `json:"difficulty" gorm:"size:16"`
	Stage       string    `json:"stage,omitempty" gorm:"size:16"`
	Error       string    `json:"error,omitempty" gorm:"size:255"`
	DurationMs  float64   `json:"durationMs"`
	TeamTypes   int       `json:"teamTypes"`
	Triggers    int       `json:"triggers"`
	Objects     int       `json:"objects"`
	BridgeCount int       `json:"bridgeCount"`
	RequiredCD  int       `json:"requiredCD"`
	// StartPositions is a WKT MULTIPOINT of the seated houses' start cells.
	StartPositions string `json:"startPositions,omitempty"`
}

func (*ScenarioLoad) TableName() string {
	return "scenario_loads"
}

// Failed reports whether the load stopped at some stage.
func (l *ScenarioLoad) Failed() bool {
	return l.Stage != ""
}

// TeamRecord follows one live team from creation to retirement. Serial is unique within a
// session; TeamID is the pool slot, which is reused.
type TeamRecord struct {
	ID             uint           `json:"id" gorm:"primarykey"`
	SessionID      uint           `json:"sessionId" gorm:"index:idx_teamrecord_session_id"`
	Serial         int            `json:"serial" gorm:"index:idx_teamrecord_serial"`
	Scenario       string         `json:"scenario" gorm:"size:64"`
	TeamID         int            `json:"teamId"`
	TypeName       string         `json:"typeName" gorm:"size:32"`
	House          string         `json:"house" gorm:"size:16"`
	Priority       int            `json:"priority"`
	Quota          int            `json:"quota"`
	IsAutocreate   bool           `json:"isAutocreate"`
	IsSuicide      bool           `json:"isSuicide"`
	Missions       datatypes.JSON `json:"missions"`
	RallyPath      string         `json:"rallyPath,omitempty"`
	CreatedFrame   int            `json:"createdFrame"`
	CreatedTime    time.Time      `json:"createdTime"`
	DisbandedFrame sql.NullInt32  `json:"disbandedFrame"`
	DisbandedTime  sql.NullTime   `json:"disbandedTime"`
	Members        int            `json:"members"`
}

func (*TeamRecord) TableName() string {
	return "team_records"
}

// IsOpen reports whether the team has not been retired yet.
func (t *TeamRecord) IsOpen() bool {
	return !t.DisbandedFrame.Valid
}

// TeamMission is one program step as stored in TeamRecord.Missions.
type TeamMission struct {
	Mission string `json:"mission"`
	Arg     int    `json:"arg"`
}

// HouseSummary is the state of one house at the moment a scenario ended.
type HouseSummary struct {
	ID         uint   `json:"id" gorm:"primarykey"`
	SessionID  uint   `json:"sessionId" gorm:"index:idx_housesummary_session_id"`
	Scenario   string `json:"scenario" gorm:"size:64"`
	Frame      int    `json:"frame"`
	House      string `json:"house" gorm:"size:16"`
	ActLike    string `json:"actLike" gorm:"size:16"`
	Name       string `json:"name" gorm:"size:32"`
	IsHuman    bool   `json:"isHuman"`
	IsDefeated bool   `json:"isDefeated"`
	Credits    int    `json:"credits"`
	TechLevel  int    `json:"techLevel"`
	Units      int    `json:"units"`
	Infantry   int    `json:"infantry"`
	Buildings  int    `json:"buildings"`
}

func (*HouseSummary) TableName() string {
	return "house_summaries"
}

// Outcome kinds.
const (
	OutcomeWin     = "win"
	OutcomeLose    = "lose"
	OutcomeRestart = "restart"
)

// Outcome is how a scenario ended and what the session moved on to.
type Outcome struct {
	ID             uint      `json:"id" gorm:"primarykey"`
	SessionID      uint      `json:"sessionId" gorm:"index:idx_outcome_session_id"`
	Time           time.Time `json:"time"`
	Frame          int       `json:"frame"`
	Kind           string    `json:"kind" gorm:"size:16"`
	Scenario       string    `json:"scenario" gorm:"size:64"`
	Next           string    `json:"next,omitempty" gorm:"size:64"`
	CarryOverMoney int       `json:"carryOverMoney"`
}

func (*Outcome) TableName() string {
	return "outcomes"
}

// EngineStatus is a periodic snapshot of a running session, written by the status monitor.
type EngineStatus struct {
	Time       time.Time `json:"time" gorm:"index:idx_enginestatus_time"`
	SessionID  uint      `json:"sessionId" gorm:"index:idx_enginestatus_session_id"`
	Scenario   string    `json:"scenario" gorm:"size:64"`
	Frame      int       `json:"frame"`
	Active     bool      `json:"active"`
	Teams      int       `json:"teams"`
	Feet       int       `json:"feet"`
	Buildings  int       `json:"buildings"`
	Credits    int       `json:"credits"`
	QueueDepth int       `json:"queueDepth"`
}

func (*EngineStatus) TableName() string {
	return "engine_status"
}
