package scenario

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasim/simcore/internal/ini"
	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/rules"
	"github.com/rasim/simcore/internal/world"
)

func newWorld(t *testing.T) *world.WorldState {
	t.Helper()
	w := world.New(rules.New(), 11)
	w.CreateHouses()
	return w
}

func writeScenario(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func newLoader(t *testing.T, opts Options) *Loader {
	t.Helper()
	l, err := NewLoader(opts)
	require.NoError(t, err)
	return l
}

const soloScenario = `[Basic]
Name=Test Mission
Player=Greece
CarryOverMoney=0.5
CarryOverCap=300
Win=ALLYWIN

[Greece]
Credits=10
Allies=England

[Map]
Theater=SNOW
X=10
Y=10
Width=20
Height=20

[Waypoints]
98=1935
0=1300

[Trigs]
tim1=0,2,0,0,13,-1,5,0,-1,0,15,-1,-1,0,0,-1,-1,0
hou1=0,1,0,0,12,-1,500,0,-1,0,1,-1,-1,0,0,-1,-1,0
zon1=0,1,0,0,24,-1,0,0,-1,0,0,-1,-1,0,0,-1,-1,0
obj1=0,2,0,0,7,-1,0,0,-1,0,1,-1,-1,0,0,-1,-1,0

[CellTriggers]
2070=zon1

[Units]
0=Greece,1TNK,256,1940,64,Guard,None

[Infantry]
0=USSR,E1,128,2200,0,Guard,0,obj1
1=USSR,XYZ,256,2201,0,Guard,0,None

[Structures]
0=USSR,PBOX,256,2580,0,obj1

[Terrain]
2060=T01

[Overlay]
2062=GOLD01

[Smudge]
2064=CR1,2064,0

[Briefing]
1=Line one
2=Line two
`

func TestRead_SoloScenario(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "scg01ea.ini", soloScenario)

	w := newWorld(t)
	w.Scen.CarryOverMoney = 1000
	l := newLoader(t, Options{Dir: dir})

	require.NoError(t, l.Read(context.Background(), w, "scg01ea.ini"))

	assert.Equal(t, "Test Mission", w.Scen.Description)
	assert.Equal(t, 1, w.Scen.Scenario)
	assert.Equal(t, -1, w.Scen.RequiredCD)
	assert.Equal(t, "ALLYWIN", w.Scen.WinMovie)
	assert.Equal(t, core.TheaterSnow, w.Map.Theater)
	assert.Equal(t, "Line one Line two", w.Scen.Briefing)
	assert.Equal(t, 0, w.ScenarioInit)

	require.NotNil(t, w.PlayerPtr)
	assert.Equal(t, core.HouseGreece, w.PlayerPtr.Class)
	assert.True(t, w.PlayerPtr.IsHuman)
	assert.True(t, w.PlayerPtr.IsPlayerControl)
	assert.Equal(t, 1300, w.PlayerPtr.Credits, "1000 authored plus carry over capped at 300")
	assert.Equal(t, 1300, w.PlayerPtr.InitialCredits)
	assert.True(t, w.PlayerPtr.IsAlly(core.HouseEngland))

	assert.Equal(t, core.Cell(1935), w.Scen.View)
	assert.True(t, w.Map.Cell(1935).IsWaypoint)

	require.Equal(t, 1, w.Units.Count())
	tank := w.Units.Items()[0]
	assert.Equal(t, core.Cell(1940), tank.Cell())
	assert.Equal(t, core.FacingE, tank.Facing)
	assert.Equal(t, 300, tank.Strength)
	assert.Equal(t, core.MissionGuard, tank.GetMission())

	require.Equal(t, 1, w.Infantry.Count(), "unknown types are skipped")
	e1 := w.Infantry.Items()[0]
	assert.Equal(t, 25, e1.Strength)
	require.NotNil(t, e1.Trigger)
	assert.Equal(t, "obj1", e1.Trigger.Class.Name)

	require.Equal(t, 1, w.Buildings.Count())
	pbox := w.Buildings.Items()[0]
	assert.Same(t, e1.Trigger, pbox.Trigger, "one instance per trigger type")
	assert.Equal(t, 2, pbox.Trigger.AttachCount)

	assert.Equal(t, 1, w.Terrain.Count())
	assert.Equal(t, world.OverlayGold1, w.Map.Cell(2062).Overlay)
	assert.Equal(t, "CR1", w.Map.Cell(2064).Smudge)

	require.NotNil(t, w.Map.Cell(2070).Trigger)
	assert.Equal(t, "zon1", w.Map.Cell(2070).Trigger.Class.Name)

	assert.Len(t, w.LogicTriggers, 1)
	assert.Equal(t, "tim1", w.LogicTriggers[0].Class.Name)
	assert.Len(t, w.MapTriggers, 1)
	assert.Len(t, w.HouseTriggers[core.HouseGreece], 1)
	assert.Equal(t, 4, w.Triggers.Count())
	assert.Equal(t, 1, w.House(core.HouseUSSR).Blockage)
}

func TestRead_MissionBriefingOverride(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "scg01ea.ini", soloScenario)
	mission, _, err := ini.Parse([]byte("[scg01ea.ini]\n1=From mission file\n"))
	require.NoError(t, err)

	w := newWorld(t)
	l := newLoader(t, Options{Dir: dir, Mission: mission})
	require.NoError(t, l.Read(context.Background(), w, "scg01ea.ini"))
	assert.Equal(t, "From mission file", w.Scen.Briefing)
}

const multiScenario = `[Basic]
Name=Skirmish Map

[Map]
X=10
Y=10
Width=60
Height=60

[Waypoints]
0=2580
1=7740

[Infantry]
0=Multi2,E1,256,3000,0,Guard,0,None
1=Multi1,E1,256,3010,0,Guard,0,None
`

func TestRead_MultiplayerSynthesizesForces(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "scm01ea.ini", multiScenario)

	w := newWorld(t)
	w.Session.Type = core.GameSkirmish
	w.Session.Players = []world.PlayerInfo{{Name: "local", House: core.HouseUSSR, Color: 0}}
	w.Session.Options = world.GameOptions{Credits: 5000, UnitCount: 12, AIPlayers: 1}
	w.Session.BuildLevel = 10

	l := newLoader(t, Options{Dir: dir})
	require.NoError(t, l.Read(context.Background(), w, "scm01ea.ini"))

	require.NotNil(t, w.PlayerPtr)
	assert.Equal(t, core.HouseMulti1, w.PlayerPtr.Class)
	assert.Equal(t, 13, w.PlayerPtr.TechLevel)

	counts := map[core.HouseType]map[world.FootKind]int{}
	for _, f := range w.Feet() {
		if counts[f.House] == nil {
			counts[f.House] = map[world.FootKind]int{}
		}
		counts[f.House][f.Kind]++
		assert.False(t, f.IsInLimbo)
		want := core.MissionGuardArea
		if f.House == core.HouseMulti1 {
			want = core.MissionGuard
		}
		assert.Equal(t, want, f.GetMission())
	}

	assert.Equal(t, 8, counts[core.HouseMulti1][world.FootUnit], "one soviet vehicle per slot")
	assert.Equal(t, 5, counts[core.HouseMulti1][world.FootInfantry], "four synthesized plus the authored rifleman")
	assert.Equal(t, 4, counts[core.HouseMulti2][world.FootInfantry], "the computer's authored rifleman is removed")
	assert.GreaterOrEqual(t, counts[core.HouseMulti2][world.FootUnit], 8)
	assert.Empty(t, counts[core.HouseMulti3])

	assert.NotEqual(t, w.House(core.HouseMulti1).Center, w.House(core.HouseMulti2).Center)
}

func TestRead_Failures(t *testing.T) {
	dir := t.TempDir()
	digest := "[Basic]\nName=Digest\n\n[Digest]\n1=AAAAAAAAAAAAAAAAAAAAAAAAAAA\n"
	writeScenario(t, dir, "scm05ea.ini", digest)
	writeScenario(t, dir, "scg05ea.ini", digest)
	writeScenario(t, dir, "scg21ea.ini", soloScenario)

	tests := []struct {
		name    string
		file    string
		media   MediaGate
		stage   string
		wantErr error
	}{
		{name: "missing file", file: "scg02ea.ini", stage: StageParse},
		{name: "digest mismatch", file: "scg05ea.ini", stage: StageDigest, wantErr: ErrDigestMismatch},
		{name: "media refused", file: "scg21ea.ini", media: refuseMedia{}, stage: StageMedia, wantErr: ErrMediaUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld(t)
			l := newLoader(t, Options{Dir: dir, Media: tt.media})
			err := l.Read(context.Background(), w, tt.file)

			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, tt.stage, loadErr.Stage)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, 0, w.ScenarioInit)
			assert.Zero(t, w.Units.Count())
		})
	}

	t.Run("legacy multiplayer digest accepted", func(t *testing.T) {
		w := newWorld(t)
		w.Session.Type = core.GameSkirmish
		w.Session.Players = []world.PlayerInfo{{Name: "local", House: core.HouseGreece}}
		l := newLoader(t, Options{Dir: dir})
		assert.NoError(t, l.Read(context.Background(), w, "scm05ea.ini"))
	})
}

type refuseMedia struct{}

func (refuseMedia) ForceAvailable(int) bool { return false }

func TestClear_Idempotent(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "scg01ea.ini", soloScenario)
	w := newWorld(t)
	l := newLoader(t, Options{Dir: dir})
	require.NoError(t, l.Read(context.Background(), w, "scg01ea.ini"))

	Clear(w)
	first := snapshot(w)
	Clear(w)
	assert.Equal(t, first, snapshot(w))

	assert.Zero(t, w.Units.Count())
	assert.Zero(t, w.Triggers.Count())
	assert.Empty(t, w.LogicTriggers)
	assert.Equal(t, core.CellNone, w.Scen.Waypoints[core.WaypointHome])
	assert.Equal(t, core.DiffNormal, w.Scen.Difficulty)
	assert.NotNil(t, w.House(core.HouseGreece))
}

type worldSnapshot struct {
	feet, buildings, triggers, teamTypes int
	mapTriggers, logicTriggers          int
	description                         string
	home                                core.Cell
	mapped                              bool
}

func snapshot(w *world.WorldState) worldSnapshot {
	return worldSnapshot{
		feet:          len(w.Feet()),
		buildings:     w.Buildings.Count(),
		triggers:      w.Triggers.Count(),
		teamTypes:     w.TeamTypes.Count(),
		mapTriggers:   len(w.MapTriggers),
		logicTriggers: len(w.LogicTriggers),
		description:   w.Scen.Description,
		home:          w.Scen.Waypoints[core.WaypointHome],
		mapped:        w.Map.Cell(core.XYCell(9, 9)).IsMapped,
	}
}

func TestFillInData_DistributesTriggersOnce(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "scg01ea.ini", soloScenario)
	w := newWorld(t)
	l := newLoader(t, Options{Dir: dir})
	require.NoError(t, l.Read(context.Background(), w, "scg01ea.ini"))

	FillInData(w)

	assert.Len(t, w.LogicTriggers, 1)
	assert.Len(t, w.MapTriggers, 1)
	assert.Len(t, w.HouseTriggers[core.HouseGreece], 1)
	assert.Equal(t, 4, w.Triggers.Count())
}

func TestRevealBorder(t *testing.T) {
	w := newWorld(t)
	m := w.Map
	m.MapCellX, m.MapCellY, m.MapCellWidth, m.MapCellHeight = 10, 20, 30, 15

	revealBorder(m)

	mapped := []core.Cell{
		core.XYCell(9, 19), core.XYCell(40, 19), core.XYCell(9, 35), core.XYCell(40, 35),
		core.XYCell(25, 19), core.XYCell(25, 35), core.XYCell(9, 27), core.XYCell(40, 27),
	}
	for _, c := range mapped {
		assert.True(t, m.Cell(c).IsMapped, "cell %d,%d", c.X(), c.Y())
	}
	for _, c := range []core.Cell{core.XYCell(10, 20), core.XYCell(8, 27), core.XYCell(25, 36), core.XYCell(41, 19)} {
		assert.False(t, m.Cell(c).IsMapped, "cell %d,%d", c.X(), c.Y())
	}
}

func TestScanPlaceObject(t *testing.T) {
	w := newWorld(t)
	m := w.Map
	m.MapCellX, m.MapCellY, m.MapCellWidth, m.MapCellHeight = 20, 20, 3, 3
	e1 := w.Rules.Registry.Type("E1")
	tank := w.Rules.Registry.Type("1TNK")

	center := core.XYCell(21, 21)
	blocker, err := w.CreateFoot(tank, core.HouseGreece)
	require.NoError(t, err)
	require.True(t, blocker.Unlimbo(w, center, core.FacingN))

	t.Run("moves off an occupied centre", func(t *testing.T) {
		f, err := w.CreateFoot(tank, core.HouseGreece)
		require.NoError(t, err)
		require.True(t, ScanPlaceObject(w, f, center))
		assert.NotEqual(t, center, f.Cell())
		assert.LessOrEqual(t, core.CellDistance(center, f.Cell()), 1)
	})

	t.Run("infantry shares infantry cells", func(t *testing.T) {
		first, err := w.CreateFoot(e1, core.HouseGreece)
		require.NoError(t, err)
		second, err := w.CreateFoot(e1, core.HouseGreece)
		require.NoError(t, err)
		cell := core.XYCell(20, 20)
		require.True(t, first.Unlimbo(w, cell, core.FacingN))
		require.True(t, ScanPlaceObject(w, second, cell))
		assert.Equal(t, cell, second.Cell())
	})

	t.Run("gives up when the map is full", func(t *testing.T) {
		for y := 20; y < 23; y++ {
			for x := 20; x < 23; x++ {
				c := core.XYCell(x, y)
				if w.Map.Techno(c).IsValid() {
					continue
				}
				f, err := w.CreateFoot(tank, core.HouseGreece)
				require.NoError(t, err)
				require.True(t, f.Unlimbo(w, c, core.FacingN))
			}
		}
		f, err := w.CreateFoot(tank, core.HouseGreece)
		require.NoError(t, err)
		assert.False(t, ScanPlaceObject(w, f, center))
		assert.True(t, f.IsInLimbo)
	})
}

func TestDisectName(t *testing.T) {
	tests := []struct {
		name string
		want NameParts
	}{
		{"scg01ea.ini", NameParts{Scenario: 1, Player: 'G', Dir: 'E', Variant: 'A'}},
		{"SCU46EA.INI", NameParts{Scenario: 46, Player: 'U', Dir: 'E', Variant: 'A'}},
		{"scu1aea.ini", NameParts{Scenario: 46, Player: 'U', Dir: 'E', Variant: 'A'}},
		{"scmA3ew.ini", NameParts{Scenario: 3, Player: 'M', Dir: 'E', Variant: 'W'}},
		{"sc", NameParts{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisectName(tt.name))
		})
	}
}

func TestRequiredCD(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		game     core.GameType
		official bool
		want     int
		check    bool
	}{
		{"first allied mission", "scg01ea.ini", core.GameNormal, true, -1, true},
		{"first ant mission", "sca01ea.ini", core.GameNormal, true, 2, true},
		{"allied", "scg05ea.ini", core.GameNormal, true, 0, true},
		{"soviet", "scu05ea.ini", core.GameNormal, true, 1, true},
		{"counterstrike solo", "scu21ea.ini", core.GameNormal, true, 2, true},
		{"aftermath solo", "scu40ea.ini", core.GameNormal, true, 3, true},
		{"official multiplayer", "scm10ea.ini", core.GameSkirmish, true, -1, true},
		{"counterstrike multiplayer", "scm30ea.ini", core.GameSkirmish, true, 2, true},
		{"user multiplayer", "scm30ea.ini", core.GameSkirmish, false, -1, false},
		{"download", "download.tmp", core.GameNormal, true, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := world.NewSession()
			s.Type = tt.game
			s.IsOfficial = tt.official
			scen := world.NewScenario()
			scen.Scenario = DisectName(tt.file).Scenario

			cd, check := requiredCD(s, scen, tt.file)
			assert.Equal(t, tt.want, cd)
			assert.Equal(t, tt.check, check)
		})
	}
}

func TestPatch_SpiedTechCenter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "scg09ea.ini", `[Basic]
Player=Greece

[Trigs]
Spyd=0,2,0,0,2,-1,0,0,-1,0,1,-1,-1,0,0,-1,-1,0

[Structures]
0=USSR,DOME,256,3000,0,Spyd
`)

	w := newWorld(t)
	l := newLoader(t, Options{Dir: dir})
	require.NoError(t, l.Read(context.Background(), w, "scg09ea.ini"))

	spyd := w.TriggerTypeByName("Spyd")
	kos := w.TriggerTypeByName("kos")
	los3 := w.TriggerTypeByName("los3")
	require.NotNil(t, spyd)
	require.NotNil(t, kos)
	require.NotNil(t, los3)

	assert.Equal(t, core.TEventGlobalSet, spyd.Event1.Event)
	assert.Equal(t, 22, spyd.Event1.Value)

	assert.Equal(t, core.MultiLinked, kos.EventControl)
	assert.Equal(t, core.TEventSpied, kos.Event1.Event)
	assert.Equal(t, core.TEventDestroyed, kos.Event2.Event)
	assert.Equal(t, core.TActionSetGlobal, kos.Action1.Action)
	assert.Equal(t, 22, kos.Action1.Value)
	assert.Equal(t, 23, kos.Action2.Value)

	assert.Equal(t, core.MultiAnd, los3.EventControl)
	assert.Equal(t, core.TActionLose, los3.Action1.Action)
	assert.Equal(t, -255, los3.Action1.Value)
	assert.Equal(t, core.TActionTextTrigger, los3.Action2.Action)
	assert.Equal(t, 54, los3.Action2.Value)

	dome := w.Buildings.Items()[0]
	require.NotNil(t, dome.Trigger)
	assert.Same(t, kos, dome.Trigger.Class)

	names := map[string]bool{}
	for _, tp := range w.LogicTriggers {
		names[tp.Class.Name] = true
	}
	assert.True(t, names["Spyd"])
	assert.True(t, names["los3"])
}

func TestPatch_TransportWaypointsAndRules(t *testing.T) {
	dir := t.TempDir()
	body := `[Basic]
Player=USSR
NewINIFormat=3

[TeamTypes]
rnf1=2,30,5,0,2,3,-1,1,1TNK:1,1,3:0
rnf2=2,30,5,0,2,3,-1,1,1TNK:1,1,3:0
`
	writeScenario(t, dir, "scu46ea.ini", body)
	writeScenario(t, dir, "scu42ea.ini", body)
	writeScenario(t, dir, "scu35ea.ini", body)

	w := newWorld(t)
	l := newLoader(t, Options{Dir: dir})

	require.NoError(t, l.Read(context.Background(), w, "scu46ea.ini"))
	assert.Equal(t, core.Cell(9915), w.Scen.Waypoints[20])
	assert.Equal(t, core.Cell(9919), w.Scen.Waypoints[21])
	assert.True(t, w.Map.Cell(9915).IsWaypoint)
	assert.Equal(t, 20, w.TeamTypeByName("rnf1").Missions[0].Arg)
	assert.Equal(t, 21, w.TeamTypeByName("rnf2").Missions[0].Arg)
	assert.True(t, w.Rules.Registry.Type("PBOX").IsCaptureable)

	require.NoError(t, l.Read(context.Background(), w, "scu42ea.ini"))
	assert.False(t, w.Rules.Registry.Type("PBOX").IsCaptureable)
	assert.Equal(t, 1, w.Rules.Registry.Weapon("Sniper").Burst)

	require.NoError(t, l.Read(context.Background(), w, "scu35ea.ini"))
	assert.True(t, w.Rules.Registry.Type("PBOX").IsCaptureable, "rules are rebuilt for every load")
	assert.Equal(t, 2, w.Rules.Registry.Weapon("Sniper").Burst)
}

func TestLoadError(t *testing.T) {
	err := &LoadError{Scenario: "scg01ea.ini", Stage: StageDigest, Err: ErrDigestMismatch}
	assert.Equal(t, "failed to load scenario scg01ea.ini (digest): scenario digest mismatch", err.Error())
	assert.True(t, errors.Is(err, ErrDigestMismatch))
}

// mapPackText renders a map as numbered [MapPack] lines.
func mapPackText(m *world.Map) string {
	text := world.EncodePack(m.WriteBinary())
	var b strings.Builder
	b.WriteString("[MapPack]\n")
	for i := 0; len(text) > 0; i++ {
		n := min(70, len(text))
		fmt.Fprintf(&b, "%d=%s\n", i+1, text[:n])
		text = text[n:]
	}
	return b.String()
}

func TestRead_FirstAlliedMission(t *testing.T) {
	// Templates 131 and 379 are bridge sets and icon 6 is the intact centre piece.
	// Template 130 is a ford and never counts.
	const intact = 6

	m := world.NewMap()
	m.SetTemplate(core.XYCell(20, 20), 131, intact)
	m.SetTemplate(core.XYCell(30, 22), 379, intact)
	m.SetTemplate(core.XYCell(31, 22), 131, intact+1)
	m.SetTemplate(core.XYCell(33, 22), 130, intact)

	body := "[Basic]\nName=In the thick of it\nPlayer=Greece\n\n" +
		"[Map]\nX=10\nY=10\nWidth=40\nHeight=40\n\n" +
		mapPackText(m)

	dir := t.TempDir()
	writeScenario(t, dir, "SCG01EA.INI", body)

	w := newWorld(t)
	l := newLoader(t, Options{Dir: dir})
	require.NoError(t, l.Read(context.Background(), w, "SCG01EA.INI"))

	require.NotNil(t, w.PlayerPtr)
	assert.Equal(t, core.HouseGreece, w.PlayerPtr.Class)
	assert.Equal(t, 2, w.Scen.BridgeCount)
	assert.Equal(t, 1, w.Scen.Scenario)
}

func TestPatch_TriggerActionRewired(t *testing.T) {
	var b strings.Builder
	b.WriteString("[Basic]\nPlayer=USSR\n\n[Trigs]\n")
	for i := 0; i < 14; i++ {
		fmt.Fprintf(&b, "t%02d=0,2,0,0,13,-1,5,0,-1,0,15,-1,-1,0,0,-1,-1,0\n", i)
	}

	dir := t.TempDir()
	writeScenario(t, dir, "scu13ea.ini", b.String())
	writeScenario(t, dir, "scu12ea.ini", b.String())

	w := newWorld(t)
	l := newLoader(t, Options{Dir: dir})

	require.NoError(t, l.Read(context.Background(), w, "scu12ea.ini"))
	assert.Equal(t, -1, w.TriggerTypes.ByID(11).Action1.Trigger, "other scenarios are left alone")

	require.NoError(t, l.Read(context.Background(), w, "scu13ea.ini"))
	for id := 0; id < 14; id++ {
		want := -1
		if id == 11 {
			want = 39
		}
		assert.Equal(t, want, w.TriggerTypes.ByID(id).Action1.Trigger, "trigger %d", id)
	}
}
