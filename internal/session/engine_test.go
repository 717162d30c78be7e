package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasim/simcore/internal/config"
	"github.com/rasim/simcore/internal/model"
	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/storage/memory"
)

const firstMission = `[Basic]
Name=First
Player=Greece
NewINIFormat=3

[Greece]
Credits=20

[Map]
X=10
Y=10
Width=40
Height=40

[Waypoints]
98=2580

[TeamTypes]
grd1=1,0,7,1,1,-1,-1,1,E1:1,1,5:10

[Infantry]
0=Greece,E1,256,2600,0,Guard,0,None
`

const secondMission = `[Basic]
Name=Second
Player=Greece
CarryOverMoney=1
CarryOverCap=-1
EndOfGame=yes

[Greece]
Credits=5

[Map]
X=10
Y=10
Width=40
Height=40
`

const skirmishMap = `[Basic]
Name=Skirmish

[Map]
X=10
Y=10
Width=60
Height=60

[Waypoints]
0=2580
1=7740
`

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func newEngine(t *testing.T, cfg config.SessionConfig) (*Engine, *memory.Backend) {
	t.Helper()
	backend := memory.New(config.MemoryConfig{OutputDir: t.TempDir()})
	require.NoError(t, backend.Init())

	e, err := New(Dependencies{Config: cfg, Storage: backend})
	require.NoError(t, err)
	require.NoError(t, e.InitGame(context.Background()))
	return e, backend
}

func campaignConfig(dir string) config.SessionConfig {
	return config.SessionConfig{
		Type:        "normal",
		ScenarioDir: dir,
		Difficulty:  "normal",
		Seed:        42,
	}
}

func TestNew_RequiresStorage(t *testing.T) {
	_, err := New(Dependencies{})
	assert.Error(t, err)
}

func TestEngine_NotInitialized(t *testing.T) {
	e, err := New(Dependencies{Storage: memory.New(config.MemoryConfig{})})
	require.NoError(t, err)

	_, err = e.SelectGame()
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, e.StartScenario(context.Background(), DefaultCampaign), ErrNotInitialized)
	_, err = e.Tick(context.Background())
	assert.ErrorIs(t, err, ErrNoScenario)
	assert.NoError(t, e.End(ResultAbandoned), "nothing to close")
}

func TestEngine_CampaignWinCarriesMoney(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "SCG01EA.INI", firstMission)
	writeFile(t, dir, "SCG02EA.INI", secondMission)

	e, backend := newEngine(t, campaignConfig(dir))
	ctx := context.Background()

	name, err := e.SelectGame()
	require.NoError(t, err)
	assert.Equal(t, DefaultCampaign, name)

	require.NoError(t, e.StartScenario(ctx, name))
	assert.True(t, e.Active())
	assert.NotEmpty(t, e.SessionID())
	assert.Equal(t, 1, e.Teams().Count(), "InitNum teams are formed at start")
	assert.Equal(t, 2000, e.World().PlayerPtr.Credits)

	ran, err := e.Run(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, ran)
	assert.Equal(t, 5, e.World().Frame)

	next, err := e.DoWin(ctx)
	require.NoError(t, err)
	assert.Equal(t, "SCG02EA.INI", next)
	assert.Equal(t, "SCG02EA.INI", e.Scenario())
	assert.Equal(t, 2, e.World().Scen.Scenario)
	assert.Equal(t, 2500, e.World().PlayerPtr.Credits, "500 authored plus 2000 carried")

	final, err := e.DoWin(ctx)
	require.NoError(t, err)
	assert.Empty(t, final, "the last mission ends the session")
	assert.False(t, e.Active())

	report := backend.Report()
	assert.Equal(t, ResultWon, report.Session.Result)
	assert.Equal(t, 5, report.Session.Frames)
	require.Len(t, report.Loads, 2)
	assert.False(t, report.Loads[0].Failed())
	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, model.OutcomeWin, report.Outcomes[0].Kind)
	assert.Equal(t, "SCG02EA.INI", report.Outcomes[0].Next)
	assert.Equal(t, 2000, report.Outcomes[0].CarryOverMoney)
	require.Len(t, report.Teams, 1)
	assert.Equal(t, "grd1", report.Teams[0].TypeName)
	assert.False(t, report.Teams[0].IsOpen(), "teams are closed when the scenario changes")
	assert.NotEmpty(t, backend.ExportedFilePath())
}

func TestEngine_LoseThenRestart(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "SCG01EA.INI", firstMission)

	e, backend := newEngine(t, campaignConfig(dir))
	ctx := context.Background()

	require.NoError(t, e.StartScenario(ctx, "SCG01EA.INI"))
	require.NoError(t, e.DoLose(ctx))
	assert.False(t, e.Active())
	_, err := e.Tick(ctx)
	assert.ErrorIs(t, err, ErrNoScenario)
	assert.ErrorIs(t, e.DoLose(ctx), ErrNoScenario)

	require.NoError(t, e.DoRestart(ctx))
	assert.True(t, e.Active())
	assert.Equal(t, "SCG01EA.INI", e.Scenario())
	assert.Equal(t, core.HouseGreece, e.World().PlayerPtr.Class)

	report := backend.Report()
	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, model.OutcomeLose, report.Outcomes[0].Kind)
	assert.Equal(t, model.OutcomeRestart, report.Outcomes[1].Kind)
	assert.Len(t, report.Loads, 2)

	require.NoError(t, e.End(ResultAbandoned))
	assert.Equal(t, ResultAbandoned, backend.Report().Session.Result)
	require.NoError(t, e.End(ResultAbandoned), "ending twice is harmless")
}

func TestEngine_FailedLoadIsRecorded(t *testing.T) {
	e, backend := newEngine(t, campaignConfig(t.TempDir()))

	err := e.StartScenario(context.Background(), "SCG07EA.INI")
	require.Error(t, err)
	assert.False(t, e.Active())

	report := backend.Report()
	require.Len(t, report.Loads, 1)
	assert.True(t, report.Loads[0].Failed())
	assert.Equal(t, "SCG07EA.INI", report.Loads[0].Name)
}

func TestEngine_SelectMultiplayer(t *testing.T) {
	cfg := campaignConfig(t.TempDir())
	cfg.Type = "skirmish"

	e, _ := newEngine(t, cfg)
	_, err := e.SelectGame()
	assert.Error(t, err, "a skirmish needs a player")

	cfg.Players = []config.PlayerConfig{{Name: "local", House: "Narnia"}}
	e, _ = newEngine(t, cfg)
	_, err = e.SelectGame()
	assert.ErrorContains(t, err, "unknown house")

	cfg.Players = []config.PlayerConfig{{Name: "local", House: "USSR"}}
	e, _ = newEngine(t, cfg)
	name, err := e.SelectGame()
	require.NoError(t, err)
	assert.Equal(t, DefaultMultiplayer, name)
	assert.Equal(t, 1, e.World().Session.Scenario)
	assert.True(t, e.World().Session.IsMultiplayer())
}

func TestEngine_RecordingReplaysTheSameWorld(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, DefaultMultiplayer, skirmishMap)

	cfg := campaignConfig(dir)
	cfg.Type = "skirmish"
	cfg.Scenario = DefaultMultiplayer
	cfg.UnitCount = 9
	cfg.AIPlayers = 1
	cfg.BuildLevel = 10
	cfg.Goodies = true
	cfg.Players = []config.PlayerConfig{{Name: "local", House: "Greece"}}
	cfg.Seed = 1234

	ctx := context.Background()
	first, _ := newEngine(t, cfg)
	name, err := first.SelectGame()
	require.NoError(t, err)
	require.NoError(t, first.StartScenario(ctx, name))

	path := filepath.Join(t.TempDir(), "game.rec")
	require.NoError(t, first.SaveRecording(path))

	cfg.Seed = 99
	second, _ := newEngine(t, cfg)
	_, err = second.SelectGame()
	require.NoError(t, err)
	h, err := second.LoadRecording(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, uint32(1234), h.Seed)
	assert.Equal(t, DefaultMultiplayer, h.ScenarioName)

	cells := func(e *Engine) []core.Cell {
		var out []core.Cell
		for _, f := range e.World().Feet() {
			out = append(out, f.Cell())
		}
		return out
	}
	require.NotEmpty(t, cells(first))
	assert.Equal(t, cells(first), cells(second))
	assert.Equal(t, first.World().Rand.Seed, second.World().Rand.Seed)
}

func TestEngine_SaveRecordingNeedsScenario(t *testing.T) {
	e, _ := newEngine(t, campaignConfig(t.TempDir()))
	assert.ErrorIs(t, e.SaveRecording(filepath.Join(t.TempDir(), "x.rec")), ErrNoScenario)

	_, err := e.LoadRecording(context.Background(), filepath.Join(t.TempDir(), "missing.rec"))
	assert.Error(t, err)
}
