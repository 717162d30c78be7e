package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasim/simcore/internal/config"
	"github.com/rasim/simcore/internal/model"
	"github.com/rasim/simcore/internal/storage/memory"
)

func TestRunCLI_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runCLI(context.Background(), []string{"version"}, &out))
	assert.Contains(t, out.String(), AppName+" "+CurrentVersion)
}

func TestRunCLI_UnknownCommand(t *testing.T) {
	var out bytes.Buffer
	err := runCLI(context.Background(), []string{"fly"}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "fly"`)
}

func TestRunCLI_ReportNeedsFile(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, runCLI(context.Background(), []string{"report"}, &out))
	assert.Error(t, runCLI(context.Background(), []string{"report", filepath.Join(t.TempDir(), "none.json")}, &out))
}

func TestRunCLI_Report(t *testing.T) {
	b := memory.New(config.MemoryConfig{OutputDir: t.TempDir(), CompressOutput: true})
	require.NoError(t, b.StartSession(&model.Session{UUID: "abc", GameType: "normal", Seed: 42}))
	require.NoError(t, b.RecordScenarioLoad(&model.ScenarioLoad{Name: "SCG01EA.INI", PlayerHouse: "Greece"}))
	require.NoError(t, b.RecordScenarioLoad(&model.ScenarioLoad{Name: "SCG02EA.INI", Stage: "digest", Error: "bad digest"}))
	require.NoError(t, b.RecordTeamCreated(&model.TeamRecord{Serial: 1, TypeName: "grd1"}))
	require.NoError(t, b.RecordOutcome(&model.Outcome{Frame: 30, Kind: model.OutcomeWin, Scenario: "SCG01EA.INI", Next: "SCG02EA.INI", CarryOverMoney: 2000}))
	require.NoError(t, b.EndSession("won", 30))

	var out bytes.Buffer
	require.NoError(t, runCLI(context.Background(), []string{"REPORT", b.ExportedFilePath()}, &out))

	text := out.String()
	assert.Contains(t, text, "session abc (normal)")
	assert.Contains(t, text, "result won after 30 frames, seed 42")
	assert.Contains(t, text, "scenarios loaded: 2")
	assert.Contains(t, text, "failed at digest: bad digest")
	assert.Contains(t, text, "teams formed: 1 (1 still open)")
	assert.Contains(t, text, "-> SCG02EA.INI (carry 2000)")
}
