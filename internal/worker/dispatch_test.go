package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rasim/simcore/internal/config"
	"github.com/rasim/simcore/internal/dispatcher"
	"github.com/rasim/simcore/internal/session"
	"github.com/rasim/simcore/internal/storage/memory"
)

// mockLogger implements dispatcher.Logger for testing
type mockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *mockLogger) Debug(msg string, keysAndValues ...any) { l.add("DEBUG", msg, keysAndValues) }
func (l *mockLogger) Info(msg string, keysAndValues ...any)  { l.add("INFO", msg, keysAndValues) }
func (l *mockLogger) Error(msg string, keysAndValues ...any) { l.add("ERROR", msg, keysAndValues) }

func (l *mockLogger) add(level, msg string, kv []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("%s: %s %v", level, msg, kv))
}

const mission = `[Basic]
Name=Bridge
Player=Greece
NewINIFormat=3

[Greece]
Credits=10

[Map]
X=10
Y=10
Width=40
Height=40

[TeamTypes]
grd1=1,0,7,1,1,-1,-1,1,E1:1,1,5:10
`

type fixture struct {
	d       *dispatcher.Dispatcher
	engine  *session.Engine
	backend *memory.Backend
	log     *mockLogger
}

func setup(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SCG01EA.INI"), []byte(mission), 0o644))

	backend := memory.New(config.MemoryConfig{OutputDir: t.TempDir()})
	engine, err := session.New(session.Dependencies{
		Config:  config.SessionConfig{Type: "normal", ScenarioDir: dir, Seed: 7},
		Storage: backend,
	})
	require.NoError(t, err)

	log := &mockLogger{}
	d, err := dispatcher.New(log)
	require.NoError(t, err)
	t.Cleanup(d.Close)

	NewManager(context.Background(), Dependencies{Engine: engine}).RegisterHandlers(d)
	return fixture{d: d, engine: engine, backend: backend, log: log}
}

func (f fixture) send(t *testing.T, name string, args ...string) any {
	t.Helper()
	result, err := f.d.Dispatch(dispatcher.Command{Name: name, Args: args})
	require.NoError(t, err, name)
	return result
}

func TestRegisterHandlers_RegistersAllCommands(t *testing.T) {
	f := setup(t)

	assert.ElementsMatch(t, []string{
		CmdInit, CmdSelect, CmdStart, CmdTick, CmdRun, CmdWin, CmdLose,
		CmdRestart, CmdEnd, CmdSave, CmdLoad, CmdStatus,
	}, f.d.Commands())
}

func TestHandlers_BeforeInit(t *testing.T) {
	f := setup(t)

	_, err := f.d.Dispatch(dispatcher.Command{Name: CmdStart, Args: []string{"SCG01EA.INI"}})
	assert.ErrorIs(t, err, session.ErrNotInitialized)
	_, err = f.d.Dispatch(dispatcher.Command{Name: CmdRun})
	assert.ErrorIs(t, err, session.ErrNoScenario)

	st := f.send(t, CmdStatus).(session.Status)
	assert.False(t, st.Active)
	assert.Empty(t, st.Scenario)
}

func TestHandlers_StartRunLose(t *testing.T) {
	f := setup(t)

	f.send(t, CmdInit)
	assert.Equal(t, "SCG01EA.INI", f.send(t, CmdStart), "start without a name selects one")
	assert.Equal(t, 3, f.send(t, CmdRun, "3"))

	st := f.send(t, CmdStatus).(session.Status)
	assert.True(t, st.Active)
	assert.Equal(t, 3, st.Frame)
	assert.Equal(t, 1000, st.Credits)
	assert.Equal(t, 1, st.Teams)
	assert.NotEmpty(t, st.SessionID)

	f.send(t, CmdLose)
	assert.Equal(t, "SCG01EA.INI", f.send(t, CmdRestart))
	assert.Equal(t, session.ResultLost, f.send(t, CmdEnd, session.ResultLost))
	assert.Equal(t, session.ResultLost, f.backend.Report().Session.Result)
}

func TestHandlers_QueuedTicks(t *testing.T) {
	f := setup(t)
	f.send(t, CmdInit)
	f.send(t, CmdStart, "SCG01EA.INI")

	for range 4 {
		assert.Equal(t, "queued", f.send(t, CmdTick))
	}
	f.d.Close()

	assert.Equal(t, 4, f.engine.Status().Frame)
}

func TestHandlers_BadArguments(t *testing.T) {
	f := setup(t)

	_, err := f.d.Dispatch(dispatcher.Command{Name: CmdRun, Args: []string{"many"}})
	assert.ErrorIs(t, err, ErrBadArgument)
	_, err = f.d.Dispatch(dispatcher.Command{Name: CmdSave})
	assert.ErrorIs(t, err, ErrBadArgument)
	_, err = f.d.Dispatch(dispatcher.Command{Name: CmdLoad})
	assert.ErrorIs(t, err, ErrBadArgument)

	f.log.mu.Lock()
	defer f.log.mu.Unlock()
	assert.NotEmpty(t, f.log.messages, "failed commands are logged")
}

func TestHandlers_SaveAndLoad(t *testing.T) {
	f := setup(t)
	f.send(t, CmdInit)
	f.send(t, CmdStart, "SCG01EA.INI")
	f.send(t, CmdRun, "2")

	path := filepath.Join(t.TempDir(), "bridge.rec")
	assert.Equal(t, path, f.send(t, CmdSave, path))

	h := f.send(t, CmdLoad, path).(session.RecordHeader)
	assert.Equal(t, "SCG01EA.INI", h.ScenarioName)
	assert.Equal(t, uint32(7), h.Seed)
	assert.Equal(t, 0, f.engine.Status().Frame, "loading a recording restarts the scenario")
}

func TestHandlers_WinWithoutNextMission(t *testing.T) {
	f := setup(t)
	f.send(t, CmdInit)
	f.send(t, CmdStart, "SCG01EA.INI")

	// no SCG02 exists, so the load of the next mission fails
	_, err := f.d.Dispatch(dispatcher.Command{Name: CmdWin})
	assert.Error(t, err)
	assert.False(t, f.engine.Active())
}
