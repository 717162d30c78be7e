package worker

import (
	"fmt"
	"strconv"

	"github.com/rasim/simcore/internal/dispatcher"
	"github.com/rasim/simcore/internal/session"
)

// Command names understood by the engine.
const (
	CmdInit    = ":INIT:"
	CmdSelect  = ":SELECT:"
	CmdStart   = ":START:"
	CmdTick    = ":TICK:"
	CmdRun     = ":RUN:"
	CmdWin     = ":WIN:"
	CmdLose    = ":LOSE:"
	CmdRestart = ":RESTART:"
	CmdEnd     = ":END:"
	CmdSave    = ":SAVE:"
	CmdLoad    = ":LOAD:"
	CmdStatus  = ":STATUS:"
)

// RegisterHandlers registers every engine command with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// Lifecycle - sync, the caller needs the result
	d.Register(CmdInit, m.handleInit, dispatcher.Logged())
	d.Register(CmdSelect, m.handleSelect, dispatcher.Logged())
	d.Register(CmdStart, m.handleStart, dispatcher.Logged())
	d.Register(CmdWin, m.handleWin, dispatcher.Logged())
	d.Register(CmdLose, m.handleLose, dispatcher.Logged())
	d.Register(CmdRestart, m.handleRestart, dispatcher.Logged())
	d.Register(CmdEnd, m.handleEnd, dispatcher.Logged())

	// Recordings
	d.Register(CmdSave, m.handleSave, dispatcher.Logged())
	d.Register(CmdLoad, m.handleLoad, dispatcher.Logged())

	// Frame advance - single ticks are queued, runs report how far they got
	d.Register(CmdTick, m.handleTick, dispatcher.Buffered(1000), dispatcher.Blocking(), dispatcher.Logged())
	d.Register(CmdRun, m.handleRun, dispatcher.Logged())

	d.Register(CmdStatus, m.handleStatus)
}

func (m *Manager) handleInit(c dispatcher.Command) (any, error) {
	if err := m.deps.Engine.InitGame(m.ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize game: %w", err)
	}
	return nil, nil
}

func (m *Manager) handleSelect(c dispatcher.Command) (any, error) {
	name, err := m.deps.Engine.SelectGame()
	if err != nil {
		return nil, fmt.Errorf("failed to select game: %w", err)
	}
	return name, nil
}

// handleStart starts the scenario named by the first argument, or the one the session
// configuration selects when there is none.
func (m *Manager) handleStart(c dispatcher.Command) (any, error) {
	name := c.Arg(0)
	if name == "" {
		selected, err := m.deps.Engine.SelectGame()
		if err != nil {
			return nil, fmt.Errorf("failed to select game: %w", err)
		}
		name = selected
	}
	if err := m.deps.Engine.StartScenario(m.ctx, name); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}
	return name, nil
}

func (m *Manager) handleTick(c dispatcher.Command) (any, error) {
	stats, err := m.deps.Engine.Tick(m.ctx)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (m *Manager) handleRun(c dispatcher.Command) (any, error) {
	frames, err := intArg(c, 0, 1)
	if err != nil {
		return nil, err
	}
	return m.deps.Engine.Run(m.ctx, frames)
}

// handleWin returns the next scenario, or "" when the session ended.
func (m *Manager) handleWin(c dispatcher.Command) (any, error) {
	next, err := m.deps.Engine.DoWin(m.ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to win scenario: %w", err)
	}
	if next == "" {
		m.logger().Info("campaign complete", "session", m.deps.Engine.SessionID())
	}
	return next, nil
}

func (m *Manager) handleLose(c dispatcher.Command) (any, error) {
	if err := m.deps.Engine.DoLose(m.ctx); err != nil {
		return nil, fmt.Errorf("failed to lose scenario: %w", err)
	}
	return nil, nil
}

func (m *Manager) handleRestart(c dispatcher.Command) (any, error) {
	if err := m.deps.Engine.DoRestart(m.ctx); err != nil {
		return nil, fmt.Errorf("failed to restart scenario: %w", err)
	}
	return m.deps.Engine.Scenario(), nil
}

func (m *Manager) handleEnd(c dispatcher.Command) (any, error) {
	result := c.Arg(0)
	if result == "" {
		result = session.ResultAbandoned
	}
	if err := m.deps.Engine.End(result); err != nil {
		return nil, fmt.Errorf("failed to end session: %w", err)
	}
	return result, nil
}

func (m *Manager) handleSave(c dispatcher.Command) (any, error) {
	path := c.Arg(0)
	if path == "" {
		return nil, fmt.Errorf("%w: %s needs a path", ErrBadArgument, c.Name)
	}
	if err := m.deps.Engine.SaveRecording(path); err != nil {
		return nil, fmt.Errorf("failed to save recording: %w", err)
	}
	return path, nil
}

func (m *Manager) handleLoad(c dispatcher.Command) (any, error) {
	path := c.Arg(0)
	if path == "" {
		return nil, fmt.Errorf("%w: %s needs a path", ErrBadArgument, c.Name)
	}
	h, err := m.deps.Engine.LoadRecording(m.ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load recording: %w", err)
	}
	return h, nil
}

func (m *Manager) handleStatus(c dispatcher.Command) (any, error) {
	return m.deps.Engine.Status(), nil
}

// intArg parses argument i as an integer, returning def when it is absent.
func intArg(c dispatcher.Command, i, def int) (int, error) {
	s := c.Arg(i)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s argument %d: %q", ErrBadArgument, c.Name, i, s)
	}
	return n, nil
}
