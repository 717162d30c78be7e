// Package session runs a headless game: it resolves the session from configuration, loads
// scenarios, advances the simulation tick by tick and moves between missions on win, loss or
// restart. Every event worth keeping is handed to the storage backend and the tick metrics to
// InfluxDB.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rasim/simcore/internal/cache"
	"github.com/rasim/simcore/internal/config"
	"github.com/rasim/simcore/internal/influx"
	"github.com/rasim/simcore/internal/mission"
	"github.com/rasim/simcore/internal/model"
	"github.com/rasim/simcore/internal/model/convert"
	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/rules"
	"github.com/rasim/simcore/internal/scenario"
	"github.com/rasim/simcore/internal/storage"
	"github.com/rasim/simcore/internal/team"
	"github.com/rasim/simcore/internal/util"
	"github.com/rasim/simcore/internal/world"
)

// Default start scenarios when the configuration names none.
const (
	DefaultCampaign    = "SCG01EA.INI"
	DefaultMultiplayer = "SCM01EA.INI"
)

// Session results passed to the storage backend when the session ends.
const (
	ResultWon       = "won"
	ResultLost      = "lost"
	ResultAbandoned = "abandoned"
)

var (
	// ErrNotInitialized is returned by operations that need InitGame first.
	ErrNotInitialized = errors.New("game not initialized")
	// ErrNoScenario is returned when no scenario is in play.
	ErrNoScenario = errors.New("no scenario in play")
)

// Dependencies holds everything the engine talks to outside the simulation.
type Dependencies struct {
	Config  config.SessionConfig
	Logger  *slog.Logger
	Storage storage.Backend
	Influx  *influx.Manager
	Context *mission.Context
	Files   *cache.FileCache
	Media   scenario.MediaGate
}

// Engine owns the world and the team scheduler of one session. Commands may arrive from any
// goroutine; the engine runs them one at a time.
type Engine struct {
	deps Dependencies
	log  *slog.Logger

	w      *world.WorldState
	loader *scenario.Loader
	teams  *team.Scheduler

	serial cache.SafeCounter
	open   map[*team.Team]*model.TeamRecord

	sessionID    string
	sessionOpen  bool
	scenario     string
	scenarioSeed uint32
	active       bool
	frames       int
	carryTimer   int

	mu sync.Mutex
}

// New creates an engine. Storage is required; the rest defaults to something usable.
func New(deps Dependencies) (*Engine, error) {
	if deps.Storage == nil {
		return nil, errors.New("session: storage backend is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Context == nil {
		deps.Context = mission.NewContext()
	}
	if deps.Files == nil {
		deps.Files = cache.NewFileCache()
	}
	if deps.Media == nil {
		deps.Media = scenario.AnyMedia{}
	}
	return &Engine{
		deps: deps,
		log:  deps.Logger.With("component", "session"),
		open: make(map[*team.Team]*model.TeamRecord),
	}, nil
}

// World returns the simulation state. Callers must not use it while a command runs.
func (e *Engine) World() *world.WorldState { return e.w }

// Teams returns the team scheduler.
func (e *Engine) Teams() *team.Scheduler { return e.teams }

// SessionID returns the UUID of the open session, or "" before StartSession.
func (e *Engine) SessionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionID
}

// Scenario returns the name of the scenario in play.
func (e *Engine) Scenario() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scenario
}

// Active reports whether a scenario is in play.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// dataPath resolves a configured file name against the scenario directory.
func (e *Engine) dataPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(e.deps.Config.ScenarioDir, name)
}

// InitGame does the one-time setup: the rules, expansion and briefing files are read, the world
// and its pools are built and the scenario loader is prepared. A seed of 0 is replaced by one
// taken from the clock.
func (e *Engine) InitGame(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg := e.deps.Config
	rulesFile, err := e.deps.Files.Optional(e.dataPath(cfg.RulesFile))
	if err != nil {
		return fmt.Errorf("reading rules: %w", err)
	}
	aftermath, err := e.deps.Files.Optional(e.dataPath(cfg.AftermathFile))
	if err != nil {
		return fmt.Errorf("reading expansion rules: %w", err)
	}
	missionFile, err := e.deps.Files.Optional(e.dataPath(cfg.MissionFile))
	if err != nil {
		return fmt.Errorf("reading mission briefings: %w", err)
	}
	if rulesFile == nil {
		e.log.Warn("rules file not found, using built-in defaults", "path", e.dataPath(cfg.RulesFile))
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint32(time.Now().UnixNano())
	}

	w := world.New(rules.New(), seed)
	w.Log = e.deps.Logger
	w.Session.Seed = seed
	w.CreateHouses()

	teams, err := team.NewScheduler(w)
	if err != nil {
		return fmt.Errorf("creating team scheduler: %w", err)
	}
	teams.SetObserver(recorder{e})

	loader, err := scenario.NewLoader(scenario.Options{
		Dir:       cfg.ScenarioDir,
		Rules:     rulesFile,
		Aftermath: aftermath,
		Mission:   missionFile,
		Media:     e.deps.Media,
	})
	if err != nil {
		return fmt.Errorf("creating scenario loader: %w", err)
	}

	e.w, e.teams, e.loader = w, teams, loader
	e.log.InfoContext(ctx, "game initialized", "seed", seed, "rules", rulesFile != nil, "aftermath", aftermath != nil)
	return nil
}

// SelectGame fills the session settings from configuration and returns the scenario to start.
func (e *Engine) SelectGame() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.w == nil {
		return "", ErrNotInitialized
	}
	cfg := e.deps.Config
	s := e.w.Session
	s.Type = core.GameFromName(cfg.Type)
	s.BuildLevel = cfg.BuildLevel
	s.IsAftermath = cfg.Aftermath
	s.IsCounterstrike = cfg.Counterstrike
	s.Options = world.GameOptions{
		Credits:   cfg.Credits,
		Bases:     cfg.Bases,
		Tiberium:  cfg.Tiberium,
		Goodies:   cfg.Goodies,
		UnitCount: cfg.UnitCount,
		AIPlayers: cfg.AIPlayers,
	}

	s.Players = s.Players[:0]
	for i, p := range cfg.Players {
		h := core.HouseFromName(p.House)
		if !h.IsValid() {
			return "", fmt.Errorf("player %d (%s): unknown house %q", i, p.Name, p.House)
		}
		s.Players = append(s.Players, world.PlayerInfo{Name: p.Name, House: h, Color: p.Color, ID: core.HouseType(i)})
	}

	diff := core.DiffFromName(cfg.Difficulty)
	e.w.Scen.Difficulty = diff
	e.w.Scen.CDifficulty = core.DiffHard - diff

	name := cfg.Scenario
	if s.IsMultiplayer() {
		if len(s.Players) == 0 {
			return "", errors.New("a multiplayer session needs at least one player")
		}
		if name == "" || name == DefaultCampaign {
			name = DefaultMultiplayer
		}
		s.Scenario = scenario.DisectName(name).Scenario
	} else if name == "" {
		name = DefaultCampaign
	}

	e.log.Info("game selected", "type", s.Type, "scenario", name, "players", len(s.Players), "difficulty", diff)
	return name, nil
}

// StartSession opens the session record. Calling it again while a session is open does nothing.
func (e *Engine) StartSession(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startSession(ctx)
}

func (e *Engine) startSession(ctx context.Context) error {
	if e.w == nil {
		return ErrNotInitialized
	}
	if e.sessionOpen {
		return nil
	}
	id := uuid.NewString()
	rec := convert.SessionToModel(id, e.w.Session, e.w.Scen.Difficulty, time.Now())
	if err := e.deps.Storage.StartSession(&rec); err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	e.sessionID = id
	e.sessionOpen = true
	e.frames = 0
	e.serial.Set(0)
	e.deps.Context.SetSession(id, rec.ID)
	e.log.InfoContext(ctx, "session started", "session", id, "type", e.w.Session.Type)
	return nil
}

// StartScenario loads name into the world and opens the initial teams. The load is recorded
// whether or not it succeeds.
func (e *Engine) StartScenario(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startScenario(ctx, name)
}

func (e *Engine) startScenario(ctx context.Context, name string) error {
	if e.w == nil {
		return ErrNotInitialized
	}
	if err := e.startSession(ctx); err != nil {
		return err
	}

	e.retireOpenTeams()
	e.frames += e.w.Frame
	e.active = false
	e.deps.Context.SetScenario(name)
	e.deps.Context.SetFrame(0)

	e.scenarioSeed = e.w.Rand.Seed
	start := time.Now()
	err := e.loader.Read(ctx, e.w, name)
	elapsed := time.Since(start)

	load := convert.ScenarioLoadToModel(e.w, name, err, elapsed, time.Now())
	if serr := e.deps.Storage.RecordScenarioLoad(&load); serr != nil {
		e.log.Error("failed to record scenario load", "scenario", name, "error", serr)
	}
	if ierr := e.deps.Influx.ScenarioLoad(influx.LoadSample{
		Session:   e.sessionID,
		Scenario:  name,
		Stage:     load.Stage,
		Failed:    err != nil,
		Duration:  elapsed,
		TeamTypes: load.TeamTypes,
		Triggers:  load.Triggers,
		Objects:   load.Objects,
	}); ierr != nil {
		e.log.Warn("failed to write load metric", "error", ierr)
	}
	if err != nil {
		return err
	}

	e.scenario = name
	e.active = true
	e.createInitialTeams()
	if lines := util.BriefingLines(e.w.Scen.Briefing); len(lines) > 0 {
		e.log.DebugContext(ctx, "briefing", "scenario", name, "lines", lines)
	}
	return nil
}

// createInitialTeams forms InitNum teams of every team type, never more than the type allows.
func (e *Engine) createInitialTeams() {
	for _, tt := range e.w.TeamTypes.Items() {
		for i := 0; i < tt.InitNum && tt.Number < tt.MaxAllowed; i++ {
			if _, err := e.teams.CreateOneOf(tt); err != nil {
				e.log.Warn("initial team not created", "team", tt.Name, "error", err)
				break
			}
		}
	}
}

// Tick advances the simulation by one frame.
func (e *Engine) Tick(ctx context.Context) (team.TickStats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick(ctx)
}

func (e *Engine) tick(ctx context.Context) (team.TickStats, error) {
	if !e.active {
		return team.TickStats{}, ErrNoScenario
	}
	e.w.Tick()
	stats := e.teams.Tick(ctx)
	e.autocreate()
	e.deps.Context.SetFrame(e.w.Frame)
	if err := e.deps.Influx.TeamTick(influx.TickSample{
		Session:   e.sessionID,
		Scenario:  e.scenario,
		Frame:     e.w.Frame,
		Active:    stats.Active,
		Members:   stats.Members,
		Disbanded: stats.Disbanded,
	}); err != nil {
		e.log.Warn("failed to write tick metric", "error", err)
	}
	return stats, nil
}

// autocreate gives every computer house a chance to form a new team once per team delay.
func (e *Engine) autocreate() {
	delay := e.teams.TeamDelay()
	if delay <= 0 || e.w.Frame%delay != 0 {
		return
	}
	for _, h := range e.w.Houses {
		if h == nil || h.IsHuman || h.IsDefeated {
			continue
		}
		tt := e.teams.SuggestedNewTeam(h, false)
		if tt == nil {
			continue
		}
		if _, err := e.teams.CreateOneOf(tt); err != nil {
			e.log.Debug("autocreate skipped", "house", h.Class, "team", tt.Name, "error", err)
		}
	}
}

// Run advances the simulation ticks frames, or until ctx is done when ticks is not positive.
// It stops early when the scenario ends and returns the number of frames run.
func (e *Engine) Run(ctx context.Context, ticks int) (int, error) {
	ran := 0
	for ticks <= 0 || ran < ticks {
		if err := ctx.Err(); err != nil {
			return ran, err
		}
		e.mu.Lock()
		_, err := e.tick(ctx)
		e.mu.Unlock()
		if err != nil {
			return ran, err
		}
		ran++
	}
	return ran, nil
}

// End closes the session record with result. Live teams are closed first.
func (e *Engine) End(result string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.end(result)
}

func (e *Engine) end(result string) error {
	if !e.sessionOpen {
		return nil
	}
	e.retireOpenTeams()
	frames := e.frames
	if e.w != nil {
		frames += e.w.Frame
	}
	e.active = false
	e.sessionOpen = false
	if err := e.deps.Storage.EndSession(result, frames); err != nil {
		return fmt.Errorf("ending session: %w", err)
	}
	e.log.Info("session ended", "session", e.sessionID, "result", result, "frames", frames)
	if ex, ok := e.deps.Storage.(storage.Exporter); ok && ex.ExportedFilePath() != "" {
		e.log.Info("session report written", "path", ex.ExportedFilePath())
	}
	return nil
}

// retireOpenTeams closes the record of every team still live, used before the pool is cleared.
func (e *Engine) retireOpenTeams() {
	for t, rec := range e.open {
		e.closeRecord(t, rec)
	}
	clear(e.open)
}

// sessionFileExists reports whether a scenario file is present under the scenario directory in
// either letter case.
func (e *Engine) sessionFileExists(name string) (string, bool) {
	for _, candidate := range []string{name, strings.ToLower(name)} {
		if _, err := os.Stat(filepath.Join(e.deps.Config.ScenarioDir, candidate)); err == nil {
			return candidate, true
		}
	}
	return "", false
}
