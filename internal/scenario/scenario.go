// Package scenario builds a playable world from a scenario INI file: it clears the previous
// mission, layers the rules, reads every section in dependency order, applies the known fixes
// for shipped scenarios, synthesizes multiplayer forces and fills in the derived state.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/rasim/simcore/internal/ini"
	"github.com/rasim/simcore/internal/world"
)

// Load stages reported in LoadError.
const (
	StageMedia  = "media"
	StageParse  = "parse"
	StageDigest = "digest"
	StageRead   = "read"
)

// Sentinel errors wrapped by LoadError.
var (
	ErrMediaUnavailable = errors.New("required media not available")
	ErrDigestMismatch   = errors.New("scenario digest mismatch")
)

// LoadError reports which stage of a scenario load failed.
type LoadError struct {
	Scenario string
	Stage    string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load scenario %s (%s): %v", e.Scenario, e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// MediaGate asks the host to make a distribution disc available. cd is -1 when any disc will do.
type MediaGate interface {
	ForceAvailable(cd int) bool
}

// AnyMedia is a MediaGate for installs that carry every scenario locally.
type AnyMedia struct{}

// ForceAvailable always succeeds.
func (AnyMedia) ForceAvailable(int) bool { return true }

// Options configures a Loader.
type Options struct {
	// Dir is the directory scenario names are resolved against.
	Dir string
	// Rules is the base rules file; Aftermath is layered over it when the session enables the
	// expansion. Either may be nil.
	Rules     *ini.File
	Aftermath *ini.File
	// Mission holds briefing overrides keyed by scenario file name (MISSION.INI). May be nil.
	Mission *ini.File
	// Media defaults to AnyMedia.
	Media MediaGate
}

// Loader reads scenario files into a world.
type Loader struct {
	opts     Options
	official bool

	// OTEL metrics
	loadDuration metric.Float64Histogram
	loads        metric.Int64Counter
}

// NewLoader creates a loader.
// Uses the global OTel meter for metrics (no-op if not configured).
func NewLoader(opts Options) (*Loader, error) {
	if opts.Media == nil {
		opts.Media = AnyMedia{}
	}
	l := &Loader{opts: opts}

	m := meter()

	var err error

	l.loadDuration, err = m.Float64Histogram(
		"scenario.load.duration",
		metric.WithDescription("Time to read and fill in a scenario"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating load duration histogram: %w", err)
	}

	l.loads, err = m.Int64Counter(
		"scenario.loads",
		metric.WithDescription("Scenario loads attempted"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating loads counter: %w", err)
	}

	return l, nil
}

// Read clears w and loads the named scenario into it. On failure the world is left cleared
// and a *LoadError is returned.
func (l *Loader) Read(ctx context.Context, w *world.WorldState, name string) error {
	start := time.Now()
	Clear(w)

	w.ScenarioInit++
	err := l.ReadINI(w, name)
	if err == nil {
		if w.Session.IsMultiplayer() && !w.Session.IsEditing {
			multiplayerFixups(w, l.official)
		}
		FillInData(w)
	}
	w.ScenarioInit--

	elapsed := time.Since(start)
	result := "ok"
	if err != nil {
		result = "failed"
		w.Log.Error("Failed to load scenario "+name, "error", err)
	} else {
		w.Log.Info("scenario loaded", "scenario", name, "elapsed", elapsed)
	}
	attrs := metric.WithAttributes(attribute.String("scenario", name), attribute.String("result", result))
	l.loadDuration.Record(ctx, elapsed.Seconds(), attrs)
	l.loads.Add(ctx, 1, attrs)
	return err
}

// Clear resets w for a fresh scenario load. Calling it twice leaves the same state as calling
// it once.
func Clear(w *world.WorldState) {
	w.Reset()
	w.CreateHouses()
}

// ReadINI reads the scenario file into a cleared world without the multiplayer post-pass or
// the derived-state fill in.
func (l *Loader) ReadINI(w *world.WorldState, name string) error {
	w.ScenarioInit++
	defer func() { w.ScenarioInit-- }()

	base := filepath.Base(name)
	w.Scen.Name = base
	w.Scen.Scenario = DisectName(base).Scenario

	cd, check := requiredCD(w.Session, w.Scen, base)
	w.Scen.RequiredCD = cd
	if check && !l.opts.Media.ForceAvailable(cd) {
		return &LoadError{Scenario: base, Stage: StageMedia, Err: fmt.Errorf("cd %d: %w", cd, ErrMediaUnavailable)}
	}

	path := name
	if l.opts.Dir != "" && !filepath.IsAbs(name) {
		path = filepath.Join(l.opts.Dir, name)
	}
	f, res, err := ini.Load(path)
	if res == ini.LoadFailed {
		if err == nil {
			err = errors.New("unreadable scenario file")
		}
		return &LoadError{Scenario: base, Stage: StageParse, Err: err}
	}
	if res == ini.LoadDigestMismatch {
		if nameChar(base, 2) != 'M' || w.Scen.Scenario >= 25 {
			return &LoadError{Scenario: base, Stage: StageDigest, Err: ErrDigestMismatch}
		}
		w.Log.Warn("scenario digest is wrong; accepted for legacy multiplayer map", "scenario", base)
	}

	l.layerRules(w, f)
	readBasic(f, w.Scen)
	l.official = f.GetBool(basicSection, "Official", false)

	steps := []struct {
		name string
		fn   func(*ini.File, *world.WorldState) error
	}{
		{"houses", readHouses},
		{"team types", readTeamTypes},
		{"trigger types", readTriggerTypes},
		{"map", readMap},
		{"player", bindPlayer},
		{"terrain", readTerrain},
		{"units", readUnits},
		{"ships", readShips},
		{"infantry", readInfantry},
		{"aircraft", readAircraft},
		{"structures", readStructures},
		{"base", readBase},
		{"overlay", readOverlay},
		{"smudge", readSmudge},
	}
	for _, step := range steps {
		if err := step.fn(f, w); err != nil {
			return &LoadError{Scenario: base, Stage: StageRead, Err: fmt.Errorf("%s: %w", step.name, err)}
		}
		w.Callback()
	}

	l.readBriefing(f, w)
	applyPatches(w, base)
	w.Callback()
	return nil
}

// requiredCD decides which distribution disc the scenario lives on and whether the host must be
// asked for it. User-made scenarios are read from disk, so any disc will do.
func requiredCD(s *world.Session, scen *world.Scenario, name string) (int, bool) {
	if (s.IsMultiplayer() && !s.IsOfficial) || strings.EqualFold(name, "download.tmp") {
		return -1, false
	}

	player := nameChar(name, 2)
	switch {
	case scen.Scenario == 1 && player != 'A':
		return -1, true
	case s.IsMultiplayer():
		switch {
		case scen.Scenario >= 36:
			return 3, true
		case scen.Scenario >= 25:
			return 2, true
		}
		return -1, true
	case scen.Scenario >= 20 || player == 'A':
		if scen.Scenario >= 36 && player != 'A' {
			return 3, true
		}
		return 2, true
	case player == 'U':
		return 1, true
	case player == 'G':
		return 0, true
	}
	return scen.RequiredCD, true
}

// NameParts are the fields encoded in a scenario file name such as SCG01EA.INI.
type NameParts struct {
	Scenario int
	// Player is the house prefix: G (allied), U (soviet), J, M (multiplayer), A (ant missions).
	Player byte
	// Dir is E or W.
	Dir byte
	// Variant is the A..D variation letter.
	Variant byte
}

// DisectName splits a scenario file name into its parts. Two-letter numbers such as "A3" use
// the expansion base-36 numbering.
func DisectName(name string) NameParts {
	p := NameParts{
		Player:  nameChar(name, 2),
		Dir:     nameChar(name, 5),
		Variant: nameChar(name, 6),
	}
	first, second := nameChar(name, 3), nameChar(name, 4)
	if first == 0 || second == 0 {
		return p
	}
	if first > '9' || second > '9' {
		hi := int(first - '0')
		if first > '9' {
			hi = int(first - 'A')
		}
		lo := int(second - '0')
		if second > '9' {
			lo = int(second-'A') + 10
		}
		p.Scenario = 36*hi + lo
		return p
	}
	p.Scenario = int(first-'0')*10 + int(second-'0')
	return p
}

// nameChar returns the upper-cased byte at i, or 0 past the end.
func nameChar(name string, i int) byte {
	if i >= len(name) {
		return 0
	}
	c := name[i]
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	return c
}

// Official reports whether the last scenario read is flagged as an official map.
func (l *Loader) Official() bool { return l.official }
