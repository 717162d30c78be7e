package session

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// SaveRecording writes the header of the game in play to path. The seed stored is the generator
// state the scenario was loaded with, so a replay builds the same world.
func (e *Engine) SaveRecording(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.w == nil {
		return ErrNotInitialized
	}
	if e.scenario == "" {
		return ErrNoScenario
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating recording: %w", err)
	}
	h := HeaderOf(e.w, e.scenario)
	h.Seed = e.scenarioSeed
	if err := WriteRecordHeader(f, h); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing recording: %w", err)
	}
	e.log.Info("recording saved", "path", path, "scenario", e.scenario, "seed", h.Seed)
	return nil
}

// LoadRecording restores the session settings stored at path and starts the recorded scenario.
// The generator runs from the recorded seed; a replay is never reseeded.
func (e *Engine) LoadRecording(ctx context.Context, path string) (RecordHeader, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.w == nil {
		return RecordHeader{}, ErrNotInitialized
	}

	f, err := os.Open(path)
	if err != nil {
		return RecordHeader{}, fmt.Errorf("opening recording: %w", err)
	}
	defer f.Close()

	h, err := ReadRecordHeader(f)
	if err != nil {
		return RecordHeader{}, err
	}
	if h.ScenarioName == "" {
		return h, errors.New("recording names no scenario")
	}

	h.Apply(e.w)
	e.log.InfoContext(ctx, "recording loaded", "path", path, "scenario", h.ScenarioName, "seed", h.Seed)
	return h, e.startScenario(ctx, h.ScenarioName)
}
