package influx

import (
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
)

// TickSample is the team scheduler's state after one tick.
type TickSample struct {
	Session   string
	Scenario  string
	Frame     int
	Active    int
	Members   int
	Disbanded int
}

// LoadSample describes one scenario load attempt.
type LoadSample struct {
	Session   string
	Scenario  string
	Stage     string
	Failed    bool
	Duration  time.Duration
	TeamTypes int
	Triggers  int
	Objects   int
}

// TeamTickPoint builds the team_tick point for s.
func TeamTickPoint(s TickSample, at time.Time) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement(MeasurementTeamTick).
		AddTag("scenario", s.Scenario).
		AddField("frame", s.Frame).
		AddField("active", s.Active).
		AddField("members", s.Members).
		AddField("disbanded", s.Disbanded).
		SetTime(at)
	if s.Session != "" {
		p.AddTag("session", s.Session)
	}
	return p
}

// ScenarioLoadPoint builds the scenario_load point for s.
func ScenarioLoadPoint(s LoadSample, at time.Time) *influxdb2_write.Point {
	p := influxdb2_write.NewPointWithMeasurement(MeasurementScenarioLoad).
		AddTag("scenario", s.Scenario).
		AddField("duration_ms", float64(s.Duration.Microseconds())/1000).
		AddField("failed", s.Failed).
		AddField("team_types", s.TeamTypes).
		AddField("triggers", s.Triggers).
		AddField("objects", s.Objects).
		SetTime(at)
	if s.Session != "" {
		p.AddTag("session", s.Session)
	}
	if s.Failed {
		p.AddTag("stage", s.Stage)
	}
	return p
}

// TeamTick writes a team_tick point stamped now.
func (m *Manager) TeamTick(s TickSample) error {
	return m.WritePoint(TeamTickPoint(s, time.Now()))
}

// ScenarioLoad writes a scenario_load point stamped now.
func (m *Manager) ScenarioLoad(s LoadSample) error {
	return m.WritePoint(ScenarioLoadPoint(s, time.Now()))
}
