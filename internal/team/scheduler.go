package team

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/rules"
	"github.com/rasim/simcore/internal/world"
)

// ErrMaxAllowed is returned when a team type already has its maximum number of live teams.
var ErrMaxAllowed = errors.New("team type at maximum allowed")

// TickStats summarizes one scheduler pass.
type TickStats struct {
	Active    int
	Members   int
	Disbanded int
}

// Observer is told when a team is formed and when it is retired. Clear does not report.
type Observer interface {
	TeamCreated(t *Team)
	TeamDisbanded(t *Team)
}

// Scheduler owns the live team pool and runs every team's AI once per game tick.
type Scheduler struct {
	w        *world.WorldState
	teams    *world.Heap[Team]
	log      *slog.Logger
	observer Observer

	// OTEL metrics
	ticks     metric.Int64Counter
	disbanded metric.Int64Counter
	recruited metric.Int64Counter
}

// NewScheduler creates the team pool for w and installs it as the world's team view.
// Uses the global OTel meter for metrics (no-op if not configured).
func NewScheduler(w *world.WorldState) (*Scheduler, error) {
	s := &Scheduler{
		w:     w,
		teams: world.NewHeap[Team](w.Rules.TeamMax),
		log:   w.Log.With("component", "team"),
	}

	m := meter()

	var err error

	s.ticks, err = m.Int64Counter(
		"team.ai.ticks",
		metric.WithDescription("Team AI passes run"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}

	s.disbanded, err = m.Int64Counter(
		"team.disbanded",
		metric.WithDescription("Teams retired after their AI asked to disband"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating disbanded counter: %w", err)
	}

	s.recruited, err = m.Int64Counter(
		"team.recruited",
		metric.WithDescription("Objects recruited onto teams"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating recruited counter: %w", err)
	}

	w.Teams = s
	return s, nil
}

// SetObserver installs o to hear about team creation and retirement. Pass nil to remove it.
func (s *Scheduler) SetObserver(o Observer) {
	s.observer = o
}

// Create builds a live team of type tt for house.
func (s *Scheduler) Create(tt *world.TeamType, house *world.House) (*Team, error) {
	if house == nil {
		return nil, fmt.Errorf("team %s: no house", tt.Name)
	}
	t, id, err := s.teams.Allocate()
	if err != nil {
		return nil, fmt.Errorf("creating team %s: %w", tt.Name, err)
	}
	t.init(id, s.w, s, tt, house)
	s.log.Debug("team created", "team", tt.Name, "id", id, "house", house.Class)
	if s.observer != nil {
		s.observer.TeamCreated(t)
	}
	return t, nil
}

// Tick runs the AI of every live team in pool order and retires those that disband.
func (s *Scheduler) Tick(ctx context.Context) TickStats {
	var stats TickStats
	for _, id := range s.teams.IDs() {
		t := s.teams.ByID(id)
		if t == nil || !t.IsActive {
			continue
		}
		if t.AI() == Disband {
			s.log.Debug("team disbanded", "team", t.Class.Name, "id", id)
			s.disbanded.Add(ctx, 1, metric.WithAttributes(attribute.String("team", t.Class.Name)))
			s.destroy(t)
			stats.Disbanded++
			continue
		}
		stats.Active++
		stats.Members += len(t.members)
	}
	s.ticks.Add(ctx, int64(stats.Active+stats.Disbanded))
	return stats
}

func (s *Scheduler) noteRecruited(n int) {
	s.recruited.Add(context.Background(), int64(n))
}

// destroy releases every member, drops the team's trigger instance once nothing else holds it
// and frees the slot.
func (s *Scheduler) destroy(t *Team) {
	if s.observer != nil {
		s.observer.TeamDisbanded(t)
	}
	for len(t.members) > 0 {
		t.Remove(t.members[0])
	}
	t.Class.Number--
	if t.Trigger != nil && t.Trigger.AttachCount == 0 {
		s.w.DeleteTrigger(t.Trigger)
	}
	t.IsActive = false
	s.teams.Free(t.id)
}

// Destroy retires t immediately.
func (s *Scheduler) Destroy(t *Team) {
	if s.teams.ByID(t.id) != t {
		return
	}
	s.destroy(t)
}

// Clear drops every team without touching the member objects' state beyond their team link.
func (s *Scheduler) Clear() {
	for _, t := range s.teams.Items() {
		for _, f := range t.members {
			f.Team = nil
		}
		t.Class.Number--
	}
	s.teams.Clear()
}

// Count returns the number of live teams.
func (s *Scheduler) Count() int { return s.teams.Count() }

// Teams returns the live teams in pool order.
func (s *Scheduler) Teams() []*Team { return s.teams.Items() }

// ByID returns the team in slot id, or nil.
func (s *Scheduler) ByID(id int) *Team { return s.teams.ByID(id) }

// Detach drops every team's reference to target.
func (s *Scheduler) Detach(target core.Target) {
	for _, t := range s.teams.Items() {
		t.Detach(target)
	}
}

// SuspendTeams empties every team of house whose priority is below priority and holds it
// dormant for the rules' suspend delay, freeing its members for a more urgent team.
func (s *Scheduler) SuspendTeams(priority int, house *world.House) {
	delay := s.w.Rules.SuspendDelay.MulInt(rules.TicksPerMinute)
	for _, t := range s.teams.Items() {
		if t.House != house || t.Class.RecruitPriority >= priority {
			continue
		}
		for len(t.members) > 0 {
			t.Remove(t.members[0])
		}
		t.IsAltered = true
		t.SuspendTimer = delay
		t.Suspended = true
	}
}

// TeamDelay returns the number of ticks between autocreate attempts for a house.
func (s *Scheduler) TeamDelay() int {
	return s.w.Rules.TeamDelay.MulInt(rules.TicksPerMinute)
}
