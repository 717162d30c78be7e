package team

import (
	"fmt"

	"github.com/rasim/simcore/internal/world"
)

// maxSuggestions caps the candidate list SuggestedNewTeam draws from.
const maxSuggestions = 20

// CreateOneOf builds a team of type tt for the house the type names. While a scenario is being
// built the type's MaxAllowed does not apply.
func (s *Scheduler) CreateOneOf(tt *world.TeamType) (*Team, error) {
	if s.w.ScenarioInit == 0 && tt.Number >= tt.MaxAllowed {
		return nil, fmt.Errorf("team %s: %w", tt.Name, ErrMaxAllowed)
	}
	return s.Create(tt, s.w.House(tt.House))
}

// DestroyAllOf retires every live team of type tt.
func (s *Scheduler) DestroyAllOf(tt *world.TeamType) {
	for _, t := range s.teams.Items() {
		if t.Class == tt {
			s.destroy(t)
		}
	}
}

// SuggestedNewTeam picks at random one of the house's team types that still has room for
// another team. An alerted house only considers autocreate types; a calm one only the rest.
func (s *Scheduler) SuggestedNewTeam(house *world.House, alerted bool) *world.TeamType {
	var choices []*world.TeamType
	for _, tt := range s.w.TeamTypes.Items() {
		if len(choices) >= maxSuggestions {
			break
		}
		limit := tt.MaxAllowed
		if alerted != tt.IsAutocreate {
			limit = 0
		}
		if tt.House == house.Class && tt.Number < limit {
			choices = append(choices, tt)
		}
	}
	if len(choices) == 0 {
		return nil
	}
	return choices[s.w.Rand.Range(0, len(choices)-1)]
}
