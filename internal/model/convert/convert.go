package convert

import (
	"encoding/json"
	"fmt"

	"github.com/rasim/simcore/internal/geo"
	"github.com/rasim/simcore/internal/model"
	"github.com/rasim/simcore/internal/model/core"
)

// Players decodes the lobby seats of a stored session.
func Players(s model.Session) ([]Player, error) {
	var players []Player
	if len(s.Players) == 0 {
		return players, nil
	}
	if err := json.Unmarshal(s.Players, &players); err != nil {
		return nil, fmt.Errorf("decoding session players: %w", err)
	}
	return players, nil
}

// TeamMissions decodes the stored program of a team.
func TeamMissions(rec model.TeamRecord) ([]model.TeamMission, error) {
	var missions []model.TeamMission
	if len(rec.Missions) == 0 {
		return missions, nil
	}
	if err := json.Unmarshal(rec.Missions, &missions); err != nil {
		return nil, fmt.Errorf("decoding missions of team %s: %w", rec.TypeName, err)
	}
	return missions, nil
}

// RallyCells decodes the stored rally path of a team.
func RallyCells(rec model.TeamRecord) ([]core.Cell, error) {
	return geo.ParseCells(rec.RallyPath)
}

// StartPositions decodes the stored start cells of a scenario load.
func StartPositions(l model.ScenarioLoad) ([]core.Cell, error) {
	return geo.ParseCells(l.StartPositions)
}
