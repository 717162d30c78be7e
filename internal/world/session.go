package world

import "github.com/rasim/simcore/internal/model/core"

// PlayerInfo is one human seat of a multiplayer session.
type PlayerInfo struct {
	Name  string         `json:"name" mapstructure:"name"`
	House core.HouseType `json:"house" mapstructure:"house"`
	Color int            `json:"color" mapstructure:"color"`

	// ID is the multiplayer slot the player was seated in.
	ID core.HouseType `json:"-" mapstructure:"-"`
}

// GameOptions are the skirmish/network lobby settings.
type GameOptions struct {
	Credits   int  `json:"credits"`
	Bases     bool `json:"bases"`
	Tiberium  bool `json:"tiberium"`
	Goodies   bool `json:"goodies"`
	Ghosts    bool `json:"ghosts"`
	UnitCount int  `json:"unitCount"`
	AIPlayers int  `json:"aiPlayers"`
}

// Session describes how the current game was started.
type Session struct {
	Type       core.GameType
	Players    []PlayerInfo
	Options    GameOptions
	BuildLevel int
	Unshroud   bool
	Seed       uint32
	Special    uint32

	// Scenario is the multiplayer map number; campaigns use Scenario.Scenario instead.
	Scenario int

	IsAftermath     bool
	IsCounterstrike bool
	IsOfficial      bool
	IsEditing       bool
}

// NewSession returns the settings of a fresh single-player campaign.
func NewSession() *Session {
	return &Session{
		Type:       core.GameNormal,
		BuildLevel: 10,
		IsOfficial: true,
		Options: GameOptions{
			Credits:   10000,
			Bases:     true,
			Tiberium:  true,
			Goodies:   true,
			UnitCount: 10,
		},
	}
}

// IsMultiplayer reports whether houses are assigned from the lobby rather than the scenario.
func (s *Session) IsMultiplayer() bool {
	return s.Type != core.GameNormal
}

// NumPlayers counts human and computer seats.
func (s *Session) NumPlayers() int {
	return len(s.Players) + s.Options.AIPlayers
}
