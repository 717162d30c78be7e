// Package house seats the players of a multiplayer session in the MULTI house slots.
package house

import (
	"fmt"
	"sort"

	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/world"
)

// ColorCount is the number of distinct player colors.
const ColorCount = 8

// ComputerName is the IniName given to every computer-controlled house.
const ComputerName = "Computer"

// AssignHouses seats every lobby player and every computer opponent in a MULTI slot. Humans take
// the slots in ascending color order; computer players follow with a random unused color. Slots
// past the last seated player are marked defeated. The local player (Players[0]) becomes
// w.PlayerPtr.
func AssignHouses(w *world.WorldState) error {
	s := w.Session
	humans := len(s.Players)
	seats := humans + s.Options.AIPlayers
	if seats > w.Rules.MaxPlayers || seats > ColorCount {
		return fmt.Errorf("assigning houses: %d seats exceed %d slots", seats, min(w.Rules.MaxPlayers, ColorCount))
	}

	var colorUsed [ColorCount]bool
	order := make([]int, humans)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return s.Players[order[a]].Color < s.Players[order[b]].Color
	})

	tech := w.Rules.TechLevel(s.BuildLevel)
	for i, index := range order {
		p := &s.Players[index]
		if p.Color < 0 || p.Color >= ColorCount || colorUsed[p.Color] {
			return fmt.Errorf("assigning houses: player %q has invalid or duplicate color %d", p.Name, p.Color)
		}
		colorUsed[p.Color] = true

		slot := core.HouseMulti1 + core.HouseType(i)
		h := w.House(slot)
		h.IniName = p.Name
		h.IsHuman = true
		h.InitData(p.Color, p.House, s.Options.Credits)
		if index == 0 {
			w.PlayerPtr = h
		}
		h.TechLevel = tech
		h.AssignHandicap(w.Scen.Difficulty)
		p.ID = slot
	}

	for i := humans; i < seats; i++ {
		h := w.House(core.HouseMulti1 + core.HouseType(i))

		actLike := core.HouseUSSR
		if w.Rand.Percent(50) {
			actLike = core.HouseGreece
		}

		color := w.Rand.Range(0, ColorCount-1)
		for colorUsed[color] {
			color = w.Rand.Range(0, ColorCount-1)
		}
		colorUsed[color] = true

		h.IsHuman = false
		h.IsStarted = true
		h.IniName = ComputerName
		if s.Type != core.GameNormal {
			h.IQ = w.Rules.MaxIQ
		}
		h.InitData(color, actLike, s.Options.Credits)
		h.TechLevel = tech
		h.AssignHandicap(computerDifficulty(w))
	}

	for i := seats; i < w.Rules.MaxPlayers; i++ {
		if h := w.House(core.HouseMulti1 + core.HouseType(i)); h != nil {
			h.IsDefeated = true
		}
	}

	w.Log.Debug("houses assigned", "humans", humans, "computers", s.Options.AIPlayers)
	return nil
}

// computerDifficulty eases the computer by one step in games with more than one human.
func computerDifficulty(w *world.WorldState) core.DiffType {
	diff := w.Scen.CDifficulty
	if len(w.Session.Players) > 1 && w.Rules.IsCompEasyBonus && diff > core.DiffEasy {
		diff--
	}
	return diff
}

// RemoveAIPlayers strips every computer house seated after the human players of the objects the
// map authored for it. Seated computers keep playing and receive starting forces afterwards.
func RemoveAIPlayers(w *world.WorldState) {
	for i := len(w.Session.Players); i < core.MultiCount; i++ {
		h := w.House(core.HouseMulti1 + core.HouseType(i))
		if h == nil || h.IsHuman {
			continue
		}
		w.ClobberAll(h.Class)
	}
}
