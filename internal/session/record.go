package session

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/rasim/simcore/internal/model/core"
	"github.com/rasim/simcore/internal/world"
)

// ScenarioNameSize is the fixed width of the scenario name in a record header, terminator
// included.
const ScenarioNameSize = 44

// RecordHeader is the session state written at the start of a recording. Replaying a recording
// restores these values before the scenario is loaded.
type RecordHeader struct {
	Type         core.GameType
	BuildLevel   int
	Unshroud     bool
	Seed         uint32
	Scenario     int
	ScenarioName string
	PlayerHouse  core.HouseType
	Special      uint32
	Options      world.GameOptions
}

// wireHeader is the on-disk layout, little-endian with no padding.
type wireHeader struct {
	Type         int32
	BuildLevel   int32
	Unshroud     int32
	Seed         uint32
	Scenario     int32
	ScenarioName [ScenarioNameSize]byte
	PlayerHouse  int32
	Special      uint32
	Options      wireOptions
}

type wireOptions struct {
	Credits   int32
	Bases     int32
	Tiberium  int32
	Goodies   int32
	Ghosts    int32
	UnitCount int32
	AIPlayers int32
}

// RecordHeaderSize is the encoded size of a header in bytes.
var RecordHeaderSize = binary.Size(wireHeader{})

// HeaderOf captures the recording header for the game in w. name is the scenario file in play.
func HeaderOf(w *world.WorldState, name string) RecordHeader {
	s := w.Session
	return RecordHeader{
		Type:         s.Type,
		BuildLevel:   s.BuildLevel,
		Unshroud:     s.Unshroud,
		Seed:         s.Seed,
		Scenario:     w.Scen.Scenario,
		ScenarioName: name,
		PlayerHouse:  w.Scen.PlayerHouse,
		Special:      s.Special,
		Options:      s.Options,
	}
}

// Apply copies the header into w and primes the random generator with the recorded seed, so a
// replay draws the same numbers the recorded game did. Nothing is taken from the clock.
func (h RecordHeader) Apply(w *world.WorldState) {
	s := w.Session
	s.Type = h.Type
	s.BuildLevel = h.BuildLevel
	s.Unshroud = h.Unshroud
	s.Seed = h.Seed
	w.Rand.Seed = h.Seed
	s.Special = h.Special
	s.Options = h.Options
	w.Scen.Scenario = h.Scenario
	w.Scen.PlayerHouse = h.PlayerHouse
	if s.IsMultiplayer() {
		s.Scenario = h.Scenario
	}
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// WriteRecordHeader encodes h to out.
func WriteRecordHeader(out io.Writer, h RecordHeader) error {
	if len(h.ScenarioName) >= ScenarioNameSize {
		return fmt.Errorf("scenario name %q longer than %d bytes", h.ScenarioName, ScenarioNameSize-1)
	}
	o := h.Options
	wh := wireHeader{
		Type:        int32(h.Type),
		BuildLevel:  int32(h.BuildLevel),
		Unshroud:    boolInt(h.Unshroud),
		Seed:        h.Seed,
		Scenario:    int32(h.Scenario),
		PlayerHouse: int32(h.PlayerHouse),
		Special:     h.Special,
		Options: wireOptions{
			Credits:   int32(o.Credits),
			Bases:     boolInt(o.Bases),
			Tiberium:  boolInt(o.Tiberium),
			Goodies:   boolInt(o.Goodies),
			Ghosts:    boolInt(o.Ghosts),
			UnitCount: int32(o.UnitCount),
			AIPlayers: int32(o.AIPlayers),
		},
	}
	copy(wh.ScenarioName[:], h.ScenarioName)
	if err := binary.Write(out, binary.LittleEndian, &wh); err != nil {
		return fmt.Errorf("writing record header: %w", err)
	}
	return nil
}

// ReadRecordHeader decodes a header written by WriteRecordHeader.
func ReadRecordHeader(in io.Reader) (RecordHeader, error) {
	var wh wireHeader
	if err := binary.Read(in, binary.LittleEndian, &wh); err != nil {
		return RecordHeader{}, fmt.Errorf("reading record header: %w", err)
	}
	name := wh.ScenarioName[:]
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	o := wh.Options
	return RecordHeader{
		Type:         core.GameType(wh.Type),
		BuildLevel:   int(wh.BuildLevel),
		Unshroud:     wh.Unshroud != 0,
		Seed:         wh.Seed,
		Scenario:     int(wh.Scenario),
		ScenarioName: string(name),
		PlayerHouse:  core.HouseType(wh.PlayerHouse),
		Special:      wh.Special,
		Options: world.GameOptions{
			Credits:   int(o.Credits),
			Bases:     o.Bases != 0,
			Tiberium:  o.Tiberium != 0,
			Goodies:   o.Goodies != 0,
			Ghosts:    o.Ghosts != 0,
			UnitCount: int(o.UnitCount),
			AIPlayers: int(o.AIPlayers),
		},
	}, nil
}
