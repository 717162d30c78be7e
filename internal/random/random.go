// Package random provides the deterministic linear congruential generator shared by every peer
// of a lockstep session. Its seed is part of the recorded and saved state.
package random

const (
	multConstant    = 0x41C64E6D
	addConstant     = 0x00003039
	throwAwayBits   = 10
	significantBits = 15
	maxValue        = (1 << significantBits) - 1
)

// Random is the simulation random number generator.
type Random struct {
	Seed uint32
}

// New returns a generator primed with seed.
func New(seed uint32) *Random {
	return &Random{Seed: seed}
}

// Next advances the generator and returns a 15-bit value.
func (r *Random) Next() int {
	r.Seed = r.Seed*multConstant + addConstant
	return int((r.Seed >> throwAwayBits) & maxValue)
}

// Range returns a value in [lo, hi] inclusive. The bounds may be given in either order.
func (r *Random) Range(lo, hi int) int {
	if lo == hi {
		return lo
	}
	if lo > hi {
		lo, hi = hi, lo
	}

	magnitude := hi - lo
	if magnitude > maxValue {
		magnitude = maxValue
	}

	mask := 1
	for mask <= magnitude {
		mask <<= 1
	}
	mask--

	pick := r.Next() & mask
	for pick > magnitude {
		pick = r.Next() & mask
	}
	return pick + lo
}

// Percent returns true with the given chance out of 100.
func (r *Random) Percent(chance int) bool {
	return r.Range(0, 99) < chance
}
