package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext_Deterministic(t *testing.T) {
	a := New(1234)
	b := New(1234)

	for range 100 {
		assert.Equal(t, a.Next(), b.Next())
	}
	assert.Equal(t, a.Seed, b.Seed)
}

func TestNext_FirstValue(t *testing.T) {
	r := New(0)
	// seed becomes 0x3039; 0x3039 >> 10 == 12
	assert.Equal(t, 12, r.Next())
	assert.Equal(t, uint32(0x3039), r.Seed)
}

func TestRange_Bounds(t *testing.T) {
	r := New(42)
	for range 1000 {
		v := r.Range(3, 9)
		assert.GreaterOrEqual(t, v, 3)
		assert.LessOrEqual(t, v, 9)
	}
}

func TestRange_SwappedAndEqual(t *testing.T) {
	r := New(7)
	assert.Equal(t, 5, r.Range(5, 5))

	for range 100 {
		v := r.Range(10, 0)
		assert.GreaterOrEqual(t, v, 0)
		assert.LessOrEqual(t, v, 10)
	}
}
