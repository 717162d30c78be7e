package fixed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Fixed
	}{
		{"whole", "1", One},
		{"half", "0.5", Half},
		{"leading dot", ".25", 64},
		{"percent", "50%", Half},
		{"percent over one", "150%", 384},
		{"one and a half", "1.5", 384},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse("abc")
	assert.Error(t, err)

	_, err = Parse("")
	assert.Error(t, err)
}

func TestMulInt(t *testing.T) {
	assert.Equal(t, 5, Half.MulInt(10))
	assert.Equal(t, 10, One.MulInt(10))
	assert.Equal(t, -5, Half.MulInt(-10))
	assert.Equal(t, 9, FromRatio(9, 10).MulInt(10))
}

func TestSaturate(t *testing.T) {
	f, err := Parse("1.75")
	require.NoError(t, err)
	assert.Equal(t, One, f.Saturate(One))
	assert.Equal(t, Half, Half.Saturate(One))
}

func TestInt(t *testing.T) {
	assert.Equal(t, 2, FromInt(2).Int())
	assert.Equal(t, 0, Half.Int())
}
