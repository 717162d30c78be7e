package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimQuotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"no quotes", "hello", "hello"},
		{"double quoted", `"hello"`, "hello"},
		{"single quotes only", "'hello'", "'hello'"},
		{"quotes in middle", `he"llo`, `he"llo`},
		{"only quotes", `""`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TrimQuotes(tt.input))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Soviet", Truncate("Soviet", 10))
	assert.Equal(t, "Sov", Truncate("Soviet", 3))
	assert.Equal(t, "", Truncate("Soviet", 0))
	// "é" is two bytes; cutting inside it drops the whole rune
	assert.Equal(t, "caf", Truncate("café", 4))
	assert.Equal(t, "café", Truncate("café", 5))
}

func TestBriefingLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", nil},
		{"blank", "   ", nil},
		{"single line", "Rescue Einstein.", []string{"Rescue Einstein."}},
		{"line break", "Rescue Einstein.@Destroy the SAM sites.", []string{"Rescue Einstein.", "Destroy the SAM sites."}},
		{"paragraph", "Part one.@@Part two.", []string{"Part one.", "", "Part two."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BriefingLines(tt.input))
		})
	}
}

func TestFormatBriefing(t *testing.T) {
	assert.Equal(t, "A\n\nB", FormatBriefing("A @@ B"))
	assert.Equal(t, "", FormatBriefing(""))
}
