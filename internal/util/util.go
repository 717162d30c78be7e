// Package util holds small text helpers shared by the loader, the storage models and the CLI.
package util

import "strings"

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// Truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// BriefingLines splits briefing text into display lines. An '@' is a line break, so "@@"
// leaves an empty line between paragraphs.
func BriefingLines(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	lines := strings.Split(s, "@")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}

// FormatBriefing renders briefing text with newlines for the line breaks.
func FormatBriefing(s string) string {
	return strings.Join(BriefingLines(s), "\n")
}
