package text

import (
	"strings"
	"unicode/utf8"
)

// Truncate cuts s to at most max bytes without splitting a rune and marks the cut.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// Preview flattens a request body to one line for logging.
func Preview(body []byte, max int) string {
	return Truncate(strings.Join(strings.Fields(string(body)), " "), max)
}
