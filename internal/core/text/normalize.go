package text

import "strings"

// Normalize collapses every run of whitespace (including newlines, tabs and
// Unicode spaces) into a single space and trims both ends.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	return strings.Join(strings.Fields(s), " ")
}
