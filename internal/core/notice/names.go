package notice

import (
	"regexp"
	"strings"
)

var (
	// A run of letters, digits, whitespace, periods and parentheses, with an
	// optional trailing comma, directly in front of the anchor.
	nameRe = regexp.MustCompile(`([\p{L}\p{M}\p{N}_\s.()]+(?:,\s*)?)\([Mm]ortgage Foreclosure\)`)

	enumerationRe = regexp.MustCompile(`^\d+\)\s`)
)

// ExtractNames scans stream for the name in front of every anchor, in
// document order. The scan is independent of Segment, so the two counts can
// disagree.
func ExtractNames(stream string) []string {
	matches := nameRe.FindAllStringSubmatch(stream, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, cleanName(m[1]))
	}
	return names
}

func cleanName(raw string) string {
	name := strings.TrimSpace(strings.ReplaceAll(raw, "\n", " "))
	name = strings.TrimSuffix(name, ",")
	name = enumerationRe.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}
