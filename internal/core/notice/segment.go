// Package notice splits an assembled document stream into foreclosure notices
// and recovers the debtor name, property address, loan amount and auction
// date of each one.
package notice

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/foreclosure-notices/constants"
)

// anchorRe matches the phrase that opens a notice. Only the M of Mortgage is
// case-insensitive.
var anchorRe = regexp.MustCompile(`\([Mm]ortgage Foreclosure\)`)

// Segment splits stream at every anchor. Text before the first anchor is
// dropped; each remaining chunk is trimmed and re-prefixed with the canonical
// anchor. No anchors yields an empty slice.
func Segment(stream string) []string {
	chunks := anchorRe.Split(stream, -1)
	if len(chunks) < 2 {
		return []string{}
	}
	segments := make([]string, 0, len(chunks)-1)
	for _, c := range chunks[1:] {
		segments = append(segments, constants.AnchorPhrase+strings.TrimSpace(c))
	}
	return segments
}

// CountAnchors reports how many anchors stream contains.
func CountAnchors(stream string) int {
	return len(anchorRe.FindAllStringIndex(stream, -1))
}
