package notice

import (
	"fmt"
	"regexp"
	"strings"
)

// AddressRule names one step of the address cascade.
type AddressRule string

const (
	RuleGeneral             AddressRule = "general"
	RuleCommonlyKnownAs     AddressRule = "commonly_known_as"
	RuleSituatedUnit        AddressRule = "situated_unit"
	RuleCommonStreetAddress AddressRule = "common_street_address"
	RuleLoose               AddressRule = "loose"
	RuleMichigan            AddressRule = "michigan"
	RuleNone                AddressRule = "none"
)

// addressMatcher is one cascade step: a pattern and how to build the address
// from a match. build returns "" to reject a match; later matches of the same
// pattern are then tried before moving on to the next rule.
type addressMatcher struct {
	rule  AddressRule
	re    *regexp.Regexp
	build func(s string, loc []int) string
}

// group returns submatch i, or "" when it did not participate.
func group(s string, loc []int, i int) string {
	if loc[2*i] < 0 {
		return ""
	}
	return s[loc[2*i]:loc[2*i+1]]
}

func fullMatch(s string, loc []int) string { return strings.TrimSpace(s[loc[0]:loc[1]]) }

// joinParts rebuilds "street, city, ST ZIP" from groups 1-4.
func joinParts(s string, loc []int) string {
	return fmt.Sprintf("%s, %s, %s %s",
		strings.TrimSpace(group(s, loc, 1)), strings.TrimSpace(group(s, loc, 2)),
		group(s, loc, 3), group(s, loc, 4))
}

// streetAddress keeps the text from the house number to the end of the match.
// The house number is group 1, the first street token group 2.
func streetAddress(s string, loc []int) string {
	if timeOfDay[strings.ToUpper(group(s, loc, 2))] || recordingRef.MatchString(s[:loc[2]]) {
		return ""
	}
	return strings.TrimSpace(s[loc[2]:loc[1]])
}

// commonStreet prefers the run ending at a ZIP code, else the run ending at
// the sentence break.
func commonStreet(s string, loc []int) string {
	v := group(s, loc, 1)
	if v == "" {
		v = group(s, loc, 2)
	}
	return strings.TrimRight(strings.TrimSpace(v), ".,")
}

var (
	timeOfDay = map[string]bool{"AM": true, "PM": true, "A.M.": true, "P.M.": true}

	// house numbers right after these words are recording references
	recordingRef = regexp.MustCompile(`(?i)\b(?:liber|page|pages|no\.?|number|case|file)\s*$`)
)

// houseNumber starts a street address. The number may not follow a digit,
// ':', '$', '.', '/' or a comma, which rules out clock times, amounts and
// the year of "March 3, 2025".
const houseNumber = `(?:^|[^\d:,$./\s]|[^\d,\s]\s+)\b(\d{1,5})\s+`

// addressCascade is evaluated in order; the first rule that matches wins.
var addressCascade = []addressMatcher{
	{
		rule:  RuleGeneral,
		re:    regexp.MustCompile(`\b\d{1,5}\s[\w\s]+(?:\s[A-Za-z]+)*,\s*(?:#\d{1,5},\s*)?[A-Za-z\s]+,\s[A-Za-z]{2}\s\d{5}(?:-\d{4})?\b`),
		build: fullMatch,
	},
	{
		rule:  RuleCommonlyKnownAs,
		re:    regexp.MustCompile(`(?i:commonly known as):?\s*([^,]+?),\s*([A-Za-z][A-Za-z .'-]*?),\s*([A-Z]{2})\s+(\d{5}(?:-\d{4})?)\b`),
		build: joinParts,
	},
	{
		rule:  RuleSituatedUnit,
		re:    regexp.MustCompile(`(?i:situated in\s+)?(?i:units?)\s+[\w-]+(?:\s*(?:&|and|-)\s*[\w-]+)*,\s*([^,]+?),\s*([A-Za-z][A-Za-z .'-]*?),\s*([A-Z]{2})\s+(\d{5}(?:-\d{4})?)\b`),
		build: joinParts,
	},
	{
		rule:  RuleCommonStreetAddress,
		re:    regexp.MustCompile(`(?i:common street address):?\s*(?:([^;]{1,120}?\d{5}(?:-\d{4})?)\b|([^;]+?)(?:;|\.\s+[A-Z][a-z]+\s+[a-z]|\.?$))`),
		build: commonStreet,
	},
	{
		rule:  RuleLoose,
		re:    regexp.MustCompile(houseNumber + `([A-Z][\w.'-]*)(?:\s+[\w.'-]+)*?(?:\s*(?:#|Unit|Apt\.?|Suite|Ste\.?)\s*[\w-]+)?,\s*[A-Za-z][A-Za-z\s.'-]*?(?:,\s*[A-Z]{2}(?:\s+\d{5}(?:-\d{4})?)?)?\b`),
		build: streetAddress,
	},
	{
		rule:  RuleMichigan,
		re:    regexp.MustCompile(houseNumber + `([^\s,]+)[^,]*?,\s*[A-Za-z][A-Za-z\s.'-]*?,?\s+(?:Michigan|MI)\s+\d{5}(?:-\d{4})?\b`),
		build: streetAddress,
	},
}

// matchAddress runs the cascade over segment.
func matchAddress(segment string) (string, AddressRule) {
	for _, am := range addressCascade {
		for _, loc := range am.re.FindAllStringSubmatchIndex(segment, -1) {
			if addr := am.build(segment, loc); addr != "" {
				return addr, am.rule
			}
		}
	}
	return "", RuleNone
}

// AddressRules lists the cascade in evaluation order.
func AddressRules() []AddressRule {
	rules := make([]AddressRule, 0, len(addressCascade))
	for _, am := range addressCascade {
		rules = append(rules, am.rule)
	}
	return rules
}
