package notice

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/foreclosure-notices/constants"
)

var (
	loanClaimedDueRe = regexp.MustCompile(`Amount claimed due.*?\$([\d,.]+)`)
	loanDueAtDateRe  = regexp.MustCompile(`There is claimed to be due at the date \$([\d,.]+)`)
	loanCurrencyRe   = regexp.MustCompile(`\$(\d{1,3}(?:,\d{3})*\.\d{2})`)

	auctionPromptlyRe = regexp.MustCompile(`starting promptly at\s*(\d{1,2}:\d{2} (?:AM|PM), on [A-Za-z]+\s\d{1,2},\s\d{4})`)
	auctionWeekdayRe  = regexp.MustCompile(`\b(?:Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday),\s+(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s+\d{4}\b`)

	digitRe = regexp.MustCompile(`\d`)
)

// Fields is what ExtractFields recovers from one segment. A value that could
// not be recovered holds constants.NotAvailable.
type Fields struct {
	Address     string
	LoanAmount  string
	AuctionDate string

	// AddressRule is the cascade step that produced Address.
	AddressRule AddressRule
}

// FieldExtractor runs the pattern cascades over one notice segment.
type FieldExtractor struct {
	genericLoanOnly bool
}

// Option configures a FieldExtractor.
type Option func(*FieldExtractor)

// WithGenericLoanOnly skips the labeled loan patterns and uses only the
// generic currency pattern.
func WithGenericLoanOnly(v bool) Option {
	return func(e *FieldExtractor) { e.genericLoanOnly = v }
}

// NewFieldExtractor builds a FieldExtractor.
func NewFieldExtractor(opts ...Option) *FieldExtractor {
	e := &FieldExtractor{}
	for _, o := range opts {
		o(e)
	}
	return e
}

var defaultExtractor = NewFieldExtractor()

// ExtractFields recovers the fields of segment with the default cascades.
func ExtractFields(segment string) Fields {
	return defaultExtractor.Extract(segment)
}

// Extract never fails; a field without a match is set to constants.NotAvailable.
func (e *FieldExtractor) Extract(segment string) Fields {
	f := Fields{
		Address:     constants.NotAvailable,
		LoanAmount:  constants.NotAvailable,
		AuctionDate: constants.NotAvailable,
		AddressRule: RuleNone,
	}
	if addr, rule := matchAddress(segment); addr != "" {
		f.Address, f.AddressRule = addr, rule
	}
	if loan := e.loanAmount(segment); loan != "" {
		f.LoanAmount = loan
	}
	if date := auctionDate(segment); date != "" {
		f.AuctionDate = date
	}
	return f
}

func (e *FieldExtractor) loanAmount(segment string) string {
	if !e.genericLoanOnly {
		for _, re := range []*regexp.Regexp{loanClaimedDueRe, loanDueAtDateRe} {
			m := re.FindStringSubmatch(segment)
			if m == nil {
				continue
			}
			v := strings.TrimRight(m[1], ".,")
			if digitRe.MatchString(v) {
				return v
			}
		}
	}
	if m := loanCurrencyRe.FindStringSubmatch(segment); m != nil {
		return m[1]
	}
	return ""
}

func auctionDate(segment string) string {
	if m := auctionPromptlyRe.FindStringSubmatch(segment); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := auctionWeekdayRe.FindString(segment); m != "" {
		return m
	}
	return ""
}
