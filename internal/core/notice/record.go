package notice

import (
	"time"

	"github.com/joseph-ayodele/foreclosure-notices/constants"
)

// Columns is the tabular order of a record.
var Columns = []string{"Name", "Address", "Loan Amount", "Auction Date", "Today's Date"}

// Record is one extracted notice. It is built once and not modified.
type Record struct {
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	LoanAmount  string    `json:"loan_amount"`
	AuctionDate string    `json:"auction_date"`
	CapturedOn  time.Time `json:"captured_on"`

	AddressRule AddressRule `json:"-"`
}

// NewRecord pairs a name with the fields of its segment.
func NewRecord(name string, f Fields, capturedOn time.Time) Record {
	return Record{
		Name:        name,
		Address:     f.Address,
		LoanAmount:  f.LoanAmount,
		AuctionDate: f.AuctionDate,
		CapturedOn:  capturedOn,
		AddressRule: f.AddressRule,
	}
}

// Complete reports whether every field was recovered. In literal mode a field
// only has to be non-empty, so the placeholder counts as recovered.
func (r Record) Complete(literal bool) bool {
	for _, v := range []string{r.Name, r.Address, r.LoanAmount, r.AuctionDate} {
		if v == "" {
			return false
		}
		if !literal && v == constants.NotAvailable {
			return false
		}
	}
	return true
}

// Status classifies the record as full or partial.
func (r Record) Status(literal bool) constants.RecordStatus {
	if r.Complete(literal) {
		return constants.RecordFull
	}
	return constants.RecordPartial
}

// CapturedDate formats CapturedOn as a calendar date.
func (r Record) CapturedDate() string {
	if r.CapturedOn.IsZero() {
		return ""
	}
	return r.CapturedOn.Format(constants.DateLayout)
}

// Row returns the record's values in Columns order.
func (r Record) Row() []string {
	return []string{r.Name, r.Address, r.LoanAmount, r.AuctionDate, r.CapturedDate()}
}
