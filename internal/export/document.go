package export

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/foreclosure-notices/internal/core"
)

//go:embed result.schema.json
var resultSchema []byte

// Document is the JSON shape of a run, shared by the JSON export and the APIs.
type Document struct {
	RunID   string           `json:"run_id"`
	Source  string           `json:"source,omitempty"`
	Summary core.Summary     `json:"summary"`
	Records []DocumentRecord `json:"records"`
}

type DocumentRecord struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	LoanAmount  string `json:"loan_amount"`
	AuctionDate string `json:"auction_date"`
	CapturedOn  string `json:"captured_on"`
}

// NewDocument flattens a run result; dates become YYYY-MM-DD.
func NewDocument(res *core.Result) Document {
	doc := Document{
		RunID:   res.RunID,
		Source:  res.Source,
		Summary: res.Summary,
		Records: make([]DocumentRecord, 0, len(res.Records)),
	}
	for _, r := range res.Records {
		doc.Records = append(doc.Records, DocumentRecord{
			Name:        r.Name,
			Address:     r.Address,
			LoanAmount:  r.LoanAmount,
			AuctionDate: r.AuctionDate,
			CapturedOn:  r.CapturedDate(),
		})
	}
	return doc
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("result.schema.json", bytes.NewReader(resultSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("result.schema.json")
})

// ValidateDocument checks encoded JSON against the result schema.
func ValidateDocument(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
