package core

import (
	"time"

	"github.com/joseph-ayodele/foreclosure-notices/internal/core/notice"
)

// Summary describes how complete a batch of records is.
type Summary struct {
	Total          int     `json:"total"`
	Full           int     `json:"full"`
	Partial        int     `json:"partial"`
	FullPercentage float64 `json:"full_percentage"`
}

// Summarize counts full and partial records. FullPercentage is 0 for an empty batch.
func Summarize(records []notice.Record, literalCompleteness bool) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		if r.Complete(literalCompleteness) {
			s.Full++
		}
	}
	s.Partial = s.Total - s.Full
	if s.Total > 0 {
		s.FullPercentage = 100 * float64(s.Full) / float64(s.Total)
	}
	return s
}

// Result is the output of one document run.
type Result struct {
	RunID    string          `json:"run_id"`
	Source   string          `json:"source,omitempty"`
	Records  []notice.Record `json:"records"`
	Summary  Summary         `json:"summary"`
	Pages    int             `json:"pages"`
	Elapsed  time.Duration   `json:"elapsed"`
	Warnings []string        `json:"warnings,omitempty"`
}
