package export

import (
	"encoding/csv"
	"io"

	"github.com/joseph-ayodele/foreclosure-notices/internal/core/notice"
)

// WriteCSV writes a header row and one row per record.
func WriteCSV(w io.Writer, records []notice.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(notice.Columns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
