package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/foreclosure-notices/internal/common"
	"github.com/joseph-ayodele/foreclosure-notices/internal/core"
	"github.com/joseph-ayodele/foreclosure-notices/internal/core/notice"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatJSON = "json"
)

// SheetName is the worksheet holding the records in an XLSX export.
const SheetName = "Foreclosures"

// Service renders run results as CSV, XLSX or JSON bytes.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Export dispatches on format.
func (s *Service) Export(format string, res *core.Result) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatCSV:
		return s.CSV(res.Records)
	case FormatXLSX:
		return s.XLSX(res.Records)
	case FormatJSON:
		return s.JSON(res)
	default:
		return nil, common.NewAppError("EXPORT_FORMAT", fmt.Sprintf("unknown export format %q", format), common.ErrInvalidInput)
	}
}

func (s *Service) CSV(records []notice.Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		return nil, fmt.Errorf("csv write: %w", err)
	}
	s.logger.Info("export.csv.ok", "rows", len(records), "bytes", buf.Len())
	return buf.Bytes(), nil
}

// XLSX returns a workbook with one sheet of records.
func (s *Service) XLSX(records []notice.Record) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	activeIndex, _ := f.GetSheetIndex(SheetName)
	f.SetActiveSheet(activeIndex)

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}

	for i, h := range notice.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(notice.Columns), 1)
	_ = f.SetCellStyle(SheetName, "A1", last, bold)

	for i, r := range records {
		for j, v := range r.Row() {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			_ = f.SetCellValue(SheetName, cell, v)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 32) // name
	_ = f.SetColWidth(SheetName, "B", "B", 48) // address
	_ = f.SetColWidth(SheetName, "C", "C", 16) // loan
	_ = f.SetColWidth(SheetName, "D", "D", 30) // auction
	_ = f.SetColWidth(SheetName, "E", "E", 14) // date

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// JSON encodes the run as a Document and validates it against the result schema.
func (s *Service) JSON(res *core.Result) ([]byte, error) {
	b, err := json.MarshalIndent(NewDocument(res), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json encode: %w", err)
	}
	if err := ValidateDocument(b); err != nil {
		s.logger.Error("export.json.invalid", "run_id", res.RunID, "error", err)
		return nil, common.NewAppError("EXPORT_SCHEMA", "export does not match schema", err)
	}
	s.logger.Info("export.json.ok", "run_id", res.RunID, "rows", len(res.Records))
	return b, nil
}

// FileName builds foreclosure_records_YYYYMMDD_HHMMSS.<format>.
func FileName(format string, t time.Time) string {
	return fmt.Sprintf("foreclosure_records_%s.%s", t.Format("20060102_150405"), strings.ToLower(format))
}

// ContentType returns the MIME type for an export format.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
