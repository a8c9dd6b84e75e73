// Package export produces XLSX workbooks from persisted processing records.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/entity"
	"github.com/docsift/docsift/internal/jobstore"
)

// Service is a tiny façade over the record store that produces XLSX bytes.
type Service struct {
	records jobstore.RecordStore
	logger  *slog.Logger
}

func NewService(records jobstore.RecordStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{records: records, logger: logger}
}

// ExportRecordsXLSX returns an XLSX workbook (as bytes) for the given date window.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> all records.
func (s *Service) ExportRecordsXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}

	recs, err := s.records.ListRecords(ctx, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Documents"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"File",
		"Processed At",
		"State",
		"Category",
		"Confidence",
		"Invoice Number",
		"Invoice Date",
		"Total",
		"Currency",
		"Valid",
		"Errors",
		"Warnings",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, rec := range recs {
		res := rec.Result

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, rec.FileName)
		write(2, rec.CreatedAt.Format("2006-01-02 15:04:05"))
		write(3, string(res.State))
		write(4, string(res.Classification.Category))
		write(5, res.Classification.Confidence)

		number, date, total, currency := invoiceColumns(res.Invoice)
		write(6, number)
		write(7, date)
		write(8, total)
		write(9, currency)

		if res.Validation != nil {
			write(10, res.Validation.IsValid)
			write(11, truncate(strings.Join(res.Validation.Errors, "; "), 140))
			write(12, truncate(strings.Join(res.Validation.Warnings, "; "), 140))
		}

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 32) // file
	_ = f.SetColWidth(sheet, "B", "B", 20) // timestamp
	_ = f.SetColWidth(sheet, "C", "D", 14) // state, category
	_ = f.SetColWidth(sheet, "F", "F", 18) // invoice number
	_ = f.SetColWidth(sheet, "G", "H", 14) // date, total
	_ = f.SetColWidth(sheet, "K", "L", 48) // errors, warnings

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func invoiceColumns(inv *entity.InvoiceData) (number, date, total, currency string) {
	if inv == nil {
		return "", "", "", ""
	}
	if fld, ok := inv.Fields[constants.FieldInvoiceNumber]; ok {
		number = fld.Text
	}
	if fld, ok := inv.Fields[constants.FieldDate]; ok {
		date = fld.Date
	}
	if fld, ok := inv.Fields[constants.FieldTotalAmount]; ok {
		if fld.Amount != nil {
			total = fld.Amount.String()
		}
		currency = fld.Currency
	}
	return number, date, total, currency
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
