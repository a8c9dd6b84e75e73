package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/entity"
	"github.com/docsift/docsift/internal/jobstore"
)

func seedRecord(t *testing.T, store jobstore.Store, fileName string, createdAt time.Time) {
	t.Helper()
	total := decimal.RequireFromString("1000")
	rec := jobstore.Record{
		ID:       uuid.New(),
		FileName: fileName,
		Result: entity.ProcessingResult{
			ID:    uuid.New(),
			State: constants.DocStateAccepted,
			Classification: entity.ClassificationResult{
				Category:   constants.Invoice,
				Confidence: 0.95,
			},
			Invoice: &entity.InvoiceData{
				Fields: map[string]entity.ExtractedField{
					constants.FieldInvoiceNumber: {Kind: entity.FieldText, Text: "INV-001", Confidence: 0.9},
					constants.FieldDate:          {Kind: entity.FieldDate, Date: "2024-03-15", Confidence: 0.9},
					constants.FieldTotalAmount:   {Kind: entity.FieldAmount, Amount: &total, Currency: "USD", Confidence: 0.9},
				},
			},
			Validation: &entity.ValidationResult{
				IsValid:  true,
				Errors:   []string{},
				Warnings: []string{"tax_amount: is required"},
			},
			ProcessedAt: createdAt,
		},
		CreatedAt: createdAt,
	}
	require.NoError(t, store.SaveRecord(context.Background(), rec))
}

func TestExportRecordsXLSX(t *testing.T) {
	store := jobstore.NewMemoryStore()
	now := time.Now().UTC()
	seedRecord(t, store, "march-invoice.txt", now)

	svc := NewService(store, nil)
	b, err := svc.ExportRecordsXLSX(context.Background(), nil, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	get := func(cell string) string {
		v, err := f.GetCellValue("Documents", cell)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "File", get("A1"))
	assert.Equal(t, "march-invoice.txt", get("A2"))
	assert.Equal(t, "ACCEPTED", get("C2"))
	assert.Equal(t, "invoice", get("D2"))
	assert.Equal(t, "INV-001", get("F2"))
	assert.Equal(t, "2024-03-15", get("G2"))
	assert.Equal(t, "1000", get("H2"))
	assert.Equal(t, "USD", get("I2"))
	assert.Equal(t, "TRUE", get("J2"))
	assert.Equal(t, "tax_amount: is required", get("L2"))
}

func TestExportRecordsXLSXWindow(t *testing.T) {
	store := jobstore.NewMemoryStore()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	seedRecord(t, store, "early.txt", base)
	seedRecord(t, store, "late.txt", base.AddDate(0, 0, 10))

	svc := NewService(store, nil)
	from := base.AddDate(0, 0, 5)
	b, err := svc.ExportRecordsXLSX(context.Background(), &from, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Documents")
	require.NoError(t, err)
	require.Len(t, rows, 2) // header + one record
	assert.Equal(t, "late.txt", rows[1][0])
}

func TestExportRecordsXLSXEmpty(t *testing.T) {
	svc := NewService(jobstore.NewMemoryStore(), nil)

	b, err := svc.ExportRecordsXLSX(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, b)
}
