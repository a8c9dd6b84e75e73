package entity

import (
	"github.com/shopspring/decimal"
)

// FieldKind describes the typed payload of an ExtractedField.
type FieldKind string

const (
	FieldText   FieldKind = "text"
	FieldAmount FieldKind = "amount"
	FieldDate   FieldKind = "date"
)

// ExtractedField is one extracted value plus its confidence.
// Exactly one of Text, Amount, Date carries the value, selected by Kind.
type ExtractedField struct {
	Kind       FieldKind        `json:"kind"`
	Text       string           `json:"text,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Currency   string           `json:"currency,omitempty"`
	Date       string           `json:"date,omitempty"` // YYYY-MM-DD
	Confidence float64          `json:"confidence"`
}

// LineItem is one tabular row extracted from the document body.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
	Confidence  float64         `json:"confidence"`
}

// InvoiceData holds everything one extraction run produced for a document.
// Owned solely by that run; no shared state across documents.
type InvoiceData struct {
	Fields    map[string]ExtractedField `json:"fields"`
	LineItems []LineItem                `json:"line_items,omitempty"`
}
