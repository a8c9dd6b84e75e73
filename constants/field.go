package constants

import "strings"

// Canonical field names for extracted invoice data.
const (
	FieldInvoiceNumber = "invoice_number"
	FieldDate          = "date"
	FieldDueDate       = "due_date"
	FieldTotalAmount   = "total_amount"
	FieldTaxAmount     = "tax_amount"
	FieldVendor        = "vendor"
	FieldCurrency      = "currency"
	FieldLineItems     = "line_items"
)

// AllowedExtensions holds the default allowed file extensions for text ingestion.
var AllowedExtensions = map[string]struct{}{
	"txt":  {},
	"text": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
