package constants

import (
	"strings"
)

// Category is the closed set of document categories the classifier can emit.
type Category string

const (
	Invoice  Category = "invoice"
	Receipt  Category = "receipt"
	Contract Category = "contract"
	Report   Category = "report"
	Other    Category = "other"
	Unknown  Category = "unknown"
)

var allCategories = []Category{
	Invoice,
	Receipt,
	Contract,
	Report,
	Other,
	Unknown,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps a free-form label onto the closed category set.
// Unrecognized labels map to Other.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Unknown, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]Category{
		"bill":          Invoice,
		"invoices":      Invoice,
		"receipts":      Receipt,
		"agreement":     Contract,
		"statement":     Report,
		"misc":          Other,
		"uncategorized": Other,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == string(cat) {
			return cat, true
		}
	}

	return Other, false
}

// IsInvoiceLike reports whether structured field extraction applies to cat.
func IsInvoiceLike(cat Category) bool {
	return cat == Invoice || cat == Receipt
}
