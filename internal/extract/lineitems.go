package extract

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/docsift/docsift/internal/entity"
)

// baseline confidence for a matched row; reconciliation happens downstream
const lineItemConfidence = 0.7

// itemRow matches "description  qty  [unit]  unit-price  total" rows.
// Quantity and prices are decimal-normalized after the match.
var itemRow = regexp.MustCompile(
	`^\s*(\S.*?\S|\S)\s{2,}(\d+(?:[.,]\d+)?)\s*(?:x|@|pcs?|each|hrs?|units?)?\s+([$€£¥]?\s*\d[\d.,]*)\s+([$€£¥]?\s*\d[\d.,]*)\s*$`,
)

// itemRowLoose accepts single-space separation between description and the
// numeric columns, for text where OCR collapsed the table whitespace.
var itemRowLoose = regexp.MustCompile(
	`^\s*([A-Za-z][A-Za-z .,'&/-]*[A-Za-z.])\s+(\d+(?:[.,]\d+)?)\s*(?:x|@|pcs?|each|hrs?|units?)?\s+([$€£¥]?\s*\d[\d.,]*)\s+([$€£¥]?\s*\d[\d.,]*)\s*$`,
)

// LineItemExtractor scans line-oriented text for tabular item rows.
type LineItemExtractor struct {
	logger *slog.Logger
}

func NewLineItemExtractor(logger *slog.Logger) *LineItemExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LineItemExtractor{logger: logger}
}

// ExtractItems emits one LineItem per matched row at baseline confidence.
// No row is rejected here; arithmetic consistency is the cross-validator's
// concern.
func (e *LineItemExtractor) ExtractItems(text string) []entity.LineItem {
	var items []entity.LineItem
	for _, line := range strings.Split(text, "\n") {
		m := itemRow.FindStringSubmatch(line)
		if m == nil {
			m = itemRowLoose.FindStringSubmatch(line)
		}
		if m == nil {
			continue
		}

		qty, _, err := NormalizeAmount(m[2])
		if err != nil {
			continue
		}
		price, _, err := NormalizeAmount(m[3])
		if err != nil {
			continue
		}
		total, _, err := NormalizeAmount(m[4])
		if err != nil {
			continue
		}

		items = append(items, entity.LineItem{
			Description: strings.TrimSpace(m[1]),
			Quantity:    qty,
			UnitPrice:   price,
			Total:       total,
			Confidence:  lineItemConfidence,
		})
	}
	if len(items) > 0 {
		e.logger.Debug("extract.line_items", "count", len(items))
	}
	return items
}
