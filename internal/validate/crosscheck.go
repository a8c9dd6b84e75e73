// Package validate reconciles and validates extracted invoice data,
// separating hard errors from soft warnings.
package validate

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/entity"
)

// relative tolerances for amount reconciliation
var (
	totalTolerance = decimal.NewFromFloat(0.01)  // total vs line-item sum
	itemTolerance  = decimal.NewFromFloat(0.005) // per-item qty*price vs stated total
)

// CrossValidator reconciles the aggregate total against its constituent line
// items. All findings here are warnings: a discrepancy is informational, not
// disqualifying. The hard-error treatment of per-item arithmetic lives in
// Validator, where line items are checked as a structural field.
type CrossValidator struct {
	logger *slog.Logger
}

func NewCrossValidator(logger *slog.Logger) *CrossValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &CrossValidator{logger: logger}
}

// Reconcile compares the extracted total with the sum of line-item totals
// (1% relative tolerance) and each item's stated total with quantity times
// unit price (0.5% relative tolerance). Items outside tolerance are reported
// but retained.
func (cv *CrossValidator) Reconcile(fields map[string]entity.ExtractedField, items []entity.LineItem) []string {
	var warnings []string

	if total, ok := fields[constants.FieldTotalAmount]; ok && total.Amount != nil && len(items) > 0 {
		sum := decimal.Zero
		for _, it := range items {
			sum = sum.Add(it.Total)
		}
		diff := total.Amount.Sub(sum).Abs()
		if diff.GreaterThan(total.Amount.Abs().Mul(totalTolerance)) {
			warnings = append(warnings, fmt.Sprintf(
				"total amount (%s) differs from sum of line items (%s)",
				total.Amount.String(), sum.String()))
		}
	}

	for _, it := range items {
		if !ItemWithinTolerance(it) {
			warnings = append(warnings, fmt.Sprintf(
				"line item %q: stated total (%s) differs from quantity x unit price (%s)",
				it.Description, it.Total.String(), it.Quantity.Mul(it.UnitPrice).String()))
		}
	}

	if len(warnings) > 0 {
		cv.logger.Debug("crosscheck.discrepancies", "count", len(warnings))
	}
	return warnings
}

// ItemWithinTolerance reports whether quantity*unit_price matches the stated
// total within the 0.5% relative tolerance.
func ItemWithinTolerance(it entity.LineItem) bool {
	computed := it.Quantity.Mul(it.UnitPrice)
	diff := computed.Sub(it.Total).Abs()
	return !diff.GreaterThan(it.Total.Abs().Mul(itemTolerance))
}
