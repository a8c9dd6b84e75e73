package validate

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/entity"
)

var identifierPattern = regexp.MustCompile(`^[\w\-/]+$`)

// scalar fields checked (and expected) by the validator, in report order
var scalarRuleOrder = []string{
	constants.FieldInvoiceNumber,
	constants.FieldDate,
	constants.FieldTotalAmount,
}

// Validator enforces required-field presence and value well-formedness.
// Malformed or missing scalar fields degrade to warnings: a missing
// identifier should not discard an otherwise-extracted document. Line items
// are a structural field; arithmetic inconsistency there is a hard error.
type Validator struct {
	logger *slog.Logger
}

func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger}
}

// Validate checks data and returns the final result. extraWarnings (from
// cross-validation) are appended after the field warnings. IsValid is false
// exactly when Errors is non-empty.
func (v *Validator) Validate(data *entity.InvoiceData, extraWarnings []string) entity.ValidationResult {
	result := entity.ValidationResult{
		Errors:      []string{},
		Warnings:    []string{},
		CleanedData: map[string]any{},
	}
	if data == nil {
		result.IsValid = true
		return result
	}

	for _, name := range scalarRuleOrder {
		field, ok := data.Fields[name]
		if !ok {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: is required", name))
			continue
		}
		if warn := v.checkScalar(name, field, &result); warn != "" {
			result.Warnings = append(result.Warnings, warn)
		}
	}

	// unrecognized fields pass through unmodified, in a stable order
	var rest []string
	for name := range data.Fields {
		if !isScalarRule(name) {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		result.CleanedData[name] = fieldValue(data.Fields[name])
	}

	// structural check: tabulated arithmetic that does not add up is
	// untrustworthy and disqualifies the document
	for _, it := range data.LineItems {
		if !ItemWithinTolerance(it) {
			result.Errors = append(result.Errors, fmt.Sprintf(
				"line item %q: total (%s) inconsistent with quantity x unit price (%s)",
				it.Description, it.Total.String(), it.Quantity.Mul(it.UnitPrice).String()))
		}
	}
	if len(data.LineItems) > 0 {
		result.CleanedData[constants.FieldLineItems] = data.LineItems
	}

	result.Warnings = append(result.Warnings, extraWarnings...)
	result.IsValid = len(result.Errors) == 0

	v.logger.Debug("validator.result",
		"is_valid", result.IsValid,
		"errors", len(result.Errors),
		"warnings", len(result.Warnings),
	)
	return result
}

// checkScalar validates one known scalar field, records its cleaned value,
// and returns a warning message ("" when fine).
func (v *Validator) checkScalar(name string, field entity.ExtractedField, result *entity.ValidationResult) string {
	switch name {
	case constants.FieldInvoiceNumber:
		if field.Text == "" {
			return fmt.Sprintf("%s: is required", name)
		}
		result.CleanedData[name] = field.Text
		if !identifierPattern.MatchString(field.Text) {
			return fmt.Sprintf("%s: invalid identifier format", name)
		}
	case constants.FieldDate:
		if field.Date == "" {
			return fmt.Sprintf("%s: invalid date", name)
		}
		result.CleanedData[name] = field.Date
	case constants.FieldTotalAmount:
		if field.Amount == nil {
			return fmt.Sprintf("%s: invalid amount", name)
		}
		result.CleanedData[name] = *field.Amount
		if field.Currency != "" {
			result.CleanedData[constants.FieldCurrency] = field.Currency
		}
	}
	return ""
}

func isScalarRule(name string) bool {
	for _, n := range scalarRuleOrder {
		if n == name {
			return true
		}
	}
	return false
}

// fieldValue extracts the typed payload for pass-through fields.
func fieldValue(f entity.ExtractedField) any {
	switch f.Kind {
	case entity.FieldAmount:
		if f.Amount != nil {
			return *f.Amount
		}
		return nil
	case entity.FieldDate:
		return f.Date
	default:
		return f.Text
	}
}
