package extract

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// currencySymbols maps leading/trailing symbols to ISO codes.
var currencySymbols = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "JPY",
}

var currencyCodes = []string{"USD", "EUR", "GBP", "JPY", "CAD", "AUD", "CHF"}

// NormalizeAmount parses a raw money token into a fixed-precision decimal
// plus the detected currency code ("" when none). Comma/period are
// disambiguated by position: when both appear, whichever occurs later is the
// decimal separator; a lone comma is a decimal separator. Non-numeric
// residue fails.
func NormalizeAmount(raw string) (decimal.Decimal, string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, "", fmt.Errorf("empty amount")
	}

	currency := ""
	for sym, code := range currencySymbols {
		if strings.Contains(s, sym) {
			currency = code
			s = strings.ReplaceAll(s, sym, "")
		}
	}
	upper := strings.ToUpper(s)
	for _, code := range currencyCodes {
		if idx := strings.Index(upper, code); idx >= 0 {
			if currency == "" {
				currency = code
			}
			s = s[:idx] + s[idx+len(code):]
			break
		}
	}
	s = strings.TrimSpace(s)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.ReplaceAll(s, " ", "")

	lastComma := strings.LastIndex(s, ",")
	lastPeriod := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastPeriod >= 0:
		if lastComma > lastPeriod {
			// 1.234,56 -> comma is the decimal separator
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// 1,234.56 -> period is the decimal separator
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		// lone comma is a decimal separator: 12,50 -> 12.50
		if strings.Count(s, ",") > 1 {
			// repeated commas can only be grouping: 1,234,567
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case strings.Count(s, ".") > 1:
		// repeated periods: keep the last as the decimal separator
		first := strings.Count(s, ".") - 1
		s = strings.Replace(s, ".", "", first)
	}

	if s == "" {
		return decimal.Zero, "", fmt.Errorf("no digits in %q", raw)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("parse amount %q: %w", raw, err)
	}
	if neg {
		d = d.Neg()
	}
	return d, currency, nil
}
