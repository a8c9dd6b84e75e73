package extract

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts is tried in order; the first successful parse wins. ISO comes
// first so normalization is idempotent on already-normalized values.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"02.01.2006",
	"02-01-06",
	"02/01/06",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
}

// NormalizeDate parses a raw date token against the ordered layout list and
// returns the canonical YYYY-MM-DD form. No matching layout is an error, not
// a panic; callers treat it as an absent value.
func NormalizeDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognized date format: %q", raw)
}
