// Package extract turns raw document text into typed invoice fields and
// line items with per-value confidence scores.
package extract

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/entity"
)

// FieldDefinition names one target field and the ordered patterns that can
// capture it. Each pattern must have exactly one capture group.
type FieldDefinition struct {
	Name     string
	Kind     entity.FieldKind
	Patterns []*regexp.Regexp
}

// confidence scoring weights for a pattern match
const (
	baseScore         = 0.5
	firstHalfBonus    = 0.1
	keywordBonus      = 0.2
	lengthBonus       = 0.1
	keywordWindow     = 20
	minLengthForBonus = 3
)

var domainKeywords = []string{"total", "amount", "invoice", "payment", "due", "balance"}

// DefaultFieldDefinitions returns the invoice field table. Patterns are
// ordered most specific first; the scorer still picks the best match across
// all of them.
func DefaultFieldDefinitions() []FieldDefinition {
	return []FieldDefinition{
		{
			Name: constants.FieldInvoiceNumber,
			Kind: entity.FieldText,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)invoice\s*(?:number|no\.?|num\.?)\s*[:#]?\s*([A-Za-z0-9][A-Za-z0-9\-/]*)`),
				regexp.MustCompile(`(?i)\binv[.#\-]?\s*[:#]?\s*([A-Za-z]*\d[A-Za-z0-9\-/]*)`),
				regexp.MustCompile(`(?i)reference\s*(?:number|no\.?)?\s*[:#]\s*([A-Za-z0-9\-/]+)`),
			},
		},
		{
			Name: constants.FieldDate,
			Kind: entity.FieldDate,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:invoice\s+)?date\s*[:]\s*(\d{4}[-/]\d{1,2}[-/]\d{1,2}|\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4})`),
				regexp.MustCompile(`(?i)date\s*[:]\s*((?:\d{1,2}\s+)?[A-Za-z]{3,9}\.?\s+\d{1,2},?\s+\d{4}|\d{1,2}\s+[A-Za-z]{3,9}\s+\d{4})`),
				regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`),
			},
		},
		{
			Name: constants.FieldDueDate,
			Kind: entity.FieldDate,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)due\s+date\s*[:]\s*(\d{4}[-/]\d{1,2}[-/]\d{1,2}|\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4})`),
				regexp.MustCompile(`(?i)payment\s+due\s*(?:by|on)?\s*[:]?\s*(\d{4}[-/]\d{1,2}[-/]\d{1,2}|\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4})`),
			},
		},
		{
			Name: constants.FieldTotalAmount,
			Kind: entity.FieldAmount,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)total\s*(?:amount|due)?\s*[:]\s*([$€£¥]?\s*\d[\d.,]*)`),
				regexp.MustCompile(`(?i)(?:amount|balance)\s+due\s*[:]?\s*([$€£¥]?\s*\d[\d.,]*)`),
				regexp.MustCompile(`(?i)\bgrand\s+total\s*[:]?\s*([$€£¥]?\s*\d[\d.,]*)`),
			},
		},
		{
			Name: constants.FieldTaxAmount,
			Kind: entity.FieldAmount,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(?:tax|vat|gst)\s*(?:amount)?\s*(?:\(\d+(?:\.\d+)?%\))?\s*[:]\s*([$€£¥]?\s*\d[\d.,]*)`),
			},
		},
		{
			Name: constants.FieldVendor,
			Kind: entity.FieldText,
			Patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?im)^(?:vendor|from|seller|billed\s+by|supplier)\s*[:]\s*(\S[^\n]*?)\s*$`),
				regexp.MustCompile(`(?im)^company\s*[:]\s*(\S[^\n]*?)\s*$`),
			},
		},
	}
}

// FieldExtractor applies pattern tables to text. Stateless apart from the
// logger; safe for concurrent use.
type FieldExtractor struct {
	logger *slog.Logger
}

func NewFieldExtractor(logger *slog.Logger) *FieldExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FieldExtractor{logger: logger}
}

// Extract tries every definition against text and returns the fields that
// produced a usable value. A normalizer failure drops only that field;
// extraction of the remaining fields continues.
func (e *FieldExtractor) Extract(text string, defs []FieldDefinition) map[string]entity.ExtractedField {
	out := make(map[string]entity.ExtractedField, len(defs))
	for _, def := range defs {
		raw, conf, ok := bestMatch(text, def.Patterns)
		if !ok {
			continue
		}

		field := entity.ExtractedField{Kind: def.Kind, Confidence: conf}
		switch def.Kind {
		case entity.FieldAmount:
			amt, currency, err := NormalizeAmount(raw)
			if err != nil {
				e.logger.Info("extract.field.normalize_failed", "field", def.Name, "raw", raw, "error", err)
				continue
			}
			field.Amount = &amt
			field.Currency = currency
		case entity.FieldDate:
			iso, err := NormalizeDate(raw)
			if err != nil {
				e.logger.Info("extract.field.normalize_failed", "field", def.Name, "raw", raw, "error", err)
				continue
			}
			field.Date = iso
		default:
			field.Text = strings.TrimSpace(raw)
		}
		out[def.Name] = field
	}
	return out
}

// bestMatch scans every pattern for every occurrence and keeps the highest
// scoring candidate. Strict comparison keeps the first pattern on ties.
func bestMatch(text string, patterns []*regexp.Regexp) (string, float64, bool) {
	var (
		bestValue string
		bestConf  float64
		found     bool
	)
	for _, re := range patterns {
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			if len(loc) < 4 || loc[2] < 0 {
				continue
			}
			value := text[loc[2]:loc[3]]
			conf := scoreMatch(text, loc[0], loc[1], value)
			if conf > bestConf {
				bestValue, bestConf, found = value, conf, true
			}
		}
	}
	return bestValue, bestConf, found
}

func scoreMatch(text string, start, end int, value string) float64 {
	conf := baseScore
	if start < len(text)/2 {
		conf += firstHalfBonus
	}
	if windowHasKeyword(text, start, end) {
		conf += keywordBonus
	}
	if len(strings.TrimSpace(value)) >= minLengthForBonus {
		conf += lengthBonus
	}
	return conf
}

func windowHasKeyword(text string, start, end int) bool {
	lo := start - keywordWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + keywordWindow
	if hi > len(text) {
		hi = len(text)
	}
	window := strings.ToLower(text[lo:hi])
	for _, kw := range domainKeywords {
		if strings.Contains(window, kw) {
			return true
		}
	}
	return false
}
