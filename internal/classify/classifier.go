// Package classify scores document text against per-category indicator sets
// and returns the best category with a heuristic confidence.
package classify

import (
	"log/slog"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/entity"
)

const maxConfidence = 0.95

var whitespace = regexp.MustCompile(`\s+`)

// Classifier ranks categories for a document's text. It holds no per-call
// state; the only shared object is the rule set, swapped atomically on
// reload, so Classify is safe to call from many goroutines.
type Classifier struct {
	logger *slog.Logger
	rules  atomic.Pointer[RuleSet]
}

func NewClassifier(rules *RuleSet, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Classifier{logger: logger}
	c.rules.Store(rules)
	return c
}

// Swap replaces the entire rule set atomically. In-flight classifications
// keep the set they started with.
func (c *Classifier) Swap(rules *RuleSet) {
	c.rules.Store(rules)
	c.logger.Info("classifier.rules.swapped", "categories", len(rules.Categories))
}

// Classify scores text against every category and returns the top-ranked
// one. Blank text yields unknown/0.0. It never fails: data-quality problems
// are expressed in the confidence, not as errors.
func (c *Classifier) Classify(text string) entity.ClassificationResult {
	normalized := normalizeText(text)
	if normalized == "" {
		return entity.ClassificationResult{Category: constants.Unknown, Confidence: 0.0}
	}

	rules := c.rules.Load()

	best := entity.ClassificationResult{Category: constants.Unknown, Confidence: 0.0}
	for _, cat := range rules.Categories {
		conf, indicators := scoreCategory(&cat, normalized)
		// strictly greater: first-declared category wins ties
		if conf > best.Confidence {
			best = entity.ClassificationResult{
				Category:   constants.Category(cat.Name),
				Confidence: conf,
				Indicators: indicators,
			}
		}
	}

	if best.Confidence == 0.0 {
		return entity.ClassificationResult{Category: constants.Unknown, Confidence: 0.0}
	}

	c.logger.Debug("classifier.result",
		"category", best.Category,
		"confidence", best.Confidence,
		"indicators", len(best.Indicators),
	)
	return best
}

// scoreCategory computes 0.6*requiredRatio + 0.4*supportingRatio, capped.
// A category with zero required matches is ineligible regardless of
// supporting matches. An empty supporting list counts as fully matched.
func scoreCategory(cat *CategoryRule, text string) (float64, []entity.Indicator) {
	var indicators []entity.Indicator

	matchedRequired := 0
	for i, re := range cat.required {
		if m := re.FindString(text); m != "" {
			matchedRequired++
			indicators = append(indicators, entity.Indicator{Pattern: cat.RequiredPatterns[i], Matched: m})
		}
	}
	if matchedRequired == 0 {
		return 0.0, nil
	}

	matchedSupporting := 0
	for i, re := range cat.supporting {
		if m := re.FindString(text); m != "" {
			matchedSupporting++
			indicators = append(indicators, entity.Indicator{Pattern: cat.SupportingPatterns[i], Matched: m})
		}
	}

	requiredRatio := float64(matchedRequired) / float64(len(cat.required))
	supportingRatio := 1.0
	if len(cat.supporting) > 0 {
		supportingRatio = float64(matchedSupporting) / float64(len(cat.supporting))
	}

	conf := 0.6*requiredRatio + 0.4*supportingRatio
	if conf > maxConfidence {
		conf = maxConfidence
	}
	return conf, indicators
}

// normalizeText lowercases and collapses all runs of whitespace.
func normalizeText(text string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(strings.ToLower(text), " "))
}
