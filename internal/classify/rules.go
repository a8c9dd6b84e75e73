package classify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/common"
)

// CategoryRule defines the indicator sets for one category. Required patterns
// gate eligibility; supporting patterns only raise confidence.
type CategoryRule struct {
	Name               string   `json:"name"`
	RequiredPatterns   []string `json:"required_patterns"`
	SupportingPatterns []string `json:"supporting_patterns,omitempty"`

	required   []*regexp.Regexp
	supporting []*regexp.Regexp
}

// RuleSet is an ordered, read-only collection of category rules. Order is
// declaration order in the artifact and breaks confidence ties.
type RuleSet struct {
	Version    int            `json:"version"`
	Categories []CategoryRule `json:"categories"`
}

// DefaultRuleSet returns the built-in fallback rules. Only the invoice
// category is covered; everything else classifies as unknown.
func DefaultRuleSet() *RuleSet {
	rs := &RuleSet{
		Version: 1,
		Categories: []CategoryRule{
			{
				Name:             string(constants.Invoice),
				RequiredPatterns: []string{`\binvoice\b`},
				SupportingPatterns: []string{
					`[$€£]|\b(?:usd|eur|gbp)\b`,
				},
			},
		},
	}
	if err := rs.compile(); err != nil {
		// built-in patterns are constants; a compile failure is a programming error
		panic(fmt.Sprintf("default rule set: %v", err))
	}
	return rs
}

// LoadRuleSet reads, validates, and compiles the rule-set artifact at path.
// A missing or corrupt artifact falls back to the built-in default rules and
// reports degraded=true; the caller decides whether degraded mode is
// acceptable. An empty path loads the defaults without a degraded signal.
func LoadRuleSet(path string, logger *slog.Logger) (rs *RuleSet, degraded bool, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		return DefaultRuleSet(), false, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("rules artifact unreadable, using defaults", "path", path, "error", err)
		return DefaultRuleSet(), true, nil
	}

	if err := ValidateJSONAgainstSchema(BuildRuleSetJSONSchema(), raw); err != nil {
		logger.Warn("rules artifact invalid, using defaults", "path", path, "error", err)
		return DefaultRuleSet(), true, nil
	}

	var parsed RuleSet
	if err := json.Unmarshal(raw, &parsed); err != nil {
		logger.Warn("rules artifact undecodable, using defaults", "path", path, "error", err)
		return DefaultRuleSet(), true, nil
	}

	if err := parsed.compile(); err != nil {
		logger.Warn("rules artifact has bad patterns, using defaults", "path", path, "error", err)
		return DefaultRuleSet(), true, nil
	}

	logger.Info("rules artifact loaded", "path", path, "categories", len(parsed.Categories))
	return &parsed, false, nil
}

// MustRuleSet is LoadRuleSet for callers that cannot continue degraded.
func MustRuleSet(path string, logger *slog.Logger) (*RuleSet, error) {
	rs, degraded, err := LoadRuleSet(path, logger)
	if err != nil {
		return nil, err
	}
	if degraded {
		return nil, common.ConfigError("rule-set artifact unusable: "+path, nil)
	}
	return rs, nil
}

func (rs *RuleSet) compile() error {
	for i := range rs.Categories {
		c := &rs.Categories[i]
		if len(c.RequiredPatterns) == 0 {
			return fmt.Errorf("category %q: at least one required pattern", c.Name)
		}
		var err error
		if c.required, err = compileAll(c.RequiredPatterns); err != nil {
			return fmt.Errorf("category %q: %w", c.Name, err)
		}
		if c.supporting, err = compileAll(c.SupportingPatterns); err != nil {
			return fmt.Errorf("category %q: %w", c.Name, err)
		}
	}
	return nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		expr := p
		if !strings.HasPrefix(expr, "(?i)") {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}
