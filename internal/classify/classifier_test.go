package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsift/docsift/constants"
)

func TestClassifyInvoiceWithCurrency(t *testing.T) {
	c := NewClassifier(DefaultRuleSet(), nil)

	res := c.Classify("INVOICE\nInvoice Number: INV-001\nTotal Amount: $1,000.00\n")

	assert.Equal(t, constants.Invoice, res.Category)
	assert.GreaterOrEqual(t, res.Confidence, 0.9)
	assert.LessOrEqual(t, res.Confidence, 0.95)
	assert.NotEmpty(t, res.Indicators)
}

func TestClassifyRequiredGate(t *testing.T) {
	c := NewClassifier(DefaultRuleSet(), nil)

	// currency alone must not classify as invoice
	res := c.Classify("paid $45.00 in cash")

	assert.Equal(t, constants.Unknown, res.Category)
	assert.Equal(t, 0.0, res.Confidence)
	assert.Empty(t, res.Indicators)
}

func TestClassifyInvoiceWithoutSupporting(t *testing.T) {
	c := NewClassifier(DefaultRuleSet(), nil)

	res := c.Classify("please find the invoice attached")

	assert.Equal(t, constants.Invoice, res.Category)
	assert.InDelta(t, 0.6, res.Confidence, 1e-9)
}

func TestClassifyBlankText(t *testing.T) {
	c := NewClassifier(DefaultRuleSet(), nil)

	for _, text := range []string{"", "   ", "\n\t\n"} {
		res := c.Classify(text)
		assert.Equal(t, constants.Unknown, res.Category)
		assert.Equal(t, 0.0, res.Confidence)
	}
}

func TestClassifyCaseAndWhitespaceInsensitive(t *testing.T) {
	c := NewClassifier(DefaultRuleSet(), nil)

	a := c.Classify("INVOICE   total: $10")
	b := c.Classify("invoice total: $10")

	assert.Equal(t, a.Category, b.Category)
	assert.Equal(t, a.Confidence, b.Confidence)
}

func TestClassifyFirstDeclaredWinsTies(t *testing.T) {
	rs := &RuleSet{
		Version: 1,
		Categories: []CategoryRule{
			{Name: "contract", RequiredPatterns: []string{`\bdocument\b`}},
			{Name: "report", RequiredPatterns: []string{`\bdocument\b`}},
		},
	}
	require.NoError(t, rs.compile())

	c := NewClassifier(rs, nil)
	res := c.Classify("this document has no other markers")

	assert.Equal(t, constants.Contract, res.Category)
}

func TestClassifyEmptySupportingCountsAsFull(t *testing.T) {
	rs := &RuleSet{
		Version: 1,
		Categories: []CategoryRule{
			{Name: "report", RequiredPatterns: []string{`\breport\b`}},
		},
	}
	require.NoError(t, rs.compile())

	c := NewClassifier(rs, nil)
	res := c.Classify("annual report")

	assert.Equal(t, constants.Report, res.Category)
	assert.InDelta(t, 0.95, res.Confidence, 1e-9)
}

func TestClassifyPartialSupporting(t *testing.T) {
	rs := &RuleSet{
		Version: 1,
		Categories: []CategoryRule{
			{
				Name:             "invoice",
				RequiredPatterns: []string{`\binvoice\b`},
				SupportingPatterns: []string{
					`\$`,
					`\bdue date\b`,
				},
			},
		},
	}
	require.NoError(t, rs.compile())

	c := NewClassifier(rs, nil)
	res := c.Classify("invoice for $12")

	// 0.6*1 + 0.4*(1/2)
	assert.InDelta(t, 0.8, res.Confidence, 1e-9)
}

func TestSwapRules(t *testing.T) {
	c := NewClassifier(DefaultRuleSet(), nil)
	require.Equal(t, constants.Unknown, c.Classify("quarterly report").Category)

	rs := &RuleSet{
		Version: 2,
		Categories: []CategoryRule{
			{Name: "report", RequiredPatterns: []string{`\breport\b`}},
		},
	}
	require.NoError(t, rs.compile())
	c.Swap(rs)

	assert.Equal(t, constants.Report, c.Classify("quarterly report").Category)
}

func TestClassifyDeterministic(t *testing.T) {
	c := NewClassifier(DefaultRuleSet(), nil)
	text := "Invoice\nTotal: $99.00"

	first := c.Classify(text)
	for i := 0; i < 10; i++ {
		again := c.Classify(text)
		assert.Equal(t, first.Category, again.Category)
		assert.Equal(t, first.Confidence, again.Confidence)
		assert.Equal(t, first.Indicators, again.Indicators)
	}
}
