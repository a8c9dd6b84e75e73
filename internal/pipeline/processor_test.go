package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/classify"
	"github.com/docsift/docsift/internal/extract"
)

const sampleInvoice = `INVOICE
Invoice Number: INV-001
Date: 2024-03-15
Total Amount: $1,000.00
`

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	classifier := classify.NewClassifier(classify.DefaultRuleSet(), nil)
	registry := extract.NewRegistry(nil)
	return NewProcessor(nil, Config{}, classifier, registry, false)
}

func TestProcessCompleteInvoice(t *testing.T) {
	p := newTestProcessor(t)

	res := p.Process(sampleInvoice, nil)

	assert.Equal(t, constants.DocStateAccepted, res.State)
	assert.Equal(t, constants.Invoice, res.Classification.Category)
	assert.GreaterOrEqual(t, res.Classification.Confidence, 0.9)

	require.NotNil(t, res.Invoice)
	assert.Equal(t, "INV-001", res.Invoice.Fields[constants.FieldInvoiceNumber].Text)
	assert.Equal(t, "2024-03-15", res.Invoice.Fields[constants.FieldDate].Date)
	total := res.Invoice.Fields[constants.FieldTotalAmount]
	require.NotNil(t, total.Amount)
	assert.Equal(t, "1000", total.Amount.String())

	require.NotNil(t, res.Validation)
	assert.True(t, res.Validation.IsValid)
	assert.Empty(t, res.Validation.Errors)
	assert.Empty(t, res.Validation.Warnings)
	assert.False(t, res.Degraded)
}

func TestProcessMissingTotalStillValid(t *testing.T) {
	p := newTestProcessor(t)

	res := p.Process("INVOICE $\nInvoice Number: INV-002\nDate: 2024-03-15\n", nil)

	require.NotNil(t, res.Validation)
	assert.True(t, res.Validation.IsValid)
	assert.Contains(t, res.Validation.Warnings, "total_amount: is required")
	assert.Equal(t, constants.DocStateAccepted, res.State)
}

func TestProcessNonInvoiceShortCircuits(t *testing.T) {
	p := newTestProcessor(t)

	res := p.Process("quarterly performance report and summary of findings", nil)

	assert.Equal(t, constants.DocStateAccepted, res.State)
	assert.Equal(t, constants.Unknown, res.Classification.Category)
	assert.Nil(t, res.Invoice)
	assert.Nil(t, res.Validation)
}

func TestProcessSubThresholdConfidenceSkipsExtraction(t *testing.T) {
	classifier := classify.NewClassifier(classify.DefaultRuleSet(), nil)
	registry := extract.NewRegistry(nil)
	gate := 0.7
	p := NewProcessor(nil, Config{MinConfidence: &gate}, classifier, registry, false)

	// "invoice" without currency scores 0.6, below the 0.7 gate
	res := p.Process("please find the invoice attached", nil)

	assert.Equal(t, constants.DocStateAccepted, res.State)
	assert.Equal(t, constants.Invoice, res.Classification.Category)
	assert.Nil(t, res.Invoice)
	assert.Nil(t, res.Validation)
}

func TestProcessZeroGateExtractsAnyInvoiceLike(t *testing.T) {
	classifier := classify.NewClassifier(classify.DefaultRuleSet(), nil)
	registry := extract.NewRegistry(nil)
	gate := 0.0
	p := NewProcessor(nil, Config{MinConfidence: &gate}, classifier, registry, false)

	// scores 0.6, below DefaultMinConfidence but past an explicit zero gate
	res := p.Process("please find the invoice attached", nil)

	assert.Equal(t, constants.Invoice, res.Classification.Category)
	require.NotNil(t, res.Invoice)
	require.NotNil(t, res.Validation)
}

func TestProcessNilGateUsesDefault(t *testing.T) {
	classifier := classify.NewClassifier(classify.DefaultRuleSet(), nil)
	registry := extract.NewRegistry(nil)
	p := NewProcessor(nil, Config{}, classifier, registry, false)

	assert.Equal(t, DefaultMinConfidence, p.MinConfidence)
}

func TestProcessInconsistentLineItemsRejected(t *testing.T) {
	p := newTestProcessor(t)

	text := `INVOICE
Invoice Number: INV-003
Date: 2024-03-15
Total Amount: $25.00
Widget  2  10.00  25.00
`
	res := p.Process(text, nil)

	assert.Equal(t, constants.DocStateRejected, res.State)
	require.NotNil(t, res.Validation)
	assert.False(t, res.Validation.IsValid)
	assert.NotEmpty(t, res.Validation.Errors)
}

func TestProcessMetadataPassthrough(t *testing.T) {
	p := newTestProcessor(t)

	meta := map[string]any{"source": "mailbox", "message_id": "abc-123"}
	res := p.Process(sampleInvoice, meta)

	assert.Equal(t, meta, res.Metadata)
}

func TestProcessDegradedFlagStamped(t *testing.T) {
	classifier := classify.NewClassifier(classify.DefaultRuleSet(), nil)
	registry := extract.NewRegistry(nil)
	p := NewProcessor(nil, Config{}, classifier, registry, true)

	res := p.Process(sampleInvoice, nil)

	assert.True(t, res.Degraded)
}

func TestProcessDeterministicAcrossRuns(t *testing.T) {
	p := newTestProcessor(t)

	first := p.Process(sampleInvoice, nil)
	for i := 0; i < 5; i++ {
		again := p.Process(sampleInvoice, nil)
		assert.Equal(t, first.State, again.State)
		assert.Equal(t, first.Classification, again.Classification)
		assert.Equal(t, first.Invoice, again.Invoice)
		assert.Equal(t, first.Validation, again.Validation)
	}
}
