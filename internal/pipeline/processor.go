// Package pipeline orchestrates classification, extraction, and validation
// for one document at a time.
package pipeline

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/classify"
	"github.com/docsift/docsift/internal/entity"
	"github.com/docsift/docsift/internal/extract"
	"github.com/docsift/docsift/internal/validate"
)

// DefaultMinConfidence is the classification gate applied when Config leaves
// MinConfidence nil.
const DefaultMinConfidence = 0.60

// Config holds thresholds and behavior flags for the processor.
type Config struct {
	// MinConfidence is the classification confidence required before field
	// extraction runs. Nil means DefaultMinConfidence; an explicit zero
	// extracts on any invoice-like classification.
	MinConfidence *float64
}

// Processor runs one document through
// classify -> extract -> cross-validate -> validate. It is a pure
// computation over the text plus the read-only rule set: no I/O, no shared
// mutable state, safe for any number of concurrent callers.
type Processor struct {
	Logger        *slog.Logger
	MinConfidence float64
	Classifier    *classify.Classifier
	Registry      *extract.Registry
	Cross         *validate.CrossValidator
	Validator     *validate.Validator
	Degraded      bool // default rules in use; stamped on every result
}

func NewProcessor(logger *slog.Logger, cfg Config, classifier *classify.Classifier, registry *extract.Registry, degraded bool) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	minConf := DefaultMinConfidence
	if cfg.MinConfidence != nil {
		minConf = *cfg.MinConfidence
		if minConf < 0 {
			minConf = 0
		}
		if minConf > 1 {
			minConf = 1
		}
	}
	return &Processor{
		Logger:        logger,
		MinConfidence: minConf,
		Classifier:    classifier,
		Registry:      registry,
		Cross:         validate.NewCrossValidator(logger),
		Validator:     validate.NewValidator(logger),
		Degraded:      degraded,
	}
}

// Process runs the full per-document state machine:
// Unclassified -> Classified -> (invoice-like) Extracted -> Validated ->
// Accepted|Rejected. A non-invoice category or sub-threshold confidence
// short-circuits to Accepted with no structured data. Caller metadata is
// carried into the result unmodified.
func (p *Processor) Process(text string, metadata map[string]any) *entity.ProcessingResult {
	result := &entity.ProcessingResult{
		ID:          uuid.New(),
		State:       constants.DocStateUnclassified,
		Metadata:    metadata,
		Degraded:    p.Degraded,
		ProcessedAt: time.Now().UTC(),
	}

	result.Classification = p.Classifier.Classify(text)
	result.State = constants.DocStateClassified
	p.Logger.Info("processor.classified",
		"doc_id", result.ID,
		"category", result.Classification.Category,
		"confidence", result.Classification.Confidence,
	)

	if !constants.IsInvoiceLike(result.Classification.Category) ||
		result.Classification.Confidence < p.MinConfidence {
		// accepted as-is: category known (or unknown), no structured data
		result.State = constants.DocStateAccepted
		return result
	}

	extractor := p.Registry.ForCategory(result.Classification.Category)
	result.Invoice = extractor.Extract(text)
	result.State = constants.DocStateExtracted

	var crossWarnings []string
	if result.Invoice != nil {
		crossWarnings = p.Cross.Reconcile(result.Invoice.Fields, result.Invoice.LineItems)
	}
	validation := p.Validator.Validate(result.Invoice, crossWarnings)
	result.Validation = &validation
	result.State = constants.DocStateValidated

	if validation.IsValid {
		result.State = constants.DocStateAccepted
	} else {
		result.State = constants.DocStateRejected
	}
	p.Logger.Info("processor.done",
		"doc_id", result.ID,
		"state", result.State,
		"errors", len(validation.Errors),
		"warnings", len(validation.Warnings),
	)
	return result
}
