package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/docsift/docsift/constants"
)

// ValidationResult is the final verdict for one document. IsValid is false
// if and only if Errors is non-empty; warnings never affect validity.
type ValidationResult struct {
	IsValid     bool           `json:"is_valid"`
	Errors      []string       `json:"errors"`
	Warnings    []string       `json:"warnings"`
	CleanedData map[string]any `json:"cleaned_data"`
}

// ProcessingResult is the record emitted for one processed document.
type ProcessingResult struct {
	ID             uuid.UUID            `json:"id"`
	State          constants.DocState   `json:"state"`
	Classification ClassificationResult `json:"classification"`
	Invoice        *InvoiceData         `json:"invoice,omitempty"`
	Validation     *ValidationResult    `json:"validation,omitempty"`
	Metadata       map[string]any       `json:"metadata,omitempty"`
	Degraded       bool                 `json:"degraded,omitempty"` // default rules in use
	ProcessedAt    time.Time            `json:"processed_at"`
}
