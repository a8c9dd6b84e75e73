package entity

import (
	"github.com/docsift/docsift/constants"
)

// Indicator records a single pattern match that contributed to a classification.
type Indicator struct {
	Pattern string `json:"pattern"`
	Matched string `json:"matched"`
}

// ClassificationResult is the outcome of classifying one document's text.
// Produced fresh per call and never mutated afterwards.
type ClassificationResult struct {
	Category   constants.Category `json:"category"`
	Confidence float64            `json:"confidence"`
	Indicators []Indicator        `json:"indicators,omitempty"`
}
