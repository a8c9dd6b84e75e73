package extract

import (
	"log/slog"

	"github.com/docsift/docsift/constants"
	"github.com/docsift/docsift/internal/entity"
)

// CategoryExtractor produces structured data for one document category.
type CategoryExtractor interface {
	Extract(text string) *entity.InvoiceData
}

// InvoiceExtractor combines field and line-item extraction for invoice-like
// documents.
type InvoiceExtractor struct {
	fields *FieldExtractor
	items  *LineItemExtractor
	defs   []FieldDefinition
}

func NewInvoiceExtractor(logger *slog.Logger) *InvoiceExtractor {
	return &InvoiceExtractor{
		fields: NewFieldExtractor(logger),
		items:  NewLineItemExtractor(logger),
		defs:   DefaultFieldDefinitions(),
	}
}

func (x *InvoiceExtractor) Extract(text string) *entity.InvoiceData {
	return &entity.InvoiceData{
		Fields:    x.fields.Extract(text, x.defs),
		LineItems: x.items.ExtractItems(text),
	}
}

// NoopExtractor is registered for categories without structured extraction.
type NoopExtractor struct{}

func (NoopExtractor) Extract(string) *entity.InvoiceData { return nil }

// Registry is a static category -> extractor map, built once at startup.
// There is no runtime symbol resolution: unknown categories fall back to the
// no-op extractor.
type Registry struct {
	byCategory map[constants.Category]CategoryExtractor
	fallback   CategoryExtractor
}

func NewRegistry(logger *slog.Logger) *Registry {
	invoice := NewInvoiceExtractor(logger)
	return &Registry{
		byCategory: map[constants.Category]CategoryExtractor{
			constants.Invoice: invoice,
			constants.Receipt: invoice,
		},
		fallback: NoopExtractor{},
	}
}

// ForCategory returns the extractor registered for cat, or the no-op
// fallback.
func (r *Registry) ForCategory(cat constants.Category) CategoryExtractor {
	if x, ok := r.byCategory[cat]; ok {
		return x
	}
	return r.fallback
}
