package interfaces

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/merx/internal/models"
)

// Extractor inspects a parsed document and produces a candidate partial
// record with confidence and provenance.
//
// CanRun must be cheap and side-effect-free. Run must never panic:
// internal failures degrade to a partial or empty result so one failing
// extractor cannot abort the pipeline.
type Extractor interface {
	// Name returns the extractor identifier used in provenance maps.
	Name() string

	// Priority orders extractors in the pipeline; higher runs first.
	Priority() int

	// CanRun reports whether the document carries the signal this
	// extractor reads.
	CanRun(doc *goquery.Document) bool

	// Run extracts a candidate result from the document. It returns an
	// empty (never nil-record) result when nothing usable is found.
	Run(ctx context.Context, doc *goquery.Document) *models.ExtractionResult
}
