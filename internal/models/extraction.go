package models

import (
	"time"
)

// ExtractionSource categorizes where an extractor reads its signal from.
type ExtractionSource string

const (
	SourceStructuredData ExtractionSource = "structured-data"
	SourceMicrodata      ExtractionSource = "microdata"
	SourceSocialMeta     ExtractionSource = "social-meta"
	SourceGeneric        ExtractionSource = "generic"
)

// ExtractionResult is one extractor's candidate data, confidence and
// provenance for a single page. Produced once per extractor per page and
// consumed only by the merge step.
type ExtractionResult struct {
	Record     *ProductRecord   `json:"record"`
	Confidence float64          `json:"confidence"`
	Source     ExtractionSource `json:"source"`
	Method     string           `json:"method"`
	Extractor  string           `json:"extractor"`
	Fields     []string         `json:"fields"`
}

// Empty reports whether the result carries no extracted fields.
func (r *ExtractionResult) Empty() bool {
	return r == nil || r.Record == nil || len(r.Fields) == 0
}

// PipelineResult is the outcome of one full extraction pass: the merged
// record, overall confidence, and per-field provenance.
//
// Invariant: every key in FieldSources also exists in the merged record.
// Confidence is a field-count-weighted average across contributing
// extractors, not a flat mean.
type PipelineResult struct {
	ID              string              `json:"id"`
	Record          *ProductRecord      `json:"record"`
	Confidence      float64             `json:"confidence"`
	FieldConfidence map[string]float64  `json:"field_confidence"`
	FieldSources    map[string]string   `json:"field_sources"`
	Results         []*ExtractionResult `json:"results,omitempty"`
	Elapsed         time.Duration       `json:"elapsed"`
}

// IsProduct reports whether the pass produced a usable product record.
// A zero-confidence result means "not a product page" and must not be
// retried by callers.
func (p *PipelineResult) IsProduct() bool {
	return p != nil && p.Confidence > 0 && p.Record != nil && p.Record.Title != ""
}
