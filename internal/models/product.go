package models

import (
	"time"
)

// Canonical field names used in provenance and confidence maps.
const (
	FieldTitle       = "title"
	FieldBrand       = "brand"
	FieldPrice       = "price"
	FieldBullets     = "bullets"
	FieldDescription = "description"
	FieldImages      = "images"
	FieldVariants    = "variants"
	FieldSpecs       = "specs"
	FieldReviews     = "reviews"
	FieldSKU         = "sku"
)

// Price holds a parsed price alongside the raw text it was parsed from.
type Price struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
	Raw      string  `json:"raw,omitempty"`
}

// Description holds the product description as markdown markup plus
// a whitespace-collapsed plain text rendering.
type Description struct {
	Markup string `json:"markup"`
	Text   string `json:"text"`
}

// Variant represents one product variant axis (e.g. "Color") and its options.
type Variant struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// SpecEntry is a single key/value specification row.
type SpecEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ReviewSummary aggregates customer review signals for a product.
type ReviewSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// ProductRecord is the canonical merged record describing one product page.
// Title is mandatory; a merged record without a title is treated as
// "not a product page" by callers.
type ProductRecord struct {
	Title       string         `json:"title"`
	Brand       string         `json:"brand,omitempty"`
	Price       *Price         `json:"price,omitempty"`
	Bullets     []string       `json:"bullets,omitempty"`
	Description *Description   `json:"description,omitempty"`
	Images      []string       `json:"images,omitempty"`
	Variants    []Variant      `json:"variants,omitempty"`
	Specs       []SpecEntry    `json:"specs,omitempty"`
	Reviews     *ReviewSummary `json:"reviews,omitempty"`
	SKU         string         `json:"sku,omitempty"`
	Platform    string         `json:"platform,omitempty"`
	SourceURL   string         `json:"source_url,omitempty"`
	CapturedAt  time.Time      `json:"captured_at,omitempty"`
}

// HasField reports whether the named field carries a non-empty value.
func (r *ProductRecord) HasField(name string) bool {
	switch name {
	case FieldTitle:
		return r.Title != ""
	case FieldBrand:
		return r.Brand != ""
	case FieldPrice:
		return r.Price != nil
	case FieldBullets:
		return len(r.Bullets) > 0
	case FieldDescription:
		return r.Description != nil
	case FieldImages:
		return len(r.Images) > 0
	case FieldVariants:
		return len(r.Variants) > 0
	case FieldSpecs:
		return len(r.Specs) > 0
	case FieldReviews:
		return r.Reviews != nil
	case FieldSKU:
		return r.SKU != ""
	default:
		return false
	}
}

// AdoptField copies the named field value from src into r. Unknown field
// names are ignored so the merge step stays tolerant of extractor drift.
func (r *ProductRecord) AdoptField(name string, src *ProductRecord) {
	if src == nil {
		return
	}
	switch name {
	case FieldTitle:
		r.Title = src.Title
	case FieldBrand:
		r.Brand = src.Brand
	case FieldPrice:
		r.Price = src.Price
	case FieldBullets:
		r.Bullets = src.Bullets
	case FieldDescription:
		r.Description = src.Description
	case FieldImages:
		r.Images = src.Images
	case FieldVariants:
		r.Variants = src.Variants
	case FieldSpecs:
		r.Specs = src.Specs
	case FieldReviews:
		r.Reviews = src.Reviews
	case FieldSKU:
		r.SKU = src.SKU
	}
}

// PresentFields returns the canonical names of all populated fields,
// in canonical field order.
func (r *ProductRecord) PresentFields() []string {
	all := []string{
		FieldTitle, FieldBrand, FieldPrice, FieldBullets, FieldDescription,
		FieldImages, FieldVariants, FieldSpecs, FieldReviews, FieldSKU,
	}
	var present []string
	for _, name := range all {
		if r.HasField(name) {
			present = append(present, name)
		}
	}
	return present
}

// SpecKeys returns the normalized (lowercase, underscore-separated) keys
// of all specification entries.
func (r *ProductRecord) SpecKeys() map[string]bool {
	keys := make(map[string]bool, len(r.Specs))
	for _, s := range r.Specs {
		keys[NormalizeAttributeKey(s.Key)] = true
	}
	return keys
}
