package extractors

import (
	"context"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/merx/internal/common"
	"github.com/ternarybob/merx/internal/interfaces"
	"github.com/ternarybob/merx/internal/models"
)

const microdataConfidence = 0.85

const productScopeSelector = `[itemscope][itemtype*="schema.org/Product"]`

// MicrodataExtractor reads schema.org microdata: elements scoped to a
// Product item-type with itemprop children. An explicit content
// attribute wins over element-specific attributes, which win over
// plain text.
type MicrodataExtractor struct {
	logger arbor.ILogger
}

// NewMicrodataExtractor creates a new microdata extractor.
func NewMicrodataExtractor(logger arbor.ILogger) *MicrodataExtractor {
	return &MicrodataExtractor{logger: logger}
}

func (e *MicrodataExtractor) Name() string {
	return "microdata"
}

func (e *MicrodataExtractor) Priority() int {
	return 30
}

// CanRun reports whether the document contains a Product item scope.
func (e *MicrodataExtractor) CanRun(doc *goquery.Document) bool {
	return doc.Find(productScopeSelector).Length() > 0
}

// Run reads itemprop values from the first Product scope.
func (e *MicrodataExtractor) Run(ctx context.Context, doc *goquery.Document) *models.ExtractionResult {
	record := &models.ProductRecord{}
	scope := doc.Find(productScopeSelector).First()

	if title := e.prop(scope, "name"); title != "" {
		record.Title = title
	}
	if brand := e.brand(scope); brand != "" {
		record.Brand = brand
	}
	if price := e.price(scope); price != nil {
		record.Price = price
	}
	if reviews := e.reviews(scope); reviews != nil {
		record.Reviews = reviews
	}
	if images := e.images(scope); len(images) > 0 {
		record.Images = images
	}
	if desc := scope.Find(`[itemprop="description"]`).First(); desc.Length() > 0 {
		record.Description = descriptionFromSelection(desc)
	}
	if sku := e.prop(scope, "sku"); sku != "" {
		record.SKU = sku
	}

	return &models.ExtractionResult{
		Record:     record,
		Confidence: microdataConfidence,
		Source:     models.SourceMicrodata,
		Method:     "itemprop",
		Extractor:  e.Name(),
		Fields:     record.PresentFields(),
	}
}

// prop returns the value of the first matching itemprop within scope.
func (e *MicrodataExtractor) prop(scope *goquery.Selection, name string) string {
	sel := scope.Find(`[itemprop="` + name + `"]`).First()
	if sel.Length() == 0 {
		return ""
	}
	return propValue(sel)
}

// propValue prefers an explicit content attribute, then element-specific
// attributes, then plain text.
func propValue(sel *goquery.Selection) string {
	if v, ok := sel.Attr("content"); ok && v != "" {
		return strings.TrimSpace(v)
	}
	switch goquery.NodeName(sel) {
	case "img":
		if v, ok := sel.Attr("src"); ok && v != "" {
			return strings.TrimSpace(v)
		}
	case "a", "link":
		if v, ok := sel.Attr("href"); ok && v != "" {
			return strings.TrimSpace(v)
		}
	case "time":
		if v, ok := sel.Attr("datetime"); ok && v != "" {
			return strings.TrimSpace(v)
		}
	}
	return common.CollapseWhitespace(sel.Text())
}

// brand handles both a bare itemprop value and a nested Brand scope.
func (e *MicrodataExtractor) brand(scope *goquery.Selection) string {
	sel := scope.Find(`[itemprop="brand"]`).First()
	if sel.Length() == 0 {
		return ""
	}
	if _, nested := sel.Attr("itemscope"); nested {
		if name := sel.Find(`[itemprop="name"]`).First(); name.Length() > 0 {
			return propValue(name)
		}
	}
	return propValue(sel)
}

func (e *MicrodataExtractor) price(scope *goquery.Selection) *models.Price {
	raw := e.prop(scope, "price")
	if raw == "" {
		return nil
	}

	currency := e.prop(scope, "priceCurrency")

	// Microdata prices are usually bare numbers; fall back to full
	// price-text parsing when they are not.
	if value, err := strconv.ParseFloat(raw, 64); err == nil {
		return &models.Price{Value: value, Currency: currency, Raw: raw}
	}
	price := ParsePrice(raw)
	if price != nil && price.Currency == "" {
		price.Currency = currency
	}
	return price
}

func (e *MicrodataExtractor) reviews(scope *goquery.Selection) *models.ReviewSummary {
	avgText := e.prop(scope, "ratingValue")
	countText := e.prop(scope, "reviewCount")
	if countText == "" {
		countText = e.prop(scope, "ratingCount")
	}
	if avgText == "" && countText == "" {
		return nil
	}

	summary := &models.ReviewSummary{}
	if avg, err := strconv.ParseFloat(avgText, 64); err == nil {
		summary.Average = avg
	}
	if count, err := strconv.Atoi(countText); err == nil {
		summary.Count = count
	}
	return summary
}

func (e *MicrodataExtractor) images(scope *goquery.Selection) []string {
	var images []string
	seen := make(map[string]bool)
	scope.Find(`[itemprop="image"]`).Each(func(i int, sel *goquery.Selection) {
		if src := propValue(sel); src != "" && !seen[src] {
			seen[src] = true
			images = append(images, src)
		}
	})
	return images
}

var _ interfaces.Extractor = (*MicrodataExtractor)(nil)
