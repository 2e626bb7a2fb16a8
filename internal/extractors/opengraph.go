package extractors

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/merx/internal/common"
	"github.com/ternarybob/merx/internal/interfaces"
	"github.com/ternarybob/merx/internal/models"
)

const openGraphConfidence = 0.70

// OpenGraphExtractor reads social-preview meta tags. It only fires when
// a price-like, brand-like, or product-type tag is present, which keeps
// it from producing false positives on articles and other non-product
// pages that still carry og:title.
type OpenGraphExtractor struct {
	logger arbor.ILogger
}

// NewOpenGraphExtractor creates a new social-preview-metadata extractor.
func NewOpenGraphExtractor(logger arbor.ILogger) *OpenGraphExtractor {
	return &OpenGraphExtractor{logger: logger}
}

func (e *OpenGraphExtractor) Name() string {
	return "opengraph"
}

func (e *OpenGraphExtractor) Priority() int {
	return 20
}

// CanRun requires a product signal, not just any preview metadata.
func (e *OpenGraphExtractor) CanRun(doc *goquery.Document) bool {
	if metaContent(doc, "product:price:amount") != "" || metaContent(doc, "og:price:amount") != "" {
		return true
	}
	if metaContent(doc, "product:brand") != "" || metaContent(doc, "og:brand") != "" {
		return true
	}
	ogType := strings.ToLower(metaContent(doc, "og:type"))
	return ogType == "product" || strings.HasPrefix(ogType, "product.")
}

// Run maps preview meta tags onto a candidate record.
func (e *OpenGraphExtractor) Run(ctx context.Context, doc *goquery.Document) *models.ExtractionResult {
	record := &models.ProductRecord{}

	if title := metaContent(doc, "og:title"); title != "" {
		record.Title = common.CollapseWhitespace(title)
	}
	if brand := firstMetaContent(doc, "product:brand", "og:brand"); brand != "" {
		record.Brand = common.CollapseWhitespace(brand)
	}
	if desc := metaContent(doc, "og:description"); desc != "" {
		record.Description = descriptionFromText(desc)
	}
	if images := metaContents(doc, "og:image"); len(images) > 0 {
		record.Images = images
	}
	if price := e.price(doc); price != nil {
		record.Price = price
	}

	return &models.ExtractionResult{
		Record:     record,
		Confidence: openGraphConfidence,
		Source:     models.SourceSocialMeta,
		Method:     "open-graph",
		Extractor:  e.Name(),
		Fields:     record.PresentFields(),
	}
}

func (e *OpenGraphExtractor) price(doc *goquery.Document) *models.Price {
	amount := firstMetaContent(doc, "product:price:amount", "og:price:amount")
	if amount == "" {
		return nil
	}

	price := ParsePrice(amount)
	if price == nil {
		return nil
	}
	if currency := firstMetaContent(doc, "product:price:currency", "og:price:currency"); currency != "" {
		price.Currency = strings.ToUpper(strings.TrimSpace(currency))
	}
	return price
}

// metaContent returns the content of the first meta tag matching the
// given property (or name) attribute.
func metaContent(doc *goquery.Document, property string) string {
	sel := doc.Find(`meta[property="` + property + `"], meta[name="` + property + `"]`).First()
	if sel.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(sel.AttrOr("content", ""))
}

func firstMetaContent(doc *goquery.Document, properties ...string) string {
	for _, property := range properties {
		if v := metaContent(doc, property); v != "" {
			return v
		}
	}
	return ""
}

func metaContents(doc *goquery.Document, property string) []string {
	var values []string
	seen := make(map[string]bool)
	doc.Find(`meta[property="`+property+`"], meta[name="`+property+`"]`).Each(func(i int, sel *goquery.Selection) {
		if v := strings.TrimSpace(sel.AttrOr("content", "")); v != "" && !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	})
	return values
}

var _ interfaces.Extractor = (*OpenGraphExtractor)(nil)
