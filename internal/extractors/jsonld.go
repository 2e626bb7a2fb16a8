package extractors

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/merx/internal/common"
	"github.com/ternarybob/merx/internal/interfaces"
	"github.com/ternarybob/merx/internal/models"
)

const (
	jsonLDConfidence = 0.95
	jsonLDMaxDepth   = 6
)

// JSONLDExtractor reads embedded JSON-LD structured data blocks and maps
// the first Product node it finds onto a candidate record. It is the
// highest-trust extractor because structured data is authored for
// machine consumption.
type JSONLDExtractor struct {
	logger arbor.ILogger
}

// NewJSONLDExtractor creates a new structured-data extractor.
func NewJSONLDExtractor(logger arbor.ILogger) *JSONLDExtractor {
	return &JSONLDExtractor{logger: logger}
}

func (e *JSONLDExtractor) Name() string {
	return "jsonld"
}

func (e *JSONLDExtractor) Priority() int {
	return 40
}

// CanRun reports whether the document embeds any JSON-LD blocks.
func (e *JSONLDExtractor) CanRun(doc *goquery.Document) bool {
	return doc.Find(`script[type="application/ld+json"]`).Length() > 0
}

// Run parses every JSON-LD block and maps the first Product node found.
func (e *JSONLDExtractor) Run(ctx context.Context, doc *goquery.Document) *models.ExtractionResult {
	record := &models.ProductRecord{}

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, s *goquery.Selection) bool {
		var node any
		if err := json.Unmarshal([]byte(s.Text()), &node); err != nil {
			e.logger.Debug().Int("block", i).Err(err).Msg("Skipping malformed JSON-LD block")
			return true
		}

		product := findProductNode(node, 0)
		if product == nil {
			return true
		}

		e.mapProduct(product, record)
		// Stop at the first block that yielded fields.
		return len(record.PresentFields()) == 0
	})

	fields := record.PresentFields()
	return &models.ExtractionResult{
		Record:     record,
		Confidence: jsonLDConfidence,
		Source:     models.SourceStructuredData,
		Method:     "json-ld",
		Extractor:  e.Name(),
		Fields:     fields,
	}
}

// findProductNode recursively searches nested containers (main entity,
// list items, graph arrays) for a node typed as a Product.
func findProductNode(node any, depth int) map[string]any {
	if depth > jsonLDMaxDepth {
		return nil
	}

	switch n := node.(type) {
	case map[string]any:
		if isProductType(n["@type"]) {
			return n
		}
		for _, key := range []string{"mainEntity", "@graph", "itemListElement", "item", "mainEntityOfPage"} {
			if child, ok := n[key]; ok {
				if found := findProductNode(child, depth+1); found != nil {
					return found
				}
			}
		}
	case []any:
		for _, child := range n {
			if found := findProductNode(child, depth+1); found != nil {
				return found
			}
		}
	}
	return nil
}

// isProductType accepts both a bare "Product" type and prefixed or
// multi-typed declarations.
func isProductType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "Product" || strings.HasSuffix(v, ":Product") || strings.HasSuffix(v, "/Product")
	case []any:
		for _, item := range v {
			if isProductType(item) {
				return true
			}
		}
	}
	return false
}

// mapProduct maps canonical JSON-LD product fields onto the record.
func (e *JSONLDExtractor) mapProduct(node map[string]any, record *models.ProductRecord) {
	if name, ok := node["name"].(string); ok {
		record.Title = common.CollapseWhitespace(name)
	}
	if brand := brandName(node["brand"]); brand != "" {
		record.Brand = brand
	}
	if price := offerPrice(node["offers"]); price != nil {
		record.Price = price
	}
	if reviews := aggregateRating(node["aggregateRating"]); reviews != nil {
		record.Reviews = reviews
	}
	if images := imageList(node["image"]); len(images) > 0 {
		record.Images = images
	}
	if desc, ok := node["description"].(string); ok {
		record.Description = descriptionFromText(desc)
	}
	if sku := stringValue(node["sku"]); sku != "" {
		record.SKU = sku
	}
}

// brandName handles both a bare string brand and a Brand object.
func brandName(v any) string {
	switch b := v.(type) {
	case string:
		return common.CollapseWhitespace(b)
	case map[string]any:
		if name, ok := b["name"].(string); ok {
			return common.CollapseWhitespace(name)
		}
	}
	return ""
}

// offerPrice reads the first offer's price and currency.
func offerPrice(v any) *models.Price {
	var offer map[string]any
	switch o := v.(type) {
	case map[string]any:
		offer = o
	case []any:
		for _, item := range o {
			if m, ok := item.(map[string]any); ok {
				offer = m
				break
			}
		}
	}
	if offer == nil {
		return nil
	}

	value, ok := floatValue(offer["price"])
	if !ok {
		if spec, isMap := offer["priceSpecification"].(map[string]any); isMap {
			value, ok = floatValue(spec["price"])
		}
	}
	if !ok {
		return nil
	}

	return &models.Price{
		Value:    value,
		Currency: stringValue(offer["priceCurrency"]),
		Raw:      stringValue(offer["price"]),
	}
}

// aggregateRating reads ratingValue plus reviewCount or ratingCount.
func aggregateRating(v any) *models.ReviewSummary {
	rating, ok := v.(map[string]any)
	if !ok {
		return nil
	}

	average, hasAverage := floatValue(rating["ratingValue"])
	count, hasCount := floatValue(rating["reviewCount"])
	if !hasCount {
		count, hasCount = floatValue(rating["ratingCount"])
	}
	if !hasAverage && !hasCount {
		return nil
	}

	return &models.ReviewSummary{Average: average, Count: int(count)}
}

func imageList(v any) []string {
	switch img := v.(type) {
	case string:
		if img != "" {
			return []string{img}
		}
	case []any:
		var images []string
		for _, item := range img {
			switch i := item.(type) {
			case string:
				if i != "" {
					images = append(images, i)
				}
			case map[string]any:
				if u := stringValue(i["url"]); u != "" {
					images = append(images, u)
				}
			}
		}
		return images
	case map[string]any:
		if u := stringValue(img["url"]); u != "" {
			return []string{u}
		}
	}
	return nil
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}

func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

var _ interfaces.Extractor = (*JSONLDExtractor)(nil)
