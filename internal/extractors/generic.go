package extractors

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/merx/internal/common"
	"github.com/ternarybob/merx/internal/interfaces"
	"github.com/ternarybob/merx/internal/models"
)

// Generic extraction has no external ground truth, so field coverage is
// its only quality signal: confidence starts at the base and is raised
// as more of the six tracked fields are found.
const (
	genericBaseConfidence = 0.40
	genericMidConfidence  = 0.55
	genericHighConfidence = 0.65
)

var countPattern = regexp.MustCompile(`\d[\d,]*`)
var ratingPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// GenericExtractor tries ranked CSS selector lists per field. It is the
// lowest-trust extractor and runs last, catching pages with no
// structured markup at all.
type GenericExtractor struct {
	selectors *SelectorTable
	logger    arbor.ILogger
}

// NewGenericExtractor creates a generic pattern-matching extractor.
// A nil table uses the built-in default selectors.
func NewGenericExtractor(selectors *SelectorTable, logger arbor.ILogger) *GenericExtractor {
	if selectors == nil {
		selectors = DefaultSelectors()
	}
	return &GenericExtractor{selectors: selectors, logger: logger}
}

func (e *GenericExtractor) Name() string {
	return "generic"
}

func (e *GenericExtractor) Priority() int {
	return 10
}

// CanRun always returns true; the generic extractor is the catch-all.
func (e *GenericExtractor) CanRun(doc *goquery.Document) bool {
	return true
}

// Run tries each field's selector list in rank order and scores the
// result by how many of the six tracked fields were found.
func (e *GenericExtractor) Run(ctx context.Context, doc *goquery.Document) *models.ExtractionResult {
	record := &models.ProductRecord{}
	found := 0

	if title := e.firstText(doc, e.selectors.Title); title != "" {
		record.Title = title
		found++
	}
	if raw := e.firstText(doc, e.selectors.Price); raw != "" {
		if price := ParsePrice(raw); price != nil {
			record.Price = price
			found++
		}
	}
	if brand := e.firstText(doc, e.selectors.Brand); brand != "" {
		record.Brand = brand
		found++
	}
	if images := e.imageSources(doc); len(images) > 0 {
		record.Images = images
		found++
	}
	if sel := e.firstSelection(doc, e.selectors.Description); sel != nil {
		if desc := descriptionFromSelection(sel); desc != nil {
			record.Description = desc
			found++
		}
	}
	if reviews := e.reviews(doc); reviews != nil {
		record.Reviews = reviews
		found++
	}

	confidence := genericBaseConfidence
	switch {
	case found >= 4:
		confidence = genericHighConfidence
	case found >= 2:
		confidence = genericMidConfidence
	}

	return &models.ExtractionResult{
		Record:     record,
		Confidence: confidence,
		Source:     models.SourceGeneric,
		Method:     "selector",
		Extractor:  e.Name(),
		Fields:     record.PresentFields(),
	}
}

// firstSelection returns the first matching non-empty selection across
// the ranked selector list.
func (e *GenericExtractor) firstSelection(doc *goquery.Document, selectors []string) *goquery.Selection {
	for _, selector := range selectors {
		sel := doc.Find(selector).First()
		if sel.Length() > 0 && common.CollapseWhitespace(sel.Text()) != "" {
			return sel
		}
	}
	return nil
}

func (e *GenericExtractor) firstText(doc *goquery.Document, selectors []string) string {
	sel := e.firstSelection(doc, selectors)
	if sel == nil {
		return ""
	}
	return common.CollapseWhitespace(sel.Text())
}

// imageSources collects img src values from the first selector that
// yields any.
func (e *GenericExtractor) imageSources(doc *goquery.Document) []string {
	for _, selector := range e.selectors.Images {
		var images []string
		seen := make(map[string]bool)
		doc.Find(selector).Each(func(i int, sel *goquery.Selection) {
			src := strings.TrimSpace(sel.AttrOr("src", ""))
			if src == "" {
				src = strings.TrimSpace(sel.AttrOr("data-src", ""))
			}
			if src != "" && !seen[src] {
				seen[src] = true
				images = append(images, src)
			}
		})
		if len(images) > 0 {
			return images
		}
	}
	return nil
}

func (e *GenericExtractor) reviews(doc *goquery.Document) *models.ReviewSummary {
	summary := &models.ReviewSummary{}
	foundAny := false

	if text := e.firstText(doc, e.selectors.ReviewCount); text != "" {
		if m := countPattern.FindString(text); m != "" {
			if count, err := strconv.Atoi(strings.ReplaceAll(m, ",", "")); err == nil {
				summary.Count = count
				foundAny = true
			}
		}
	}
	if text := e.firstText(doc, e.selectors.ReviewAverage); text != "" {
		if m := ratingPattern.FindString(text); m != "" {
			if avg, err := strconv.ParseFloat(m, 64); err == nil && avg <= 5 {
				summary.Average = avg
				foundAny = true
			}
		}
	}

	if !foundAny {
		return nil
	}
	return summary
}

var _ interfaces.Extractor = (*GenericExtractor)(nil)
