package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/merx/internal/extractors"
	"github.com/ternarybob/merx/internal/models"
)

// fakeExtractor returns a canned result, letting merge behavior be
// tested without real HTML parsing.
type fakeExtractor struct {
	name     string
	priority int
	canRun   bool
	result   *models.ExtractionResult
	delay    time.Duration
	panics   bool
}

func (f *fakeExtractor) Name() string                      { return f.name }
func (f *fakeExtractor) Priority() int                     { return f.priority }
func (f *fakeExtractor) CanRun(doc *goquery.Document) bool { return f.canRun }
func (f *fakeExtractor) Run(ctx context.Context, doc *goquery.Document) *models.ExtractionResult {
	if f.panics {
		panic("extractor blew up")
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.result
}

func fakeResult(name string, confidence float64, record *models.ProductRecord) *models.ExtractionResult {
	return &models.ExtractionResult{
		Record:     record,
		Confidence: confidence,
		Extractor:  name,
		Fields:     record.PresentFields(),
	}
}

func emptyDoc(t *testing.T) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	require.NoError(t, err)
	return doc
}

func TestPipeline_MergeHighestConfidenceWins(t *testing.T) {
	p := New(Options{}, arbor.NewNoOpLogger())
	p.Register(&fakeExtractor{
		name: "low", priority: 10, canRun: true,
		result: fakeResult("low", 0.40, &models.ProductRecord{
			Title: "Low Title",
			Brand: "Low Brand",
			SKU:   "LOW-1",
		}),
	})
	p.Register(&fakeExtractor{
		name: "high", priority: 40, canRun: true,
		result: fakeResult("high", 0.95, &models.ProductRecord{
			Title: "High Title",
			Brand: "High Brand",
		}),
	})

	result := p.Extract(context.Background(), emptyDoc(t), "generic", "https://example.com/p/1")

	// High-confidence extractor owns the contested fields; the low one
	// still contributes the field only it found.
	assert.Equal(t, "High Title", result.Record.Title)
	assert.Equal(t, "High Brand", result.Record.Brand)
	assert.Equal(t, "LOW-1", result.Record.SKU)
	assert.Equal(t, "high", result.FieldSources[models.FieldTitle])
	assert.Equal(t, "low", result.FieldSources[models.FieldSKU])
	assert.Equal(t, 0.95, result.FieldConfidence[models.FieldTitle])
}

func TestPipeline_ConfidenceIsFieldCountWeighted(t *testing.T) {
	p := New(Options{}, arbor.NewNoOpLogger())
	p.Register(&fakeExtractor{
		name: "structured", priority: 40, canRun: true,
		result: fakeResult("structured", 0.95, &models.ProductRecord{
			Title: "Widget",
			Brand: "Acme",
			SKU:   "W-1",
		}),
	})
	p.Register(&fakeExtractor{
		name: "generic", priority: 10, canRun: true,
		result: fakeResult("generic", 0.40, &models.ProductRecord{
			Images: []string{"https://cdn.example.com/w.jpg"},
		}),
	})

	result := p.Extract(context.Background(), emptyDoc(t), "generic", "")

	// Three fields at 0.95, one at 0.40.
	expected := (0.95*3 + 0.40*1) / 4
	assert.InDelta(t, expected, result.Confidence, 1e-9)
}

func TestPipeline_NoSignalYieldsEmptyRecord(t *testing.T) {
	p := New(Options{}, arbor.NewNoOpLogger())
	p.Register(&fakeExtractor{name: "silent", priority: 10, canRun: false})

	result := p.Extract(context.Background(), emptyDoc(t), "amazon", "https://example.com")

	assert.False(t, result.IsProduct())
	assert.Equal(t, 0.0, result.Confidence)
	assert.Empty(t, result.Record.PresentFields())
	assert.Empty(t, result.FieldSources)
	// Page context is only stamped on usable product records.
	assert.Empty(t, result.Record.Platform)
	assert.Empty(t, result.Record.SourceURL)
	assert.True(t, result.Record.CapturedAt.IsZero())
}

func TestPipeline_StampsContextOnProductRecords(t *testing.T) {
	p := New(Options{}, arbor.NewNoOpLogger())
	p.Register(&fakeExtractor{
		name: "structured", priority: 40, canRun: true,
		result: fakeResult("structured", 0.95, &models.ProductRecord{Title: "Widget"}),
	})

	result := p.Extract(context.Background(), emptyDoc(t), "shopify", "https://shop.example.com/p/widget")

	require.True(t, result.IsProduct())
	assert.Equal(t, "shopify", result.Record.Platform)
	assert.Equal(t, "https://shop.example.com/p/widget", result.Record.SourceURL)
	assert.False(t, result.Record.CapturedAt.IsZero())
	assert.NotEmpty(t, result.ID)
}

func TestPipeline_MinConfidenceFilter(t *testing.T) {
	p := New(Options{MinConfidence: 0.50}, arbor.NewNoOpLogger())
	p.Register(&fakeExtractor{
		name: "weak", priority: 10, canRun: true,
		result: fakeResult("weak", 0.40, &models.ProductRecord{Title: "Weak Title"}),
	})

	result := p.Extract(context.Background(), emptyDoc(t), "generic", "")

	assert.False(t, result.IsProduct())
}

func TestPipeline_StopAfterFirstHit(t *testing.T) {
	second := &fakeExtractor{
		name: "second", priority: 20, canRun: true,
		result: fakeResult("second", 0.70, &models.ProductRecord{Brand: "Late Brand"}),
	}

	p := New(Options{StopAfterFirstHit: true}, arbor.NewNoOpLogger())
	p.Register(second)
	p.Register(&fakeExtractor{
		name: "first", priority: 40, canRun: true,
		result: fakeResult("first", 0.95, &models.ProductRecord{Title: "First Title"}),
	})

	result := p.Extract(context.Background(), emptyDoc(t), "generic", "")

	assert.Equal(t, "First Title", result.Record.Title)
	assert.Empty(t, result.Record.Brand)
}

func TestPipeline_TimedOutExtractorIsDiscarded(t *testing.T) {
	p := New(Options{ExtractorTimeout: 30 * time.Millisecond}, arbor.NewNoOpLogger())
	p.Register(&fakeExtractor{
		name: "slow", priority: 40, canRun: true, delay: 500 * time.Millisecond,
		result: fakeResult("slow", 0.95, &models.ProductRecord{Title: "Too Late"}),
	})
	p.Register(&fakeExtractor{
		name: "fast", priority: 10, canRun: true,
		result: fakeResult("fast", 0.40, &models.ProductRecord{Title: "Fast Title"}),
	})

	result := p.Extract(context.Background(), emptyDoc(t), "generic", "")

	assert.Equal(t, "Fast Title", result.Record.Title)
	assert.Equal(t, "fast", result.FieldSources[models.FieldTitle])
}

func TestPipeline_PanickingExtractorDoesNotAbortRun(t *testing.T) {
	p := New(Options{}, arbor.NewNoOpLogger())
	p.Register(&fakeExtractor{name: "broken", priority: 40, canRun: true, panics: true})
	p.Register(&fakeExtractor{
		name: "survivor", priority: 10, canRun: true,
		result: fakeResult("survivor", 0.40, &models.ProductRecord{Title: "Still Here"}),
	})

	result := p.Extract(context.Background(), emptyDoc(t), "generic", "")

	assert.Equal(t, "Still Here", result.Record.Title)
}

func TestPipeline_DeterministicAcrossRuns(t *testing.T) {
	build := func() *Pipeline {
		p := New(Options{}, arbor.NewNoOpLogger())
		p.Register(&fakeExtractor{
			name: "a", priority: 40, canRun: true,
			result: fakeResult("a", 0.95, &models.ProductRecord{Title: "Widget", Brand: "Acme"}),
		})
		p.Register(&fakeExtractor{
			name: "b", priority: 20, canRun: true,
			result: fakeResult("b", 0.70, &models.ProductRecord{Title: "Widget Pro", Images: []string{"x.jpg"}}),
		})
		return p
	}

	first := build().Extract(context.Background(), emptyDoc(t), "generic", "")
	second := build().Extract(context.Background(), emptyDoc(t), "generic", "")

	assert.Equal(t, first.Record.Title, second.Record.Title)
	assert.Equal(t, first.FieldSources, second.FieldSources)
	assert.Equal(t, first.Confidence, second.Confidence)
}

func TestPipeline_EndToEndStructuredPage(t *testing.T) {
	html := `<html><head>
	<meta property="og:type" content="product">
	<meta property="og:title" content="Acme Widget - Buy Now">
	<meta property="og:image" content="https://cdn.example.com/social.jpg">
	<script type="application/ld+json">
	{"@type": "Product", "name": "Acme Widget", "brand": "Acme",
	 "offers": {"price": "19.99", "priceCurrency": "USD"}}
	</script>
	</head><body><h1>Acme Widget</h1></body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	logger := arbor.NewNoOpLogger()
	p := New(Options{}, logger)
	p.Register(extractors.NewJSONLDExtractor(logger))
	p.Register(extractors.NewMicrodataExtractor(logger))
	p.Register(extractors.NewOpenGraphExtractor(logger))
	p.Register(extractors.NewGenericExtractor(nil, logger))

	result := p.Extract(context.Background(), doc, "generic", "https://example.com/widget")

	require.True(t, result.IsProduct())
	// Structured data owns the title; social metadata only fills what
	// the higher-trust extractors left open.
	assert.Equal(t, "Acme Widget", result.Record.Title)
	assert.Equal(t, "jsonld", result.FieldSources[models.FieldTitle])
	assert.Equal(t, "jsonld", result.FieldSources[models.FieldPrice])
	assert.Equal(t, "opengraph", result.FieldSources[models.FieldImages])
	assert.Greater(t, result.Confidence, 0.85)
}
