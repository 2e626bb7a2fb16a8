package extractors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/merx/internal/models"
)

func TestOpenGraphExtractor_CanRun(t *testing.T) {
	extractor := NewOpenGraphExtractor(arbor.NewNoOpLogger())

	tests := []struct {
		name string
		html string
		want bool
	}{
		{
			name: "price amount tag",
			html: `<html><head><meta property="product:price:amount" content="9.99"></head></html>`,
			want: true,
		},
		{
			name: "brand tag",
			html: `<html><head><meta property="og:brand" content="Acme"></head></html>`,
			want: true,
		},
		{
			name: "product og type",
			html: `<html><head><meta property="og:type" content="product"></head></html>`,
			want: true,
		},
		{
			name: "product group og type",
			html: `<html><head><meta property="og:type" content="product.group"></head></html>`,
			want: true,
		},
		{
			name: "article with title only",
			html: `<html><head><meta property="og:type" content="article"><meta property="og:title" content="Ten tips"></head></html>`,
			want: false,
		},
		{
			name: "no preview metadata",
			html: `<html><head><title>Plain</title></head></html>`,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractor.CanRun(docFromHTML(t, tt.html)))
		})
	}
}

func TestOpenGraphExtractor_Run(t *testing.T) {
	html := `<html><head>
	<meta property="og:type" content="product">
	<meta property="og:title" content="Trail Running Shoes">
	<meta property="og:description" content="Grippy outsole for wet trails.">
	<meta property="og:image" content="https://cdn.example.com/shoe-1.jpg">
	<meta property="og:image" content="https://cdn.example.com/shoe-2.jpg">
	<meta property="product:brand" content="Ridgeline">
	<meta property="product:price:amount" content="129.00">
	<meta property="product:price:currency" content="usd">
	</head><body></body></html>`

	extractor := NewOpenGraphExtractor(arbor.NewNoOpLogger())
	result := extractor.Run(context.Background(), docFromHTML(t, html))

	assert.Equal(t, 0.70, result.Confidence)
	assert.Equal(t, models.SourceSocialMeta, result.Source)

	record := result.Record
	assert.Equal(t, "Trail Running Shoes", record.Title)
	assert.Equal(t, "Ridgeline", record.Brand)
	require.NotNil(t, record.Description)
	assert.Equal(t, "Grippy outsole for wet trails.", record.Description.Text)
	assert.Len(t, record.Images, 2)
	require.NotNil(t, record.Price)
	assert.Equal(t, 129.00, record.Price.Value)
	assert.Equal(t, "USD", record.Price.Currency)
}
