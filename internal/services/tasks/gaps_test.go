package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/merx/internal/models"
)

func TestGapsHeuristic_NoSpecs(t *testing.T) {
	contract := &gapsContract{}
	record := &models.ProductRecord{Title: "Acme Widget", Platform: "generic"}

	data := contract.Heuristic(record)
	result, ok := data.(*models.GapResult)
	require.True(t, ok)

	// All six generic attributes are missing.
	assert.Len(t, result.Gaps, 6)
	assert.Equal(t, 12.0, result.Score)
	assert.Equal(t, models.GapSevere, result.Classification)
	require.NoError(t, contract.Validate(result))
}

func TestGapsHeuristic_PartialSpecs(t *testing.T) {
	contract := &gapsContract{}
	record := &models.ProductRecord{
		Title:    "Acme Widget",
		Platform: "generic",
		Specs: []models.SpecEntry{
			{Key: "Material", Value: "steel"},
			{Key: "Color", Value: "black"},
			{Key: "Brand", Value: "Acme"},
		},
	}

	result := contract.Heuristic(record).(*models.GapResult)

	assert.Len(t, result.Gaps, 3)
	assert.Equal(t, 6.0, result.Score)
	assert.Equal(t, models.GapModerate, result.Classification)

	for _, gap := range result.Gaps {
		assert.NotContains(t, []string{"material", "color", "brand"}, gap.Attribute)
		assert.Equal(t, 2.0, gap.Severity)
		assert.NotEmpty(t, gap.Suggestion)
	}
}

func TestGapsHeuristic_AllSpecsPresent(t *testing.T) {
	contract := &gapsContract{}
	record := &models.ProductRecord{Title: "Acme Widget", Platform: "generic"}
	for _, attr := range ExpectedAttributes("generic") {
		record.Specs = append(record.Specs, models.SpecEntry{Key: attr, Value: "x"})
	}

	result := contract.Heuristic(record).(*models.GapResult)

	assert.Empty(t, result.Gaps)
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, models.GapNone, result.Classification)
	require.NoError(t, contract.Validate(result))
}

func TestGapsHeuristic_PlatformSuperset(t *testing.T) {
	contract := &gapsContract{}
	record := &models.ProductRecord{Title: "Acme Widget", Platform: "amazon"}

	result := contract.Heuristic(record).(*models.GapResult)

	// Six generic attributes plus the amazon-specific three.
	assert.Len(t, result.Gaps, 9)

	attributes := make([]string, 0, len(result.Gaps))
	for _, gap := range result.Gaps {
		attributes = append(attributes, gap.Attribute)
	}
	assert.Contains(t, attributes, "asin")
	assert.Contains(t, attributes, "model_number")
	assert.Contains(t, attributes, "country_of_origin")
}

func TestGapsHeuristic_NormalizesSpecKeys(t *testing.T) {
	contract := &gapsContract{}
	record := &models.ProductRecord{
		Title:    "Acme Widget",
		Platform: "amazon",
		Specs: []models.SpecEntry{
			{Key: "Country of Origin", Value: "Japan"},
			{Key: "  MODEL   NUMBER ", Value: "AW-100"},
		},
	}

	result := contract.Heuristic(record).(*models.GapResult)

	for _, gap := range result.Gaps {
		assert.NotEqual(t, "country_of_origin", gap.Attribute)
		assert.NotEqual(t, "model_number", gap.Attribute)
	}
}

func TestExpectedAttributes(t *testing.T) {
	generic := ExpectedAttributes("generic")
	assert.Equal(t, []string{"material", "dimensions", "weight", "color", "size", "brand"}, generic)

	// Unknown platforms fall back to the generic baseline.
	assert.Equal(t, generic, ExpectedAttributes("walmart"))
	assert.Equal(t, generic, ExpectedAttributes(""))

	shopify := ExpectedAttributes("Shopify")
	assert.Contains(t, shopify, "vendor")
	assert.Contains(t, shopify, "product_type")
	assert.Len(t, shopify, 8)
}

func TestClassifyGapScore(t *testing.T) {
	tests := []struct {
		score float64
		want  models.GapClassification
	}{
		{0, models.GapNone},
		{2, models.GapMild},
		{4, models.GapMild},
		{4.1, models.GapModerate},
		{8, models.GapModerate},
		{8.1, models.GapSevere},
		{12, models.GapSevere},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, models.ClassifyGapScore(tt.score), "score %v", tt.score)
	}
}

func TestGapsCacheInput_OrderIndependent(t *testing.T) {
	contract := &gapsContract{}

	a := &models.ProductRecord{Platform: "generic", Specs: []models.SpecEntry{
		{Key: "color", Value: "red"}, {Key: "size", Value: "M"},
	}}
	b := &models.ProductRecord{Platform: "generic", Specs: []models.SpecEntry{
		{Key: "size", Value: "L"}, {Key: "color", Value: "blue"},
	}}

	// Only the key set matters for gap detection, not values or order.
	assert.Equal(t, contract.CacheInput(a), contract.CacheInput(b))
}
