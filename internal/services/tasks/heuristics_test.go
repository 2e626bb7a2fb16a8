package tasks

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/merx/internal/models"
)

// Heuristic output must satisfy the same contract as provider output,
// including on sparse records.
func TestHeuristics_SatisfyOutputContracts(t *testing.T) {
	records := map[string]*models.ProductRecord{
		"full": {
			Title:   "Acme Widget",
			Brand:   "Acme",
			Price:   &models.Price{Value: 19.99, Currency: "USD"},
			Bullets: []string{"durable steel body", "two year warranty"},
			Specs:   []models.SpecEntry{{Key: "material", Value: "steel"}},
			Description: &models.Description{
				Markup: "A dependable widget.",
				Text:   "A dependable widget.",
			},
		},
		"title only": {Title: "Acme Widget"},
		"empty":      {},
	}

	for name, record := range records {
		for _, contract := range DefaultContracts() {
			t.Run(name+"/"+string(contract.Kind()), func(t *testing.T) {
				data := contract.Heuristic(record)
				require.NotNil(t, data)
				assert.NoError(t, contract.Validate(data))
			})
		}
	}
}

func TestLongTailHeuristic_Deterministic(t *testing.T) {
	contract := &longTailContract{}
	record := &models.ProductRecord{
		Title: "Acme Widget",
		Brand: "Acme",
		Price: &models.Price{Value: 19.99},
		Specs: []models.SpecEntry{{Key: "color", Value: "black"}},
	}

	first := contract.Heuristic(record).(*models.LongTailResult)
	second := contract.Heuristic(record).(*models.LongTailResult)
	assert.Equal(t, first, second)

	require.GreaterOrEqual(t, len(first.Suggestions), 3)
	require.LessOrEqual(t, len(first.Suggestions), 8)

	// Scores descend with rank and stay in range.
	for i, suggestion := range first.Suggestions {
		assert.NotEmpty(t, suggestion.Phrase)
		assert.GreaterOrEqual(t, suggestion.Score, 0.0)
		assert.LessOrEqual(t, suggestion.Score, 1.0)
		if i > 0 {
			assert.LessOrEqual(t, suggestion.Score, first.Suggestions[i-1].Score)
		}
	}
}

func TestMetaHeuristic_AppendsBrandAndHonorsLimits(t *testing.T) {
	contract := &metaContract{}
	record := &models.ProductRecord{Title: "Widget", Brand: "Acme"}

	meta := contract.Heuristic(record).(*models.MetaResult)

	assert.Equal(t, "Widget | Acme", meta.MetaTitle)
	assert.LessOrEqual(t, len(meta.MetaTitle), 60)
	assert.LessOrEqual(t, len(meta.MetaDescription), 160)
}

func TestMetaHeuristic_TruncatesLongTitleAtWordBoundary(t *testing.T) {
	contract := &metaContract{}
	record := &models.ProductRecord{
		Title: "Professional Heavy Duty Adjustable Stainless Steel Kitchen Workbench With Integrated Storage Drawers",
	}

	meta := contract.Heuristic(record).(*models.MetaResult)

	assert.LessOrEqual(t, len(meta.MetaTitle), 60)
	assert.False(t, strings.HasSuffix(meta.MetaTitle, " "))
	// Word-boundary truncation never leaves a partial final word.
	assert.Contains(t, record.Title, meta.MetaTitle)
}

func TestBulletsHeuristic_CleansExistingBullets(t *testing.T) {
	contract := &bulletsContract{}
	record := &models.ProductRecord{
		Title: "Acme Widget",
		Bullets: []string{
			"  durable   steel body.  ",
			"two year warranty",
			"",
		},
	}

	result := contract.Heuristic(record).(*models.BulletsResult)

	require.Len(t, result.Bullets, 2)
	assert.Equal(t, "Durable steel body", result.Bullets[0])
	assert.Equal(t, "Two year warranty", result.Bullets[1])
}

func TestBulletsHeuristic_FallsBackToSpecs(t *testing.T) {
	contract := &bulletsContract{}
	record := &models.ProductRecord{
		Title: "Acme Widget",
		Specs: []models.SpecEntry{
			{Key: "material", Value: "steel"},
			{Key: "weight", Value: "1.2 kg"},
		},
	}

	result := contract.Heuristic(record).(*models.BulletsResult)

	require.Len(t, result.Bullets, 2)
	assert.Equal(t, "Material: steel", result.Bullets[0])
}

func TestBulletsHeuristic_CapsCount(t *testing.T) {
	contract := &bulletsContract{}
	record := &models.ProductRecord{Title: "Acme Widget"}
	for i := 0; i < 15; i++ {
		record.Bullets = append(record.Bullets, "bullet point number whatever")
	}

	result := contract.Heuristic(record).(*models.BulletsResult)
	assert.Len(t, result.Bullets, 10)
}

func TestLongTailParse_AcceptsBareArrayAndWrapper(t *testing.T) {
	contract := &longTailContract{}

	bare := `[{"phrase": "best acme widget", "score": 0.9}, {"phrase": "acme widget review", "score": 0.8}, {"phrase": "buy acme widget", "score": 0.7}]`
	data, err := contract.Parse(bare)
	require.NoError(t, err)
	assert.Len(t, data.(*models.LongTailResult).Suggestions, 3)

	wrapped := `{"suggestions": ` + bare + `}`
	data, err = contract.Parse(wrapped)
	require.NoError(t, err)
	assert.Len(t, data.(*models.LongTailResult).Suggestions, 3)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "bare object",
			raw:  `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "code fence",
			raw:  "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "surrounding prose",
			raw:  `Here is the result: {"a": 1} Hope that helps!`,
			want: `{"a": 1}`,
		},
		{
			name: "array payload",
			raw:  "Sure:\n[1, 2, 3]",
			want: `[1, 2, 3]`,
		},
		{
			name: "no json at all",
			raw:  "  cannot comply  ",
			want: "cannot comply",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.raw))
		})
	}
}
