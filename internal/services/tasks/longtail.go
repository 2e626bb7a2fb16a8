package tasks

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/merx/internal/common"
	"github.com/ternarybob/merx/internal/models"
)

const (
	longTailMinSuggestions = 3
	longTailMaxSuggestions = 8
)

// longTailContract generates long-tail search phrases for a product.
type longTailContract struct{}

func (c *longTailContract) Kind() models.TaskKind {
	return models.TaskLongTail
}

func (c *longTailContract) ProviderBacked() bool {
	return true
}

func (c *longTailContract) CacheInput(record *models.ProductRecord) string {
	return strings.ToLower(common.CollapseWhitespace(record.Title + "|" + record.Brand))
}

func (c *longTailContract) BuildPrompt(record *models.ProductRecord) string {
	var b strings.Builder
	b.WriteString("Generate long-tail search phrases shoppers would use to find this product.\n")
	fmt.Fprintf(&b, "Product title: %s\n", common.TruncateWords(record.Title, 200))
	if record.Brand != "" {
		fmt.Fprintf(&b, "Brand: %s\n", common.TruncateWords(record.Brand, 80))
	}
	if record.Description != nil {
		fmt.Fprintf(&b, "Description: %s\n", common.TruncateWords(record.Description.Text, 600))
	}
	fmt.Fprintf(&b, "\nRespond with only a JSON array of %d to %d objects shaped {\"phrase\": string, \"score\": number between 0 and 1}, highest score first.\n",
		longTailMinSuggestions, longTailMaxSuggestions)
	return b.String()
}

func (c *longTailContract) Parse(raw string) (any, error) {
	payload := extractJSON(raw)

	// Providers return either a bare array or a wrapping object.
	var suggestions []models.LongTailSuggestion
	if err := json.Unmarshal([]byte(payload), &suggestions); err == nil {
		return &models.LongTailResult{Suggestions: suggestions}, nil
	}

	var result models.LongTailResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("long-tail output is not valid JSON: %w", err)
	}
	return &result, nil
}

func (c *longTailContract) Validate(data any) error {
	result, ok := data.(*models.LongTailResult)
	if !ok {
		return fmt.Errorf("long-tail output has unexpected type %T", data)
	}
	return validate.Struct(result)
}

// Heuristic derives phrases from the title, brand and specs. The same
// record always yields the same suggestions in the same order.
func (c *longTailContract) Heuristic(record *models.ProductRecord) any {
	title := strings.ToLower(common.CollapseWhitespace(record.Title))
	if title == "" {
		title = "product"
	}

	var phrases []string
	phrases = append(phrases, "best "+title)
	if brand := strings.ToLower(common.CollapseWhitespace(record.Brand)); brand != "" && !strings.HasPrefix(title, brand) {
		phrases = append(phrases, brand+" "+title)
	}
	phrases = append(phrases, "buy "+title+" online")
	phrases = append(phrases, "affordable "+title)
	if record.Price != nil {
		phrases = append(phrases, title+" price")
	}
	for _, spec := range record.Specs {
		value := strings.ToLower(common.CollapseWhitespace(spec.Value))
		if value != "" && len(value) <= 24 {
			phrases = append(phrases, value+" "+title)
		}
		if len(phrases) >= longTailMaxSuggestions {
			break
		}
	}
	phrases = append(phrases, title+" reviews")

	seen := make(map[string]bool)
	result := &models.LongTailResult{}
	score := 0.9
	for _, phrase := range phrases {
		if seen[phrase] || len(result.Suggestions) >= longTailMaxSuggestions {
			continue
		}
		seen[phrase] = true
		result.Suggestions = append(result.Suggestions, models.LongTailSuggestion{
			Phrase: phrase,
			Score:  score,
		})
		if score > 0.4 {
			score -= 0.07
		}
	}
	return result
}

func (c *longTailContract) Decode(cached []byte) (any, error) {
	var result models.LongTailResult
	if err := json.Unmarshal(cached, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

var _ Contract = (*longTailContract)(nil)
