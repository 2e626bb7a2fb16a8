package tasks

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/merx/internal/common"
	"github.com/ternarybob/merx/internal/models"
)

const (
	metaTitleLimit       = 60
	metaDescriptionLimit = 160
)

// metaContract generates SEO meta title and description text.
type metaContract struct{}

func (c *metaContract) Kind() models.TaskKind {
	return models.TaskMeta
}

func (c *metaContract) ProviderBacked() bool {
	return true
}

func (c *metaContract) CacheInput(record *models.ProductRecord) string {
	desc := ""
	if record.Description != nil {
		desc = common.TruncateString(record.Description.Text, 120)
	}
	return strings.ToLower(common.CollapseWhitespace(record.Title + "|" + record.Brand + "|" + desc))
}

func (c *metaContract) BuildPrompt(record *models.ProductRecord) string {
	var b strings.Builder
	b.WriteString("Write SEO metadata for this product page.\n")
	fmt.Fprintf(&b, "Product title: %s\n", common.TruncateWords(record.Title, 200))
	if record.Brand != "" {
		fmt.Fprintf(&b, "Brand: %s\n", common.TruncateWords(record.Brand, 80))
	}
	if record.Description != nil {
		fmt.Fprintf(&b, "Description: %s\n", common.TruncateWords(record.Description.Text, 600))
	}
	if len(record.Bullets) > 0 {
		fmt.Fprintf(&b, "Highlights: %s\n", common.TruncateWords(strings.Join(record.Bullets, "; "), 400))
	}
	fmt.Fprintf(&b, "\nRespond with only a JSON object {\"metaTitle\": string, \"metaDescription\": string}. metaTitle must be at most %d characters, metaDescription at most %d characters.\n",
		metaTitleLimit, metaDescriptionLimit)
	return b.String()
}

func (c *metaContract) Parse(raw string) (any, error) {
	var result models.MetaResult
	if err := json.Unmarshal([]byte(extractJSON(raw)), &result); err != nil {
		return nil, fmt.Errorf("meta output is not valid JSON: %w", err)
	}
	return &result, nil
}

func (c *metaContract) Validate(data any) error {
	result, ok := data.(*models.MetaResult)
	if !ok {
		return fmt.Errorf("meta output has unexpected type %T", data)
	}
	return validate.Struct(result)
}

// Heuristic builds meta text from the title, brand and the best
// available description source, truncated at word boundaries to the
// same limits the provider path must honor.
func (c *metaContract) Heuristic(record *models.ProductRecord) any {
	title := common.CollapseWhitespace(record.Title)
	if title == "" {
		title = "Product"
	}
	if record.Brand != "" && !strings.Contains(strings.ToLower(title), strings.ToLower(record.Brand)) {
		title = title + " | " + record.Brand
	}

	desc := ""
	switch {
	case record.Description != nil && record.Description.Text != "":
		desc = record.Description.Text
	case len(record.Bullets) > 0:
		desc = strings.Join(record.Bullets, ". ")
	case record.Brand != "":
		desc = fmt.Sprintf("Shop %s by %s. Compare prices, photos and reviews.", record.Title, record.Brand)
	default:
		desc = fmt.Sprintf("Shop %s. Compare prices, photos and reviews.", record.Title)
	}

	return &models.MetaResult{
		MetaTitle:       common.TruncateWords(title, metaTitleLimit),
		MetaDescription: common.TruncateWords(common.CollapseWhitespace(desc), metaDescriptionLimit),
	}
}

func (c *metaContract) Decode(cached []byte) (any, error) {
	var result models.MetaResult
	if err := json.Unmarshal(cached, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

var _ Contract = (*metaContract)(nil)
