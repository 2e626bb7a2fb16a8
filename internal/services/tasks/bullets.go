package tasks

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/ternarybob/merx/internal/common"
	"github.com/ternarybob/merx/internal/models"
)

const (
	bulletMaxCount  = 10
	bulletMaxLength = 200
)

// bulletsContract rewrites product bullet points for clarity.
type bulletsContract struct{}

func (c *bulletsContract) Kind() models.TaskKind {
	return models.TaskBullets
}

func (c *bulletsContract) ProviderBacked() bool {
	return true
}

func (c *bulletsContract) CacheInput(record *models.ProductRecord) string {
	return strings.ToLower(common.CollapseWhitespace(record.Title + "|" + strings.Join(record.Bullets, "|")))
}

func (c *bulletsContract) BuildPrompt(record *models.ProductRecord) string {
	var b strings.Builder
	b.WriteString("Rewrite these product bullet points to be clear, benefit-led and scannable.\n")
	fmt.Fprintf(&b, "Product title: %s\n", common.TruncateWords(record.Title, 200))
	b.WriteString("Bullets:\n")
	for i, bullet := range record.Bullets {
		if i >= bulletMaxCount {
			break
		}
		fmt.Fprintf(&b, "- %s\n", common.TruncateWords(bullet, 300))
	}
	fmt.Fprintf(&b, "\nRespond with only a JSON object {\"bullets\": [string]} with the same number of bullets, each at most %d characters.\n", bulletMaxLength)
	return b.String()
}

func (c *bulletsContract) Parse(raw string) (any, error) {
	payload := extractJSON(raw)

	var result models.BulletsResult
	if err := json.Unmarshal([]byte(payload), &result); err == nil && len(result.Bullets) > 0 {
		return &result, nil
	}

	var bullets []string
	if err := json.Unmarshal([]byte(payload), &bullets); err != nil {
		return nil, fmt.Errorf("bullet output is not valid JSON: %w", err)
	}
	return &models.BulletsResult{Bullets: bullets}, nil
}

func (c *bulletsContract) Validate(data any) error {
	result, ok := data.(*models.BulletsResult)
	if !ok {
		return fmt.Errorf("bullet output has unexpected type %T", data)
	}
	return validate.Struct(result)
}

// Heuristic normalizes the existing bullets: collapsed whitespace,
// leading capital, no trailing period, hard length cap. Records without
// bullets fall back to spec rows, then to a single title-derived line.
func (c *bulletsContract) Heuristic(record *models.ProductRecord) any {
	source := record.Bullets
	if len(source) == 0 {
		for _, spec := range record.Specs {
			if spec.Key != "" && spec.Value != "" {
				source = append(source, fmt.Sprintf("%s: %s", spec.Key, spec.Value))
			}
			if len(source) >= 5 {
				break
			}
		}
	}
	if len(source) == 0 {
		title := common.CollapseWhitespace(record.Title)
		if title == "" {
			title = "This product"
		}
		source = []string{title + " is built for dependable everyday use"}
	}

	result := &models.BulletsResult{}
	for _, bullet := range source {
		if len(result.Bullets) >= bulletMaxCount {
			break
		}
		cleaned := rewriteBullet(bullet)
		if cleaned != "" {
			result.Bullets = append(result.Bullets, cleaned)
		}
	}
	return result
}

func rewriteBullet(bullet string) string {
	cleaned := common.CollapseWhitespace(bullet)
	if cleaned == "" {
		return ""
	}
	cleaned = strings.TrimRight(cleaned, ".")

	runes := []rune(cleaned)
	runes[0] = unicode.ToUpper(runes[0])
	return common.TruncateWords(string(runes), bulletMaxLength)
}

func (c *bulletsContract) Decode(cached []byte) (any, error) {
	var result models.BulletsResult
	if err := json.Unmarshal(cached, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

var _ Contract = (*bulletsContract)(nil)
