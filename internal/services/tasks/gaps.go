package tasks

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/merx/internal/models"
)

// gapBaseSeverity is the fixed severity assigned to every missing
// attribute; the gap score is the sum of severities.
const gapBaseSeverity = 2.0

// genericAttributes is the baseline expected-attribute list every
// platform inherits, in reporting order.
var genericAttributes = []string{"material", "dimensions", "weight", "color", "size", "brand"}

// platformAttributes are small per-platform supersets added to the
// generic list.
var platformAttributes = map[string][]string{
	"amazon":  {"asin", "model_number", "country_of_origin"},
	"shopify": {"vendor", "product_type"},
	"ebay":    {"condition", "mpn"},
	"etsy":    {"handmade", "materials_source"},
}

// gapsContract detects missing expected attributes. It is a pure
// heuristic by design and never calls a provider.
type gapsContract struct{}

func (c *gapsContract) Kind() models.TaskKind {
	return models.TaskGaps
}

func (c *gapsContract) ProviderBacked() bool {
	return false
}

func (c *gapsContract) CacheInput(record *models.ProductRecord) string {
	keys := make([]string, 0, len(record.Specs))
	for key := range record.SpecKeys() {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return strings.ToLower(record.Platform) + "|" + strings.Join(keys, ",")
}

func (c *gapsContract) BuildPrompt(record *models.ProductRecord) string {
	return ""
}

func (c *gapsContract) Parse(raw string) (any, error) {
	return nil, fmt.Errorf("gap detection has no provider path")
}

func (c *gapsContract) Validate(data any) error {
	result, ok := data.(*models.GapResult)
	if !ok {
		return fmt.Errorf("gap output has unexpected type %T", data)
	}
	return validate.Struct(result)
}

// Heuristic subtracts the record's spec keys from the platform's
// expected-attribute list; each missing key becomes a gap with the
// fixed base severity and a templated suggestion.
func (c *gapsContract) Heuristic(record *models.ProductRecord) any {
	expected := ExpectedAttributes(record.Platform)
	present := record.SpecKeys()

	result := &models.GapResult{}
	for _, attr := range expected {
		if present[attr] {
			continue
		}
		result.Gaps = append(result.Gaps, models.Gap{
			Attribute:  attr,
			Severity:   gapBaseSeverity,
			Suggestion: fmt.Sprintf("Add a %q entry to the specifications so buyers can compare listings", attr),
		})
		result.Score += gapBaseSeverity
	}
	result.Classification = models.ClassifyGapScore(result.Score)
	return result
}

// ExpectedAttributes returns the expected-attribute list for a
// platform: the generic baseline plus the platform's superset.
func ExpectedAttributes(platform string) []string {
	expected := make([]string, len(genericAttributes))
	copy(expected, genericAttributes)
	if extra, ok := platformAttributes[strings.ToLower(strings.TrimSpace(platform))]; ok {
		expected = append(expected, extra...)
	}
	return expected
}

func (c *gapsContract) Decode(cached []byte) (any, error) {
	var result models.GapResult
	if err := json.Unmarshal(cached, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

var _ Contract = (*gapsContract)(nil)
