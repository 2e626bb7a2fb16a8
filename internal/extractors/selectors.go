package extractors

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SelectorTable holds the ranked CSS selector lists the generic extractor
// tries per field, most specific first. The built-in defaults cover
// common storefront markup; production selector tables can be supplied
// via a YAML override file.
type SelectorTable struct {
	Title         []string `yaml:"title"`
	Price         []string `yaml:"price"`
	Brand         []string `yaml:"brand"`
	Images        []string `yaml:"images"`
	Description   []string `yaml:"description"`
	ReviewCount   []string `yaml:"review_count"`
	ReviewAverage []string `yaml:"review_average"`
}

// DefaultSelectors returns the built-in ranked selector lists.
func DefaultSelectors() *SelectorTable {
	return &SelectorTable{
		Title: []string{
			"h1#title",
			"h1.product-title",
			"h1[itemprop=name]",
			".product-name h1",
			"h1",
		},
		Price: []string{
			"[data-price]",
			"#priceblock_ourprice",
			".price .amount",
			".product-price",
			"span.price",
			".price",
		},
		Brand: []string{
			"#bylineInfo",
			".product-brand",
			"[data-brand]",
			".brand",
		},
		Images: []string{
			"#landingImage",
			".product-image img",
			".product-gallery img",
			".gallery img",
			"img[itemprop=image]",
		},
		Description: []string{
			"#productDescription",
			".product-description",
			"#description",
			".description",
		},
		ReviewCount: []string{
			"#acrCustomerReviewText",
			".review-count",
			".reviews-count",
		},
		ReviewAverage: []string{
			"[data-rating]",
			".rating-value",
			".rating",
			".stars",
		},
	}
}

// LoadSelectorTable reads a YAML selector override file and merges it
// over the defaults; empty lists keep their built-in values.
func LoadSelectorTable(path string) (*SelectorTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read selector file %s: %w", path, err)
	}

	var loaded SelectorTable
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse selector file %s: %w", path, err)
	}

	table := DefaultSelectors()
	if len(loaded.Title) > 0 {
		table.Title = loaded.Title
	}
	if len(loaded.Price) > 0 {
		table.Price = loaded.Price
	}
	if len(loaded.Brand) > 0 {
		table.Brand = loaded.Brand
	}
	if len(loaded.Images) > 0 {
		table.Images = loaded.Images
	}
	if len(loaded.Description) > 0 {
		table.Description = loaded.Description
	}
	if len(loaded.ReviewCount) > 0 {
		table.ReviewCount = loaded.ReviewCount
	}
	if len(loaded.ReviewAverage) > 0 {
		table.ReviewAverage = loaded.ReviewAverage
	}
	return table, nil
}
