package extractors

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/merx/internal/common"
	"github.com/ternarybob/merx/internal/models"
)

// descriptionFromSelection converts a description element into markdown
// markup plus collapsed plain text. Falls back to the plain text when
// HTML-to-markdown conversion fails or produces nothing.
func descriptionFromSelection(sel *goquery.Selection) *models.Description {
	text := common.CollapseWhitespace(sel.Text())
	if text == "" {
		return nil
	}

	markup := text
	if html, err := sel.Html(); err == nil && strings.TrimSpace(html) != "" {
		converter := md.NewConverter("", true, nil)
		if converted, err := converter.ConvertString(html); err == nil {
			if trimmed := strings.TrimSpace(converted); trimmed != "" {
				markup = trimmed
			}
		}
	}

	return &models.Description{Markup: markup, Text: text}
}

// descriptionFromText wraps an already-plain description string.
func descriptionFromText(text string) *models.Description {
	text = common.CollapseWhitespace(text)
	if text == "" {
		return nil
	}
	return &models.Description{Markup: text, Text: text}
}
