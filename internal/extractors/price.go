package extractors

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ternarybob/merx/internal/models"
)

// Symbol lookup is ordered so multi-character symbols win over their
// single-character prefixes (e.g. "A$" before "$").
var currencySymbols = []struct {
	symbol string
	code   string
}{
	{"US$", "USD"},
	{"AU$", "AUD"},
	{"A$", "AUD"},
	{"CA$", "CAD"},
	{"C$", "CAD"},
	{"NZ$", "NZD"},
	{"$", "USD"},
	{"£", "GBP"},
	{"€", "EUR"},
	{"¥", "JPY"},
	{"₹", "INR"},
	{"₩", "KRW"},
	{"R$", "BRL"},
	{"CHF", "CHF"},
	{"zł", "PLN"},
	{"kr", "SEK"},
}

var currencyCodePattern = regexp.MustCompile(`\b(USD|EUR|GBP|AUD|CAD|NZD|JPY|INR|KRW|BRL|CHF|PLN|SEK|CNY)\b`)

var priceNumberPattern = regexp.MustCompile(`\d[\d.,\s]*`)

// ParsePrice extracts a numeric price and currency from raw price text,
// stripping currency symbols and thousands separators and inferring the
// currency from the symbol or ISO code found. Returns nil when no
// numeric value is present.
func ParsePrice(raw string) *models.Price {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}

	currency := ""
	if m := currencyCodePattern.FindString(strings.ToUpper(text)); m != "" {
		currency = m
	} else {
		for _, cs := range currencySymbols {
			if strings.Contains(text, cs.symbol) {
				currency = cs.code
				break
			}
		}
	}

	numText := priceNumberPattern.FindString(text)
	if numText == "" {
		return nil
	}
	value, ok := parsePriceNumber(numText)
	if !ok {
		return nil
	}

	return &models.Price{
		Value:    value,
		Currency: currency,
		Raw:      text,
	}
}

// parsePriceNumber normalizes separator conventions: when both "." and
// "," appear, the later one is the decimal separator; a lone comma is a
// decimal separator only when followed by exactly two digits.
func parsePriceNumber(numText string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(numText), " ", "")
	s = strings.Trim(s, ".,")
	if s == "" {
		return 0, false
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			// European style: 1.299,00
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// US style: 1,299.00
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if len(s)-lastComma-1 == 2 && strings.Count(s, ",") == 1 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
