package scraping

import (
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	tables "github.com/viralos-core/v2/dal/tables/v1"
)

var currencySymbols = map[string]string{
	"$":  "USD",
	"€":  "EUR",
	"£":  "GBP",
	"¥":  "JPY",
	"₹":  "INR",
	"C$": "CAD",
	"A$": "AUD",
	"₽":  "RUB",
}

var currencyNames = map[string]string{
	"DOLLAR":  "USD",
	"DOLLARS": "USD",
	"EURO":    "EUR",
	"EUROS":   "EUR",
	"POUND":   "GBP",
	"POUNDS":  "GBP",
	"YEN":     "JPY",
}

var sizeUnits = map[string]bool{
	"XS": true, "S": true, "M": true, "L": true,
	"XL": true, "XXL": true, "XXXL": true,
}

var colorKeywords = []string{
	"black", "white", "red", "blue", "green", "yellow", "purple",
	"pink", "orange", "brown", "gray", "grey", "navy", "beige",
	"tan", "cream", "gold", "silver", "rose", "coral", "mint",
}

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	unwantedCharRe = regexp.MustCompile(`[^\w\s\-.,!?()&/]`)
	priceDigitsRe  = regexp.MustCompile(`[0-9][0-9.,]*`)
	numericUnitRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([a-zA-Z]*)`)
)

// NormalizeText collapses whitespace, strips entities and junk characters,
// and caps length.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}
	text = html.UnescapeString(text)
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	text = unwantedCharRe.ReplaceAllString(text, "")
	const maxLen = 5000
	if len(text) > maxLen {
		text = text[:maxLen] + "..."
	}
	return text
}

// NormalizePriceCents parses a raw price string like "$1,299.95" into cents.
// Returns 0 when nothing parseable is present.
func NormalizePriceCents(raw string) int64 {
	match := priceDigitsRe.FindString(raw)
	if match == "" {
		return 0
	}
	// Ambiguity: "1.299" is a euro-style thousands separator, "1.29" a decimal.
	cleaned := strings.ReplaceAll(match, ",", "")
	if dotIdx := strings.LastIndex(cleaned, "."); dotIdx != -1 && len(cleaned)-dotIdx-1 == 3 {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || amount <= 0 {
		return 0
	}
	return int64(math.Round(amount * 100))
}

// NormalizeCurrency maps symbols and names to ISO 4217 codes, defaulting USD.
func NormalizeCurrency(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "USD"
	}
	if code, ok := currencySymbols[raw]; ok {
		return code
	}
	upper := strings.ToUpper(raw)
	if code, ok := currencyNames[upper]; ok {
		return code
	}
	if unit, err := currency.ParseISO(upper); err == nil {
		return unit.String()
	}
	return "USD"
}

// ExtractCurrencySymbol picks the currency out of a raw price string.
func ExtractCurrencySymbol(raw string) string {
	for symbol, code := range currencySymbols {
		if strings.Contains(raw, symbol) {
			return code
		}
	}
	return "USD"
}

func NormalizeAvailability(raw string) tables.ProductAvailability {
	if raw == "" {
		return tables.AVAIL_UNKNOWN
	}
	lower := strings.ToLower(strings.TrimSpace(raw))

	containsAny := func(terms ...string) bool {
		for _, t := range terms {
			if strings.Contains(lower, t) {
				return true
			}
		}
		return false
	}

	switch {
	case containsAny("out of stock", "sold out", "unavailable"):
		return tables.AVAIL_OUT_OF_STOCK
	case containsAny("pre-order", "preorder", "coming soon"):
		return tables.AVAIL_PRE_ORDER
	case containsAny("backorder", "back order"):
		return tables.AVAIL_BACKORDER
	case containsAny("limited", "low stock", "few left"):
		return tables.AVAIL_LIMITED_STOCK
	case containsAny("discontinued", "no longer"):
		return tables.AVAIL_DISCONTINUED
	case containsAny("in stock", "available", "ready", "ships"):
		return tables.AVAIL_IN_STOCK
	}
	return tables.AVAIL_UNKNOWN
}

// NormalizeVariantName buckets free-form option names (Colour, Shoe Size, ...)
// into standard categories.
func NormalizeVariantName(name string) string {
	if name == "" {
		return "other"
	}
	lower := strings.ToLower(name)

	containsAny := func(terms ...string) bool {
		for _, t := range terms {
			if strings.Contains(lower, t) {
				return true
			}
		}
		return false
	}

	switch {
	case containsAny("color", "colour"):
		return "color"
	case containsAny("size"):
		return "size"
	case containsAny("material", "fabric"):
		return "material"
	case containsAny("style", "type"):
		return "style"
	case containsAny("capacity", "storage", "memory"):
		return "capacity"
	case containsAny("length", "height", "width"):
		return "dimensions"
	}
	return "other"
}

// NormalizeOptionValue canonicalizes a variant option: sizes upper-cased,
// colors title-cased, numeric values joined with their lowercase unit.
func NormalizeOptionValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	upper := strings.ToUpper(value)
	if sizeUnits[upper] {
		return upper
	}

	lower := strings.ToLower(value)
	for _, color := range colorKeywords {
		if strings.Contains(lower, color) {
			return cases.Title(language.English).String(color)
		}
	}

	if m := numericUnitRe.FindStringSubmatch(value); m != nil {
		unit := strings.ToLower(m[2])
		switch unit {
		case "gb", "tb", "mb", "kg", "lb", "oz", "ml", "l":
			return m[1] + unit
		}
	}
	return value
}

// CalculateQualityScore grades extraction completeness 0..1. Name, price
// and description carry the most weight.
func CalculateQualityScore(p tables.Product) float64 {
	score := 0.0
	maxScore := 0.0

	addWeighted := func(present bool, weight float64) {
		maxScore += weight
		if present {
			score += weight
		}
	}

	addWeighted(p.Name != "", 0.2)
	addWeighted(p.PriceCents > 0, 0.15)
	addWeighted(p.Description != "", 0.15)
	addWeighted(p.ImageURLs != "" && p.ImageURLs != "[]", 0.1)
	addWeighted(p.Availability != "" && p.Availability != tables.AVAIL_UNKNOWN, 0.05)
	addWeighted(p.Variants != "" && p.Variants != "[]", 0.05)
	addWeighted(p.Features != "" && p.Features != "[]", 0.05)
	addWeighted(p.ReviewCount > 0, 0.05)
	addWeighted(len(p.Description) > 100, 0.05)

	if maxScore == 0 {
		return 0
	}
	return math.Round(score/maxScore*100) / 100
}
