package scraping

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type PageClassification struct {
	IsProduct  bool
	Confidence float64
	Signals    []string
}

// classifier threshold: a page needs at least this many points to count
// as a product page.
const productPageThreshold = 3

var productURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/product/`),
	regexp.MustCompile(`(?i)/products/`),
	regexp.MustCompile(`(?i)/item/`),
	regexp.MustCompile(`(?i)/p/`),
	regexp.MustCompile(`(?i)-p-\d+`),
	regexp.MustCompile(`(?i)/dp/`),
	regexp.MustCompile(`(?i)/gp/product/`),
}

var priceElementSelectors = []string{
	".price", "[data-price]", ".cost", ".amount",
	".product-price", ".price-current",
}

var cartButtonSelectors = []string{
	"[data-add-to-cart]", ".add-to-cart", ".buy-now",
	"button[name='add']", ".purchase-button",
}

var variantElementSelectors = []string{
	".variants", ".options", ".attributes",
	"select[name*='variant']", ".product-options",
}

var gallerySelectors = []string{
	".product-gallery", ".product-images", ".image-gallery",
	".product-photos",
}

// ClassifyProductPage scores product-page signals: URL shape, price elements,
// add-to-cart buttons, variant pickers, image galleries, and schema.org
// Product markup. JSON-LD Product markup is the strongest signal.
func ClassifyProductPage(doc *goquery.Document, pageUrl string) PageClassification {
	score := 0
	signals := []string{}

	for _, pattern := range productURLPatterns {
		if pattern.MatchString(pageUrl) {
			score += 2
			signals = append(signals, "url_pattern_"+pattern.String())
		}
	}

	for _, selector := range priceElementSelectors {
		if doc.Find(selector).Length() > 0 {
			score += 1
			signals = append(signals, "price_element_"+selector)
		}
	}

	for _, selector := range cartButtonSelectors {
		if doc.Find(selector).Length() > 0 {
			score += 2
			signals = append(signals, "cart_button_"+selector)
		}
	}

	for _, selector := range variantElementSelectors {
		if doc.Find(selector).Length() > 0 {
			score += 1
			signals = append(signals, "variants_"+selector)
		}
	}

	for _, selector := range gallerySelectors {
		if doc.Find(selector).Length() > 0 {
			score += 1
			signals = append(signals, "gallery_"+selector)
		}
	}

	if hasProductSchema(doc) {
		score += 3
		signals = append(signals, "schema_product")
	}

	return PageClassification{
		IsProduct:  score >= productPageThreshold,
		Confidence: normalizeScore(score),
		Signals:    signals,
	}
}

func hasProductSchema(doc *goquery.Document) bool {
	found := false
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}
		if jsonLDContainsProduct([]byte(raw)) {
			found = true
			return false
		}
		return true
	})
	return found
}

func jsonLDContainsProduct(raw []byte) bool {
	var single map[string]interface{}
	if err := json.Unmarshal(raw, &single); err == nil {
		return schemaTypeIsProduct(single)
	}
	var many []map[string]interface{}
	if err := json.Unmarshal(raw, &many); err == nil {
		for _, item := range many {
			if schemaTypeIsProduct(item) {
				return true
			}
		}
	}
	return false
}

func schemaTypeIsProduct(data map[string]interface{}) bool {
	t, ok := data["@type"].(string)
	return ok && strings.EqualFold(t, "Product")
}
