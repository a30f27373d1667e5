package scraping

import (
	"encoding/json"
	"log"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	tables "github.com/viralos-core/v2/dal/tables/v1"
)

var featureListSelectors = []string{".features li", ".specs li", ".highlights li"}

var ratingRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:/|out of)\s*5`)
var reviewCountRe = regexp.MustCompile(`(\d[\d,]*)\s*(?:reviews|ratings)`)

// productSchema mirrors the schema.org Product fields we consume.
type productSchema struct {
	Type            string      `json:"@type"`
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	Image           interface{} `json:"image"` // string or []string
	Offers          interface{} `json:"offers"`
	AggregateRating *struct {
		RatingValue interface{} `json:"ratingValue"`
		ReviewCount interface{} `json:"reviewCount"`
	} `json:"aggregateRating"`
}

type offerSchema struct {
	Price         interface{} `json:"price"`
	PriceCurrency string      `json:"priceCurrency"`
	Availability  string      `json:"availability"`
}

// ExtractProduct builds a normalized Product from a product page. Structured
// data wins over CSS selectors when both are present.
func ExtractProduct(doc *goquery.Document, pageUrl string, platform string) (tables.Product, error) {
	brandId, err := RegistrableDomain(pageUrl)
	if err != nil {
		return tables.Product{}, err
	}

	selectors := GetProductSelectors(platform)
	product := tables.Product{
		BrandID:   brandId,
		ProductID: tables.HashString(canonicalProductURL(pageUrl)),
		PageURL:   pageUrl,
	}

	applySchemaOrgProduct(doc, &product)

	if product.Name == "" {
		product.Name = firstSelectorText(doc, selectors.Title, 3)
	}
	if product.Description == "" {
		desc := firstSelectorText(doc, selectors.Description, 50)
		if len(desc) > 500 {
			desc = desc[:500]
		}
		product.Description = desc
	}
	if product.PriceCents == 0 {
		// Raw text: normalization strips currency symbols.
		rawPrice := ""
		for _, selector := range selectors.Price {
			rawPrice = strings.TrimSpace(doc.Find(selector).First().Text())
			if rawPrice != "" {
				break
			}
		}
		product.PriceCents = NormalizePriceCents(rawPrice)
		if product.Currency == "" && rawPrice != "" {
			product.Currency = ExtractCurrencySymbol(rawPrice)
		}
	}
	if product.Currency == "" {
		product.Currency = "USD"
	}
	if product.Availability == "" || product.Availability == tables.AVAIL_UNKNOWN {
		product.Availability = NormalizeAvailability(firstSelectorText(doc, selectors.Availability, 1))
	}

	if product.ImageURLs == "" {
		images := extractImages(doc, selectors.Images, pageUrl)
		if len(images) > 0 {
			product.ImageURLs = marshalList(images, product.ProductID)
		}
	}

	variants := extractVariants(doc)
	if len(variants) > 0 {
		b, err := json.Marshal(variants)
		if err != nil {
			log.Printf("error marshalling variants for %s: %s", product.ProductID, err)
		} else {
			product.Variants = string(b)
		}
	}

	features := extractFeatureList(doc)
	if len(features) > 0 {
		product.Features = marshalList(features, product.ProductID)
	}

	applyReviewSignals(doc, selectors.Reviews, &product)

	product.DataQualityScore = CalculateQualityScore(product)
	return product, nil
}

func applySchemaOrgProduct(doc *goquery.Document, product *tables.Product) {
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}
		schema, ok := parseProductSchema([]byte(raw))
		if !ok {
			return true
		}

		product.Name = NormalizeText(schema.Name)
		product.Description = NormalizeText(schema.Description)
		if imgs := schemaImages(schema.Image); len(imgs) > 0 {
			product.ImageURLs = marshalList(imgs, product.ProductID)
		}
		if offer, ok := firstOffer(schema.Offers); ok {
			product.PriceCents = schemaPriceCents(offer.Price)
			product.Currency = NormalizeCurrency(offer.PriceCurrency)
			product.Availability = normalizeSchemaAvailability(offer.Availability)
		}
		if schema.AggregateRating != nil {
			product.RatingAvg = toFloat(schema.AggregateRating.RatingValue)
			product.ReviewCount = int(toFloat(schema.AggregateRating.ReviewCount))
		}
		return false
	})
}

func parseProductSchema(raw []byte) (productSchema, bool) {
	var single productSchema
	if err := json.Unmarshal(raw, &single); err == nil && strings.EqualFold(single.Type, "Product") {
		return single, true
	}
	var many []productSchema
	if err := json.Unmarshal(raw, &many); err == nil {
		for _, item := range many {
			if strings.EqualFold(item.Type, "Product") {
				return item, true
			}
		}
	}
	return productSchema{}, false
}

func schemaImages(image interface{}) []string {
	switch v := image.(type) {
	case string:
		if v != "" {
			return []string{v}
		}
	case []interface{}:
		images := []string{}
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				images = append(images, s)
			}
		}
		return images
	}
	return nil
}

func firstOffer(offers interface{}) (offerSchema, bool) {
	marshalled, err := json.Marshal(offers)
	if err != nil || offers == nil {
		return offerSchema{}, false
	}
	var single offerSchema
	if err := json.Unmarshal(marshalled, &single); err == nil && (single.Price != nil || single.Availability != "") {
		return single, true
	}
	var many []offerSchema
	if err := json.Unmarshal(marshalled, &many); err == nil && len(many) > 0 {
		return many[0], true
	}
	return offerSchema{}, false
}

func schemaPriceCents(price interface{}) int64 {
	switch v := price.(type) {
	case float64:
		return int64(math.Round(v * 100))
	case string:
		return NormalizePriceCents(v)
	}
	return 0
}

// schema.org availability comes as a URL: https://schema.org/InStock
func normalizeSchemaAvailability(availability string) tables.ProductAvailability {
	lower := strings.ToLower(availability)
	switch {
	case strings.Contains(lower, "instock"):
		return tables.AVAIL_IN_STOCK
	case strings.Contains(lower, "outofstock"), strings.Contains(lower, "soldout"):
		return tables.AVAIL_OUT_OF_STOCK
	case strings.Contains(lower, "preorder"):
		return tables.AVAIL_PRE_ORDER
	case strings.Contains(lower, "backorder"):
		return tables.AVAIL_BACKORDER
	case strings.Contains(lower, "limitedavailability"):
		return tables.AVAIL_LIMITED_STOCK
	case strings.Contains(lower, "discontinued"):
		return tables.AVAIL_DISCONTINUED
	}
	return tables.AVAIL_UNKNOWN
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(t, ",", ""), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

func firstSelectorText(doc *goquery.Document, selectors []string, minLen int) string {
	for _, selector := range selectors {
		text := NormalizeText(doc.Find(selector).First().Text())
		if len(text) >= minLen {
			return text
		}
	}
	return ""
}

func extractImages(doc *goquery.Document, selectors []string, baseUrl string) []string {
	const maxImages = 5
	seen := map[string]bool{}
	images := []string{}
	for _, selector := range selectors {
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			src := s.AttrOr("src", s.AttrOr("data-src", ""))
			if src == "" {
				return true
			}
			full := absoluteURL(src, baseUrl)
			if !seen[full] {
				seen[full] = true
				images = append(images, full)
			}
			return len(images) < maxImages
		})
		if len(images) >= maxImages {
			break
		}
	}
	return images
}

// extractVariants reads <select> option groups, the most portable variant
// markup across platforms.
func extractVariants(doc *goquery.Document) []tables.Variant {
	variants := []tables.Variant{}
	doc.Find("select").Each(func(_ int, sel *goquery.Selection) {
		name := sel.AttrOr("name", sel.AttrOr("id", ""))
		if name == "" {
			return
		}
		normalizedName := NormalizeVariantName(name)
		if normalizedName == "other" && !strings.Contains(strings.ToLower(name), "option") {
			return
		}

		options := []string{}
		normalizedOpts := []string{}
		sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
			text := NormalizeText(opt.Text())
			if text == "" || strings.EqualFold(text, "select") {
				return
			}
			options = append(options, text)
			normalizedOpts = append(normalizedOpts, NormalizeOptionValue(text))
		})
		if len(options) == 0 {
			return
		}
		variants = append(variants, tables.Variant{
			Name:           NormalizeText(name),
			NormalizedName: normalizedName,
			Options:        options,
			NormalizedOpts: normalizedOpts,
		})
	})
	return variants
}

func extractFeatureList(doc *goquery.Document) []string {
	const maxFeatures = 10
	features := []string{}
	for _, selector := range featureListSelectors {
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := NormalizeText(s.Text())
			if len(text) > 5 {
				features = append(features, text)
			}
			return len(features) < maxFeatures
		})
		if len(features) >= maxFeatures {
			break
		}
	}
	return features
}

func applyReviewSignals(doc *goquery.Document, reviewSelectors []string, product *tables.Product) {
	if product.ReviewCount > 0 || product.RatingAvg > 0 {
		return
	}
	for _, selector := range reviewSelectors {
		text := strings.ToLower(doc.Find(selector).First().Text())
		if text == "" {
			continue
		}
		if m := ratingRe.FindStringSubmatch(text); m != nil {
			if rating, err := strconv.ParseFloat(m[1], 64); err == nil {
				product.RatingAvg = rating
			}
		}
		if m := reviewCountRe.FindStringSubmatch(text); m != nil {
			if count, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
				product.ReviewCount = count
			}
		}
		if product.ReviewCount > 0 || product.RatingAvg > 0 {
			return
		}
	}
}

func marshalList(items []string, correlationId string) string {
	b, err := json.Marshal(items)
	if err != nil {
		log.Printf("%s error marshalling list: %s", correlationId, err)
		return ""
	}
	return string(b)
}

// canonicalProductURL strips query and fragment so variant links dedupe to
// one product.
func canonicalProductURL(pageUrl string) string {
	if idx := strings.IndexAny(pageUrl, "?#"); idx != -1 {
		return pageUrl[:idx]
	}
	return pageUrl
}
