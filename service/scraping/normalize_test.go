package scraping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tables "github.com/viralos-core/v2/dal/tables/v1"
)

func TestNormalizePriceCents(t *testing.T) {
	assert.Equal(t, int64(129995), NormalizePriceCents("$1,299.95"))
	assert.Equal(t, int64(1999), NormalizePriceCents("19.99 USD"))
	assert.Equal(t, int64(129900), NormalizePriceCents("1.299"), "expected euro-style thousands separator")
	assert.Equal(t, int64(500), NormalizePriceCents("From $5"))
	assert.Equal(t, int64(0), NormalizePriceCents("Call for pricing"))
	assert.Equal(t, int64(0), NormalizePriceCents(""))
}

func TestNormalizeCurrency(t *testing.T) {
	assert.Equal(t, "EUR", NormalizeCurrency("€"))
	assert.Equal(t, "GBP", NormalizeCurrency("£"))
	assert.Equal(t, "USD", NormalizeCurrency("dollars"))
	assert.Equal(t, "EUR", NormalizeCurrency("eur"))
	assert.Equal(t, "USD", NormalizeCurrency(""))
	assert.Equal(t, "USD", NormalizeCurrency("not-a-currency"))
}

func TestNormalizeAvailability(t *testing.T) {
	assert.Equal(t, tables.AVAIL_IN_STOCK, NormalizeAvailability("In Stock - ships today"))
	assert.Equal(t, tables.AVAIL_OUT_OF_STOCK, NormalizeAvailability("Sold out"))
	assert.Equal(t, tables.AVAIL_PRE_ORDER, NormalizeAvailability("Pre-order now"))
	assert.Equal(t, tables.AVAIL_LIMITED_STOCK, NormalizeAvailability("Only a few left"))
	assert.Equal(t, tables.AVAIL_DISCONTINUED, NormalizeAvailability("This item is discontinued"))
	assert.Equal(t, tables.AVAIL_UNKNOWN, NormalizeAvailability("whatever"))
	assert.Equal(t, tables.AVAIL_UNKNOWN, NormalizeAvailability(""))
}

func TestNormalizeVariantName(t *testing.T) {
	assert.Equal(t, "color", NormalizeVariantName("Colour"))
	assert.Equal(t, "size", NormalizeVariantName("Shoe Size"))
	assert.Equal(t, "material", NormalizeVariantName("Fabric Type"))
	assert.Equal(t, "capacity", NormalizeVariantName("Storage"))
	assert.Equal(t, "other", NormalizeVariantName("Bundle"))
	assert.Equal(t, "other", NormalizeVariantName(""))
}

func TestNormalizeOptionValue(t *testing.T) {
	assert.Equal(t, "XL", NormalizeOptionValue("xl"))
	assert.Equal(t, "Black", NormalizeOptionValue("Midnight Black"))
	assert.Equal(t, "128gb", NormalizeOptionValue("128 GB"))
	// Color keywords match as substrings: "Standard" contains "tan".
	assert.Equal(t, "Tan", NormalizeOptionValue("Standard"))
	assert.Equal(t, "Large", NormalizeOptionValue("Large"))
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "Fast & easy", NormalizeText("  Fast &amp;   easy \n"))
	assert.Equal(t, "", NormalizeText(""))
}

func TestCalculateQualityScore(t *testing.T) {
	full := tables.Product{
		Name:         "Widget",
		PriceCents:   1999,
		Description:  "A very detailed description that goes on for longer than one hundred characters so the detail bonus applies here.",
		ImageURLs:    `["https://example.com/a.jpg"]`,
		Availability: tables.AVAIL_IN_STOCK,
		Variants:     `[{"name":"Size"}]`,
		Features:     `["Waterproof"]`,
		ReviewCount:  12,
	}
	empty := tables.Product{}

	assert.Equal(t, 1.0, CalculateQualityScore(full), "expected full product to score 1.0")
	assert.Equal(t, 0.0, CalculateQualityScore(empty), "expected empty product to score 0.0")
	assert.True(t, CalculateQualityScore(tables.Product{Name: "Widget"}) > 0, "name alone should score")
}
