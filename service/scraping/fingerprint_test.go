package scraping

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	assert.Nil(t, err, "expected sample html to parse")
	return doc
}

const sampleShopifyHome = `<!DOCTYPE html>
<html>
<head>
	<meta name="generator" content="Shopify">
	<script src="https://cdn.shopify.com/s/files/1/0001/assets/theme.js"></script>
	<link rel="stylesheet" href="https://cdn.shopify.com/s/files/1/0001/assets/shopify-theme.css">
</head>
<body>
	<div class="shopify-section header"></div>
	<a href="/collections/all">Shop all</a>
</body>
</html>`

const sampleWooProduct = `<!DOCTYPE html>
<html>
<head>
	<meta name="generator" content="WooCommerce 8.5">
	<script src="/wp-content/plugins/woocommerce/assets/js/frontend.js"></script>
</head>
<body>
	<div class="woocommerce single-product"></div>
</body>
</html>`

func TestDetectPlatformShopify(t *testing.T) {
	doc := docFromHTML(t, sampleShopifyHome)
	result := DetectPlatform(doc, "https://shop.example.com/collections/all")

	assert.Equal(t, "shopify", result.Platform, "expected shopify fingerprint")
	assert.True(t, result.Confidence >= 0.5, "expected strong confidence, got %f", result.Confidence)
	assert.Contains(t, result.Features, "meta_shopify")
	assert.Contains(t, result.Features, "script_cdn.shopify.com")
}

func TestDetectPlatformWooCommerce(t *testing.T) {
	doc := docFromHTML(t, sampleWooProduct)
	result := DetectPlatform(doc, "https://store.example.com/product/widget")

	assert.Equal(t, "woocommerce", result.Platform, "expected woocommerce fingerprint")
	assert.True(t, result.Confidence > 0, "expected nonzero confidence")
}

func TestDetectPlatformUnknown(t *testing.T) {
	doc := docFromHTML(t, `<html><head><title>Plain page</title></head><body><p>hello</p></body></html>`)
	result := DetectPlatform(doc, "https://example.com/about")

	assert.Equal(t, PLATFORM_GENERIC, result.Platform, "expected generic fallback")
	assert.Equal(t, 0.0, result.Confidence)
	assert.Empty(t, result.Features)
}

func TestConfidenceCapsAtOne(t *testing.T) {
	assert.Equal(t, 1.0, normalizeScore(25))
	assert.Equal(t, 0.3, normalizeScore(3))
}
