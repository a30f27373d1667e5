package scraping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleProductPage = `<!DOCTYPE html>
<html>
<head>
<script type="application/ld+json">
{"@context": "https://schema.org", "@type": "Product", "name": "Test Widget"}
</script>
</head>
<body>
	<h1>Test Widget</h1>
	<span class="price">$19.99</span>
	<button class="add-to-cart">Add to cart</button>
	<div class="product-gallery"><img src="/img/widget.jpg"></div>
</body>
</html>`

func TestClassifyProductPage(t *testing.T) {
	doc := docFromHTML(t, sampleProductPage)
	result := ClassifyProductPage(doc, "https://shop.example.com/products/test-widget")

	assert.True(t, result.IsProduct, "expected product page classification")
	assert.True(t, result.Confidence > 0.5, "expected high confidence, got %f", result.Confidence)
	assert.Contains(t, result.Signals, "schema_product")
}

func TestClassifyNonProductPage(t *testing.T) {
	doc := docFromHTML(t, `<html><body><h1>About us</h1><p>Our story.</p></body></html>`)
	result := ClassifyProductPage(doc, "https://shop.example.com/about")

	assert.False(t, result.IsProduct, "expected non-product classification")
}

func TestClassifyJsonLdArray(t *testing.T) {
	page := `<html><head>
<script type="application/ld+json">
[{"@type": "BreadcrumbList"}, {"@type": "Product", "name": "Widget"}]
</script>
</head><body></body></html>`
	doc := docFromHTML(t, page)
	result := ClassifyProductPage(doc, "https://shop.example.com/p/widget")

	assert.True(t, result.IsProduct, "expected schema array to classify as product")
	assert.Contains(t, result.Signals, "schema_product")
}
