package scraping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tables "github.com/viralos-core/v2/dal/tables/v1"
)

const sampleSchemaProduct = `<!DOCTYPE html>
<html>
<head>
<script type="application/ld+json">
{
	"@context": "https://schema.org",
	"@type": "Product",
	"name": "Trail Runner 2",
	"description": "Lightweight trail running shoe with a grippy outsole.",
	"image": ["https://cdn.example.com/trail-1.jpg", "https://cdn.example.com/trail-2.jpg"],
	"offers": {
		"@type": "Offer",
		"price": "89.99",
		"priceCurrency": "USD",
		"availability": "https://schema.org/InStock"
	},
	"aggregateRating": {"ratingValue": "4.6", "reviewCount": "212"}
}
</script>
</head>
<body><h1>Trail Runner 2</h1></body>
</html>`

const sampleSelectorProduct = `<!DOCTYPE html>
<html>
<body>
	<h1 class="product-title">Canvas Tote Bag</h1>
	<div class="price">£24.50</div>
	<div class="description">A sturdy canvas tote that fits a laptop, groceries, and everything in between. Stitched handles.</div>
	<div class="product-image"><img src="/images/tote.jpg"></div>
	<div class="stock">In stock</div>
	<select name="Color">
		<option>Select</option>
		<option>Navy</option>
		<option>Cream</option>
	</select>
	<ul class="features">
		<li>Reinforced stitching</li>
		<li>Interior zip pocket</li>
	</ul>
</body>
</html>`

func TestExtractProductFromSchema(t *testing.T) {
	doc := docFromHTML(t, sampleSchemaProduct)
	product, err := ExtractProduct(doc, "https://shop.example.com/products/trail-runner-2?variant=3", "shopify")

	assert.Nil(t, err, "expected extraction to succeed")
	assert.Equal(t, "shop.example.com", product.BrandID)
	assert.Equal(t, "Trail Runner 2", product.Name)
	assert.Equal(t, int64(8999), product.PriceCents)
	assert.Equal(t, "USD", product.Currency)
	assert.Equal(t, tables.AVAIL_IN_STOCK, product.Availability)
	assert.Equal(t, 4.6, product.RatingAvg)
	assert.Equal(t, 212, product.ReviewCount)
	assert.Contains(t, product.ImageURLs, "trail-1.jpg")
	assert.True(t, product.DataQualityScore > 0.5, "expected good quality score, got %f", product.DataQualityScore)

	// Variant links dedupe to one product.
	canonical := tables.HashString("https://shop.example.com/products/trail-runner-2")
	assert.Equal(t, canonical, product.ProductID)
}

func TestExtractProductFromSelectors(t *testing.T) {
	doc := docFromHTML(t, sampleSelectorProduct)
	product, err := ExtractProduct(doc, "https://shop.example.com/products/canvas-tote", "generic")

	assert.Nil(t, err, "expected extraction to succeed")
	assert.Equal(t, "Canvas Tote Bag", product.Name)
	assert.Equal(t, int64(2450), product.PriceCents)
	assert.Equal(t, "GBP", product.Currency)
	assert.Equal(t, tables.AVAIL_IN_STOCK, product.Availability)
	assert.Contains(t, product.Variants, "color")
	assert.Contains(t, product.Variants, "Navy")
	assert.Contains(t, product.Features, "Reinforced stitching")
	assert.Contains(t, product.ImageURLs, "https://shop.example.com/images/tote.jpg")
}

const sampleBrandHome = `<!DOCTYPE html>
<html>
<head>
	<title>Acme Outdoors - Gear for every trail</title>
	<meta name="description" content="Acme Outdoors makes premium hiking gear for adventurers.">
	<meta property="og:site_name" content="Acme Outdoors">
</head>
<body>
	<div class="logo"><img src="/assets/logo.png" alt="logo"></div>
	<div class="hero"><h1>Premium gear for serious adventurers everywhere</h1></div>
	<a href="https://instagram.com/acmeoutdoors">Instagram</a>
	<a href="https://tiktok.com/@acmeoutdoors">TikTok</a>
	<a href="/products/trail-pack">Trail Pack</a>
	<a href="/products/trail-pack">Trail Pack again</a>
	<a href="/collections/tents">Tents</a>
	<a href="https://othersite.com/products/stolen">External</a>
</body>
</html>`

func TestExtractBrand(t *testing.T) {
	doc := docFromHTML(t, sampleBrandHome)
	brand, err := ExtractBrand(doc, "https://www.acmeoutdoors.com")

	assert.Nil(t, err, "expected brand extraction to succeed")
	assert.Equal(t, "acmeoutdoors.com", brand.BrandID)
	assert.Equal(t, "Acme Outdoors", brand.BrandName)
	assert.Equal(t, "Acme Outdoors makes premium hiking gear for adventurers.", brand.Description)
	assert.Contains(t, brand.LogoURL, "/assets/logo.png")
	assert.Contains(t, brand.SocialLinks, "instagram.com/acmeoutdoors")
	assert.Contains(t, brand.SocialLinks, "tiktok.com/@acmeoutdoors")
	assert.NotEmpty(t, brand.ValueProposition)
}

func TestFindProductLinks(t *testing.T) {
	doc := docFromHTML(t, sampleBrandHome)
	links := FindProductLinks(doc, "https://www.acmeoutdoors.com", 10)

	assert.Len(t, links, 2, "expected deduped on-site product links")
	assert.Contains(t, links, "https://www.acmeoutdoors.com/products/trail-pack")
	assert.Contains(t, links, "https://www.acmeoutdoors.com/collections/tents")
}

func TestRegistrableDomain(t *testing.T) {
	domain, err := RegistrableDomain("https://www.Example.com/products/x")
	assert.Nil(t, err)
	assert.Equal(t, "example.com", domain)

	_, err = RegistrableDomain("not a url ::")
	assert.NotNil(t, err, "expected error for invalid url")
}
