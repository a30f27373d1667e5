package scraping

// platformSignature holds the detection patterns for one storefront platform.
type platformSignature struct {
	MetaGenerators []string // matched against <meta name="generator">
	Scripts        []string // matched against <script src="...">
	CSS            []string // matched against <link href="...">
	HTMLPatterns   []string // matched against raw HTML
	URLs           []string // matched against the page URL
}

const PLATFORM_GENERIC = "generic"

var platformSignatures = map[string]platformSignature{
	"shopify": {
		MetaGenerators: []string{"shopify"},
		Scripts:        []string{"cdn.shopify.com", "shopifycdn.com"},
		CSS:            []string{"shopify"},
		HTMLPatterns:   []string{"shopify-section", "shopify-pay"},
		URLs:           []string{"/cart/add", "/products/", "/collections/"},
	},
	"woocommerce": {
		MetaGenerators: []string{"woocommerce"},
		Scripts:        []string{"woocommerce", "wc-"},
		CSS:            []string{"woocommerce", "wc-"},
		HTMLPatterns:   []string{"woocommerce", "wc-"},
		URLs:           []string{"/cart/", "/checkout/", "/my-account/"},
	},
	"bigcommerce": {
		MetaGenerators: []string{"bigcommerce"},
		Scripts:        []string{"bigcommerce.com", "bc-sf-filter"},
		CSS:            []string{"bigcommerce"},
		HTMLPatterns:   []string{"bigcommerce"},
		URLs:           []string{"/cart.php", "/checkout/"},
	},
	"magento": {
		MetaGenerators: []string{"magento"},
		Scripts:        []string{"mage/", "magento"},
		CSS:            []string{"magento"},
		HTMLPatterns:   []string{"magento", "mage-"},
		URLs:           []string{"/checkout/cart/", "/customer/account/"},
	},
	"prestashop": {
		MetaGenerators: []string{"prestashop"},
		Scripts:        []string{"prestashop", "ps_"},
		CSS:            []string{"prestashop"},
		HTMLPatterns:   []string{"prestashop"},
		URLs:           []string{"/order", "/authentication"},
	},
	"squarespace": {
		MetaGenerators: []string{"squarespace"},
		Scripts:        []string{"squarespace.com", "static1.squarespace.com"},
		CSS:            []string{"squarespace"},
		HTMLPatterns:   []string{"squarespace"},
	},
	"wix": {
		MetaGenerators: []string{"wix.com"},
		Scripts:        []string{"wix.com", "wixstatic.com"},
		CSS:            []string{"wix"},
		HTMLPatterns:   []string{"wix"},
	},
	"square": {
		MetaGenerators: []string{"square"},
		Scripts:        []string{"squareup.com", "square"},
		CSS:            []string{"square"},
		HTMLPatterns:   []string{"square"},
	},
}

// selectorSet lists CSS selectors to try, in priority order, per product field.
type selectorSet struct {
	Title        []string
	Price        []string
	Description  []string
	Images       []string
	Variants     []string
	Availability []string
	Reviews      []string
}

var productSelectors = map[string]selectorSet{
	"shopify": {
		Title:        []string{".product-title", ".product__title", "h1.product-single__title"},
		Price:        []string{".price", ".product-price", "[data-price]", ".product__price"},
		Description:  []string{".product-description", ".product__description", ".rte"},
		Images:       []string{".product-image img", ".product__media img", ".product-photo img"},
		Variants:     []string{".product-variants", ".product-form__variants", "[data-variant]"},
		Availability: []string{".product-availability", "[data-inventory]"},
		Reviews:      []string{".reviews", ".product-reviews", "[data-reviews]"},
	},
	"woocommerce": {
		Title:        []string{".product_title", ".entry-title"},
		Price:        []string{".price", ".woocommerce-Price-amount"},
		Description:  []string{".woocommerce-product-details__short-description", ".product_meta"},
		Images:       []string{".woocommerce-product-gallery img", ".product-image img"},
		Variants:     []string{".variations", ".variable-product"},
		Availability: []string{".stock", ".out-of-stock"},
		Reviews:      []string{".woocommerce-reviews", "#reviews"},
	},
	"bigcommerce": {
		Title:        []string{".product-title", ".productView-title"},
		Price:        []string{".price", ".productView-price"},
		Description:  []string{".product-description", ".productView-description"},
		Images:       []string{".product-image img", ".productView-image img"},
		Variants:     []string{".product-options", ".form-field"},
		Availability: []string{".product-availability"},
		Reviews:      []string{".reviews", ".productView-reviews"},
	},
	"magento": {
		Title:        []string{".page-title", ".product-item-name"},
		Price:        []string{".price", ".price-box"},
		Description:  []string{".product.attribute.description", ".product-info-description"},
		Images:       []string{".product-image-main img", ".gallery-image img"},
		Variants:     []string{".swatch-attribute", ".product-options-wrapper"},
		Availability: []string{".stock", ".availability"},
		Reviews:      []string{".reviews", ".product-reviews"},
	},
	PLATFORM_GENERIC: {
		Title:        []string{"h1", ".title", ".product-title", ".name"},
		Price:        []string{".price", ".cost", ".amount", "[data-price]"},
		Description:  []string{".description", ".details", ".summary"},
		Images:       []string{".product-image img", ".gallery img", ".main-image img"},
		Variants:     []string{".options", ".variants", ".attributes"},
		Availability: []string{".stock", ".availability", ".in-stock"},
		Reviews:      []string{".reviews", ".ratings", ".testimonials"},
	},
}

// GetProductSelectors falls back to the generic set for unfingerprinted shops.
func GetProductSelectors(platform string) selectorSet {
	if s, ok := productSelectors[platform]; ok {
		return s
	}
	return productSelectors[PLATFORM_GENERIC]
}
