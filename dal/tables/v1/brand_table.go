package v1

// Brand is one scraped storefront. BrandID is the registrable domain.
type Brand struct {
	// Required
	BrandID             string // e.g. "acme.com"
	BrandName           string
	StorefrontURL       string
	CreatedAtEpochMilli int64

	// Optional, heuristically extracted.
	Description             string
	LogoURL                 string
	Platform                string  // fingerprinted e-commerce platform.
	PlatformScore           float64 // fingerprint confidence 0..1
	ValueProposition        string
	BrandVoice              string // playful, luxury, technical, ...
	TargetAudience          string
	SocialLinks             string // JSON map of network -> url
	LastScrapedAtEpochMilli int64
}

type ProductAvailability string

const (
	AVAIL_IN_STOCK      ProductAvailability = "in_stock"
	AVAIL_OUT_OF_STOCK  ProductAvailability = "out_of_stock"
	AVAIL_PRE_ORDER     ProductAvailability = "pre_order"
	AVAIL_BACKORDER     ProductAvailability = "backorder"
	AVAIL_LIMITED_STOCK ProductAvailability = "limited_stock"
	AVAIL_DISCONTINUED  ProductAvailability = "discontinued"
	AVAIL_UNKNOWN       ProductAvailability = "unknown"
)

// Product is one normalized product page under a brand.
type Product struct {
	// Required
	BrandID   string
	ProductID string // md5 of the canonical product URL.
	Name      string
	PageURL   string

	// Optional, normalized.
	Description         string
	PriceCents          int64
	OriginalCents       int64 // pre-discount price when present.
	Currency            string
	Availability        ProductAvailability
	ImageURLs           string // JSON array
	Variants            string // JSON array of Variant
	Features            string // JSON array, top extracted features.
	Tags                string // JSON array
	ReviewCount         int
	RatingAvg           float64
	DataQualityScore    float64 // 0..1 extraction confidence.
	ScrapedAtEpochMilli int64
}

// Variant is one option axis on a product (size, color, ...).
type Variant struct {
	Name           string   `json:"name"`
	NormalizedName string   `json:"normalizedName"` // size, color, material, capacity, style, dimensions, other
	Options        []string `json:"options"`
	NormalizedOpts []string `json:"normalizedOptions"`
}
