package scraping

import (
	"encoding/json"
	"log"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	tables "github.com/viralos-core/v2/dal/tables/v1"
)

var titleSeparators = []string{" - ", " | ", " :: "}

var aboutSelectors = []string{".about", ".brand-story", ".hero-description", ".intro"}
var logoSelectors = []string{".logo img", ".brand img", ".header-logo img", "img[alt*='logo']"}
var heroSelectors = []string{".hero h1", ".banner h1", ".jumbotron h1", "h1"}

var socialPlatforms = []string{"facebook", "twitter", "instagram", "linkedin", "youtube", "tiktok"}

var brandVoiceIndicators = map[string][]string{
	"casual":       {"hey", "awesome", "cool", "fun", "easy"},
	"professional": {"professional", "expert", "quality", "excellence"},
	"friendly":     {"friendly", "welcome", "love", "enjoy", "happy"},
	"luxury":       {"luxury", "premium", "exclusive", "finest"},
	"innovative":   {"innovative", "cutting-edge", "advanced", "modern"},
}

var audienceIndicators = map[string][]string{
	"young adults":  {"trendy", "cool", "awesome", "vibes"},
	"professionals": {"business", "professional", "career", "corporate"},
	"families":      {"family", "kids", "children", "parents"},
	"fitness":       {"fitness", "health", "workout", "gym"},
	"luxury":        {"luxury", "premium", "exclusive", "high-end"},
}

var productLinkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/products?/`),
	regexp.MustCompile(`(?i)/items?/`),
	regexp.MustCompile(`(?i)/shop/`),
	regexp.MustCompile(`(?i)/store/`),
	regexp.MustCompile(`(?i)/collections?/`),
}

// ExtractBrand pulls brand identity out of a storefront home page.
func ExtractBrand(doc *goquery.Document, storefrontUrl string) (tables.Brand, error) {
	domain, err := RegistrableDomain(storefrontUrl)
	if err != nil {
		return tables.Brand{}, err
	}

	pageText := strings.ToLower(doc.Find("body").Text())
	brand := tables.Brand{
		BrandID:          domain,
		BrandName:        extractBrandName(doc, domain),
		StorefrontURL:    storefrontUrl,
		Description:      extractBrandDescription(doc),
		LogoURL:          extractLogoURL(doc, storefrontUrl),
		ValueProposition: extractValueProposition(doc),
		BrandVoice:       dominantKeywordGroup(pageText, brandVoiceIndicators, "neutral"),
		TargetAudience:   dominantKeywordGroup(pageText, audienceIndicators, ""),
	}

	socialLinks := extractSocialLinks(doc)
	if len(socialLinks) > 0 {
		b, err := json.Marshal(socialLinks)
		if err != nil {
			log.Printf("error marshalling social links for %s: %s", domain, err)
		} else {
			brand.SocialLinks = string(b)
		}
	}
	return brand, nil
}

func extractBrandName(doc *goquery.Document, domain string) string {
	if siteName := strings.TrimSpace(doc.Find(`meta[property="og:site_name"]`).AttrOr("content", "")); siteName != "" {
		return NormalizeText(siteName)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title != "" {
		for _, sep := range titleSeparators {
			if strings.Contains(title, sep) {
				return NormalizeText(strings.Split(title, sep)[0])
			}
		}
		return NormalizeText(title)
	}

	// Fallback: "acme.com" -> "Acme".
	parts := strings.Split(domain, ".")
	if len(parts) > 0 && parts[0] != "" {
		return strings.ToUpper(parts[0][:1]) + parts[0][1:]
	}
	return domain
}

func extractBrandDescription(doc *goquery.Document) string {
	if metaDesc := strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", "")); metaDesc != "" {
		return NormalizeText(metaDesc)
	}
	for _, selector := range aboutSelectors {
		text := NormalizeText(doc.Find(selector).First().Text())
		if len(text) > 50 {
			if len(text) > 300 {
				text = text[:300]
			}
			return text
		}
	}
	return ""
}

func extractLogoURL(doc *goquery.Document, baseUrl string) string {
	for _, selector := range logoSelectors {
		src := doc.Find(selector).First().AttrOr("src", "")
		if src != "" {
			return absoluteURL(src, baseUrl)
		}
	}
	return ""
}

func extractValueProposition(doc *goquery.Document) string {
	for _, selector := range heroSelectors {
		text := NormalizeText(doc.Find(selector).First().Text())
		if len(text) > 20 && len(text) < 200 {
			return text
		}
	}
	return ""
}

func extractSocialLinks(doc *goquery.Document) map[string]string {
	socialLinks := map[string]string{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		lower := strings.ToLower(href)
		for _, platform := range socialPlatforms {
			if strings.Contains(lower, platform) {
				if _, exists := socialLinks[platform]; !exists {
					socialLinks[platform] = href
				}
				break
			}
		}
	})
	return socialLinks
}

// dominantKeywordGroup returns the group whose keywords hit the page text
// most often.
func dominantKeywordGroup(pageText string, groups map[string][]string, fallback string) string {
	best := fallback
	bestScore := 0
	for group, keywords := range groups {
		score := 0
		for _, kw := range keywords {
			if strings.Contains(pageText, kw) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = group
		}
	}
	return best
}

// FindProductLinks collects on-site links that look like product or
// collection pages, capped to limit.
func FindProductLinks(doc *goquery.Document, baseUrl string, limit int) []string {
	seen := map[string]bool{}
	links := []string{}
	baseDomain, err := RegistrableDomain(baseUrl)
	if err != nil {
		return links
	}

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href := s.AttrOr("href", "")
		matched := false
		for _, pattern := range productLinkPatterns {
			if pattern.MatchString(href) {
				matched = true
				break
			}
		}
		if !matched {
			return true
		}

		full := absoluteURL(href, baseUrl)
		linkDomain, err := RegistrableDomain(full)
		if err != nil || linkDomain != baseDomain {
			return true
		}
		if !seen[full] {
			seen[full] = true
			links = append(links, full)
		}
		return len(links) < limit
	})
	return links
}

func absoluteURL(href string, baseUrl string) string {
	base, err := url.Parse(baseUrl)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
