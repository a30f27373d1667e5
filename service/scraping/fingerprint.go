package scraping

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Signal weights for platform fingerprinting. A generator meta tag is the
// strongest signal; raw HTML substrings the weakest.
const (
	scoreMetaGenerator = 3
	scoreScriptSrc     = 2
	scoreCSSHref       = 2
	scoreHTMLPattern   = 1
	scoreURLPattern    = 1
)

type FingerprintResult struct {
	Platform   string   // primary platform, PLATFORM_GENERIC when nothing matched.
	Confidence float64  // 0..1
	Platforms  []string // all matched platforms, best first.
	Features   []string // signals that fired for the primary platform.
}

// DetectPlatform scores each known platform's signature against the page and
// returns the best match. Confidence is the raw score normalized against 10.
func DetectPlatform(doc *goquery.Document, pageUrl string) FingerprintResult {
	htmlContent := ""
	if h, err := doc.Html(); err == nil {
		htmlContent = strings.ToLower(h)
	}
	urlLower := strings.ToLower(pageUrl)

	generator := strings.ToLower(doc.Find(`meta[name="generator"]`).AttrOr("content", ""))

	scriptSrcs := []string{}
	doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		scriptSrcs = append(scriptSrcs, strings.ToLower(s.AttrOr("src", "")))
	})
	cssHrefs := []string{}
	doc.Find("link[href]").Each(func(_ int, s *goquery.Selection) {
		cssHrefs = append(cssHrefs, strings.ToLower(s.AttrOr("href", "")))
	})

	type platformScore struct {
		platform string
		score    int
		features []string
	}
	scores := []platformScore{}

	for platform, sig := range platformSignatures {
		score := 0
		features := []string{}

		for _, pattern := range sig.MetaGenerators {
			if generator != "" && strings.Contains(generator, pattern) {
				score += scoreMetaGenerator
				features = append(features, "meta_"+pattern)
			}
		}
		for _, pattern := range sig.Scripts {
			for _, src := range scriptSrcs {
				if strings.Contains(src, pattern) {
					score += scoreScriptSrc
					features = append(features, "script_"+pattern)
					break
				}
			}
		}
		for _, pattern := range sig.CSS {
			for _, href := range cssHrefs {
				if strings.Contains(href, pattern) {
					score += scoreCSSHref
					features = append(features, "css_"+pattern)
					break
				}
			}
		}
		for _, pattern := range sig.HTMLPatterns {
			if strings.Contains(htmlContent, pattern) {
				score += scoreHTMLPattern
				features = append(features, "html_"+pattern)
			}
		}
		for _, pattern := range sig.URLs {
			if strings.Contains(urlLower, pattern) {
				score += scoreURLPattern
				features = append(features, "url_"+pattern)
			}
		}

		if score > 0 {
			scores = append(scores, platformScore{platform: platform, score: score, features: features})
		}
	}

	if len(scores) == 0 {
		return FingerprintResult{Platform: PLATFORM_GENERIC}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	result := FingerprintResult{
		Platform:   scores[0].platform,
		Confidence: normalizeScore(scores[0].score),
		Features:   scores[0].features,
	}
	for _, s := range scores {
		result.Platforms = append(result.Platforms, s.platform)
	}
	return result
}

func normalizeScore(score int) float64 {
	normalized := float64(score) / 10.0
	if normalized > 1.0 {
		return 1.0
	}
	return normalized
}
