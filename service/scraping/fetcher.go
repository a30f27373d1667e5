package scraping

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	env "github.com/viralos-core/v2/configuration"
	"github.com/viralos-core/v2/dal"
)

// Rotating desktop user agents. Some shops serve bot-detection pages to the
// default Go client UA.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
}

type FetchResult struct {
	PageURL    string
	FinalURL   string // after redirects.
	StatusCode int
	HTML       string
	Document   *goquery.Document
	Rendered   bool // true when the headless browser produced the HTML.
}

type Fetcher struct {
	client  *http.Client
	browser *BrowserRenderer
}

func NewFetcher() *Fetcher {
	cfg := env.GetEnvConfigs()
	return &Fetcher{
		client: &http.Client{
			Timeout: time.Duration(cfg.ScrapeTimeoutSec) * time.Second,
		},
	}
}

// FetchPage fetches and parses one page, respecting the per-domain rate
// bucket and spacing requests with jitter. Falls back to a headless browser
// render when enabled and the static fetch looks like a bot wall or an
// empty JS shell.
func (f *Fetcher) FetchPage(ctx context.Context, pageUrl string) (FetchResult, error) {
	cfg := env.GetEnvConfigs()
	domain, err := RegistrableDomain(pageUrl)
	if err != nil {
		return FetchResult{}, err
	}

	if !dal.IsCallable(dal.ScrapeDomainRateKey(domain), cfg.ScrapeMaxRequestsPerMin) {
		return FetchResult{}, fmt.Errorf("scrape rate limit exceeded for domain %s", domain)
	}

	sleepJitter(cfg.ScrapeDelayMinMilli, cfg.ScrapeDelayMaxMilli)

	var result FetchResult
	maxAttempts := cfg.ScrapeMaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err = f.fetchOnce(ctx, pageUrl)
		if err == nil && result.StatusCode < 500 {
			break
		}
		log.Printf("fetch attempt %d failed for %s: status %d err %v", attempt, pageUrl, result.StatusCode, err)
		sleepJitter(cfg.ScrapeDelayMinMilli, cfg.ScrapeDelayMaxMilli)
	}
	if err != nil {
		return result, err
	}
	if result.StatusCode >= 400 {
		return result, fmt.Errorf("fetch returned status %d for %s", result.StatusCode, pageUrl)
	}

	if cfg.ScrapeUseBrowserFallback && needsBrowserRender(result) {
		rendered, renderErr := f.renderWithBrowser(ctx, pageUrl)
		if renderErr != nil {
			log.Printf("browser render failed for %s, keeping static fetch: %s", pageUrl, renderErr)
			return result, nil
		}
		return rendered, nil
	}
	return result, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context, pageUrl string) (FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageUrl, nil)
	if err != nil {
		return FetchResult{}, err
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return FetchResult{}, err
	}
	defer resp.Body.Close()

	const maxBodyBytes = 10 << 20
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return FetchResult{}, err
	}

	result := FetchResult{
		PageURL:    pageUrl,
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		HTML:       string(body),
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(result.HTML))
	if err != nil {
		return result, err
	}
	result.Document = doc
	return result, nil
}

func (f *Fetcher) renderWithBrowser(ctx context.Context, pageUrl string) (FetchResult, error) {
	if f.browser == nil {
		f.browser = NewBrowserRenderer()
	}
	html, err := f.browser.RenderPage(ctx, pageUrl)
	if err != nil {
		return FetchResult{}, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return FetchResult{}, err
	}
	return FetchResult{
		PageURL:    pageUrl,
		FinalURL:   pageUrl,
		StatusCode: http.StatusOK,
		HTML:       html,
		Document:   doc,
		Rendered:   true,
	}, nil
}

func (f *Fetcher) Close() {
	if f.browser != nil {
		f.browser.Close()
	}
}

// needsBrowserRender flags pages that came back nearly empty of content,
// usually a client-side rendered shell or an interstitial.
func needsBrowserRender(result FetchResult) bool {
	if result.Document == nil {
		return true
	}
	bodyText := strings.TrimSpace(result.Document.Find("body").Text())
	if len(bodyText) < 200 {
		return true
	}
	lower := strings.ToLower(result.HTML)
	botWallMarkers := []string{"cf-challenge", "captcha", "enable javascript to continue"}
	for _, marker := range botWallMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func sleepJitter(minMilli int64, maxMilli int64) {
	if maxMilli <= minMilli {
		time.Sleep(time.Duration(minMilli) * time.Millisecond)
		return
	}
	delay := minMilli + rand.Int63n(maxMilli-minMilli)
	time.Sleep(time.Duration(delay) * time.Millisecond)
}

// RegistrableDomain strips the scheme and www prefix; this is the BrandID.
func RegistrableDomain(pageUrl string) (string, error) {
	parsed, err := url.Parse(pageUrl)
	if err != nil {
		return "", err
	}
	host := strings.ToLower(parsed.Hostname())
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "", fmt.Errorf("no host in url %s", pageUrl)
	}
	return host, nil
}
