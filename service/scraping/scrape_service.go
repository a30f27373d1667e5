package scraping

import (
	"context"
	"log"

	env "github.com/viralos-core/v2/configuration"
	"github.com/viralos-core/v2/dal"
	tables "github.com/viralos-core/v2/dal/tables/v1"
)

// ScrapeService runs the storefront pipeline: fetch, fingerprint, discover
// product pages, classify, extract, normalize, persist.
type ScrapeService struct {
	fetcher *Fetcher
}

func NewScrapeService() *ScrapeService {
	return &ScrapeService{fetcher: NewFetcher()}
}

func (s *ScrapeService) Close() {
	s.fetcher.Close()
}

// ScrapeStorefront crawls a storefront for a campaign. Returns the scrape
// events describing every page visited; the brand and products land in
// their tables as a side effect.
func (s *ScrapeService) ScrapeStorefront(ctx context.Context, campaignId string, storefrontUrl string) ([]tables.ScrapeEvent, tables.Brand, error) {
	events := []tables.ScrapeEvent{}

	homePage, err := s.fetcher.FetchPage(ctx, storefrontUrl)
	if err != nil {
		log.Printf("correlationID: %s failed fetching storefront %s: %s", campaignId, storefrontUrl, err)
		events = append(events, tables.ScrapeEvent{
			PageURL:      storefrontUrl,
			ScrapeStatus: tables.SCRAPE_FAILED,
		})
		return events, tables.Brand{}, err
	}

	fingerprint := DetectPlatform(homePage.Document, homePage.FinalURL)
	log.Printf("correlationID: %s fingerprinted %s as %s confidence %.2f",
		campaignId, storefrontUrl, fingerprint.Platform, fingerprint.Confidence)

	brand, err := ExtractBrand(homePage.Document, storefrontUrl)
	if err != nil {
		log.Printf("correlationID: %s failed extracting brand from %s: %s", campaignId, storefrontUrl, err)
		return events, tables.Brand{}, err
	}
	brand.Platform = fingerprint.Platform
	brand.PlatformScore = fingerprint.Confidence

	err = dal.CreateBrand(brand)
	if err != nil {
		log.Printf("correlationID: %s failed persisting brand %s: %s", campaignId, brand.BrandID, err)
		return events, brand, err
	}

	events = append(events, tables.ScrapeEvent{
		PageURL:      storefrontUrl,
		Platform:     fingerprint.Platform,
		Confidence:   fingerprint.Confidence,
		PageKind:     "home",
		ScrapeStatus: tables.SCRAPE_PARSED,
		BrandID:      brand.BrandID,
		ContentHash:  tables.HashString(homePage.HTML),
	})

	maxProducts := env.GetEnvConfigs().ScrapeMaxProductsPerBrand
	productLinks := FindProductLinks(homePage.Document, storefrontUrl, maxProducts)
	log.Printf("correlationID: %s found %d candidate product links on %s", campaignId, len(productLinks), storefrontUrl)

	parsedProducts := 0
	for _, link := range productLinks {
		select {
		case <-ctx.Done():
			return events, brand, ctx.Err()
		default:
		}
		event := s.scrapeProductPage(ctx, campaignId, brand.BrandID, fingerprint.Platform, link)
		events = append(events, event)
		if event.ScrapeStatus == tables.SCRAPE_PARSED {
			parsedProducts++
		}
	}

	log.Printf("correlationID: %s scrape finished for %s: %d pages, %d products",
		campaignId, storefrontUrl, len(events), parsedProducts)
	return events, brand, nil
}

func (s *ScrapeService) scrapeProductPage(ctx context.Context, campaignId string,
	brandId string, platform string, pageUrl string) tables.ScrapeEvent {
	event := tables.ScrapeEvent{
		PageURL:  pageUrl,
		Platform: platform,
		BrandID:  brandId,
	}

	page, err := s.fetcher.FetchPage(ctx, pageUrl)
	if err != nil {
		log.Printf("correlationID: %s failed fetching page %s: %s", campaignId, pageUrl, err)
		event.ScrapeStatus = tables.SCRAPE_FAILED
		return event
	}
	event.ContentHash = tables.HashString(page.HTML)

	existing, err := dal.GetPageHashEntry(event.ContentHash)
	if err == nil && existing.PageHash != "" {
		log.Printf("correlationID: %s page content unchanged, skipping %s", campaignId, pageUrl)
		event.ScrapeStatus = tables.SCRAPE_DUPLICATE
		return event
	}

	classification := ClassifyProductPage(page.Document, page.FinalURL)
	event.Confidence = classification.Confidence
	if !classification.IsProduct {
		event.PageKind = "listing"
		event.ScrapeStatus = tables.SCRAPE_FETCHED
		return event
	}
	event.PageKind = "product"

	product, err := ExtractProduct(page.Document, pageUrl, platform)
	if err != nil {
		log.Printf("correlationID: %s failed extracting product from %s: %s", campaignId, pageUrl, err)
		event.ScrapeStatus = tables.SCRAPE_FAILED
		return event
	}
	if product.Name == "" {
		// Unextractable page; record the fetch so we don't retry forever.
		event.ScrapeStatus = tables.SCRAPE_FETCHED
		return event
	}

	err = dal.CreateProduct(product)
	if err != nil {
		log.Printf("correlationID: %s failed persisting product %s: %s", campaignId, product.ProductID, err)
		event.ScrapeStatus = tables.SCRAPE_FAILED
		return event
	}

	err = dal.CreatePageHashEntry(event.ContentHash)
	if err != nil {
		log.Printf("correlationID: %s failed persisting page hash for %s: %s", campaignId, pageUrl, err)
	}

	event.ProductID = product.ProductID
	event.ScrapeStatus = tables.SCRAPE_PARSED
	return event
}
