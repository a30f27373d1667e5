package orchestration

import (
	"context"
	"log"
	"time"

	env "github.com/viralos-core/v2/configuration"
	dal "github.com/viralos-core/v2/dal"
	tables "github.com/viralos-core/v2/dal/tables/v1"
	ingestion "github.com/viralos-core/v2/service/ingestion"
	scraping "github.com/viralos-core/v2/service/scraping"
)

// Crawls the storefront behind a campaign trigger, fingerprints the
// platform, and persists the brand and product catalog.
type ScrapeWorkflow struct{}

func (s *ScrapeWorkflow) GetWorkflowName() string {
	return "ScrapeWorkflow"
}

func (s *ScrapeWorkflow) Run(campaign tables.Campaign, processId string) error {
	if campaign.TriggerEventSource != ingestion.SOURCE_STOREFRONT {
		return nil
	}
	existingScrapeEvents, err := campaign.GetExistingScrapeEvents()
	if err != nil {
		log.Printf("correlationID: %s error deserializing existing scrape events: %s", campaign.CampaignID, err)
		return err
	}
	if len(existingScrapeEvents) > 0 {
		// Crawl already ran for this campaign.
		return nil
	}

	domain, err := scraping.RegistrableDomain(campaign.TriggerEventPayload)
	if err != nil {
		log.Printf("correlationID: %s unable to derive domain from %s: %s",
			campaign.CampaignID, campaign.TriggerEventPayload, err)
		return err
	}
	if !dal.IsCallable(dal.ScrapeDomainRateKey(domain), env.GetEnvConfigs().ScrapeMaxRequestsPerMin) {
		log.Printf("correlationID: %s scrape rate limited for domain %s, deferring", campaign.CampaignID, domain)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(env.GetEnvConfigs().ScrapeTimeoutSec)*time.Second)
	defer cancel()

	scrapeService := scraping.NewScrapeService()
	defer scrapeService.Close()
	scrapeEvents, brand, err := scrapeService.ScrapeStorefront(ctx, campaign.CampaignID, campaign.TriggerEventPayload)
	if err != nil {
		log.Printf("correlationID: %s scrape failed: %s", campaign.CampaignID, err)
	}
	if len(scrapeEvents) == 0 {
		return err
	}

	appendErr := dal.AppendCampaignScrapeEvents(campaign.CampaignID, scrapeEvents)
	if appendErr != nil {
		log.Printf("correlationID: %s failed appending scrape events: %s", campaign.CampaignID, appendErr)
		return appendErr
	}
	if brand.BrandID != "" {
		appendErr = dal.SetCampaignBrand(campaign.CampaignID, brand.BrandID)
		if appendErr != nil {
			log.Printf("correlationID: %s failed setting campaign brand: %s", campaign.CampaignID, appendErr)
			return appendErr
		}
	}
	return err
}
