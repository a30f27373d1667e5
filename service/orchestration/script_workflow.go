package orchestration

import (
	"log"

	dao "github.com/viralos-core/v2/dal"
	tables "github.com/viralos-core/v2/dal/tables/v1"
	manifest "github.com/viralos-core/v2/manifest"
	generation "github.com/viralos-core/v2/service/generation"
	ingestion "github.com/viralos-core/v2/service/ingestion"
)

type ScriptWorkflow struct{}

func (s *ScriptWorkflow) GetWorkflowName() string {
	return "ScriptWorkflow"
}

func (s *ScriptWorkflow) Run(campaign tables.Campaign, processId string) error {
	if campaign.TriggerEventSource == ingestion.SOURCE_STOREFRONT && campaign.BrandID == "" {
		// Scrape has not landed the brand yet; the brand append re-triggers us.
		log.Printf("correlationID: %s awaiting scraped brand before scripting", campaign.CampaignID)
		return nil
	}

	prompts := manifest.GetManifestLoader().GetScriptPromptsFromSource(campaign.TriggerEventSource)
	existingMediaEvents, err := campaign.GetExistingMediaEvents()
	if err != nil {
		log.Printf("correlationID: %s error deserializing existing media events from campaign: %s", campaign.CampaignID, err)
		return err
	}

	brand, products, err := s.loadBrandContext(campaign)
	if err != nil {
		return err
	}

	for _, p := range prompts {
		mediaEvent, err := generation.BuildScriptMediaEvent(p, campaign, brand, products)
		if err != nil {
			log.Printf("correlationID: %s failed to build media event from prompt: %s", campaign.CampaignID, err)
			return err
		}
		if isAlreadyScripted(existingMediaEvents, mediaEvent) {
			continue
		}

		err = HandleMediaGeneration(campaign, []tables.MediaEvent{mediaEvent})
		if err != nil {
			log.Printf("correlationID: %s failed to handle media generation for script workflow: %s", campaign.CampaignID, err)
			return err
		}
	}
	return nil
}

func (s *ScriptWorkflow) loadBrandContext(campaign tables.Campaign) (tables.Brand, []tables.Product, error) {
	if campaign.BrandID == "" {
		return tables.Brand{}, nil, nil
	}
	brand, err := dao.GetBrand(campaign.BrandID)
	if err != nil {
		log.Printf("correlationID: %s error loading brand %s: %s", campaign.CampaignID, campaign.BrandID, err)
		return brand, nil, err
	}
	products, err := dao.GetProductsByBrand(campaign.BrandID)
	if err != nil {
		log.Printf("correlationID: %s error loading products for brand %s: %s", campaign.CampaignID, campaign.BrandID, err)
		return brand, products, err
	}
	return brand, products, nil
}

func isAlreadyScripted(existingMediaEvents []tables.MediaEvent, mediaEvent tables.MediaEvent) bool {
	for _, m := range existingMediaEvents {
		if m.EventID == mediaEvent.GetEventID() {
			return true
		}
	}
	return false
}
