package ingestion

import (
	"fmt"
	"log"
	"net/http"

	dal "github.com/viralos-core/v2/dal"
)

// SaveSourceEventToCampaign decodes a trigger request into a new campaign.
// Identical payloads within the dedupe TTL are rejected so a double-submitted
// storefront does not spawn two campaigns.
func SaveSourceEventToCampaign(source string, r *http.Request) (string, error) {
	driver, err := GetDriver(source, r.Body)
	if err != nil {
		log.Printf("error retrieving driver: %s", err)
		return "", err
	}
	campaignItem, err := driver.GetRawEventPayload()
	if err != nil {
		log.Printf("driver failed to get raw event payload: %s", err)
		return "", err
	}

	existing, err := dal.GetPageHashEntry(campaignItem.TriggerEventContentHash)
	if err == nil && existing.PageHash != "" {
		return "", fmt.Errorf("duplicate trigger event, content hash %s", campaignItem.TriggerEventContentHash)
	}

	err = dal.CreateCampaign(campaignItem)
	if err != nil {
		log.Printf("failed to create a new campaign item: %s", err)
		return "", err
	}

	err = dal.CreatePageHashEntry(campaignItem.TriggerEventContentHash)
	if err != nil {
		log.Printf("correlationID: %s failed recording trigger hash: %s", campaignItem.CampaignID, err)
	}
	return campaignItem.CampaignID, nil
}
