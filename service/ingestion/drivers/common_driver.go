package drivers

import (
	"github.com/google/uuid"
	tables "github.com/viralos-core/v2/dal/tables/v1"
)

type Driver interface {
	GetRawEventPayload() (tables.Campaign, error)
	IsReady() bool
}

func newCampaignFromText(targetLanguage string, text string, source string) tables.Campaign {
	if targetLanguage == "" {
		targetLanguage = "EN"
	}
	return tables.Campaign{
		CampaignID:                 uuid.New().String(),
		CampaignStatus:             tables.NEW_CAMPAIGN,
		TriggerEventPayload:        text,
		TriggerEventSource:         source,
		TriggerEventContentHash:    tables.HashString(text),
		TriggerEventTargetLanguage: targetLanguage, // TODO: Expand ISO Language Code to canonical name.
	}
}
