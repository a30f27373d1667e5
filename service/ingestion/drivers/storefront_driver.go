package drivers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"

	tables "github.com/viralos-core/v2/dal/tables/v1"
	models_v1 "github.com/viralos-core/v2/service/ingestion/models/v1"
)

type StorefrontDriver struct {
	PayloadIO io.ReadCloser
	Source    string
}

func NewStorefrontDriver(payloadIO io.ReadCloser, source string) Driver {
	return &StorefrontDriver{PayloadIO: payloadIO, Source: source}
}

func (d StorefrontDriver) IsReady() bool {
	return true
}

func (d StorefrontDriver) GetRawEventPayload() (tables.Campaign, error) {
	rawEvent, err := d.decode(d.PayloadIO)
	if err != nil {
		log.Printf("error decoding raw event payload: %s", err)
		return tables.Campaign{}, err
	}
	if !strings.HasPrefix(rawEvent.StorefrontUrl, "http") {
		return tables.Campaign{}, errors.New("storefrontUrl must be an absolute http(s) url")
	}

	campaign := newCampaignFromText(rawEvent.TargetLanguage, rawEvent.StorefrontUrl, d.Source)
	if rawEvent.DistributionFormat != "" {
		if _, err := tables.GetDistributionFormatFromString(rawEvent.DistributionFormat); err != nil {
			return tables.Campaign{}, err
		}
		campaign.TriggerEventDistFormat = rawEvent.DistributionFormat
	}
	return campaign, err
}

func (d StorefrontDriver) decode(payloadIO io.ReadCloser) (models_v1.StorefrontRequest, error) {
	decoder := json.NewDecoder(payloadIO)
	var payload models_v1.StorefrontRequest
	err := decoder.Decode(&payload)
	if err != nil {
		return payload, err
	}
	return payload, err
}
