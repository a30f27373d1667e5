package drivers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	tables "github.com/viralos-core/v2/dal/tables/v1"
	models_v1 "github.com/viralos-core/v2/service/ingestion/models/v1"
)

type ReviewDumpDriver struct {
	PayloadIO io.ReadCloser
	Source    string
}

func NewReviewDumpDriver(payloadIO io.ReadCloser, source string) Driver {
	return &ReviewDumpDriver{PayloadIO: payloadIO, Source: source}
}

func (d ReviewDumpDriver) IsReady() bool {
	return true
}

func (d ReviewDumpDriver) GetRawEventPayload() (tables.Campaign, error) {
	rawEvent, err := d.decode(d.PayloadIO)
	if err != nil {
		log.Printf("error decoding raw event payload: %s", err)
		return tables.Campaign{}, err
	}
	if rawEvent.ReviewsText == "" {
		return tables.Campaign{}, errors.New("reviewsText must not be empty")
	}
	payload := fmt.Sprintf(`
		Storefront:
		%s

		Customer Reviews:
		%s
		`, rawEvent.StorefrontUrl, rawEvent.ReviewsText)
	campaign := newCampaignFromText(rawEvent.TargetLanguage, payload, d.Source)
	campaign.TriggerEventDistFormat = string(tables.DIST_FORMAT_UGC)
	return campaign, err
}

func (d ReviewDumpDriver) decode(payloadIO io.ReadCloser) (models_v1.ReviewDumpRequest, error) {
	decoder := json.NewDecoder(payloadIO)
	var payload models_v1.ReviewDumpRequest
	err := decoder.Decode(&payload)
	if err != nil {
		return payload, err
	}
	return payload, err
}
