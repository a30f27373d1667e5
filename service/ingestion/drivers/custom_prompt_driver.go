package drivers

import (
	"encoding/json"
	"io"
	"log"

	tables "github.com/viralos-core/v2/dal/tables/v1"
	models_v1 "github.com/viralos-core/v2/service/ingestion/models/v1"
)

type CustomPromptDriver struct {
	PayloadIO io.ReadCloser
	Source    string
}

func NewCustomPromptDriver(payloadIO io.ReadCloser, source string) Driver {
	return &CustomPromptDriver{PayloadIO: payloadIO, Source: source}
}

func (d CustomPromptDriver) IsReady() bool {
	return true
}

func (d CustomPromptDriver) GetRawEventPayload() (tables.Campaign, error) {
	rawEvent, err := d.decode(d.PayloadIO)
	if err != nil {
		log.Printf("error decoding raw event payload: %s", err)
		return tables.Campaign{}, err
	}

	return newCampaignFromText(rawEvent.TargetLanguage, rawEvent.PromptText, d.Source), err
}

func (d CustomPromptDriver) decode(payloadIO io.ReadCloser) (models_v1.CustomPromptRequest, error) {
	decoder := json.NewDecoder(payloadIO)
	var payload models_v1.CustomPromptRequest
	err := decoder.Decode(&payload)
	if err != nil {
		return payload, err
	}
	return payload, err
}
