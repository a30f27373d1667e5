package ingestion

import (
	"errors"
	"io"

	"github.com/viralos-core/v2/service/ingestion/drivers"
)

const (
	SOURCE_STOREFRONT = "v1/source/storefront"
	SOURCE_REVIEWS    = "v1/source/reviews"
	SOURCE_PROMPT     = "v1/source/prompt"
)

func GetDriver(source string, payloadIO io.ReadCloser) (drivers.Driver, error) {
	switch {
	case source == SOURCE_STOREFRONT || source == "WorkflowIntegTest":
		val := drivers.NewStorefrontDriver(payloadIO, source)
		return val, nil
	case source == SOURCE_REVIEWS:
		val := drivers.NewReviewDumpDriver(payloadIO, source)
		return val, nil
	case source == SOURCE_PROMPT:
		val := drivers.NewCustomPromptDriver(payloadIO, source)
		return val, nil
	}

	return nil, errors.New("no matching source-to-driver found")
}
