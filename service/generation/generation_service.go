package generation

import (
	"context"
	"fmt"
	"log"

	dal "github.com/viralos-core/v2/dal"
	tables "github.com/viralos-core/v2/dal/tables/v1"
	providers "github.com/viralos-core/v2/service/generation/providers"
)

// GenerateMedia produces the media for a pending event and stores it under
// the event's content lookup key. Providers are tried in fallback order;
// rate-limited providers are skipped for the current minute bucket.
func GenerateMedia(ctx context.Context, mediaEvent tables.MediaEvent) (string, error) {
	alreadyGenerated, err := MediaExists(mediaEvent.ContentLookupKey)
	if err != nil {
		return "", err
	}
	if alreadyGenerated {
		return mediaEvent.ProviderName, nil
	}

	providerChain, err := providers.GetProviderChain(mediaEvent.MediaType)
	if err != nil {
		log.Printf("correlationID: %s no provider chain for media type %s: %s",
			mediaEvent.CampaignID, mediaEvent.MediaType, err)
		return "", err
	}

	var lastErr error
	for _, provider := range providerChain {
		if !dal.IsCallable(provider.GetRateKey(), providers.DEFAULT_MAX_REQUESTS_PER_MIN) {
			log.Printf("correlationID: %s provider %s rate limited, trying next",
				mediaEvent.CampaignID, provider.GetName())
			continue
		}
		job, err := provider.Generate(ctx, mediaEvent)
		if err != nil {
			lastErr = err
			continue
		}
		job, err = providers.AwaitJob(ctx, provider, job)
		if err != nil {
			log.Printf("correlationID: %s provider %s failed to complete job: %s",
				mediaEvent.CampaignID, provider.GetName(), err)
			lastErr = err
			continue
		}
		err = SaveMedia(mediaEvent.ContentLookupKey, job.MediaBytes)
		if err != nil {
			return "", err
		}
		recordProviderCost(mediaEvent, provider.GetName(), job)
		return provider.GetName(), nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("all providers rate limited for media type %s", mediaEvent.MediaType)
	}
	return "", lastErr
}

func buildCostEntry(mediaEvent tables.MediaEvent, providerName string, job providers.Job) dal.CostEntry {
	return dal.CostEntry{
		CampaignID:      mediaEvent.CampaignID,
		ProviderName:    providerName,
		Operation:       string(mediaEvent.MediaType),
		Units:           job.Units,
		UnitKind:        job.UnitKind,
		CostCentsMicros: job.CostCentsMicros,
	}
}

func recordProviderCost(mediaEvent tables.MediaEvent, providerName string, job providers.Job) {
	err := dal.RecordCost(buildCostEntry(mediaEvent, providerName, job))
	if err != nil {
		// Cost tracking must not block the pipeline.
		log.Printf("correlationID: %s WARN failed recording %s cost: %s", mediaEvent.CampaignID, providerName, err)
	}
}
