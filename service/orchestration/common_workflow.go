package orchestration

import (
	"log"
	"time"

	dao "github.com/viralos-core/v2/dal"
	tables "github.com/viralos-core/v2/dal/tables/v1"
	generation "github.com/viralos-core/v2/service/generation"
)

// HandleMediaGeneration appends media events to the campaign ledger and
// notifies the generation topic for any event still missing its media.
// Safe to call repeatedly; already-ledgered batches are a no-op.
func HandleMediaGeneration(campaign tables.Campaign, mediaEvents []tables.MediaEvent) error {
	existsInLedger, err := ExistsInLedger(campaign, mediaEvents)
	if err != nil {
		log.Printf("correlationID: %s unable to determine idempotency: %s", campaign.CampaignID, err)
		return err
	}
	if existsInLedger {
		return nil
	}

	err = publishMediaGenerationSNS(mediaEvents)
	if err != nil {
		return err
	}
	err = dao.AppendCampaignMediaEvents(campaign.CampaignID, mediaEvents)
	return err
}

func publishMediaGenerationSNS(mediaEvents []tables.MediaEvent) error {
	for _, m := range mediaEvents {
		if m.NotUsedInGenerators() {
			continue
		}
		alreadyGenerated, err := generation.MediaExists(m.ContentLookupKey)
		if err != nil {
			return err
		}

		if alreadyGenerated {
			continue
		}

		err = PublishMediaTopicSns(m)
		if err != nil {
			return err
		}
	}
	return nil
}

func ExistsInLedger(campaign tables.Campaign, mediaEvents []tables.MediaEvent) (bool, error) {
	existingMediaEvents, err := campaign.GetExistingMediaEvents()
	if err != nil {
		log.Printf("correlationID: %s error deserializing existing media events from campaign: %s", campaign.CampaignID, err)
		return false, err
	}
	existingMediaEventsMap := make(map[string]bool)
	for _, m := range existingMediaEvents {
		existingMediaEventsMap[m.EventID] = true
	}
	for _, m := range mediaEvents {
		if _, ok := existingMediaEventsMap[m.EventID]; !ok {
			return false, nil
		}
	}
	return true, nil
}

func IsParentMediaEvent(mediaEvent tables.MediaEvent) bool {
	return mediaEvent.ParentEventID == ""
}

// Call when appending a soft-lock event to the ledger such as ASSIGNED or
// PUBLISHING to verify that you own the assignment or publish.
func WaitOptimisticVerifyWroteLedger(expectedPublisherEventID string, campaignId string) (bool, error) {
	time.Sleep(time.Duration(5) * time.Second)

	campaign, err := dao.GetCampaign(campaignId)
	if err != nil {
		log.Printf("correlationID: %s failed to fetch campaign ledger for verification: %s", campaignId, err)
		return false, err
	}

	existingPublishEvents, err := campaign.GetExistingPublishEvents()
	if err != nil {
		log.Printf("correlationID: %s error retreiving existing publish events for verification: %s", campaignId, err)
		return false, err
	}

	for _, p := range existingPublishEvents {
		if p.GetEventID() == expectedPublisherEventID {
			return true, nil
		}
	}
	return false, err
}

func AllChildrenRendered(rootId string, mediaEvents []tables.MediaEvent) bool {
	for _, m := range mediaEvents {
		if len(m.ParentEventID) == 0 || m.ParentEventID != rootId ||
			m.EventID == rootId || m.NotUsedInGenerators() {
			continue
		}

		exists, err := generation.MediaExists(m.ContentLookupKey)
		if err != nil {
			log.Printf("unexpected mediaExists error: %s", err)
			return false
		}
		if !exists {
			return false
		}
	}
	return true
}

func CollectRenderableChildrenEvents(mediaEventRootId string, mediaEvents []tables.MediaEvent) []tables.MediaEvent {
	result := []tables.MediaEvent{}
	for _, m := range mediaEvents {
		if len(m.ParentEventID) == 0 || m.ParentEventID != mediaEventRootId || m.NotUsedInGenerators() {
			continue
		}
		result = append(result, m)
	}
	return result
}

func PubStateByRootMedia(publishEvents []tables.PublishEvent) map[string]tables.PublishEvent {
	result := make(map[string]tables.PublishEvent)
	if len(publishEvents) == 0 {
		return result
	}
	for _, p := range publishEvents {
		result[p.GetRootMediaAssignmentKey()] = p
	}
	return result
}

func PubStateByProfile(publishEvents []tables.PublishEvent) map[string]tables.PublishEvent {
	result := make(map[string]tables.PublishEvent)
	if len(publishEvents) == 0 {
		return result
	}
	for _, p := range publishEvents {
		result[p.GetProfileStateKey()] = p
	}
	return result
}

func CreateMediaEventToPublisherMap(publishEvents []tables.PublishEvent, mediaEvents []tables.MediaEvent) map[string][]tables.PublishEvent {
	result := make(map[string][]tables.PublishEvent)
	if len(publishEvents) == 0 || len(mediaEvents) == 0 {
		log.Printf("WARN returning empty map")
		return result
	}

	publisherIdMap := make(map[string][]tables.PublishEvent)
	for _, p := range publishEvents {
		publisherIdMap[p.RootMediaEventID] = append(publisherIdMap[p.RootMediaEventID], p)
	}

	for _, m := range mediaEvents {
		if m.NotUsedInGenerators() {
			continue
		}

		p, ok := publisherIdMap[m.EventID]
		if !ok {
			continue
		}
		result[m.EventID] = append(result[m.EventID], p...)
	}
	return result
}
