package orchestration

import (
	"context"
	"encoding/json"
	"log"
	"sort"

	env "github.com/viralos-core/v2/configuration"
	dal "github.com/viralos-core/v2/dal"
	tables "github.com/viralos-core/v2/dal/tables/v1"
	assembly "github.com/viralos-core/v2/service/assembly"
	generation "github.com/viralos-core/v2/service/generation"
)

// Creates the final-render media event that compiles child media events,
// then cuts the render for each assigned publisher profile.
type FinalRenderWorkflow struct{}

func (s *FinalRenderWorkflow) GetWorkflowName() string {
	return "FinalRenderWorkflow"
}

func (s *FinalRenderWorkflow) Run(campaign tables.Campaign, processId string) error {
	assignedPublishEvents, err := s.getPublishEventsWhereAssigned(campaign)
	if err != nil {
		return err
	}

	rootMediasReadyForRender, err := s.getRootMediaAllChildrenReady(campaign, assignedPublishEvents)
	if err != nil {
		return err
	}

	err = s.spawnFinalRenderMediaEvents(campaign, rootMediasReadyForRender)
	return err
}

func (s *FinalRenderWorkflow) getPublishEventsWhereAssigned(campaign tables.Campaign) ([]tables.PublishEvent, error) {
	assignedPublishEvents := []tables.PublishEvent{}
	publishEvents, err := campaign.GetExistingPublishEvents()
	if err != nil {
		log.Printf("correlationID: %s error getting publish events from campaign: %s", campaign.CampaignID, err)
		return assignedPublishEvents, err
	}

	profileStateMap := PubStateByProfile(publishEvents)

	for _, p := range publishEvents {
		if p.PublishStatus == tables.ASSIGNED && !s.isAlreadyRendering(p, profileStateMap) {
			assignedPublishEvents = append(assignedPublishEvents, p)
		}
	}
	return assignedPublishEvents, nil
}

func (s *FinalRenderWorkflow) isAlreadyRendering(event tables.PublishEvent, profileStateMap map[string]tables.PublishEvent) bool {
	keyStringRendering := tables.PublishEvent{
		DistributionChannel: event.DistributionChannel,
		PublisherProfileID:  event.PublisherProfileID,
		PublishStatus:       tables.RENDERING,
	}
	_, isRendering := profileStateMap[keyStringRendering.GetProfileStateKey()]
	return isRendering
}

func (s *FinalRenderWorkflow) getRootMediaAllChildrenReady(campaign tables.Campaign,
	assignedPublishEvents []tables.PublishEvent) ([]tables.MediaEvent, error) {
	rootMedias := []tables.MediaEvent{}
	mediaEvents, err := campaign.GetExistingMediaEvents()
	if err != nil {
		log.Printf("correlationID: %s error getting media events from campaign: %s", campaign.CampaignID, err)
		return mediaEvents, err
	}
	assignedRootMediaIds := make(map[string]string)
	for _, p := range assignedPublishEvents {
		assignedRootMediaIds[p.RootMediaEventID] = p.GetEventID()
	}
	for _, r := range mediaEvents {
		if _, ok := assignedRootMediaIds[r.GetEventID()]; ok && AllChildrenRendered(r.EventID, mediaEvents) {
			rootMedias = append(rootMedias, r)
		}
	}
	return rootMedias, nil
}

func (s *FinalRenderWorkflow) spawnFinalRenderMediaEvents(campaign tables.Campaign, rootMediaEventsToFinalize []tables.MediaEvent) error {
	mediaEvents, err := campaign.GetExistingMediaEvents()
	if err != nil {
		log.Printf("correlationID: %s error getting media events from campaign: %s", campaign.CampaignID, err)
		return err
	}
	publishEvents, err := campaign.GetExistingPublishEvents()
	if err != nil {
		log.Printf("correlationID: %s error getting publish events from campaign: %s", campaign.CampaignID, err)
		return err
	}
	mediaEventToPublisherMap := CreateMediaEventToPublisherMap(publishEvents, mediaEvents)
	for _, r := range rootMediaEventsToFinalize {
		children := CollectRenderableChildrenEvents(r.EventID, mediaEvents)
		sort.Sort(tables.ByRenderSequence(children))
		for _, assignedPublishEvent := range mediaEventToPublisherMap[r.GetEventID()] {
			if assignedPublishEvent.PublishStatus != tables.ASSIGNED {
				continue
			}
			finalMediaEvent := s.createFinalRenderMediaEventFromChildren(campaign, r, children, assignedPublishEvent)
			alreadyLedgered, err := ExistsInLedger(campaign, []tables.MediaEvent{finalMediaEvent})
			if err != nil {
				return err
			}
			if alreadyLedgered {
				// Retry the cut if a prior assembly died before uploading.
				// The ledgered copy holds the authoritative lookup key.
				for _, m := range mediaEvents {
					if m.EventID == finalMediaEvent.EventID {
						err = s.assembleRender(campaign, m)
						if err != nil {
							return err
						}
						break
					}
				}
				continue
			}
			err = HandleMediaGeneration(campaign, []tables.MediaEvent{finalMediaEvent})
			if err != nil {
				log.Printf("correlationID: %s failed to append finalRender media event: %s", campaign.CampaignID, err)
				return err
			}

			err = dal.AppendCampaignPublishEvents(campaign.CampaignID, []tables.PublishEvent{
				s.createPublishEventRender(assignedPublishEvent)})
			if err != nil {
				log.Printf("correlationID: %s failed to append RENDERING publish event: %s", campaign.CampaignID, err)
				return err
			}

			err = s.assembleRender(campaign, finalMediaEvent)
			if err != nil {
				return err
			}
		}
	}

	return err
}

func (s *FinalRenderWorkflow) assembleRender(campaign tables.Campaign, finalMediaEvent tables.MediaEvent) error {
	alreadyRendered, err := generation.MediaExists(finalMediaEvent.ContentLookupKey)
	if err != nil {
		return err
	}
	if alreadyRendered {
		return nil
	}
	err = assembly.AssembleFinalRender(context.Background(), finalMediaEvent)
	if err != nil {
		log.Printf("correlationID: %s final render assembly failed: %s", campaign.CampaignID, err)
		return err
	}
	return nil
}

func (s *FinalRenderWorkflow) createFinalRenderMediaEventFromChildren(
	campaign tables.Campaign, root tables.MediaEvent, children []tables.MediaEvent,
	publishEvent tables.PublishEvent) tables.MediaEvent {
	watermarkText := s.watermarkTextForPublisher(campaign, publishEvent)
	result := tables.MediaEvent{
		CampaignID:             campaign.CampaignID,
		Language:               root.Language,
		Niche:                  root.Niche,
		MediaType:              tables.MEDIA_RENDER,
		PromptInstruction:      "CREATING FINAL RENDER " + publishEvent.PublisherProfileID,
		DistributionFormat:     root.DistributionFormat,
		IsFinalRender:          true,
		WatermarkText:          watermarkText,
		ParentEventID:          root.EventID,
		FinalRenderPublisherID: publishEvent.PublisherProfileID,
	}
	result.PromptHash = tables.HashString(result.PromptInstruction)
	result.EventID = result.GetEventID()
	result.FinalRenderSequences = s.createJsonOfRenderSequence(children)
	result.ContentLookupKey = result.GetContentLookupKey()
	return result
}

func (s *FinalRenderWorkflow) watermarkTextForPublisher(campaign tables.Campaign, publishEvent tables.PublishEvent) string {
	account, err := dal.GetPublisherAccount(publishEvent.OwnerAccountID, publishEvent.PublisherProfileID)
	if err != nil {
		// non-critical path, continue on failure.
		log.Printf("correlationID: %s WARN failed to retrieve watermark text: %s", campaign.CampaignID, err)
	}
	if account.PublisherWatermarkText != "" {
		return account.PublisherWatermarkText
	}
	defaultText := env.GetEnvConfigs().DefaultPublisherWatermarkText
	log.Printf("correlationID: %s WARN watermark empty, setting default watermark: %s", campaign.CampaignID, defaultText)
	return defaultText
}

func (s *FinalRenderWorkflow) createJsonOfRenderSequence(childrenEvents []tables.MediaEvent) string {
	if len(childrenEvents) == 0 {
		return ""
	}
	renderSequences := []tables.RenderMediaSequence{}
	for _, m := range childrenEvents {
		renderSequences = append(renderSequences, m.ToRenderSequence())
	}
	b, _ := json.Marshal(renderSequences)
	return string(b)
}

func (s *FinalRenderWorkflow) createPublishEventRender(originalEvent tables.PublishEvent) tables.PublishEvent {
	result := originalEvent
	result.PublishStatus = tables.RENDERING
	return result
}
