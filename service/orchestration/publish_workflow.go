package orchestration

import (
	"fmt"
	"log"
	"time"

	dal "github.com/viralos-core/v2/dal"
	tables "github.com/viralos-core/v2/dal/tables/v1"
	generation "github.com/viralos-core/v2/service/generation"
	drivers "github.com/viralos-core/v2/service/orchestration/publisher-drivers"
)

type PublishWorkFlow struct{}

func (s *PublishWorkFlow) GetWorkflowName() string {
	return "PublishWorkFlow"
}

func (s *PublishWorkFlow) Run(campaign tables.Campaign, processId string) error {
	publishCommands, err := s.collectPublishCommands(campaign)
	if err != nil {
		log.Printf("correlationID: %s error generating publish commands: %s", campaign.CampaignID, err)
		return err
	}

	for _, p := range publishCommands {
		err = s.handlePublish(p, campaign.CampaignID, processId)
	}
	return err
}

func (s *PublishWorkFlow) handlePublish(pubCommand drivers.PublishCommand, campaignId string, processId string) error {
	driver, err := drivers.GetDriver(string(pubCommand.RootPublishEvent.DistributionChannel))
	if err != nil {
		log.Printf("correlationID: %s error fetching driver: %s", campaignId, err)
		return err
	}

	err = dal.TakePublishLock(pubCommand.RootPublishEvent.OwnerAccountID, pubCommand.RootPublishEvent.PublisherProfileID, processId)
	if err != nil {
		log.Printf("correlationID: %s error taking publisher lock: %s", campaignId, err)
		return err
	}

	publishingEvent := pubCommand.RootPublishEvent
	publishingEvent.ProcessOwner = processId
	publishingEvent.PublishStatus = tables.PUBLISHING
	err = dal.AppendCampaignPublishEvents(campaignId, []tables.PublishEvent{publishingEvent})
	if err != nil {
		log.Printf("correlationID: %s error appending publisher publishing-event to campaign: %s", campaignId, err)
		// Try release publish lock
		dal.ReleasePublishLock(pubCommand.RootPublishEvent.OwnerAccountID, pubCommand.RootPublishEvent.PublisherProfileID, processId)
		return err
	}

	isSuccessfullyLocked, err := WaitOptimisticVerifyWroteLedger(publishingEvent.GetEventID(), campaignId)
	if err != nil || !isSuccessfullyLocked {
		log.Printf("correlationID: %s unable to verify publish-event ledger softlock: %s", campaignId, err)
		// Try release publish lock
		dal.ReleasePublishLock(pubCommand.RootPublishEvent.OwnerAccountID, pubCommand.RootPublishEvent.PublisherProfileID, processId)
		return err
	}

	remotePostId, err := driver.Publish(pubCommand)
	if err != nil {
		log.Printf("correlationID: %s error publishing: %s", campaignId, err)
		// Try release publish lock
		dal.ReleasePublishLock(pubCommand.RootPublishEvent.OwnerAccountID, pubCommand.RootPublishEvent.PublisherProfileID, processId)
		return err
	}

	completionEventRecord := pubCommand.RootPublishEvent
	completionEventRecord.PublishStatus = tables.COMPLETE
	completionEventRecord.RemotePostID = remotePostId
	completionEventRecord.PublishedAtEpochMilli = time.Now().UnixMilli()
	err = dal.AppendCampaignPublishEvents(campaignId, []tables.PublishEvent{completionEventRecord})
	if err != nil {
		log.Printf("correlationID: %s error appending completion publish event: %s", campaignId, err)
		return err
	}

	err = dal.RecordPublishTime(pubCommand.RootPublishEvent.OwnerAccountID, pubCommand.RootPublishEvent.PublisherProfileID)
	if err != nil {
		log.Printf("correlationID: %s error recording last publish time: %s", campaignId, err)
		return err
	}

	err = dal.ReleaseAssignment(pubCommand.RootPublishEvent.OwnerAccountID, pubCommand.RootPublishEvent.PublisherProfileID, processId)
	if err != nil {
		log.Printf("correlationID: %s error releasing assignment lock for successful publish: %s", campaignId, err)
		return err
	}
	err = dal.ReleasePublishLock(pubCommand.RootPublishEvent.OwnerAccountID, pubCommand.RootPublishEvent.PublisherProfileID, processId)
	if err != nil {
		log.Printf("correlationID: %s error releasing publish lock for successful publish: %s", campaignId, err)
		return err
	}

	return err
}

func (s *PublishWorkFlow) collectPublishCommands(campaign tables.Campaign) ([]drivers.PublishCommand, error) {
	publishEvents, err := campaign.GetExistingPublishEvents()
	if err != nil {
		log.Printf("correlationID: %s error getting existing publish events: %s", campaign.CampaignID, err)
		return []drivers.PublishCommand{}, err
	}
	mediaEvents, err := campaign.GetExistingMediaEvents()
	if err != nil {
		log.Printf("correlationID: %s error getting existing media events: %s", campaign.CampaignID, err)
		return []drivers.PublishCommand{}, err
	}

	publishStateToPubMap := PubStateByRootMedia(publishEvents)
	result := []drivers.PublishCommand{}
	for _, p := range publishEvents {
		shouldCreatePublishEvent, err := s.isRenderWithoutPublish(p, publishStateToPubMap)
		if err != nil {
			return []drivers.PublishCommand{}, err
		}

		if !shouldCreatePublishEvent || s.isRenderAlreadyCompleted(p, publishStateToPubMap) {
			continue
		}

		finalRenderEvent := s.getFinalRenderEvent(p.RootMediaEventID, p.PublisherProfileID, mediaEvents)
		if len(finalRenderEvent.EventID) == 0 {
			log.Printf("correlationID: %s WARN no finalRenderRoot present for publish, pubEvent: %s",
				campaign.CampaignID, p.GetEventID())
			continue
		}

		rendered, err := s.isFinalRenderUploaded(finalRenderEvent)
		if err != nil {
			return []drivers.PublishCommand{}, err
		}
		if !rendered {
			continue
		}
		rootScriptEvent := s.getRootScriptEvent(p.RootMediaEventID, mediaEvents)
		publishCommand := s.toPublishCommand(p, finalRenderEvent, rootScriptEvent)
		result = append(result, publishCommand)
	}
	return result, err
}

func (s *PublishWorkFlow) isRenderWithoutPublish(root tables.PublishEvent, publishStates map[string]tables.PublishEvent) (bool, error) {
	if root.PublishStatus != tables.RENDERING {
		return false, nil
	}

	existingPublishingEvent, ok := publishStates[fmt.Sprintf("%s.%s.%s", root.DistributionChannel,
		root.RootMediaEventID, tables.PUBLISHING)]
	if ok && existingPublishingEvent.ExpiresAtTTL < time.Now().UnixMilli() {
		// Expired, allow append new publish event.
		return true, nil
	}
	if !ok {
		return true, nil
	}

	// check that publish is still holding the profile-publish lock, otherwise retry by creating a new pub-event
	pubAccount, err := dal.GetPublisherAccount(existingPublishingEvent.OwnerAccountID, existingPublishingEvent.PublisherProfileID)
	if err != nil {
		log.Printf("correlationID: %s error retrieving publisher account within isRenderWithoutPublish: %s",
			existingPublishingEvent.CampaignID, err)
		return false, err
	}

	if len(pubAccount.PublishLockID) == 0 || pubAccount.PublishLockTTL < time.Now().UnixMilli() {
		return true, nil
	}

	return !ok, nil
}

func (s *PublishWorkFlow) isRenderAlreadyCompleted(root tables.PublishEvent, publishStates map[string]tables.PublishEvent) bool {
	if root.PublishStatus != tables.RENDERING {
		return false
	}

	_, ok := publishStates[fmt.Sprintf("%s.%s.%s", root.DistributionChannel,
		root.RootMediaEventID, tables.COMPLETE)]
	return ok
}

func (s *PublishWorkFlow) getFinalRenderEvent(mediaRootId string, publisherProfileId string,
	mediaEvents []tables.MediaEvent) tables.MediaEvent {
	for _, m := range mediaEvents {
		if m.ParentEventID == mediaRootId && m.IsFinalRender &&
			m.FinalRenderPublisherID == publisherProfileId {
			return m
		}
	}
	return tables.MediaEvent{}
}

func (s *PublishWorkFlow) isFinalRenderUploaded(finalRenderEvent tables.MediaEvent) (bool, error) {
	return generation.MediaExists(finalRenderEvent.ContentLookupKey)
}

func (s *PublishWorkFlow) getRootScriptEvent(mediaRootId string, mediaEvents []tables.MediaEvent) tables.MediaEvent {
	for _, m := range mediaEvents {
		if m.EventID == mediaRootId {
			return m
		}
	}
	return tables.MediaEvent{}
}

func (s *PublishWorkFlow) toPublishCommand(publishEvent tables.PublishEvent,
	finalRenderMedia tables.MediaEvent, rootScriptMedia tables.MediaEvent) drivers.PublishCommand {
	result := drivers.PublishCommand{
		RootPublishEvent:     publishEvent,
		FinalRenderMediaRoot: finalRenderMedia,
		ScriptMedia:          rootScriptMedia,
	}
	return result
}
