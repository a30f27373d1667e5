package orchestration

import (
	"fmt"
	"log"
	"time"

	env "github.com/viralos-core/v2/configuration"
	dal "github.com/viralos-core/v2/dal"
	tables "github.com/viralos-core/v2/dal/tables/v1"
	"github.com/viralos-core/v2/manifest"
)

type AssignmentWorkflow struct{}

func (s *AssignmentWorkflow) GetWorkflowName() string {
	return "AssignmentWorkflow"
}

func (s *AssignmentWorkflow) Run(campaign tables.Campaign, processId string) error {
	mediaEvents, err := campaign.GetExistingMediaEvents()
	if err != nil {
		log.Printf("correlationID: %s error extracting media events from campaign item: %s", campaign.CampaignID, err)
		return err
	}
	if len(mediaEvents) == 0 {
		log.Printf("correlationID: %s no media events found", campaign.CampaignID)
	}

	publishEvents, err := campaign.GetExistingPublishEvents()
	if err != nil {
		log.Printf("correlationID: %s error extracting publish events from campaign item: %s", campaign.CampaignID, err)
		return err
	}
	if len(publishEvents) == 0 {
		log.Printf("correlationID: %s no publish events found", campaign.CampaignID)
	}
	mediaEventsReadyToAssign, err := s.collectRootMediaReadyToPublish(mediaEvents)
	if err != nil {
		log.Printf("correlationID: %s error collecting media events to assign, item: %s", campaign.CampaignID, err)
		return err
	}
	if len(mediaEventsReadyToAssign) != 0 {
		log.Printf("correlationID: %s found %d events ready to assign", campaign.CampaignID, len(mediaEventsReadyToAssign))
	}

	err = s.assignMedia(campaign, mediaEventsReadyToAssign, publishEvents, processId)
	return err
}

func (s *AssignmentWorkflow) collectRootMediaReadyToPublish(mediaEvents []tables.MediaEvent) ([]tables.MediaEvent, error) {
	result := []tables.MediaEvent{}
	for _, m := range mediaEvents {
		if !IsParentMediaEvent(m) {
			continue
		}
		children := CollectRenderableChildrenEvents(m.EventID, mediaEvents)
		if len(children) == 0 {
			// Script not expanded into scenes yet.
			continue
		}
		if AllChildrenRendered(m.EventID, mediaEvents) {
			result = append(result, m)
		}
	}
	return result, nil
}

func (s *AssignmentWorkflow) assignMedia(campaign tables.Campaign, mediaEventsReadyToAssign []tables.MediaEvent,
	publishEvents []tables.PublishEvent, processId string) error {
	// 1. Init map of PublishEvent IDs containing states. Val PublishEvent
	publishEventMap := PubStateByRootMedia(publishEvents)
	// 2. For each "ready" media event, collect valid distribution channel names
	// 3. For each media event & channel name target; if absent from PublishEvent map, and not expired; then publish.
	if len(mediaEventsReadyToAssign) == 0 {
		log.Printf("correlationID: %s no media events ready to assign", campaign.CampaignID)
	}
	for _, m := range mediaEventsReadyToAssign {
		targetChannelNames := manifest.GetManifestLoader().GetChannelsForFormat(string(m.DistributionFormat))
		if len(targetChannelNames) == 0 {
			log.Printf("correlationID: %s WARN no target channel names found for distribution format %s",
				campaign.CampaignID, m.DistributionFormat)
		}

		for _, name := range targetChannelNames {
			if s.isAssignable(m, name, publishEventMap) {
				// Assign.
				err := s.assignMediaToPublisher(campaign, m, name, processId)
				if err != nil {
					log.Printf("correlationID: %s failed to assign media to publisher: %s", campaign.CampaignID, err)
					return err
				}
			}
		}
	}
	return nil
}

func (s *AssignmentWorkflow) isAssignable(mediaEvent tables.MediaEvent, targetChannelName string, publishEventMap map[string]tables.PublishEvent) bool {
	// if unassigned, true
	stateKeyAssigned := fmt.Sprintf("%s.%s.%s", targetChannelName, mediaEvent.GetEventID(), tables.ASSIGNED)
	if _, ok := publishEventMap[stateKeyAssigned]; !ok {
		return true
	}

	stateKeyCompleted := fmt.Sprintf("%s.%s.%s", targetChannelName, mediaEvent.GetEventID(), tables.COMPLETE)
	// if assigned, but already completed: cannot assign to distribution channel
	if _, ok := publishEventMap[stateKeyCompleted]; ok {
		return false
	}

	stateKeyExpired := fmt.Sprintf("%s.%s.%s", targetChannelName, mediaEvent.GetEventID(), tables.EXPIRED)
	// if assigned, but expired, true: ok to retry same distribution channel
	if _, ok := publishEventMap[stateKeyExpired]; ok {
		return true
	}
	return false
}

func (s *AssignmentWorkflow) assignMediaToPublisher(campaign tables.Campaign, mediaEvent tables.MediaEvent,
	distributionChannelName string, processId string) error {
	assignedPublisherProfile, err := dal.AssignPublisherProfile(processId, distributionChannelName, mediaEvent.Language)
	if err != nil {
		log.Printf("unable to assign media event to publisher profile: %s", err)
		return err
	}
	publishProfileEvent := s.buildPublishEvent(campaign.CampaignID,
		assignedPublisherProfile, mediaEvent, distributionChannelName, processId)
	return dal.AppendCampaignPublishEvents(campaign.CampaignID, []tables.PublishEvent{publishProfileEvent})
}

func (s *AssignmentWorkflow) buildPublishEvent(campaignId string, publisherAccount tables.AccountPublisher,
	mediaEvent tables.MediaEvent,
	distributionChannelName string, processId string) tables.PublishEvent {
	expiryAtTime := time.Now().UnixMilli() + env.GetEnvConfigs().AssignmentLockMilliTTL
	return tables.PublishEvent{
		CampaignID:          campaignId,
		DistributionChannel: tables.ChannelName(distributionChannelName),
		ProcessOwner:        processId,
		ExpiresAtTTL:        expiryAtTime,
		PublishStatus:       tables.ASSIGNED,
		PublisherProfileID:  publisherAccount.PublisherProfileID,
		OwnerAccountID:      publisherAccount.AccountID,
		RootMediaEventID:    mediaEvent.GetEventID(),
	}
}
