package orchestration

import (
	"log"
	"time"

	dal "github.com/viralos-core/v2/dal"
	tables "github.com/viralos-core/v2/dal/tables/v1"
	manifest "github.com/viralos-core/v2/manifest"
)

// AKA reaper workflow. Expires stale soft locks and marks the campaign
// FINISHED once every target channel has a completed publish.
type CompletionWorkflow struct{}

func (s *CompletionWorkflow) GetWorkflowName() string {
	return "CompletionWorkflow"
}

func (s *CompletionWorkflow) Run(campaign tables.Campaign, processId string) error {
	publishEvents, err := campaign.GetExistingPublishEvents()
	if err != nil {
		log.Printf("correlationID: %s error getting existing publish events: %s", campaign.CampaignID, err)
		return err
	}
	mediaEvents, err := campaign.GetExistingMediaEvents()
	if err != nil {
		log.Printf("correlationID: %s error getting existing media events: %s", campaign.CampaignID, err)
		return err
	}
	if len(mediaEvents) == 0 {
		return nil
	}

	err = s.expireStaleEvents(campaign, publishEvents)
	if err != nil {
		return err
	}

	if s.isFullySyndicated(mediaEvents, publishEvents) {
		log.Printf("correlationID: %s all channels complete, finishing campaign", campaign.CampaignID)
		return dal.SetCampaignStatus(campaign.CampaignID, tables.FINISHED_CAMPAIGN)
	}
	return nil
}

func (s *CompletionWorkflow) expireStaleEvents(campaign tables.Campaign, publishEvents []tables.PublishEvent) error {
	stateMap := PubStateByRootMedia(publishEvents)
	now := time.Now().UnixMilli()
	for _, p := range publishEvents {
		if s.isTerminalStatus(p.PublishStatus) || p.ExpiresAtTTL >= now {
			continue
		}
		if s.hasLaterState(p, stateMap) {
			continue
		}
		expiredEvent := p
		expiredEvent.PublishStatus = tables.EXPIRED
		expiredEvent.ProcessOwner = ""
		err := dal.AppendCampaignPublishEvents(campaign.CampaignID, []tables.PublishEvent{expiredEvent})
		if err != nil {
			log.Printf("correlationID: %s failed appending EXPIRED publish event: %s", campaign.CampaignID, err)
			return err
		}
		log.Printf("correlationID: %s expired stale publish event %s", campaign.CampaignID, p.GetEventID())
	}
	return nil
}

func (s *CompletionWorkflow) isTerminalStatus(status tables.PublishStatus) bool {
	return status == tables.COMPLETE || status == tables.EXPIRED
}

// A stale event with a terminal or further-along sibling needs no reaping.
func (s *CompletionWorkflow) hasLaterState(event tables.PublishEvent, stateMap map[string]tables.PublishEvent) bool {
	laterStates := map[tables.PublishStatus][]tables.PublishStatus{
		tables.ASSIGNED:   {tables.RENDERING, tables.PUBLISHING, tables.COMPLETE, tables.EXPIRED},
		tables.RENDERING:  {tables.PUBLISHING, tables.COMPLETE, tables.EXPIRED},
		tables.PUBLISHING: {tables.COMPLETE, tables.EXPIRED},
	}
	for _, status := range laterStates[event.PublishStatus] {
		probe := event
		probe.PublishStatus = status
		if _, ok := stateMap[probe.GetRootMediaAssignmentKey()]; ok {
			return true
		}
	}
	return false
}

func (s *CompletionWorkflow) isFullySyndicated(mediaEvents []tables.MediaEvent, publishEvents []tables.PublishEvent) bool {
	stateMap := PubStateByRootMedia(publishEvents)
	sawRoot := false
	for _, m := range mediaEvents {
		if !IsParentMediaEvent(m) || m.NotUsedInGenerators() {
			continue
		}
		sawRoot = true
		targetChannelNames := manifest.GetManifestLoader().GetChannelsForFormat(string(m.DistributionFormat))
		if len(targetChannelNames) == 0 {
			return false
		}
		for _, name := range targetChannelNames {
			probe := tables.PublishEvent{
				DistributionChannel: tables.ChannelName(name),
				RootMediaEventID:    m.EventID,
				PublishStatus:       tables.COMPLETE,
			}
			if _, ok := stateMap[probe.GetRootMediaAssignmentKey()]; !ok {
				return false
			}
		}
	}
	return sawRoot
}
