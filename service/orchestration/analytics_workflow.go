package orchestration

import (
	"log"

	tables "github.com/viralos-core/v2/dal/tables/v1"
	analytics "github.com/viralos-core/v2/service/analytics"
)

// Snapshots platform engagement metrics for every completed publish.
type AnalyticsWorkflow struct{}

func (s *AnalyticsWorkflow) GetWorkflowName() string {
	return "AnalyticsWorkflow"
}

func (s *AnalyticsWorkflow) Run(campaign tables.Campaign, processId string) error {
	publishEvents, err := campaign.GetExistingPublishEvents()
	if err != nil {
		log.Printf("correlationID: %s error getting existing publish events: %s", campaign.CampaignID, err)
		return err
	}
	if !hasCompletedPublish(publishEvents) {
		return nil
	}
	return analytics.SnapshotCampaignMetrics(campaign)
}

func hasCompletedPublish(publishEvents []tables.PublishEvent) bool {
	for _, p := range publishEvents {
		if p.PublishStatus == tables.COMPLETE && p.RemotePostID != "" {
			return true
		}
	}
	return false
}
