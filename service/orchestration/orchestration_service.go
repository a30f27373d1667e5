package orchestration

import (
	"log"

	"github.com/google/uuid"

	dal "github.com/viralos-core/v2/dal"
	tables "github.com/viralos-core/v2/dal/tables/v1"
)

type Workflow interface {
	GetWorkflowName() string
	Run(campaign tables.Campaign, processId string) error
}

// Workflows run in order. Each is idempotent against the campaign ledger;
// a workflow whose preconditions are unmet is a no-op until a later
// ledger update re-triggers the chain.
var workflowsToRun = []Workflow{
	&ScrapeWorkflow{},
	&ScriptWorkflow{},
	&MediaWorkflow{},
	&AssignmentWorkflow{},
	&FinalRenderWorkflow{},
	&PublishWorkFlow{},
	&AnalyticsWorkflow{},
	&CompletionWorkflow{},
}

func RunWorkflows(campaign tables.Campaign) error {
	if isCompleteWorkflow(campaign) {
		return nil
	}
	processId := uuid.New().String()
	for _, w := range workflowsToRun {
		log.Printf("correlationID: %s running %s", campaign.CampaignID, w.GetWorkflowName())
		err := w.Run(campaign, processId)
		if err != nil {
			log.Printf("correlationID: %s workflow %s failed: %s", campaign.CampaignID, w.GetWorkflowName(), err)
		}
	}
	scheduleHeartbeat(campaign)
	return nil
}

// Unfinished campaigns get a future heartbeat so expired soft locks are
// reaped even when no ledger append wakes the chain.
func scheduleHeartbeat(campaign tables.Campaign) {
	err := dal.CreateFutureHeartbeat(campaign.CampaignID, campaign.HeartbeatCount)
	if err != nil {
		log.Printf("correlationID: %s error scheduling future heartbeat: %s", campaign.CampaignID, err)
	}
}

func isCompleteWorkflow(campaign tables.Campaign) bool {
	if campaign.CampaignStatus == tables.FINISHED_CAMPAIGN {
		log.Printf("correlationID: %s campaign finished.", campaign.CampaignID)
		return true
	}
	return false
}
