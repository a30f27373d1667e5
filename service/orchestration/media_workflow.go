package orchestration

import (
	"context"
	"log"

	tables "github.com/viralos-core/v2/dal/tables/v1"
	generation "github.com/viralos-core/v2/service/generation"
)

// Drives media generation for a campaign: root scripts first, then the
// scene children the script spawns. Each pass generates whatever is
// pending; the S3 upload notification re-triggers the next pass.
type MediaWorkflow struct{}

func (s *MediaWorkflow) GetWorkflowName() string {
	return "MediaWorkflow"
}

func (s *MediaWorkflow) Run(campaign tables.Campaign, processId string) error {
	mediaEvents, err := campaign.GetExistingMediaEvents()
	if err != nil {
		log.Printf("correlationID: %s error deserializing existing media events from campaign: %s", campaign.CampaignID, err)
		return err
	}

	ctx := context.Background()
	for _, m := range mediaEvents {
		if !IsParentMediaEvent(m) || m.MediaType != tables.MEDIA_TEXT {
			continue
		}
		err = s.handleRootScript(ctx, campaign, m, mediaEvents)
		if err != nil {
			log.Printf("correlationID: %s media generation failed for root %s: %s", campaign.CampaignID, m.EventID, err)
			return err
		}
	}
	return nil
}

func (s *MediaWorkflow) handleRootScript(ctx context.Context, campaign tables.Campaign,
	root tables.MediaEvent, mediaEvents []tables.MediaEvent) error {
	scriptReady, err := generation.MediaExists(root.ContentLookupKey)
	if err != nil {
		return err
	}
	if !scriptReady {
		providerName, err := generation.GenerateMedia(ctx, root)
		if err != nil {
			return err
		}
		log.Printf("correlationID: %s script generated by %s for %s", campaign.CampaignID, providerName, root.EventID)
		scriptReady = true
	}

	children := CollectRenderableChildrenEvents(root.EventID, mediaEvents)
	if len(children) == 0 {
		return s.spawnChildren(campaign, root)
	}

	for _, child := range children {
		exists, err := generation.MediaExists(child.ContentLookupKey)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		providerName, err := generation.GenerateMedia(ctx, child)
		if err != nil {
			return err
		}
		log.Printf("correlationID: %s media generated by %s for %s", campaign.CampaignID, providerName, child.EventID)
	}
	return nil
}

func (s *MediaWorkflow) spawnChildren(campaign tables.Campaign, root tables.MediaEvent) error {
	payload, err := generation.LoadMedia(root.ContentLookupKey)
	if err != nil {
		return err
	}

	var childEvents []tables.MediaEvent
	if root.DistributionFormat == tables.DIST_FORMAT_UGC {
		script, err := generation.ParseTestimonialScript(string(payload))
		if err != nil {
			return err
		}
		child, err := generation.SpawnTestimonialMediaEvent(root, script)
		if err != nil {
			return err
		}
		childEvents = []tables.MediaEvent{child}
	} else {
		script, err := generation.ParseShortVideoScript(string(payload))
		if err != nil {
			return err
		}
		childEvents = generation.SpawnSceneMediaEvents(root, script)
	}

	if len(childEvents) == 0 {
		log.Printf("correlationID: %s WARN script for %s produced no child events", campaign.CampaignID, root.EventID)
		return nil
	}
	return HandleMediaGeneration(campaign, childEvents)
}
