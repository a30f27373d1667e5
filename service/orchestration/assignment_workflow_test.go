package orchestration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	env "github.com/viralos-core/v2/configuration"
	tables "github.com/viralos-core/v2/dal/tables/v1"
)

func scriptRootMediaEvent() tables.MediaEvent {
	m := tables.MediaEvent{
		CampaignID:         "campaign-assignment-test",
		MediaType:          tables.MEDIA_TEXT,
		DistributionFormat: tables.DIST_FORMAT_SHORT_VIDEO,
		Niche:              "HomeOffice",
		Language:           "EN",
		PromptHash:         "abc123",
	}
	m.EventID = m.GetEventID()
	return m
}

func publishEventFor(root tables.MediaEvent, channel tables.ChannelName, status tables.PublishStatus) tables.PublishEvent {
	return tables.PublishEvent{
		CampaignID:          root.CampaignID,
		RootMediaEventID:    root.GetEventID(),
		DistributionChannel: channel,
		PublishStatus:       status,
		PublisherProfileID:  "ProfileId1",
		OwnerAccountID:      "TestUser1",
	}
}

func TestIsAssignableUnassignedRoot(t *testing.T) {
	s := AssignmentWorkflow{}
	root := scriptRootMediaEvent()
	stateMap := PubStateByRootMedia([]tables.PublishEvent{})
	assert.True(t, s.isAssignable(root, string(tables.Channel_TikTok), stateMap))
}

func TestIsAssignableCompletedChannel(t *testing.T) {
	s := AssignmentWorkflow{}
	root := scriptRootMediaEvent()
	stateMap := PubStateByRootMedia([]tables.PublishEvent{
		publishEventFor(root, tables.Channel_TikTok, tables.ASSIGNED),
		publishEventFor(root, tables.Channel_TikTok, tables.COMPLETE),
	})
	assert.False(t, s.isAssignable(root, string(tables.Channel_TikTok), stateMap))
	// Other channels are untouched by TikTok's completion.
	assert.True(t, s.isAssignable(root, string(tables.Channel_YouTube), stateMap))
}

func TestIsAssignableExpiredAssignmentRetries(t *testing.T) {
	s := AssignmentWorkflow{}
	root := scriptRootMediaEvent()
	stateMap := PubStateByRootMedia([]tables.PublishEvent{
		publishEventFor(root, tables.Channel_TikTok, tables.ASSIGNED),
		publishEventFor(root, tables.Channel_TikTok, tables.EXPIRED),
	})
	assert.True(t, s.isAssignable(root, string(tables.Channel_TikTok), stateMap))
}

func TestIsAssignableInFlightAssignment(t *testing.T) {
	s := AssignmentWorkflow{}
	root := scriptRootMediaEvent()
	stateMap := PubStateByRootMedia([]tables.PublishEvent{
		publishEventFor(root, tables.Channel_TikTok, tables.ASSIGNED),
	})
	assert.False(t, s.isAssignable(root, string(tables.Channel_TikTok), stateMap))
}

func TestBuildPublishEvent(t *testing.T) {
	setupTest()
	s := AssignmentWorkflow{}
	root := scriptRootMediaEvent()
	acc := tables.AccountPublisher{
		AccountID:          "TestUser1",
		PublisherProfileID: "TikTokProfileId1",
		ChannelName:        tables.Channel_TikTok,
	}
	before := time.Now().UnixMilli()
	event := s.buildPublishEvent("campaign-assignment-test", acc, root, string(tables.Channel_TikTok), "process-1")

	assert.Equal(t, "campaign-assignment-test", event.CampaignID)
	assert.Equal(t, tables.Channel_TikTok, event.DistributionChannel)
	assert.Equal(t, tables.ASSIGNED, event.PublishStatus)
	assert.Equal(t, "TikTokProfileId1", event.PublisherProfileID)
	assert.Equal(t, "TestUser1", event.OwnerAccountID)
	assert.Equal(t, "process-1", event.ProcessOwner)
	assert.Equal(t, root.GetEventID(), event.RootMediaEventID)
	assert.GreaterOrEqual(t, event.ExpiresAtTTL, before+env.GetEnvConfigs().AssignmentLockMilliTTL)
}
