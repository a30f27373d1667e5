package orchestration

import (
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"encoding/json"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	dynamo_configuration "github.com/viralos-core/v2/configuration/dynamo"
	dal "github.com/viralos-core/v2/dal"
	tables "github.com/viralos-core/v2/dal/tables/v1"
	manifest "github.com/viralos-core/v2/manifest"
)

var once sync.Once

var PubProfile_EN_TikTok_1 = tables.AccountPublisher{
	AccountID:                 "TestUser1",
	PublisherProfileID:        "TikTokProfileId1",
	ChannelName:               tables.Channel_TikTok,
	LastPublishAtEpochMilli:   0,
	AccountSubscriptionStatus: tables.EVERGREEN_ADMIN,
	PublisherNiche:            "HomeOffice",
	PublisherLanguage:         "EN",
}

var PubProfile_EN_TikTok_2 = tables.AccountPublisher{
	AccountID:                 "TestUser2",
	PublisherProfileID:        "TikTokProfileId2",
	ChannelName:               tables.Channel_TikTok,
	LastPublishAtEpochMilli:   0,
	AccountSubscriptionStatus: tables.EVERGREEN_ADMIN,
	PublisherNiche:            "HomeOffice",
	PublisherLanguage:         "EN",
}

var Test_Campaign_Prompt = tables.Campaign{
	CampaignID:                 "TestCampaignId",
	CampaignStatus:             tables.NEW_CAMPAIGN,
	TriggerEventSource:         "v1/source/prompt",
	TriggerEventPayload:        "Pitch the ErgoLift standing desk to remote workers with back pain.",
	TriggerEventTargetLanguage: "EN",
}

func setupTest() {
	once.Do(func() {
		os.Chdir("../..") // For manifest file loads.
		PollForLedgerUpdates()
		dynamo_configuration.Init()
		manifest.GetManifestLoader()
	})
	dal.CreatePublisherAccount(PubProfile_EN_TikTok_1)
	dal.CreatePublisherAccount(PubProfile_EN_TikTok_2)
	Test_Campaign_Prompt.CampaignID = uuid.New().String() + "-INTEG-TEST"
	Test_Campaign_Prompt.CampaignCreatedAtEpochMilli = time.Now().UnixMilli()
	dal.CreateCampaign(Test_Campaign_Prompt)
}

func cleanupTestData() {
	dal.DeletePublisherAccount(PubProfile_EN_TikTok_1.AccountID,
		PubProfile_EN_TikTok_1.PublisherProfileID)
	dal.DeletePublisherAccount(PubProfile_EN_TikTok_2.AccountID,
		PubProfile_EN_TikTok_2.PublisherProfileID)
	time.Sleep(time.Duration(40) * time.Second)
	Purge()
}

func TestWorkflows(t *testing.T) {
	setupTest()
	campaignItem, _ := dal.GetCampaign(Test_Campaign_Prompt.CampaignID)
	publisherAcc, _ := dal.GetPublisherAccount(PubProfile_EN_TikTok_1.AccountID, PubProfile_EN_TikTok_1.PublisherProfileID)
	// 1. Create new trigger event; verify created.
	assert.Equal(t, campaignItem.CampaignStatus, tables.NEW_CAMPAIGN, "should be status new")
	assert.Empty(t, publisherAcc.AssignmentLockID, "no assignment lock should be present")

	// 2. Wait for script and scene media events to be created.
	time.Sleep(time.Duration(100) * time.Second)
	campaignItem, _ = dal.GetCampaign(Test_Campaign_Prompt.CampaignID)
	assert.NotEmpty(t, campaignItem.MediaEvents, "media events should not be empty")
	b, _ := json.MarshalIndent(campaignItem, "", "  ")
	log.Print("\n MediaEventsDebug: " + string(b) + "\n")

	// 3. Assert publisher profile assignment
	time.Sleep(time.Duration(100) * time.Second)
	campaignItem, _ = dal.GetCampaign(Test_Campaign_Prompt.CampaignID)
	publisherAcc, _ = dal.GetPublisherAccount(PubProfile_EN_TikTok_1.AccountID, PubProfile_EN_TikTok_1.PublisherProfileID)
	assert.NotEmpty(t, campaignItem.PublishEvents, "publish events should not be empty")
	assert.NotEmpty(t, publisherAcc.AssignmentLockID, "publisher account should have assignment lock")
	assert.NotEmpty(t, publisherAcc.AssignmentLockTTL, "publisher account should lock ttl")

	// 4. Verify final render media event created
	time.Sleep(time.Duration(15) * time.Second)
	campaignItem, _ = dal.GetCampaign(Test_Campaign_Prompt.CampaignID)
	assert.True(t, hasFinalMediaRender(campaignItem), "expected FinalRender media event")
	assert.True(t, hasRenderPublishEvent(campaignItem), "expected RENDERING publish event")

	// 4. Verify PUBLISHING media event created
	time.Sleep(time.Duration(15) * time.Second)
	campaignItem, _ = dal.GetCampaign(Test_Campaign_Prompt.CampaignID)
	publisherAcc, _ = dal.GetPublisherAccount(PubProfile_EN_TikTok_1.AccountID, PubProfile_EN_TikTok_1.PublisherProfileID)
	assert.True(t, hasPublishingPublishEvent(campaignItem), "expected PUBLISHING publish event")
	assert.NotEmpty(t, publisherAcc.PublishLockID, "expected PublisherLockID to be set")
	assert.NotEmpty(t, publisherAcc.PublishLockTTL, "expected PublishLockTTL to be set")

	// 5. Confirm campaign is marked complete
	time.Sleep(time.Duration(15) * time.Second)
	campaignItem, _ = dal.GetCampaign(Test_Campaign_Prompt.CampaignID)
	publisherAcc, _ = dal.GetPublisherAccount(PubProfile_EN_TikTok_1.AccountID, PubProfile_EN_TikTok_1.PublisherProfileID)
	assert.True(t, hasCompletionEvent(campaignItem), "expected COMPLETE publish event")
	assert.Empty(t, publisherAcc.PublishLockID, "expected PublisherLockID to be released")
	assert.Empty(t, publisherAcc.PublishLockTTL, "expected PublishLockTTL to be released")
	assert.Empty(t, publisherAcc.AssignmentLockID, "expected AssignmentLockID to be released")
	assert.Empty(t, publisherAcc.AssignmentLockTTL, "expected AssignmentLockTTL to be released")
	assert.Equal(t, tables.FINISHED_CAMPAIGN, campaignItem.CampaignStatus, "expected FINISHED_CAMPAIGN status")
	b, _ = json.MarshalIndent(campaignItem, "", "  ")
	log.Print("\n CampaignDebugDeprint: " + string(b) + "\n")
	pubEvents, _ := campaignItem.GetExistingPublishEvents()
	for _, p := range pubEvents {
		b, _ = json.MarshalIndent(p, "", "  ")
		log.Print("\n CampaignDebugDeprint-PUBEVENT: " + string(b) + "\n")
	}
	cleanupTestData()
}

func hasFinalMediaRender(campaignItem tables.Campaign) bool {
	mediaEvents, _ := campaignItem.GetExistingMediaEvents()
	for _, m := range mediaEvents {
		if m.IsFinalRender {
			return true
		}
	}
	return false
}

func hasRenderPublishEvent(campaignItem tables.Campaign) bool {
	publishEvents, _ := campaignItem.GetExistingPublishEvents()
	for _, p := range publishEvents {
		if p.PublishStatus == tables.RENDERING {
			return true
		}
	}
	return false
}

func hasPublishingPublishEvent(campaignItem tables.Campaign) bool {
	publishEvents, _ := campaignItem.GetExistingPublishEvents()
	for _, p := range publishEvents {
		if p.PublishStatus == tables.PUBLISHING {
			return true
		}
	}
	return false
}

func hasCompletionEvent(campaignItem tables.Campaign) bool {
	publishEvents, _ := campaignItem.GetExistingPublishEvents()
	for _, p := range publishEvents {
		if p.PublishStatus == tables.COMPLETE {
			return true
		}
	}
	return false
}
