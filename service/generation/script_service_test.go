package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tables "github.com/viralos-core/v2/dal/tables/v1"
	manifest "github.com/viralos-core/v2/manifest"
)

func samplePrompt() manifest.Prompt {
	return manifest.Prompt{
		PromptCategoryKey:  "ProductShortVideo",
		PromptText:         "Write a short-form vertical video script selling the product described below.",
		SystemPromptText:   "Respond with JSON only.",
		DistributionFormat: "ShortVideo",
		Niche:              "ecommerce",
	}
}

func sampleCampaign() tables.Campaign {
	return tables.Campaign{
		CampaignID:                 "campaign-1",
		TriggerEventPayload:        "https://acme.example.com",
		TriggerEventTargetLanguage: "EN",
	}
}

func TestBuildScriptMediaEvent(t *testing.T) {
	brand := tables.Brand{
		BrandID:          "acme.example.com",
		BrandName:        "Acme Outdoors",
		ValueProposition: "Gear that survives the trail",
	}
	product := tables.Product{
		Name:        "Trail Bottle",
		PriceCents:  2450,
		Currency:    "USD",
		ReviewCount: 212,
		RatingAvg:   4.6,
	}

	event, err := BuildScriptMediaEvent(samplePrompt(), sampleCampaign(), brand, []tables.Product{product})
	assert.NoError(t, err)
	assert.Equal(t, tables.MEDIA_TEXT, event.MediaType)
	assert.Equal(t, tables.DIST_FORMAT_SHORT_VIDEO, event.DistributionFormat)
	assert.Equal(t, "EN", event.Language)
	assert.Contains(t, event.PromptInstruction, "https://acme.example.com")
	assert.Contains(t, event.PromptInstruction, "Acme Outdoors")
	assert.Contains(t, event.PromptInstruction, "Trail Bottle")
	assert.Contains(t, event.PromptInstruction, "rated 4.6/5 across 212 reviews")
	assert.Contains(t, event.PromptInstruction, "onScreenText")
	assert.Equal(t, tables.HashString(event.PromptInstruction), event.PromptHash)
	assert.Equal(t, event.GetEventID(), event.EventID)
	assert.NotEmpty(t, event.ContentLookupKey)
}

func TestBuildScriptMediaEventTriggerFormatWins(t *testing.T) {
	campaign := sampleCampaign()
	campaign.TriggerEventDistFormat = "TestimonialVideo"

	event, err := BuildScriptMediaEvent(samplePrompt(), campaign, tables.Brand{}, nil)
	assert.NoError(t, err)
	assert.Equal(t, tables.DIST_FORMAT_UGC, event.DistributionFormat)
	assert.Contains(t, event.PromptInstruction, "spokenScript")
}

func TestDescribeProductInsightsPositioning(t *testing.T) {
	premium := tables.Product{Name: "Leather Duffel", PriceCents: 29900, Currency: "USD"}
	budget := tables.Product{Name: "Sticker Pack", PriceCents: 499, Currency: "USD"}

	assert.Contains(t, DescribeProductInsights(premium), "premium")
	assert.Contains(t, DescribeProductInsights(budget), "value and impulse appeal")
}

func TestParseShortVideoScript(t *testing.T) {
	payload := `{"videoTitle":"t","hook":"h","scenes":[{"onScreenText":"a","voiceoverText":"b","durationSec":3}],"callToAction":"c"}`
	script, err := ParseShortVideoScript(payload)
	assert.NoError(t, err)
	assert.Len(t, script.Scenes, 1)

	_, err = ParseShortVideoScript(`{"videoTitle":"t","scenes":[]}`)
	assert.Error(t, err)

	_, err = ParseShortVideoScript("not json")
	assert.Error(t, err)
}

func TestScoreHookRewardsEmotionAndBrevity(t *testing.T) {
	emotional := ScoreHook("The hidden truth about water bottles")
	plain := ScoreHook("Some information about water bottles here")
	assert.Greater(t, emotional, plain)

	short := ScoreHook("Big mistake?")
	long := ScoreHook("Here is a very long meandering hook that goes on and on without ever getting to any point at all mistake")
	assert.Greater(t, short, long)

	assert.LessOrEqual(t, ScoreHook("secret shocking amazing incredible mistake"), 10.0)
}

func TestEstimateEngagementNormalized(t *testing.T) {
	script := manifest.ShortVideoSchema{Hook: "The secret is out", VideoTitle: "Title"}
	engagement := EstimateEngagement(script)
	assert.Greater(t, engagement, 0.0)
	assert.LessOrEqual(t, engagement, 1.0)
}

func TestSpawnSceneMediaEvents(t *testing.T) {
	root := tables.MediaEvent{
		CampaignID: "campaign-1",
		MediaType:  tables.MEDIA_TEXT,
		Language:   "EN",
		Niche:      "ecommerce",
	}
	root.PromptHash = tables.HashString("root")
	root.EventID = root.GetEventID()

	script := manifest.ShortVideoSchema{
		Scenes: []manifest.SceneSchema{
			{OnScreenText: "Meet the bottle", VoiceoverText: "This bottle keeps drinks cold", BRollHint: "bottle on a mountain trail"},
			{OnScreenText: "24 hours cold", VoiceoverText: ""},
		},
	}

	children := SpawnSceneMediaEvents(root, script)
	assert.Len(t, children, 3)
	assert.Equal(t, tables.MEDIA_BROLL, children[0].MediaType)
	assert.Equal(t, "bottle on a mountain trail", children[0].PromptInstruction)
	assert.Equal(t, tables.MEDIA_VOICE, children[1].MediaType)
	assert.Equal(t, 0, children[1].RenderSequence)
	assert.Equal(t, tables.MEDIA_BROLL, children[2].MediaType)
	assert.Equal(t, "24 hours cold", children[2].PromptInstruction)
	assert.Equal(t, 1, children[2].RenderSequence)
	for _, c := range children {
		assert.Equal(t, root.EventID, c.ParentEventID)
		assert.Equal(t, "campaign-1", c.CampaignID)
		assert.NotEmpty(t, c.ContentLookupKey)
	}
}
