package drivers

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	tables "github.com/viralos-core/v2/dal/tables/v1"
)

func payloadReader(body string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(body))
}

func TestStorefrontDriverBuildsCampaign(t *testing.T) {
	body := `{"source":"v1/source/storefront","targetLanguage":"EN","storefrontUrl":"https://acme.example.com","distributionFormat":"ShortVideo"}`
	driver := NewStorefrontDriver(payloadReader(body), "v1/source/storefront")

	campaign, err := driver.GetRawEventPayload()
	assert.NoError(t, err)
	assert.NotEmpty(t, campaign.CampaignID)
	assert.Equal(t, tables.NEW_CAMPAIGN, campaign.CampaignStatus)
	assert.Equal(t, "https://acme.example.com", campaign.TriggerEventPayload)
	assert.Equal(t, "v1/source/storefront", campaign.TriggerEventSource)
	assert.Equal(t, "EN", campaign.TriggerEventTargetLanguage)
	assert.Equal(t, "ShortVideo", campaign.TriggerEventDistFormat)
	assert.Equal(t, tables.HashString("https://acme.example.com"), campaign.TriggerEventContentHash)
}

func TestStorefrontDriverRejectsRelativeUrl(t *testing.T) {
	body := `{"source":"v1/source/storefront","storefrontUrl":"acme.example.com"}`
	driver := NewStorefrontDriver(payloadReader(body), "v1/source/storefront")

	_, err := driver.GetRawEventPayload()
	assert.Error(t, err)
}

func TestStorefrontDriverRejectsUnknownFormat(t *testing.T) {
	body := `{"source":"v1/source/storefront","storefrontUrl":"https://acme.example.com","distributionFormat":"Billboard"}`
	driver := NewStorefrontDriver(payloadReader(body), "v1/source/storefront")

	_, err := driver.GetRawEventPayload()
	assert.Error(t, err)
}

func TestReviewDumpDriverDefaultsToTestimonial(t *testing.T) {
	body := `{"source":"v1/source/reviews","storefrontUrl":"https://acme.example.com","reviewsText":"Love this bottle, keeps drinks cold all day."}`
	driver := NewReviewDumpDriver(payloadReader(body), "v1/source/reviews")

	campaign, err := driver.GetRawEventPayload()
	assert.NoError(t, err)
	assert.Equal(t, string(tables.DIST_FORMAT_UGC), campaign.TriggerEventDistFormat)
	assert.Contains(t, campaign.TriggerEventPayload, "Love this bottle")
	assert.Contains(t, campaign.TriggerEventPayload, "https://acme.example.com")
}

func TestReviewDumpDriverRejectsEmptyReviews(t *testing.T) {
	body := `{"source":"v1/source/reviews","storefrontUrl":"https://acme.example.com","reviewsText":""}`
	driver := NewReviewDumpDriver(payloadReader(body), "v1/source/reviews")

	_, err := driver.GetRawEventPayload()
	assert.Error(t, err)
}

func TestCustomPromptDriverDefaultsLanguage(t *testing.T) {
	body := `{"source":"v1/source/prompt","promptText":"A short ad about a cast iron skillet."}`
	driver := NewCustomPromptDriver(payloadReader(body), "v1/source/prompt")

	campaign, err := driver.GetRawEventPayload()
	assert.NoError(t, err)
	assert.Equal(t, "EN", campaign.TriggerEventTargetLanguage)
	assert.Equal(t, "A short ad about a cast iron skillet.", campaign.TriggerEventPayload)
}
