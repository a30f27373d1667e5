package publisherdrivers

import (
	"strings"
	"testing"

	"github.com/michimani/gotwi/resources"
	"github.com/stretchr/testify/assert"
	tables "github.com/viralos-core/v2/dal/tables/v1"
)

const shortVideoPayload = `{
	"videoTitle": "5 Desk Setups That Fix Your Posture",
	"hook": "Your chair is lying to you.",
	"videoDescription": "The ergonomic desk picks our editors actually use.",
	"hashtags": ["deskSetup", "#ergonomics"]
}`

const testimonialPayload = `{
	"persona": "remote worker, 34",
	"painPoint": "back pain after long shifts",
	"spokenScript": "I could not sit through a meeting without wincing.",
	"videoDescription": "Honest review after three months on the ErgoLift desk.",
	"hashtags": ["standingdesk"]
}`

func TestShortVideoPostContents(t *testing.T) {
	contents, err := shortVideoPostContents(shortVideoPayload)
	assert.Nil(t, err)
	assert.Equal(t, "5 Desk Setups That Fix Your Posture", contents.Title)
	assert.Equal(t, "The ergonomic desk picks our editors actually use.", contents.Description)
	assert.Equal(t, []string{"deskSetup", "#ergonomics"}, contents.Hashtags)
}

func TestShortVideoPostContentsMissingTitle(t *testing.T) {
	_, err := shortVideoPostContents(`{"videoDescription": "no title here"}`)
	assert.NotNil(t, err)
}

func TestTestimonialPostContents(t *testing.T) {
	contents, err := testimonialPostContents(testimonialPayload)
	assert.Nil(t, err)
	assert.Equal(t, "Honest review after three months on the ErgoLift desk.", contents.Title)
	assert.Equal(t, contents.Title, contents.Description)
	assert.Equal(t, []string{"standingdesk"}, contents.Hashtags)
}

func TestTestimonialPostContentsMissingDescription(t *testing.T) {
	_, err := testimonialPostContents(`{"spokenScript": "words only"}`)
	assert.NotNil(t, err)
}

func TestCaptionJoinsHashtags(t *testing.T) {
	contents := PostContents{
		Description: "Editors picks.",
		Hashtags:    []string{"deskSetup", "#ergonomics"},
	}
	assert.Equal(t, "Editors picks. #deskSetup #ergonomics", contents.Caption(100))
}

func TestCaptionTrimsToRuneLimit(t *testing.T) {
	contents := PostContents{Description: strings.Repeat("é", 300)}
	caption := contents.Caption(280)
	assert.Equal(t, 280, len([]rune(caption)))
}

func TestGetDriverDispatch(t *testing.T) {
	driver, err := GetDriver(string(tables.Channel_TikTok))
	assert.Nil(t, err)
	assert.IsType(t, TikTokDriver{}, driver)

	driver, err = GetDriver(string(tables.Channel_Instagram))
	assert.Nil(t, err)
	assert.IsType(t, InstagramDriver{}, driver)

	driver, err = GetDriver(string(tables.Channel_YouTube))
	assert.Nil(t, err)
	assert.IsType(t, YouTubeDriver{}, driver)

	driver, err = GetDriver(string(tables.Channel_X))
	assert.Nil(t, err)
	assert.IsType(t, XDriver{}, driver)

	_, err = GetDriver("Myspace")
	assert.NotNil(t, err)
}

func TestChunkMathSmallVideo(t *testing.T) {
	assert.Equal(t, int64(512), chunkSizeFor(512))
	assert.Equal(t, int64(1), totalChunksFor(512))
}

func TestChunkMathLargeVideo(t *testing.T) {
	videoSize := int64(tiktokChunkSizeBytes*2 + 1)
	assert.Equal(t, int64(tiktokChunkSizeBytes), chunkSizeFor(videoSize))
	assert.Equal(t, int64(3), totalChunksFor(videoSize))
}

func TestXPostMetricsQuotesCountAsShares(t *testing.T) {
	intPtr := func(v int) *int { return &v }
	metrics := xPostMetrics(&resources.TweetPublicMetrics{
		RetweetCount: intPtr(7),
		ReplyCount:   intPtr(3),
		LikeCount:    intPtr(40),
		QuoteCount:   intPtr(2),
	})
	assert.Equal(t, int64(40), metrics.Likes)
	assert.Equal(t, int64(3), metrics.Comments)
	assert.Equal(t, int64(9), metrics.Shares)
	// Impressions are not in the public-metrics tier.
	assert.Equal(t, int64(0), metrics.Views)
}

func TestXPostMetricsNilCounts(t *testing.T) {
	metrics := xPostMetrics(&resources.TweetPublicMetrics{})
	assert.Equal(t, PostMetrics{}, metrics)
}
