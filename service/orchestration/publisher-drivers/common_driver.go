package publisherdrivers

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	tables "github.com/viralos-core/v2/dal/tables/v1"
	manifest "github.com/viralos-core/v2/manifest"
)

const BAD_REQUEST_PROFILE_CODE = "BadRequestProfileCode"

type PublishCommand struct {
	RootPublishEvent     tables.PublishEvent
	FinalRenderMediaRoot tables.MediaEvent // the rendered video sitting in the media bucket.
	ScriptMedia          tables.MediaEvent // root Text event; source of titles and captions.
}

type PostMetrics struct {
	Views    int64
	Likes    int64
	Comments int64
	Shares   int64
}

type PublisherDriver interface {
	// Publish uploads the final render and returns the platform-side post id.
	Publish(PublishCommand) (string, error)
	FetchPostMetrics(publishEvent tables.PublishEvent) (PostMetrics, error)
}

// PostContents is the channel-agnostic caption material extracted from the
// script payload. Drivers trim to their channel's limits.
type PostContents struct {
	Title       string
	Description string
	Hashtags    []string
}

func LoadPostContents(pubCommand PublishCommand) (PostContents, error) {
	payload, err := LoadAsString(pubCommand.ScriptMedia.ContentLookupKey)
	if err != nil {
		log.Printf("correlationID: %s error loading script content as string: %s",
			pubCommand.RootPublishEvent.CampaignID, err)
		return PostContents{}, err
	}
	if pubCommand.ScriptMedia.DistributionFormat == tables.DIST_FORMAT_UGC {
		return testimonialPostContents(payload)
	}
	return shortVideoPostContents(payload)
}

func shortVideoPostContents(payload string) (PostContents, error) {
	script := manifest.ShortVideoSchema{}
	err := json.Unmarshal([]byte(payload), &script)
	if err != nil {
		log.Printf("error unmarshalling script text to short video schema: %s", err)
		log.Printf("error payload: <%s>", payload)
		return PostContents{}, err
	}
	if len(script.VideoTitle) == 0 {
		return PostContents{}, fmt.Errorf("short video script missing title: %s", payload)
	}
	return PostContents{
		Title:       script.VideoTitle,
		Description: script.VideoDescription,
		Hashtags:    script.Hashtags,
	}, nil
}

func testimonialPostContents(payload string) (PostContents, error) {
	script := manifest.TestimonialSchema{}
	err := json.Unmarshal([]byte(payload), &script)
	if err != nil {
		log.Printf("error unmarshalling script text to testimonial schema: %s", err)
		log.Printf("error payload: <%s>", payload)
		return PostContents{}, err
	}
	if len(script.VideoDescription) == 0 {
		return PostContents{}, fmt.Errorf("testimonial script missing description: %s", payload)
	}
	return PostContents{
		Title:       script.VideoDescription,
		Description: script.VideoDescription,
		Hashtags:    script.Hashtags,
	}, nil
}

// Caption joins the description and hashtags, trimmed to maxLen runes.
func (c PostContents) Caption(maxLen int) string {
	var sb strings.Builder
	sb.WriteString(c.Description)
	for _, h := range c.Hashtags {
		tag := " #" + strings.TrimPrefix(h, "#")
		sb.WriteString(tag)
	}
	caption := sb.String()
	runes := []rune(caption)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return caption
}
