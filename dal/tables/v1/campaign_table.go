package v1

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
)

type CampaignStatus string

const (
	NEW_CAMPAIGN      CampaignStatus = "NEW"
	FINISHED_CAMPAIGN CampaignStatus = "FINISHED" // Terminal
)

type Campaign struct {
	// Required
	CampaignID                  string         // Also system correlation ID.
	CampaignStatus              CampaignStatus // Directional status towards terminus.
	CampaignCreatedAtEpochMilli int64          // CreatedAt for replayability

	// Optional
	TriggerEventSource         string // v1/source/storefront, v1/source/reviews, v1/source/prompt
	TriggerEventPayload        string // storefront URL, review dump text, custom prompt, ...
	TriggerEventTargetLanguage string // EN, CN, ...
	TriggerEventContentHash    string // for deduping trigger events.
	TriggerEventDistFormat     string // requested distribution format; empty means ShortVideo.
	BrandID                    string // Set once the scrape workflow has persisted the brand.
	ScrapeEvents               string // Page fetches, fingerprints, extracted products.
	MediaEvents                string // Script text, avatar clips, voiceovers, final renders.
	PublishEvents              string // Publish to distribution channel: TikTok, Instagram, ...
	ScrapeEventsVersion        int64
	MediaEventsVersion         int64
	PublishEventsVersion       int64
	HeartbeatCount             int64 // bumped by the heartbeat monitor to re-fire stalled workflows.
}

func (c *Campaign) GetExistingScrapeEvents() ([]ScrapeEvent, error) {
	var events []ScrapeEvent
	if c.ScrapeEvents == "" {
		return events, nil
	}
	err := json.Unmarshal([]byte(c.ScrapeEvents), &events)
	if err != nil {
		log.Printf("error unmarshalling scrapeEvents: %s", err)
	}
	return events, err
}

func (c *Campaign) GetExistingMediaEvents() ([]MediaEvent, error) {
	var events []MediaEvent
	if c.MediaEvents == "" {
		return events, nil
	}
	err := json.Unmarshal([]byte(c.MediaEvents), &events)
	if err != nil {
		log.Printf("error unmarshalling mediaEvents: %s", err)
	}
	return events, err
}

func (c *Campaign) GetExistingPublishEvents() ([]PublishEvent, error) {
	var events []PublishEvent
	if c.PublishEvents == "" {
		return events, nil
	}
	err := json.Unmarshal([]byte(c.PublishEvents), &events)
	if err != nil {
		log.Printf("error unmarshalling publishEvents: %s", err)
	}
	return events, err
}

type Event interface {
	GetEventID() string
}

type ScrapeStatus string

const (
	SCRAPE_FETCHED   ScrapeStatus = "FETCHED"
	SCRAPE_PARSED    ScrapeStatus = "PARSED"
	SCRAPE_FAILED    ScrapeStatus = "FAILED"
	SCRAPE_DUPLICATE ScrapeStatus = "DUPLICATE"
)

// ScrapeEvent records one page fetched and parsed for this campaign.
type ScrapeEvent struct {
	PageURL      string
	Platform     string  // shopify, woocommerce, ... as fingerprinted.
	Confidence   float64 // fingerprint confidence 0..1
	PageKind     string  // product, listing, home
	ScrapeStatus ScrapeStatus
	BrandID      string
	ProductID    string // set when the page yielded a product.
	ContentHash  string // raw HTML hash for dedupe.
	EventID      string
}

func (s *ScrapeEvent) GetEventID() string {
	return fmt.Sprintf("%s.%s", HashString(s.PageURL), s.ScrapeStatus)
}

// MediaType determines which downstream generator handles this MediaEvent.
type MediaType string

const (
	MEDIA_TEXT   MediaType = "Text"   // script payloads from the LLM providers.
	MEDIA_AVATAR MediaType = "Avatar" // avatar clips from HeyGen/D-ID/Synthesia.
	MEDIA_BROLL  MediaType = "BRoll"  // product footage from RunwayML.
	MEDIA_VOICE  MediaType = "Voice"  // voiceover from ElevenLabs.
	MEDIA_RENDER MediaType = "Render" // final FFmpeg render.
)

// DistributionFormat is only set for the Parent/Root MediaEvent.
// Used to select the applicable downstream PublisherProfile that supports the format.
// E.g. you cannot publish a testimonial Reel to X, but you can to Instagram.
type DistributionFormat string

const (
	DIST_FORMAT_SHORT_VIDEO DistributionFormat = "ShortVideo"
	DIST_FORMAT_UGC         DistributionFormat = "TestimonialVideo"
)

func GetDistributionFormatFromString(format string) (DistributionFormat, error) {
	switch {
	case strings.EqualFold(format, string(DIST_FORMAT_SHORT_VIDEO)):
		return DIST_FORMAT_SHORT_VIDEO, nil
	case strings.EqualFold(format, string(DIST_FORMAT_UGC)):
		return DIST_FORMAT_UGC, nil
	}
	return DIST_FORMAT_SHORT_VIDEO, errors.New("unable to find matching distribution format from string")
}

type MediaEvent struct {
	CampaignID              string
	PromptInstruction       string             // Instructions for the generation providers.
	SystemPromptInstruction string             // Roles, personalities, or response guidelines for the LLM.
	MediaType               MediaType          // Text, Avatar, BRoll, Voice, Render.
	DistributionFormat      DistributionFormat // ShortVideo, TestimonialVideo; root events only.
	ContentLookupKey        string             // GUID into s3: e.g. <MediaType>.<SomeGuid>
	Niche                   string
	Language                string
	PromptHash              string // Hash of the prompt instruction.
	EventID                 string // Although derivable via GetEventID, set for convenience on downstream calls.
	ParentEventID           string // empty for root. Set when spawned from a script event.
	RenderSequence          int    // position of this clip within the final render.
	ProviderName            string // which provider was selected to generate this media.
	ProviderJobID           string // remote job id for submit-then-poll providers.
	AvatarRemoteID          string // provider-side avatar id, Avatar events only.
	VoiceRemoteID           string // provider-side voice id, Avatar and Voice events.
	IsFinalRender           bool
	FinalRenderSequences    string // JSON of RenderMediaSequence, final-render events only.
	FinalRenderPublisherID  string // publisher profile the final render was cut for.
	WatermarkText           string
}

func (m *MediaEvent) GetEventID() string {
	// Derivable concatenation enforcing idempotency within a campaign; no datastore collision.
	return fmt.Sprintf("%s.%s.%s.%s", m.Language, m.MediaType, m.Niche, m.PromptHash)
}

func (m *MediaEvent) GetContentLookupKey() string {
	// Use guid because promptHash for static prompts will collide.
	return fmt.Sprintf("%s.%s.%s", m.MediaType, m.CampaignID, uuid.New().String())
}

func (m *MediaEvent) IsParentEvent() bool {
	return m.ParentEventID == ""
}

// Render events are produced by the assembly engine, not the generation providers.
func (m *MediaEvent) NotUsedInGenerators() bool {
	return m.MediaType == MEDIA_RENDER || m.IsFinalRender
}

// RenderMediaSequence is the slice of a MediaEvent the assembly engine needs
// to place a clip on the timeline.
type RenderMediaSequence struct {
	EventID          string
	MediaType        MediaType
	ContentLookupKey string
	RenderSequence   int
}

func (m *MediaEvent) ToRenderSequence() RenderMediaSequence {
	return RenderMediaSequence{
		EventID:          m.EventID,
		MediaType:        m.MediaType,
		ContentLookupKey: m.ContentLookupKey,
		RenderSequence:   m.RenderSequence,
	}
}

type ByRenderSequence []MediaEvent

func (s ByRenderSequence) Len() int           { return len(s) }
func (s ByRenderSequence) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
func (s ByRenderSequence) Less(i, j int) bool { return s[i].RenderSequence < s[j].RenderSequence }

func HashString(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])
}

type PublishStatus string

const (
	ASSIGNED   PublishStatus = "ASSIGNED"
	RENDERING  PublishStatus = "RENDERING"
	PUBLISHING PublishStatus = "PUBLISHING"
	COMPLETE   PublishStatus = "COMPLETE" // Terminal, success.
	EXPIRED    PublishStatus = "EXPIRED"  // Terminal, failure, timeout.
)

// PublishEvent associates a root media event to a PublisherProfile. Used for softlocking.
type PublishEvent struct {
	CampaignID            string
	RootMediaEventID      string
	DistributionChannel   ChannelName
	PublishStatus         PublishStatus // Soft lock: ASSIGNED, RENDERING, PUBLISHING, COMPLETE, EXPIRED.
	PublisherProfileID    string
	OwnerAccountID        string
	ProcessOwner          string // process id holding the soft lock.
	ExpiresAtTTL          int64  // epoch millis after which the soft lock may be forcefully retaken.
	RemotePostID          string // platform-side id of the published post, COMPLETE events only.
	PublishedAtEpochMilli int64  // set on COMPLETE events.
}

func (m *PublishEvent) GetEventID() string {
	return fmt.Sprintf("%s.%s.%s", m.DistributionChannel, m.RootMediaEventID, m.PublishStatus)
}

func (m *PublishEvent) GetRootMediaAssignmentKey() string {
	return fmt.Sprintf("%s.%s.%s", m.DistributionChannel, m.RootMediaEventID, m.PublishStatus)
}

func (m *PublishEvent) GetProfileStateKey() string {
	return fmt.Sprintf("%s.%s.%s", m.DistributionChannel, m.PublisherProfileID, m.PublishStatus)
}
