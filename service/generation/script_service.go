package generation

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	tables "github.com/viralos-core/v2/dal/tables/v1"
	manifest "github.com/viralos-core/v2/manifest"
)

// Approximate price point above which copy should sell on quality over price.
const premiumPriceCents = 10000

var emotionalHookWords = []string{
	"secret", "shocking", "amazing", "incredible", "mistake", "wrong",
	"truth", "hidden", "revealed", "exposed", "never", "always",
}

// BuildScriptMediaEvent turns a manifest prompt plus scraped brand context
// into the root Text media event for a campaign.
func BuildScriptMediaEvent(prompt manifest.Prompt, campaign tables.Campaign,
	brand tables.Brand, products []tables.Product) (tables.MediaEvent, error) {
	result := tables.MediaEvent{}
	result.CampaignID = campaign.CampaignID
	result.SystemPromptInstruction = prompt.SystemPromptText
	result.MediaType = tables.MEDIA_TEXT
	result.Niche = prompt.Niche
	result.Language = campaign.TriggerEventTargetLanguage

	var err error
	result.DistributionFormat, err = tables.GetDistributionFormatFromString(resolveFormat(prompt, campaign))
	if err != nil {
		log.Printf("correlationID: %s mismatched distribution format: %s", campaign.CampaignID, err)
		return result, err
	}

	result.PromptInstruction = buildPromptInstruction(prompt, campaign, brand, products, result.DistributionFormat)
	result.PromptHash = tables.HashString(result.PromptInstruction)
	result.EventID = result.GetEventID()
	result.ContentLookupKey = result.GetContentLookupKey()
	return result, nil
}

// A campaign-level format override from the trigger wins over the prompt default.
func resolveFormat(prompt manifest.Prompt, campaign tables.Campaign) string {
	if campaign.TriggerEventDistFormat != "" {
		return campaign.TriggerEventDistFormat
	}
	return prompt.DistributionFormat
}

func buildPromptInstruction(prompt manifest.Prompt, campaign tables.Campaign,
	brand tables.Brand, products []tables.Product, format tables.DistributionFormat) string {
	var sb strings.Builder
	sb.WriteString(prompt.PromptText)
	sb.WriteString("\n\nCampaign input:\n")
	sb.WriteString(campaign.TriggerEventPayload)
	if brand.BrandID != "" {
		sb.WriteString("\n\nBrand context:\n")
		sb.WriteString(describeBrand(brand))
	}
	for _, p := range products {
		sb.WriteString("\n\nProduct insight:\n")
		sb.WriteString(DescribeProductInsights(p))
	}
	sb.WriteString("\n\nRespond with JSON matching this schema exactly:\n")
	if format == tables.DIST_FORMAT_UGC {
		sb.WriteString(manifest.GetTestimonialJsonSchema())
	} else {
		sb.WriteString(manifest.GetShortVideoJsonSchema())
	}
	return sb.String()
}

func describeBrand(brand tables.Brand) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Brand: %s", brand.BrandName))
	if brand.ValueProposition != "" {
		sb.WriteString(fmt.Sprintf("\nValue proposition: %s", brand.ValueProposition))
	}
	if brand.BrandVoice != "" {
		sb.WriteString(fmt.Sprintf("\nBrand voice: %s", brand.BrandVoice))
	}
	if brand.TargetAudience != "" {
		sb.WriteString(fmt.Sprintf("\nTarget audience: %s", brand.TargetAudience))
	}
	return sb.String()
}

// DescribeProductInsights renders a product row as prompt-ready selling points.
func DescribeProductInsights(product tables.Product) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name: %s", product.Name))
	if product.PriceCents > 0 {
		sb.WriteString(fmt.Sprintf("\nPrice: %.2f %s", float64(product.PriceCents)/100, product.Currency))
		if product.OriginalCents > product.PriceCents {
			sb.WriteString(fmt.Sprintf(" (discounted from %.2f)", float64(product.OriginalCents)/100))
		}
		if product.PriceCents >= premiumPriceCents {
			sb.WriteString("\nPositioning: premium, sell on quality and longevity")
		} else {
			sb.WriteString("\nPositioning: accessible, sell on value and impulse appeal")
		}
	}
	if product.Description != "" {
		sb.WriteString(fmt.Sprintf("\nDescription: %s", truncate(product.Description, 400)))
	}
	var features []string
	if product.Features != "" {
		if err := json.Unmarshal([]byte(product.Features), &features); err == nil && len(features) > 0 {
			sb.WriteString(fmt.Sprintf("\nFeatures: %s", strings.Join(features, "; ")))
		}
	}
	if product.ReviewCount > 0 {
		sb.WriteString(fmt.Sprintf("\nSocial proof: rated %.1f/5 across %d reviews", product.RatingAvg, product.ReviewCount))
	}
	if product.Availability == tables.AVAIL_LIMITED_STOCK {
		sb.WriteString("\nScarcity: limited stock, urgency is appropriate")
	}
	return sb.String()
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max]
}

func ParseShortVideoScript(payload string) (manifest.ShortVideoSchema, error) {
	result := manifest.ShortVideoSchema{}
	err := json.Unmarshal([]byte(payload), &result)
	if err != nil {
		log.Printf("error unmarshalling script payload to short video schema: %s", err)
		log.Printf("error payload: <%s>", payload)
		return result, err
	}
	if len(result.Scenes) == 0 {
		return result, fmt.Errorf("script payload contained no scenes: %s", payload)
	}
	return result, nil
}

// ScoreHook estimates hook strength on a 0-10 scale.
func ScoreHook(hook string) float64 {
	score := 5.0
	lengthScore := 2.0 - float64(len(hook))/30.0
	if lengthScore > 0 {
		score += lengthScore
	}
	emotionScore := 0.0
	lowered := strings.ToLower(hook)
	for _, word := range emotionalHookWords {
		if strings.Contains(lowered, word) {
			emotionScore += 0.2
		}
	}
	if emotionScore > 1.0 {
		emotionScore = 1.0
	}
	score += emotionScore
	if score > 10.0 {
		score = 10.0
	}
	return score
}

// EstimateEngagement normalizes the best hook score to 0..1.
func EstimateEngagement(script manifest.ShortVideoSchema) float64 {
	best := ScoreHook(script.Hook)
	if best < ScoreHook(script.VideoTitle) {
		best = ScoreHook(script.VideoTitle)
	}
	result := best / 10.0
	if result > 1.0 {
		result = 1.0
	}
	return result
}

// SpawnSceneMediaEvents expands a parsed script into the BRoll and Voice
// child events the render needs, ordered by scene.
func SpawnSceneMediaEvents(root tables.MediaEvent, script manifest.ShortVideoSchema) []tables.MediaEvent {
	results := []tables.MediaEvent{}
	for i, scene := range script.Scenes {
		brollPrompt := scene.BRollHint
		if brollPrompt == "" {
			brollPrompt = scene.OnScreenText
		}
		broll := childEventFrom(root, tables.MEDIA_BROLL, brollPrompt, i)
		results = append(results, broll)

		if scene.VoiceoverText != "" {
			voice := childEventFrom(root, tables.MEDIA_VOICE, scene.VoiceoverText, i)
			results = append(results, voice)
		}
	}
	return results
}

func childEventFrom(root tables.MediaEvent, mediaType tables.MediaType, promptInstruction string, sequence int) tables.MediaEvent {
	result := tables.MediaEvent{
		CampaignID:        root.CampaignID,
		MediaType:         mediaType,
		Language:          root.Language,
		Niche:             root.Niche,
		PromptInstruction: promptInstruction,
		ParentEventID:     root.EventID,
		RenderSequence:    sequence,
	}
	result.PromptHash = tables.HashString(fmt.Sprintf("%s.%d", result.PromptInstruction, sequence))
	result.EventID = result.GetEventID()
	result.ContentLookupKey = result.GetContentLookupKey()
	return result
}
