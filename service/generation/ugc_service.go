package generation

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	tables "github.com/viralos-core/v2/dal/tables/v1"
	manifest "github.com/viralos-core/v2/manifest"
)

var credibilitySpecificityWords = []string{"exactly", "specifically", "after", "before", "days", "weeks", "months"}
var credibilityPositiveWords = []string{"good", "great", "love", "excellent", "amazing"}
var credibilityCaveatWords = []string{"but", "however", "although", "wish", "could be better"}

// Light natural-speech markers injected so the avatar read does not sound scripted.
var authenticityFillers = []string{"honestly", "actually", "so"}

// ParseTestimonialScript decodes the LLM testimonial payload.
func ParseTestimonialScript(payload string) (manifest.TestimonialSchema, error) {
	result := manifest.TestimonialSchema{}
	err := json.Unmarshal([]byte(payload), &result)
	if err != nil {
		log.Printf("error unmarshalling script payload to testimonial schema: %s", err)
		log.Printf("error payload: <%s>", payload)
		return result, err
	}
	if result.SpokenScript == "" {
		return result, fmt.Errorf("testimonial payload missing spoken script: %s", payload)
	}
	return result, nil
}

// SelectAvatar picks the roster avatar whose persona best matches the
// testimonial persona the script calls for.
func SelectAvatar(language string, persona string) (manifest.AvatarEntry, error) {
	roster := manifest.GetManifestLoader().GetAvatarsForLanguage(language)
	if len(roster) == 0 {
		return manifest.AvatarEntry{}, fmt.Errorf("no avatars available for language %s", language)
	}
	best := roster[0]
	bestScore := -1
	personaWords := strings.Fields(strings.ToLower(persona))
	for _, avatar := range roster {
		score := 0
		avatarPersona := strings.ToLower(avatar.Persona)
		for _, word := range personaWords {
			if len(word) > 3 && strings.Contains(avatarPersona, word) {
				score++
			}
		}
		if score > bestScore {
			best = avatar
			bestScore = score
		}
	}
	return best, nil
}

// CredibilityScore rates review text believability 0..1.
// Longer, specific, balanced reviews score higher.
func CredibilityScore(reviewText string, rating float64) float64 {
	score := 0.5
	lowered := strings.ToLower(reviewText)

	wordCount := len(strings.Fields(reviewText))
	if wordCount > 50 {
		score += 0.2
	} else if wordCount > 20 {
		score += 0.1
	}

	specificityCount := 0
	for _, keyword := range credibilitySpecificityWords {
		if strings.Contains(lowered, keyword) {
			specificityCount++
		}
	}
	specificityBoost := float64(specificityCount) * 0.05
	if specificityBoost > 0.2 {
		specificityBoost = 0.2
	}
	score += specificityBoost

	hasPositive := containsAny(lowered, credibilityPositiveWords)
	hasCaveats := containsAny(lowered, credibilityCaveatWords)
	if hasPositive && hasCaveats {
		score += 0.1
	}
	if rating >= 4.0 && hasPositive {
		score += 0.1
	} else if rating > 0 && rating <= 2.0 && !hasPositive {
		score += 0.1
	}

	if score > 1.0 {
		return 1.0
	}
	if score < 0.0 {
		return 0.0
	}
	return score
}

func containsAny(text string, words []string) bool {
	for _, word := range words {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

// AddAuthenticityMarkers prefixes some sentences with filler words so the
// spoken read sounds like a person, not ad copy. Deterministic per sentence
// index so regenerated scripts stay stable.
func AddAuthenticityMarkers(script string) string {
	sentences := strings.Split(script, ". ")
	for i := range sentences {
		if i == 0 || i%3 != 0 {
			continue
		}
		trimmed := strings.TrimSpace(sentences[i])
		if trimmed == "" || startsWithFiller(trimmed) {
			continue
		}
		filler := authenticityFillers[i%len(authenticityFillers)]
		sentences[i] = fmt.Sprintf("%s%s, %s%s", strings.ToUpper(filler[:1]), filler[1:], strings.ToLower(trimmed[:1]), trimmed[1:])
	}
	return strings.Join(sentences, ". ")
}

func startsWithFiller(sentence string) bool {
	lowered := strings.ToLower(sentence)
	for _, filler := range authenticityFillers {
		if strings.HasPrefix(lowered, filler) {
			return true
		}
	}
	return false
}

// SpawnTestimonialMediaEvent expands a testimonial script into the single
// Avatar child event carrying the avatar and voice bindings.
func SpawnTestimonialMediaEvent(root tables.MediaEvent, script manifest.TestimonialSchema) (tables.MediaEvent, error) {
	avatar, err := SelectAvatar(root.Language, script.Persona)
	if err != nil {
		return tables.MediaEvent{}, err
	}
	spokenScript := AddAuthenticityMarkers(script.SpokenScript)
	result := tables.MediaEvent{
		CampaignID:        root.CampaignID,
		MediaType:         tables.MEDIA_AVATAR,
		Language:          root.Language,
		Niche:             root.Niche,
		PromptInstruction: spokenScript,
		ParentEventID:     root.EventID,
		RenderSequence:    0,
		ProviderName:      avatar.ProviderName,
		AvatarRemoteID:    avatar.RemoteID,
		VoiceRemoteID:     avatar.VoiceID,
	}
	result.PromptHash = tables.HashString(result.PromptInstruction)
	result.EventID = result.GetEventID()
	result.ContentLookupKey = result.GetContentLookupKey()
	return result, nil
}

// EstimatedDurationSec assumes an average spoken pace of 150 words per minute.
func EstimatedDurationSec(script string) float64 {
	wordCount := len(strings.Fields(script))
	return float64(wordCount) / 150.0 * 60.0
}
