package manifest

import (
	"encoding/json"
	"log"
)

// SceneSchema is one beat of a short video script.
type SceneSchema struct {
	OnScreenText  string `json:"onScreenText"`
	VoiceoverText string `json:"voiceoverText"`
	DurationSec   int    `json:"durationSec"`
	BRollHint     string `json:"bRollHint"`
}

type ShortVideoSchema struct {
	VideoTitle       string        `json:"videoTitle"`
	Hook             string        `json:"hook"`
	Scenes           []SceneSchema `json:"scenes"`
	CallToAction     string        `json:"callToAction"`
	VideoDescription string        `json:"videoDescription"`
	Hashtags         []string      `json:"hashtags"`
}

type TestimonialSchema struct {
	Persona          string   `json:"persona"`
	PainPoint        string   `json:"painPoint"`
	Discovery        string   `json:"discovery"`
	Transformation   string   `json:"transformation"`
	CallToAction     string   `json:"callToAction"`
	SpokenScript     string   `json:"spokenScript"`
	VideoDescription string   `json:"videoDescription"`
	Hashtags         []string `json:"hashtags"`
}

func GetShortVideoJsonSchema() string {
	sampleShot := ShortVideoSchema{
		VideoTitle: `Your video title goes here. Your title is pithy.
		Your title should evoke curiosity by asking a question, interest, and evoke strong emotions such as surprise or joy.`,
		Hook: `The first three seconds of voiceover. It must stop the scroll:
		open with a bold claim, a question, or a pattern interrupt tied to the product's main benefit.`,
		Scenes: []SceneSchema{
			{
				OnScreenText:  "Short overlay text for this scene, five words or fewer.",
				VoiceoverText: "One or two spoken sentences advancing the pitch for this scene.",
				DurationSec:   4,
				BRollHint: `Describe the footage for this scene: the product in use, hands, setting, lighting.
				Describe it with enough detail to brief a video generator.`,
			},
			{
				OnScreenText:  "One scene object per entry in the json:scenes array.",
				VoiceoverText: "Generate at least three, and at most six scenes. Total spoken time must stay under 45 seconds.",
				DurationSec:   5,
				BRollHint:     "Each scene needs its own footage description.",
			},
		},
		CallToAction: "Final spoken line telling the viewer exactly what to do next.",
		VideoDescription: `Your video description should contain an SEO rich description.
		Include at least three relevant hashtags in your video description.`,
		Hashtags: []string{"Search optimized hashtags go in the json:hashtags array.",
			"You should generate at least five, and at most ten hashtags.",
			"Omit the # prefix, one hashtag per entry."},
	}

	b, err := json.MarshalIndent(sampleShot, "", "  ")
	if err != nil {
		log.Fatalf("error marshalling schema sample: %s", err)
	}
	return string(b)
}

func GetTestimonialJsonSchema() string {
	sampleShot := TestimonialSchema{
		Persona: `A one-sentence sketch of the speaker: age range, life situation, why they needed the product.
		Stay consistent with the persona in every other field.`,
		PainPoint:      "The specific problem the speaker struggled with before finding the product. First person, conversational.",
		Discovery:      "How the speaker found the product. Keep it casual and believable, never salesy.",
		Transformation: "What changed after using it. Concrete, specific outcomes beat vague praise.",
		CallToAction:   "A soft, friend-to-friend recommendation. Never use advertising language here.",
		SpokenScript: `The full script the avatar will speak, weaving painPoint, discovery and transformation into
		one continuous first-person monologue. Must read like a real person talking to camera, with natural
		filler and contractions. Must be speakable in under 60 seconds.`,
		VideoDescription: "Caption for the post. One or two sentences plus hashtags.",
		Hashtags: []string{"Hashtags for the caption go in the json:hashtags array.",
			"You should generate at least three, and at most eight hashtags.",
			"Omit the # prefix, one hashtag per entry."},
	}

	b, err := json.MarshalIndent(sampleShot, "", "  ")
	if err != nil {
		log.Fatalf("error marshalling schema sample: %s", err)
	}
	return string(b)
}
