package generation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTestimonialScript(t *testing.T) {
	payload := `{"persona":"busy mom","painPoint":"p","spokenScript":"I tried it for two weeks.","callToAction":"c"}`
	script, err := ParseTestimonialScript(payload)
	assert.NoError(t, err)
	assert.Equal(t, "busy mom", script.Persona)

	_, err = ParseTestimonialScript(`{"persona":"busy mom"}`)
	assert.Error(t, err)
}

func TestCredibilityScoreBalancedReviewScoresHigh(t *testing.T) {
	review := "I was skeptical at first but after exactly two weeks of daily use this bottle is great. " +
		"It keeps water cold through an eight hour shift and the lid has never leaked once in my bag. " +
		"The coating scratched a little but honestly for this price I would buy it again without thinking twice."
	score := CredibilityScore(review, 4.5)
	assert.InDelta(t, 1.0, score, 0.001)
}

func TestCredibilityScoreShortVagueReview(t *testing.T) {
	score := CredibilityScore("nice", 0)
	assert.InDelta(t, 0.5, score, 0.001)
}

func TestCredibilityScoreLowRatingConsistency(t *testing.T) {
	negative := CredibilityScore("broke within a day, leaked everywhere, total waste", 1.0)
	assert.Greater(t, negative, 0.5)
}

func TestAddAuthenticityMarkers(t *testing.T) {
	script := "I bought this last month. It works every day. The color really pops. Definitely recommend it to friends."
	marked := AddAuthenticityMarkers(script)
	assert.Contains(t, marked, "Honestly, definitely recommend")
	// First sentence never gets a filler.
	assert.True(t, strings.HasPrefix(marked, "I bought this"))
}

func TestAddAuthenticityMarkersSkipsExistingFillers(t *testing.T) {
	script := "One. Two. Three. Honestly this is fine already."
	marked := AddAuthenticityMarkers(script)
	assert.Equal(t, script, marked)
}

func TestEstimatedDurationSec(t *testing.T) {
	words := make([]string, 150)
	for i := range words {
		words[i] = "word"
	}
	assert.InDelta(t, 60.0, EstimatedDurationSec(strings.Join(words, " ")), 0.001)
}
