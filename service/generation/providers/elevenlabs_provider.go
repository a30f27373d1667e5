package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	dal "github.com/viralos-core/v2/dal"
	tables "github.com/viralos-core/v2/dal/tables/v1"
)

const PROVIDER_ELEVENLABS = "ElevenLabs"
const elevenLabsApiHost = "https://api.elevenlabs.io"
const elevenLabsModelID = "eleven_multilingual_v2"
const elevenLabsDefaultVoiceID = "21m00Tcm4TlvDq8ikWAM"
const elevenLabsCostPerThousandChars = 3000000

type ElevenLabsProvider struct{}

type elevenLabsTTSRequest struct {
	Text          string                 `json:"text"`
	ModelID       string                 `json:"model_id"`
	VoiceSettings elevenLabsVoiceSetting `json:"voice_settings"`
}

type elevenLabsVoiceSetting struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

func (s ElevenLabsProvider) GetName() string {
	return PROVIDER_ELEVENLABS
}

func (s ElevenLabsProvider) GetRateKey() string {
	return dal.RATE_API_ELEVENLABS
}

func (s ElevenLabsProvider) Generate(ctx context.Context, mediaEvent tables.MediaEvent) (Job, error) {
	voiceId := mediaEvent.VoiceRemoteID
	if voiceId == "" {
		voiceId = elevenLabsDefaultVoiceID
	}
	requestBody := elevenLabsTTSRequest{
		Text:    mediaEvent.PromptInstruction,
		ModelID: elevenLabsModelID,
		VoiceSettings: elevenLabsVoiceSetting{
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
	}
	payloadBytes, err := json.Marshal(requestBody)
	if err != nil {
		return Job{Status: JOB_FAILED}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v1/text-to-speech/%s", elevenLabsApiHost, voiceId), bytes.NewReader(payloadBytes))
	if err != nil {
		return Job{Status: JOB_FAILED}, err
	}
	req.Header.Set("xi-api-key", os.Getenv("ELEVENLABS_API_KEY"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := providerHttpClient.Do(req)
	if err != nil {
		log.Printf("correlationID: %s elevenlabs tts failed: %s", mediaEvent.CampaignID, err)
		return Job{Status: JOB_FAILED}, err
	}
	defer resp.Body.Close()
	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return Job{Status: JOB_FAILED}, err
	}
	if resp.StatusCode >= 400 {
		return Job{Status: JOB_FAILED}, fmt.Errorf("elevenlabs status %d: %s", resp.StatusCode, string(responseBytes))
	}
	characterCount := int64(len(mediaEvent.PromptInstruction))
	return Job{
		Status:          JOB_DONE,
		MediaBytes:      responseBytes,
		Units:           float64(characterCount),
		UnitKind:        "characters",
		CostCentsMicros: characterCount * elevenLabsCostPerThousandChars / 1000,
	}, nil
}

func (s ElevenLabsProvider) CheckStatus(ctx context.Context, job Job) (Job, error) {
	return job, nil
}
