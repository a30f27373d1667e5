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

const PROVIDER_HEYGEN = "HeyGen"
const heygenApiHost = "https://api.heygen.com"

// cents-micros per second of rendered avatar video.
const heygenCostPerSecond = 5000000

type HeyGenProvider struct{}

type heygenGenerateRequest struct {
	VideoInputs []heygenVideoInput `json:"video_inputs"`
	Dimension   heygenDimension    `json:"dimension"`
}

type heygenVideoInput struct {
	Character heygenCharacter `json:"character"`
	Voice     heygenVoice     `json:"voice"`
}

type heygenCharacter struct {
	Type     string `json:"type"`
	AvatarID string `json:"avatar_id"`
}

type heygenVoice struct {
	Type      string `json:"type"`
	VoiceID   string `json:"voice_id"`
	InputText string `json:"input_text"`
}

type heygenDimension struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type heygenGenerateResponse struct {
	Data struct {
		VideoID string `json:"video_id"`
	} `json:"data"`
	Error interface{} `json:"error"`
}

type heygenStatusResponse struct {
	Data struct {
		Status   string  `json:"status"`
		VideoURL string  `json:"video_url"`
		Duration float64 `json:"duration"`
	} `json:"data"`
}

func (s HeyGenProvider) GetName() string {
	return PROVIDER_HEYGEN
}

func (s HeyGenProvider) GetRateKey() string {
	return dal.RATE_API_HEYGEN
}

func (s HeyGenProvider) Generate(ctx context.Context, mediaEvent tables.MediaEvent) (Job, error) {
	requestBody := heygenGenerateRequest{
		VideoInputs: []heygenVideoInput{
			{
				Character: heygenCharacter{Type: "avatar", AvatarID: mediaEvent.AvatarRemoteID},
				Voice:     heygenVoice{Type: "text", VoiceID: mediaEvent.VoiceRemoteID, InputText: mediaEvent.PromptInstruction},
			},
		},
		Dimension: heygenDimension{Width: 1080, Height: 1920},
	}
	responseBytes, err := s.callApi(ctx, http.MethodPost, "/v2/video/generate", requestBody)
	if err != nil {
		log.Printf("correlationID: %s heygen submit failed: %s", mediaEvent.CampaignID, err)
		return Job{Status: JOB_FAILED}, err
	}
	var generateResponse heygenGenerateResponse
	err = json.Unmarshal(responseBytes, &generateResponse)
	if err != nil {
		return Job{Status: JOB_FAILED}, err
	}
	if generateResponse.Data.VideoID == "" {
		return Job{Status: JOB_FAILED}, fmt.Errorf("heygen returned no video id: %s", string(responseBytes))
	}
	return Job{RemoteJobID: generateResponse.Data.VideoID, Status: JOB_PENDING}, nil
}

func (s HeyGenProvider) CheckStatus(ctx context.Context, job Job) (Job, error) {
	path := fmt.Sprintf("/v1/video_status.get?video_id=%s", job.RemoteJobID)
	responseBytes, err := s.callApi(ctx, http.MethodGet, path, nil)
	if err != nil {
		return job, err
	}
	var statusResponse heygenStatusResponse
	err = json.Unmarshal(responseBytes, &statusResponse)
	if err != nil {
		return job, err
	}
	switch statusResponse.Data.Status {
	case "completed":
		mediaBytes, err := downloadBytes(ctx, statusResponse.Data.VideoURL)
		if err != nil {
			return job, err
		}
		job.Status = JOB_DONE
		job.MediaBytes = mediaBytes
		job.Units = statusResponse.Data.Duration
		job.UnitKind = "seconds"
		job.CostCentsMicros = int64(statusResponse.Data.Duration * heygenCostPerSecond)
	case "failed":
		job.Status = JOB_FAILED
	default:
		job.Status = JOB_PENDING
	}
	return job, nil
}

func (s HeyGenProvider) callApi(ctx context.Context, method string, path string, requestBody interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		payloadBytes, err := json.Marshal(requestBody)
		if err != nil {
			return []byte{}, err
		}
		bodyReader = bytes.NewReader(payloadBytes)
	}
	req, err := http.NewRequestWithContext(ctx, method, heygenApiHost+path, bodyReader)
	if err != nil {
		return []byte{}, err
	}
	req.Header.Set("X-Api-Key", os.Getenv("HEYGEN_API_KEY"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := providerHttpClient.Do(req)
	if err != nil {
		return []byte{}, err
	}
	defer resp.Body.Close()
	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return []byte{}, err
	}
	if resp.StatusCode >= 400 {
		return []byte{}, fmt.Errorf("heygen status %d: %s", resp.StatusCode, string(responseBytes))
	}
	return responseBytes, nil
}
