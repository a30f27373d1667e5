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

const PROVIDER_DID = "D-ID"
const didApiHost = "https://api.d-id.com"
const didCostPerSecond = 4000000

type DIDProvider struct{}

type didTalkRequest struct {
	Script      didScript `json:"script"`
	PresenterID string    `json:"presenter_id"`
}

type didScript struct {
	Type     string      `json:"type"`
	Input    string      `json:"input"`
	Provider didProvider `json:"provider"`
}

type didProvider struct {
	Type    string `json:"type"`
	VoiceID string `json:"voice_id"`
}

type didTalkResponse struct {
	ID        string  `json:"id"`
	Status    string  `json:"status"`
	ResultURL string  `json:"result_url"`
	Duration  float64 `json:"duration"`
}

func (s DIDProvider) GetName() string {
	return PROVIDER_DID
}

func (s DIDProvider) GetRateKey() string {
	return dal.RATE_API_DID
}

func (s DIDProvider) Generate(ctx context.Context, mediaEvent tables.MediaEvent) (Job, error) {
	requestBody := didTalkRequest{
		Script: didScript{
			Type:     "text",
			Input:    mediaEvent.PromptInstruction,
			Provider: didProvider{Type: "microsoft", VoiceID: mediaEvent.VoiceRemoteID},
		},
		PresenterID: mediaEvent.AvatarRemoteID,
	}
	responseBytes, err := s.callApi(ctx, http.MethodPost, "/talks", requestBody)
	if err != nil {
		log.Printf("correlationID: %s d-id submit failed: %s", mediaEvent.CampaignID, err)
		return Job{Status: JOB_FAILED}, err
	}
	var talkResponse didTalkResponse
	err = json.Unmarshal(responseBytes, &talkResponse)
	if err != nil {
		return Job{Status: JOB_FAILED}, err
	}
	if talkResponse.ID == "" {
		return Job{Status: JOB_FAILED}, fmt.Errorf("d-id returned no talk id: %s", string(responseBytes))
	}
	return Job{RemoteJobID: talkResponse.ID, Status: JOB_PENDING}, nil
}

func (s DIDProvider) CheckStatus(ctx context.Context, job Job) (Job, error) {
	responseBytes, err := s.callApi(ctx, http.MethodGet, "/talks/"+job.RemoteJobID, nil)
	if err != nil {
		return job, err
	}
	var talkResponse didTalkResponse
	err = json.Unmarshal(responseBytes, &talkResponse)
	if err != nil {
		return job, err
	}
	switch talkResponse.Status {
	case "done":
		mediaBytes, err := downloadBytes(ctx, talkResponse.ResultURL)
		if err != nil {
			return job, err
		}
		job.Status = JOB_DONE
		job.MediaBytes = mediaBytes
		job.Units = talkResponse.Duration
		job.UnitKind = "seconds"
		job.CostCentsMicros = int64(talkResponse.Duration * didCostPerSecond)
	case "error", "rejected":
		job.Status = JOB_FAILED
	default:
		job.Status = JOB_PENDING
	}
	return job, nil
}

func (s DIDProvider) callApi(ctx context.Context, method string, path string, requestBody interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		payloadBytes, err := json.Marshal(requestBody)
		if err != nil {
			return []byte{}, err
		}
		bodyReader = bytes.NewReader(payloadBytes)
	}
	req, err := http.NewRequestWithContext(ctx, method, didApiHost+path, bodyReader)
	if err != nil {
		return []byte{}, err
	}
	req.Header.Set("Authorization", "Basic "+os.Getenv("DID_API_KEY"))
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
		return []byte{}, fmt.Errorf("d-id status %d: %s", resp.StatusCode, string(responseBytes))
	}
	return responseBytes, nil
}
