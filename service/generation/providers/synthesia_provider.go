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

const PROVIDER_SYNTHESIA = "Synthesia"
const synthesiaApiHost = "https://api.synthesia.io"
const synthesiaCostPerSecond = 6000000

type SynthesiaProvider struct{}

type synthesiaVideoRequest struct {
	Test        bool                  `json:"test"`
	Input       []synthesiaVideoInput `json:"input"`
	AspectRatio string                `json:"aspectRatio"`
}

type synthesiaVideoInput struct {
	ScriptText string `json:"scriptText"`
	Avatar     string `json:"avatar"`
	Background string `json:"background"`
}

type synthesiaVideoResponse struct {
	ID       string  `json:"id"`
	Status   string  `json:"status"`
	Download string  `json:"download"`
	Duration float64 `json:"duration"`
}

func (s SynthesiaProvider) GetName() string {
	return PROVIDER_SYNTHESIA
}

func (s SynthesiaProvider) GetRateKey() string {
	return dal.RATE_API_SYNTHESIA
}

func (s SynthesiaProvider) Generate(ctx context.Context, mediaEvent tables.MediaEvent) (Job, error) {
	requestBody := synthesiaVideoRequest{
		Test: os.Getenv("env") != "prod",
		Input: []synthesiaVideoInput{
			{
				ScriptText: mediaEvent.PromptInstruction,
				Avatar:     mediaEvent.AvatarRemoteID,
				Background: "off_white",
			},
		},
		AspectRatio: "9:16",
	}
	responseBytes, err := s.callApi(ctx, http.MethodPost, "/v2/videos", requestBody)
	if err != nil {
		log.Printf("correlationID: %s synthesia submit failed: %s", mediaEvent.CampaignID, err)
		return Job{Status: JOB_FAILED}, err
	}
	var videoResponse synthesiaVideoResponse
	err = json.Unmarshal(responseBytes, &videoResponse)
	if err != nil {
		return Job{Status: JOB_FAILED}, err
	}
	if videoResponse.ID == "" {
		return Job{Status: JOB_FAILED}, fmt.Errorf("synthesia returned no video id: %s", string(responseBytes))
	}
	return Job{RemoteJobID: videoResponse.ID, Status: JOB_PENDING}, nil
}

func (s SynthesiaProvider) CheckStatus(ctx context.Context, job Job) (Job, error) {
	responseBytes, err := s.callApi(ctx, http.MethodGet, "/v2/videos/"+job.RemoteJobID, nil)
	if err != nil {
		return job, err
	}
	var videoResponse synthesiaVideoResponse
	err = json.Unmarshal(responseBytes, &videoResponse)
	if err != nil {
		return job, err
	}
	switch videoResponse.Status {
	case "complete":
		mediaBytes, err := downloadBytes(ctx, videoResponse.Download)
		if err != nil {
			return job, err
		}
		job.Status = JOB_DONE
		job.MediaBytes = mediaBytes
		job.Units = videoResponse.Duration
		job.UnitKind = "seconds"
		job.CostCentsMicros = int64(videoResponse.Duration * synthesiaCostPerSecond)
	case "failed":
		job.Status = JOB_FAILED
	default:
		job.Status = JOB_PENDING
	}
	return job, nil
}

func (s SynthesiaProvider) callApi(ctx context.Context, method string, path string, requestBody interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		payloadBytes, err := json.Marshal(requestBody)
		if err != nil {
			return []byte{}, err
		}
		bodyReader = bytes.NewReader(payloadBytes)
	}
	req, err := http.NewRequestWithContext(ctx, method, synthesiaApiHost+path, bodyReader)
	if err != nil {
		return []byte{}, err
	}
	req.Header.Set("Authorization", os.Getenv("SYNTHESIA_API_KEY"))
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
		return []byte{}, fmt.Errorf("synthesia status %d: %s", resp.StatusCode, string(responseBytes))
	}
	return responseBytes, nil
}
