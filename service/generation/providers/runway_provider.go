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

const PROVIDER_RUNWAY = "RunwayML"
const runwayApiHost = "https://api.dev.runwayml.com"
const runwayApiVersion = "2024-11-06"

// b-roll clips are fixed length, priced per clip.
const runwayBRollSeconds = 5
const runwayCostPerClip = 25000000

type RunwayProvider struct{}

type runwayTaskRequest struct {
	PromptText string `json:"promptText"`
	Model      string `json:"model"`
	Ratio      string `json:"ratio"`
	Duration   int    `json:"duration"`
}

type runwayTaskResponse struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	Output []string `json:"output"`
}

func (s RunwayProvider) GetName() string {
	return PROVIDER_RUNWAY
}

func (s RunwayProvider) GetRateKey() string {
	return dal.RATE_API_RUNWAY
}

func (s RunwayProvider) Generate(ctx context.Context, mediaEvent tables.MediaEvent) (Job, error) {
	requestBody := runwayTaskRequest{
		PromptText: mediaEvent.PromptInstruction,
		Model:      "gen3a_turbo",
		Ratio:      "768:1280",
		Duration:   runwayBRollSeconds,
	}
	responseBytes, err := s.callApi(ctx, http.MethodPost, "/v1/text_to_video", requestBody)
	if err != nil {
		log.Printf("correlationID: %s runway submit failed: %s", mediaEvent.CampaignID, err)
		return Job{Status: JOB_FAILED}, err
	}
	var taskResponse runwayTaskResponse
	err = json.Unmarshal(responseBytes, &taskResponse)
	if err != nil {
		return Job{Status: JOB_FAILED}, err
	}
	if taskResponse.ID == "" {
		return Job{Status: JOB_FAILED}, fmt.Errorf("runway returned no task id: %s", string(responseBytes))
	}
	return Job{RemoteJobID: taskResponse.ID, Status: JOB_PENDING}, nil
}

func (s RunwayProvider) CheckStatus(ctx context.Context, job Job) (Job, error) {
	responseBytes, err := s.callApi(ctx, http.MethodGet, "/v1/tasks/"+job.RemoteJobID, nil)
	if err != nil {
		return job, err
	}
	var taskResponse runwayTaskResponse
	err = json.Unmarshal(responseBytes, &taskResponse)
	if err != nil {
		return job, err
	}
	switch taskResponse.Status {
	case "SUCCEEDED":
		if len(taskResponse.Output) == 0 {
			return job, fmt.Errorf("runway task %s succeeded with no output", job.RemoteJobID)
		}
		mediaBytes, err := downloadBytes(ctx, taskResponse.Output[0])
		if err != nil {
			return job, err
		}
		job.Status = JOB_DONE
		job.MediaBytes = mediaBytes
		job.Units = runwayBRollSeconds
		job.UnitKind = "seconds"
		job.CostCentsMicros = runwayCostPerClip
	case "FAILED", "CANCELLED":
		job.Status = JOB_FAILED
	default:
		job.Status = JOB_PENDING
	}
	return job, nil
}

func (s RunwayProvider) callApi(ctx context.Context, method string, path string, requestBody interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		payloadBytes, err := json.Marshal(requestBody)
		if err != nil {
			return []byte{}, err
		}
		bodyReader = bytes.NewReader(payloadBytes)
	}
	req, err := http.NewRequestWithContext(ctx, method, runwayApiHost+path, bodyReader)
	if err != nil {
		return []byte{}, err
	}
	req.Header.Set("Authorization", "Bearer "+os.Getenv("RUNWAY_API_KEY"))
	req.Header.Set("X-Runway-Version", runwayApiVersion)
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
		return []byte{}, fmt.Errorf("runway status %d: %s", resp.StatusCode, string(responseBytes))
	}
	return responseBytes, nil
}
