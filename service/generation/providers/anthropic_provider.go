package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	env "github.com/viralos-core/v2/configuration"
	dal "github.com/viralos-core/v2/dal"
	tables "github.com/viralos-core/v2/dal/tables/v1"
)

const PROVIDER_ANTHROPIC = "Anthropic"
const anthropicApiHost = "https://api.anthropic.com"
const anthropicApiVersion = "2023-06-01"
const anthropicModelName = "claude-sonnet-4-20250514"
const anthropicCostPerThousandTokens = 600000

// Fallback LLM when OpenAI is rate limited or failing.
type AnthropicProvider struct{}

type anthropicMessageRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicMessageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int64 `json:"input_tokens"`
		OutputTokens int64 `json:"output_tokens"`
	} `json:"usage"`
}

func (s AnthropicProvider) GetName() string {
	return PROVIDER_ANTHROPIC
}

func (s AnthropicProvider) GetRateKey() string {
	return dal.RATE_API_ANTHROPIC
}

func (s AnthropicProvider) Generate(ctx context.Context, mediaEvent tables.MediaEvent) (Job, error) {
	requestBody := anthropicMessageRequest{
		Model:     anthropicModelName,
		MaxTokens: env.GetEnvConfigs().ScriptMaxTokens,
		System:    mediaEvent.SystemPromptInstruction,
		Messages: []anthropicMessage{
			{Role: "user", Content: mediaEvent.PromptInstruction},
		},
	}
	payloadBytes, err := json.Marshal(requestBody)
	if err != nil {
		return Job{Status: JOB_FAILED}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicApiHost+"/v1/messages", bytes.NewReader(payloadBytes))
	if err != nil {
		return Job{Status: JOB_FAILED}, err
	}
	req.Header.Set("x-api-key", os.Getenv("ANTHROPIC_API_KEY"))
	req.Header.Set("anthropic-version", anthropicApiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := providerHttpClient.Do(req)
	if err != nil {
		log.Printf("correlationID: %s anthropic request failed: %s", mediaEvent.CampaignID, err)
		return Job{Status: JOB_FAILED}, err
	}
	defer resp.Body.Close()
	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return Job{Status: JOB_FAILED}, err
	}
	if resp.StatusCode >= 400 {
		return Job{Status: JOB_FAILED}, fmt.Errorf("anthropic status %d: %s", resp.StatusCode, string(responseBytes))
	}

	var messageResponse anthropicMessageResponse
	err = json.Unmarshal(responseBytes, &messageResponse)
	if err != nil {
		return Job{Status: JOB_FAILED}, err
	}
	if len(messageResponse.Content) == 0 {
		return Job{Status: JOB_FAILED}, errors.New("anthropic returned no content blocks")
	}
	totalTokens := messageResponse.Usage.InputTokens + messageResponse.Usage.OutputTokens
	return Job{
		Status:          JOB_DONE,
		MediaBytes:      []byte(messageResponse.Content[0].Text),
		Units:           float64(totalTokens),
		UnitKind:        "tokens",
		CostCentsMicros: totalTokens * anthropicCostPerThousandTokens / 1000,
	}, nil
}

func (s AnthropicProvider) CheckStatus(ctx context.Context, job Job) (Job, error) {
	return job, nil
}
