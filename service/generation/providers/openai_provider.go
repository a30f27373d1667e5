package providers

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"

	openai "github.com/sashabaranov/go-openai"
	env "github.com/viralos-core/v2/configuration"
	dal "github.com/viralos-core/v2/dal"
	tables "github.com/viralos-core/v2/dal/tables/v1"
)

const PROVIDER_OPENAI = "OpenAI"

// cents-micros per 1K tokens, blended input/output.
const openAICostPerThousandTokens = 500000

type OpenAIProvider struct{}

var openaiClientSync sync.Once
var openaiClient *openai.Client

func getOpenAIClient() *openai.Client {
	openaiClientSync.Do(func() {
		openaiClient = openai.NewClient(os.Getenv("OPENAI_API_KEY"))
	})
	return openaiClient
}

func (s OpenAIProvider) GetName() string {
	return PROVIDER_OPENAI
}

func (s OpenAIProvider) GetRateKey() string {
	return dal.RATE_API_OPENAI
}

func (s OpenAIProvider) Generate(ctx context.Context, mediaEvent tables.MediaEvent) (Job, error) {
	resp, err := getOpenAIClient().CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: env.GetEnvConfigs().ScriptModelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: mediaEvent.SystemPromptInstruction,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: mediaEvent.PromptInstruction,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		MaxTokens: env.GetEnvConfigs().ScriptMaxTokens,
	})
	if err != nil {
		log.Printf("correlationID: %s openai completion failed: %s", mediaEvent.CampaignID, err)
		return Job{Status: JOB_FAILED}, err
	}
	if len(resp.Choices) == 0 {
		return Job{Status: JOB_FAILED}, errors.New("openai returned no choices")
	}
	totalTokens := int64(resp.Usage.TotalTokens)
	return Job{
		Status:          JOB_DONE,
		MediaBytes:      []byte(resp.Choices[0].Message.Content),
		Units:           float64(totalTokens),
		UnitKind:        "tokens",
		CostCentsMicros: totalTokens * openAICostPerThousandTokens / 1000,
	}, nil
}

func (s OpenAIProvider) CheckStatus(ctx context.Context, job Job) (Job, error) {
	return job, nil
}
