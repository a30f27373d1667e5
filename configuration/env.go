package configuration

import (
	"log"
	"os"
	"sync"

	"gopkg.in/yaml.v2"
)

type EnvConfigVals struct {
	DefaultPublisherWatermarkText string `yaml:"DefaultPublisherWatermarkText"`
	AssignmentLockMilliTTL        int64  `yaml:"AssignmentLockMilliTTL"`
	PublishLockMilliTTL           int64  `yaml:"PublishLockMilliTTL"`
	AppendLedgerMaxRetries        int    `yaml:"AppendLedgerMaxRetries"`
	AppendLedgerRetryDelaySec     int    `yaml:"AppendLedgerRetryDelaySec"`
	LedgerQueueName               string `yaml:"LedgerQueueName"`
	PollVisibilityTimeoutSec      int64  `yaml:"PollVisibilityTimeoutSec"`
	PollWaitSec                   int64  `yaml:"PollWaitSec"`
	PollPeriodMilli               int64  `yaml:"PollPeriodMilli"`
	MaxMessagesPerPoll            int64  `yaml:"MaxMessagesPerPoll"`
	MaxConsumers                  int    `yaml:"MaxConsumers"`
	SNSCampaignTopic              string `yaml:"SNSCampaignTopic"`
	S3MediaBucket                 string `yaml:"S3MediaBucket"`

	// Scraper tuning.
	ScrapeMaxProductsPerBrand int   `yaml:"ScrapeMaxProductsPerBrand"`
	ScrapeMaxRetries          int   `yaml:"ScrapeMaxRetries"`
	ScrapeDelayMinMilli       int64 `yaml:"ScrapeDelayMinMilli"`
	ScrapeDelayMaxMilli       int64 `yaml:"ScrapeDelayMaxMilli"`
	ScrapeTimeoutSec          int64 `yaml:"ScrapeTimeoutSec"`
	ScrapeMaxRequestsPerMin   int64 `yaml:"ScrapeMaxRequestsPerMin"`
	ScrapeUseBrowserFallback  bool  `yaml:"ScrapeUseBrowserFallback"`

	// Generation tuning.
	ScriptModelName         string `yaml:"ScriptModelName"`
	ScriptMaxTokens         int    `yaml:"ScriptMaxTokens"`
	ProviderPollPeriodSec   int64  `yaml:"ProviderPollPeriodSec"`
	ProviderMaxPollAttempts int    `yaml:"ProviderMaxPollAttempts"`

	// Publish tuning.
	PublishMaxRequestsPerMin int64 `yaml:"PublishMaxRequestsPerMin"`

	// Render tuning.
	RenderWidth  int `yaml:"RenderWidth"`
	RenderHeight int `yaml:"RenderHeight"`
	RenderFPS    int `yaml:"RenderFPS"`

	// Render farm scaling.
	RenderFarmClusterName     string   `yaml:"RenderFarmClusterName"`
	RenderFarmTaskDefinition  string   `yaml:"RenderFarmTaskDefinition"`
	RenderFarmMaxTasks        int      `yaml:"RenderFarmMaxTasks"`
	RenderFarmMessagesPerTask int      `yaml:"RenderFarmMessagesPerTask"`
	RenderFarmSubnets         []string `yaml:"RenderFarmSubnets"`
}

var configSync sync.Once
var EnvConfigs *EnvConfigVals

func GetEnvConfigs() *EnvConfigVals {
	if EnvConfigs != nil {
		return EnvConfigs
	}
	configSync.Do(func() {
		var configFile []byte
		var err error
		if os.Getenv("env") == "" || os.Getenv("env") != "prod" {
			configFile, err = os.ReadFile("./configuration/env-dev.yml")
		} else {
			configFile, err = os.ReadFile("./configuration/env-prod.yml")
		}

		if err != nil {
			log.Fatalf("failed to load config file: %s", err)
		}

		var vals EnvConfigVals
		err = yaml.Unmarshal(configFile, &vals)
		if err != nil {
			log.Fatalf("failed to unmarshall config file values: %s", err)
		}
		EnvConfigs = &vals
	})
	return EnvConfigs
}
