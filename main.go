package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"

	config "github.com/viralos-core/v2/configuration"
	dynamo_configuration "github.com/viralos-core/v2/configuration/dynamo"
	handlers "github.com/viralos-core/v2/handlers"
	manifest "github.com/viralos-core/v2/manifest"
	pubsub "github.com/viralos-core/v2/service/orchestration"
	heartbeat "github.com/viralos-core/v2/service/system/heartbeat"
)

const route_health = "/health"

// Oauth2 Flows
const route_youtube_oauth_start = "/v1/authcode/youtube" // start endpoint for enabling oauth code flow.
const route_youtube_oauth_callback = "/v1/authcode/youtube/callback"
const route_channel_tokens = "/v1/authcode/channel" // SPA-exchanged TikTok/Instagram tokens.

// Campaign ingestion sources
const route_source_storefront = "/v1/source/storefront"
const route_source_reviews = "/v1/source/reviews"
const route_source_prompt = "/v1/source/prompt"

// Campaign status and reporting
const route_campaign_status = "/v1/campaign/status"
const route_campaign_costs = "/v1/campaign/costs"
const route_campaign_report = "/v1/campaign/report"

func main() {
	godotenv.Load() // Provider API keys; non-fatal if absent.

	// Register Oauth callbacks
	http.HandleFunc(route_youtube_oauth_start, handlers.HandlerOauthCodeFlowStart)
	http.HandleFunc(route_youtube_oauth_callback, handlers.HandlerOauthCodeCallback)
	http.HandleFunc(route_channel_tokens, handlers.HandlerStoreChannelTokens)
	// Register ingestion handlers
	http.HandleFunc(route_health, handlers.HandlerHealthCheck)
	http.HandleFunc(route_source_storefront, handlers.HandlerIngestSource)
	http.HandleFunc(route_source_reviews, handlers.HandlerIngestSource)
	http.HandleFunc(route_source_prompt, handlers.HandlerIngestSource)
	// Register reporting handlers
	http.HandleFunc(route_campaign_status, handlers.HandlerCampaignStatus)
	http.HandleFunc(route_campaign_costs, handlers.HandlerCampaignCosts)
	http.HandleFunc(route_campaign_report, handlers.HandlerCampaignReport)

	config.GetEnvConfigs()
	dynamo_configuration.Init()
	manifest.GetManifestLoader()
	go pubsub.PollForLedgerUpdates()
	heartbeat.StartHeartbeatWatch()
	//go scaler.StartWatching() TODO Set this when ECS provisioned.
	log.Fatal(http.ListenAndServe(":8080", nil))
}
