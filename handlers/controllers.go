package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	dal "github.com/viralos-core/v2/dal"
	analytics "github.com/viralos-core/v2/service/analytics"
	authorization "github.com/viralos-core/v2/service/authorization"
	ingestion_service "github.com/viralos-core/v2/service/ingestion"
	requestModels "github.com/viralos-core/v2/service/models"
)

func HandlerHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Ok")
}

func isAuthorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == "password" // TODO, obviously replace this.
}

func HandlerIngestSource(w http.ResponseWriter, r *http.Request) {
	if !isAuthorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprintf(w, "Unauthorized.")
		return
	}

	if r.Method != "POST" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Route must be called with POST, given %s", r.Method)
		return
	}
	source := r.URL.Path[1:]
	campaignId, err := ingestion_service.SaveSourceEventToCampaign(source, r)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "{\"campaignId\":\"%s\"}", campaignId)
}

func HandlerCampaignStatus(w http.ResponseWriter, r *http.Request) {
	if !isAuthorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprintf(w, "Unauthorized.")
		return
	}
	campaignId := r.URL.Query().Get("campaignId")
	if campaignId == "" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "campaignId query parameter required")
		return
	}
	campaignItem, err := dal.GetCampaign(campaignId)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, err.Error())
		return
	}
	if campaignItem.CampaignID == "" {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "no campaign found for id %s", campaignId)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, "{\"campaignId\":\"%s\",\"status\":\"%s\"}", campaignItem.CampaignID, campaignItem.CampaignStatus)
}

func HandlerCampaignCosts(w http.ResponseWriter, r *http.Request) {
	if !isAuthorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprintf(w, "Unauthorized.")
		return
	}
	campaignId := r.URL.Query().Get("campaignId")
	if campaignId == "" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "campaignId query parameter required")
		return
	}
	costEntries, err := dal.GetCampaignCosts(campaignId)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, err.Error())
		return
	}
	totalCentsMicros, err := dal.SumCampaignCostCentsMicros(campaignId)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, err.Error())
		return
	}
	payload := struct {
		CampaignID           string          `json:"campaignId"`
		TotalCostCentsMicros int64           `json:"totalCostCentsMicros"`
		Entries              []dal.CostEntry `json:"entries"`
	}{campaignId, totalCentsMicros, costEntries}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func HandlerCampaignReport(w http.ResponseWriter, r *http.Request) {
	if !isAuthorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprintf(w, "Unauthorized.")
		return
	}
	campaignId := r.URL.Query().Get("campaignId")
	if campaignId == "" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "campaignId query parameter required")
		return
	}
	report, err := analytics.BuildCampaignReport(campaignId)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

func HandlerStoreChannelTokens(w http.ResponseWriter, r *http.Request) {
	if !isAuthorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprintf(w, "Unauthorized.")
		return
	}
	if r.Method != "POST" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Route must be called with POST, given %s", r.Method)
		return
	}
	decoder := json.NewDecoder(r.Body)
	var payload requestModels.ChannelTokens
	err := decoder.Decode(&payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, err.Error())
		return
	}
	if payload.AccountId == "" || payload.PublisherProfileId == "" || payload.AccessToken == "" {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "accountId, publisherProfileId, and accessToken are required")
		return
	}

	err = dal.UpdateOauthTokens(payload.AccountId, payload.PublisherProfileId,
		payload.AccessToken, payload.RefreshToken, payload.ExpiresAtEpochSec)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Ok")
}

func HandlerOauthCodeFlowStart(w http.ResponseWriter, r *http.Request) {
	// TODO: Invoke via post from SPA
	// Handle redirect from SPA from the returned authUrl
	// Ensure during setup-wizard to incrementally save publisherProfile details; so state isn't lost on callback.
	decoder := json.NewDecoder(r.Body)
	var payload requestModels.AuthorizationCodeState
	err := decoder.Decode(&payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, err.Error())
		return
	}

	auth := authorization.GoogleAuth{}
	authUrl, err := auth.StartOauthCodeFlow(payload.AccountId, payload.PublisherProfileId)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "{\"authUrl\":\"%s\"}", authUrl)
}

func HandlerOauthCodeCallback(w http.ResponseWriter, r *http.Request) {
	// TODO: Change this to a post endpoint
	code := r.FormValue("code")
	state := r.FormValue("state")
	data, err := base64.StdEncoding.DecodeString(state)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, err.Error())
		return
	}
	var payload requestModels.AuthorizationCodeState
	json.Unmarshal(data, &payload)

	auth := authorization.GoogleAuth{}
	_, err = auth.StoreAuthorizationCode(code, payload.AccountId, payload.PublisherProfileId)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "Received code: %v\r\nYou can now safely close this browser window.", code)
}
