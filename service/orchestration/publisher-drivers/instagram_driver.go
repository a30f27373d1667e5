package publisherdrivers

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	env "github.com/viralos-core/v2/configuration"
	dal "github.com/viralos-core/v2/dal"
	tables "github.com/viralos-core/v2/dal/tables/v1"
)

type InstagramDriver struct{}

const instagramGraphBase = "https://graph.facebook.com/v21.0"
const instagramCaptionMaxLen = 2200
const instagramPresignExpiry = 1 * time.Hour

var instagramHttpClient = &http.Client{Timeout: 60 * time.Second}

func (s InstagramDriver) Publish(pubCommand PublishCommand) (string, error) {
	campaignId := pubCommand.RootPublishEvent.CampaignID
	acc, err := dal.GetPublisherAccount(pubCommand.RootPublishEvent.OwnerAccountID, pubCommand.RootPublishEvent.PublisherProfileID)
	if err != nil {
		log.Printf("correlationID: %s error loading publisher account for Instagram driver: %s", campaignId, err)
		return "", err
	}
	if acc.PublisherRemoteAccountID == "" {
		return "", fmt.Errorf("%s: Instagram profile missing business account id", BAD_REQUEST_PROFILE_CODE)
	}

	contents, err := LoadPostContents(pubCommand)
	if err != nil {
		log.Printf("correlationID: %s error loading post contents for Instagram driver: %s", campaignId, err)
		return "", err
	}

	// The container API pulls the video server-side, so hand it a
	// short-lived presigned bucket URL.
	videoUrl, err := PresignMediaURL(pubCommand.FinalRenderMediaRoot.ContentLookupKey, instagramPresignExpiry)
	if err != nil {
		return "", err
	}

	if !dal.IsCallable(dal.RATE_API_INSTAGRAM_POST, env.GetEnvConfigs().PublishMaxRequestsPerMin) {
		return "", fmt.Errorf("rate limit breached: %s", dal.RATE_API_INSTAGRAM_POST)
	}

	containerId, err := s.createMediaContainer(campaignId, acc, videoUrl, contents.Caption(instagramCaptionMaxLen))
	if err != nil {
		return "", err
	}

	err = s.awaitContainerReady(campaignId, acc, containerId)
	if err != nil {
		return "", err
	}

	return s.publishContainer(campaignId, acc, containerId)
}

func (s InstagramDriver) createMediaContainer(campaignId string, acc tables.AccountPublisher,
	videoUrl string, caption string) (string, error) {
	form := url.Values{}
	form.Set("media_type", "REELS")
	form.Set("video_url", videoUrl)
	form.Set("caption", caption)
	form.Set("access_token", acc.OauthToken)

	endpoint := fmt.Sprintf("%s/%s/media", instagramGraphBase, acc.PublisherRemoteAccountID)
	respBody, err := s.postForm(campaignId, endpoint, form)
	if err != nil {
		return "", err
	}

	container := struct {
		ID string `json:"id"`
	}{}
	err = json.Unmarshal(respBody, &container)
	if err != nil {
		return "", err
	}
	if container.ID == "" {
		return "", fmt.Errorf("Instagram container create returned no id: %s", respBody)
	}
	return container.ID, nil
}

func (s InstagramDriver) awaitContainerReady(campaignId string, acc tables.AccountPublisher, containerId string) error {
	maxAttempts := env.GetEnvConfigs().ProviderMaxPollAttempts
	for attempt := 0; attempt < maxAttempts; attempt++ {
		time.Sleep(time.Duration(env.GetEnvConfigs().ProviderPollPeriodSec) * time.Second)
		endpoint := fmt.Sprintf("%s/%s?fields=status_code&access_token=%s",
			instagramGraphBase, containerId, url.QueryEscape(acc.OauthToken))
		resp, err := instagramHttpClient.Get(endpoint)
		if err != nil {
			log.Printf("correlationID: %s error polling Instagram container: %s", campaignId, err)
			continue
		}
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		status := struct {
			StatusCode string `json:"status_code"`
		}{}
		err = json.Unmarshal(respBody, &status)
		if err != nil {
			return err
		}
		switch status.StatusCode {
		case "FINISHED":
			return nil
		case "ERROR", "EXPIRED":
			return fmt.Errorf("Instagram container %s entered state %s", containerId, status.StatusCode)
		}
	}
	return fmt.Errorf("Instagram container %s timed out processing", containerId)
}

func (s InstagramDriver) publishContainer(campaignId string, acc tables.AccountPublisher, containerId string) (string, error) {
	form := url.Values{}
	form.Set("creation_id", containerId)
	form.Set("access_token", acc.OauthToken)

	endpoint := fmt.Sprintf("%s/%s/media_publish", instagramGraphBase, acc.PublisherRemoteAccountID)
	respBody, err := s.postForm(campaignId, endpoint, form)
	if err != nil {
		return "", err
	}

	published := struct {
		ID string `json:"id"`
	}{}
	err = json.Unmarshal(respBody, &published)
	if err != nil {
		return "", err
	}
	if published.ID == "" {
		return "", fmt.Errorf("Instagram media publish returned no id: %s", respBody)
	}
	log.Printf("correlationID: %s published Instagram reel: %s", campaignId, published.ID)
	return published.ID, nil
}

func (s InstagramDriver) postForm(campaignId string, endpoint string, form url.Values) ([]byte, error) {
	resp, err := instagramHttpClient.Post(endpoint, "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()))
	if err != nil {
		log.Printf("correlationID: %s error calling Instagram graph api: %s", campaignId, err)
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%s: Instagram rejected profile: %s", BAD_REQUEST_PROFILE_CODE, respBody)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Instagram graph api failed status %d: %s", resp.StatusCode, respBody)
	}
	return respBody, nil
}

func (s InstagramDriver) FetchPostMetrics(publishEvent tables.PublishEvent) (PostMetrics, error) {
	acc, err := dal.GetPublisherAccount(publishEvent.OwnerAccountID, publishEvent.PublisherProfileID)
	if err != nil {
		return PostMetrics{}, err
	}
	endpoint := fmt.Sprintf("%s/%s?fields=like_count,comments_count&access_token=%s",
		instagramGraphBase, publishEvent.RemotePostID, url.QueryEscape(acc.OauthToken))
	resp, err := instagramHttpClient.Get(endpoint)
	if err != nil {
		return PostMetrics{}, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return PostMetrics{}, fmt.Errorf("Instagram media fields failed status %d: %s", resp.StatusCode, respBody)
	}
	fields := struct {
		LikeCount     int64 `json:"like_count"`
		CommentsCount int64 `json:"comments_count"`
	}{}
	err = json.Unmarshal(respBody, &fields)
	if err != nil {
		return PostMetrics{}, err
	}

	result := PostMetrics{Likes: fields.LikeCount, Comments: fields.CommentsCount}

	// Plays and shares only surface through the insights edge.
	insightsEndpoint := fmt.Sprintf("%s/%s/insights?metric=plays,shares&access_token=%s",
		instagramGraphBase, publishEvent.RemotePostID, url.QueryEscape(acc.OauthToken))
	insightsResp, err := instagramHttpClient.Get(insightsEndpoint)
	if err != nil {
		return result, nil
	}
	defer insightsResp.Body.Close()
	insightsBody, _ := io.ReadAll(insightsResp.Body)
	if insightsResp.StatusCode != http.StatusOK {
		return result, nil
	}
	insights := struct {
		Data []struct {
			Name   string `json:"name"`
			Values []struct {
				Value int64 `json:"value"`
			} `json:"values"`
		} `json:"data"`
	}{}
	if json.Unmarshal(insightsBody, &insights) != nil {
		return result, nil
	}
	for _, d := range insights.Data {
		if len(d.Values) == 0 {
			continue
		}
		switch d.Name {
		case "plays":
			result.Views = d.Values[0].Value
		case "shares":
			result.Shares = d.Values[0].Value
		}
	}
	return result, nil
}
