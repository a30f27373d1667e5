package publisherdrivers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	env "github.com/viralos-core/v2/configuration"
	dal "github.com/viralos-core/v2/dal"
	tables "github.com/viralos-core/v2/dal/tables/v1"
)

type TikTokDriver struct{}

const tiktokApiBase = "https://open.tiktokapis.com"
const tiktokChunkSizeBytes = 10000000 // 10MB per upload chunk.
const tiktokCaptionMaxLen = 2200

var tiktokHttpClient = &http.Client{Timeout: 120 * time.Second}

type tiktokInitRequest struct {
	PostInfo struct {
		Title        string `json:"title"`
		PrivacyLevel string `json:"privacy_level"`
	} `json:"post_info"`
	SourceInfo struct {
		Source          string `json:"source"`
		VideoSize       int64  `json:"video_size"`
		ChunkSize       int64  `json:"chunk_size"`
		TotalChunkCount int64  `json:"total_chunk_count"`
	} `json:"source_info"`
}

type tiktokInitResponse struct {
	Data struct {
		PublishID string `json:"publish_id"`
		UploadURL string `json:"upload_url"`
	} `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type tiktokStatusResponse struct {
	Data struct {
		Status                   string  `json:"status"`
		PublicalyAvailablePostID []int64 `json:"publicaly_available_post_id"`
		FailReason               string  `json:"fail_reason"`
	} `json:"data"`
}

func (s TikTokDriver) Publish(pubCommand PublishCommand) (string, error) {
	campaignId := pubCommand.RootPublishEvent.CampaignID
	acc, err := dal.GetPublisherAccount(pubCommand.RootPublishEvent.OwnerAccountID, pubCommand.RootPublishEvent.PublisherProfileID)
	if err != nil {
		log.Printf("correlationID: %s error loading publisher account for TikTok driver: %s", campaignId, err)
		return "", err
	}

	contents, err := LoadPostContents(pubCommand)
	if err != nil {
		log.Printf("correlationID: %s error loading post contents for TikTok driver: %s", campaignId, err)
		return "", err
	}

	videoBytes, err := LoadAsBytes(pubCommand.FinalRenderMediaRoot.ContentLookupKey)
	if err != nil {
		log.Printf("correlationID: %s error loading final render bytes for TikTok driver: %s", campaignId, err)
		return "", err
	}

	if !dal.IsCallable(dal.RATE_API_TIKTOK_POST, env.GetEnvConfigs().PublishMaxRequestsPerMin) {
		return "", fmt.Errorf("rate limit breached: %s", dal.RATE_API_TIKTOK_POST)
	}

	publishId, uploadUrl, err := s.initUpload(campaignId, acc, contents, int64(len(videoBytes)))
	if err != nil {
		return "", err
	}

	err = s.uploadChunks(campaignId, uploadUrl, videoBytes)
	if err != nil {
		return "", err
	}

	return s.awaitPublish(campaignId, acc, publishId)
}

func (s TikTokDriver) initUpload(campaignId string, acc tables.AccountPublisher,
	contents PostContents, videoSize int64) (string, string, error) {
	initReq := tiktokInitRequest{}
	initReq.PostInfo.Title = contents.Caption(tiktokCaptionMaxLen)
	initReq.PostInfo.PrivacyLevel = "PUBLIC_TO_EVERYONE"
	initReq.SourceInfo.Source = "FILE_UPLOAD"
	initReq.SourceInfo.VideoSize = videoSize
	initReq.SourceInfo.ChunkSize = chunkSizeFor(videoSize)
	initReq.SourceInfo.TotalChunkCount = totalChunksFor(videoSize)

	body, _ := json.Marshal(initReq)
	req, err := http.NewRequest(http.MethodPost, tiktokApiBase+"/v2/post/publish/video/init/", bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+acc.OauthToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := tiktokHttpClient.Do(req)
	if err != nil {
		log.Printf("correlationID: %s error calling TikTok init: %s", campaignId, err)
		return "", "", err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", "", fmt.Errorf("%s: TikTok init rejected profile: %s", BAD_REQUEST_PROFILE_CODE, respBody)
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("TikTok init failed status %d: %s", resp.StatusCode, respBody)
	}
	initResp := tiktokInitResponse{}
	err = json.Unmarshal(respBody, &initResp)
	if err != nil {
		return "", "", err
	}
	if initResp.Data.PublishID == "" {
		return "", "", fmt.Errorf("TikTok init returned no publish id: %s %s", initResp.Error.Code, initResp.Error.Message)
	}
	return initResp.Data.PublishID, initResp.Data.UploadURL, nil
}

func (s TikTokDriver) uploadChunks(campaignId string, uploadUrl string, videoBytes []byte) error {
	videoSize := int64(len(videoBytes))
	chunkSize := chunkSizeFor(videoSize)
	for start := int64(0); start < videoSize; start += chunkSize {
		end := start + chunkSize
		if end > videoSize {
			end = videoSize
		}
		req, err := http.NewRequest(http.MethodPut, uploadUrl, bytes.NewReader(videoBytes[start:end]))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "video/mp4")
		req.Header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end-1, videoSize))
		req.ContentLength = end - start

		resp, err := tiktokHttpClient.Do(req)
		if err != nil {
			log.Printf("correlationID: %s error uploading TikTok chunk at %d: %s", campaignId, start, err)
			return err
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK &&
			resp.StatusCode != http.StatusPartialContent {
			return fmt.Errorf("TikTok chunk upload failed status %d at offset %d", resp.StatusCode, start)
		}
	}
	return nil
}

func (s TikTokDriver) awaitPublish(campaignId string, acc tables.AccountPublisher, publishId string) (string, error) {
	maxAttempts := env.GetEnvConfigs().ProviderMaxPollAttempts
	for attempt := 0; attempt < maxAttempts; attempt++ {
		time.Sleep(time.Duration(env.GetEnvConfigs().ProviderPollPeriodSec) * time.Second)
		body, _ := json.Marshal(map[string]string{"publish_id": publishId})
		req, err := http.NewRequest(http.MethodPost, tiktokApiBase+"/v2/post/publish/status/fetch/", bytes.NewReader(body))
		if err != nil {
			return "", err
		}
		req.Header.Set("Authorization", "Bearer "+acc.OauthToken)
		req.Header.Set("Content-Type", "application/json")

		resp, err := tiktokHttpClient.Do(req)
		if err != nil {
			log.Printf("correlationID: %s error polling TikTok publish status: %s", campaignId, err)
			continue
		}
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		statusResp := tiktokStatusResponse{}
		err = json.Unmarshal(respBody, &statusResp)
		if err != nil {
			return "", err
		}
		switch statusResp.Data.Status {
		case "PUBLISH_COMPLETE":
			if len(statusResp.Data.PublicalyAvailablePostID) > 0 {
				return fmt.Sprintf("%d", statusResp.Data.PublicalyAvailablePostID[0]), nil
			}
			return publishId, nil
		case "FAILED":
			return "", fmt.Errorf("TikTok publish failed: %s", statusResp.Data.FailReason)
		}
	}
	return "", fmt.Errorf("TikTok publish %s timed out awaiting completion", publishId)
}

func (s TikTokDriver) FetchPostMetrics(publishEvent tables.PublishEvent) (PostMetrics, error) {
	acc, err := dal.GetPublisherAccount(publishEvent.OwnerAccountID, publishEvent.PublisherProfileID)
	if err != nil {
		return PostMetrics{}, err
	}
	body, _ := json.Marshal(map[string]interface{}{
		"filters": map[string]interface{}{"video_ids": []string{publishEvent.RemotePostID}},
	})
	req, err := http.NewRequest(http.MethodPost,
		tiktokApiBase+"/v2/video/query/?fields=view_count,like_count,comment_count,share_count", bytes.NewReader(body))
	if err != nil {
		return PostMetrics{}, err
	}
	req.Header.Set("Authorization", "Bearer "+acc.OauthToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := tiktokHttpClient.Do(req)
	if err != nil {
		return PostMetrics{}, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return PostMetrics{}, fmt.Errorf("TikTok video query failed status %d: %s", resp.StatusCode, respBody)
	}

	queryResp := struct {
		Data struct {
			Videos []struct {
				ViewCount    int64 `json:"view_count"`
				LikeCount    int64 `json:"like_count"`
				CommentCount int64 `json:"comment_count"`
				ShareCount   int64 `json:"share_count"`
			} `json:"videos"`
		} `json:"data"`
	}{}
	err = json.Unmarshal(respBody, &queryResp)
	if err != nil {
		return PostMetrics{}, err
	}
	if len(queryResp.Data.Videos) == 0 {
		return PostMetrics{}, fmt.Errorf("TikTok video query returned no videos for %s", publishEvent.RemotePostID)
	}
	v := queryResp.Data.Videos[0]
	return PostMetrics{Views: v.ViewCount, Likes: v.LikeCount, Comments: v.CommentCount, Shares: v.ShareCount}, nil
}

func chunkSizeFor(videoSize int64) int64 {
	if videoSize < tiktokChunkSizeBytes {
		return videoSize
	}
	return tiktokChunkSizeBytes
}

func totalChunksFor(videoSize int64) int64 {
	chunkSize := chunkSizeFor(videoSize)
	if chunkSize == 0 {
		return 0
	}
	count := videoSize / chunkSize
	if videoSize%chunkSize != 0 {
		count++
	}
	return count
}
