package publisherdrivers

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	env "github.com/viralos-core/v2/configuration"
	dal "github.com/viralos-core/v2/dal"
	tables "github.com/viralos-core/v2/dal/tables/v1"
	auth "github.com/viralos-core/v2/service/authorization"
)

type YouTubeDriver struct{}

func (s YouTubeDriver) Publish(pubCommand PublishCommand) (string, error) {
	campaignId := pubCommand.RootPublishEvent.CampaignID
	acc, err := dal.GetPublisherAccount(pubCommand.RootPublishEvent.OwnerAccountID, pubCommand.RootPublishEvent.PublisherProfileID)
	if err != nil {
		log.Printf("correlationID: %s error loading publisher account for YouTube driver: %s", campaignId, err)
		return "", err
	}

	svc, err := s.newService(acc)
	if err != nil {
		log.Printf("correlationID: %s error creating youtube service for YouTube driver: %s", campaignId, err)
		return "", err
	}

	contents, err := LoadPostContents(pubCommand)
	if err != nil {
		log.Printf("correlationID: %s error loading post contents for YouTube driver: %s", campaignId, err)
		return "", err
	}
	return s.uploadMedia(campaignId, svc, contents, pubCommand.FinalRenderMediaRoot.ContentLookupKey)
}

func (s YouTubeDriver) newService(acc tables.AccountPublisher) (*youtube.Service, error) {
	googleAuthClient := auth.GoogleAuth{}
	client, err := googleAuthClient.GetClient(acc.OauthToken, acc.OauthRefreshToken,
		acc.OauthExpiryEpochSec, acc.OauthTokenType)
	if err != nil {
		return nil, err
	}
	return youtube.NewService(context.Background(), option.WithHTTPClient(client))
}

func (s YouTubeDriver) uploadMedia(campaignId string, svc *youtube.Service,
	contents PostContents, videoContentLookupKey string) (string, error) {
	err := TryDownloadWithRetry(videoContentLookupKey, 0)
	if err != nil {
		log.Printf("correlationID: %s error downloading final render: %s", campaignId, err)
		return "", err
	}
	videoFilename := s.getDescriptiveFilename(contents.Title)
	err = os.Rename(videoContentLookupKey, videoFilename)
	if err != nil {
		log.Printf("correlationID: %s error renaming file: %s", campaignId, err)
		return "", err
	}
	defer os.Remove(videoFilename)

	upload := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       contents.Title,
			Description: contents.Description,
			Tags:        contents.Hashtags,
		},
		Status: &youtube.VideoStatus{PrivacyStatus: "public", MadeForKids: false},
	}

	call := svc.Videos.Insert([]string{"snippet", "status"}, upload)
	file, err := os.Open(videoFilename)
	if err != nil {
		log.Printf("correlationID: %s error opening video file: %s", campaignId, err)
		return "", err
	}
	defer file.Close()

	if !dal.IsCallable(dal.RATE_API_YOUTUBE_UPLOAD, env.GetEnvConfigs().PublishMaxRequestsPerMin) {
		return "", fmt.Errorf("rate limit breached: %s", dal.RATE_API_YOUTUBE_UPLOAD)
	}

	uploadVideoResp, err := call.Media(file).Do()
	if err != nil {
		log.Printf("correlationID: %s error uploading YouTube video: %s", campaignId, err)
		return "", s.setAnyBadRequestCode(err)
	}

	log.Printf("correlationID: %s published YouTube video: %s", campaignId, uploadVideoResp.Id)
	return uploadVideoResp.Id, nil
}

func (s YouTubeDriver) getDescriptiveFilename(videoTitle string) string {
	// YouTube uses the filename as part of its SEO.
	sanitized := videoTitle
	for _, c := range []string{"'", "\""} {
		sanitized = strings.ReplaceAll(sanitized, c, "")
	}
	for _, c := range []string{" ", ",", ".", "!", "?", "|", "\\", "/", ":", "<", ">", "*"} {
		sanitized = strings.ReplaceAll(sanitized, c, "_")
	}
	return strings.TrimSpace(sanitized) + ".mp4"
}

func (s YouTubeDriver) FetchPostMetrics(publishEvent tables.PublishEvent) (PostMetrics, error) {
	acc, err := dal.GetPublisherAccount(publishEvent.OwnerAccountID, publishEvent.PublisherProfileID)
	if err != nil {
		return PostMetrics{}, err
	}
	svc, err := s.newService(acc)
	if err != nil {
		return PostMetrics{}, err
	}
	listResp, err := svc.Videos.List([]string{"statistics"}).Id(publishEvent.RemotePostID).Do()
	if err != nil {
		return PostMetrics{}, s.setAnyBadRequestCode(err)
	}
	if len(listResp.Items) == 0 {
		return PostMetrics{}, fmt.Errorf("YouTube video %s not found", publishEvent.RemotePostID)
	}
	stats := listResp.Items[0].Statistics
	if stats == nil {
		return PostMetrics{}, fmt.Errorf("YouTube video %s returned no statistics", publishEvent.RemotePostID)
	}
	return PostMetrics{
		Views:    int64(stats.ViewCount),
		Likes:    int64(stats.LikeCount),
		Comments: int64(stats.CommentCount),
	}, nil
}

func (s YouTubeDriver) setAnyBadRequestCode(err error) error {
	isCredentialError := strings.Contains(fmt.Sprintf("%s", err), "httpStatusCode=403") ||
		strings.Contains(fmt.Sprintf("%s", err), "httpStatusCode=401") ||
		strings.Contains(fmt.Sprintf("%s", err), "Error 403") ||
		strings.Contains(fmt.Sprintf("%s", err), "Error 401")
	if isCredentialError {
		return fmt.Errorf("%s: YouTube profile resulted in bad request: %s", BAD_REQUEST_PROFILE_CODE, err)
	}
	return err
}
