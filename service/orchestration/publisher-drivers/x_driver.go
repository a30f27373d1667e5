package publisherdrivers

import (
	"context"
	"fmt"
	"log"

	"github.com/michimani/gotwi"
	"github.com/michimani/gotwi/fields"
	"github.com/michimani/gotwi/resources"
	"github.com/michimani/gotwi/tweet/managetweet"
	managetypes "github.com/michimani/gotwi/tweet/managetweet/types"
	"github.com/michimani/gotwi/tweet/tweetlookup"
	lookuptypes "github.com/michimani/gotwi/tweet/tweetlookup/types"

	env "github.com/viralos-core/v2/configuration"
	dal "github.com/viralos-core/v2/dal"
	tables "github.com/viralos-core/v2/dal/tables/v1"
)

type XDriver struct{}

const xCaptionMaxLen = 280

func (s XDriver) Publish(pubCommand PublishCommand) (string, error) {
	campaignId := pubCommand.RootPublishEvent.CampaignID
	acc, err := dal.GetPublisherAccount(pubCommand.RootPublishEvent.OwnerAccountID, pubCommand.RootPublishEvent.PublisherProfileID)
	if err != nil {
		log.Printf("correlationID: %s error loading publisher account for X driver: %s", campaignId, err)
		return "", err
	}

	contents, err := LoadPostContents(pubCommand)
	if err != nil {
		log.Printf("correlationID: %s error loading post contents for X driver: %s", campaignId, err)
		return "", err
	}

	if !dal.IsCallable(dal.RATE_API_X_POST, env.GetEnvConfigs().PublishMaxRequestsPerMin) {
		return "", fmt.Errorf("rate limit breached: %s", dal.RATE_API_X_POST)
	}

	return s.publishPost(campaignId, acc, contents)
}

func (s XDriver) newClient(acc tables.AccountPublisher) (*gotwi.Client, error) {
	// TODO: Move PublisherAPISecretID to be a global-service config.
	in := &gotwi.NewClientInput{
		AuthenticationMethod: gotwi.AuthenMethodOAuth1UserContext,
		OAuthToken:           acc.OauthToken,
		OAuthTokenSecret:     acc.OauthRefreshToken,
		APIKey:               acc.PublisherAPISecretID,
		APIKeySecret:         acc.PublisherAPISecretKey,
	}
	return gotwi.NewClient(in)
}

// TODO: attach the final render via the v1.1 chunked media upload endpoint
// once gotwi exposes media endpoints; until then the post carries the
// caption only.
func (s XDriver) publishPost(campaignId string, acc tables.AccountPublisher, contents PostContents) (string, error) {
	c, err := s.newClient(acc)
	if err != nil {
		log.Printf("correlationID: %s error creating X client: %s", campaignId, err)
		return "", fmt.Errorf("%s: X client rejected profile credentials: %s", BAD_REQUEST_PROFILE_CODE, err)
	}
	p := &managetypes.CreateInput{
		Text: gotwi.String(contents.Caption(xCaptionMaxLen)),
	}

	res, err := managetweet.Create(context.Background(), c, p)
	if err != nil {
		return "", err
	}

	postId := gotwi.StringValue(res.Data.ID)
	log.Printf("correlationID: %s posted to X: %s", campaignId, postId)
	return postId, nil
}

func (s XDriver) FetchPostMetrics(publishEvent tables.PublishEvent) (PostMetrics, error) {
	acc, err := dal.GetPublisherAccount(publishEvent.OwnerAccountID, publishEvent.PublisherProfileID)
	if err != nil {
		return PostMetrics{}, err
	}
	c, err := s.newClient(acc)
	if err != nil {
		return PostMetrics{}, err
	}
	p := &lookuptypes.GetInput{
		ID:          publishEvent.RemotePostID,
		TweetFields: fields.TweetFieldList{fields.TweetFieldPublicMetrics},
	}
	res, err := tweetlookup.Get(context.Background(), c, p)
	if err != nil {
		return PostMetrics{}, err
	}
	if res.Data.PublicMetrics == nil {
		return PostMetrics{}, fmt.Errorf("X post %s returned no public metrics", publishEvent.RemotePostID)
	}
	return xPostMetrics(res.Data.PublicMetrics), nil
}

// Impressions only surface through non-public metrics on owned tweets, so
// Views stays zero at this API tier. Quote tweets count as shares.
func xPostMetrics(metrics *resources.TweetPublicMetrics) PostMetrics {
	return PostMetrics{
		Likes:    int64(gotwi.IntValue(metrics.LikeCount)),
		Comments: int64(gotwi.IntValue(metrics.ReplyCount)),
		Shares:   int64(gotwi.IntValue(metrics.RetweetCount) + gotwi.IntValue(metrics.QuoteCount)),
	}
}
