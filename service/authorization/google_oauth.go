package authorization

import (
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"golang.org/x/net/context"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"

	dal "github.com/viralos-core/v2/dal"
)

type GoogleAuth struct{}

func (self *GoogleAuth) GetClient(bearerToken string, refreshToken string, expiresAtEpochSec int64, tokenType string) (*http.Client, error) {
	ctx := context.Background()
	config, err := self.getGoogleConfig()
	if err != nil {
		log.Printf("failed to load google config: %s", err)
		return nil, err
	}

	token := oauth2.Token{
		AccessToken:  bearerToken,
		RefreshToken: refreshToken,
		Expiry:       time.Unix(expiresAtEpochSec, 0),
		ExpiresIn:    expiresAtEpochSec,
		TokenType:    tokenType,
	}
	return config.Client(ctx, &token), err
}

func (self *GoogleAuth) getGoogleConfig() (*oauth2.Config, error) {
	credsBytes, err := os.ReadFile("creds_google_oauth.json") // TODO: Move this to env config
	if err != nil {
		log.Fatalf("Unable to load credentials file %v", err)
	}
	config, err := google.ConfigFromJSON(credsBytes, youtube.YoutubeScope, youtube.YoutubeUploadScope, youtube.YoutubepartnerScope)
	if err != nil {
		log.Fatalf("Unable to load config from json file %v", err)
	}
	domain := "http://localhost:8080" // TODO: Move this to env config
	config.RedirectURL = domain + "/v1/authcode/youtube/callback"
	return config, err
}

// Exchange the authorization code for an access token
func (self *GoogleAuth) exchangeToken(code string) (*oauth2.Token, error) {
	config, err := self.getGoogleConfig()
	if err != nil {
		log.Fatalf("Unable to load config from json %v", err)
	}
	tok, err := config.Exchange(context.Background(), code)
	if err != nil {
		log.Fatalf("Unable to retrieve token %v", err)
	}

	return tok, nil
}

// StartOauthCodeFlow returns the consent URL the operator visits to link a
// YouTube publisher profile.
func (self *GoogleAuth) StartOauthCodeFlow(accountId string, publisherProfileId string) (string, error) {
	config, err := self.getGoogleConfig()
	if err != nil {
		log.Fatalf("Unable to create google config: %v", err)
	}
	statePayload := fmt.Sprintf("{\"accountId\": \"%s\", \"publisherProfileId\": \"%s\"}", accountId, publisherProfileId)
	encodedState := base64.StdEncoding.EncodeToString([]byte(statePayload))
	authUrl := config.AuthCodeURL(encodedState, oauth2.AccessTypeOffline)
	// For users that are already authorized, no refresh token is vended.
	// By appending consent, user is treated as a "first-time" authorization,
	// and a refresh token is vended.
	authUrl += "&prompt=consent"
	if err != nil {
		log.Fatalf("Unable to generate authorization URL in web server: %v", err)
	}
	return authUrl, err
}

func (self *GoogleAuth) StoreAuthorizationCode(authCode string, accountId string, publisherProfileId string) (*oauth2.Token, error) {
	token, err := self.exchangeToken(authCode)
	if err != nil {
		log.Printf("error exchanging token to store authorization code: %s", err)
		return token, err
	}

	err = dal.UpdateOauthTokens(accountId, publisherProfileId, token.AccessToken, token.RefreshToken, token.Expiry.Unix())
	return token, err
}
