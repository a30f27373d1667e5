package models

type AuthorizationCodeState struct {
	AccountId          string `json:"accountId"`
	PublisherProfileId string `json:"publisherProfileId"`
}

// TODO: see HandlerOauthCodeCallback
// Should be passed as body from SPA
type AuthorizationCodeCallback struct {
	Code         string `json:"code"`
	EncodedState string `json:"encodedState"`
}

// Tokens exchanged client-side for channels without a server code flow
// (TikTok, Instagram). The SPA posts them here for storage.
type ChannelTokens struct {
	AccountId          string `json:"accountId"`
	PublisherProfileId string `json:"publisherProfileId"`
	AccessToken        string `json:"accessToken"`
	RefreshToken       string `json:"refreshToken"`
	ExpiresAtEpochSec  int64  `json:"expiresAtEpochSec"`
}
