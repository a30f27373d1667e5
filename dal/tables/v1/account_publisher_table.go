package v1

type ChannelName string

const ACCOUNT_DETAILS_RESERVED = "ReservedForAccountDetails"
const (
	Channel_Reserved_Account ChannelName = ACCOUNT_DETAILS_RESERVED
	Channel_TikTok           ChannelName = "TikTok"
	Channel_Instagram        ChannelName = "Instagram"
	Channel_YouTube          ChannelName = "YouTube"
	Channel_X                ChannelName = "X"
)

type SubscriptionStatus string

const (
	EXPIRED_BASIC   SubscriptionStatus = "ExpiredBasicSubscription"
	EXPIRED_PREMIUM SubscriptionStatus = "ExpiredPremiumSubscription"
	VALID_BASIC     SubscriptionStatus = "ValidBasicSubscription"
	VALID_PREMIUM   SubscriptionStatus = "ValidPremiumSubscription"
	EVERGREEN_ADMIN SubscriptionStatus = "AdminSubscription" // never expire
)

type AccountPublisher struct {
	// Required
	AccountID               string // email, phone, social sub identity
	PublisherProfileID      string // guid. Also ACCOUNT_DETAILS_RESERVED
	ChannelName             ChannelName
	LastPublishAtEpochMilli int64

	// Optional - Account specific
	AccountSubscriptionStatus SubscriptionStatus

	// Optional - PublisherProfile specific
	PublisherAPISecretID     string
	PublisherAPISecretKey    string
	PublisherRemoteAccountID string // platform-side id: IG business account, TikTok open id, ...
	OauthToken               string
	OauthRefreshToken        string
	OauthTokenType           string
	OauthExpiryEpochSec      int64
	PublisherNiche           string
	PublisherLanguage        string // ISO 639 https://en.wikipedia.org/wiki/List_of_ISO_639_language_codes
	PublisherWatermarkText   string
	AssignmentLockID         string // ID of the process using the lock
	AssignmentLockTTL        int64  // Time-in-future for when lock can be forcefully released.
	PublishLockID            string
	PublishLockTTL           int64
}
