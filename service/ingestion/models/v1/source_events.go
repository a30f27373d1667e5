package models

type StorefrontRequest struct {
	Source             string `json:"source"`
	TargetLanguage     string `json:"targetLanguage"`
	StorefrontUrl      string `json:"storefrontUrl"`
	DistributionFormat string `json:"distributionFormat"` // ShortVideo, TestimonialVideo
}

type ReviewDumpRequest struct {
	Source         string `json:"source"`
	TargetLanguage string `json:"targetLanguage"`
	StorefrontUrl  string `json:"storefrontUrl"`
	ReviewsText    string `json:"reviewsText"`
}

type CustomPromptRequest struct {
	Source         string `json:"source"`
	TargetLanguage string `json:"targetLanguage"`
	PromptText     string `json:"promptText"`
}
