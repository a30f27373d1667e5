package models

import "time"

// DynamoCDC is the change-data-capture record emitted by the campaign
// table stream. Only the keys and version counters are read; the full
// campaign is always re-fetched from the table.
type DynamoCDC struct {
	EventID      string `json:"eventID"`
	EventName    string `json:"eventName"`
	EventVersion string `json:"eventVersion"`
	EventSource  string `json:"eventSource"`
	AwsRegion    string `json:"awsRegion"`
	Dynamodb     struct {
		ApproximateCreationDateTime int `json:"ApproximateCreationDateTime"`
		Keys                        struct {
			CampaignID struct {
				S string `json:"S"`
			} `json:"CampaignID"`
		} `json:"Keys"`
		NewImage struct {
			CampaignID struct {
				S string `json:"S"`
			} `json:"CampaignID"`
			CampaignStatus struct {
				S string `json:"S"`
			} `json:"CampaignStatus"`
			TriggerEventSource struct {
				S string `json:"S"`
			} `json:"TriggerEventSource"`
			TriggerEventContentHash struct {
				S string `json:"S"`
			} `json:"TriggerEventContentHash"`
			ScrapeEventsVersion struct {
				N string `json:"N"`
			} `json:"ScrapeEventsVersion"`
			MediaEventsVersion struct {
				N string `json:"N"`
			} `json:"MediaEventsVersion"`
			PublishEventsVersion struct {
				N string `json:"N"`
			} `json:"PublishEventsVersion"`
			ScrapeEvents struct {
				Null bool   `json:"NULL"`
				S    string `json:"S"`
			} `json:"ScrapeEvents"`
			MediaEvents struct {
				Null bool   `json:"NULL"`
				S    string `json:"S"`
			} `json:"MediaEvents"`
			PublishEvents struct {
				Null bool   `json:"NULL"`
				S    string `json:"S"`
			} `json:"PublishEvents"`
			CampaignCreatedAtEpochMilli struct {
				N string `json:"N"`
			} `json:"CampaignCreatedAtEpochMilli"`
		} `json:"NewImage"`
		SequenceNumber string `json:"SequenceNumber"`
		SizeBytes      int    `json:"SizeBytes"`
		StreamViewType string `json:"StreamViewType"`
	} `json:"dynamodb"`
	EventSourceARN string `json:"eventSourceARN"`
}

// S3CDC is the media-bucket object-created notification. The object key
// is a content lookup key: <MediaType>.<CampaignID>.<guid>.
type S3CDC struct {
	Records []struct {
		EventVersion string `json:"eventVersion"`
		EventSource  string `json:"eventSource"`
		AwsRegion    string `json:"awsRegion"`
		EventName    string `json:"eventName"`
		S3           struct {
			Bucket struct {
				Name string `json:"name"`
				Arn  string `json:"arn"`
			} `json:"bucket"`
			Object struct {
				Key       string `json:"key"`
				Size      int64  `json:"size"`
				ETag      string `json:"eTag"`
				Sequencer string `json:"sequencer"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

type SQSMessage struct {
	Type             string    `json:"Type"`
	MessageID        string    `json:"MessageId"`
	TopicArn         string    `json:"TopicArn"`
	Message          string    `json:"Message"`
	Timestamp        time.Time `json:"Timestamp"`
	SignatureVersion string    `json:"SignatureVersion"`
	Signature        string    `json:"Signature"`
	SigningCertURL   string    `json:"SigningCertURL"`
	UnsubscribeURL   string    `json:"UnsubscribeURL"`
}
