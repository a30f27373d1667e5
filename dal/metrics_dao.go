package dal

import (
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	dynamo_configuration "github.com/viralos-core/v2/configuration/dynamo"
)

// ChannelMetricsEntry is the latest engagement snapshot for one published
// post. Overwritten on every analytics pass.
type ChannelMetricsEntry struct {
	CampaignID            string
	MetricKey             string // <channel>.<rootMediaEventId>
	DistributionChannel   string
	RemotePostID          string
	PublisherProfileID    string
	Views                 int64
	Likes                 int64
	Comments              int64
	Shares                int64
	EngagementRate        float64 // (likes+comments+shares)/views
	PublishedAtEpochMilli int64
	SnapshotAtEpochMilli  int64
}

func MetricKey(channel string, rootMediaEventId string) string {
	return fmt.Sprintf("%s.%s", channel, rootMediaEventId)
}

func RecordChannelMetrics(entry ChannelMetricsEntry) error {
	entry.SnapshotAtEpochMilli = time.Now().UnixMilli()
	av, err := dynamodbattribute.MarshalMap(entry)
	if err != nil {
		log.Printf("%s got error marshalling metrics entry: %s", entry.CampaignID, err)
		return err
	}

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(dynamo_configuration.TABLE_CHANNEL_METRICS),
	}
	_, err = svc.PutItem(input)
	if err != nil {
		log.Printf("%s got error calling PutItem metrics entry: %s", entry.CampaignID, err)
		return err
	}

	return err
}

// GetCampaignMetrics returns every channel snapshot for a campaign.
func GetCampaignMetrics(campaignId string) ([]ChannelMetricsEntry, error) {
	results := []ChannelMetricsEntry{}
	var lastEvaluatedKey map[string]*dynamodb.AttributeValue
	for {
		queryInput := &dynamodb.QueryInput{
			TableName:              aws.String(dynamo_configuration.TABLE_CHANNEL_METRICS),
			KeyConditionExpression: aws.String("CampaignID = :c"),
			ScanIndexForward:       aws.Bool(true),
			ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
				":c": {
					S: aws.String(campaignId),
				},
			},
		}
		if lastEvaluatedKey != nil {
			queryInput.SetExclusiveStartKey(lastEvaluatedKey)
		}
		queryOutput, err := svc.Query(queryInput)
		if err != nil {
			log.Printf("%s unable to query metrics entries: %s", campaignId, err)
			return results, err
		}
		for _, i := range queryOutput.Items {
			tmpItem := ChannelMetricsEntry{}
			err = dynamodbattribute.UnmarshalMap(i, &tmpItem)
			if err != nil {
				log.Printf("%s error unmarshalling metrics entry: %s", campaignId, err)
				return results, err
			}
			results = append(results, tmpItem)
		}
		if len(queryOutput.LastEvaluatedKey) == 0 {
			break
		}
		lastEvaluatedKey = queryOutput.LastEvaluatedKey
	}
	return results, nil
}
