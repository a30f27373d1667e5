package dal

import (
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/google/uuid"
	dynamo_configuration "github.com/viralos-core/v2/configuration/dynamo"
)

// CostEntry is one billable provider call attributed to a campaign.
type CostEntry struct {
	CampaignID          string
	CostEntryID         string // <epochMilli>.<guid> keeps entries time-sorted.
	ProviderName        string
	Operation           string  // script, avatar, voice, broll, publish, ...
	Units               float64 // tokens, seconds of video, characters of speech; fractional for timed media.
	UnitKind            string
	CostCentsMicros     int64 // cost in millionths of a cent; avoids float drift.
	CreatedAtEpochMilli int64
}

func RecordCost(entry CostEntry) error {
	entry.CreatedAtEpochMilli = time.Now().UnixMilli()
	if entry.CostEntryID == "" {
		entry.CostEntryID = fmt.Sprintf("%d.%s", entry.CreatedAtEpochMilli, uuid.New().String())
	}

	av, err := dynamodbattribute.MarshalMap(entry)
	if err != nil {
		log.Printf("%s got error marshalling cost entry: %s", entry.CampaignID, err)
		return err
	}

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(dynamo_configuration.TABLE_COST_LEDGER),
	}
	_, err = svc.PutItem(input)
	if err != nil {
		log.Printf("%s got error calling PutItem cost entry: %s", entry.CampaignID, err)
		return err
	}

	return err
}

// GetCampaignCosts returns every cost entry for a campaign, oldest first.
func GetCampaignCosts(campaignId string) ([]CostEntry, error) {
	results := []CostEntry{}
	var lastEvaluatedKey map[string]*dynamodb.AttributeValue
	for {
		queryInput := &dynamodb.QueryInput{
			TableName:              aws.String(dynamo_configuration.TABLE_COST_LEDGER),
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
			log.Printf("%s unable to query cost entries: %s", campaignId, err)
			return results, err
		}
		for _, i := range queryOutput.Items {
			tmpItem := CostEntry{}
			err = dynamodbattribute.UnmarshalMap(i, &tmpItem)
			if err != nil {
				log.Printf("%s error unmarshalling cost entry: %s", campaignId, err)
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

// SumCampaignCostCentsMicros totals a campaign's spend.
func SumCampaignCostCentsMicros(campaignId string) (int64, error) {
	entries, err := GetCampaignCosts(campaignId)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range entries {
		total += e.CostCentsMicros
	}
	return total, nil
}
