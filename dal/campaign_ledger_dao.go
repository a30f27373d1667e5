package dal

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"bitbucket.org/creachadair/stringset"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	env "github.com/viralos-core/v2/configuration"
	dynamo_configuration "github.com/viralos-core/v2/configuration/dynamo"
	campaign_table "github.com/viralos-core/v2/dal/tables/v1"

	"log"
	"reflect"
	"time"
)

func CreateCampaign(item campaign_table.Campaign) error {
	item.ScrapeEventsVersion = start_version
	item.MediaEventsVersion = start_version
	item.PublishEventsVersion = start_version
	item.CampaignStatus = campaign_table.NEW_CAMPAIGN
	item.CampaignCreatedAtEpochMilli = time.Now().UnixMilli()

	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		log.Printf("got error marshalling campaign item: %s", err)
		return err
	}
	tableName := dynamo_configuration.TABLE_CAMPAIGN_LEDGER

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(tableName),
	}
	_, err = svc.PutItem(input)
	if err != nil {
		log.Printf("got error calling PutItem item: %s", err)
		return err
	}

	return err
}

func GetCampaign(campaignId string) (campaign_table.Campaign, error) {
	result, err := svc.GetItem(&dynamodb.GetItemInput{
		TableName: aws.String(dynamo_configuration.TABLE_CAMPAIGN_LEDGER),
		Key: map[string]*dynamodb.AttributeValue{
			"CampaignID": {
				S: aws.String(campaignId),
			},
		},
	})

	resultItem := campaign_table.Campaign{}
	if err != nil {
		log.Printf("got error calling GetItem campaign item: %s", err)
		return resultItem, err
	}

	err = dynamodbattribute.UnmarshalMap(result.Item, &resultItem)
	if err != nil {
		log.Printf("error unmarshalling campaign item: %s", err)
		return resultItem, err
	}

	return resultItem, err
}

// Version conflicts on the ledger resolve through retry with exponential
// backoff. Zero or missing config values fall back to the defaults so
// partially loaded configs still retry.
func appendRetryPolicy(configMaxRetries int, configDelaySec int) (maxRetries int, minSeconds int) {
	maxRetries = configMaxRetries
	minSeconds = configDelaySec
	if maxRetries <= 0 {
		maxRetries = 5
	}
	if minSeconds <= 0 {
		minSeconds = 2
	}
	return maxRetries, minSeconds
}

func AppendCampaignScrapeEvents(campaignId string, scrapeEvents []campaign_table.ScrapeEvent) error {
	var err error
	retryCount := 0
	maxRetries, minSeconds := appendRetryPolicy(
		env.GetEnvConfigs().AppendLedgerMaxRetries, env.GetEnvConfigs().AppendLedgerRetryDelaySec)
	success := false
	canRetry := true
	for retryCount < maxRetries && !success && canRetry {
		err = appendCampaignScrapeEvents(campaignId, scrapeEvents)
		retryCount++
		if err != nil && hasVersionConflict(err) {
			time.Sleep(time.Duration(powInt(minSeconds, retryCount)) * time.Second)
		} else if err != nil {
			log.Printf("%s error appending scrape event to campaign: %s", campaignId, err)
			canRetry = false
		} else {
			success = true
		}
	}

	return err
}

func AppendCampaignMediaEvents(campaignId string, mediaEvents []campaign_table.MediaEvent) error {
	var err error
	retryCount := 0
	maxRetries, minSeconds := appendRetryPolicy(
		env.GetEnvConfigs().AppendLedgerMaxRetries, env.GetEnvConfigs().AppendLedgerRetryDelaySec)
	success := false
	canRetry := true
	for retryCount < maxRetries && !success && canRetry {
		err = appendCampaignMediaEvents(campaignId, mediaEvents)
		retryCount++
		if err != nil && hasVersionConflict(err) {
			time.Sleep(time.Duration(powInt(minSeconds, retryCount)) * time.Second)
		} else if err != nil {
			log.Printf("%s error appending media event to campaign: %s", campaignId, err)
			canRetry = false
		} else {
			success = true
		}
	}

	return err
}

func AppendCampaignPublishEvents(campaignId string, publishEvents []campaign_table.PublishEvent) error {
	var err error
	retryCount := 0
	maxRetries, minSeconds := appendRetryPolicy(
		env.GetEnvConfigs().AppendLedgerMaxRetries, env.GetEnvConfigs().AppendLedgerRetryDelaySec)
	success := false
	canRetry := true
	for retryCount < maxRetries && !success && canRetry {
		err = appendCampaignPublishEvents(campaignId, publishEvents)
		retryCount++
		if err != nil && hasVersionConflict(err) {
			time.Sleep(time.Duration(powInt(minSeconds, retryCount)) * time.Second)
		} else if err != nil {
			log.Printf("%s error appending publish event to campaign: %s", campaignId, err)
			canRetry = false
		} else {
			success = true
		}
	}

	return err
}

func appendCampaignScrapeEvents(campaignId string, scrapeEvents []campaign_table.ScrapeEvent) error {
	campaignItem, err := GetCampaign(campaignId)
	if err != nil {
		log.Printf("%s error fetching campaign: %s", campaignId, err)
		return err
	}

	anyExistingScrapeEvents, err := campaignItem.GetExistingScrapeEvents()
	if err != nil {
		log.Printf("%s error fetching existing scrape events: %s", campaignId, err)
		return err
	}

	setEvents := joinScrapeEventSet(anyExistingScrapeEvents, scrapeEvents)
	joinedEventsJson, err := json.Marshal(setEvents)
	if err != nil {
		log.Printf("%s error marshalling joined scrapeEvents: %s", campaignId, err)
		return err
	}
	campaignItem.ScrapeEvents = string(joinedEventsJson)
	const fieldKeyScrape = "ScrapeEvents"
	const versionKeyScrape = "ScrapeEventsVersion"
	err = updateCampaignEvents(campaignItem, fieldKeyScrape, versionKeyScrape)
	return err
}

func appendCampaignMediaEvents(campaignId string, mediaEvents []campaign_table.MediaEvent) error {
	campaignItem, err := GetCampaign(campaignId)
	if err != nil {
		log.Printf("%s error fetching campaign: %s", campaignId, err)
		return err
	}

	anyExistingMediaEvents, err := campaignItem.GetExistingMediaEvents()
	if err != nil {
		log.Printf("%s error fetching existing media events: %s", campaignId, err)
		return err
	}

	setEvents := joinMediaEventSet(anyExistingMediaEvents, mediaEvents)
	joinedEventsJson, err := json.Marshal(setEvents)
	if err != nil {
		log.Printf("%s error marshalling joined mediaEvents: %s", campaignId, err)
		return err
	}
	campaignItem.MediaEvents = string(joinedEventsJson)
	const fieldKeyMedia = "MediaEvents"
	const versionKeyMedia = "MediaEventsVersion"
	err = updateCampaignEvents(campaignItem, fieldKeyMedia, versionKeyMedia)
	return err
}

func appendCampaignPublishEvents(campaignId string, publishEvents []campaign_table.PublishEvent) error {
	campaignItem, err := GetCampaign(campaignId)
	if err != nil {
		log.Printf("%s error fetching campaign: %s", campaignId, err)
		return err
	}

	anyExistingPublishEvents, err := campaignItem.GetExistingPublishEvents()
	if err != nil {
		log.Printf("%s error fetching existing publish events: %s", campaignId, err)
		return err
	}

	setEvents := joinPublishEventSet(anyExistingPublishEvents, publishEvents)
	joinedEventsJson, err := json.Marshal(setEvents)
	if err != nil {
		log.Printf("%s error marshalling joined publishEvents: %s", campaignId, err)
		return err
	}
	campaignItem.PublishEvents = string(joinedEventsJson)
	const fieldKeyPublish = "PublishEvents"
	const versionKeyPublish = "PublishEventsVersion"
	err = updateCampaignEvents(campaignItem, fieldKeyPublish, versionKeyPublish)
	return err
}

func hasVersionConflict(err error) bool {
	if err == nil {
		return false
	}
	if aerr, ok := err.(awserr.Error); ok {
		return aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException
	}
	return false
}

func powInt(x, y int) int {
	return int(math.Pow(float64(x), float64(y)))
}

func updateCampaignEvents(campaignEntry campaign_table.Campaign, fieldKey string, versionKey string) error {

	updatedValue := getField(&campaignEntry, fieldKey)
	// Check to see that no one updated before us.
	oldVersionNumber := getField(&campaignEntry, versionKey).Int()
	newVersionNumber := oldVersionNumber + 1
	input := &dynamodb.UpdateItemInput{
		Key: map[string]*dynamodb.AttributeValue{
			"CampaignID": {
				S: aws.String(campaignEntry.CampaignID),
			},
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":r": {
				S: aws.String(updatedValue.String()),
			},
			":v": {
				N: aws.String(strconv.FormatInt(newVersionNumber, 10)),
			},
			":ov": {
				N: aws.String(strconv.FormatInt(oldVersionNumber, 10)),
			},
		},
		TableName:           aws.String(dynamo_configuration.TABLE_CAMPAIGN_LEDGER),
		ReturnValues:        aws.String("NONE"),
		UpdateExpression:    aws.String(fmt.Sprintf("SET %s = :r, %s = :v", fieldKey, versionKey)),
		ConditionExpression: aws.String(fmt.Sprintf("%s = :ov", versionKey)),
	}

	_, err := svc.UpdateItem(input)
	if err != nil && !hasVersionConflict(err) {
		log.Printf("%s error calling UpdateItem: %s", campaignEntry.CampaignID, err)
	}
	return err
}

func SetCampaignStatus(campaignId string, status campaign_table.CampaignStatus) error {
	input := &dynamodb.UpdateItemInput{
		Key: map[string]*dynamodb.AttributeValue{
			"CampaignID": {
				S: aws.String(campaignId),
			},
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":s": {
				S: aws.String(string(status)),
			},
		},
		TableName:        aws.String(dynamo_configuration.TABLE_CAMPAIGN_LEDGER),
		ReturnValues:     aws.String("NONE"),
		UpdateExpression: aws.String("SET CampaignStatus = :s"),
	}

	_, err := svc.UpdateItem(input)
	if err != nil {
		log.Printf("%s error setting campaign status: %s", campaignId, err)
	}
	return err
}

func SetCampaignBrand(campaignId string, brandId string) error {
	input := &dynamodb.UpdateItemInput{
		Key: map[string]*dynamodb.AttributeValue{
			"CampaignID": {
				S: aws.String(campaignId),
			},
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":b": {
				S: aws.String(brandId),
			},
		},
		TableName:        aws.String(dynamo_configuration.TABLE_CAMPAIGN_LEDGER),
		ReturnValues:     aws.String("NONE"),
		UpdateExpression: aws.String("SET BrandID = :b"),
	}

	_, err := svc.UpdateItem(input)
	if err != nil {
		log.Printf("%s error setting campaign brand: %s", campaignId, err)
	}
	return err
}

func getField(v *campaign_table.Campaign, field string) reflect.Value {
	r := reflect.ValueOf(v)
	f := reflect.Indirect(r).FieldByName(field)
	return f
}

func joinScrapeEventSet(s1 []campaign_table.ScrapeEvent, s2 []campaign_table.ScrapeEvent) []campaign_table.ScrapeEvent {
	result := []campaign_table.ScrapeEvent{}
	existing := stringset.New()
	for _, e := range s1 {
		existing.Add(e.GetEventID())
		result = append(result, e)
	}

	for _, e := range s2 {
		if !existing.Contains(e.GetEventID()) {
			result = append(result, e)
		}
	}
	return result
}

func joinMediaEventSet(s1 []campaign_table.MediaEvent, s2 []campaign_table.MediaEvent) []campaign_table.MediaEvent {
	result := []campaign_table.MediaEvent{}
	existing := stringset.New()
	for _, e := range s1 {
		existing.Add(e.GetEventID())
		result = append(result, e)
	}

	for _, e := range s2 {
		if !existing.Contains(e.GetEventID()) {
			result = append(result, e)
		}
	}
	return result
}

func joinPublishEventSet(s1 []campaign_table.PublishEvent, s2 []campaign_table.PublishEvent) []campaign_table.PublishEvent {
	result := []campaign_table.PublishEvent{}
	existing := stringset.New()
	for _, e := range s1 {
		existing.Add(e.GetEventID())
		result = append(result, e)
	}

	for _, e := range s2 {
		if !existing.Contains(e.GetEventID()) {
			result = append(result, e)
		}
	}
	return result
}
