package dal

import (
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	dynamo_configuration "github.com/viralos-core/v2/configuration/dynamo"

	"log"
)

type PageHashEntry struct {
	PageHash string
	TTL      int64
}

// CreatePageHashEntry records a fetched page's content hash so unchanged
// pages are skipped on the next crawl.
func CreatePageHashEntry(rawContentHash string) error {
	const threeDaysTTL = 259200000
	entry := PageHashEntry{
		PageHash: rawContentHash,
		TTL:      time.Now().UnixMilli() + threeDaysTTL,
	}
	av, err := dynamodbattribute.MarshalMap(entry)
	if err != nil {
		log.Printf("got error marshalling page hash entry: %s", err)
		return err
	}
	tableName := dynamo_configuration.TABLE_DEDUPE_PAGES

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(tableName),
	}
	_, err = svc.PutItem(input)
	if err != nil {
		log.Printf("got error calling PutItem page hash entry: %s", err)
		return err
	}

	return err
}

func GetPageHashEntry(rawContentHash string) (PageHashEntry, error) {
	result, err := svc.GetItem(&dynamodb.GetItemInput{
		TableName: aws.String(dynamo_configuration.TABLE_DEDUPE_PAGES),
		Key: map[string]*dynamodb.AttributeValue{
			"PageHash": {
				S: aws.String(rawContentHash),
			},
		},
	})

	resultItem := PageHashEntry{}
	if err != nil {
		log.Printf("got error calling GetItem page hash entry: %s", err)
		return resultItem, err
	}

	err = dynamodbattribute.UnmarshalMap(result.Item, &resultItem)
	if err != nil {
		log.Printf("error unmarshalling page hash entry: %s", err)
		return resultItem, err
	}

	return resultItem, err
}
