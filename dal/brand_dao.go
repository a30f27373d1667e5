package dal

import (
	"log"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	dynamo_configuration "github.com/viralos-core/v2/configuration/dynamo"
	tables "github.com/viralos-core/v2/dal/tables/v1"
)

func CreateBrand(item tables.Brand) error {
	if item.CreatedAtEpochMilli == 0 {
		item.CreatedAtEpochMilli = time.Now().UnixMilli()
	}
	item.LastScrapedAtEpochMilli = time.Now().UnixMilli()

	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		log.Printf("got error marshalling brand item: %s", err)
		return err
	}

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(dynamo_configuration.TABLE_BRANDS),
	}
	_, err = svc.PutItem(input)
	if err != nil {
		log.Printf("got error calling PutItem brand: %s", err)
		return err
	}

	return err
}

func GetBrand(brandId string) (tables.Brand, error) {
	result, err := svc.GetItem(&dynamodb.GetItemInput{
		TableName: aws.String(dynamo_configuration.TABLE_BRANDS),
		Key: map[string]*dynamodb.AttributeValue{
			"BrandID": {
				S: aws.String(brandId),
			},
		},
	})

	resultItem := tables.Brand{}
	if err != nil {
		log.Printf("got error calling GetItem brand: %s", err)
		return resultItem, err
	}

	err = dynamodbattribute.UnmarshalMap(result.Item, &resultItem)
	if err != nil {
		log.Printf("error unmarshalling brand item: %s", err)
		return resultItem, err
	}

	return resultItem, err
}
