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

func CreateProduct(item tables.Product) error {
	item.ScrapedAtEpochMilli = time.Now().UnixMilli()

	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		log.Printf("got error marshalling product item: %s", err)
		return err
	}

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(dynamo_configuration.TABLE_PRODUCTS),
	}
	_, err = svc.PutItem(input)
	if err != nil {
		log.Printf("got error calling PutItem product: %s", err)
		return err
	}

	return err
}

func GetProduct(brandId string, productId string) (tables.Product, error) {
	result, err := svc.GetItem(&dynamodb.GetItemInput{
		TableName: aws.String(dynamo_configuration.TABLE_PRODUCTS),
		Key: map[string]*dynamodb.AttributeValue{
			"BrandID": {
				S: aws.String(brandId),
			},
			"ProductID": {
				S: aws.String(productId),
			},
		},
	})

	resultItem := tables.Product{}
	if err != nil {
		log.Printf("got error calling GetItem product: %s", err)
		return resultItem, err
	}

	err = dynamodbattribute.UnmarshalMap(result.Item, &resultItem)
	if err != nil {
		log.Printf("error unmarshalling product item: %s", err)
		return resultItem, err
	}

	return resultItem, err
}

// GetProductsByBrand pages through every product under a brand.
func GetProductsByBrand(brandId string) ([]tables.Product, error) {
	results := []tables.Product{}
	var lastEvaluatedKey map[string]*dynamodb.AttributeValue
	for {
		queryInput := &dynamodb.QueryInput{
			TableName:              aws.String(dynamo_configuration.TABLE_PRODUCTS),
			KeyConditionExpression: aws.String("BrandID = :b"),
			ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
				":b": {
					S: aws.String(brandId),
				},
			},
		}
		if lastEvaluatedKey != nil {
			queryInput.SetExclusiveStartKey(lastEvaluatedKey)
		}
		queryOutput, err := svc.Query(queryInput)
		if err != nil {
			log.Printf("unable to query products for brand %s: %s", brandId, err)
			return results, err
		}
		for _, i := range queryOutput.Items {
			tmpItem := tables.Product{}
			err = dynamodbattribute.UnmarshalMap(i, &tmpItem)
			if err != nil {
				log.Printf("error unmarshalling product item: %s", err)
				return results, err
			}
			results = append(results, tmpItem)
		}
		if queryOutput.LastEvaluatedKey == nil || len(queryOutput.LastEvaluatedKey) == 0 {
			break
		}
		lastEvaluatedKey = queryOutput.LastEvaluatedKey
	}
	return results, nil
}
