package dynamo

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	aws_configuration "github.com/viralos-core/v2/configuration"

	"log"
	"strings"
)

const TABLE_ACCOUNTS = "Accounts"
const TABLE_CAMPAIGN_LEDGER = "CampaignLedger"
const TABLE_BRANDS = "Brands"
const TABLE_PRODUCTS = "Products"
const TABLE_RATE_LIMIT = "RateLimits"
const TABLE_DEDUPE_PAGES = "DedupePages"
const TABLE_COST_LEDGER = "CostLedger"
const TABLE_CHANNEL_METRICS = "ChannelMetrics"
const TABLE_HEARTBEAT = "Heartbeats"
const SYSTEM_DAEMON = "SystemDaemonLocks"
const PUBLISHER_PROFILE_GSI_NAME = "ChannelPlatform" // For querying by TikTok, Instagram, ...
const MAX_QPS_ON_DEMAND_GSI = 50

func Init() {
	log.Printf("Initializing DynamoDB Tables")

	svc := dynamodb.New(aws_configuration.GetAwsSession())
	createTableAccounts(svc)
	createCampaignLedgerTable(svc)
	createBrandTables(svc)
	createScrapeSupportTables(svc)
	createCostLedgerTable(svc)
	createChannelMetricsTable(svc)
	createSystemTables(svc)
}

// Accounts holds social publisher profiles.
// PK: AccountID (email, phone, etc.)
// Range: PublisherProfileID, one row per connected channel profile.
func createTableAccounts(svc *dynamodb.DynamoDB) {
	tableName := TABLE_ACCOUNTS
	input := &dynamodb.CreateTableInput{
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("AccountID"),
				AttributeType: aws.String("S"),
			},
			{
				AttributeName: aws.String("PublisherProfileID"),
				AttributeType: aws.String("S"),
			},
			{
				AttributeName: aws.String("ChannelName"),
				AttributeType: aws.String("S"),
			},
			{
				AttributeName: aws.String("LastPublishAtEpochMilli"),
				AttributeType: aws.String("N"),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("AccountID"),
				KeyType:       aws.String("HASH"),
			},
			{
				AttributeName: aws.String("PublisherProfileID"),
				KeyType:       aws.String("RANGE"),
			},
		},
		GlobalSecondaryIndexes: []*dynamodb.GlobalSecondaryIndex{
			{
				IndexName: aws.String(PUBLISHER_PROFILE_GSI_NAME),
				KeySchema: []*dynamodb.KeySchemaElement{
					{
						AttributeName: aws.String("ChannelName"),
						KeyType:       aws.String("HASH"),
					},
					{
						AttributeName: aws.String("LastPublishAtEpochMilli"),
						KeyType:       aws.String("RANGE"),
					},
				},
				Projection: &dynamodb.Projection{
					ProjectionType: aws.String(dynamodb.ProjectionTypeAll),
				},
				OnDemandThroughput: &dynamodb.OnDemandThroughput{
					MaxReadRequestUnits:  aws.Int64(MAX_QPS_ON_DEMAND_GSI),
					MaxWriteRequestUnits: aws.Int64(MAX_QPS_ON_DEMAND_GSI),
				},
			},
		},
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		TableName:   aws.String(tableName),
	}
	createTable(svc, input, tableName)
}

// CampaignLedger is the job table: one row per campaign, polled by workers.
// PK: CampaignID (correlation ID).
func createCampaignLedgerTable(svc *dynamodb.DynamoDB) {
	tableName := TABLE_CAMPAIGN_LEDGER
	input := &dynamodb.CreateTableInput{
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("CampaignID"),
				AttributeType: aws.String("S"),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("CampaignID"),
				KeyType:       aws.String("HASH"),
			},
		},
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		TableName:   aws.String(tableName),
	}
	createTable(svc, input, tableName)
}

// Brands PK: BrandID. Products PK: BrandID, Range: ProductID.
func createBrandTables(svc *dynamodb.DynamoDB) {
	brandInput := &dynamodb.CreateTableInput{
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("BrandID"),
				AttributeType: aws.String("S"),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("BrandID"),
				KeyType:       aws.String("HASH"),
			},
		},
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		TableName:   aws.String(TABLE_BRANDS),
	}
	createTable(svc, brandInput, TABLE_BRANDS)

	productInput := &dynamodb.CreateTableInput{
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("BrandID"),
				AttributeType: aws.String("S"),
			},
			{
				AttributeName: aws.String("ProductID"),
				AttributeType: aws.String("S"),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("BrandID"),
				KeyType:       aws.String("HASH"),
			},
			{
				AttributeName: aws.String("ProductID"),
				KeyType:       aws.String("RANGE"),
			},
		},
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		TableName:   aws.String(TABLE_PRODUCTS),
	}
	createTable(svc, productInput, TABLE_PRODUCTS)
}

func createScrapeSupportTables(svc *dynamodb.DynamoDB) {
	rateInput := &dynamodb.CreateTableInput{
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("RateTimeKeyBucket"),
				AttributeType: aws.String("S"),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("RateTimeKeyBucket"),
				KeyType:       aws.String("HASH"),
			},
		},
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		TableName:   aws.String(TABLE_RATE_LIMIT),
	}
	createTable(svc, rateInput, TABLE_RATE_LIMIT)

	dedupeInput := &dynamodb.CreateTableInput{
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("PageHash"),
				AttributeType: aws.String("S"),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("PageHash"),
				KeyType:       aws.String("HASH"),
			},
		},
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		TableName:   aws.String(TABLE_DEDUPE_PAGES),
	}
	createTable(svc, dedupeInput, TABLE_DEDUPE_PAGES)
}

// CostLedger PK: CampaignID, Range: CostEntryID (<provider>.<guid>).
func createCostLedgerTable(svc *dynamodb.DynamoDB) {
	input := &dynamodb.CreateTableInput{
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("CampaignID"),
				AttributeType: aws.String("S"),
			},
			{
				AttributeName: aws.String("CostEntryID"),
				AttributeType: aws.String("S"),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("CampaignID"),
				KeyType:       aws.String("HASH"),
			},
			{
				AttributeName: aws.String("CostEntryID"),
				KeyType:       aws.String("RANGE"),
			},
		},
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		TableName:   aws.String(TABLE_COST_LEDGER),
	}
	createTable(svc, input, TABLE_COST_LEDGER)
}

// ChannelMetrics PK: CampaignID, Range: MetricKey (<channel>.<rootMediaEventId>).
// One row per published post, overwritten with the latest snapshot.
func createChannelMetricsTable(svc *dynamodb.DynamoDB) {
	input := &dynamodb.CreateTableInput{
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("CampaignID"),
				AttributeType: aws.String("S"),
			},
			{
				AttributeName: aws.String("MetricKey"),
				AttributeType: aws.String("S"),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("CampaignID"),
				KeyType:       aws.String("HASH"),
			},
			{
				AttributeName: aws.String("MetricKey"),
				KeyType:       aws.String("RANGE"),
			},
		},
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		TableName:   aws.String(TABLE_CHANNEL_METRICS),
	}
	createTable(svc, input, TABLE_CHANNEL_METRICS)
}

func createSystemTables(svc *dynamodb.DynamoDB) {
	heartbeatInput := &dynamodb.CreateTableInput{
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("TimeBucket"),
				AttributeType: aws.String("S"),
			},
			{
				AttributeName: aws.String("CampaignID"),
				AttributeType: aws.String("S"),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("TimeBucket"),
				KeyType:       aws.String("HASH"),
			},
			{
				AttributeName: aws.String("CampaignID"),
				KeyType:       aws.String("RANGE"),
			},
		},
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		TableName:   aws.String(TABLE_HEARTBEAT),
	}
	createTable(svc, heartbeatInput, TABLE_HEARTBEAT)

	daemonInput := &dynamodb.CreateTableInput{
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("SystemID"),
				AttributeType: aws.String("S"),
			},
		},
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("SystemID"),
				KeyType:       aws.String("HASH"),
			},
		},
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		TableName:   aws.String(SYSTEM_DAEMON),
	}
	createTable(svc, daemonInput, SYSTEM_DAEMON)
}

func createTable(svc *dynamodb.DynamoDB, input *dynamodb.CreateTableInput, tableName string) {
	_, err := svc.CreateTable(input)
	if tableAlreadyExists(err) {
		log.Println("Table already exists", tableName)
	} else if err != nil {
		log.Fatalf("Got error calling CreateTable: %s", err)
	} else {
		log.Println("Created the table", tableName)
	}
}

func tableAlreadyExists(err error) bool {
	if err != nil && strings.Contains(err.Error(), "ResourceInUseException") {
		return true
	}
	return false
}
