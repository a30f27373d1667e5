package orchestration

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"

	config "github.com/viralos-core/v2/configuration"
	dal "github.com/viralos-core/v2/dal"
	sqs_model "github.com/viralos-core/v2/service/models"
)

var sqs_svc = sqs.New(config.GetAwsSession())

// Should be started as background thread.
func PollForLedgerUpdates() {
	urlResult, err := sqs_svc.GetQueueUrl(&sqs.GetQueueUrlInput{
		QueueName: aws.String(config.GetEnvConfigs().LedgerQueueName),
	})
	if err != nil {
		log.Fatalf("failed to get queue url: %s", err)
	}
	queueURL := urlResult.QueueUrl
	log.Printf("QUEUE URL: %s", *queueURL)
	for i := 0; i < config.GetEnvConfigs().MaxConsumers; i++ {
		go startConsumer(queueURL)
	}
}

func Purge() {
	// TODO: Add env config check to ensure this doesn't run in prod.
	urlResult, err := sqs_svc.GetQueueUrl(&sqs.GetQueueUrlInput{
		QueueName: aws.String(config.GetEnvConfigs().LedgerQueueName),
	})
	if err != nil {
		log.Fatalf("failed to get queue url: %s", err)
	}
	_, err = sqs_svc.PurgeQueue(&sqs.PurgeQueueInput{
		QueueUrl: urlResult.QueueUrl,
	})
	if err != nil {
		log.Fatalf("failed to purge queue url: %s", err)
	}
}

func startConsumer(queueURL *string) {
	log.Printf("started consumer")
	for {
		err := consumeMessages(queueURL)
		time.Sleep(time.Duration(config.GetEnvConfigs().PollPeriodMilli) * time.Millisecond)
		if err != nil {
			log.Printf("failed to poll queue messages: %s", err)
		}
	}
}

func consumeMessages(queueURL *string) error {
	msgResult, err := sqs_svc.ReceiveMessage(&sqs.ReceiveMessageInput{
		AttributeNames: []*string{
			aws.String(sqs.MessageSystemAttributeNameSentTimestamp),
		},
		MessageAttributeNames: []*string{
			aws.String(sqs.QueueAttributeNameAll),
		},
		QueueUrl:            queueURL,
		MaxNumberOfMessages: aws.Int64(config.GetEnvConfigs().MaxMessagesPerPoll), // Max size 10
		VisibilityTimeout:   aws.Int64(config.GetEnvConfigs().PollVisibilityTimeoutSec),
		WaitTimeSeconds:     aws.Int64(config.GetEnvConfigs().PollWaitSec),
	})
	if err != nil {
		return err
	}
	if len(msgResult.Messages) > 0 {
		processMessages(msgResult.Messages, queueURL)
	}
	return err
}

func processMessages(messages []*sqs.Message, queueUrl *string) {
	var wg sync.WaitGroup
	for _, m := range messages {
		wg.Add(1)
		go asyncProcessMessage(m, queueUrl, &wg)
	}
	wg.Wait()
}

func asyncProcessMessage(message *sqs.Message, queueUrl *string, wg *sync.WaitGroup) {
	err := executeRelevantWorkflow(message)
	if err != nil {
		log.Printf("unable to execute workflow for event: %s %s", *message.MessageId, err)
		wg.Done()
		return
	}
	err = ackMessage(message, queueUrl)
	if err != nil {
		log.Printf("unable to ack event: %s %s", message.GoString(), err)
	}
	wg.Done()
}

func executeRelevantWorkflow(message *sqs.Message) error {
	campaignId, err := decode(message)
	if err != nil {
		return err
	}
	if len(campaignId) == 0 {
		log.Printf("malformed campaign id for payload: %+v", message)
		return fmt.Errorf("malformed campaign id for payload: %+v", message)
	}
	// Always operate on the latest ledger image; CDC records can be stale.
	campaign, err := dal.GetCampaign(campaignId)
	if err != nil {
		log.Printf("correlationID: %s failed to fetch campaign ledger: %s", campaignId, err)
		return err
	}
	log.Printf("correlationID: %s starting workflow", campaign.CampaignID)
	return RunWorkflows(campaign)
}

func ackMessage(message *sqs.Message, queueUrl *string) error {
	_, err := sqs_svc.DeleteMessage(&sqs.DeleteMessageInput{
		QueueUrl:      queueUrl,
		ReceiptHandle: message.ReceiptHandle,
	})
	return err
}

func decode(message *sqs.Message) (string, error) {
	var sqsMessage sqs_model.SQSMessage
	err := json.Unmarshal([]byte(*message.Body), &sqsMessage)
	if err != nil {
		log.Printf("failed to unmarshall sqs body: %s", err)
		return "", err
	}
	isS3Event := strings.Contains(sqsMessage.Message, "aws:s3")
	if isS3Event {
		return decodeS3Event(sqsMessage)
	}
	return decodeDynamoEvent(sqsMessage)
}

func campaignIdFromS3Event(cdc sqs_model.S3CDC) (string, error) {
	if len(cdc.Records) == 0 {
		return "", errors.New("empty s3 event given, no records")
	}
	key := cdc.Records[0].S3.Object.Key
	contentLookupKeySegments := strings.Split(key, ".")
	if len(contentLookupKeySegments) < 3 {
		log.Printf("malformed s3-media-bucket key, expect 3 segments, was: %d for key: %s", len(contentLookupKeySegments), key)
		return "", errors.New("malformed s3 key:" + key)
	}
	// Key layout: <MediaType>.<CampaignID>.<guid>
	const index_campaign_id = 1
	return contentLookupKeySegments[index_campaign_id], nil
}

func decodeDynamoEvent(sqsMessage sqs_model.SQSMessage) (string, error) {
	var streamMessage sqs_model.DynamoCDC
	err := json.Unmarshal([]byte(sqsMessage.Message), &streamMessage)
	if err != nil {
		log.Printf("failed to unmarshall sqs message: %s", err)
		return "", err
	}
	return streamMessage.Dynamodb.Keys.CampaignID.S, nil
}

func decodeS3Event(sqsMessage sqs_model.SQSMessage) (string, error) {
	var streamMessage sqs_model.S3CDC
	err := json.Unmarshal([]byte(sqsMessage.Message), &streamMessage)
	if err != nil {
		log.Printf("failed to unmarshall sqs message: %s", err)
		return "", err
	}
	return campaignIdFromS3Event(streamMessage)
}
