package scaling

import (
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"
	config "github.com/viralos-core/v2/configuration"
)

var sqs_svc = sqs.New(config.GetAwsSession())

func getPendingMessagesCount(queueName string) (int, error) {
	urlResult, err := sqs_svc.GetQueueUrl(&sqs.GetQueueUrlInput{
		QueueName: aws.String(queueName),
	})
	if err != nil {
		return 0, err
	}

	attrResult, err := sqs_svc.GetQueueAttributes(&sqs.GetQueueAttributesInput{
		QueueUrl: urlResult.QueueUrl,
		AttributeNames: []*string{
			aws.String(sqs.QueueAttributeNameApproximateNumberOfMessages),
		},
	})
	if err != nil {
		return 0, err
	}

	countAttr, ok := attrResult.Attributes[sqs.QueueAttributeNameApproximateNumberOfMessages]
	if !ok {
		return 0, nil
	}
	return strconv.Atoi(aws.StringValue(countAttr))
}
