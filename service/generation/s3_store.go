package generation

import (
	"bytes"
	"log"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	configs "github.com/viralos-core/v2/configuration"
)

var s3_uploader = s3manager.NewUploader(configs.GetAwsSession())
var s3_downloader = s3manager.NewDownloader(configs.GetAwsSession())
var s3_svc = s3.New(configs.GetAwsSession())

func SaveMedia(contentLookupKey string, mediaBytes []byte) error {
	_, err := s3_uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(configs.GetEnvConfigs().S3MediaBucket),
		Key:    aws.String(contentLookupKey),
		Body:   bytes.NewReader(mediaBytes),
	})
	if err != nil {
		log.Printf("error uploading media %s: %s", contentLookupKey, err)
	}
	return err
}

func MediaExists(contentLookupKey string) (bool, error) {
	_, err := s3_svc.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(configs.GetEnvConfigs().S3MediaBucket),
		Key:    aws.String(contentLookupKey),
	})
	if aerr, ok := err.(awserr.Error); ok {
		if aerr.Code() == "NotFound" {
			return false, nil
		}
	}
	if err != nil {
		log.Printf("error checking %s media existence: %s", contentLookupKey, err)
		return false, err
	}
	return true, nil
}

// LoadMedia fetches generated media back out of the bucket, e.g. a script
// payload the media workflow needs to parse.
func LoadMedia(contentLookupKey string) ([]byte, error) {
	buf := aws.NewWriteAtBuffer([]byte{})
	_, err := s3_downloader.Download(buf, &s3.GetObjectInput{
		Bucket: aws.String(configs.GetEnvConfigs().S3MediaBucket),
		Key:    aws.String(contentLookupKey),
	})
	if err != nil {
		log.Printf("error downloading media %s: %s", contentLookupKey, err)
		return nil, err
	}
	return buf.Bytes(), nil
}
