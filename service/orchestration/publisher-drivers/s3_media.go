package publisherdrivers

import (
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	configs "github.com/viralos-core/v2/configuration"
)

var s3_downloader = s3manager.NewDownloader(configs.GetAwsSession())
var s3_svc = s3.New(configs.GetAwsSession())

const maxDownloadAttempts = 3

func LoadAsString(contentLookupKey string) (string, error) {
	b, err := LoadAsBytes(contentLookupKey)
	return string(b), err
}

func LoadAsBytes(contentLookupKey string) ([]byte, error) {
	err := DownloadFile(contentLookupKey)
	if err != nil {
		log.Printf("error downloading %s within LoadAsBytes: %s", contentLookupKey, err)
		os.Remove(contentLookupKey)
		return []byte{}, err
	}

	b, err := os.ReadFile(contentLookupKey)
	if err != nil {
		log.Printf("%s error reading temp file: %s", contentLookupKey, err)
		return []byte{}, err
	}
	err = os.Remove(contentLookupKey)
	if err != nil {
		log.Printf("%s error cleaning-up file: %s", contentLookupKey, err)
		return []byte{}, err
	}

	return b, nil
}

func DownloadFile(contentLookupKey string) error {
	file, err := os.Create(contentLookupKey)
	if err != nil {
		log.Printf("%s error creating temp file: %s", contentLookupKey, err)
		return err
	}
	defer file.Close()

	_, err = s3_downloader.Download(file,
		&s3.GetObjectInput{
			Bucket: aws.String(configs.GetEnvConfigs().S3MediaBucket),
			Key:    aws.String(contentLookupKey),
		})
	return err
}

// S3 media-bucket writes are eventually consistent with the ledger view.
func TryDownloadWithRetry(contentLookupKey string, attempt int) error {
	err := DownloadFile(contentLookupKey)
	if err == nil {
		return nil
	}
	if attempt+1 >= maxDownloadAttempts {
		return err
	}
	time.Sleep(time.Duration(5) * time.Second)
	return TryDownloadWithRetry(contentLookupKey, attempt+1)
}

// PresignMediaURL returns a short-lived public URL for channels that pull
// media server-side, e.g. the Instagram container API.
func PresignMediaURL(contentLookupKey string, expiry time.Duration) (string, error) {
	req, _ := s3_svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(configs.GetEnvConfigs().S3MediaBucket),
		Key:    aws.String(contentLookupKey),
	})
	urlStr, err := req.Presign(expiry)
	if err != nil {
		log.Printf("error presigning media url for %s: %s", contentLookupKey, err)
		return "", err
	}
	return urlStr, nil
}
