package configuration

import (
	"os"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
)

var sessInst *session.Session
var once sync.Once

func GetAwsSession() *session.Session {
	if sessInst != nil {
		return sessInst
	}
	once.Do(func() {
		cfg := &aws.Config{
			Region: aws.String(os.Getenv("AWS_REGION")),
		}
		// Fall back to the default credential chain when no static keys are set.
		if os.Getenv("AWS_ACCESS_KEY_ID") != "" {
			cfg.Credentials = credentials.NewStaticCredentials(
				os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY"), "")
		}
		sess, err := session.NewSession(cfg)
		if err != nil {
			panic(err)
		}
		sessInst = sess
	})

	return sessInst
}
