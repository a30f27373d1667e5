package providers

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	env "github.com/viralos-core/v2/configuration"
	tables "github.com/viralos-core/v2/dal/tables/v1"
)

type JobStatus string

const (
	JOB_PENDING JobStatus = "PENDING"
	JOB_DONE    JobStatus = "DONE"
	JOB_FAILED  JobStatus = "FAILED"
)

// Job tracks a remote generation request. Synchronous providers return
// JOB_DONE with MediaBytes populated from Generate directly.
type Job struct {
	RemoteJobID     string
	Status          JobStatus
	MediaBytes      []byte
	Units           float64 // billed units consumed: tokens, seconds, characters.
	UnitKind        string
	CostCentsMicros int64
}

type MediaProvider interface {
	GetName() string
	GetRateKey() string
	Generate(ctx context.Context, mediaEvent tables.MediaEvent) (Job, error)
	CheckStatus(ctx context.Context, job Job) (Job, error)
}

// AwaitJob polls a submit-then-poll provider until terminal state or attempts exhausted.
func AwaitJob(ctx context.Context, provider MediaProvider, job Job) (Job, error) {
	if job.Status == JOB_DONE {
		return job, nil
	}
	pollPeriod := time.Duration(env.GetEnvConfigs().ProviderPollPeriodSec) * time.Second
	maxAttempts := env.GetEnvConfigs().ProviderMaxPollAttempts
	for attempt := 0; attempt < maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-time.After(pollPeriod):
		}
		polled, err := provider.CheckStatus(ctx, job)
		if err != nil {
			log.Printf("provider %s error polling job %s: %s", provider.GetName(), job.RemoteJobID, err)
			return job, err
		}
		job = polled
		if job.Status == JOB_DONE {
			return job, nil
		}
		if job.Status == JOB_FAILED {
			return job, fmt.Errorf("provider %s job %s failed remotely", provider.GetName(), job.RemoteJobID)
		}
	}
	return job, fmt.Errorf("provider %s job %s exceeded max poll attempts", provider.GetName(), job.RemoteJobID)
}

func downloadBytes(ctx context.Context, mediaUrl string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaUrl, nil)
	if err != nil {
		return []byte{}, err
	}
	resp, err := providerHttpClient.Do(req)
	if err != nil {
		return []byte{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return []byte{}, fmt.Errorf("media download status %d for %s", resp.StatusCode, mediaUrl)
	}
	return io.ReadAll(resp.Body)
}

var providerHttpClient = &http.Client{Timeout: 120 * time.Second}
