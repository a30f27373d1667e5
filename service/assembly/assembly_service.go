package assembly

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	configs "github.com/viralos-core/v2/configuration"
	tables "github.com/viralos-core/v2/dal/tables/v1"
)

var s3_downloader = s3manager.NewDownloader(configs.GetAwsSession())
var s3_uploader = s3manager.NewUploader(configs.GetAwsSession())

const thumbnailTimestampSec = 2.0

// AssembleFinalRender downloads child clips, renders the final timeline,
// and uploads the result under the render event's content lookup key.
func AssembleFinalRender(ctx context.Context, finalRenderEvent tables.MediaEvent) error {
	sequences := []tables.RenderMediaSequence{}
	err := json.Unmarshal([]byte(finalRenderEvent.FinalRenderSequences), &sequences)
	if err != nil {
		log.Printf("correlationID: %s error unmarshalling render sequences: %s", finalRenderEvent.CampaignID, err)
		return err
	}
	if len(sequences) == 0 {
		return fmt.Errorf("final render event %s has no sequences", finalRenderEvent.EventID)
	}

	workDir, err := os.MkdirTemp("", "render-"+finalRenderEvent.CampaignID)
	if err != nil {
		return err
	}
	defer os.RemoveAll(workDir)

	localPaths := map[string]string{}
	clipDurations := map[string]float64{}
	for _, seq := range sequences {
		localPath := filepath.Join(workDir, seq.ContentLookupKey)
		err = downloadToFile(seq.ContentLookupKey, localPath)
		if err != nil {
			log.Printf("correlationID: %s error downloading clip %s: %s",
				finalRenderEvent.CampaignID, seq.ContentLookupKey, err)
			return err
		}
		localPaths[seq.ContentLookupKey] = localPath
		duration, err := GetMediaDurationSec(ctx, localPath)
		if err != nil {
			log.Printf("correlationID: %s WARN could not probe %s, using default clip length: %s",
				finalRenderEvent.CampaignID, seq.ContentLookupKey, err)
			continue
		}
		clipDurations[seq.ContentLookupKey] = duration
	}

	timeline, err := BuildTimelineFromSequences(sequences, localPaths, clipDurations, finalRenderEvent.WatermarkText)
	if err != nil {
		return err
	}

	outputPath := filepath.Join(workDir, "final.mp4")
	err = RenderTimeline(ctx, timeline, outputPath)
	if err != nil {
		return err
	}
	err = uploadFromFile(finalRenderEvent.ContentLookupKey, outputPath)
	if err != nil {
		return err
	}

	thumbPath := filepath.Join(workDir, "thumbnail.jpg")
	err = ExtractThumbnail(ctx, outputPath, thumbnailTimestampSec, thumbPath)
	if err != nil {
		// Thumbnail is best-effort; publishing proceeds without it.
		log.Printf("correlationID: %s WARN thumbnail extraction failed: %s", finalRenderEvent.CampaignID, err)
		return nil
	}
	err = uploadFromFile(ThumbnailLookupKey(finalRenderEvent.ContentLookupKey), thumbPath)
	if err != nil {
		log.Printf("correlationID: %s WARN thumbnail upload failed: %s", finalRenderEvent.CampaignID, err)
	}
	return nil
}

func ThumbnailLookupKey(contentLookupKey string) string {
	return contentLookupKey + ".thumbnail.jpg"
}

func downloadToFile(contentLookupKey string, localPath string) error {
	file, err := os.Create(localPath)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = s3_downloader.Download(file, &s3.GetObjectInput{
		Bucket: aws.String(configs.GetEnvConfigs().S3MediaBucket),
		Key:    aws.String(contentLookupKey),
	})
	return err
}

func uploadFromFile(contentLookupKey string, localPath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = s3_uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(configs.GetEnvConfigs().S3MediaBucket),
		Key:    aws.String(contentLookupKey),
		Body:   file,
	})
	return err
}
