package assembly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

type streamInfo struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Duration string `json:"duration"`
}

type probeOutput struct {
	Streams []streamInfo `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func probeFile(ctx context.Context, filePath string) (probeOutput, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		filePath,
	)
	output := new(bytes.Buffer)
	cmd.Stdout = output
	if err := cmd.Run(); err != nil {
		return probeOutput{}, fmt.Errorf("couldn't run ffprobe: %w", err)
	}

	var probed probeOutput
	if err := json.Unmarshal(output.Bytes(), &probed); err != nil {
		return probeOutput{}, fmt.Errorf("couldn't unmarshal probe output: %w", err)
	}
	return probed, nil
}

// GetMediaDurationSec reads the container duration of a media file.
func GetMediaDurationSec(ctx context.Context, filePath string) (float64, error) {
	probed, err := probeFile(ctx, filePath)
	if err != nil {
		return 0, err
	}
	duration, err := strconv.ParseFloat(probed.Format.Duration, 64)
	if err == nil && duration > 0 {
		return duration, nil
	}
	for _, stream := range probed.Streams {
		if streamDuration, serr := strconv.ParseFloat(stream.Duration, 64); serr == nil && streamDuration > 0 {
			return streamDuration, nil
		}
	}
	return 0, fmt.Errorf("no duration found for %s", filePath)
}

// GetVideoAspectRatio classifies a video as 16:9, 9:16, or other.
func GetVideoAspectRatio(ctx context.Context, filePath string) (string, error) {
	probed, err := probeFile(ctx, filePath)
	if err != nil {
		return "", err
	}
	if len(probed.Streams) == 0 {
		return "", fmt.Errorf("no streams found in %s", filePath)
	}
	var width, height int
	for _, stream := range probed.Streams {
		if stream.Width > 0 && stream.Height > 0 {
			width = stream.Width
			height = stream.Height
			break
		}
	}
	if width == 16*height/9 {
		return "16:9", nil
	}
	if height == 16*width/9 {
		return "9:16", nil
	}
	return "other", nil
}
