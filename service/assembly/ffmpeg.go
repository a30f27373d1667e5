package assembly

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os/exec"
)

// BuildInputArgs emits -i arguments: video tracks first, then audio tracks.
// Index order must match the pads BuildFilterComplex references.
func BuildInputArgs(timeline Timeline) []string {
	args := []string{}
	for _, track := range timeline.VideoTracks {
		args = append(args, "-i", track.FilePath)
	}
	for _, track := range timeline.AudioTracks {
		args = append(args, "-i", track.FilePath)
	}
	return args
}

func BuildRenderArgs(timeline Timeline, outputPath string) []string {
	args := []string{"-y"}
	args = append(args, BuildInputArgs(timeline)...)
	args = append(args, "-filter_complex", BuildFilterComplex(timeline))
	args = append(args,
		"-map", "[final_video]",
		"-map", "[final_audio]",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "128k",
		"-r", fmt.Sprintf("%d", timeline.FPS),
		"-s", fmt.Sprintf("%dx%d", timeline.Width, timeline.Height),
		"-t", fmt.Sprintf("%g", timeline.TotalDuration),
		outputPath,
	)
	return args
}

// RenderTimeline runs ffmpeg to produce the final video at outputPath.
func RenderTimeline(ctx context.Context, timeline Timeline, outputPath string) error {
	if len(timeline.VideoTracks) == 0 {
		return fmt.Errorf("cannot render empty timeline")
	}
	args := BuildRenderArgs(timeline, outputPath)
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	stderr := new(bytes.Buffer)
	cmd.Stderr = stderr
	err := cmd.Run()
	if err != nil {
		log.Printf("ffmpeg render failed: %s, stderr: %s", err, stderr.String())
		return fmt.Errorf("ffmpeg render failed: %w", err)
	}
	return nil
}

// ExtractThumbnail grabs a single frame at the given timestamp.
func ExtractThumbnail(ctx context.Context, videoPath string, atSeconds float64, outputPath string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-i", videoPath,
		"-ss", fmt.Sprintf("%g", atSeconds),
		"-vframes", "1",
		"-q:v", "2",
		outputPath,
	)
	stderr := new(bytes.Buffer)
	cmd.Stderr = stderr
	err := cmd.Run()
	if err != nil {
		log.Printf("thumbnail extraction failed: %s, stderr: %s", err, stderr.String())
		return fmt.Errorf("thumbnail extraction failed: %w", err)
	}
	return nil
}
