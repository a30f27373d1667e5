package assembly

import (
	"fmt"
	"strings"
)

var overlayPositions = map[string]string{
	"center":        "x=main_w/2-text_w/2:y=main_h/2-text_h/2",
	"top_center":    "x=main_w/2-text_w/2:y=50",
	"bottom_center": "x=main_w/2-text_w/2:y=main_h-text_h-50",
	"top_left":      "x=50:y=50",
	"top_right":     "x=main_w-text_w-50:y=50",
	"bottom_left":   "x=50:y=main_h-text_h-50",
	"bottom_right":  "x=main_w-text_w-50:y=main_h-text_h-50",
}

// BuildFilterComplex renders the timeline into an ffmpeg -filter_complex
// graph producing [final_video] and [final_audio] pads. Input index order
// is video tracks first, then audio tracks, matching BuildInputArgs.
func BuildFilterComplex(timeline Timeline) string {
	filters := []string{}

	for i, track := range timeline.VideoTracks {
		filters = append(filters,
			fmt.Sprintf("[%d:v]scale=%d:%d[v%d]", i, track.Width, track.Height, i))
	}

	videoOutput := "[v0]"
	if len(timeline.VideoTracks) > 1 {
		current := "[v0]"
		for i := 1; i < len(timeline.VideoTracks); i++ {
			track := timeline.VideoTracks[i]
			filters = append(filters,
				fmt.Sprintf("%s[v%d]overlay=%d:%d:enable='between(t,%g,%g)'[ov%d]",
					current, i, track.X, track.Y, track.StartTime, track.EndTime, i))
			current = fmt.Sprintf("[ov%d]", i)
		}
		videoOutput = current
	}

	for i, overlay := range timeline.TextOverlays {
		filters = append(filters, buildDrawtextFilter(overlay, videoOutput, i))
		videoOutput = fmt.Sprintf("[text%d]", i)
	}
	filters = append(filters, fmt.Sprintf("%s[final_video]", videoOutput))

	audioInputs := []string{}
	for i := range timeline.AudioTracks {
		audioInputs = append(audioInputs, fmt.Sprintf("[%d:a]", len(timeline.VideoTracks)+i))
	}
	switch len(audioInputs) {
	case 0:
		filters = append(filters, "anullsrc=channel_layout=stereo:sample_rate=48000[final_audio]")
	case 1:
		filters = append(filters, fmt.Sprintf("%s[final_audio]", audioInputs[0]))
	default:
		filters = append(filters,
			fmt.Sprintf("%samix=inputs=%d[final_audio]", strings.Join(audioInputs, ""), len(audioInputs)))
	}

	return strings.Join(filters, ";")
}

func buildDrawtextFilter(overlay TextOverlay, inputStream string, index int) string {
	position, ok := overlayPositions[overlay.Position]
	if !ok {
		position = overlayPositions["center"]
	}
	escaped := escapeDrawtext(overlay.Text)
	return fmt.Sprintf("%sdrawtext=text='%s':fontsize=%d:fontcolor=%s:%s:enable='between(t,%g,%g)'[text%d]",
		inputStream, escaped, overlay.FontSize, overlay.FontColor, position,
		overlay.StartTime, overlay.EndTime, index)
}

func escapeDrawtext(text string) string {
	escaped := strings.ReplaceAll(text, "'", "\\'")
	return strings.ReplaceAll(escaped, ":", "\\:")
}
