package assembly

import (
	"fmt"

	env "github.com/viralos-core/v2/configuration"
	tables "github.com/viralos-core/v2/dal/tables/v1"
)

// VideoTrack is one clip placed on the timeline. The first track is the
// base layer; later tracks overlay it within their time window.
type VideoTrack struct {
	TrackID   string
	FilePath  string
	StartTime float64
	EndTime   float64
	X         int
	Y         int
	Width     int
	Height    int
}

type AudioTrack struct {
	TrackID   string
	FilePath  string
	StartTime float64
	Volume    float64
}

type TextOverlay struct {
	Text      string
	StartTime float64
	EndTime   float64
	Position  string // center, top_center, bottom_center, corners.
	FontSize  int
	FontColor string
}

type Timeline struct {
	VideoTracks   []VideoTrack
	AudioTracks   []AudioTrack
	TextOverlays  []TextOverlay
	TotalDuration float64
	Width         int
	Height        int
	FPS           int
}

// Per-clip fallback length when a stream probe is unavailable.
const defaultClipSeconds = 5.0

func NewTimeline() Timeline {
	return Timeline{
		Width:  env.GetEnvConfigs().RenderWidth,
		Height: env.GetEnvConfigs().RenderHeight,
		FPS:    env.GetEnvConfigs().RenderFPS,
	}
}

// BuildTimelineFromSequences lays the downloaded render sequences onto a
// timeline in sequence order. Video clips run back to back; voice tracks
// start with the clip sharing their sequence slot.
func BuildTimelineFromSequences(sequences []tables.RenderMediaSequence,
	localPaths map[string]string, clipDurations map[string]float64, watermarkText string) (Timeline, error) {
	timeline := NewTimeline()
	cursor := 0.0
	sequenceStart := map[int]float64{}
	for _, seq := range sequences {
		localPath, ok := localPaths[seq.ContentLookupKey]
		if !ok {
			return timeline, fmt.Errorf("missing local media for lookup key %s", seq.ContentLookupKey)
		}
		switch seq.MediaType {
		case tables.MEDIA_BROLL, tables.MEDIA_AVATAR:
			duration := clipDurations[seq.ContentLookupKey]
			if duration <= 0 {
				duration = defaultClipSeconds
			}
			track := VideoTrack{
				TrackID:   seq.EventID,
				FilePath:  localPath,
				StartTime: cursor,
				EndTime:   cursor + duration,
				X:         0,
				Y:         0,
				Width:     timeline.Width,
				Height:    timeline.Height,
			}
			sequenceStart[seq.RenderSequence] = cursor
			cursor += duration
			timeline.VideoTracks = append(timeline.VideoTracks, track)
		case tables.MEDIA_VOICE:
			start := sequenceStart[seq.RenderSequence]
			timeline.AudioTracks = append(timeline.AudioTracks, AudioTrack{
				TrackID:   seq.EventID,
				FilePath:  localPath,
				StartTime: start,
				Volume:    1.0,
			})
		}
	}
	timeline.TotalDuration = cursor
	if watermarkText != "" {
		timeline.TextOverlays = append(timeline.TextOverlays, TextOverlay{
			Text:      watermarkText,
			StartTime: 0,
			EndTime:   cursor,
			Position:  "bottom_center",
			FontSize:  36,
			FontColor: "#FFFFFF",
		})
	}
	return timeline, nil
}
