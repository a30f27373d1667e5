package assembly

import (
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	tables "github.com/viralos-core/v2/dal/tables/v1"
)

var chdirOnce sync.Once

func setupTest() {
	chdirOnce.Do(func() {
		os.Chdir("../..") // For env config file loads.
	})
}

func twoClipTimeline() Timeline {
	return Timeline{
		VideoTracks: []VideoTrack{
			{TrackID: "clip-0", FilePath: "a.mp4", StartTime: 0, EndTime: 5, Width: 1080, Height: 1920},
			{TrackID: "clip-1", FilePath: "b.mp4", StartTime: 5, EndTime: 10, Width: 1080, Height: 1920},
		},
		AudioTracks: []AudioTrack{
			{TrackID: "voice-0", FilePath: "v.mp3", StartTime: 0, Volume: 1.0},
		},
		TextOverlays: []TextOverlay{
			{Text: "Acme", StartTime: 0, EndTime: 10, Position: "bottom_center", FontSize: 36, FontColor: "#FFFFFF"},
		},
		TotalDuration: 10,
		Width:         1080,
		Height:        1920,
		FPS:           30,
	}
}

func TestBuildFilterComplex(t *testing.T) {
	graph := BuildFilterComplex(twoClipTimeline())

	assert.Contains(t, graph, "[0:v]scale=1080:1920[v0]")
	assert.Contains(t, graph, "[1:v]scale=1080:1920[v1]")
	assert.Contains(t, graph, "[v0][v1]overlay=0:0:enable='between(t,5,10)'[ov1]")
	assert.Contains(t, graph, "drawtext=text='Acme':fontsize=36:fontcolor=#FFFFFF:x=main_w/2-text_w/2:y=main_h-text_h-50:enable='between(t,0,10)'[text0]")
	assert.Contains(t, graph, "[text0][final_video]")
	// Audio pad index continues after the two video inputs.
	assert.Contains(t, graph, "[2:a][final_audio]")
}

func TestBuildFilterComplexSilentAudio(t *testing.T) {
	timeline := twoClipTimeline()
	timeline.AudioTracks = nil
	graph := BuildFilterComplex(timeline)
	assert.Contains(t, graph, "anullsrc=channel_layout=stereo:sample_rate=48000[final_audio]")
}

func TestBuildFilterComplexMixesMultipleAudio(t *testing.T) {
	timeline := twoClipTimeline()
	timeline.AudioTracks = append(timeline.AudioTracks, AudioTrack{TrackID: "voice-1", FilePath: "w.mp3"})
	graph := BuildFilterComplex(timeline)
	assert.Contains(t, graph, "[2:a][3:a]amix=inputs=2[final_audio]")
}

func TestEscapeDrawtext(t *testing.T) {
	assert.Equal(t, "it\\'s 2\\:1", escapeDrawtext("it's 2:1"))
}

func TestBuildRenderArgs(t *testing.T) {
	args := BuildRenderArgs(twoClipTimeline(), "out.mp4")
	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-i a.mp4 -i b.mp4 -i v.mp3")
	assert.Contains(t, joined, "-map [final_video] -map [final_audio]")
	assert.Contains(t, joined, "-c:v libx264")
	assert.Contains(t, joined, "-r 30")
	assert.Contains(t, joined, "-s 1080x1920")
	assert.Equal(t, "out.mp4", args[len(args)-1])
}

func TestBuildTimelineFromSequences(t *testing.T) {
	setupTest()
	sequences := []tables.RenderMediaSequence{
		{EventID: "b0", MediaType: tables.MEDIA_BROLL, ContentLookupKey: "BRoll.c1.k0", RenderSequence: 0},
		{EventID: "v0", MediaType: tables.MEDIA_VOICE, ContentLookupKey: "Voice.c1.k1", RenderSequence: 0},
		{EventID: "b1", MediaType: tables.MEDIA_BROLL, ContentLookupKey: "BRoll.c1.k2", RenderSequence: 1},
	}
	localPaths := map[string]string{
		"BRoll.c1.k0": "/tmp/b0.mp4",
		"Voice.c1.k1": "/tmp/v0.mp3",
		"BRoll.c1.k2": "/tmp/b1.mp4",
	}
	durations := map[string]float64{
		"BRoll.c1.k0": 4,
		"BRoll.c1.k2": 6,
	}

	timeline, err := BuildTimelineFromSequences(sequences, localPaths, durations, "ViralOS")
	assert.NoError(t, err)
	assert.Len(t, timeline.VideoTracks, 2)
	assert.Len(t, timeline.AudioTracks, 1)
	assert.Equal(t, 0.0, timeline.VideoTracks[0].StartTime)
	assert.Equal(t, 4.0, timeline.VideoTracks[0].EndTime)
	assert.Equal(t, 4.0, timeline.VideoTracks[1].StartTime)
	assert.Equal(t, 10.0, timeline.VideoTracks[1].EndTime)
	assert.Equal(t, 10.0, timeline.TotalDuration)
	// Voice track starts with the clip that shares its sequence slot.
	assert.Equal(t, 0.0, timeline.AudioTracks[0].StartTime)
	assert.Len(t, timeline.TextOverlays, 1)
	assert.Equal(t, "ViralOS", timeline.TextOverlays[0].Text)
}

func TestBuildTimelineMissingMedia(t *testing.T) {
	setupTest()
	sequences := []tables.RenderMediaSequence{
		{EventID: "b0", MediaType: tables.MEDIA_BROLL, ContentLookupKey: "BRoll.c1.k0", RenderSequence: 0},
	}
	_, err := BuildTimelineFromSequences(sequences, map[string]string{}, nil, "")
	assert.Error(t, err)
}
