package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	dal "github.com/viralos-core/v2/dal"
	drivers "github.com/viralos-core/v2/service/orchestration/publisher-drivers"
)

func epochMilliAtHourUTC(hour int) int64 {
	return time.Date(2024, 6, 1, hour, 30, 0, 0, time.UTC).UnixMilli()
}

func TestEngagementRate(t *testing.T) {
	rate := engagementRate(drivers.PostMetrics{Views: 1000, Likes: 80, Comments: 15, Shares: 5})
	assert.Equal(t, 0.1, rate)
}

func TestEngagementRateZeroViews(t *testing.T) {
	rate := engagementRate(drivers.PostMetrics{Views: 0, Likes: 10})
	assert.Equal(t, float64(0), rate)
}

func TestBestPostingHourUTC(t *testing.T) {
	entries := []dal.ChannelMetricsEntry{
		{Views: 100, PublishedAtEpochMilli: epochMilliAtHourUTC(9)},
		{Views: 5000, PublishedAtEpochMilli: epochMilliAtHourUTC(18)},
		{Views: 300, PublishedAtEpochMilli: epochMilliAtHourUTC(18)},
		{Views: 200, PublishedAtEpochMilli: epochMilliAtHourUTC(22)},
	}
	assert.Equal(t, 18, bestPostingHourUTC(entries))
}

func TestBestPostingHourUTCSkipsUnstampedEntries(t *testing.T) {
	entries := []dal.ChannelMetricsEntry{
		{Views: 9999, PublishedAtEpochMilli: 0},
		{Views: 10, PublishedAtEpochMilli: epochMilliAtHourUTC(7)},
	}
	assert.Equal(t, 7, bestPostingHourUTC(entries))
}

func TestBestPostingHourUTCNoEntries(t *testing.T) {
	assert.Equal(t, -1, bestPostingHourUTC(nil))
}
