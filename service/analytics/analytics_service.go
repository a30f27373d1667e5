package analytics

import (
	"fmt"
	"log"
	"time"

	dal "github.com/viralos-core/v2/dal"
	tables "github.com/viralos-core/v2/dal/tables/v1"
	drivers "github.com/viralos-core/v2/service/orchestration/publisher-drivers"
)

// CampaignReport aggregates the latest engagement snapshots with the cost
// ledger for a single campaign.
type CampaignReport struct {
	CampaignID                  string
	PostCount                   int64
	TotalViews                  int64
	TotalLikes                  int64
	TotalComments               int64
	TotalShares                 int64
	AverageEngagementRate       float64
	TotalCostCentsMicros        int64
	CostCentsMicrosPerKiloViews int64
	BestPostingHourUTC          int // -1 when no post has a recorded publish time.
	Posts                       []dal.ChannelMetricsEntry
}

// SnapshotCampaignMetrics refreshes the ChannelMetrics table for every
// published post on the campaign. A failing channel is skipped; the remaining
// channels still snapshot.
func SnapshotCampaignMetrics(campaign tables.Campaign) error {
	publishEvents, err := campaign.GetExistingPublishEvents()
	if err != nil {
		log.Printf("correlationID: %s error loading publish events for metrics snapshot: %s", campaign.CampaignID, err)
		return err
	}

	for _, p := range publishEvents {
		if p.PublishStatus != tables.COMPLETE || p.RemotePostID == "" {
			continue
		}
		driver, err := drivers.GetDriver(string(p.DistributionChannel))
		if err != nil {
			log.Printf("correlationID: %s WARN no metrics driver for channel %s: %s", campaign.CampaignID, p.DistributionChannel, err)
			continue
		}
		metrics, err := driver.FetchPostMetrics(p)
		if err != nil {
			log.Printf("correlationID: %s WARN unable to fetch %s metrics for post %s: %s",
				campaign.CampaignID, p.DistributionChannel, p.RemotePostID, err)
			continue
		}
		entry := dal.ChannelMetricsEntry{
			CampaignID:            campaign.CampaignID,
			MetricKey:             dal.MetricKey(string(p.DistributionChannel), p.RootMediaEventID),
			DistributionChannel:   string(p.DistributionChannel),
			RemotePostID:          p.RemotePostID,
			PublisherProfileID:    p.PublisherProfileID,
			Views:                 metrics.Views,
			Likes:                 metrics.Likes,
			Comments:              metrics.Comments,
			Shares:                metrics.Shares,
			EngagementRate:        engagementRate(metrics),
			PublishedAtEpochMilli: p.PublishedAtEpochMilli,
		}
		err = dal.RecordChannelMetrics(entry)
		if err != nil {
			log.Printf("correlationID: %s error recording %s metrics snapshot: %s", campaign.CampaignID, entry.MetricKey, err)
			return err
		}
	}
	return nil
}

func engagementRate(metrics drivers.PostMetrics) float64 {
	if metrics.Views == 0 {
		return 0
	}
	return float64(metrics.Likes+metrics.Comments+metrics.Shares) / float64(metrics.Views)
}

// BuildCampaignReport joins the latest metric snapshots with the cost ledger.
func BuildCampaignReport(campaignId string) (CampaignReport, error) {
	report := CampaignReport{CampaignID: campaignId, BestPostingHourUTC: -1}
	entries, err := dal.GetCampaignMetrics(campaignId)
	if err != nil {
		log.Printf("correlationID: %s error loading metric snapshots: %s", campaignId, err)
		return report, err
	}
	totalCost, err := dal.SumCampaignCostCentsMicros(campaignId)
	if err != nil {
		log.Printf("correlationID: %s error summing campaign costs: %s", campaignId, err)
		return report, err
	}

	report.Posts = entries
	report.TotalCostCentsMicros = totalCost
	var rateSum float64
	for _, e := range entries {
		report.PostCount++
		report.TotalViews += e.Views
		report.TotalLikes += e.Likes
		report.TotalComments += e.Comments
		report.TotalShares += e.Shares
		rateSum += e.EngagementRate
	}
	if report.PostCount > 0 {
		report.AverageEngagementRate = rateSum / float64(report.PostCount)
	}
	if report.TotalViews > 0 {
		report.CostCentsMicrosPerKiloViews = totalCost * 1000 / report.TotalViews
	}
	report.BestPostingHourUTC = bestPostingHourUTC(entries)
	return report, nil
}

// bestPostingHourUTC returns the publish hour whose posts drew the most views.
func bestPostingHourUTC(entries []dal.ChannelMetricsEntry) int {
	viewsByHour := make(map[int]int64)
	for _, e := range entries {
		if e.PublishedAtEpochMilli == 0 {
			continue
		}
		hour := time.UnixMilli(e.PublishedAtEpochMilli).UTC().Hour()
		viewsByHour[hour] += e.Views
	}
	bestHour := -1
	var bestViews int64 = -1
	for hour, views := range viewsByHour {
		if views > bestViews || (views == bestViews && hour < bestHour) {
			bestHour = hour
			bestViews = views
		}
	}
	return bestHour
}

func (r CampaignReport) String() string {
	return fmt.Sprintf("campaign %s: %d posts, %d views, engagement %.4f, cost centsMicros %d",
		r.CampaignID, r.PostCount, r.TotalViews, r.AverageEngagementRate, r.TotalCostCentsMicros)
}
