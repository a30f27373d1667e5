package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tables "github.com/viralos-core/v2/dal/tables/v1"
	providers "github.com/viralos-core/v2/service/generation/providers"
)

func TestBuildCostEntryCarriesFractionalUnits(t *testing.T) {
	mediaEvent := tables.MediaEvent{
		CampaignID: "campaign-cost-test",
		MediaType:  tables.MEDIA_AVATAR,
	}
	job := providers.Job{
		Units:           12.5, // seconds of avatar video.
		UnitKind:        "seconds",
		CostCentsMicros: 3750000,
	}

	entry := buildCostEntry(mediaEvent, "HeyGen", job)

	assert.Equal(t, "campaign-cost-test", entry.CampaignID)
	assert.Equal(t, "HeyGen", entry.ProviderName)
	assert.Equal(t, string(tables.MEDIA_AVATAR), entry.Operation)
	assert.Equal(t, 12.5, entry.Units)
	assert.Equal(t, "seconds", entry.UnitKind)
	assert.Equal(t, int64(3750000), entry.CostCentsMicros)
}
