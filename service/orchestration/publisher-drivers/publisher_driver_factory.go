package publisherdrivers

import (
	"errors"

	tables "github.com/viralos-core/v2/dal/tables/v1"
)

func GetDriver(distributionChannelName string) (PublisherDriver, error) {
	switch tables.ChannelName(distributionChannelName) {
	case tables.Channel_TikTok:
		return TikTokDriver{}, nil
	case tables.Channel_Instagram:
		return InstagramDriver{}, nil
	case tables.Channel_YouTube:
		return YouTubeDriver{}, nil
	case tables.Channel_X:
		return XDriver{}, nil
	}
	return nil, errors.New("no matching channel-to-driver found")
}
