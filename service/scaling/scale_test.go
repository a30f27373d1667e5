package scaling

import (
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	config "github.com/viralos-core/v2/configuration"
)

var once sync.Once

func setupTest() {
	once.Do(func() {
		os.Chdir("../..") // For env config file loads.
		config.GetEnvConfigs()
	})
}

func TestDesiredTasksForZeroBacklog(t *testing.T) {
	setupTest()
	assert.Equal(t, 0, desiredTasksFor(0))
}

func TestDesiredTasksForRoundsUp(t *testing.T) {
	setupTest()
	perTask := config.GetEnvConfigs().RenderFarmMessagesPerTask
	assert.Equal(t, 1, desiredTasksFor(1))
	assert.Equal(t, 1, desiredTasksFor(perTask))
	assert.Equal(t, 2, desiredTasksFor(perTask+1))
}

func TestDesiredTasksForCapsAtMax(t *testing.T) {
	setupTest()
	maxTasks := config.GetEnvConfigs().RenderFarmMaxTasks
	perTask := config.GetEnvConfigs().RenderFarmMessagesPerTask
	assert.Equal(t, maxTasks, desiredTasksFor(maxTasks*perTask*10))
}
