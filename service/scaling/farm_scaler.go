package scaling

import (
	"log"
	"time"

	"github.com/google/uuid"
	config "github.com/viralos-core/v2/configuration"
	dal "github.com/viralos-core/v2/dal"
)

// StartWatching runs the render-farm scaler daemon. A system lock keeps a
// single host in charge of scaling decisions across the fleet.
func StartWatching() {
	err := dal.InitDaemonEntry(dal.SYSTEM_RENDER_FARM)
	if err != nil {
		log.Panic(err)
	}

	go processWatch(uuid.New().String())
}

func processWatch(processId string) {
	const tenMinutesMilli = 600000
	for { // infinite
		waitForOwnership(processId, dal.SYSTEM_RENDER_FARM, tenMinutesMilli)

		pendingMessages, err := getPendingMessagesCount(config.GetEnvConfigs().LedgerQueueName)
		if err != nil {
			log.Printf("error fetching pending ledger messages count: %s", err)
		} else {
			err = scaleToDemand(pendingMessages)
			if err != nil {
				log.Printf("error scaling render farm: %s", err)
			}
		}

		dal.TakeSystemLockOwnership(dal.SYSTEM_RENDER_FARM, processId, tenMinutesMilli)
		time.Sleep(time.Duration(5) * time.Minute)
	}
}

func waitForOwnership(processId string, system string, expiryMilli int64) {
	for {
		hasOwnership, err := dal.TakeSystemLockOwnership(system, processId, expiryMilli)
		if err != nil {
			log.Printf("error verifying lock ownership for system %s: %s", system, err)
		}

		if !hasOwnership {
			time.Sleep(time.Duration(10) * time.Minute)
		} else {
			break
		}
	}
}

func scaleToDemand(pendingMessages int) error {
	desiredTasks := desiredTasksFor(pendingMessages)
	return scaleTask(config.GetEnvConfigs().RenderFarmClusterName, desiredTasks,
		config.GetEnvConfigs().RenderFarmTaskDefinition)
}

// One worker per RenderFarmMessagesPerTask pending messages, capped at
// RenderFarmMaxTasks. Zero pending messages scales the farm to zero.
func desiredTasksFor(pendingMessages int) int {
	if pendingMessages <= 0 {
		return 0
	}
	perTask := config.GetEnvConfigs().RenderFarmMessagesPerTask
	if perTask <= 0 {
		perTask = 1
	}
	desired := pendingMessages / perTask
	if pendingMessages%perTask != 0 {
		desired++
	}
	maxTasks := config.GetEnvConfigs().RenderFarmMaxTasks
	if desired > maxTasks {
		return maxTasks
	}
	return desired
}
