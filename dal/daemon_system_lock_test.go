package dal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTakeLockWhenExpired(t *testing.T) {
	entry := DaemonLockEntry{
		SystemID:             SYSTEM_HEARTBEAT_MONITOR,
		ProcessID:            "other-host",
		ExpiryTimeEpochMilli: time.Now().UnixMilli() - 1000,
	}
	assert.True(t, canTakeLock(entry, "this-host"))
}

func TestCanTakeLockDeniedWhileHeldByAnotherProcess(t *testing.T) {
	entry := DaemonLockEntry{
		SystemID:             SYSTEM_RENDER_FARM,
		ProcessID:            "other-host",
		ExpiryTimeEpochMilli: time.Now().UnixMilli() + 60000,
	}
	assert.False(t, canTakeLock(entry, "this-host"))
}

func TestCanTakeLockReentrantForOwner(t *testing.T) {
	entry := DaemonLockEntry{
		SystemID:             SYSTEM_RENDER_FARM,
		ProcessID:            "this-host",
		ExpiryTimeEpochMilli: time.Now().UnixMilli() + 60000,
	}
	assert.True(t, canTakeLock(entry, "this-host"))
}
