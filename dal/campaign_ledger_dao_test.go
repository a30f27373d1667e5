package dal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendRetryPolicyUsesConfiguredValues(t *testing.T) {
	maxRetries, minSeconds := appendRetryPolicy(8, 3)
	assert.Equal(t, 8, maxRetries)
	assert.Equal(t, 3, minSeconds)
}

func TestAppendRetryPolicyFallsBackOnZeroConfig(t *testing.T) {
	maxRetries, minSeconds := appendRetryPolicy(0, 0)
	assert.Equal(t, 5, maxRetries)
	assert.Equal(t, 2, minSeconds)
}
