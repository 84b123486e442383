package mentions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottleKeys(t *testing.T) {
	assert.Equal(t, "throttle:cooldown:u1", cooldownKey("u1"))
	assert.Equal(t, "throttle:daily:u1:2025-06-01", dailyKey("u1", "2025-06-01"))
	assert.Equal(t, "throttle:rate:u1", rateKey("u1"))
}

func TestParseScriptPair(t *testing.T) {
	ok, value, err := parseScriptPair([]interface{}{int64(1), int64(42)})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, value)

	ok, value, err = parseScriptPair([]interface{}{int64(0), int64(99)})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 99, value)

	_, _, err = parseScriptPair("OK")
	assert.Error(t, err)

	_, _, err = parseScriptPair([]interface{}{int64(1)})
	assert.Error(t, err)

	_, _, err = parseScriptPair([]interface{}{"1", "2"})
	assert.Error(t, err)
}
