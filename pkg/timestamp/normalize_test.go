package timestamp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const futureEpochThresholdMS = 4_000_000_000_000 // an early future date, well past any uptime

type fakeClock struct {
	uptimeMS   int64
	clockValid bool
	offsetMS   int64 // unix = uptime + offset, when valid
}

func (c fakeClock) UptimeMS() int64        { return c.uptimeMS }
func (c fakeClock) WallClockValid() bool   { return c.clockValid }
func (c fakeClock) UptimeToUnixMS(u int64) int64 { return u + c.offsetMS }

func TestNormalize_AlreadyWallClock(t *testing.T) {
	n := New(fakeClock{uptimeMS: 1000}, futureEpochThresholdMS)

	v, err := n.Normalize(futureEpochThresholdMS + 500)
	require.NoError(t, err)
	assert.Equal(t, futureEpochThresholdMS+500, v)
}

func TestNormalize_FutureUptimeIsInvalid(t *testing.T) {
	n := New(fakeClock{uptimeMS: 1000, clockValid: true}, futureEpochThresholdMS)

	_, err := n.Normalize(2000)
	assert.ErrorIs(t, err, ErrInvalidFutureUptime)
}

func TestNormalize_ClockNotValid(t *testing.T) {
	n := New(fakeClock{uptimeMS: 5000, clockValid: false}, futureEpochThresholdMS)

	_, err := n.Normalize(1000)
	assert.ErrorIs(t, err, ErrClockNotValid)
}

func TestNormalize_ConvertsWhenValid(t *testing.T) {
	n := New(fakeClock{uptimeMS: 5000, clockValid: true, offsetMS: 1_700_000_000_000}, futureEpochThresholdMS)

	v, err := n.Normalize(1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_001_000), v)
}

// TestNormalize_Idempotence checks normalize(normalize(t)) == normalize(t)
// for t already at or above the threshold.
func TestNormalize_Idempotence(t *testing.T) {
	n := New(fakeClock{uptimeMS: 1000, clockValid: true}, futureEpochThresholdMS)

	t1 := futureEpochThresholdMS + 12345
	v1, err := n.Normalize(t1)
	require.NoError(t, err)

	v2, err := n.Normalize(v1)
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
}

func TestPolicy_Keep(t *testing.T) {
	n := New(fakeClock{uptimeMS: 1000, clockValid: false}, futureEpochThresholdMS)

	v, err := Apply(n, PolicyKeep, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), v)
}

func TestPolicy_NoTimestamp(t *testing.T) {
	// Scenario 5 in SPEC_FULL §8: input timestamp 1000ms, clock invalid,
	// policy NoTimestamp -> sentinel, item not dropped.
	n := New(fakeClock{uptimeMS: 5000, clockValid: false}, futureEpochThresholdMS)

	v, err := Apply(n, PolicyNoTimestamp, 1000)
	require.NoError(t, err)
	assert.Equal(t, NoTimestampSentinel, v)
}

func TestPolicy_Drop_ReturnsError(t *testing.T) {
	n := New(fakeClock{uptimeMS: 5000, clockValid: false}, futureEpochThresholdMS)

	_, err := Apply(n, PolicyDrop, 1000)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDropped))
	assert.True(t, errors.Is(err, ErrClockNotValid))
}

func TestPolicy_Now_RetriesAgainstCurrentUptime(t *testing.T) {
	n := New(fakeClock{uptimeMS: 5000, clockValid: true, offsetMS: 1_000}, futureEpochThresholdMS)

	// t is in the future relative to uptime -> first normalize fails,
	// PolicyNow retries against current uptime, which succeeds.
	v, err := Apply(n, PolicyNow, 9000)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), v)
}

func TestPolicy_Now_FailsIfStillBad(t *testing.T) {
	n := New(fakeClock{uptimeMS: 5000, clockValid: false}, futureEpochThresholdMS)

	_, err := Apply(n, PolicyNow, 9000)
	assert.ErrorIs(t, err, ErrClockNotValid)
}

func TestPolicy_Success_BypassesPolicy(t *testing.T) {
	n := New(fakeClock{uptimeMS: 5000, clockValid: true, offsetMS: 42}, futureEpochThresholdMS)

	v, err := Apply(n, PolicyDrop, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(142), v)
}
