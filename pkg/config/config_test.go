package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracker-fw/cloud-gateway/pkg/backoff"
	"github.com/tracker-fw/cloud-gateway/pkg/timestamp"
)

func TestParse_DefaultsWhenEmpty(t *testing.T) {
	cfg, err := Parse([]byte(``))
	require.NoError(t, err)

	assert.Equal(t, backoff.ModeExponential, cfg.Backoff.Mode)
	assert.True(t, cfg.ConfirmableMessages)
	assert.Equal(t, timestamp.PolicyKeep, cfg.TimestampPolicy)
	assert.Less(t, cfg.MsgProcessingTimeout, cfg.WatchdogTimeout)
}

func TestParse_FullDocument(t *testing.T) {
	doc := `
backoff_mode: linear
backoff_initial_s: 5
backoff_linear_increment_s: 5
backoff_max_s: 60
confirmable_messages: false
watchdog_timeout_s: 45
msg_processing_timeout_s: 20
timestamp_policy: Drop
future_epoch_threshold_ms: 123456789
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, backoff.ModeLinear, cfg.Backoff.Mode)
	assert.False(t, cfg.ConfirmableMessages)
	assert.Equal(t, timestamp.PolicyDrop, cfg.TimestampPolicy)
	assert.Equal(t, int64(123456789), cfg.FutureEpochThresholdMS)
}

func TestParse_RejectsMsgTimeoutNotBelowWatchdogTimeout(t *testing.T) {
	doc := `
watchdog_timeout_s: 10
msg_processing_timeout_s: 10
`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "msg_processing_timeout_s")
}

func TestParse_RejectsUnknownBackoffMode(t *testing.T) {
	_, err := Parse([]byte("backoff_mode: bogus\n"))
	assert.Error(t, err)
}

func TestParse_RejectsUnknownTimestampPolicy(t *testing.T) {
	_, err := Parse([]byte("timestamp_policy: bogus\n"))
	assert.Error(t, err)
}

func TestParse_RejectsMaxLessThanInitial(t *testing.T) {
	doc := `
backoff_initial_s: 30
backoff_max_s: 10
`
	_, err := Parse([]byte(doc))
	assert.Error(t, err)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("not: [valid yaml"))
	assert.Error(t, err)
}
