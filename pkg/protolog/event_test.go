package protolog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeEvent_RoundTrips(t *testing.T) {
	ev := Event{
		Timestamp:     time.Now().UTC(),
		CorrelationID: "corr-1",
		Category:      CategoryStateChange,
		StateChange: &StateChangeEvent{
			OldState: "Idle",
			NewState: "Connecting",
			OldPath:  []string{"Idle"},
			NewPath:  []string{"Running", "Connecting"},
			Trigger:  "Start",
		},
	}

	b, err := EncodeEvent(ev)
	require.NoError(t, err)

	got, err := DecodeEvent(b)
	require.NoError(t, err)

	assert.Equal(t, ev.CorrelationID, got.CorrelationID)
	assert.Equal(t, ev.Category, got.Category)
	require.NotNil(t, got.StateChange)
	assert.Equal(t, "Connecting", got.StateChange.NewState)
	assert.Equal(t, []string{"Running", "Connecting"}, got.StateChange.NewPath)
}

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "BATCH_SUMMARY", CategoryBatchSummary.String())
	assert.Equal(t, "UNKNOWN", Category(255).String())
}
