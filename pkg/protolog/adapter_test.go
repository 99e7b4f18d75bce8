package protolog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tracker-fw/cloud-gateway/pkg/batchdrain"
	"github.com/tracker-fw/cloud-gateway/pkg/fatal"
)

func TestAdapter_LogStateChangeCarriesCorrelationID(t *testing.T) {
	rec := &recordingLogger{}
	a := NewAdapter(rec, "corr-x")

	a.LogStateChange("Idle", "Connecting", "Start", []string{"Idle"}, []string{"Running", "Connecting"})

	assert.Len(t, rec.events, 1)
	assert.Equal(t, "corr-x", rec.events[0].CorrelationID)
	assert.Equal(t, "Connecting", rec.events[0].StateChange.NewState)
}

func TestAdapter_LogDrainMetrics(t *testing.T) {
	rec := &recordingLogger{}
	a := NewAdapter(rec, "corr-y")

	a.LogDrainMetrics(batchdrain.Metrics{SessionID: 3, ItemsSent: 5, Duration: 2 * time.Second})

	assert.Equal(t, CategoryBatchSummary, rec.events[0].Category)
	assert.Equal(t, uint32(3), rec.events[0].BatchSummary.SessionID)
	assert.Equal(t, int64(2*time.Second), rec.events[0].BatchSummary.DurationNS)
}

func TestAdapter_WarnfFormatsMessage(t *testing.T) {
	rec := &recordingLogger{}
	a := NewAdapter(rec, "")

	a.Warnf("session %d busy", 7)

	assert.Equal(t, "session 7 busy", rec.events[0].Warning.Message)
	assert.NotEmpty(t, rec.events[0].CorrelationID)
}

func TestAdapter_ReportImplementsFatalReporter(t *testing.T) {
	rec := &recordingLogger{}
	a := NewAdapter(rec, "corr-z")

	var reporter fatal.Reporter = a
	reporter.Report(fatal.Signal{Kind: fatal.WatchdogExpired, Message: "stalled", Time: time.Now()})

	assert.Equal(t, CategoryFatal, rec.events[0].Category)
	assert.Equal(t, "stalled", rec.events[0].Fatal.Message)
}

func TestAdapter_Rotate(t *testing.T) {
	a := NewAdapter(NoopLogger{}, "first")
	a.Rotate()
	assert.NotEqual(t, "first", a.correlationID)
}
