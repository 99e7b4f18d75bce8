package protolog

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tracker-fw/cloud-gateway/pkg/batchdrain"
	"github.com/tracker-fw/cloud-gateway/pkg/fatal"
)

// Adapter wraps a Logger and translates the gateway core's various
// collaborator callback shapes (fatal.Reporter, batch-drain metrics,
// ad-hoc warnings) into Events, stamping each with the Adapter's correlation
// ID. The ID stays the same for every event until Rotate is called.
type Adapter struct {
	logger        Logger
	correlationID string
}

// NewAdapter returns an Adapter. If correlationID is empty a new UUID is
// generated.
func NewAdapter(logger Logger, correlationID string) *Adapter {
	if logger == nil {
		logger = NoopLogger{}
	}
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	return &Adapter{logger: logger, correlationID: correlationID}
}

// Rotate assigns a fresh correlation ID to events logged after the call.
func (a *Adapter) Rotate() {
	a.correlationID = uuid.NewString()
}

// LogStateChange records one connection-state transition (§4.1.1).
func (a *Adapter) LogStateChange(oldState, newState, trigger string, oldPath, newPath []string) {
	a.logger.Log(Event{
		Timestamp:     time.Now(),
		CorrelationID: a.correlationID,
		Category:      CategoryStateChange,
		StateChange: &StateChangeEvent{
			OldState: oldState,
			NewState: newState,
			OldPath:  oldPath,
			NewPath:  newPath,
			Trigger:  trigger,
		},
	})
}

// LogDrainMetrics implements batchdrain.MetricsLogger, recording one closed
// batch-drain session (§4.4.1).
func (a *Adapter) LogDrainMetrics(m batchdrain.Metrics) {
	a.logger.Log(Event{
		Timestamp:     time.Now(),
		CorrelationID: a.correlationID,
		Category:      CategoryBatchSummary,
		BatchSummary: &BatchSummaryEvent{
			SessionID:    m.SessionID,
			ItemsSent:    m.ItemsSent,
			ItemsDropped: m.ItemsDropped,
			ItemErrors:   m.ItemErrors,
			DurationNS:   m.Duration.Nanoseconds(),
		},
	})
}

// LogProvisioning records one provisioning outcome.
func (a *Adapter) LogProvisioning(outcome, result string) {
	a.logger.Log(Event{
		Timestamp:     time.Now(),
		CorrelationID: a.correlationID,
		Category:      CategoryProvisioning,
		Provisioning:  &ProvisioningEvent{Outcome: outcome, Result: result},
	})
}

// Warnf implements batchdrain.Warner.
func (a *Adapter) Warnf(format string, args ...any) {
	a.logger.Log(Event{
		Timestamp:     time.Now(),
		CorrelationID: a.correlationID,
		Category:      CategoryWarning,
		Warning:       &WarningEvent{Message: fmt.Sprintf(format, args...)},
	})
}

// Errorf logs a free-form error, tagged with a short context label.
func (a *Adapter) Errorf(ctxLabel, format string, args ...any) {
	a.logger.Log(Event{
		Timestamp:     time.Now(),
		CorrelationID: a.correlationID,
		Category:      CategoryError,
		Error:         &ErrorEvent{Message: fmt.Sprintf(format, args...), Context: ctxLabel},
	})
}

// Report implements fatal.Reporter.
func (a *Adapter) Report(sig fatal.Signal) {
	a.logger.Log(Event{
		Timestamp:     sig.Time,
		CorrelationID: a.correlationID,
		Category:      CategoryFatal,
		Fatal:         &FatalEvent{Kind: sig.Kind.String(), Message: sig.Message},
	})
}

var _ fatal.Reporter = (*Adapter)(nil)
