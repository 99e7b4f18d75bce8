// Package fatal plumbs true liveness violations (a wedged bus, a missed
// watchdog feed, a failed transport init, an unrecoverable provisioning
// error) out of the core to an external supervisor. The core never panics
// or calls os.Exit on these; it reports them through a Reporter so tests can
// assert a fatal was raised without killing the test binary, and so a real
// binary can choose how to react (log and reboot, in production).
package fatal

import (
	"sync"
	"time"
)

// Kind classifies a fatal signal per the error taxonomy in SPEC_FULL §7.
type Kind uint8

// Recognized fatal kinds.
const (
	BusPublishTimeout Kind = iota
	WatchdogExpired
	TransportInitFailed
	ProvisioningFatal
	SchedulingFailure
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case BusPublishTimeout:
		return "BUS_PUBLISH_TIMEOUT"
	case WatchdogExpired:
		return "WATCHDOG_EXPIRED"
	case TransportInitFailed:
		return "TRANSPORT_INIT_FAILED"
	case ProvisioningFatal:
		return "PROVISIONING_FATAL"
	case SchedulingFailure:
		return "SCHEDULING_FAILURE"
	default:
		return "UNKNOWN"
	}
}

// Signal describes one process-fatal condition.
type Signal struct {
	Kind    Kind
	Message string
	Time    time.Time
}

// Reporter receives fatal signals. Implementations must be safe for
// concurrent use; Report may be called from any goroutine.
type Reporter interface {
	Report(Signal)
}

// ReporterFunc adapts a plain function to a Reporter.
type ReporterFunc func(Signal)

// Report calls f.
func (f ReporterFunc) Report(s Signal) { f(s) }

// ChannelReporter is a Reporter that delivers signals on a channel, for a
// supervisor goroutine to consume. The channel is buffered and Report never
// blocks the caller; a signal reported while the buffer is full is dropped,
// so a supervisor that falls behind can miss signals.
type ChannelReporter struct {
	mu sync.Mutex
	ch chan Signal
}

// NewChannelReporter creates a ChannelReporter with the given channel buffer.
func NewChannelReporter(buffer int) *ChannelReporter {
	return &ChannelReporter{ch: make(chan Signal, buffer)}
}

// Report records a signal, dropping it whenever the buffer is full (better
// to drop than to block the state-machine goroutine that is, itself,
// reporting a liveness problem).
func (r *ChannelReporter) Report(s Signal) {
	select {
	case r.ch <- s:
	default:
	}
}

// Signals returns the channel supervisors should range over.
func (r *ChannelReporter) Signals() <-chan Signal {
	return r.ch
}

// Compile-time interface satisfaction check.
var _ Reporter = (*ChannelReporter)(nil)
