// Package backoff implements the reconnection backoff controller: computing
// the delay before the next connection Attempt, and scheduling the
// BackoffExpired private event that fires when that delay elapses.
package backoff

import (
	"time"

	"github.com/tracker-fw/cloud-gateway/pkg/watchdog"
)

// Mode selects the backoff growth function.
type Mode uint8

// Recognized modes.
const (
	// ModeNone always returns the initial delay.
	ModeNone Mode = iota
	// ModeLinear grows by a fixed increment per attempt, clamped to max.
	ModeLinear
	// ModeExponential doubles per attempt, clamped to max.
	ModeExponential
)

// Schedule is the backoff configuration record. Invariant: Compute(n) <= Max
// for every mode and every n.
type Schedule struct {
	Mode            Mode
	Initial         time.Duration
	Max             time.Duration
	LinearIncrement time.Duration
}

// Compute returns the delay before the nth connection attempt (1-based).
// n <= 1 always returns Initial.
func (s Schedule) Compute(n uint32) time.Duration {
	if n <= 1 {
		return clamp(s.Initial, s.Max)
	}

	switch s.Mode {
	case ModeLinear:
		d := s.Initial + time.Duration(n-1)*s.LinearIncrement
		return clamp(d, s.Max)
	case ModeExponential:
		d := s.Initial
		// Multiply iteratively rather than via exponent to avoid overflow
		// surprises for large n; the clamp below bounds it long before that
		// would matter in practice.
		for i := uint32(1); i < n && d < s.Max; i++ {
			d *= 2
		}
		return clamp(d, s.Max)
	default: // ModeNone
		return clamp(s.Initial, s.Max)
	}
}

func clamp(d, max time.Duration) time.Duration {
	if max > 0 && d > max {
		return max
	}
	return d
}

// Controller schedules and cancels the BackoffExpired event. It owns no
// connection state itself; compute_backoff is a pure function of the
// attempt count, which the caller (the connection state machine) tracks.
type Controller struct {
	schedule Schedule
	task     watchdog.DeferredTask
}

// New creates a Controller for the given schedule.
func New(schedule Schedule) *Controller {
	return &Controller{schedule: schedule}
}

// Schedule returns the configured backoff schedule.
func (c *Controller) Schedule() Schedule {
	return c.schedule
}

// Compute returns the delay for the nth attempt under this controller's
// schedule.
func (c *Controller) Compute(n uint32) time.Duration {
	return c.schedule.Compute(n)
}

// ScheduleExpiry arms a one-shot timer for Compute(attempt) that invokes
// onExpire when it fires. Call on Connecting/Backoff entry.
func (c *Controller) ScheduleExpiry(attempt uint32, onExpire func()) time.Duration {
	d := c.Compute(attempt)
	c.task.Schedule(d, onExpire)
	return d
}

// Cancel stops a pending expiry. Idempotent. Call on Connecting/Backoff exit.
func (c *Controller) Cancel() {
	c.task.Cancel()
}
