// Package watchdog provides the two timer primitives the gateway core's
// concurrency model depends on: a cancellable one-shot deferred task (used
// both to schedule BackoffExpired and to run the provisioning settle delay
// that precedes ProvisioningFinished), and a task-watchdog feed that raises a fatal signal if the
// owning goroutine stalls for longer than its configured window.
//
// Both are built on the same time.AfterFunc-driven state+callback shape used
// elsewhere in this codebase for timers with cancel/idempotence requirements.
package watchdog

import (
	"sync"
	"time"
)

// DeferredTask is a cancellable one-shot timer. Scheduling and cancelling
// are idempotent and safe to call from any goroutine; the fired callback
// itself runs on its own goroutine and must not be assumed to hold any lock
// the caller cares about.
type DeferredTask struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	gen     uint64
}

// Schedule arms the task to invoke fn after d, cancelling any previously
// scheduled invocation first. Safe to call repeatedly; only the most recent
// Schedule call's fn will fire.
func (t *DeferredTask) Schedule(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.pending = true
	t.gen++
	gen := t.gen
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		if !t.pending || t.gen != gen {
			t.mu.Unlock()
			return
		}
		t.pending = false
		t.mu.Unlock()
		fn()
	})
}

// Cancel stops a pending invocation. Idempotent: calling Cancel when nothing
// is scheduled, or calling it twice, is a no-op.
func (t *DeferredTask) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pending = false
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Pending reports whether an invocation is currently scheduled.
func (t *DeferredTask) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}
