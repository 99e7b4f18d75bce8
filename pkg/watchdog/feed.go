package watchdog

import (
	"sync"
	"time"

	"github.com/tracker-fw/cloud-gateway/pkg/fatal"
)

// Feeder is the task-watchdog the owning goroutine must feed once per loop
// iteration. Missing a feed for Timeout raises a fatal.WatchdogExpired
// signal exactly once per stall.
type Feeder struct {
	mu       sync.Mutex
	timeout  time.Duration
	reporter fatal.Reporter
	timer    *time.Timer
	stopped  bool
}

// NewFeeder creates a Feeder that reports to reporter if Feed is not called
// at least once every timeout.
func NewFeeder(timeout time.Duration, reporter fatal.Reporter) *Feeder {
	f := &Feeder{timeout: timeout, reporter: reporter}
	f.timer = time.AfterFunc(timeout, f.expire)
	return f
}

// Feed resets the watchdog window. Call once per processed message and once
// per idle-timeout wakeup in the owning loop.
func (f *Feeder) Feed() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stopped {
		return
	}
	f.timer.Reset(f.timeout)
}

// Stop disarms the watchdog permanently (used on clean shutdown, so a
// deliberate exit never looks like a stall).
func (f *Feeder) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stopped = true
	f.timer.Stop()
}

func (f *Feeder) expire() {
	f.mu.Lock()
	stopped := f.stopped
	f.mu.Unlock()

	if stopped {
		return
	}
	f.reporter.Report(fatal.Signal{
		Kind:    fatal.WatchdogExpired,
		Message: "task watchdog not fed within timeout",
		Time:    time.Now(),
	})
}
