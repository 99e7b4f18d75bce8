package watchdog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tracker-fw/cloud-gateway/pkg/fatal"
)

func TestDeferredTask_FiresAfterDelay(t *testing.T) {
	var task DeferredTask
	fired := make(chan struct{})

	task.Schedule(10*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("task did not fire")
	}
}

func TestDeferredTask_CancelIsIdempotent(t *testing.T) {
	var task DeferredTask
	fired := make(chan struct{}, 1)

	task.Schedule(20*time.Millisecond, func() { fired <- struct{}{} })
	task.Cancel()
	task.Cancel() // idempotent

	select {
	case <-fired:
		t.Fatal("cancelled task must not fire")
	case <-time.After(60 * time.Millisecond):
	}

	assert.False(t, task.Pending())
}

func TestDeferredTask_RescheduleReplacesPrevious(t *testing.T) {
	var task DeferredTask
	var fires int
	done := make(chan struct{})

	task.Schedule(5*time.Millisecond, func() { fires++ })
	task.Schedule(5*time.Millisecond, func() {
		fires++
		close(done)
	})

	<-done
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, fires)
}

func TestFeeder_ExpiresWithoutFeed(t *testing.T) {
	r := fatal.NewChannelReporter(1)
	f := NewFeeder(10*time.Millisecond, r)
	defer f.Stop()

	select {
	case s := <-r.Signals():
		assert.Equal(t, fatal.WatchdogExpired, s.Kind)
	case <-time.After(time.Second):
		t.Fatal("watchdog never expired")
	}
}

func TestFeeder_FeedPreventsExpiry(t *testing.T) {
	r := fatal.NewChannelReporter(1)
	f := NewFeeder(30*time.Millisecond, r)
	defer f.Stop()

	stop := time.After(100 * time.Millisecond)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ticker.C:
			f.Feed()
		case <-stop:
			break loop
		}
	}

	select {
	case s := <-r.Signals():
		t.Fatalf("unexpected fatal signal: %v", s)
	default:
	}
}

func TestFeeder_StopSuppressesExpiry(t *testing.T) {
	r := fatal.NewChannelReporter(1)
	f := NewFeeder(10*time.Millisecond, r)
	f.Stop()

	time.Sleep(30 * time.Millisecond)

	select {
	case s := <-r.Signals():
		t.Fatalf("stopped watchdog must not report: %v", s)
	default:
	}
}
