package backoff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedule_None(t *testing.T) {
	s := Schedule{Mode: ModeNone, Initial: 5 * time.Second, Max: 60 * time.Second}

	for n := uint32(1); n <= 4; n++ {
		assert.Equal(t, 5*time.Second, s.Compute(n))
	}
}

func TestSchedule_Linear(t *testing.T) {
	s := Schedule{
		Mode:            ModeLinear,
		Initial:         10 * time.Second,
		LinearIncrement: 5 * time.Second,
		Max:             30 * time.Second,
	}

	expected := []time.Duration{
		10 * time.Second,
		15 * time.Second,
		20 * time.Second,
		25 * time.Second,
		30 * time.Second,
		30 * time.Second, // clamped
	}
	for i, want := range expected {
		n := uint32(i + 1)
		assert.Equalf(t, want, s.Compute(n), "attempt %d", n)
	}
}

func TestSchedule_Exponential(t *testing.T) {
	// Matches SPEC_FULL §8 scenario 3: initial=10s, max=300s -> 10, 20, 40.
	s := Schedule{Mode: ModeExponential, Initial: 10 * time.Second, Max: 300 * time.Second}

	assert.Equal(t, 10*time.Second, s.Compute(1))
	assert.Equal(t, 20*time.Second, s.Compute(2))
	assert.Equal(t, 40*time.Second, s.Compute(3))
}

func TestSchedule_ExponentialClampsAtMax(t *testing.T) {
	s := Schedule{Mode: ModeExponential, Initial: 1 * time.Second, Max: 5 * time.Second}

	assert.Equal(t, 1*time.Second, s.Compute(1))
	assert.Equal(t, 2*time.Second, s.Compute(2))
	assert.Equal(t, 4*time.Second, s.Compute(3))
	assert.Equal(t, 5*time.Second, s.Compute(4)) // would be 8s, clamped
	assert.Equal(t, 5*time.Second, s.Compute(5))
}

// TestBackoff_MonotoneBounded checks that compute_backoff(n) <= max for
// every mode, and the sequence is non-decreasing until it hits max.
func TestBackoff_MonotoneBounded(t *testing.T) {
	schedules := []Schedule{
		{Mode: ModeNone, Initial: 3 * time.Second, Max: 3 * time.Second},
		{Mode: ModeLinear, Initial: 1 * time.Second, LinearIncrement: 1 * time.Second, Max: 9 * time.Second},
		{Mode: ModeExponential, Initial: 1 * time.Second, Max: 64 * time.Second},
	}

	for _, s := range schedules {
		var prev time.Duration
		for n := uint32(1); n <= 20; n++ {
			d := s.Compute(n)
			assert.LessOrEqualf(t, d, s.Max, "mode %v attempt %d exceeded max", s.Mode, n)
			if prev != 0 && prev < s.Max {
				assert.GreaterOrEqualf(t, d, prev, "mode %v attempt %d decreased before max", s.Mode, n)
			}
			prev = d
		}
	}
}

func TestController_ScheduleExpiryAndCancel(t *testing.T) {
	c := New(Schedule{Mode: ModeNone, Initial: 10 * time.Millisecond, Max: 10 * time.Millisecond})

	fired := make(chan struct{}, 1)
	d := c.ScheduleExpiry(1, func() { fired <- struct{}{} })
	assert.Equal(t, 10*time.Millisecond, d)

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("expiry never fired")
	}
}

func TestController_CancelPreventsExpiry(t *testing.T) {
	c := New(Schedule{Mode: ModeNone, Initial: 20 * time.Millisecond, Max: 20 * time.Millisecond})

	fired := make(chan struct{}, 1)
	c.ScheduleExpiry(1, func() { fired <- struct{}{} })
	c.Cancel()

	select {
	case <-fired:
		t.Fatal("cancelled expiry must not fire")
	case <-time.After(60 * time.Millisecond):
	}
}
