// Package timestamp rewrites device-local monotonic uptime timestamps to
// wall-clock time, under the partial-validity rules a cellular tracker has
// to live with: the device may sample records before its RTC has ever been
// set from the network.
package timestamp

import "errors"

// ErrInvalidFutureUptime is returned when a timestamp claims to be further
// in the future than the device's own current uptime allows.
var ErrInvalidFutureUptime = errors.New("timestamp: uptime value is in the future")

// ErrClockNotValid is returned when wall-clock time has not yet been
// established (no network time sync, no valid RTC) and the value is not
// already a wall-clock timestamp.
var ErrClockNotValid = errors.New("timestamp: wall clock not yet valid")

// NoTimestampSentinel is the value substituted by the NoTimestamp policy.
const NoTimestampSentinel int64 = -1

// Clock supplies the two pieces of device state normalize needs: the
// current monotonic uptime and whether wall-clock time is currently valid,
// plus the conversion itself once it is. Implementations wrap whatever RTC /
// uptime counter the firmware exposes; this package makes no assumption
// about their source.
type Clock interface {
	// UptimeMS returns current device uptime in milliseconds.
	UptimeMS() int64
	// WallClockValid reports whether uptime-to-wall-clock conversion is
	// currently possible (e.g. network time has been received at least once).
	WallClockValid() bool
	// UptimeToUnixMS converts a monotonic uptime value to Unix epoch
	// milliseconds. Only meaningful when WallClockValid is true.
	UptimeToUnixMS(uptimeMS int64) int64
}

// Normalizer converts device-local timestamps to wall-clock using a fixed
// threshold distinguishing "already wall-clock" values from uptime values.
type Normalizer struct {
	clock               Clock
	futureEpochThresholdMS int64
}

// New creates a Normalizer. futureEpochThresholdMS is a fixed constant
// representing an early future date well past any plausible device uptime;
// values at or above it are assumed to already be wall-clock.
func New(clock Clock, futureEpochThresholdMS int64) *Normalizer {
	return &Normalizer{clock: clock, futureEpochThresholdMS: futureEpochThresholdMS}
}

// Normalize implements the §4.5 contract:
//   - t >= threshold: already wall-clock, returned as-is.
//   - t > current uptime: impossible, ErrInvalidFutureUptime.
//   - wall-clock not valid: ErrClockNotValid.
//   - otherwise: converted to Unix epoch milliseconds.
func (n *Normalizer) Normalize(t int64) (int64, error) {
	if t >= n.futureEpochThresholdMS {
		return t, nil
	}

	if t > n.clock.UptimeMS() {
		return 0, ErrInvalidFutureUptime
	}

	if !n.clock.WallClockValid() {
		return 0, ErrClockNotValid
	}

	return n.clock.UptimeToUnixMS(t), nil
}

// IsWallClock reports whether t is already at or above the future-epoch
// threshold, i.e. normalize would return it unchanged.
func (n *Normalizer) IsWallClock(t int64) bool {
	return t >= n.futureEpochThresholdMS
}
