package timestamp

import "errors"

// Policy selects how a DataItem's timestamp is handled when Normalize does
// not succeed outright.
type Policy uint8

// Recognized policies.
const (
	// PolicyKeep keeps the original value on any non-success.
	PolicyKeep Policy = iota
	// PolicyNow replaces the value with current uptime and normalizes that;
	// still fails if the clock remains invalid.
	PolicyNow
	// PolicyNoTimestamp replaces the value with NoTimestampSentinel.
	PolicyNoTimestamp
	// PolicyDrop returns the underlying error; the caller must discard the
	// item. This is the Open Questions resolution (SPEC_FULL §9): Drop
	// returns an error, it never logs-and-sends a zero timestamp.
	PolicyDrop
)

// ErrDropped is wrapped around the underlying normalize error when
// PolicyDrop applies, so callers can distinguish "discard this item" from
// any other normalize failure using errors.Is.
var ErrDropped = errors.New("timestamp: item dropped by policy")

// Apply runs Normalize on t and applies policy to the result.
//
//   - PolicyKeep: success returns the normalized value; any error returns t
//     unchanged with a nil error.
//   - PolicyNow: success returns the normalized value; on error, retries
//     once against the current uptime; failure of that retry is returned.
//   - PolicyNoTimestamp: success returns the normalized value; any error
//     returns NoTimestampSentinel with a nil error.
//   - PolicyDrop: success returns the normalized value; any error is
//     wrapped in ErrDropped and returned.
func Apply(n *Normalizer, policy Policy, t int64) (int64, error) {
	v, err := n.Normalize(t)
	if err == nil {
		return v, nil
	}

	switch policy {
	case PolicyKeep:
		return t, nil
	case PolicyNow:
		now := n.clock.UptimeMS()
		v, err := n.Normalize(now)
		if err != nil {
			return 0, err
		}
		return v, nil
	case PolicyNoTimestamp:
		return NoTimestampSentinel, nil
	case PolicyDrop:
		return 0, errors.Join(ErrDropped, err)
	default:
		return t, nil
	}
}
