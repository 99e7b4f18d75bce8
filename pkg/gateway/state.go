// Package gateway implements the Connection State Machine (SPEC_FULL §4.1):
// the core, single-threaded, run-to-completion process that owns
// current_state and drives every cloud-connectivity transition for the
// tracker.
package gateway

// State is a leaf of the connection-state hierarchy (SPEC_FULL §3):
//
//	Running
//	├─ Disconnected
//	├─ Connecting
//	│   ├─ Attempt
//	│   │   ├─ Provisioned
//	│   │   └─ Provisioning
//	│   └─ Backoff
//	└─ Connected
//	    ├─ Ready
//	    └─ Paused
//
// Only leaves are ever the "current" state; the non-leaf names (Running,
// Connecting, Attempt, Connected) exist solely as ancestor-path segments
// that entry/exit effects key off of.
type State uint8

// Recognized leaf states.
const (
	StateDisconnected State = iota
	StateConnectingAttemptProvisioned
	StateConnectingAttemptProvisioning
	StateConnectingBackoff
	StateConnectedReady
	StateConnectedPaused
)

// statePaths gives each leaf's full ancestor chain, root first. Walking the
// common prefix of two paths is how transitionTo computes which entry/exit
// effects to run (SPEC_FULL §9 "Design Notes").
var statePaths = map[State][]string{
	StateDisconnected:                  {"Running", "Disconnected"},
	StateConnectingAttemptProvisioned:  {"Running", "Connecting", "Attempt", "Provisioned"},
	StateConnectingAttemptProvisioning: {"Running", "Connecting", "Attempt", "Provisioning"},
	StateConnectingBackoff:             {"Running", "Connecting", "Backoff"},
	StateConnectedReady:                {"Running", "Connected", "Ready"},
	StateConnectedPaused:               {"Running", "Connected", "Paused"},
}

// Path returns s's full ancestor chain, root first.
func (s State) Path() []string {
	return statePaths[s]
}

// String returns the leaf name.
func (s State) String() string {
	p := statePaths[s]
	if len(p) == 0 {
		return "UNKNOWN"
	}
	return p[len(p)-1]
}

// IsConnecting reports whether s is Connecting or any descendant of it.
func (s State) IsConnecting() bool {
	return hasAncestor(s, "Connecting")
}

// IsConnected reports whether s is Connected or any descendant of it.
func (s State) IsConnected() bool {
	return hasAncestor(s, "Connected")
}

func hasAncestor(s State, name string) bool {
	for _, seg := range statePaths[s] {
		if seg == name {
			return true
		}
	}
	return false
}

// commonPrefixLen returns how many leading path segments a and b share.
func commonPrefixLen(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
