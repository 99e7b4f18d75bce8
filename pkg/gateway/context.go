package gateway

import "time"

// Context is the process-wide StateContext singleton owned exclusively by
// the state-machine goroutine (SPEC_FULL §3). It is never shared or locked;
// every field is read and written only from within Machine.Run's loop.
type Context struct {
	// CurrentState is the connection state machine's current leaf state.
	CurrentState State

	// LastChannel names the bus channel the most recently processed message
	// arrived on, for diagnostics.
	LastChannel string

	// NetworkUp tracks cellular link state, updated from every NETWORK
	// message before dispatch (SPEC_FULL §5 ordering guarantees).
	NetworkUp bool

	// ProvisioningActive is true iff the current Attempt entered
	// Provisioning; it decides Backoff's exit target.
	ProvisioningActive bool

	// AttemptCount is reset to 0 on entering Connecting and incremented on
	// every Attempt entry.
	AttemptCount uint32

	// BackoffSeconds records the most recently scheduled backoff delay.
	BackoffSeconds time.Duration
}

// NewContext returns a Context in its initial Disconnected state.
func NewContext() *Context {
	return &Context{CurrentState: StateDisconnected}
}
