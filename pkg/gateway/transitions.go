package gateway

import (
	"strings"

	"github.com/tracker-fw/cloud-gateway/pkg/fatal"
	"github.com/tracker-fw/cloud-gateway/pkg/messages"
	"github.com/tracker-fw/cloud-gateway/pkg/provisioning"
	"github.com/tracker-fw/cloud-gateway/pkg/transport"
)

// entryEffects and exitEffects are keyed by ancestor-path segment name
// (SPEC_FULL §9 "Design Notes": walk an ancestor list on each transition).
// transitionTo computes the common prefix of the old and new state's paths
// and runs exit effects for the old path's unique suffix (deepest first),
// then entry effects for the new path's unique suffix (shallowest first).
var entryEffects = map[string]func(*Machine){
	"Connecting":   (*Machine).enterConnecting,
	"Attempt":      (*Machine).enterAttempt,
	"Backoff":      (*Machine).enterBackoff,
	"Provisioned":  (*Machine).enterProvisioned,
	"Provisioning": (*Machine).enterProvisioning,
	"Ready":        (*Machine).enterReady,
	"Paused":       (*Machine).enterPaused,
}

var exitEffects = map[string]func(*Machine){
	"Backoff":   (*Machine).exitBackoff,
	"Connected": (*Machine).exitConnected,
}

// transitionTo moves the machine from its current state to next, running
// the appropriate entry/exit effects and recording a status-change audit
// event (SPEC_FULL §4.1.1).
func (m *Machine) transitionTo(next State, trigger string) {
	old := m.ctx.CurrentState
	if old == next {
		return
	}

	oldPath := old.Path()
	newPath := next.Path()
	common := commonPrefixLen(oldPath, newPath)

	// CurrentState already names the destination while exit effects run, so
	// the Disconnected status published on leaving Connected carries the
	// path of the state being entered.
	m.ctx.CurrentState = next

	for i := len(oldPath) - 1; i >= common; i-- {
		if fn, ok := exitEffects[oldPath[i]]; ok {
			fn(m)
		}
	}

	for i := common; i < len(newPath); i++ {
		if fn, ok := entryEffects[newPath[i]]; ok {
			fn(m)
		}
	}

	m.logger.LogStateChange(old.String(), next.String(), trigger, oldPath, newPath)
}

func (m *Machine) enterConnecting() {
	m.ctx.AttemptCount = 0
	m.ctx.ProvisioningActive = false
}

func (m *Machine) enterAttempt() {
	m.ctx.AttemptCount++
}

func (m *Machine) enterBackoff() {
	m.ctx.BackoffSeconds = m.backoffCtl.ScheduleExpiry(m.ctx.AttemptCount, func() {
		m.hub.Private <- messages.BackoffExpired
	})
}

func (m *Machine) exitBackoff() {
	m.backoffCtl.Cancel()
}

// enterProvisioned initiates a transport connect asynchronously; the result
// arrives as one of {ConnectAttemptSucceeded, Unauthenticated,
// ConnectAttemptFailed} on the private channel (SPEC_FULL §4.1).
func (m *Machine) enterProvisioned() {
	go m.connectAsync()
}

func (m *Machine) connectAsync() {
	res, err := m.xport.Connect(m.runCtx, m.credential.Get())
	if err != nil {
		m.logger.Errorf("transport.Connect", "%v", err)
		m.hub.Private <- messages.ConnectAttemptFailed
		return
	}
	switch res {
	case transport.ConnectOK:
		m.hub.Private <- messages.ConnectAttemptSucceeded
	case transport.ConnectUnauthenticated:
		m.hub.Private <- messages.Unauthenticated
	default:
		m.hub.Private <- messages.ConnectAttemptFailed
	}
}

// enterProvisioning cancels any in-flight location search and constructs a
// fresh Provisioning Coordinator for this attempt, then hands it to
// ProvisioningDriver (if configured) to kick off the external
// credential-refresh dialogue (SPEC_FULL §4.1, §4.3).
func (m *Machine) enterProvisioning() {
	m.ctx.ProvisioningActive = true
	m.publish(m.hub.Location.Publish(messages.SearchCancel{}))

	coord := provisioning.New(m.hub.Network, m.bootSalt, func(result provisioning.Result, cred transport.Credential, err error) {
		switch result {
		case provisioning.ResultFinished:
			m.credential.Set(cred)
			m.hub.Private <- messages.ProvisioningFinished
		case provisioning.ResultFailed:
			m.hub.Private <- messages.ProvisioningFailed
		case provisioning.ResultFatal:
			m.reportFatal(fatal.ProvisioningFatal, err)
		}
	})
	m.provisioningCoord = coord

	if m.ProvisioningDriver != nil {
		m.ProvisioningDriver(coord)
	}
}

func (m *Machine) exitConnected() {
	if _, err := m.xport.Disconnect(m.runCtx); err != nil {
		m.logger.Warnf("transport disconnect: %v", err)
	}
	m.publish(m.hub.CloudOut.Publish(messages.Disconnected{Reason: "exit_connected", Path: pathString(m.ctx.CurrentState)}))
}

func (m *Machine) enterReady() {
	m.publish(m.hub.CloudOut.Publish(messages.Connected{Reason: "ready", Path: pathString(StateConnectedReady)}))
}

func (m *Machine) enterPaused() {
	m.publish(m.hub.CloudOut.Publish(messages.Disconnected{Reason: "radio_down", Path: pathString(StateConnectedPaused)}))
	m.batchEngine.ForceCloseAll()
}

func pathString(s State) string {
	return strings.Join(s.Path(), "/")
}
