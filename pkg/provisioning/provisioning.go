// Package provisioning drives the credential-refresh sub-protocol described
// in SPEC_FULL §4.3. It is a small asynchronous state machine of its own,
// cycling the radio (via NETWORK bus requests) and reporting exactly one
// terminal outcome back to the owning Coordinator caller.
package provisioning

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
	"sync"
	"time"

	"golang.org/x/crypto/hkdf"

	"github.com/tracker-fw/cloud-gateway/pkg/bus"
	"github.com/tracker-fw/cloud-gateway/pkg/messages"
	"github.com/tracker-fw/cloud-gateway/pkg/transport"
	"github.com/tracker-fw/cloud-gateway/pkg/watchdog"
)

// Outcome is the raw result reported by the external credential-refresh
// dialogue. These map 1:1 onto SPEC_FULL §4.3's named events.
type Outcome uint8

// Recognized outcomes.
const (
	OutcomeNeedRadioOffline Outcome = iota
	OutcomeNeedRadioOnline
	OutcomeDone
	OutcomeNoCommands
	OutcomeTooManyCommands
	OutcomeFailed
	OutcomeNoValidDateTime
	OutcomeDeviceNotClaimed
	OutcomeWrongRootCA
	OutcomeFatalError
)

// Result is what the Coordinator ultimately hands back to its caller.
type Result uint8

// Recognized terminal results.
const (
	ResultFinished Result = iota
	ResultFailed
	ResultFatal
)

// settleDelay is the pause after a Done-class outcome before declaring
// ProvisioningFinished, giving credentials time to propagate per §4.3.1.
// It is a var, not a const, so tests can shorten it.
var settleDelay = 10 * time.Second

// ErrFatal wraps the fatal-class outcome names for Reporter/log consumers.
var ErrFatal = errors.New("provisioning: fatal outcome")

// Callback is invoked exactly once with the terminal result. cred is only
// populated when result is ResultFinished.
type Callback func(result Result, cred transport.Credential, err error)

// Coordinator runs one provisioning attempt, per SPEC_FULL §4.3. Each
// connection attempt that needs a credential refresh constructs a fresh
// Coordinator; it is driven externally by calling Feed with each Outcome as
// the refresh dialogue reports it. Feed is safe to call from any goroutine.
type Coordinator struct {
	network *bus.Bus[messages.NetworkEvent]
	salt    []byte
	cb      Callback

	settle *watchdog.DeferredTask

	mu        sync.Mutex
	refreshed transport.Credential
	done      bool
}

// New returns a Coordinator that publishes radio cycling requests on
// network and invokes cb exactly once, on the terminal outcome. salt should
// be a per-boot random value used to derive resumption tokens; callers
// typically generate one with NewBootSalt.
func New(network *bus.Bus[messages.NetworkEvent], salt []byte, cb Callback) *Coordinator {
	return &Coordinator{network: network, salt: salt, cb: cb, settle: &watchdog.DeferredTask{}}
}

// NewBootSalt returns 32 random bytes suitable for use as Coordinator's
// per-boot salt.
func NewBootSalt() ([]byte, error) {
	salt := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// Feed reports one outcome from the external refresh dialogue. Feed is a
// no-op once the coordinator has already reached a terminal outcome.
func (c *Coordinator) Feed(outcome Outcome, refreshedMaterial []byte, versionString string) {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	switch outcome {
	case OutcomeNeedRadioOffline:
		c.network.Publish(messages.NetworkDisconnectRequest{})
	case OutcomeNeedRadioOnline:
		c.network.Publish(messages.NetworkConnectRequest{})
	case OutcomeDone, OutcomeNoCommands, OutcomeTooManyCommands:
		c.mu.Lock()
		c.refreshed = transport.Credential{
			VersionString:   versionString,
			Material:        refreshedMaterial,
			ResumptionToken: c.deriveResumptionToken(refreshedMaterial),
			ExpiresAt:       time.Time{},
		}
		c.mu.Unlock()
		c.settle.Schedule(settleDelay, c.finish)
	case OutcomeFailed, OutcomeNoValidDateTime, OutcomeDeviceNotClaimed:
		c.terminal(ResultFailed, transport.Credential{}, nil)
	case OutcomeWrongRootCA, OutcomeFatalError:
		c.terminal(ResultFatal, transport.Credential{}, ErrFatal)
	}
}

// Cancel aborts any pending settle delay without invoking the callback.
// Used when the owning state machine is torn down while Provisioning is
// still in flight.
func (c *Coordinator) Cancel() {
	c.settle.Cancel()
}

func (c *Coordinator) finish() {
	c.mu.Lock()
	cred := c.refreshed
	c.mu.Unlock()
	c.terminal(ResultFinished, cred, nil)
}

func (c *Coordinator) terminal(result Result, cred transport.Credential, err error) {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return
	}
	c.done = true
	c.mu.Unlock()

	c.settle.Cancel()
	if c.cb != nil {
		c.cb(result, cred, err)
	}
}

// deriveResumptionToken derives a 32-byte resumption token from the
// refreshed credential material and the coordinator's per-boot salt, via
// HKDF-SHA256 (SPEC_FULL §4.3.1). Returns nil if no salt was configured.
func (c *Coordinator) deriveResumptionToken(material []byte) []byte {
	if len(c.salt) == 0 {
		return nil
	}
	r := hkdf.New(sha256.New, material, c.salt, []byte("cloud-gateway-resumption-token"))
	token := make([]byte, 32)
	if _, err := io.ReadFull(r, token); err != nil {
		return nil
	}
	return token
}
