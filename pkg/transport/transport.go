// Package transport declares the interface the CoAP/DTLS telemetry
// transport collaborator must satisfy. The transport library and the raw
// socket lifecycle are out of scope for this module (SPEC_FULL §1); the
// state machine only ever calls through this interface.
package transport

import (
	"context"
	"errors"
	"time"

	"github.com/tracker-fw/cloud-gateway/pkg/messages"
)

// ConnectResult classifies the outcome of a Connect call.
type ConnectResult uint8

// Recognized connect outcomes.
const (
	ConnectOK ConnectResult = iota
	ConnectUnauthenticated
	ConnectFailed
)

// DisconnectResult classifies the outcome of a Disconnect call.
type DisconnectResult uint8

// Recognized disconnect outcomes. NotConnected is tolerated as success by
// the state machine (§4.1 Connected-exit side effect).
const (
	DisconnectOK DisconnectResult = iota
	DisconnectNotConnected
	DisconnectFailed
)

// ErrSendFailed is returned by any Send* method on failure. The state
// machine treats every such failure identically, as SendRequestFailed.
var ErrSendFailed = errors.New("transport: send failed")

// Credential is the opaque material a successful Provisioning run produces
// and Connect consumes (SPEC_FULL §3.1). VersionString identifies the
// firmware/app version presented during the handshake. ResumptionToken is
// optional; when set, the transport may use it to skip a full handshake
// round-trip.
type Credential struct {
	VersionString    string
	Material         []byte
	ResumptionToken  []byte
	ExpiresAt        time.Time
}

// ContentFormat identifies a CoAP content-format for shadow operations.
type ContentFormat uint16

// Recognized content formats.
const (
	ContentFormatCBOR ContentFormat = 60
	ContentFormatJSON ContentFormat = 50
)

// Transport is the blocking CoAP/DTLS collaborator interface (§6). All
// operations may block; the caller (the state machine / batch drain engine)
// is responsible for keeping cumulative per-iteration blocking time under
// msg_processing_timeout_s.
type Transport interface {
	// Connect establishes (or re-establishes) the DTLS session and cloud
	// handshake using cred.
	Connect(ctx context.Context, cred Credential) (ConnectResult, error)

	// Disconnect tears the session down.
	Disconnect(ctx context.Context) (DisconnectResult, error)

	// SendSensor sends one coded sensor value.
	SendSensor(ctx context.Context, appID uint16, value float64, timestampMS int64, confirmable bool) error

	// SendJSON forwards an application JSON payload (messages.SendJsonPayload).
	SendJSON(ctx context.Context, body []byte, confirmable bool) error

	// SendItem dispatches one drained storage item to the codec appropriate
	// for its kind.
	SendItem(ctx context.Context, item messages.ItemKind, payload []byte, timestampMS int64, confirmable bool) error

	// ShadowGet fetches the device shadow. deltaOnly selects delta vs
	// desired semantics.
	ShadowGet(ctx context.Context, deltaOnly bool, format ContentFormat) ([]byte, error)

	// ShadowPatch reports state to a shadow path.
	ShadowPatch(ctx context.Context, path string, body []byte, format ContentFormat, confirmable bool) error
}
