// Package transportfake provides an in-memory transport.Transport used by
// tests and the gateway's -simulate demo mode, standing in for the real
// CoAP/DTLS stack.
package transportfake

import (
	"context"
	"sync"

	"github.com/tracker-fw/cloud-gateway/pkg/messages"
	"github.com/tracker-fw/cloud-gateway/pkg/transport"
)

// SentItem records one item handed to SendItem, for test assertions.
type SentItem struct {
	Kind        messages.ItemKind
	Payload     []byte
	TimestampMS int64
	Confirmable bool
}

// Fake is a configurable in-memory transport.Transport.
type Fake struct {
	mu sync.Mutex

	// ConnectResult/ConnectErr/DisconnectResult/DisconnectErr let a test
	// script the next outcome of Connect/Disconnect.
	ConnectResult    transport.ConnectResult
	ConnectErr       error
	DisconnectResult transport.DisconnectResult
	DisconnectErr    error

	// SendErr, when non-nil, is returned by every Send* call.
	SendErr error

	// ShadowGetResponse is returned verbatim by ShadowGet.
	ShadowGetResponse []byte
	ShadowGetErr      error

	connected  bool
	lastCred   transport.Credential
	sentItems  []SentItem
	sentJSON   [][]byte
	shadowPatches [][]byte
}

// New returns a Fake defaulting to successful connect/disconnect.
func New() *Fake {
	return &Fake{ConnectResult: transport.ConnectOK, DisconnectResult: transport.DisconnectOK}
}

func (f *Fake) Connect(ctx context.Context, cred transport.Credential) (transport.ConnectResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ConnectErr != nil {
		return f.ConnectResult, f.ConnectErr
	}
	f.lastCred = cred
	if f.ConnectResult == transport.ConnectOK {
		f.connected = true
	}
	return f.ConnectResult, nil
}

func (f *Fake) Disconnect(ctx context.Context) (transport.DisconnectResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DisconnectErr != nil {
		return f.DisconnectResult, f.DisconnectErr
	}
	f.connected = false
	return f.DisconnectResult, nil
}

func (f *Fake) SendSensor(ctx context.Context, appID uint16, value float64, timestampMS int64, confirmable bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.SendErr
}

func (f *Fake) SendJSON(ctx context.Context, body []byte, confirmable bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return f.SendErr
	}
	cp := append([]byte(nil), body...)
	f.sentJSON = append(f.sentJSON, cp)
	return nil
}

func (f *Fake) SendItem(ctx context.Context, kind messages.ItemKind, payload []byte, timestampMS int64, confirmable bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return f.SendErr
	}
	cp := append([]byte(nil), payload...)
	f.sentItems = append(f.sentItems, SentItem{Kind: kind, Payload: cp, TimestampMS: timestampMS, Confirmable: confirmable})
	return nil
}

func (f *Fake) ShadowGet(ctx context.Context, deltaOnly bool, format transport.ContentFormat) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ShadowGetResponse, f.ShadowGetErr
}

func (f *Fake) ShadowPatch(ctx context.Context, path string, body []byte, format transport.ContentFormat, confirmable bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return f.SendErr
	}
	cp := append([]byte(nil), body...)
	f.shadowPatches = append(f.shadowPatches, cp)
	return nil
}

// Connected reports whether the fake currently considers itself connected.
func (f *Fake) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// LastCredential returns the credential passed to the most recent Connect.
func (f *Fake) LastCredential() transport.Credential {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastCred
}

// SentItems returns a copy of every item handed to SendItem so far.
func (f *Fake) SentItems() []SentItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]SentItem, len(f.sentItems))
	copy(out, f.sentItems)
	return out
}
