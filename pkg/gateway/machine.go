package gateway

import (
	"context"
	"time"

	"github.com/tracker-fw/cloud-gateway/pkg/backoff"
	"github.com/tracker-fw/cloud-gateway/pkg/batchdrain"
	"github.com/tracker-fw/cloud-gateway/pkg/config"
	"github.com/tracker-fw/cloud-gateway/pkg/fatal"
	"github.com/tracker-fw/cloud-gateway/pkg/messages"
	"github.com/tracker-fw/cloud-gateway/pkg/protolog"
	"github.com/tracker-fw/cloud-gateway/pkg/provisioning"
	"github.com/tracker-fw/cloud-gateway/pkg/storage"
	"github.com/tracker-fw/cloud-gateway/pkg/timestamp"
	"github.com/tracker-fw/cloud-gateway/pkg/transport"
	"github.com/tracker-fw/cloud-gateway/pkg/watchdog"
)

// Machine is the Connection State Machine (SPEC_FULL §4.1): a single
// goroutine that owns Context exclusively and runs every collaborator
// channel through one select loop, run-to-completion per message.
type Machine struct {
	ctx *Context
	hub *Hub
	cfg config.GatewayConfig

	backoffCtl  *backoff.Controller
	xport       transport.Transport
	store       storage.Storage
	batchEngine *batchdrain.Engine
	logger      *protolog.Adapter
	reporter    fatal.Reporter
	norm        *timestamp.Normalizer

	bootSalt          []byte
	credential        credentialCell
	provisioningCoord *provisioning.Coordinator

	// ProvisioningDriver, if set, is invoked with each attempt's freshly
	// constructed Coordinator so an external dialogue (real or simulated)
	// can start feeding it Outcomes. Left nil in tests that drive the
	// Coordinator directly.
	ProvisioningDriver func(*provisioning.Coordinator)

	runCtx context.Context
}

// New wires one Machine from its collaborators. storageReadTimeout bounds
// each batch-drain read (SPEC_FULL §4.4); pass storage.ReadTimeout absent a
// more specific value.
func New(cfg config.GatewayConfig, hub *Hub, xport transport.Transport, store storage.Storage, clock timestamp.Clock, logger *protolog.Adapter, reporter fatal.Reporter, storageReadTimeout time.Duration) *Machine {
	norm := timestamp.New(clock, cfg.FutureEpochThresholdMS)
	m := &Machine{
		ctx:        NewContext(),
		hub:        hub,
		cfg:        cfg,
		backoffCtl: backoff.New(cfg.Backoff),
		xport:      xport,
		store:      store,
		logger:     logger,
		reporter:   reporter,
		norm:       norm,
	}
	m.batchEngine = batchdrain.New(store, xport, hub.StorageControlOut, norm, cfg.TimestampPolicy, logger, logger, storageReadTimeout)
	return m
}

// Run drives the state machine until ctx is cancelled. It owns Context for
// the duration of the call; Run must not be invoked concurrently with
// itself.
func (m *Machine) Run(ctx context.Context) error {
	m.runCtx = ctx

	salt, err := provisioning.NewBootSalt()
	if err != nil {
		m.reportFatal(fatal.TransportInitFailed, err)
		return err
	}
	m.bootSalt = salt

	network, err := m.hub.Network.Subscribe()
	if err != nil {
		return err
	}
	defer m.hub.Network.Unsubscribe(network)

	cloudIn, err := m.hub.CloudIn.Subscribe()
	if err != nil {
		return err
	}
	defer m.hub.CloudIn.Unsubscribe(cloudIn)

	storageControl, err := m.hub.StorageControlIn.Subscribe()
	if err != nil {
		return err
	}
	defer m.hub.StorageControlIn.Unsubscribe(storageControl)

	storageData, err := m.hub.StorageData.Subscribe()
	if err != nil {
		return err
	}
	defer m.hub.StorageData.Unsubscribe(storageData)

	feeder := watchdog.NewFeeder(m.cfg.WatchdogTimeout, m.reporter)
	defer feeder.Stop()

	// An idle loop wakes up at least this often to feed the watchdog
	// (SPEC_FULL §5 "Suspension points").
	idle := m.cfg.WatchdogTimeout - m.cfg.MsgProcessingTimeout

	// The machine starts Disconnected and stays there until the radio
	// collaborator reports NETWORK Connected; there is no synthetic
	// startup transition (SPEC_FULL §4.1 transition table).
	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return ctx.Err()

		case evt := <-network:
			m.ctx.LastChannel = "NETWORK"
			m.handleNetwork(evt)
			feeder.Feed()

		case evt := <-cloudIn:
			m.ctx.LastChannel = "CLOUD_IN"
			m.handleCloudIn(evt)
			feeder.Feed()

		case evt := <-storageControl:
			m.ctx.LastChannel = "STORAGE_CONTROL_IN"
			m.handleStorageControl(evt)
			feeder.Feed()

		case evt := <-storageData:
			m.ctx.LastChannel = "STORAGE_DATA"
			m.handleStorageData(evt)
			feeder.Feed()

		case evt := <-m.hub.Private:
			m.ctx.LastChannel = "PRIVATE"
			m.handlePrivate(evt)
			feeder.Feed()

		case <-time.After(idle):
			feeder.Feed()
		}
	}
}

// publish reports a bus publish failure as fatal, per SPEC_FULL §4.1
// ("Failure semantics"): a bounded-timeout publish failure on any channel
// the core itself publishes to is an unrecoverable liveness violation.
func (m *Machine) publish(err error) {
	if err != nil {
		m.reportFatal(fatal.BusPublishTimeout, err)
	}
}

func (m *Machine) reportFatal(kind fatal.Kind, err error) {
	msg := kind.String()
	if err != nil {
		msg = err.Error()
	}
	m.reporter.Report(fatal.Signal{Kind: kind, Message: msg, Time: time.Now()})
}

// shutdown force-closes any open batch session and disconnects transport,
// mirroring Paused-entry's cleanup (SPEC_FULL §5.1).
func (m *Machine) shutdown() {
	m.batchEngine.ForceCloseAll()
	if m.ctx.CurrentState.IsConnected() {
		_, _ = m.xport.Disconnect(m.runCtx)
	}
	if m.provisioningCoord != nil {
		m.provisioningCoord.Cancel()
	}
}

// handleNetwork implements the NETWORK column of SPEC_FULL §4.1's
// transition table. While in Connecting/Attempt/Provisioning, NetworkUp is
// updated but no transition fires, since the credential dialogue itself is
// cycling the radio.
func (m *Machine) handleNetwork(evt messages.NetworkEvent) {
	switch e := evt.(type) {
	case messages.NetworkConnected:
		m.ctx.NetworkUp = true
		if m.ctx.CurrentState == StateConnectingAttemptProvisioning {
			return // absorbed: the refresh dialogue is cycling the radio itself
		}
		switch m.ctx.CurrentState {
		case StateDisconnected:
			m.transitionTo(StateConnectingAttemptProvisioned, "network_connected")
		case StateConnectedPaused:
			m.transitionTo(StateConnectedReady, "network_connected")
		}

	case messages.NetworkDisconnected:
		m.ctx.NetworkUp = false
		if m.ctx.CurrentState == StateConnectingAttemptProvisioning {
			return // absorbed, same reasoning as NetworkConnected above
		}
		switch m.ctx.CurrentState {
		case StateConnectedReady:
			m.transitionTo(StateConnectedPaused, "network_disconnected")
		case StateConnectingAttemptProvisioned, StateConnectingBackoff:
			m.transitionTo(StateDisconnected, "network_disconnected")
		}

	case messages.NetworkQualitySampleResponse:
		_ = e // forwarded to location/telemetry consumers outside this module
	}
}

func (m *Machine) handleCloudIn(evt messages.CloudIn) {
	if m.ctx.CurrentState != StateConnectedReady {
		return
	}
	switch e := evt.(type) {
	case messages.SendJsonPayload:
		if err := m.xport.SendJSON(m.runCtx, e.Body, m.cfg.ConfirmableMessages); err != nil {
			m.hub.Private <- messages.SendRequestFailed
		}
	case messages.ShadowPollDelta:
		body, err := m.xport.ShadowGet(m.runCtx, true, transport.ContentFormatCBOR)
		if err != nil {
			m.hub.Private <- messages.SendRequestFailed
			return
		}
		if len(body) == 0 {
			m.publish(m.hub.CloudOut.Publish(messages.ShadowResponseEmptyDelta{}))
			return
		}
		m.publish(m.hub.CloudOut.Publish(messages.ShadowResponseDelta{Body: body}))
	case messages.ShadowPollDesired:
		body, err := m.xport.ShadowGet(m.runCtx, false, transport.ContentFormatCBOR)
		if err != nil {
			m.hub.Private <- messages.SendRequestFailed
			return
		}
		if len(body) == 0 {
			m.publish(m.hub.CloudOut.Publish(messages.ShadowResponseEmptyDesired{}))
			return
		}
		m.publish(m.hub.CloudOut.Publish(messages.ShadowResponseDesired{Body: body}))
	case messages.ShadowReportReported:
		if err := m.xport.ShadowPatch(m.runCtx, "reported", e.Body, transport.ContentFormatCBOR, m.cfg.ConfirmableMessages); err != nil {
			m.hub.Private <- messages.SendRequestFailed
		}
	case messages.ProvisioningRequest:
		m.transitionTo(StateConnectingAttemptProvisioning, "provisioning_requested")
	}
}

// handleStorageControl drains sessions only in Ready. In Paused every
// announced session is closed without sending (SPEC_FULL §4.4 "In Paused");
// in any other state storage control events are ignored.
func (m *Machine) handleStorageControl(evt messages.StorageControlIn) {
	if m.ctx.CurrentState == StateConnectedPaused {
		switch e := evt.(type) {
		case messages.BatchAvailable:
			m.batchEngine.HandleBatchEmpty(messages.BatchEmpty{SessionID: e.SessionID})
		case messages.BatchEmpty:
			m.batchEngine.HandleBatchEmpty(e)
		case messages.BatchError:
			m.batchEngine.HandleBatchError(e)
		case messages.BatchBusy:
			m.batchEngine.HandleBatchEmpty(messages.BatchEmpty{SessionID: e.SessionID})
		}
		return
	}
	if m.ctx.CurrentState != StateConnectedReady {
		return
	}
	switch e := evt.(type) {
	case messages.BatchAvailable:
		m.batchEngine.HandleBatchAvailable(m.runCtx, e)
	case messages.BatchEmpty:
		m.batchEngine.HandleBatchEmpty(e)
	case messages.BatchError:
		m.batchEngine.HandleBatchError(e)
	case messages.BatchBusy:
		m.batchEngine.HandleBatchBusy(e)
	}
}

func (m *Machine) handleStorageData(evt messages.StorageDataIn) {
	if m.ctx.CurrentState != StateConnectedReady {
		return
	}
	item, ok := evt.(messages.RealtimeItem)
	if !ok {
		return
	}
	ts, err := timestamp.Apply(m.norm, m.cfg.TimestampPolicy, item.TimestampMS)
	if err != nil {
		return
	}
	if err := m.xport.SendItem(m.runCtx, item.Kind, item.Payload, ts, m.cfg.ConfirmableMessages); err != nil {
		m.hub.Private <- messages.SendRequestFailed
	}
}

// handlePrivate implements the PRIVATE column of SPEC_FULL §4.1: the
// asynchronous callbacks marshaled onto the owning goroutine.
func (m *Machine) handlePrivate(evt messages.PrivateEvent) {
	switch evt {
	case messages.BackoffExpired:
		if m.ctx.CurrentState != StateConnectingBackoff {
			return // stale timer firing after a state change cancelled it
		}
		if m.ctx.ProvisioningActive {
			m.transitionTo(StateConnectingAttemptProvisioning, "backoff_expired")
		} else {
			m.transitionTo(StateConnectingAttemptProvisioned, "backoff_expired")
		}

	case messages.ConnectAttemptSucceeded:
		if m.ctx.CurrentState != StateConnectingAttemptProvisioned {
			return
		}
		m.transitionTo(StateConnectedReady, "connect_succeeded")

	case messages.Unauthenticated:
		if m.ctx.CurrentState != StateConnectingAttemptProvisioned {
			return
		}
		m.transitionTo(StateConnectingAttemptProvisioning, "unauthenticated")

	case messages.ConnectAttemptFailed:
		if m.ctx.CurrentState != StateConnectingAttemptProvisioned {
			return
		}
		m.transitionTo(StateConnectingBackoff, "connect_failed")

	case messages.ProvisioningFinished:
		if m.ctx.CurrentState != StateConnectingAttemptProvisioning {
			return
		}
		m.logger.LogProvisioning("done", "finished")
		m.transitionTo(StateConnectingAttemptProvisioned, "provisioning_finished")

	case messages.ProvisioningFailed:
		if m.ctx.CurrentState != StateConnectingAttemptProvisioning {
			return
		}
		m.logger.LogProvisioning("failed", "failed")
		if m.ctx.NetworkUp {
			m.transitionTo(StateConnectingBackoff, "provisioning_failed")
		} else {
			m.transitionTo(StateDisconnected, "provisioning_failed")
		}

	case messages.SendRequestFailed:
		if !m.ctx.CurrentState.IsConnected() {
			return
		}
		// Credentials are kept; this is a direct reconnect attempt rather
		// than a fresh backoff/provisioning cycle (SPEC_FULL §4.1).
		m.transitionTo(StateConnectingAttemptProvisioned, "send_request_failed")
	}
}
