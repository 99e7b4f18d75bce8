// Package batchdrain implements the Batch Drain Engine (SPEC_FULL §4.4):
// the session protocol that drains a storage-engine batch session item by
// item, normalizing timestamps and dispatching each item to the transport,
// while guaranteeing exactly one BatchClose is ever emitted per session_id
// observed.
package batchdrain

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tracker-fw/cloud-gateway/pkg/bus"
	"github.com/tracker-fw/cloud-gateway/pkg/messages"
	"github.com/tracker-fw/cloud-gateway/pkg/storage"
	"github.com/tracker-fw/cloud-gateway/pkg/timestamp"
	"github.com/tracker-fw/cloud-gateway/pkg/transport"
)

// ErrFatalItem is returned by a session drain loop when a per-item send
// error is deemed fatal to the session (as opposed to merely logged and
// skipped).
var ErrFatalItem = errors.New("batchdrain: fatal item error")

// Metrics is the per-session drain summary logged on close (§4.4.1).
type Metrics struct {
	SessionID   uint32
	ItemsSent   int
	ItemsDropped int
	ItemErrors  int
	Duration    time.Duration
}

// MetricsLogger receives one Metrics value per closed session. Implemented
// by pkg/protolog in production; tests may supply a recording stub.
type MetricsLogger interface {
	LogDrainMetrics(Metrics)
}

// Warner receives non-fatal warnings (BatchBusy, per-item log-and-continue
// errors). Implemented by pkg/protolog.
type Warner interface {
	Warnf(format string, args ...any)
}

// Engine runs batch sessions to completion against a storage.Storage and a
// transport.Transport, guaranteeing exactly one BatchClose per observed
// session_id.
type Engine struct {
	store   storage.Storage
	xport   transport.Transport
	control *bus.Bus[messages.StorageControlOut]
	norm    *timestamp.Normalizer
	policy  timestamp.Policy
	metrics MetricsLogger
	warn    Warner

	readTimeout time.Duration

	mu      sync.Mutex
	closed  map[uint32]bool
	opened  map[uint32]bool
	pending map[uint32]Metrics // accumulated across paginated drain() calls, not yet closed
}

// New constructs an Engine. readTimeout bounds each storage.Read call.
func New(store storage.Storage, xport transport.Transport, control *bus.Bus[messages.StorageControlOut], norm *timestamp.Normalizer, policy timestamp.Policy, metrics MetricsLogger, warn Warner, readTimeout time.Duration) *Engine {
	return &Engine{
		store:       store,
		xport:       xport,
		control:     control,
		norm:        norm,
		policy:      policy,
		metrics:     metrics,
		warn:        warn,
		readTimeout: readTimeout,
		closed:      make(map[uint32]bool),
		opened:      make(map[uint32]bool),
		pending:     make(map[uint32]Metrics),
	}
}

// HandleBatchAvailable begins (or resumes, for more_data pagination)
// draining sessionID. Runs synchronously on the caller's goroutine, per the
// single-threaded run-to-completion model (SPEC_FULL §5).
func (e *Engine) HandleBatchAvailable(ctx context.Context, msg messages.BatchAvailable) {
	e.mu.Lock()
	if e.closed[msg.SessionID] {
		e.mu.Unlock()
		return
	}
	e.opened[msg.SessionID] = true
	e.mu.Unlock()

	e.drain(ctx, msg.SessionID, msg.MoreData)
}

// HandleBatchEmpty closes sessionID immediately; storage reported nothing to
// send.
func (e *Engine) HandleBatchEmpty(msg messages.BatchEmpty) {
	e.mu.Lock()
	delete(e.pending, msg.SessionID)
	e.mu.Unlock()
	e.close(msg.SessionID)
}

// HandleBatchError logs and closes sessionID.
func (e *Engine) HandleBatchError(msg messages.BatchError) {
	if e.warn != nil {
		e.warn.Warnf("batchdrain: session %d storage error: %v", msg.SessionID, msg.Err)
	}
	e.mu.Lock()
	delete(e.pending, msg.SessionID)
	e.mu.Unlock()
	e.close(msg.SessionID)
}

// HandleBatchBusy logs a warning and takes no other action; storage is
// expected to republish BatchAvailable later.
func (e *Engine) HandleBatchBusy(msg messages.BatchBusy) {
	if e.warn != nil {
		e.warn.Warnf("batchdrain: session %d busy", msg.SessionID)
	}
}

// ForceCloseAll closes every session the engine has opened but not yet
// closed, without draining further items. Used on Paused-entry and on
// shutdown (SPEC_FULL §4.4 "In Paused" and §5.1).
func (e *Engine) ForceCloseAll() {
	e.mu.Lock()
	ids := make([]uint32, 0, len(e.opened))
	for id, open := range e.opened {
		if open && !e.closed[id] {
			ids = append(ids, id)
		}
	}
	e.mu.Unlock()

	for _, id := range ids {
		e.mu.Lock()
		delete(e.pending, id)
		e.mu.Unlock()
		e.close(id)
	}
}

// drain runs the session loop described in §4.4 step 1-4. moreData reflects
// the most recent BatchAvailable announcement's more_data flag; when the
// current page is exhausted and moreData is set, the engine publishes
// BatchRequest for the next page and returns, leaving the session open; the
// next page is drained when its BatchAvailable arrives.
func (e *Engine) drain(ctx context.Context, sessionID uint32, moreData bool) {
	start := time.Now()
	m := Metrics{SessionID: sessionID}

	for {
		readCtx, cancel := context.WithTimeout(ctx, e.readTimeout)
		item, err := e.store.Read(readCtx, sessionID)
		cancel()

		if err != nil {
			if !errors.Is(err, storage.ErrReadTimeout) && e.warn != nil {
				e.warn.Warnf("batchdrain: session %d read error: %v", sessionID, err)
			}
			if errors.Is(err, storage.ErrReadTimeout) && moreData {
				// Current page exhausted but storage promised more: ask for
				// the next page and stop here. The session stays open —
				// storage republishes BatchAvailable once the next page is
				// ready, which resumes this same session via
				// HandleBatchAvailable; closing now would drop that next
				// page on the floor (§4.4 step 3).
				m.Duration = time.Since(start)
				e.accumulate(sessionID, m)
				e.control.Publish(messages.BatchRequest{SessionID: sessionID})
				return
			}
			break
		}

		ts, tsErr := timestamp.Apply(e.norm, e.policy, item.TimestampMS)
		if tsErr != nil {
			m.ItemsDropped++
			continue
		}

		if sendErr := e.xport.SendItem(ctx, item.Kind, item.Payload, ts, true); sendErr != nil {
			m.ItemErrors++
			if errors.Is(sendErr, ErrFatalItem) {
				break
			}
			continue
		}
		m.ItemsSent++
	}

	m.Duration = time.Since(start)
	e.accumulate(sessionID, m)
	e.finish(sessionID)
}

// accumulate folds delta into sessionID's running totals across however many
// paginated drain() calls the session takes before it genuinely finishes.
func (e *Engine) accumulate(sessionID uint32, delta Metrics) {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := e.pending[sessionID]
	total.SessionID = sessionID
	total.ItemsSent += delta.ItemsSent
	total.ItemsDropped += delta.ItemsDropped
	total.ItemErrors += delta.ItemErrors
	total.Duration += delta.Duration
	e.pending[sessionID] = total
}

// finish logs sessionID's accumulated metrics and closes it. Called only on
// a genuine drain-complete or error exit, never after merely requesting the
// next page.
func (e *Engine) finish(sessionID uint32) {
	e.mu.Lock()
	total := e.pending[sessionID]
	delete(e.pending, sessionID)
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.LogDrainMetrics(total)
	}
	e.close(sessionID)
}

// close publishes BatchClose for sessionID at most once.
func (e *Engine) close(sessionID uint32) {
	e.mu.Lock()
	if e.closed[sessionID] {
		e.mu.Unlock()
		return
	}
	e.closed[sessionID] = true
	e.mu.Unlock()

	e.control.Publish(messages.BatchClose{SessionID: sessionID})
}
