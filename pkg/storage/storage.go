// Package storage declares the interface the storage engine collaborator
// must satisfy. The storage engine itself is out of scope for this module
// (SPEC_FULL §1); this package exists so the gateway core can be built,
// tested, and demoed against the interface alone.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/tracker-fw/cloud-gateway/pkg/messages"
)

// ErrReadTimeout is returned by Read when no item arrived within the bounded
// per-read timeout. Per §4.4 this indicates drain-complete, not an error;
// callers must not treat it as BatchError.
var ErrReadTimeout = errors.New("storage: read timeout")

// Item is one record returned from a batch session read.
type Item struct {
	Kind        messages.ItemKind
	Payload     []byte
	TimestampMS int64
}

// Storage is the batch-session read protocol the Batch Drain Engine drives.
// BatchAvailable/BatchEmpty/BatchError/BatchBusy announcements and the
// BatchRequest/BatchClose replies travel over the STORAGE control bus
// channel (see pkg/messages); Read is the one operation that is a direct,
// blocking call rather than a bus round-trip, matching §6's description of
// storage_read as a bounded-timeout blocking call.
type Storage interface {
	// Read returns the next item in sessionID, blocking up to the
	// implementation's configured per-read timeout. Returns ErrReadTimeout
	// when the session has no more items ready within that window.
	Read(ctx context.Context, sessionID uint32) (Item, error)
}

// ReadTimeout is the default bound a Storage implementation should honor,
// used by the in-memory fake and documented here as the contract default.
const ReadTimeout = 2 * time.Second
