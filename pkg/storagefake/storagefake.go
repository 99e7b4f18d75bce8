// Package storagefake provides an in-memory storage.Storage used by tests
// and the gateway's -simulate demo mode, standing in for the real on-device
// storage engine and its control-channel announcements.
package storagefake

import (
	"context"
	"sync"

	"github.com/tracker-fw/cloud-gateway/pkg/bus"
	"github.com/tracker-fw/cloud-gateway/pkg/messages"
	"github.com/tracker-fw/cloud-gateway/pkg/storage"
)

// Fake is an in-memory storage.Storage. Items queued with Enqueue are
// returned in FIFO order by Read; once a session's queue is drained, Read
// returns storage.ErrReadTimeout.
type Fake struct {
	mu       sync.Mutex
	queues   map[uint32][]storage.Item
	busyOnce map[uint32]bool
	errOnce  map[uint32]error

	control *bus.Bus[messages.StorageControlIn]
}

// New returns an empty Fake publishing control announcements on control.
func New(control *bus.Bus[messages.StorageControlIn]) *Fake {
	return &Fake{
		queues:   make(map[uint32][]storage.Item),
		busyOnce: make(map[uint32]bool),
		errOnce:  make(map[uint32]error),
		control:  control,
	}
}

// Enqueue adds items to sessionID's queue and publishes BatchAvailable with
// MoreData false. Use EnqueuePage to simulate a paginated session.
func (f *Fake) Enqueue(sessionID uint32, items ...storage.Item) {
	f.EnqueuePage(sessionID, false, items...)
}

// EnqueuePage adds items to sessionID's queue and publishes BatchAvailable
// with the given MoreData flag, so tests can drive a multi-page session:
// enqueue a first page with moreData true, let it drain to a read timeout
// (which publishes BatchRequest), then EnqueuePage the next page. With a
// non-nil control bus, Read on an empty queue also publishes BatchEmpty for
// the session, which closes it.
func (f *Fake) EnqueuePage(sessionID uint32, moreData bool, items ...storage.Item) {
	f.mu.Lock()
	f.queues[sessionID] = append(f.queues[sessionID], items...)
	count := len(f.queues[sessionID])
	f.mu.Unlock()

	if f.control != nil {
		f.control.Publish(messages.BatchAvailable{SessionID: sessionID, Count: count, MoreData: moreData})
	}
}

// FailNextRead arranges for the next Read on sessionID to return err and
// publishes BatchError.
func (f *Fake) FailNextRead(sessionID uint32, err error) {
	f.mu.Lock()
	f.errOnce[sessionID] = err
	f.mu.Unlock()
	if f.control != nil {
		f.control.Publish(messages.BatchError{SessionID: sessionID, Err: err})
	}
}

// MarkBusy publishes BatchBusy for sessionID without affecting its queue.
func (f *Fake) MarkBusy(sessionID uint32) {
	if f.control != nil {
		f.control.Publish(messages.BatchBusy{SessionID: sessionID})
	}
}

// Read implements storage.Storage.
func (f *Fake) Read(ctx context.Context, sessionID uint32) (storage.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.errOnce[sessionID]; ok {
		delete(f.errOnce, sessionID)
		return storage.Item{}, err
	}

	q := f.queues[sessionID]
	if len(q) == 0 {
		if f.control != nil {
			f.control.Publish(messages.BatchEmpty{SessionID: sessionID})
		}
		return storage.Item{}, storage.ErrReadTimeout
	}

	item := q[0]
	f.queues[sessionID] = q[1:]
	return item, nil
}

// Remaining reports how many items remain queued for sessionID.
func (f *Fake) Remaining(sessionID uint32) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queues[sessionID])
}
