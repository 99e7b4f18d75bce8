package gateway

import (
	"github.com/tracker-fw/cloud-gateway/pkg/bus"
	"github.com/tracker-fw/cloud-gateway/pkg/messages"
)

// Hub bundles one bus.Bus per logical channel the core subscribes to or
// publishes on (SPEC_FULL §6), plus the core-local PRIVATE channel used to
// marshal asynchronous callbacks onto the owning goroutine.
type Hub struct {
	Network           *bus.Bus[messages.NetworkEvent]
	CloudIn           *bus.Bus[messages.CloudIn]
	CloudOut          *bus.Bus[messages.CloudOut]
	StorageControlIn  *bus.Bus[messages.StorageControlIn]
	StorageControlOut *bus.Bus[messages.StorageControlOut]
	StorageData       *bus.Bus[messages.StorageDataIn]
	Location          *bus.Bus[messages.LocationOut]

	// Private has exactly one producer family (callbacks posted by
	// transport/provisioning/backoff) and one consumer (the state machine
	// loop). It is a plain buffered channel, not a Bus, because it has a
	// single subscriber by construction.
	Private chan messages.PrivateEvent
}

// NewHub constructs a Hub with a reasonably sized PRIVATE buffer so a burst
// of callbacks (e.g. BackoffExpired racing a manual retry) never blocks a
// foreign goroutine against the core.
func NewHub() *Hub {
	return &Hub{
		Network:           bus.New[messages.NetworkEvent](),
		CloudIn:           bus.New[messages.CloudIn](),
		CloudOut:          bus.New[messages.CloudOut](),
		StorageControlIn:  bus.New[messages.StorageControlIn](),
		StorageControlOut: bus.New[messages.StorageControlOut](),
		StorageData:       bus.New[messages.StorageDataIn](),
		Location:          bus.New[messages.LocationOut](),
		Private:           make(chan messages.PrivateEvent, 16),
	}
}
