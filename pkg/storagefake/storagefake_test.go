package storagefake

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracker-fw/cloud-gateway/pkg/bus"
	"github.com/tracker-fw/cloud-gateway/pkg/messages"
	"github.com/tracker-fw/cloud-gateway/pkg/storage"
)

func TestFake_EnqueueAndDrain(t *testing.T) {
	control := bus.New[messages.StorageControlIn]()
	sub, err := control.Subscribe()
	require.NoError(t, err)

	f := New(control)
	f.Enqueue(7, storage.Item{Kind: messages.ItemKindPower, Payload: []byte("a")})

	avail := (<-sub).(messages.BatchAvailable)
	assert.Equal(t, uint32(7), avail.SessionID)
	assert.Equal(t, 1, avail.Count)

	item, err := f.Read(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, messages.ItemKindPower, item.Kind)

	_, err = f.Read(context.Background(), 7)
	assert.ErrorIs(t, err, storage.ErrReadTimeout)

	empty := (<-sub).(messages.BatchEmpty)
	assert.Equal(t, uint32(7), empty.SessionID)
}

func TestFake_FailNextRead(t *testing.T) {
	control := bus.New[messages.StorageControlIn]()
	sub, err := control.Subscribe()
	require.NoError(t, err)

	f := New(control)
	boom := errors.New("disk fault")
	f.FailNextRead(3, boom)

	be := (<-sub).(messages.BatchError)
	assert.ErrorIs(t, be.Err, boom)

	_, err = f.Read(context.Background(), 3)
	assert.ErrorIs(t, err, boom)
}

func TestFake_RemainingTracksQueue(t *testing.T) {
	f := New(nil)
	f.Enqueue(1, storage.Item{}, storage.Item{})
	assert.Equal(t, 2, f.Remaining(1))

	_, _ = f.Read(context.Background(), 1)
	assert.Equal(t, 1, f.Remaining(1))
}
