package bus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishSubscribe(t *testing.T) {
	b := New[int]()

	ch, err := b.Subscribe()
	require.NoError(t, err)

	require.NoError(t, b.Publish(42))

	select {
	case v := <-ch:
		assert.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestBus_FanOut(t *testing.T) {
	b := New[string]()

	a, err := b.Subscribe()
	require.NoError(t, err)
	c, err := b.Subscribe()
	require.NoError(t, err)

	require.NoError(t, b.Publish("hello"))

	assert.Equal(t, "hello", <-a)
	assert.Equal(t, "hello", <-c)
}

func TestBus_FIFOPerSubscriber(t *testing.T) {
	b := New[int]()
	ch, err := b.Subscribe()
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, b.Publish(i))
	}

	for i := 0; i < 5; i++ {
		assert.Equal(t, i, <-ch)
	}
}

func TestBus_PublishTimeout(t *testing.T) {
	b := New[int](WithBuffer[int](1), WithPublishTimeout[int](10*time.Millisecond))

	ch, err := b.Subscribe()
	require.NoError(t, err)

	require.NoError(t, b.Publish(1)) // fills the single buffer slot
	err = b.Publish(2)               // subscriber never drains -> timeout
	assert.ErrorIs(t, err, ErrPublishTimeout)

	<-ch // drain so the goroutine isn't leaked in spirit
}

func TestBus_Unsubscribe(t *testing.T) {
	b := New[int]()
	ch, err := b.Subscribe()
	require.NoError(t, err)

	b.Unsubscribe(ch)
	assert.Equal(t, 0, b.SubscriberCount())

	_, closedOK := <-ch
	assert.False(t, closedOK)
}

func TestBus_CloseClosesSubscribers(t *testing.T) {
	b := New[int]()
	ch, err := b.Subscribe()
	require.NoError(t, err)

	b.Close()
	b.Close() // idempotent

	_, open := <-ch
	assert.False(t, open)

	_, err = b.Subscribe()
	assert.ErrorIs(t, err, ErrClosed)

	err = b.Publish(1)
	assert.ErrorIs(t, err, ErrClosed)
}
