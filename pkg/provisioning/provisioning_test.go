package provisioning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracker-fw/cloud-gateway/pkg/bus"
	"github.com/tracker-fw/cloud-gateway/pkg/messages"
	"github.com/tracker-fw/cloud-gateway/pkg/transport"
)

func TestCoordinator_RadioOfflineOnline(t *testing.T) {
	network := bus.New[messages.NetworkEvent]()
	sub, err := network.Subscribe()
	require.NoError(t, err)

	c := New(network, nil, nil)
	c.Feed(OutcomeNeedRadioOffline, nil, "")
	require.IsType(t, messages.NetworkDisconnectRequest{}, <-sub)

	c.Feed(OutcomeNeedRadioOnline, nil, "")
	require.IsType(t, messages.NetworkConnectRequest{}, <-sub)
}

func TestCoordinator_FailedClassReportsFailed(t *testing.T) {
	network := bus.New[messages.NetworkEvent]()

	var gotResult Result
	c := New(network, nil, func(result Result, _ transport.Credential, err error) {
		gotResult = result
	})
	c.Feed(OutcomeFailed, nil, "")
	assert.Equal(t, ResultFailed, gotResult)
}

func TestCoordinator_FatalClassReportsFatal(t *testing.T) {
	network := bus.New[messages.NetworkEvent]()

	var gotResult Result
	var gotErr error
	c := New(network, nil, func(result Result, _ transport.Credential, err error) {
		gotResult = result
		gotErr = err
	})
	c.Feed(OutcomeWrongRootCA, nil, "")
	assert.Equal(t, ResultFatal, gotResult)
	assert.ErrorIs(t, gotErr, ErrFatal)
}

func TestCoordinator_DoneSettlesThenFinishes(t *testing.T) {
	old := settleDelay
	settleDelay = 10 * time.Millisecond
	defer func() { settleDelay = old }()

	network := bus.New[messages.NetworkEvent]()

	doneCh := make(chan transport.Credential, 1)
	c := New(network, []byte("boot-salt-0123456789012345678901"), func(result Result, cred transport.Credential, err error) {
		require.NoError(t, err)
		require.Equal(t, ResultFinished, result)
		doneCh <- cred
	})
	c.Feed(OutcomeDone, []byte("refreshed-material"), "1.0.0")

	select {
	case cred := <-doneCh:
		assert.NotEmpty(t, cred.ResumptionToken)
		assert.Equal(t, "1.0.0", cred.VersionString)
	case <-time.After(2 * time.Second):
		t.Fatal("callback never fired")
	}
}

func TestCoordinator_NoSaltMeansNoToken(t *testing.T) {
	old := settleDelay
	settleDelay = 10 * time.Millisecond
	defer func() { settleDelay = old }()

	network := bus.New[messages.NetworkEvent]()

	doneCh := make(chan transport.Credential, 1)
	c := New(network, nil, func(result Result, cred transport.Credential, err error) {
		doneCh <- cred
	})
	c.Feed(OutcomeNoCommands, []byte("m"), "1.0.0")

	select {
	case cred := <-doneCh:
		assert.Nil(t, cred.ResumptionToken)
	case <-time.After(2 * time.Second):
		t.Fatal("callback never fired")
	}
}

func TestCoordinator_CallbackFiresOnlyOnce(t *testing.T) {
	network := bus.New[messages.NetworkEvent]()

	calls := 0
	c := New(network, nil, func(Result, transport.Credential, error) { calls++ })
	c.Feed(OutcomeFailed, nil, "")
	c.Feed(OutcomeDeviceNotClaimed, nil, "")
	assert.Equal(t, 1, calls)
}

func TestCoordinator_CancelSuppressesPendingFinish(t *testing.T) {
	old := settleDelay
	settleDelay = 20 * time.Millisecond
	defer func() { settleDelay = old }()

	network := bus.New[messages.NetworkEvent]()

	called := false
	c := New(network, nil, func(Result, transport.Credential, error) { called = true })
	c.Feed(OutcomeDone, nil, "")
	c.Cancel()

	time.Sleep(50 * time.Millisecond)
	assert.False(t, called)
}
