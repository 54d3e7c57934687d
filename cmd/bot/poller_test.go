package main

import (
	"context"
	"testing"
	"time"

	"github.com/Jacobbrewer1/gavel/pkg/entities"
	"github.com/stretchr/testify/require"
)

func TestPollerCycleNoCategory(t *testing.T) {
	a := newFakeApp(t)
	testAppeal(a, "42")

	// Without a configured category there is nowhere to put the channel, so
	// the cycle leaves the queue untouched.
	p := newPoller(a, pollInterval)
	p.cycle(context.Background())

	require.Zero(t, a.channelsCreated)

	appeals, err := a.AppealDal(context.Background()).GetPollingAppeals()
	require.NoError(t, err)
	require.Len(t, appeals, 1)
}

func TestPollerCycleProvisionsQueue(t *testing.T) {
	a := newFakeApp(t)
	first := testAppeal(a, "42")
	require.NoError(t, a.ConfigDal(context.Background()).SetCategory("cat-1"))

	p := newPoller(a, pollInterval)
	p.cycle(context.Background())

	require.Equal(t, 1, a.channelsCreated)
	require.Equal(t, entities.AppealStatusPending, a.appeal(first.ID).Status)

	appeals, err := a.AppealDal(context.Background()).GetPollingAppeals()
	require.NoError(t, err)
	require.Empty(t, appeals)
}

func TestPollerStop(t *testing.T) {
	a := newFakeApp(t)

	p := newPoller(a, 10*time.Millisecond)
	p.start()
	time.Sleep(35 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		p.stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop")
	}
}
