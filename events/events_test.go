package events

import (
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveEvent(t *testing.T, ch chan LedgerEvent) LedgerEvent {
	t.Helper()
	select {
	case event := <-ch:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestSubscribeAndPublish(t *testing.T) {
	bus := NewEventBus()
	id, ch := bus.Subscribe()
	require.True(t, bus.HasSubscriber(id))
	require.Equal(t, 1, bus.GetTotalSubscriptions())

	bus.Publish(NewRewardsToggled("abcd", true))

	event := receiveEvent(t, ch)
	toggled, ok := event.(*RewardsToggled)
	require.True(t, ok)
	assert.Equal(t, EventRewardsToggled, toggled.Type())
	assert.Equal(t, "abcd", toggled.Account())
	assert.True(t, toggled.OptedOut())
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewEventBus()
	id, ch := bus.Subscribe()

	require.True(t, bus.Unsubscribe(id))
	require.False(t, bus.HasSubscriber(id))

	_, open := <-ch
	assert.False(t, open)

	// unsubscribing twice is refused, not fatal
	assert.False(t, bus.Unsubscribe(id))
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewEventBus()
	_, ch1 := bus.Subscribe()
	_, ch2 := bus.Subscribe()

	bus.Publish(NewProtocolFeeUpdated(0, 500))

	for _, ch := range []chan LedgerEvent{ch1, ch2} {
		event := receiveEvent(t, ch)
		updated, ok := event.(*ProtocolFeeUpdated)
		require.True(t, ok)
		assert.Equal(t, uint64(0), updated.OldFee())
		assert.Equal(t, uint64(500), updated.NewFee())
	}
}

func TestFullSubscriberDoesNotBlockPublish(t *testing.T) {
	bus := NewEventBus()
	_, _ = bus.Subscribe()

	// the channel buffer is 50; publishing past it must not deadlock
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(NewProtocolFeeUpdated(uint64(i), uint64(i+1)))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber channel")
	}
}

func TestEventRouterPublishesLedgerEvents(t *testing.T) {
	bus := NewEventBus()
	router := NewEventRouter(bus)
	id, ch := router.Subscribe()
	defer router.Unsubscribe(id)

	router.PublishRewardsUpdated(uint256.NewInt(100), uint256.NewInt(100), uint256.NewInt(9e16), uint256.NewInt(64), true, 5)
	event := receiveEvent(t, ch)
	updated, ok := event.(*RewardsUpdated)
	require.True(t, ok)
	assert.Equal(t, "100", updated.PeriodRewards().Dec())
	assert.Equal(t, "64", updated.DistributorDelta().Dec())
	assert.True(t, updated.FeeToDistributor())
	assert.Equal(t, uint64(5), updated.BlockNum())

	router.PublishCheckpointTransfer("aaaa", "bbbb", uint256.NewInt(40))
	event = receiveEvent(t, ch)
	transfer, ok := event.(*CheckpointTransfer)
	require.True(t, ok)
	assert.Equal(t, "aaaa", transfer.From())
	assert.Equal(t, "bbbb", transfer.To())
	assert.Equal(t, "40", transfer.Amount().Dec())
}
