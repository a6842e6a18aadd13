package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishSubscribe(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()

	ch := bus.Subscribe(EventWalletRefreshed, 1)

	bus.Publish(Event{
		Type: EventWalletRefreshed,
		Data: map[string]interface{}{"address": "0xabc"},
	})

	select {
	case event := <-ch:
		assert.Equal(t, EventWalletRefreshed, event.Type)
		assert.Equal(t, "0xabc", event.Data["address"])
	case <-time.After(time.Second):
		t.Fatal("expected event was not delivered")
	}
}

func TestEventBusIgnoresOtherTypes(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()

	ch := bus.Subscribe(EventWalletAdded, 1)
	bus.Publish(Event{Type: EventWalletRemoved})

	select {
	case <-ch:
		t.Fatal("subscriber received an event of the wrong type")
	default:
	}
}

func TestEventBusSubscribeAll(t *testing.T) {
	bus := NewEventBus()

	ch := bus.SubscribeAll(len(allEventTypes))
	for _, eventType := range allEventTypes {
		bus.Publish(Event{Type: eventType})
	}

	received := 0
	for range allEventTypes {
		select {
		case <-ch:
			received++
		case <-time.After(time.Second):
			t.Fatal("missing event")
		}
	}
	require.Equal(t, len(allEventTypes), received)

	// Close must not panic even though the channel is registered under
	// every event type.
	bus.Close()
	_, open := <-ch
	assert.False(t, open)
}

func TestEventBusDropsWhenSubscriberFull(t *testing.T) {
	bus := NewEventBus()
	defer bus.Close()

	ch := bus.Subscribe(EventWalletRefreshed, 1)
	bus.Publish(Event{Type: EventWalletRefreshed, Data: map[string]interface{}{"n": 1}})
	// Buffer is full; this publish must not block.
	bus.Publish(Event{Type: EventWalletRefreshed, Data: map[string]interface{}{"n": 2}})

	event := <-ch
	assert.Equal(t, 1, event.Data["n"])

	select {
	case <-ch:
		t.Fatal("second event should have been dropped")
	default:
	}
}
