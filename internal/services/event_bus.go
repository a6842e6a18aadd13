package services

import (
	"sync"
)

// EventType represents the type of event
type EventType string

const (
	EventWalletAdded     EventType = "wallet_added"
	EventWalletUpdated   EventType = "wallet_updated"
	EventWalletRemoved   EventType = "wallet_removed"
	EventWalletRefreshed EventType = "wallet_refreshed"
	EventSettingsUpdated EventType = "settings_updated"
	EventRefreshFailed   EventType = "refresh_failed"
)

// allEventTypes lists every event type for SubscribeAll.
var allEventTypes = []EventType{
	EventWalletAdded,
	EventWalletUpdated,
	EventWalletRemoved,
	EventWalletRefreshed,
	EventSettingsUpdated,
	EventRefreshFailed,
}

// Event represents a system event
type Event struct {
	Type EventType              `json:"type"`
	Data map[string]interface{} `json:"data"`
}

// EventBus manages event subscriptions and publishing
type EventBus struct {
	subscribers map[EventType][]chan Event
	mu          sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
	}
}

// Subscribe creates a subscription to events of a specific type
func (eb *EventBus) Subscribe(eventType EventType, bufferSize int) <-chan Event {
	ch := make(chan Event, bufferSize)

	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all event types
func (eb *EventBus) SubscribeAll(bufferSize int) <-chan Event {
	ch := make(chan Event, bufferSize)

	eb.mu.Lock()
	defer eb.mu.Unlock()

	for _, eventType := range allEventTypes {
		eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	}

	return ch
}

// Publish publishes an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	subscribers := eb.subscribers[event.Type]
	eb.mu.RUnlock()

	// Send event to all subscribers (non-blocking)
	for _, ch := range subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip this subscriber
		}
	}
}

// Close closes all subscriber channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	closed := make(map[chan Event]bool)
	for eventType, subscribers := range eb.subscribers {
		for _, ch := range subscribers {
			if !closed[ch] {
				close(ch)
				closed[ch] = true
			}
		}
		delete(eb.subscribers, eventType)
	}
}
