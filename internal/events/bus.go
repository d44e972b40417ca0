// Package events provides a typed in-process event bus used to surface
// search progress to subscribers (the websocket stream, tests).
package events

import (
	"sync"
	"time"
)

// EventType identifies a class of events on the bus.
type EventType string

const (
	// SearchStarted fires when the orchestrator launches a search.
	SearchStarted EventType = "search.started"
	// SourceSettled fires when one adapter finishes (success or failure).
	SourceSettled EventType = "search.source_settled"
	// PollProgress fires on every poll of the asynchronous award job.
	PollProgress EventType = "search.poll_progress"
	// SearchCompleted fires when the merged, scored response is ready.
	SearchCompleted EventType = "search.completed"
)

// Event is one published occurrence with its payload.
type Event struct {
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Bus is a fan-out pub/sub hub. Emit never blocks: slow subscribers drop
// events rather than stalling the search path.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]chan Event
	nextID      int
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[int]chan Event),
	}
}

// Subscribe registers a new subscriber and returns its channel plus an
// unsubscribe function. The channel is buffered; events overflowing the
// buffer are dropped for that subscriber.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan Event, 64)
	b.subscribers[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if existing, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(existing)
		}
	}

	return ch, unsubscribe
}

// Emit publishes an event to all current subscribers without blocking.
func (b *Bus) Emit(eventType EventType, source string, data interface{}) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	evt := Event{
		Type:      eventType,
		Source:    source,
		Data:      data,
		Timestamp: time.Now(),
	}

	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
			// Subscriber buffer full, drop rather than stall the search.
		}
	}
}

// SubscriberCount reports how many subscribers are attached.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
