package service

import (
	"sync"

	"github.com/arturoeanton/foxops-dashboard/internal/domain"
)

// EventBus broadcasts incarnation changes to SSE subscribers. A subscriber
// whose buffer is full misses the event.
type EventBus struct {
	mu   sync.RWMutex
	subs []chan domain.IncarnationEvent
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Publish sends evt to every subscriber without blocking.
func (b *EventBus) Publish(evt domain.IncarnationEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Subscribe registers a new buffered channel.
func (b *EventBus) Subscribe() chan domain.IncarnationEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan domain.IncarnationEvent, 10)
	b.subs = append(b.subs, ch)
	return ch
}

// Unsubscribe removes ch and closes it.
func (b *EventBus) Unsubscribe(ch chan domain.IncarnationEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s == ch {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// Subscribers returns the number of open subscriptions.
func (b *EventBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
