// Package activity fans user activity events out to subscribers.
package activity

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/flotacare/fleet-console/internal/core/domain"
)

const defaultBuffer = 256

// Feed queues activity events and delivers them, in arrival order, from a
// single worker goroutine. It implements ports.ActivitySource.
type Feed struct {
	events chan domain.ActivityEvent
	log    zerolog.Logger

	mu          sync.RWMutex
	subscribers map[int]func(domain.ActivityEvent)
	nextID      int
}

// NewFeed creates a Feed with room for buffer pending events. If
// buffer <= 0, defaultBuffer is used.
func NewFeed(buffer int, log zerolog.Logger) *Feed {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Feed{
		events:      make(chan domain.ActivityEvent, buffer),
		log:         log,
		subscribers: make(map[int]func(domain.ActivityEvent)),
	}
}

// Start launches the delivery worker. It stops when ctx is cancelled.
func (f *Feed) Start(ctx context.Context) {
	go f.run(ctx)
}

// Subscribe registers fn for every delivered event.
func (f *Feed) Subscribe(fn func(domain.ActivityEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	f.subscribers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subscribers, id)
			f.mu.Unlock()
		})
	}
}

// Subscribers returns the number of registered subscribers.
func (f *Feed) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}

// Publish queues ev without blocking. It reports false when the queue is
// full and the event was dropped.
func (f *Feed) Publish(ev domain.ActivityEvent) bool {
	select {
	case f.events <- ev:
		return true
	default:
		f.log.Warn().Str("kind", string(ev.Kind)).Msg("activity queue full, event dropped")
		return false
	}
}

// PublishBatch queues events in order and returns the ones accepted.
// Events dropped on a full queue are left out of the result.
func (f *Feed) PublishBatch(events []domain.ActivityEvent) []domain.ActivityEvent {
	accepted := make([]domain.ActivityEvent, 0, len(events))
	for _, ev := range events {
		if f.Publish(ev) {
			accepted = append(accepted, ev)
		}
	}
	return accepted
}

func (f *Feed) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-f.events:
			f.deliver(ev)
		}
	}
}

func (f *Feed) deliver(ev domain.ActivityEvent) {
	f.mu.RLock()
	fns := make([]func(domain.ActivityEvent), 0, len(f.subscribers))
	for _, fn := range f.subscribers {
		fns = append(fns, fn)
	}
	f.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
