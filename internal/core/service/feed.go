package service

import (
	"sync"

	"github.com/google/uuid"
)

// EventType names a canvas change.
type EventType string

const (
	EventPixel EventType = "pixel"
	EventClear EventType = "clear"
)

// Event describes one accepted canvas mutation.
type Event struct {
	Type  EventType
	X     int
	Y     int
	Color string

	// Version is the canvas version after the mutation.
	Version uint64
}

// DefaultSubscriberBuffer is the per-subscriber event buffer.
const DefaultSubscriberBuffer = 256

// Subscription receives events from a Feed.
type Subscription struct {
	ID string

	ch   chan Event
	feed *Feed
	once sync.Once
}

// Events returns the channel of events. It is closed when the
// subscription is cancelled or dropped for falling behind.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Close cancels the subscription.
func (s *Subscription) Close() {
	s.feed.remove(s.ID)
}

// Feed fans canvas events out to subscribers.
//
// Publish never blocks: a subscriber whose buffer is full is dropped and
// its channel closed. Events reach every remaining subscriber in publish
// order.
type Feed struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	buffer int
	closed bool
}

// NewFeed creates a feed. buffer <= 0 selects DefaultSubscriberBuffer.
func NewFeed(buffer int) *Feed {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Feed{
		subs:   make(map[string]*Subscription),
		buffer: buffer,
	}
}

// Subscribe registers a new subscriber. It returns nil after Close.
func (f *Feed) Subscribe() *Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}

	sub := &Subscription{
		ID:   uuid.NewString(),
		ch:   make(chan Event, f.buffer),
		feed: f,
	}
	f.subs[sub.ID] = sub
	return sub
}

// Publish delivers ev to every subscriber and returns the number of
// subscribers dropped for being too slow.
func (f *Feed) Publish(ev Event) int {
	f.mu.RLock()
	var slow []string
	for id, sub := range f.subs {
		select {
		case sub.ch <- ev:
		default:
			slow = append(slow, id)
		}
	}
	f.mu.RUnlock()

	for _, id := range slow {
		f.remove(id)
	}
	return len(slow)
}

// Len returns the number of active subscribers.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

// Close drops every subscriber. Later Subscribe calls return nil.
func (f *Feed) Close() {
	f.mu.Lock()
	subs := f.subs
	f.subs = make(map[string]*Subscription)
	f.closed = true
	f.mu.Unlock()

	for _, sub := range subs {
		sub.once.Do(func() { close(sub.ch) })
	}
}

func (f *Feed) remove(id string) {
	f.mu.Lock()
	sub, ok := f.subs[id]
	if ok {
		delete(f.subs, id)
	}
	f.mu.Unlock()

	if ok {
		sub.once.Do(func() { close(sub.ch) })
	}
}
