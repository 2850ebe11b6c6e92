// Package events implements the typed publish/subscribe event bus
// adapter (spec.md §4.9, §6). Adapted from the teacher's
// internal/transparency.GlassBoxEventBus: non-blocking publish,
// per-subscriber buffered channels, monotonic sequence numbers for
// within-KB ordering.
package events

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/codenerd/reasonkit/internal/logging"
	"github.com/codenerd/reasonkit/internal/model"
)

// EventType enumerates the events the core emits (spec.md §6).
type EventType string

const (
	Asserted     EventType = "Asserted"
	Retracted    EventType = "Retracted"
	Evicted      EventType = "Evicted"
	StateChanged EventType = "StateChanged"
	RuleAdded    EventType = "RuleAdded"
	RuleRemoved  EventType = "RuleRemoved"
)

// Event is the payload dispatched to subscribers. Not every field is
// populated for every Type: AssertionID/KB/IsActive are common to the
// assertion-lifecycle events, Assertion carries the final value on
// Retracted (spec.md §4.6), Rule is populated on RuleAdded/RuleRemoved.
type Event struct {
	Seq         uint64
	Type        EventType
	AssertionID model.AssertionID
	KB          string
	IsActive    bool
	Assertion   *model.Assertion
	Rule        *model.Rule
}

const subscriberBuffer = 256

// Bus is a non-blocking, multi-subscriber event dispatcher. Publish
// never blocks on a slow subscriber: a full subscriber channel simply
// drops the event (and logs it), matching spec.md §5's "publishers
// never wait on subscribers".
type Bus struct {
	mu   sync.RWMutex
	subs []*subscription
	seq  atomic.Uint64
	log  *logging.Logger
}

type subscription struct {
	ch     chan Event
	filter map[EventType]bool // nil/empty means all types
}

// NewBus constructs an empty Bus. log may be nil (defaults to a
// no-op logger).
func NewBus(log *logging.Logger) *Bus {
	if log == nil {
		log = logging.Nop()
	}
	return &Bus{log: log}
}

// Subscribe returns a channel receiving events whose Type is in
// types, or every event if types is empty.
func (b *Bus) Subscribe(types ...EventType) <-chan Event {
	filter := make(map[EventType]bool, len(types))
	for _, t := range types {
		filter[t] = true
	}
	sub := &subscription{ch: make(chan Event, subscriberBuffer), filter: filter}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	return sub.ch
}

// Unsubscribe removes and closes a subscriber channel previously
// returned by Subscribe.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	if ch == nil {
		return
	}
	target := reflect.ValueOf(ch).Pointer()

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if reflect.ValueOf(sub.ch).Pointer() == target {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(sub.ch)
			return
		}
	}
}

// Publish assigns the next sequence number and dispatches e to every
// matching subscriber without blocking.
func (b *Bus) Publish(e Event) {
	e.Seq = b.seq.Add(1)

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if len(sub.filter) > 0 && !sub.filter[e.Type] {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			b.log.Warnf("events: dropped %s event (kb=%s, id=%s): subscriber channel full", e.Type, e.KB, e.AssertionID)
		}
	}
}

// Close unsubscribes and closes every live subscriber channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		close(sub.ch)
	}
	b.subs = nil
}
