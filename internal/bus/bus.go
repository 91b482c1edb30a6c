// Package bus is the application's topic-based publish/subscribe channel.
//
// Delivery is single-consumer and in order: published messages are queued
// and drained by exactly one dispatcher at a time. A handler that publishes
// (directly, or indirectly through slog) while being dispatched only enqueues
// its message; the active dispatcher delivers it after the current one.
package bus

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"
)

// Handler receives a published message.
type Handler func(msg any)

// Subscription identifies one registered handler.
type Subscription uint64

type subscriber struct {
	id      Subscription
	owner   string
	handler Handler
}

type envelope struct {
	topic string
	msg   any
}

// Bus routes messages from publishers to topic subscribers.
type Bus struct {
	mu          sync.Mutex
	nextID      Subscription
	subscribers map[string][]subscriber
	queue       []envelope
	dispatching bool

	// errOut receives handler panic reports. Writes go around slog so a
	// panicking log subscriber cannot recurse into the bus.
	errOut io.Writer
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{
		subscribers: map[string][]subscriber{},
		errOut:      os.Stderr,
	}
}

// Subscribe registers handler for topic on behalf of owner.
// Handlers for the same topic run in subscription order.
func (b *Bus) Subscribe(owner, topic string, handler Handler) Subscription {
	if handler == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subscribers[topic] = append(b.subscribers[topic], subscriber{id: id, owner: owner, handler: handler})
	return id
}

// Unsubscribe removes a single subscription. Unknown IDs are ignored.
func (b *Bus) Unsubscribe(id Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for topic, subs := range b.subscribers {
		b.subscribers[topic] = removeSubscribers(subs, func(s subscriber) bool { return s.id == id })
	}
}

// UnsubscribeAll removes every subscription registered by owner.
func (b *Bus) UnsubscribeAll(owner string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for topic, subs := range b.subscribers {
		b.subscribers[topic] = removeSubscribers(subs, func(s subscriber) bool { return s.owner == owner })
	}
}

// SubscriberCount returns the number of handlers registered for topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers[topic])
}

// Publish queues msg for topic and, unless another dispatch is in progress,
// delivers the queue before returning.
func (b *Bus) Publish(topic string, msg any) {
	b.mu.Lock()
	b.queue = append(b.queue, envelope{topic: topic, msg: msg})
	if b.dispatching {
		b.mu.Unlock()
		return
	}
	b.dispatching = true
	b.mu.Unlock()

	b.drain()
}

func (b *Bus) drain() {
	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			b.dispatching = false
			b.mu.Unlock()
			return
		}
		next := b.queue[0]
		b.queue[0] = envelope{}
		b.queue = b.queue[1:]
		// Snapshot so handlers may (un)subscribe during delivery.
		subs := append([]subscriber(nil), b.subscribers[next.topic]...)
		b.mu.Unlock()

		for _, s := range subs {
			b.deliver(s, next)
		}
	}
}

func (b *Bus) deliver(s subscriber, env envelope) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(b.errOut, "[bus] handler panicked: topic=%s owner=%s: %v\n%s\n",
				env.topic, s.owner, r, debug.Stack())
		}
	}()
	s.handler(env.msg)
}

func removeSubscribers(subs []subscriber, drop func(subscriber) bool) []subscriber {
	kept := subs[:0]
	for _, s := range subs {
		if !drop(s) {
			kept = append(kept, s)
		}
	}
	return kept
}
