// Package bus carries cross-component state changes (selected character,
// batch-mode flag, invalidation hints) between loosely coupled parts of the
// lobby without them holding references to each other.
package bus

import (
	"log/slog"
	"sync"
)

type Handler func(payload any)

type Bus struct {
	logger *slog.Logger

	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]Handler
}

func New(logger *slog.Logger) *Bus {
	return &Bus{
		logger: logger,
		subs:   make(map[string]map[int]Handler),
	}
}

// Subscribe registers a handler for topic and returns an unsubscribe
// function. Unsubscribing twice is harmless.
func (b *Bus) Subscribe(topic string, handler Handler) func() {
	if handler == nil {
		return func() {}
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]Handler)
	}
	b.subs[topic][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if handlers, ok := b.subs[topic]; ok {
			delete(handlers, id)
			if len(handlers) == 0 {
				delete(b.subs, topic)
			}
		}
	}
}

// Publish delivers payload to every handler registered for topic. Delivery
// order is unspecified. A panicking handler is logged and must not prevent
// the remaining handlers from running.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs[topic]))
	for _, h := range b.subs[topic] {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		b.deliver(topic, h, payload)
	}
}

func (b *Bus) deliver(topic string, h Handler, payload any) {
	defer func() {
		if r := recover(); r != nil && b.logger != nil {
			b.logger.Error("bus_handler_panic", "topic", topic, "panic", r)
		}
	}()
	h(payload)
}
