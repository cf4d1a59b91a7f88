// ABOUTME: Typed event bus used to fan session-store changes out to the TUI
// ABOUTME: Subscribe returns an unsubscribe func; Publish snapshots handlers outside the lock

package eventbus

import "sync"

// Handler is a callback invoked for each published event.
type Handler[T any] func(T)

// Bus delivers events of type T to registered handlers.
// All mutation is lock-protected; Publish calls handlers synchronously.
type Bus[T any] struct {
	mu       sync.RWMutex
	handlers map[int]Handler[T]
	nextID   int
}

// New creates an empty bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{handlers: make(map[int]Handler[T])}
}

// Subscribe registers a handler and returns its unsubscribe function.
func (b *Bus[T]) Subscribe(handler Handler[T]) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.handlers, id)
		b.mu.Unlock()
	}
}

// Publish delivers event to every registered handler.
// Handlers are snapshotted first so a handler may unsubscribe itself.
func (b *Bus[T]) Publish(event T) {
	b.mu.RLock()
	snapshot := make([]Handler[T], 0, len(b.handlers))
	for _, h := range b.handlers {
		snapshot = append(snapshot, h)
	}
	b.mu.RUnlock()

	for _, h := range snapshot {
		h(event)
	}
}

// Count returns the number of registered handlers.
func (b *Bus[T]) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
