package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrHandlerPanic wraps a panic raised by a subscriber.
var ErrHandlerPanic = errors.New("event handler panicked")

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher fans account events out to subscribers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// SyncDispatcher runs subscribers inline on the publishing goroutine, which is
// a request goroutine. A failing or panicking subscriber never stops the
// others and never escapes Publish as a panic.
type SyncDispatcher struct {
	mu          sync.RWMutex
	subscribers map[EventType][]EventHandler
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher() *SyncDispatcher {
	return &SyncDispatcher{subscribers: make(map[EventType][]EventHandler)}
}

// Publish invokes every subscriber of event.Type and joins their failures.
func (d *SyncDispatcher) Publish(ctx context.Context, event Event) error {
	var errs []error
	for i, handler := range d.handlersFor(event.Type) {
		if err := invoke(ctx, handler, event); err != nil {
			errs = append(errs, fmt.Errorf("%s subscriber %d: %w", event.Type, i, err))
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers a handler for the given event type.
func (d *SyncDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	if handler == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers[eventType] = append(d.subscribers[eventType], handler)
}

// Subscribers reports how many handlers listen for eventType.
func (d *SyncDispatcher) Subscribers(eventType EventType) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subscribers[eventType])
}

func (d *SyncDispatcher) handlersFor(eventType EventType) []EventHandler {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]EventHandler(nil), d.subscribers[eventType]...)
}

func invoke(ctx context.Context, handler EventHandler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return handler(ctx, event)
}
