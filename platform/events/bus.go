// Package events provides the in-process event bus used to decouple the
// intake pipeline from side effects such as notifications.
// This is part of the platform layer and contains no business logic.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"naql_backend/platform/logger"
)

// Event is the base interface all domain events must implement.
type Event interface {
	// EventName returns a unique identifier for the event type.
	EventName() string
	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps an event with the current UTC time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now().UTC()}
}

// Handler processes events of a specific type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc is an adapter to allow ordinary functions to be used as handlers.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls the underlying function.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus is the interface for publishing and subscribing to domain events.
type Bus interface {
	// Publish hands the event to every subscriber without waiting.
	Publish(ctx context.Context, event Event)
	// PublishSync runs every subscriber and joins their errors.
	PublishSync(ctx context.Context, event Event) error
	// Subscribe registers a handler for the given Event.EventName().
	Subscribe(eventName string, handler Handler)
}

// InMemoryBus dispatches events to handlers in the same process.
// Async handlers are detached from the publisher's cancellation so a
// finished HTTP request does not abort a notification in flight.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	wg       sync.WaitGroup
	timeout  time.Duration
	log      *logger.Logger
}

var _ Bus = (*InMemoryBus)(nil)

// NewInMemoryBus creates an empty bus. Async handlers get 30s each.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		timeout:  30 * time.Second,
		log:      log,
	}
}

// Subscribe registers a handler for a specific event type.
func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

func (b *InMemoryBus) handlersFor(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Handler(nil), b.handlers[name]...)
}

// Publish runs each handler in its own goroutine.
func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	for _, h := range b.handlersFor(event.EventName()) {
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
			defer cancel()
			if err := b.safeHandle(hctx, h, event); err != nil {
				b.log.WithContext(ctx).Error("events: async handler failed", "event", event.EventName(), "error", err)
			}
		}(h)
	}
}

// PublishSync runs handlers in registration order and returns their joined errors.
func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) error {
	var errs []error
	for _, h := range b.handlersFor(event.EventName()) {
		if err := b.safeHandle(ctx, h, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Wait blocks until every async handler started so far has returned.
func (b *InMemoryBus) Wait() {
	b.wg.Wait()
}

func (b *InMemoryBus) safeHandle(ctx context.Context, h Handler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic for %s: %v", event.EventName(), r)
		}
	}()
	return h.Handle(ctx, event)
}
