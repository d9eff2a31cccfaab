// util/event_bus.go

package util

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/echo-cache/logging"
)

// Event represents an event in the system
type Event struct {
	Type    string
	Payload interface{}
}

// EventHandler is a function that handles an event
type EventHandler func(context.Context, Event) error

type envelope struct {
	ctx     context.Context
	event   Event
	handler EventHandler
}

// EventBus delivers events to subscribers on a fixed pool of workers.
// Delivery is at most once: Publish never blocks and drops events when the
// queue is full or the bus is stopped.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex

	queue   chan envelope
	workers int
	wg      sync.WaitGroup
	started bool
	closed  bool
}

// NewEventBus creates a new EventBus
func NewEventBus(workers, queueSize int) *EventBus {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &EventBus{
		subscribers: make(map[string][]EventHandler),
		queue:       make(chan envelope, queueSize),
		workers:     workers,
	}
}

// Subscribe adds a new subscriber for a specific event type
func (eb *EventBus) Subscribe(eventType string, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscribers[eventType] = append(eb.subscribers[eventType], handler)
}

// Publish queues the event for every subscriber of eventType. The handlers
// run after the caller's request may be gone, so they get a context that
// keeps its values but is never cancelled.
func (eb *EventBus) Publish(ctx context.Context, eventType string, payload interface{}) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	handlers, exists := eb.subscribers[eventType]
	if !exists || eb.closed {
		return
	}

	event := Event{
		Type:    eventType,
		Payload: payload,
	}
	detached := context.WithoutCancel(ctx)

	for _, handler := range handlers {
		select {
		case eb.queue <- envelope{ctx: detached, event: event, handler: handler}:
		default:
			logger.Warn("Event queue full, dropping event",
				zap.String("eventType", eventType))
		}
	}
}

// Start launches the workers. They exit when ctx is done or Stop is called.
func (eb *EventBus) Start(ctx context.Context) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	if eb.started || eb.closed {
		return
	}
	eb.started = true

	for i := 0; i < eb.workers; i++ {
		eb.wg.Add(1)
		go eb.work(ctx)
	}
}

func (eb *EventBus) work(ctx context.Context) {
	defer eb.wg.Done()
	for {
		select {
		case env, ok := <-eb.queue:
			if !ok {
				return
			}
			eb.dispatch(env)
		case <-ctx.Done():
			return
		}
	}
}

func (eb *EventBus) dispatch(env envelope) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Event handler panicked",
				zap.Any("panic", r),
				zap.String("eventType", env.event.Type))
		}
	}()
	if err := env.handler(env.ctx, env.event); err != nil {
		logger.Error("Event handler error",
			zap.Error(fmt.Errorf("event handler error: %w", err)),
			zap.String("eventType", env.event.Type))
	}
}

// Stop refuses new events, lets the workers drain the queue and waits for
// them to finish.
func (eb *EventBus) Stop() {
	eb.mu.Lock()
	if eb.closed {
		eb.mu.Unlock()
		return
	}
	eb.closed = true
	close(eb.queue)
	eb.mu.Unlock()

	eb.wg.Wait()
}
