package util

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewEventBus(2, 16)
	var wg sync.WaitGroup
	var calls int32
	wg.Add(2)
	for i := 0; i < 2; i++ {
		bus.Subscribe("entity.inserted", func(ctx context.Context, e Event) error {
			defer wg.Done()
			assert.Equal(t, "w1", e.Payload)
			atomic.AddInt32(&calls, 1)
			return nil
		})
	}
	bus.Start(context.Background())
	defer bus.Stop()

	bus.Publish(context.Background(), "entity.inserted", "w1")
	bus.Publish(context.Background(), "entity.deleted", "ignored")
	wg.Wait()

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestEventBusHandlerContextOutlivesPublisher(t *testing.T) {
	bus := NewEventBus(1, 4)
	done := make(chan error, 1)
	bus.Subscribe("tick", func(ctx context.Context, e Event) error {
		done <- ctx.Err()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, "tick", nil)
	cancel()
	bus.Start(context.Background())
	defer bus.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestEventBusDropsWhenQueueFull(t *testing.T) {
	bus := NewEventBus(1, 1)
	var calls int32
	bus.Subscribe("tick", func(ctx context.Context, e Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	// Not started yet, so only the first event fits.
	bus.Publish(context.Background(), "tick", 1)
	bus.Publish(context.Background(), "tick", 2)
	bus.Publish(context.Background(), "tick", 3)

	bus.Start(context.Background())
	bus.Stop()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestEventBusSurvivesFailingHandlers(t *testing.T) {
	bus := NewEventBus(1, 8)
	var calls int32
	bus.Subscribe("tick", func(ctx context.Context, e Event) error {
		atomic.AddInt32(&calls, 1)
		if e.Payload == 1 {
			panic("boom")
		}
		return errors.New("handler failed")
	})
	bus.Start(context.Background())

	bus.Publish(context.Background(), "tick", 1)
	bus.Publish(context.Background(), "tick", 2)
	bus.Stop()

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestEventBusStopIsIdempotent(t *testing.T) {
	bus := NewEventBus(2, 2)
	bus.Start(context.Background())
	bus.Stop()
	require.NotPanics(t, func() {
		bus.Stop()
		bus.Publish(context.Background(), "tick", nil)
	})
}
