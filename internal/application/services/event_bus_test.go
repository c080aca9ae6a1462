package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/HARIPRASAD-2003/form-builder/internal/domain/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishInOrder(t *testing.T) {
	bus := NewEventBus()
	var got []string

	bus.Subscribe(events.FormCreated, func(ctx context.Context, payload interface{}) error {
		got = append(got, "first:"+payload.(events.FormEvent).FormID)
		return nil
	})
	bus.Subscribe(events.FormCreated, func(ctx context.Context, payload interface{}) error {
		got = append(got, "second")
		return nil
	})

	err := bus.Publish(context.Background(), events.FormCreated, events.FormEvent{FormID: "f1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first:f1", "second"}, got)

	// No handlers is not an error
	assert.NoError(t, bus.Publish(context.Background(), events.FormDeleted, nil))
}

func TestEventBus_HandlerErrorStopsChain(t *testing.T) {
	bus := NewEventBus()
	called := false

	bus.Subscribe(events.FieldRemoved, func(ctx context.Context, payload interface{}) error {
		return errors.New("boom")
	})
	bus.Subscribe(events.FieldRemoved, func(ctx context.Context, payload interface{}) error {
		called = true
		return nil
	})

	err := bus.Publish(context.Background(), events.FieldRemoved, nil)
	assert.ErrorContains(t, err, "field.removed")
	assert.False(t, called)
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus()
	var first, second int

	unsubFirst := bus.Subscribe(events.FormUpdated, func(ctx context.Context, payload interface{}) error {
		first++
		return nil
	})
	bus.Subscribe(events.FormUpdated, func(ctx context.Context, payload interface{}) error {
		second++
		return nil
	})

	unsubFirst()
	unsubFirst() // second call is a no-op
	assert.Equal(t, 1, bus.HandlerCount(events.FormUpdated))

	require.NoError(t, bus.Publish(context.Background(), events.FormUpdated, nil))
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}

func TestEventBus_PublishAsync(t *testing.T) {
	bus := NewEventBus()
	var wg sync.WaitGroup
	wg.Add(1)

	bus.Subscribe(events.PreviewOpened, func(ctx context.Context, payload interface{}) error {
		defer wg.Done()
		assert.Equal(t, "s1", payload.(events.PreviewEvent).SessionID)
		return nil
	})
	bus.PublishAsync(events.PreviewOpened, events.PreviewEvent{SessionID: "s1"})

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async handler was not called")
	}
}

func TestEventBus_Clear(t *testing.T) {
	bus := NewEventBus()
	bus.Subscribe(events.FormCreated, func(ctx context.Context, payload interface{}) error { return nil })
	bus.Clear()
	assert.Equal(t, 0, bus.HandlerCount(events.FormCreated))
}
