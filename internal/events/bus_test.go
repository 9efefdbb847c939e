package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/tabstash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_FireWaitsForAllListeners(t *testing.T) {
	ctx := context.Background()
	bus := NewBus(nil, domain.CollectionEvents...)

	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		bus.On(domain.EventChangeContents, func(ctx context.Context, e Event) error {
			time.Sleep(10 * time.Millisecond)
			calls.Add(1)
			return nil
		})
	}

	require.NoError(t, bus.Fire(ctx, domain.EventChangeContents, nil))
	assert.Equal(t, int32(3), calls.Load())
}

func TestBus_DetailsDecode(t *testing.T) {
	ctx := context.Background()
	bus := NewBus(nil, domain.CollectionEvents...)

	var got domain.ReorderDetails
	bus.On(domain.EventReorder, func(ctx context.Context, e Event) error {
		return e.Decode(&got)
	})

	require.NoError(t, bus.Fire(ctx, domain.EventReorder, domain.ReorderDetails{OldIndex: 2, NewIndex: 0}))
	assert.Equal(t, domain.ReorderDetails{OldIndex: 2, NewIndex: 0}, got)
}

func TestBus_ListenerErrorPropagates(t *testing.T) {
	ctx := context.Background()
	bus := NewBus(nil, domain.CollectionEvents...)
	boom := errors.New("boom")

	var other atomic.Bool
	bus.On(domain.EventDelete, func(ctx context.Context, e Event) error { return boom })
	bus.On(domain.EventDelete, func(ctx context.Context, e Event) error {
		other.Store(true)
		return nil
	})

	err := bus.Fire(ctx, domain.EventDelete, domain.DeleteDetails{Index: 1})
	assert.ErrorIs(t, err, boom)
	assert.True(t, other.Load(), "other listeners still run")
}

func TestBus_UndeclaredEvent(t *testing.T) {
	ctx := context.Background()
	bus := NewBus(nil, domain.EventRename)

	sub := bus.On("explode", func(ctx context.Context, e Event) error { return nil })
	assert.False(t, sub.Valid())

	assert.NoError(t, bus.Fire(ctx, "explode", nil))
	assert.False(t, bus.Declared("explode"))
	assert.True(t, bus.Declared(domain.EventRename))
}

func TestBus_OnceForgetForgetAll(t *testing.T) {
	ctx := context.Background()
	bus := NewBus(nil, domain.CollectionEvents...)

	var once, kept, forgotten atomic.Int32
	bus.Once(domain.EventRename, func(ctx context.Context, e Event) error {
		once.Add(1)
		return nil
	})
	bus.On(domain.EventRename, func(ctx context.Context, e Event) error {
		kept.Add(1)
		return nil
	})
	sub := bus.On(domain.EventRename, func(ctx context.Context, e Event) error {
		forgotten.Add(1)
		return nil
	})
	bus.Forget(sub)

	require.NoError(t, bus.Fire(ctx, domain.EventRename, nil))
	require.NoError(t, bus.Fire(ctx, domain.EventRename, nil))
	assert.Equal(t, int32(1), once.Load())
	assert.Equal(t, int32(2), kept.Load())
	assert.Equal(t, int32(0), forgotten.Load())

	bus.ForgetAll()
	require.NoError(t, bus.Fire(ctx, domain.EventRename, nil))
	assert.Equal(t, int32(2), kept.Load())
}

func TestEvent_DecodeWithoutDetails(t *testing.T) {
	var d domain.DeleteDetails
	assert.Error(t, Event{Name: domain.EventChangeContents}.Decode(&d))
}
