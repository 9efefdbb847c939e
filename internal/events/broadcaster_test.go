package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/tabstash/internal/domain"
	"github.com/mmcdole/tabstash/internal/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSurfaces(t *testing.T, identifier string) (*relay.Hub, *Broadcaster, *Broadcaster) {
	t.Helper()
	hub := relay.NewHub(nil)
	a := NewBroadcaster(identifier, hub.Connect(), nil, domain.CollectionEvents...)
	b := NewBroadcaster(identifier, hub.Connect(), nil, domain.CollectionEvents...)
	return hub, a, b
}

func TestBroadcaster_RelaysToOtherSurface(t *testing.T) {
	ctx := context.Background()
	hub, a, b := newSurfaces(t, "divider#1")

	var local, remote atomic.Int32
	var got domain.RenameDetails
	a.On(domain.EventRename, func(ctx context.Context, e Event) error {
		local.Add(1)
		return nil
	})
	b.On(domain.EventRename, func(ctx context.Context, e Event) error {
		remote.Add(1)
		return e.Decode(&got)
	})

	require.NoError(t, a.Fire(ctx, domain.EventRename, domain.RenameDetails{OldName: "A", NewName: "B"}))
	hub.Flush()

	assert.Equal(t, int32(1), local.Load(), "firer hears its own event exactly once")
	assert.Equal(t, int32(1), remote.Load())
	assert.Equal(t, domain.RenameDetails{OldName: "A", NewName: "B"}, got)
}

func TestBroadcaster_FiltersIdentifierAndEvent(t *testing.T) {
	ctx := context.Background()
	hub := relay.NewHub(nil)
	a := NewBroadcaster("divider#1", hub.Connect(), nil, domain.CollectionEvents...)
	other := NewBroadcaster("divider#2", hub.Connect(), nil, domain.CollectionEvents...)

	var calls atomic.Int32
	other.On(domain.EventChangeContents, func(ctx context.Context, e Event) error {
		calls.Add(1)
		return nil
	})
	other.On(domain.EventDelete, func(ctx context.Context, e Event) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, a.Fire(ctx, domain.EventChangeContents, nil))
	hub.Flush()
	assert.Equal(t, int32(0), calls.Load())
}

func TestBroadcaster_ForgetRemovesBothPaths(t *testing.T) {
	ctx := context.Background()
	hub, a, b := newSurfaces(t, "divider#1")

	var calls atomic.Int32
	sub := b.On(domain.EventChangeContents, func(ctx context.Context, e Event) error {
		calls.Add(1)
		return nil
	})
	b.Forget(sub)

	require.NoError(t, a.Fire(ctx, domain.EventChangeContents, nil))
	require.NoError(t, b.Fire(ctx, domain.EventChangeContents, nil))
	hub.Flush()
	assert.Equal(t, int32(0), calls.Load())
}

func TestBroadcaster_OnceAcrossPaths(t *testing.T) {
	ctx := context.Background()
	hub, a, b := newSurfaces(t, "divider#1")

	var calls atomic.Int32
	b.Once(domain.EventChangeContents, func(ctx context.Context, e Event) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, a.Fire(ctx, domain.EventChangeContents, nil))
	hub.Flush()
	require.NoError(t, b.Fire(ctx, domain.EventChangeContents, nil))
	require.NoError(t, a.Fire(ctx, domain.EventChangeContents, nil))
	hub.Flush()

	assert.Equal(t, int32(1), calls.Load())
}

func TestBroadcaster_LocalErrorStopsRelay(t *testing.T) {
	ctx := context.Background()
	hub, a, b := newSurfaces(t, "divider#1")
	boom := errors.New("render failed")

	a.On(domain.EventChangeContents, func(ctx context.Context, e Event) error { return boom })
	var remote atomic.Int32
	b.On(domain.EventChangeContents, func(ctx context.Context, e Event) error {
		remote.Add(1)
		return nil
	})

	assert.ErrorIs(t, a.Fire(ctx, domain.EventChangeContents, nil), boom)
	hub.Flush()
	assert.Equal(t, int32(0), remote.Load())
}

func TestBroadcaster_SendFailurePropagates(t *testing.T) {
	ctx := context.Background()
	hub := relay.NewHub(nil)
	ep := hub.Connect()
	b := NewBroadcaster("divider#1", ep, nil, domain.CollectionEvents...)
	require.NoError(t, ep.Close())

	err := b.Fire(ctx, domain.EventChangeContents, nil)
	assert.ErrorIs(t, err, domain.ErrChannelClosed)
}

func TestBroadcaster_LocalOnly(t *testing.T) {
	ctx := context.Background()
	b := NewBroadcaster("divider#1", nil, nil, domain.CollectionEvents...)

	done := make(chan struct{})
	b.On(domain.EventDelete, func(ctx context.Context, e Event) error {
		close(done)
		return nil
	})
	require.NoError(t, b.Fire(ctx, domain.EventDelete, domain.DeleteDetails{Index: 0}))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener not called")
	}
}
