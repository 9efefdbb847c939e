// Package events provides the local publish/subscribe bus and the
// broadcaster that relays its events to other surfaces.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Event is what a listener receives. Details hold the JSON encoding of the
// value passed to Fire, so local and relayed deliveries look the same.
type Event struct {
	Name    string
	Details json.RawMessage
}

// Decode unmarshals the event details into v
func (e Event) Decode(v any) error {
	if len(e.Details) == 0 {
		return fmt.Errorf("event %q has no details", e.Name)
	}
	return json.Unmarshal(e.Details, v)
}

// Listener handles a fired event. A returned error propagates to the firer.
type Listener func(ctx context.Context, e Event) error

// Subscription identifies one registered listener. The zero value is inert.
type Subscription struct {
	Event string
	id    uint64
}

// Valid reports whether the subscription refers to a registration
func (s Subscription) Valid() bool {
	return s.id != 0
}

// Bus is an in-process publish/subscribe primitive with named channels
// declared up front.
type Bus struct {
	logger *slog.Logger

	mu        sync.RWMutex
	listeners map[string]map[uint64]Listener
	nextID    atomic.Uint64
}

// NewBus creates a bus with the given channels declared
func NewBus(logger *slog.Logger, events ...string) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bus{
		logger:    logger,
		listeners: make(map[string]map[uint64]Listener),
	}
	for _, e := range events {
		if _, ok := b.listeners[e]; ok {
			logger.Error("event already declared", "event", e)
			continue
		}
		b.listeners[e] = make(map[uint64]Listener)
	}
	return b
}

// Declared reports whether event is one of the bus channels
func (b *Bus) Declared(event string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.listeners[event]
	return ok
}

// On adds a listener for event
func (b *Bus) On(event string, l Listener) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.listeners[event]
	if !ok {
		b.logger.Error("listener for undeclared event", "event", event)
		return Subscription{}
	}

	sub := Subscription{Event: event, id: b.nextID.Add(1)}
	set[sub.id] = l
	return sub
}

// Once adds a listener that is removed after its first call
func (b *Bus) Once(event string, l Listener) Subscription {
	var (
		sub   Subscription
		fired atomic.Bool
		ready = make(chan struct{})
	)
	sub = b.On(event, func(ctx context.Context, e Event) error {
		<-ready
		if !fired.CompareAndSwap(false, true) {
			return nil
		}
		b.Forget(sub)
		return l(ctx, e)
	})
	close(ready)
	return sub
}

// Forget removes a listener
func (b *Bus) Forget(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if set, ok := b.listeners[sub.Event]; ok {
		delete(set, sub.id)
	}
}

// ForgetAll removes every listener of every channel
func (b *Bus) ForgetAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for e := range b.listeners {
		b.listeners[e] = make(map[uint64]Listener)
	}
}

// Fire invokes every current listener of event with details and waits for
// all of them. The first listener error is returned once all have finished.
// Firing an undeclared event is logged and does nothing else.
func (b *Bus) Fire(ctx context.Context, event string, details any) error {
	raw, err := encodeDetails(details)
	if err != nil {
		return fmt.Errorf("encode %s details: %w", event, err)
	}
	return b.dispatch(ctx, Event{Name: event, Details: raw})
}

func (b *Bus) dispatch(ctx context.Context, e Event) error {
	b.mu.RLock()
	set, ok := b.listeners[e.Name]
	current := make([]Listener, 0, len(set))
	for _, l := range set {
		current = append(current, l)
	}
	b.mu.RUnlock()

	if !ok {
		b.logger.Error("fired undeclared event", "event", e.Name)
		return nil
	}

	var g errgroup.Group
	for _, l := range current {
		g.Go(func() error {
			return l(ctx, e)
		})
	}
	return g.Wait()
}

func encodeDetails(details any) (json.RawMessage, error) {
	if details == nil {
		return nil, nil
	}
	return json.Marshal(details)
}
