package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mmcdole/tabstash/internal/domain"
)

// Broadcaster decorates a Bus so that firing also sends the event to every
// other surface over a domain.Channel, and listeners also run for events
// fired elsewhere. The firing surface hears its own events once, locally.
type Broadcaster struct {
	bus        *Bus
	identifier string
	channel    domain.Channel // nil for a purely local broadcaster
	logger     *slog.Logger

	mu      sync.Mutex
	remotes map[uint64]func() // subscription id -> channel unsubscribe
}

// NewBroadcaster creates a broadcaster for events tagged with identifier
func NewBroadcaster(identifier string, channel domain.Channel, logger *slog.Logger, events ...string) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("identifier", identifier)
	return &Broadcaster{
		bus:        NewBus(logger, events...),
		identifier: identifier,
		channel:    channel,
		logger:     logger,
		remotes:    make(map[uint64]func()),
	}
}

// Identifier returns the tag carried by relayed messages
func (b *Broadcaster) Identifier() string {
	return b.identifier
}

// Fire delivers the event to local listeners, waits for them, then sends
// it to the other surfaces. A local listener error stops the relay.
func (b *Broadcaster) Fire(ctx context.Context, event string, details any) error {
	raw, err := encodeDetails(details)
	if err != nil {
		return fmt.Errorf("encode %s details: %w", event, err)
	}

	if err := b.bus.dispatch(ctx, Event{Name: event, Details: raw}); err != nil {
		return err
	}

	if b.channel == nil || !b.bus.Declared(event) {
		return nil
	}

	msg := domain.Message{Identifier: b.identifier, Event: event, Details: raw}
	if err := b.channel.Send(ctx, msg); err != nil {
		return fmt.Errorf("relay %s: %w", event, err)
	}
	return nil
}

// On registers l for event, both locally and for relayed messages
func (b *Broadcaster) On(event string, l Listener) Subscription {
	sub := b.bus.On(event, l)
	if !sub.Valid() || b.channel == nil {
		return sub
	}

	cancel := b.channel.Subscribe(func(msg domain.Message) {
		if msg.Identifier != b.identifier || msg.Event != event {
			return
		}
		// No firer waits on a relayed delivery, so failures end here
		if err := l(context.Background(), Event{Name: msg.Event, Details: msg.Details}); err != nil {
			b.logger.Warn("relayed listener failed", "event", event, "error", err)
		}
	})

	b.mu.Lock()
	b.remotes[sub.id] = cancel
	b.mu.Unlock()
	return sub
}

// Once registers l for a single delivery, local or relayed, whichever
// comes first
func (b *Broadcaster) Once(event string, l Listener) Subscription {
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

// Forget removes both the local and the relayed registration
func (b *Broadcaster) Forget(sub Subscription) {
	b.bus.Forget(sub)

	b.mu.Lock()
	cancel, ok := b.remotes[sub.id]
	delete(b.remotes, sub.id)
	b.mu.Unlock()

	if ok {
		cancel()
	}
}

// ForgetAll removes every registration
func (b *Broadcaster) ForgetAll() {
	b.bus.ForgetAll()

	b.mu.Lock()
	remotes := b.remotes
	b.remotes = make(map[uint64]func())
	b.mu.Unlock()

	for _, cancel := range remotes {
		cancel()
	}
}
