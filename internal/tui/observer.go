package tui

import (
	"context"

	"github.com/mmcdole/tabstash/internal/events"
)

// EventObserver adapts collection events to a channel for Bubble Tea
type EventObserver struct {
	broadcaster *events.Broadcaster
	ch          chan events.Event
	subs        []events.Subscription
}

// NewEventObserver listens for names on b
func NewEventObserver(b *events.Broadcaster, names ...string) *EventObserver {
	o := &EventObserver{
		broadcaster: b,
		ch:          make(chan events.Event, 16),
	}
	for _, name := range names {
		o.subs = append(o.subs, b.On(name, o.forward))
	}
	return o
}

// forward sends the event to the channel (non-blocking if full)
func (o *EventObserver) forward(_ context.Context, e events.Event) error {
	select {
	case o.ch <- e:
	default: // Non-blocking if channel full
	}
	return nil
}

// Events returns the channel events are delivered on
func (o *EventObserver) Events() <-chan events.Event {
	return o.ch
}

// Close stops listening
func (o *EventObserver) Close() {
	for _, sub := range o.subs {
		o.broadcaster.Forget(sub)
	}
}
