// Package relay implements the cross-surface messaging channel: an
// in-process hub for surfaces sharing one program, and a websocket relay
// for surfaces running as separate programs.
package relay

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmcdole/tabstash/internal/domain"
)

// Hub connects surfaces living in the same process
type Hub struct {
	logger *slog.Logger

	mu        sync.RWMutex
	endpoints map[*Endpoint]struct{}
	inflight  sync.WaitGroup
}

// NewHub creates an empty hub
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:    logger,
		endpoints: make(map[*Endpoint]struct{}),
	}
}

// Connect attaches a new surface to the hub
func (h *Hub) Connect() *Endpoint {
	ep := &Endpoint{hub: h, subs: newSubscribers()}
	h.mu.Lock()
	h.endpoints[ep] = struct{}{}
	h.mu.Unlock()
	return ep
}

// Flush waits until every message sent so far has been delivered
func (h *Hub) Flush() {
	h.inflight.Wait()
}

func (h *Hub) broadcast(from *Endpoint, msg domain.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ep := range h.endpoints {
		if ep == from {
			continue
		}
		h.inflight.Add(1)
		go func() {
			defer h.inflight.Done()
			ep.subs.deliver(msg)
		}()
	}
	h.logger.Debug("relayed message", "identifier", msg.Identifier, "event", msg.Event, "surfaces", len(h.endpoints)-1)
}

func (h *Hub) detach(ep *Endpoint) {
	h.mu.Lock()
	delete(h.endpoints, ep)
	h.mu.Unlock()
}

// Endpoint is one surface's connection to a Hub
type Endpoint struct {
	hub  *Hub
	subs *subscribers

	mu     sync.Mutex
	closed bool
}

func (e *Endpoint) Send(_ context.Context, msg domain.Message) error {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return domain.ErrChannelClosed
	}

	e.hub.broadcast(e, msg)
	return nil
}

func (e *Endpoint) Subscribe(fn func(domain.Message)) (cancel func()) {
	return e.subs.add(fn)
}

func (e *Endpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.hub.detach(e)
	e.subs.clear()
	return nil
}

var _ domain.Channel = (*Endpoint)(nil)
