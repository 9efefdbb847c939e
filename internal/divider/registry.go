// Package divider implements collections of saved tabs ("dividers"): the
// registry that orders and names them and the per-collection store that
// mutates their section trees.
package divider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/tabstash/internal/domain"
	"github.com/mmcdole/tabstash/internal/query"
	"github.com/sahilm/fuzzy"
)

const defaultCollectionName = "New Collection"

// Registry lists, creates and loads collections. The order list stored at
// domain.OrderKey is the only record of which collections exist.
type Registry struct {
	store   domain.Storage
	channel domain.Channel
	host    domain.TabHost
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string

	mu      sync.Mutex
	handles map[string]*Divider
}

// Option configures a Registry
type Option func(*Registry)

// WithClock sets the time source used for item timestamps
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithIDGenerator sets the generator for new collection ids
func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) { r.newID = fn }
}

// NewRegistry creates a registry. channel may be nil for a surface that
// does not share events; host may be nil when no tab operations are used.
func NewRegistry(store domain.Storage, channel domain.Channel, host domain.TabHost, logger *slog.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		store:   store,
		channel: channel,
		host:    host,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
		handles: make(map[string]*Divider),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// All returns the id of every collection in order. A stored value that is
// not a list is read as a list holding that single value.
func (r *Registry) All(ctx context.Context) ([]string, error) {
	var raw json.RawMessage
	found, err := r.store.Get(ctx, domain.OrderKey, &raw)
	if err != nil {
		return nil, fmt.Errorf("read collection order: %w", err)
	}
	if !found {
		return []string{}, nil
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err == nil {
		if ids == nil {
			ids = []string{}
		}
		return ids, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}, nil
	}
	r.logger.Warn("collection order is not a list", "value", string(raw))
	return []string{strings.TrimSpace(string(raw))}, nil
}

func (r *Registry) setOrder(ctx context.Context, ids []string) error {
	if err := r.store.Set(ctx, domain.OrderKey, ids); err != nil {
		return fmt.Errorf("write collection order: %w", err)
	}
	return nil
}

// Names returns the display name of every collection in order
func (r *Registry) Names(ctx context.Context) ([]string, error) {
	ids, err := r.All(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		name, err := r.handle(id).Name(ctx)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// Create adds a collection with an empty root named name. An empty name
// picks the first free default name. Returns nil when name is taken.
func (r *Registry) Create(ctx context.Context, name string) (*Divider, error) {
	names, err := r.Names(ctx)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = defaultCollectionName
		for n := 1; slices.Contains(names, name); n++ {
			name = fmt.Sprintf("%s %d", defaultCollectionName, n)
		}
	} else if slices.Contains(names, name) {
		r.logger.Debug("collection name taken", "name", name)
		return nil, nil
	}

	d := r.handle(r.newID())

	// Content goes first so a listed id always has a tree
	if err := r.store.Set(ctx, d.Key(), domain.NewSection(name)); err != nil {
		return nil, fmt.Errorf("write %s: %w", d.Key(), err)
	}

	ids, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.setOrder(ctx, append(ids, d.ID())); err != nil {
		return nil, err
	}

	r.logger.Info("created collection", "id", d.ID(), "name", name)
	return d, nil
}

// Load returns the collection with id, or nil when id is not in the order
func (r *Registry) Load(ctx context.Context, id string) (*Divider, error) {
	ids, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(ids, id) {
		return nil, nil
	}
	return r.handle(id), nil
}

// handle returns the shared handle for id so every caller on this surface
// uses the same broadcaster
func (r *Registry) handle(id string) *Divider {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.handles[id]; ok {
		return d
	}
	d := newDivider(id, r)
	r.handles[id] = d
	return d
}

// Find returns the first collection whose name starts with q, ignoring case
// and accents, falling back to the best fuzzy match. Nil when nothing fits.
func (r *Registry) Find(ctx context.Context, q string) (*Divider, error) {
	q = query.Simplify(strings.TrimSpace(q))
	if q == "" {
		return nil, nil
	}

	ids, err := r.All(ctx)
	if err != nil {
		return nil, err
	}
	names, err := r.Names(ctx)
	if err != nil {
		return nil, err
	}

	simplified := make([]string, len(names))
	for i, name := range names {
		simplified[i] = query.Simplify(name)
		if strings.HasPrefix(simplified[i], q) {
			return r.handle(ids[i]), nil
		}
	}

	matches := fuzzy.Find(q, simplified)
	if len(matches) == 0 {
		return nil, nil
	}
	r.logger.Debug("fuzzy collection match", "query", q, "name", names[matches[0].Index])
	return r.handle(ids[matches[0].Index]), nil
}

// Export returns every stored key with its value
func (r *Registry) Export(ctx context.Context) (map[string]json.RawMessage, error) {
	all, err := r.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return all, nil
}

// Import replaces all stored data with cfg
func (r *Registry) Import(ctx context.Context, cfg map[string]json.RawMessage) error {
	if err := r.store.Clear(ctx); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	for key, value := range cfg {
		if err := r.store.Set(ctx, key, value); err != nil {
			return fmt.Errorf("import %s: %w", key, err)
		}
	}
	r.logger.Info("imported configuration", "keys", len(cfg))
	return nil
}
