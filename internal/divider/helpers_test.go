package divider

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/tabstash/internal/domain"
	"github.com/mmcdole/tabstash/internal/events"
	"github.com/mmcdole/tabstash/internal/store"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

type openCall struct {
	URL  string
	Opts domain.OpenOptions
}

// fakeHost is an in-memory tab host with one window
type fakeHost struct {
	mu      sync.Mutex
	views   []domain.View
	current *domain.View
	opened  []openCall
	closed  [][]int
}

func (h *fakeHost) Open(_ context.Context, url string, opts domain.OpenOptions) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.opened = append(h.opened, openCall{URL: url, Opts: opts})
	return nil
}

func (h *fakeHost) Close(_ context.Context, ids ...int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = append(h.closed, ids)
	h.views = slices.DeleteFunc(h.views, func(v domain.View) bool {
		return slices.Contains(ids, v.ID)
	})
	return nil
}

func (h *fakeHost) Active(_ context.Context) (*domain.View, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, v := range h.views {
		if v.Active {
			return &v, nil
		}
	}
	return nil, nil
}

func (h *fakeHost) Current(_ context.Context) (*domain.View, error) {
	return h.current, nil
}

func (h *fakeHost) View(_ context.Context, id int) (*domain.View, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, v := range h.views {
		if v.ID == id {
			return &v, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", domain.ErrViewNotFound, id)
}

func (h *fakeHost) Query(_ context.Context, q domain.ViewQuery) ([]domain.View, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []domain.View
	for _, v := range h.views {
		if q.Pinned != nil && v.Pinned != *q.Pinned {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// recorder collects the events fired on a collection
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func record(d *Divider) *recorder {
	r := &recorder{}
	for _, name := range domain.CollectionEvents {
		d.Events().On(name, func(_ context.Context, e events.Event) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, e)
			return nil
		})
	}
	return r
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for _, e := range r.events {
		names = append(names, e.Name)
	}
	return names
}

func (r *recorder) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func newTestRegistry(t *testing.T, host domain.TabHost) *Registry {
	t.Helper()
	s := store.NewMemory()
	t.Cleanup(func() { s.Close() })
	return NewRegistry(s, nil, host, nil, WithClock(func() time.Time { return testNow }))
}

func mustCreate(t *testing.T, r *Registry, name string) *Divider {
	t.Helper()
	d, err := r.Create(context.Background(), name)
	require.NoError(t, err)
	require.NotNil(t, d)
	return d
}

// sampleTree has one nested section and items at two levels
func sampleTree(name string) domain.Section {
	return domain.Section{
		Name: name,
		Sections: []domain.Section{
			{
				Name:     "Reading",
				Sections: []domain.Section{},
				Items: []domain.Item{
					{Title: "Go Blog", URL: "https://go.dev/blog", Time: 1},
					{Title: "Go Spec", URL: "https://go.dev/ref/spec"},
				},
			},
		},
		Items: []domain.Item{
			{Title: "Home", URL: "https://example.com"},
		},
	}
}
