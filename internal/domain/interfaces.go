package domain

import (
	"context"
	"encoding/json"
)

// Message is what a surface sends to the others when it fires an event
type Message struct {
	Identifier string          `json:"identifier"` // Storage key of the collection
	Event      string          `json:"event"`
	Details    json.RawMessage `json:"details,omitempty"`
}

// Channel is the cross-surface messaging channel. Send delivers to every
// other surface, never back to the sender. Delivery is fire-and-forget:
// unordered, unacknowledged, and missed by surfaces that are not open.
type Channel interface {
	// Send broadcasts msg to all other surfaces
	Send(ctx context.Context, msg Message) error

	// Subscribe registers fn for inbound messages and returns a func that
	// removes the registration
	Subscribe(fn func(Message)) (cancel func())

	Close() error
}

// OpenOptions controls how TabHost.Open shows a URL
type OpenOptions struct {
	Replace bool // Navigate the current view instead of opening a new one
	Active  bool // Focus the new view
	Index   int  // Position of the new view in its window, -1 for the end
}

// ViewQuery filters the views returned by TabHost.Query
type ViewQuery struct {
	CurrentWindow bool
	Pinned        *bool // nil matches both
}

// TabHost is the platform's tab/view collaborator, used by compress and expand
type TabHost interface {
	// Open shows url in a view
	Open(ctx context.Context, url string, opts OpenOptions) error

	// Close closes the given views
	Close(ctx context.Context, ids ...int) error

	// Active returns the focused view of the current window, nil if none
	Active(ctx context.Context) (*View, error)

	// Current returns the view hosting the calling surface, nil if the
	// surface is not a view
	Current(ctx context.Context) (*View, error)

	// View returns the view with the given id
	View(ctx context.Context, id int) (*View, error)

	// Query returns the views matching q, in window order
	Query(ctx context.Context, q ViewQuery) ([]View, error)
}
