package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/tabstash/internal/divider"
	"github.com/mmcdole/tabstash/internal/domain"
	"github.com/mmcdole/tabstash/internal/events"
)

// Command factories for async operations

const storeTimeout = 10 * time.Second

// LoadTreeCmd reads the collection's tree
func LoadTreeCmd(d *divider.Divider) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		root, err := d.Root(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading collection"}
		}
		return TreeLoadedMsg{Root: root}
	}
}

// ErrStaleRoute indicates the tree changed since the selected row was
// rendered, so its route no longer addresses the same item
var ErrStaleRoute = errors.New("collection changed, reloading")

// ExpandCmd opens the item at route. want is the item the row showed; the
// tree is read again and nothing is opened unless route still holds it.
func ExpandCmd(d *divider.Divider, route domain.Route, want domain.Item, direct, destructive bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		root, err := d.Root(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "opening " + want.Title}
		}
		if got, ok := root.Lookup(route); !ok || got.Title != want.Title || got.URL != want.URL {
			return ErrMsg{Err: ErrStaleRoute, Context: "opening " + want.Title}
		}

		item, err := d.Expand(ctx, route, direct, destructive)
		if err != nil {
			return ErrMsg{Err: err, Context: "opening " + item.Title}
		}
		return ExpandedMsg{Item: item, Destructive: destructive}
	}
}

// WaitForEventCmd waits for the next collection event
func WaitForEventCmd(ch <-chan events.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return CollectionEventMsg{Event: e}
	}
}

// ClearStatusCmd clears the status line after d
func ClearStatusCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
