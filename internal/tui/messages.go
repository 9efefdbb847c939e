package tui

import (
	"github.com/mmcdole/tabstash/internal/domain"
	"github.com/mmcdole/tabstash/internal/events"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// TreeLoadedMsg carries a fresh snapshot of the collection
type TreeLoadedMsg struct {
	Root domain.Section
}

// CollectionEventMsg forwards an event fired on the collection, locally
// or by another surface
type CollectionEventMsg struct {
	Event events.Event
}

// ExpandedMsg signals that an item was opened
type ExpandedMsg struct {
	Item        domain.Item
	Destructive bool
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}
