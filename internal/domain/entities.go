package domain

import (
	"fmt"
	"time"
)

// Section is a named node in a collection's tree. The root section's name is
// the collection's display name.
type Section struct {
	Name     string    `json:"name"`
	Sections []Section `json:"sections"` // Subsections containing more items
	Items    []Item    `json:"items"`    // Saved tabs, in user order
}

// NewSection returns an empty section with the given name
func NewSection(name string) Section {
	return Section{
		Name:     name,
		Sections: []Section{},
		Items:    []Item{},
	}
}

// Item is a saved tab
type Item struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Time  int64  `json:"time,omitempty"` // Unix milliseconds when saved, 0 if unknown
}

// SavedAt returns the save time, or the zero time when unknown
func (i Item) SavedAt() time.Time {
	if i.Time == 0 {
		return time.Time{}
	}
	return time.UnixMilli(i.Time)
}

// Route addresses an item inside a tree snapshot: Path walks nested
// Sections by index and Index selects an item in the final section.
// Routes are positional and go stale after any structural change.
type Route struct {
	Path  []int `json:"path"`
	Index int   `json:"index"`
}

// String returns the route as "[0 2]#3"
func (r Route) String() string {
	return fmt.Sprintf("%v#%d", r.Path, r.Index)
}

// Clone returns a deep copy of the section tree
func (s Section) Clone() Section {
	c := Section{Name: s.Name}
	if s.Sections != nil {
		c.Sections = make([]Section, len(s.Sections))
		for i, sub := range s.Sections {
			c.Sections[i] = sub.Clone()
		}
	}
	if s.Items != nil {
		c.Items = make([]Item, len(s.Items))
		copy(c.Items, s.Items)
	}
	return c
}

// Descend follows path from s and returns the addressed section.
// An out-of-range index is a programming error and panics.
func (s *Section) Descend(path []int) *Section {
	current := s
	for depth, i := range path {
		if i < 0 || i >= len(current.Sections) {
			panic(fmt.Sprintf("domain: section path %v out of range at depth %d", path, depth))
		}
		current = &current.Sections[i]
	}
	return current
}

// Item returns a pointer to the item addressed by route. Panics when the
// route does not fit the tree.
func (s *Section) Item(route Route) *Item {
	section := s.Descend(route.Path)
	if route.Index < 0 || route.Index >= len(section.Items) {
		panic(fmt.Sprintf("domain: route %s out of range", route))
	}
	return &section.Items[route.Index]
}

// Lookup returns the item addressed by route, or false when the route does
// not fit the tree
func (s Section) Lookup(route Route) (Item, bool) {
	current := &s
	for _, i := range route.Path {
		if i < 0 || i >= len(current.Sections) {
			return Item{}, false
		}
		current = &current.Sections[i]
	}
	if route.Index < 0 || route.Index >= len(current.Items) {
		return Item{}, false
	}
	return current.Items[route.Index], true
}

// RemoveItem deletes the item addressed by route and returns it
func (s *Section) RemoveItem(route Route) Item {
	section := s.Descend(route.Path)
	item := *s.Item(route)
	section.Items = append(section.Items[:route.Index], section.Items[route.Index+1:]...)
	return item
}

// PrependItems inserts each item at the front in turn, so the last one
// ends up first
func (s *Section) PrependItems(items ...Item) {
	for _, item := range items {
		s.Items = append([]Item{item}, s.Items...)
	}
}

// CountItems returns the number of items in the whole tree
func (s Section) CountItems() int {
	n := len(s.Items)
	for _, sub := range s.Sections {
		n += sub.CountItems()
	}
	return n
}

// View describes an open browser tab (a "view") as reported by the tab host
type View struct {
	ID       int    `json:"id"`
	WindowID int    `json:"windowId"`
	Index    int    `json:"index"` // Position within its window
	Title    string `json:"title"`
	URL      string `json:"url"`
	Pinned   bool   `json:"pinned"`
	Active   bool   `json:"active"`
}
