// Package query filters collection items. A Matcher is built from a query
// string by one of several constructors selected by tag; "standard" parses
// the full term grammar.
package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/mmcdole/tabstash/internal/domain"
)

// Matcher decides whether an item is visible
type Matcher interface {
	// Description explains the query syntax to the user
	Description() string

	// Match reports whether item matches. path holds the names of the
	// sections containing the item, innermost first, root excluded.
	Match(item domain.Item, path []string) bool
}

// Constructor builds a Matcher from non-empty query text
type Constructor func(text string) (Matcher, error)

// ErrUnknownTag indicates no constructor is registered for a tag
var ErrUnknownTag = errors.New("unknown matcher tag")

// DefaultTag is the matcher used when none is chosen
const DefaultTag = "standard"

var (
	registryMu sync.RWMutex
	registry   = map[string]Constructor{}
	tags       []string
)

func init() {
	Register("standard", NewStandard)
	Register("set", NewSet)
	Register("linear", NewLinear)
	Register("not", NewNot)
	Register("url", NewURL)
	Register("regex", NewRegex)
	Register("fuzzy", NewFuzzy)
}

// Register adds or replaces the constructor for tag
func Register(tag string, c Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[tag]; !ok {
		tags = append(tags, tag)
	}
	registry[tag] = c
}

// Tags returns the registered tags in registration order
func Tags() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Clone(tags)
}

// New builds the matcher for text using the constructor registered under
// tag. Blank text means no filtering and yields a nil Matcher.
func New(tag, text string) (Matcher, error) {
	registryMu.RLock()
	c, ok := registry[tag]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTag, tag)
	}

	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return c(text)
}

// Entry is one item of a tree snapshot together with its location
type Entry struct {
	Route domain.Route
	Item  domain.Item
	Path  []string // Enclosing section names, innermost first, root excluded
}

// Walk visits every item of root depth-first: a section's subsections
// before its own items, matching the order they are displayed in
func Walk(root domain.Section, fn func(Entry)) {
	walk(root, nil, nil, fn)
}

func walk(s domain.Section, route []int, names []string, fn func(Entry)) {
	for i, sub := range s.Sections {
		walk(sub, append(slices.Clone(route), i), append([]string{sub.Name}, names...), fn)
	}
	for i, item := range s.Items {
		fn(Entry{
			Route: domain.Route{Path: slices.Clone(route), Index: i},
			Item:  item,
			Path:  names,
		})
	}
}

// Filter returns the entries of root that m matches. A nil Matcher
// matches everything.
func Filter(root domain.Section, m Matcher) []Entry {
	var out []Entry
	Walk(root, func(e Entry) {
		if m == nil || m.Match(e.Item, e.Path) {
			out = append(out, e)
		}
	})
	return out
}
