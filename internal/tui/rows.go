package tui

import (
	"slices"

	"github.com/mmcdole/tabstash/internal/domain"
	"github.com/mmcdole/tabstash/internal/query"
)

// row is one displayed line: a section header or an item
type row struct {
	Depth   int
	Section string // Header text, empty for items
	IsItem  bool
	Item    domain.Item
	Route   domain.Route
}

// buildRows flattens root for display, subsections before items. With a
// matcher, only matching items and the sections leading to them are kept.
func buildRows(root domain.Section, m query.Matcher) []row {
	return appendSection(nil, root, nil, nil, 0, m)
}

func appendSection(rows []row, s domain.Section, route []int, names []string, depth int, m query.Matcher) []row {
	for i, sub := range s.Sections {
		subRoute := append(slices.Clone(route), i)
		subNames := append([]string{sub.Name}, names...)

		children := appendSection(nil, sub, subRoute, subNames, depth+1, m)
		if m != nil && !slices.ContainsFunc(children, func(r row) bool { return r.IsItem }) {
			continue
		}
		rows = append(rows, row{Depth: depth, Section: sub.Name})
		rows = append(rows, children...)
	}

	for i, item := range s.Items {
		if m != nil && !m.Match(item, names) {
			continue
		}
		rows = append(rows, row{
			Depth:  depth,
			IsItem: true,
			Item:   item,
			Route:  domain.Route{Path: slices.Clone(route), Index: i},
		})
	}
	return rows
}
