package divider

import (
	"context"
	"slices"

	"github.com/mmcdole/tabstash/internal/domain"
)

const defaultSectionName = "New Section"

// edit applies fn to a fresh copy of the tree and writes it back when fn
// reports a change
func (d *Divider) edit(ctx context.Context, fn func(root *domain.Section) bool) (bool, error) {
	root, err := d.Root(ctx)
	if err != nil {
		return false, err
	}
	if !fn(&root) {
		return false, nil
	}
	return true, d.SetRoot(ctx, root)
}

// AddSection appends an empty subsection to the section at path
func (d *Divider) AddSection(ctx context.Context, path []int, name string) error {
	if name == "" {
		name = defaultSectionName
	}
	_, err := d.edit(ctx, func(root *domain.Section) bool {
		parent := root.Descend(path)
		parent.Sections = append(parent.Sections, domain.NewSection(name))
		return true
	})
	return err
}

// RenameSection renames the section at path. An empty path renames the
// collection itself, with the same rules as SetName.
func (d *Divider) RenameSection(ctx context.Context, path []int, name string) (bool, error) {
	if len(path) == 0 {
		return d.SetName(ctx, name)
	}
	if name == "" {
		return false, nil
	}
	return d.edit(ctx, func(root *domain.Section) bool {
		section := root.Descend(path)
		if section.Name == name {
			return false
		}
		section.Name = name
		return true
	})
}

// RemoveSection deletes the section at path with everything in it
func (d *Divider) RemoveSection(ctx context.Context, path []int) error {
	if len(path) == 0 {
		panic("divider: the root section cannot be removed")
	}
	_, err := d.edit(ctx, func(root *domain.Section) bool {
		parent := root.Descend(path[:len(path)-1])
		i := path[len(path)-1]
		root.Descend(path) // bounds check
		parent.Sections = slices.Delete(parent.Sections, i, i+1)
		return true
	})
	return err
}

// MoveSection moves a subsection of the section at path from one
// position to another
func (d *Divider) MoveSection(ctx context.Context, path []int, from, to int) error {
	_, err := d.edit(ctx, func(root *domain.Section) bool {
		parent := root.Descend(path)
		moved := *parent.Descend([]int{from})
		parent.Sections = slices.Delete(parent.Sections, from, from+1)
		to = max(0, min(to, len(parent.Sections)))
		parent.Sections = slices.Insert(parent.Sections, to, moved)
		return from != to
	})
	return err
}

// RemoveItem deletes the item at route and returns it
func (d *Divider) RemoveItem(ctx context.Context, route domain.Route) (domain.Item, error) {
	var removed domain.Item
	_, err := d.edit(ctx, func(root *domain.Section) bool {
		removed = root.RemoveItem(route)
		return true
	})
	return removed, err
}

// InsertItem places item at index in the section at path, clamped to the
// section's items
func (d *Divider) InsertItem(ctx context.Context, path []int, index int, item domain.Item) error {
	_, err := d.edit(ctx, func(root *domain.Section) bool {
		section := root.Descend(path)
		index = max(0, min(index, len(section.Items)))
		section.Items = slices.Insert(section.Items, index, item)
		return true
	})
	return err
}

// MoveItem moves the item at route to the front of the section at dest
func (d *Divider) MoveItem(ctx context.Context, route domain.Route, dest []int) error {
	_, err := d.edit(ctx, func(root *domain.Section) bool {
		target := root.Descend(dest)
		item := root.RemoveItem(route)
		target.PrependItems(item)
		return true
	})
	return err
}

// MoveItemWithin moves an item of the section at path from one position
// to another
func (d *Divider) MoveItemWithin(ctx context.Context, path []int, from, to int) error {
	_, err := d.edit(ctx, func(root *domain.Section) bool {
		item := root.RemoveItem(domain.Route{Path: path, Index: from})
		section := root.Descend(path)
		to = max(0, min(to, len(section.Items)))
		section.Items = slices.Insert(section.Items, to, item)
		return from != to
	})
	return err
}
