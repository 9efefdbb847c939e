package divider

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mmcdole/tabstash/internal/domain"
	"github.com/mmcdole/tabstash/internal/events"
)

// NotFound is the index of a collection missing from the order
const NotFound = -1

// Divider is one collection. Every operation reads the whole tree, works
// on a local copy and writes the whole tree back; concurrent writers from
// different surfaces overwrite each other.
type Divider struct {
	id       string
	registry *Registry
	events   *events.Broadcaster
	logger   *slog.Logger
}

func newDivider(id string, r *Registry) *Divider {
	key := domain.CollectionKey(id)
	return &Divider{
		id:       id,
		registry: r,
		events:   events.NewBroadcaster(key, r.channel, r.logger, domain.CollectionEvents...),
		logger:   r.logger.With("collection", id),
	}
}

func (d *Divider) ID() string {
	return d.id
}

// Key returns the storage key of the collection's tree, which also
// identifies its events across surfaces
func (d *Divider) Key() string {
	return domain.CollectionKey(d.id)
}

// Events returns the collection's broadcaster
func (d *Divider) Events() *events.Broadcaster {
	return d.events
}

// Index returns the position of the collection in the order, or NotFound
func (d *Divider) Index(ctx context.Context) (int, error) {
	ids, err := d.registry.All(ctx)
	if err != nil {
		return NotFound, err
	}
	return slices.Index(ids, d.id), nil
}

// SetIndex moves the collection to position i, clamped to the order
func (d *Divider) SetIndex(ctx context.Context, i int) error {
	ids, err := d.registry.All(ctx)
	if err != nil {
		return err
	}

	old := slices.Index(ids, d.id)
	if old == NotFound {
		return fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, d.id)
	}

	ids = slices.Delete(ids, old, old+1)
	i = max(0, min(i, len(ids)))
	ids = slices.Insert(ids, i, d.id)

	if err := d.registry.setOrder(ctx, ids); err != nil {
		return err
	}

	d.logger.Debug("reordered collection", "from", old, "to", i)
	return d.events.Fire(ctx, domain.EventReorder, domain.ReorderDetails{OldIndex: old, NewIndex: i})
}

// Root returns the collection's tree
func (d *Divider) Root(ctx context.Context) (domain.Section, error) {
	var root domain.Section
	found, err := d.registry.store.Get(ctx, d.Key(), &root)
	if err != nil {
		return domain.Section{}, fmt.Errorf("read %s: %w", d.Key(), err)
	}
	if !found {
		return domain.Section{}, fmt.Errorf("%w: %s", domain.ErrCollectionContentMissing, d.id)
	}
	return root, nil
}

// SetRoot replaces the whole tree and fires changeContents
func (d *Divider) SetRoot(ctx context.Context, root domain.Section) error {
	if err := d.write(ctx, root); err != nil {
		return err
	}
	return d.events.Fire(ctx, domain.EventChangeContents, nil)
}

func (d *Divider) write(ctx context.Context, root domain.Section) error {
	if err := d.registry.store.Set(ctx, d.Key(), root); err != nil {
		return fmt.Errorf("write %s: %w", d.Key(), err)
	}
	return nil
}

// Name returns the name of the root section
func (d *Divider) Name(ctx context.Context) (string, error) {
	root, err := d.Root(ctx)
	if err != nil {
		return "", err
	}
	return root.Name, nil
}

// SetName renames the collection. It reports false without changing
// anything when name is empty, unchanged or used by another collection.
func (d *Divider) SetName(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, nil
	}

	root, err := d.Root(ctx)
	if err != nil {
		return false, err
	}
	old := root.Name
	if name == old {
		return false, nil
	}

	names, err := d.registry.Names(ctx)
	if err != nil {
		return false, err
	}
	if slices.Contains(names, name) {
		d.logger.Debug("rename rejected, name taken", "name", name)
		return false, nil
	}

	root.Name = name
	if err := d.write(ctx, root); err != nil {
		return false, err
	}

	d.logger.Info("renamed collection", "from", old, "to", name)
	err = d.events.Fire(ctx, domain.EventRename, domain.RenameDetails{OldName: old, NewName: name})
	return true, err
}

// Delete removes the collection and its tree. Deleting a collection that
// is not in the order does nothing.
func (d *Divider) Delete(ctx context.Context) error {
	ids, err := d.registry.All(ctx)
	if err != nil {
		return err
	}

	index := slices.Index(ids, d.id)
	if index == NotFound {
		return nil
	}

	if err := d.registry.setOrder(ctx, slices.Delete(ids, index, index+1)); err != nil {
		return err
	}
	if err := d.registry.store.Remove(ctx, d.Key()); err != nil {
		return fmt.Errorf("remove %s: %w", d.Key(), err)
	}

	d.logger.Info("deleted collection", "index", index)
	return d.events.Fire(ctx, domain.EventDelete, domain.DeleteDetails{Index: index})
}

// Duplicate creates a copy of the collection named "<name> (n)" with the
// smallest n not in use
func (d *Divider) Duplicate(ctx context.Context) (*Divider, error) {
	root, err := d.Root(ctx)
	if err != nil {
		return nil, err
	}
	names, err := d.registry.Names(ctx)
	if err != nil {
		return nil, err
	}

	var name string
	for n := 1; ; n++ {
		name = fmt.Sprintf("%s (%d)", root.Name, n)
		if !slices.Contains(names, name) {
			break
		}
	}

	dup, err := d.registry.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	if dup == nil {
		return nil, fmt.Errorf("duplicate %s: name %q was taken concurrently", d.id, name)
	}

	copied := root.Clone()
	copied.Name = name
	if err := dup.SetRoot(ctx, copied); err != nil {
		return nil, err
	}
	return dup, nil
}
