package divider

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmcdole/tabstash/internal/domain"
)

// UnknownTitle is saved for views that report no title
const UnknownTitle = "[Unknown]"

var errNoTabHost = errors.New("no tab host configured")

// Selector picks the views Compress saves
type Selector interface {
	views(ctx context.Context, host domain.TabHost) ([]domain.View, error)
}

type activeView struct{}

// ActiveView selects the focused view of the current window
func ActiveView() Selector {
	return activeView{}
}

func (activeView) views(ctx context.Context, host domain.TabHost) ([]domain.View, error) {
	v, err := host.Active(ctx)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: no active view", domain.ErrViewNotFound)
	}
	return []domain.View{*v}, nil
}

type viewByID int

// ViewByID selects the view with the given id
func ViewByID(id int) Selector {
	return viewByID(id)
}

func (s viewByID) views(ctx context.Context, host domain.TabHost) ([]domain.View, error) {
	v, err := host.View(ctx, int(s))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: %d", domain.ErrViewNotFound, int(s))
	}
	return []domain.View{*v}, nil
}

// Predicate decides whether candidate is saved, given the view hosting
// the calling surface
type Predicate func(ref, candidate domain.View) bool

type viewsMatching Predicate

// ViewsMatching selects the unpinned views of the current window, other
// than the calling surface's own view, for which pred holds
func ViewsMatching(pred Predicate) Selector {
	return viewsMatching(pred)
}

func (s viewsMatching) views(ctx context.Context, host domain.TabHost) ([]domain.View, error) {
	ref, err := host.Current(ctx)
	if err != nil {
		return nil, err
	}
	if ref == nil {
		return nil, domain.ErrPredicateUnavailable
	}

	pinned := false
	candidates, err := host.Query(ctx, domain.ViewQuery{CurrentWindow: true, Pinned: &pinned})
	if err != nil {
		return nil, err
	}

	var matched []domain.View
	for _, v := range candidates {
		if v.ID != ref.ID && s(*ref, v) {
			matched = append(matched, v)
		}
	}
	return matched, nil
}

// Compress saves the selected views at the front of the root's items and
// closes them. Views are inserted one at a time in the order selected, so
// the last selected view ends up first. Returns how many were saved.
func (d *Divider) Compress(ctx context.Context, sel Selector) (int, error) {
	host := d.registry.host
	if host == nil {
		return 0, errNoTabHost
	}

	views, err := sel.views(ctx, host)
	if err != nil {
		return 0, fmt.Errorf("compress: %w", err)
	}
	if len(views) == 0 {
		d.logger.Debug("compress selected no views")
		return 0, nil
	}

	root, err := d.Root(ctx)
	if err != nil {
		return 0, err
	}

	now := d.registry.now().UnixMilli()
	ids := make([]int, len(views))
	for i, v := range views {
		root.PrependItems(itemFromView(v, now))
		ids[i] = v.ID
	}

	if err := d.SetRoot(ctx, root); err != nil {
		return 0, err
	}
	if err := host.Close(ctx, ids...); err != nil {
		return len(views), fmt.Errorf("close views: %w", err)
	}

	d.logger.Info("compressed views", "count", len(views))
	return len(views), nil
}

func itemFromView(v domain.View, now int64) domain.Item {
	title := v.Title
	if title == "" {
		title = UnknownTitle
	}
	return domain.Item{Title: title, URL: v.URL, Time: now}
}

// Expand opens the item at route. direct navigates the current view,
// otherwise a background view opens next to the active one. destructive
// also removes the item from the collection.
func (d *Divider) Expand(ctx context.Context, route domain.Route, direct, destructive bool) (domain.Item, error) {
	host := d.registry.host
	if host == nil {
		return domain.Item{}, errNoTabHost
	}

	root, err := d.Root(ctx)
	if err != nil {
		return domain.Item{}, err
	}

	var item domain.Item
	if destructive {
		item = root.RemoveItem(route)
	} else {
		item = *root.Item(route)
	}

	if direct {
		err = host.Open(ctx, item.URL, domain.OpenOptions{Replace: true})
	} else {
		err = d.openBackground(ctx, host, item.URL)
	}
	if err != nil {
		return item, fmt.Errorf("open %s: %w", item.URL, err)
	}

	if destructive {
		if err := d.SetRoot(ctx, root); err != nil {
			return item, err
		}
	}
	d.logger.Debug("expanded item", "route", route.String(), "direct", direct, "destructive", destructive)
	return item, nil
}

func (d *Divider) openBackground(ctx context.Context, host domain.TabHost, url string) error {
	active, err := host.Active(ctx)
	if err != nil {
		return err
	}

	index := -1
	if active != nil {
		index = active.Index + 1
	}
	return host.Open(ctx, url, domain.OpenOptions{Index: index})
}
