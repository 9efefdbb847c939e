package main

import (
	"context"
	"testing"

	"github.com/mmcdole/tabstash/internal/adapter"
	"github.com/mmcdole/tabstash/internal/divider"
	"github.com/mmcdole/tabstash/internal/domain"
	"github.com/mmcdole/tabstash/internal/query"
	"github.com/mmcdole/tabstash/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStash(t *testing.T) (*divider.Divider, *adapter.Launcher) {
	t.Helper()
	l := adapter.NewLauncher("", nil, adapter.NullLogger())
	reg := divider.NewRegistry(store.NewMemory(), nil, l, adapter.NullLogger())
	d, err := reg.Create(context.Background(), "Reading")
	require.NoError(t, err)
	require.NoError(t, d.SetRoot(context.Background(), domain.Section{
		Name:  "Reading",
		Items: []domain.Item{{Title: "Old", URL: "https://old.example"}},
	}))
	return d, l
}

func urlsOf(items []domain.Item) []string {
	var urls []string
	for _, item := range items {
		urls = append(urls, item.URL)
	}
	return urls
}

func TestStashURLs_KeepsGivenOrder(t *testing.T) {
	ctx := context.Background()
	d, l := newStash(t)

	urls := []string{"https://a.example", "https://b.example", "https://c.example"}
	n, err := stashURLs(ctx, d, l, urls, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	root, err := d.Root(ctx)
	require.NoError(t, err)
	assert.Equal(t, append(urls, "https://old.example"), urlsOf(root.Items))

	// Saved views are closed, only the command's own view remains
	views, err := l.Query(ctx, domain.ViewQuery{})
	require.NoError(t, err)
	assert.Len(t, views, 1)
}

func TestStashURLs_Single(t *testing.T) {
	ctx := context.Background()
	d, l := newStash(t)

	n, err := stashURLs(ctx, d, l, []string{"https://go.dev"}, "Go", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	root, err := d.Root(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Go", root.Items[0].Title)
	assert.Equal(t, "https://go.dev", root.Items[0].URL)
}

func TestStashURLs_Match(t *testing.T) {
	ctx := context.Background()
	d, l := newStash(t)

	m, err := query.New("url", "go.dev")
	require.NoError(t, err)

	urls := []string{"https://go.dev/blog", "https://rust-lang.org", "https://go.dev/doc"}
	n, err := stashURLs(ctx, d, l, urls, "", m)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	root, err := d.Root(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://go.dev/blog", "https://go.dev/doc", "https://old.example"}, urlsOf(root.Items))
	assert.Equal(t, divider.UnknownTitle, root.Items[0].Title)
}
