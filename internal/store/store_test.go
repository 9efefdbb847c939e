package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mmcdole/tabstash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openBackends(t *testing.T) map[string]domain.Storage {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	backends := map[string]domain.Storage{}
	for _, tc := range []struct{ backend, file string }{
		{BackendMemory, ""},
		{BackendBolt, "tabs.db"},
		{BackendSQLite, "tabs.sqlite"},
	} {
		path := ""
		if tc.file != "" {
			path = filepath.Join(dir, tc.file)
		}
		s, err := Open(ctx, tc.backend, path)
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		backends[tc.backend] = s
	}
	return backends
}

func TestStorage_SetGetRemove(t *testing.T) {
	ctx := context.Background()

	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			var missing []string
			ok, err := s.Get(ctx, "dividers", &missing)
			require.NoError(t, err)
			assert.False(t, ok)

			root := domain.NewSection("Reading")
			root.Items = append(root.Items, domain.Item{Title: "Go", URL: "https://go.dev", Time: 1700000000000})
			require.NoError(t, s.Set(ctx, domain.CollectionKey("a"), root))

			var got domain.Section
			ok, err = s.Get(ctx, domain.CollectionKey("a"), &got)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, root, got)

			require.NoError(t, s.Remove(ctx, domain.CollectionKey("a")))
			ok, err = s.Get(ctx, domain.CollectionKey("a"), &got)
			require.NoError(t, err)
			assert.False(t, ok)

			// Removing twice is fine
			require.NoError(t, s.Remove(ctx, domain.CollectionKey("a")))
		})
	}
}

func TestStorage_AllAndClear(t *testing.T) {
	ctx := context.Background()

	for name, s := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set(ctx, "dividers", []string{"a", "b"}))
			require.NoError(t, s.Set(ctx, "settings", map[string]int{"expandLimit": 30}))

			all, err := s.All(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.JSONEq(t, `["a","b"]`, string(all["dividers"]))
			assert.JSONEq(t, `{"expandLimit":30}`, string(all["settings"]))

			require.NoError(t, s.Clear(ctx))
			all, err = s.All(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)

			var ids []string
			ok, err := s.Get(ctx, "dividers", &ids)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestBolt_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tabs.db")

	s, err := NewBolt(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "dividers", []string{"x"}))
	require.NoError(t, s.Close())

	s, err = NewBolt(path)
	require.NoError(t, err)
	defer s.Close()

	var ids []string
	ok, err := s.Get(ctx, "dividers", &ids)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, ids)
}

func TestStorage_GetDecodeError(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	require.NoError(t, s.Set(ctx, "dividers", "not-a-list"))

	var ids []string
	_, err := s.Get(ctx, "dividers", &ids)
	assert.Error(t, err)

	var raw json.RawMessage
	ok, err := s.Get(ctx, "dividers", &raw)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `"not-a-list"`, string(raw))
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), "redis", "")
	assert.Error(t, err)
}
