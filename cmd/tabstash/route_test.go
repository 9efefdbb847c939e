package main

import (
	"testing"

	"github.com/mmcdole/tabstash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Route
	}{
		{"3", domain.Route{Index: 3}},
		{":3", domain.Route{Index: 3}},
		{"0:1", domain.Route{Path: []int{0}, Index: 1}},
		{"0.2:3", domain.Route{Path: []int{0, 2}, Index: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseRoute(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "a", "0.x:1", "-1", "0:-2"} {
		_, err := parseRoute(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatRoute(t *testing.T) {
	for _, s := range []string{":0", "0:1", "0.2:3"} {
		r, err := parseRoute(s)
		require.NoError(t, err)
		assert.Equal(t, s, formatRoute(r))
	}
}

func TestCheckRoute(t *testing.T) {
	root := domain.Section{
		Sections: []domain.Section{{Name: "a", Items: []domain.Item{{Title: "x"}}}},
		Items:    []domain.Item{{Title: "y"}},
	}

	assert.NoError(t, checkRoute(root, domain.Route{Index: 0}))
	assert.NoError(t, checkRoute(root, domain.Route{Path: []int{0}, Index: 0}))
	assert.Error(t, checkRoute(root, domain.Route{Index: 1}))
	assert.Error(t, checkRoute(root, domain.Route{Path: []int{1}, Index: 0}))
	assert.Error(t, checkRoute(root, domain.Route{Path: []int{0}, Index: 1}))
}
