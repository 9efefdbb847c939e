package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mmcdole/tabstash/internal/domain"
)

// parsePath reads a section path such as "0.2"; "" is the root
func parsePath(s string) ([]int, error) {
	if s == "" || s == "." {
		return nil, nil
	}

	parts := strings.Split(s, ".")
	path := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid section path %q", s)
		}
		path[i] = n
	}
	return path, nil
}

// parseRoute reads an item route such as "0.2:3", ":3" or "3"
func parseRoute(s string) (domain.Route, error) {
	pathPart, indexPart, found := strings.Cut(s, ":")
	if !found {
		pathPart, indexPart = "", s
	}

	path, err := parsePath(pathPart)
	if err != nil {
		return domain.Route{}, err
	}
	index, err := strconv.Atoi(indexPart)
	if err != nil || index < 0 {
		return domain.Route{}, fmt.Errorf("invalid item index in route %q", s)
	}
	return domain.Route{Path: path, Index: index}, nil
}

// formatRoute is the inverse of parseRoute
func formatRoute(r domain.Route) string {
	parts := make([]string, len(r.Path))
	for i, n := range r.Path {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".") + ":" + strconv.Itoa(r.Index)
}

// checkRoute rejects routes that do not fit root, which would otherwise
// panic inside the store
func checkRoute(root domain.Section, r domain.Route) error {
	section, err := checkPath(root, r.Path)
	if err != nil {
		return err
	}
	if r.Index >= len(section.Items) {
		return fmt.Errorf("route %s: section has %d items", formatRoute(r), len(section.Items))
	}
	return nil
}

func checkPath(root domain.Section, path []int) (*domain.Section, error) {
	current := &root
	for depth, i := range path {
		if i >= len(current.Sections) {
			return nil, fmt.Errorf("section path %v: no subsection %d at depth %d", path, i, depth)
		}
		current = &current.Sections[i]
	}
	return current, nil
}
