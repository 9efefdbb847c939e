package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrCollectionNotFound indicates the collection id is not in the order list
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrCollectionContentMissing indicates an ordered collection has no stored tree
	ErrCollectionContentMissing = errors.New("collection content missing")

	// ErrPredicateUnavailable indicates predicate compression was requested
	// from a surface that is not itself a view
	ErrPredicateUnavailable = errors.New("predicate compression unavailable")

	// ErrViewNotFound indicates the tab host has no view with the given id
	ErrViewNotFound = errors.New("view not found")

	// ErrChannelClosed indicates a message was sent on a closed channel
	ErrChannelClosed = errors.New("messaging channel closed")
)
