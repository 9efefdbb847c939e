package domain

import (
	"context"
	"encoding/json"
)

// Storage keys shared by every surface
const (
	// OrderKey holds the ordered list of collection ids
	OrderKey = "dividers"

	// collectionKeyPrefix namespaces a collection's tree by id
	collectionKeyPrefix = "divider#"
)

// CollectionKey returns the storage key holding the tree of collection id
func CollectionKey(id string) string {
	return collectionKeyPrefix + id
}

// Storage is the key/value persistence backend. Values are JSON documents.
// Implementations do not retry; errors surface to the caller.
type Storage interface {
	// Get decodes the value at key into dest. Returns false when absent.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set encodes value and stores it at key, replacing any previous value
	Set(ctx context.Context, key string, value any) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// All returns every stored key with its raw value (used for export)
	All(ctx context.Context) (map[string]json.RawMessage, error)

	// Clear deletes every key (used for import)
	Clear(ctx context.Context) error

	Close() error
}
