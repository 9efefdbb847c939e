package store

import (
	"context"
	"fmt"

	"github.com/mmcdole/tabstash/internal/domain"
)

// Backend names accepted by Open
const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open returns the storage backend named by backend, stored at path
func Open(ctx context.Context, backend, path string) (domain.Storage, error) {
	switch backend {
	case BackendBolt, "":
		return NewBolt(path)
	case BackendSQLite:
		return NewSQLite(ctx, path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
