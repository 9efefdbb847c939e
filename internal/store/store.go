package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mmcdole/tabstash/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var bucketLocal = []byte("local")

// Bolt implements domain.Storage using BoltDB.
// Bolt holds an exclusive file lock, so one database file serves the
// surfaces of a single process; use SQLite to share across processes.
type Bolt struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewBolt opens (creating if needed) the database at path.
// An empty path gives a memory-only store.
func NewBolt(path string) (*Bolt, error) {
	if path == "" {
		// Memory-only mode (no persistence)
		return &Bolt{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketLocal)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Bolt{db: db, cache: make(map[string][]byte)}, nil
}

// NewMemory returns a store that keeps everything in memory
func NewMemory() *Bolt {
	s, _ := NewBolt("")
	return s
}

func (s *Bolt) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Bolt) Get(_ context.Context, key string, dest any) (bool, error) {
	data, err := s.read(key)
	if err != nil || data == nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

func (s *Bolt) read(key string) ([]byte, error) {
	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return data, nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil, nil
	}

	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketLocal).Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil || data == nil {
		return nil, err
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[key] = data
	s.mu.Unlock()

	return data, nil
}

func (s *Bolt) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	if s.db != nil {
		err = s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketLocal).Put([]byte(key), data)
		})
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.cache[key] = data
	s.mu.Unlock()
	return nil
}

func (s *Bolt) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketLocal).Delete([]byte(key))
	})
}

func (s *Bolt) All(_ context.Context) (map[string]json.RawMessage, error) {
	all := make(map[string]json.RawMessage)

	if s.db == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		for k, v := range s.cache {
			all[k] = append(json.RawMessage(nil), v...)
		}
		return all, nil
	}

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketLocal).ForEach(func(k, v []byte) error {
			all[string(k)] = append(json.RawMessage(nil), v...)
			return nil
		})
	})
	return all, err
}

func (s *Bolt) Clear(_ context.Context) error {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketLocal); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketLocal)
		return err
	})
}

var _ domain.Storage = (*Bolt)(nil)
