package relay

import (
	"sync"

	"github.com/mmcdole/tabstash/internal/domain"
)

// subscribers is the inbound-listener set shared by every channel kind
type subscribers struct {
	mu     sync.RWMutex
	fns    map[uint64]func(domain.Message)
	nextID uint64
}

func newSubscribers() *subscribers {
	return &subscribers{fns: make(map[uint64]func(domain.Message))}
}

func (s *subscribers) add(fn func(domain.Message)) (cancel func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.fns[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.fns, id)
			s.mu.Unlock()
		})
	}
}

func (s *subscribers) deliver(msg domain.Message) {
	s.mu.RLock()
	fns := make([]func(domain.Message), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(msg)
	}
}

func (s *subscribers) clear() {
	s.mu.Lock()
	s.fns = make(map[uint64]func(domain.Message))
	s.mu.Unlock()
}
