package storage

import (
	"sync"
	"time"

	"github.com/frops/planner/pkg/domain/events"
)

// MemoryEventStore keeps the audit log in process memory for the memory
// backend and tests. Loaded events are copies.
type MemoryEventStore struct {
	mu     sync.RWMutex
	chain  chain
	logged []events.Event
}

func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{chain: chain{now: time.Now}}
}

func (s *MemoryEventStore) Append(e *events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chain.seal(e)
	s.logged = append(s.logged, *e)
	s.chain.advance(e)
	return nil
}

func (s *MemoryEventStore) LoadAll() ([]*events.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*events.Event, len(s.logged))
	for i := range s.logged {
		e := s.logged[i]
		out[i] = &e
	}
	return out, nil
}

func (s *MemoryEventStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logged), nil
}

