package source

import (
	"slices"
	"sync"
)

// subscribers is a registry of change listeners.
type subscribers struct {
	mu     sync.Mutex
	nextID uint64
	fns    map[uint64]func()
}

// add registers fn and returns its removal function. Removing twice is safe.
func (s *subscribers) add(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fns == nil {
		s.fns = make(map[uint64]func())
	}
	id := s.nextID
	s.nextID++
	s.fns[id] = fn

	return func() {
		s.mu.Lock()
		delete(s.fns, id)
		s.mu.Unlock()
	}
}

// notify calls every listener in subscription order. Listeners may
// subscribe or unsubscribe while being notified.
func (s *subscribers) notify() {
	s.mu.Lock()
	ids := make([]uint64, 0, len(s.fns))
	for id := range s.fns {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	slices.Sort(ids)
	for _, id := range ids {
		s.mu.Lock()
		fn, ok := s.fns[id]
		s.mu.Unlock()
		if ok {
			fn()
		}
	}
}

// count returns the number of listeners.
func (s *subscribers) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fns)
}
