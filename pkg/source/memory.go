package source

import "sync"

// Memory is an in-process path source.
type Memory struct {
	mu   sync.RWMutex
	path string
	subs subscribers
}

// NewMemory returns a Memory source holding path.
func NewMemory(path string) *Memory {
	return &Memory{path: path}
}

// Path returns the current path.
func (m *Memory) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path
}

// SetPath replaces the path and notifies subscribers if it changed.
func (m *Memory) SetPath(path string) {
	m.mu.Lock()
	changed := m.path != path
	m.path = path
	m.mu.Unlock()

	if changed {
		m.subs.notify()
	}
}

// Subscribe registers fn for change notifications.
func (m *Memory) Subscribe(fn func()) func() {
	return m.subs.add(fn)
}

// Subscribers returns the number of active subscriptions.
func (m *Memory) Subscribers() int {
	return m.subs.count()
}
