// Package backup holds the last snapshot a registry owner saved. The
// store is passive: it validates nothing and trusts its owner. Each
// registry gets its own instance.
package backup

import "sync"

// Store keeps at most one snapshot, overwritten wholesale on each
// Replace. The zero value is empty and ready to use.
type Store[T any] struct {
	mu       sync.Mutex
	snapshot T
	written  bool
}

// NewStore creates an empty store.
func NewStore[T any]() *Store[T] {
	return &Store[T]{}
}

// Get returns the current snapshot. ok is false when nothing has been
// written since creation or the last Clear.
func (s *Store[T]) Get() (snapshot T, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot, s.written
}

// Replace overwrites the snapshot.
func (s *Store[T]) Replace(snapshot T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snapshot
	s.written = true
}

// Clear drops the snapshot.
func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.snapshot = zero
	s.written = false
}
