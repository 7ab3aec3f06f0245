// Package registry provides the process-wide keyed storage behind job
// and session state. Each key carries its own lock so unrelated jobs
// and sessions never serialise against each other; only the outer map
// lookup takes the store-level lock.
package registry

import "sync"

type entry[T any] struct {
	mu  sync.Mutex
	val T
}

// Store is a keyed in-memory store with per-key mutual exclusion.
// Values are copied in and out; mutation goes through Update.
type Store[T any] struct {
	mu      sync.RWMutex
	entries map[string]*entry[T]
}

func New[T any]() *Store[T] {
	return &Store[T]{entries: make(map[string]*entry[T])}
}

// Put creates or replaces the value under key.
func (s *Store[T]) Put(key string, val T) {
	e := s.entry(key)
	e.mu.Lock()
	e.val = val
	e.mu.Unlock()
}

// Get returns a copy of the value under key.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	e.mu.Lock()
	v := e.val
	e.mu.Unlock()
	return v, true
}

// GetOrCreate returns the value under key, creating it from create if
// absent. Creation happens at most once per key.
func (s *Store[T]) GetOrCreate(key string, create func() T) T {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry[T]{val: create()}
		s.entries[key] = e
	}
	s.mu.Unlock()
	e.mu.Lock()
	v := e.val
	e.mu.Unlock()
	return v
}

// Update applies fn to the value under key while holding that key's
// lock, making the read-modify-write atomic. Returns false if the key
// does not exist.
func (s *Store[T]) Update(key string, fn func(*T)) bool {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	e.mu.Lock()
	fn(&e.val)
	e.mu.Unlock()
	return true
}

// Delete removes the key. Deleting an absent key is a no-op.
func (s *Store[T]) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Exists reports whether key is present.
func (s *Store[T]) Exists(key string) bool {
	s.mu.RLock()
	_, ok := s.entries[key]
	s.mu.RUnlock()
	return ok
}

// Len returns the number of stored entries.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	n := len(s.entries)
	s.mu.RUnlock()
	return n
}

func (s *Store[T]) entry(key string) *entry[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry[T]{}
		s.entries[key] = e
	}
	return e
}
