// Package store holds client-side state that views subscribe to.
package store

import "sync"

// Store is an observable value. Listeners run synchronously, in subscription
// order, after every change and outside the store's lock.
type Store[T any] struct {
	mu        sync.RWMutex
	value     T
	clone     func(T) T
	listeners map[int]func(T)
	order     []int
	nextID    int
}

// New returns a store holding initial. clone, when non-nil, copies values on
// the way in and out so callers never share internal state.
func New[T any](initial T, clone func(T) T) *Store[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	return &Store[T]{value: clone(initial), clone: clone, listeners: map[int]func(T){}}
}

func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clone(s.value)
}

func (s *Store[T]) Set(v T) {
	s.mu.Lock()
	s.value = s.clone(v)
	snapshot, listeners := s.snapshotLocked()
	s.mu.Unlock()
	notify(listeners, snapshot, s.clone)
}

// Update replaces the value with fn applied to a copy of the current one.
func (s *Store[T]) Update(fn func(T) T) {
	s.mu.Lock()
	s.value = s.clone(fn(s.clone(s.value)))
	snapshot, listeners := s.snapshotLocked()
	s.mu.Unlock()
	notify(listeners, snapshot, s.clone)
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.listeners, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (s *Store[T]) snapshotLocked() (T, []func(T)) {
	listeners := make([]func(T), 0, len(s.order))
	for _, id := range s.order {
		listeners = append(listeners, s.listeners[id])
	}
	return s.clone(s.value), listeners
}

func notify[T any](listeners []func(T), v T, clone func(T) T) {
	for _, fn := range listeners {
		fn(clone(v))
	}
}

func cloneSlice[E any](in []E) []E {
	if in == nil {
		return nil
	}
	return append(make([]E, 0, len(in)), in...)
}
