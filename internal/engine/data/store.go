// Package data provides the per-geometry property store read by render passes.
package data

import "sort"

// Store maps property names to values of any type.
type Store struct {
	values map[string]any
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{values: make(map[string]any)}
}

// Set stores value under name, replacing any previous value.
func (s *Store) Set(name string, value any) {
	s.values[name] = value
}

// Unset removes name. Removing a missing name is a no-op.
func (s *Store) Unset(name string) {
	delete(s.values, name)
}

// Has reports whether name is set.
func (s *Store) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Len returns the number of properties.
func (s *Store) Len() int {
	return len(s.values)
}

// Names returns the property names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the value stored under name if it exists and has type T.
func Get[T any](s *Store, name string) (T, bool) {
	var zero T
	v, ok := s.values[name]
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
