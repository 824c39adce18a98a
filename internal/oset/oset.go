// Package oset provides ordered (insertion-order) sets and maps.
//
// spec.md §9 calls out that first-reference graphs, metaname collision
// sets, and per-rule Alt lists all require deterministic iteration order,
// because seed/grower classification and SCC chain layout depend on
// positional identity. The teacher's own internal/util.SVSet (see
// internal/ictiobus/grammar/item.go's use of util.SVSet) is map-backed and
// only offers an alphabetically-sorted view via StringOrdered, which loses
// insertion order. The rest of the retrieval pack shows the idiomatic fix:
// npillmayer-gorgo/lr/tables.go reaches for github.com/emirpasic/gods
// (there, treeset/arraylist) to get a real ordered container instead of
// hand-rolling one over a plain map. This package keeps the teacher's
// Set-like method names (Add/Has/Len/Elements) but backs them with gods'
// linkedhashset/linkedhashmap, which preserve insertion order.
package oset

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/emirpasic/gods/sets/linkedhashset"
)

// Set is an insertion-ordered set of comparable elements.
type Set[E comparable] struct {
	s *linkedhashset.Set
}

// NewSet returns an empty ordered set.
func NewSet[E comparable]() *Set[E] {
	return &Set[E]{s: linkedhashset.New()}
}

// Add inserts element into the set. No-op if already present.
func (s *Set[E]) Add(element E) {
	s.s.Add(element)
}

// Has reports whether element is in the set.
func (s *Set[E]) Has(element E) bool {
	return s.s.Contains(element)
}

// Remove deletes element from the set, if present.
func (s *Set[E]) Remove(element E) {
	s.s.Remove(element)
}

// Len returns the number of elements in the set.
func (s *Set[E]) Len() int {
	return s.s.Size()
}

// Empty reports whether the set has no elements.
func (s *Set[E]) Empty() bool {
	return s.s.Empty()
}

// Elements returns the set's elements in the order they were first added.
func (s *Set[E]) Elements() []E {
	raw := s.s.Values()
	out := make([]E, len(raw))
	for i, v := range raw {
		out[i] = v.(E)
	}
	return out
}

// Map is an insertion-ordered map from comparable keys to values.
type Map[K comparable, V any] struct {
	m *linkedhashmap.Map
}

// NewMap returns an empty ordered map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{m: linkedhashmap.New()}
}

// Set assigns key to val, inserting key at the end of iteration order the
// first time it is seen; re-setting an existing key does not move it.
func (m *Map[K, V]) Set(key K, val V) {
	m.m.Put(key, val)
}

// Get retrieves the value for key, and whether it was present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	v, ok := m.m.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	return v.(V), true
}

// Has reports whether key is present in the map.
func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.m.Get(key)
	return ok
}

// Keys returns the map's keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	raw := m.m.Keys()
	out := make([]K, len(raw))
	for i, k := range raw {
		out[i] = k.(K)
	}
	return out
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int {
	return m.m.Size()
}
