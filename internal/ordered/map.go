// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ordered provides an insertion-ordered string-keyed map.
//
// Rendering order of .vale.ini keys and Tengo map updates is part of the
// output contract, so every caller that needs a mapping goes through Map
// instead of a built-in map.
package ordered

import (
	"iter"
	"slices"
)

// Map is a string-keyed map that remembers the order keys were first set.
// The zero value is not ready for use; call New.
type Map[V any] struct {
	keys   []string
	values map[string]V
}

// New returns an empty map.
func New[V any]() *Map[V] {
	return &Map[V]{values: make(map[string]V)}
}

// Set stores value under key. A key that already exists keeps its position.
func (m *Map[V]) Set(key string, value V) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *Map[V]) Get(key string) (V, bool) {
	if m == nil {
		var zero V
		return zero, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map[V]) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key, preserving the order of the remaining keys.
func (m *Map[V]) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
}

// Len returns the number of keys.
func (m *Map[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *Map[V]) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// All iterates key/value pairs in insertion order.
func (m *Map[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Clone returns a shallow copy.
func (m *Map[V]) Clone() *Map[V] {
	out := New[V]()
	for k, v := range m.All() {
		out.Set(k, v)
	}
	return out
}

// FromPairs builds a map from pairs. Later duplicates
// overwrite earlier values in place.
func FromPairs[V any](pairs ...Pair[V]) *Map[V] {
	out := New[V]()
	for _, p := range pairs {
		out.Set(p.Key, p.Value)
	}
	return out
}

// Pair is a single key/value entry used by FromPairs.
type Pair[V any] struct {
	Key   string
	Value V
}

// P is shorthand for constructing a Pair.
func P[V any](key string, value V) Pair[V] {
	return Pair[V]{Key: key, Value: value}
}

// Equal reports whether a and b hold the same keys, in the same order, with
// equal values.
func Equal[V comparable](a, b *Map[V]) bool {
	return EqualFunc(a, b, func(x, y V) bool { return x == y })
}

// EqualFunc is Equal with a caller-supplied value comparison.
func EqualFunc[V any](a, b *Map[V], eq func(x, y V) bool) bool {
	if a.Len() != b.Len() {
		return false
	}
	ak, bk := a.Keys(), b.Keys()
	for i := range ak {
		if ak[i] != bk[i] {
			return false
		}
		av, _ := a.Get(ak[i])
		bv, _ := b.Get(bk[i])
		if !eq(av, bv) {
			return false
		}
	}
	return true
}
