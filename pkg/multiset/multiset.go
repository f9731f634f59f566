// Package multiset provides a generic bag that tracks per-element occurrence counts.
//
// Multisets are the content model behind declaration similarity: every
// declaration's token sequence is folded into a Multiset and compared with
// intersection and union sizes that respect multiplicities.
package multiset

import (
	"cmp"
	"slices"
)

// Multiset is a collection that counts occurrences of each element.
// The zero value is not usable; create instances with New or Of.
type Multiset[T cmp.Ordered] struct {
	counts map[T]int
	size   int
}

// New creates an empty multiset.
func New[T cmp.Ordered]() *Multiset[T] {
	return &Multiset[T]{counts: make(map[T]int)}
}

// Of creates a multiset holding every element of items, once per occurrence.
func Of[T cmp.Ordered](items ...T) *Multiset[T] {
	m := New[T]()

	for _, item := range items {
		m.Add(item, 1)
	}

	return m
}

// Add inserts n occurrences of elem. Non-positive n is ignored.
func (m *Multiset[T]) Add(elem T, n int) {
	if n <= 0 {
		return
	}

	m.counts[elem] += n
	m.size += n
}

// Count returns the number of occurrences of elem.
func (m *Multiset[T]) Count(elem T) int {
	return m.counts[elem]
}

// Len returns the total number of occurrences, counting duplicates.
func (m *Multiset[T]) Len() int {
	return m.size
}

// Distinct returns the number of distinct elements.
func (m *Multiset[T]) Distinct() int {
	return len(m.counts)
}

// IsEmpty reports whether the multiset holds no occurrences.
func (m *Multiset[T]) IsEmpty() bool {
	return m.size == 0
}

// Keys returns the distinct elements in ascending order.
func (m *Multiset[T]) Keys() []T {
	keys := make([]T, 0, len(m.counts))
	for k := range m.counts {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}

// Clone returns an independent copy.
func (m *Multiset[T]) Clone() *Multiset[T] {
	out := &Multiset[T]{counts: make(map[T]int, len(m.counts)), size: m.size}
	for k, v := range m.counts {
		out.counts[k] = v
	}

	return out
}

// Minus returns m with the occurrences shared with other subtracted.
// Counts never go below zero.
func (m *Multiset[T]) Minus(other *Multiset[T]) *Multiset[T] {
	out := New[T]()

	for k, v := range m.counts {
		if rest := v - other.Count(k); rest > 0 {
			out.Add(k, rest)
		}
	}

	return out
}

// Plus returns the sum of both multisets: counts are added per element.
func (m *Multiset[T]) Plus(other *Multiset[T]) *Multiset[T] {
	out := m.Clone()

	for k, v := range other.counts {
		out.Add(k, v)
	}

	return out
}

// MinusElements returns m without any occurrence of the given elements.
func (m *Multiset[T]) MinusElements(elems ...T) *Multiset[T] {
	out := m.Clone()

	for _, e := range elems {
		out.size -= out.counts[e]
		delete(out.counts, e)
	}

	return out
}

// Intersect returns the per-element minimum of both multisets.
func (m *Multiset[T]) Intersect(other *Multiset[T]) *Multiset[T] {
	small, large := m, other
	if len(large.counts) < len(small.counts) {
		small, large = large, small
	}

	out := New[T]()

	for k, v := range small.counts {
		out.Add(k, min(v, large.Count(k)))
	}

	return out
}

// Union returns the per-element maximum of both multisets.
func (m *Multiset[T]) Union(other *Multiset[T]) *Multiset[T] {
	out := m.Clone()

	for k, v := range other.counts {
		if v > out.counts[k] {
			out.size += v - out.counts[k]
			out.counts[k] = v
		}
	}

	return out
}

// IntersectionSize returns |m ∩ other| without allocating the intersection.
func (m *Multiset[T]) IntersectionSize(other *Multiset[T]) int {
	small, large := m, other
	if len(large.counts) < len(small.counts) {
		small, large = large, small
	}

	total := 0
	for k, v := range small.counts {
		total += min(v, large.Count(k))
	}

	return total
}

// UnionSize returns |m ∪ other| without allocating the union.
func (m *Multiset[T]) UnionSize(other *Multiset[T]) int {
	return m.size + other.size - m.IntersectionSize(other)
}

// Equal reports whether both multisets hold the same counts.
func (m *Multiset[T]) Equal(other *Multiset[T]) bool {
	if m.size != other.size || len(m.counts) != len(other.counts) {
		return false
	}

	for k, v := range m.counts {
		if other.counts[k] != v {
			return false
		}
	}

	return true
}
