// Package query provides read-only lookup, filter and substring search over
// in-memory record collections. Every operation is a linear scan that
// preserves the order of the underlying slice.
package query

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Predicate reports whether a record matches
type Predicate[T any] func(T) bool

// Field extracts the searchable strings of a record
type Field[T any] func(T) []string

// Text makes a Field from a single string accessor
func Text[T any](get func(T) string) Field[T] {
	return func(record T) []string {
		return []string{get(record)}
	}
}

// List makes a Field from a string slice accessor
func List[T any](get func(T) []string) Field[T] {
	return Field[T](get)
}

// Collection is an immutable, ordered set of records addressable by id.
// For pointer records only the slice is owned; the records are shared.
type Collection[T any] struct {
	items []T
	id    func(T) string
}

// NewCollection creates a new collection over a copy of items
func NewCollection[T any](items []T, id func(T) string) *Collection[T] {
	owned := make([]T, len(items))
	copy(owned, items)
	return &Collection[T]{items: owned, id: id}
}

// Find returns the first record whose id equals id
func (c *Collection[T]) Find(id string) (T, bool) {
	for _, item := range c.items {
		if c.id(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Filter returns every record matching pred. The result is never nil.
func (c *Collection[T]) Filter(pred Predicate[T]) []T {
	out := make([]T, 0)
	for _, item := range c.items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// Search returns every record where q is a case-insensitive substring of
// at least one value produced by fields. An empty q matches everything.
func (c *Collection[T]) Search(q string, fields ...Field[T]) []T {
	if q == "" {
		return c.All()
	}
	needle := Fold(q)
	return c.Filter(func(item T) bool {
		for _, field := range fields {
			for _, value := range field(item) {
				if strings.Contains(Fold(value), needle) {
					return true
				}
			}
		}
		return false
	})
}

// All returns every record in store order
func (c *Collection[T]) All() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of records
func (c *Collection[T]) Len() int {
	return len(c.items)
}

// Fold lowercases s for case-insensitive comparison. It is a plain
// lowercase mapping, not full case folding: "ß" stays "ß".
// A Caser keeps state, so each call gets its own.
func Fold(s string) string {
	return cases.Lower(language.Und).String(s)
}

// ContainsFold reports whether sub is a case-insensitive substring of s
func ContainsFold(s, sub string) bool {
	return strings.Contains(Fold(s), Fold(sub))
}

// Equals matches records whose accessor value equals want
func Equals[T any, V comparable](get func(T) V, want V) Predicate[T] {
	return func(record T) bool {
		return get(record) == want
	}
}

// AnyContains matches records where any list element contains sub, ignoring case.
// "card" matches both "cardiology" and "pericardium".
func AnyContains[T any](get func(T) []string, sub string) Predicate[T] {
	needle := Fold(sub)
	return func(record T) bool {
		for _, value := range get(record) {
			if strings.Contains(Fold(value), needle) {
				return true
			}
		}
		return false
	}
}

// AnyEqualFold matches records where any list element equals want, ignoring case
func AnyEqualFold[T any](get func(T) []string, want string) Predicate[T] {
	needle := Fold(want)
	return func(record T) bool {
		for _, value := range get(record) {
			if Fold(value) == needle {
				return true
			}
		}
		return false
	}
}

// And matches records satisfying every predicate
func And[T any](preds ...Predicate[T]) Predicate[T] {
	return func(record T) bool {
		for _, pred := range preds {
			if !pred(record) {
				return false
			}
		}
		return true
	}
}
