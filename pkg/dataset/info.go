package dataset

import (
	"iter"
	"reflect"
)

// Info is an immutable, ordered registry of group descriptors. Each
// descriptor is named after its Go type, so a descriptor of type Yearly is
// found under "Yearly".
type Info[T any] struct {
	descriptors []T
	groups      []string
}

// NewInfo registers descriptors in the given order and derives their names.
func NewInfo[T any](descriptors ...T) Info[T] {
	info := Info[T]{
		descriptors: append([]T(nil), descriptors...),
		groups:      make([]string, len(descriptors)),
	}
	for i, d := range descriptors {
		info.groups[i] = typeName(d)
	}
	return info
}

// typeName returns the name of v's dynamic type, looking through pointers.
func typeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

// Groups returns the group names in registration order.
func (i Info[T]) Groups() []string {
	return append([]string(nil), i.groups...)
}

// Descriptors returns the descriptors in registration order.
func (i Info[T]) Descriptors() []T {
	return append([]T(nil), i.descriptors...)
}

// Len returns the number of registered groups.
func (i Info[T]) Len() int {
	return len(i.groups)
}

// GetGroup returns the descriptor registered under name. The match is exact
// and case-sensitive; a miss returns an error wrapping ErrUnknownGroup.
func (i Info[T]) GetGroup(name string) (T, error) {
	for idx, g := range i.groups {
		if g == name {
			return i.descriptors[idx], nil
		}
	}
	var zero T
	return zero, &GroupError{Group: name, Known: i.Groups()}
}

// Get is GetGroup.
func (i Info[T]) Get(name string) (T, error) {
	return i.GetGroup(name)
}

// All iterates over (name, descriptor) pairs in registration order.
// The sequence can be ranged over any number of times.
func (i Info[T]) All() iter.Seq2[string, T] {
	return func(yield func(string, T) bool) {
		for idx, g := range i.groups {
			if !yield(g, i.descriptors[idx]) {
				return
			}
		}
	}
}
