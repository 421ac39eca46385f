package collections

import (
	"iter"
	"maps"
)

type Set[T comparable] struct {
	M map[T]struct{}
}

func NewSetWithSizeHint[T comparable](hint int) *Set[T] {
	return &Set[T]{M: make(map[T]struct{}, hint)}
}

func (s *Set[T]) Has(key T) bool {
	if s == nil {
		return false
	}
	_, ok := s.M[key]
	return ok
}

func (s *Set[T]) Add(key T) {
	if s.M == nil {
		s.M = make(map[T]struct{})
	}
	s.M[key] = struct{}{}
}

func (s *Set[T]) Delete(key T) {
	delete(s.M, key)
}

func (s *Set[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.M)
}

func (s *Set[T]) Keys() iter.Seq[T] {
	if s == nil {
		return func(func(T) bool) {}
	}
	return maps.Keys(s.M)
}
