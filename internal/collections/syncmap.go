package collections

import (
	"iter"
	"sync"
)

// SyncMap is a typed sync.Map. The zero value is ready to use.
type SyncMap[K comparable, V any] struct {
	m sync.Map
}

func (s *SyncMap[K, V]) Load(key K) (value V, ok bool) {
	val, ok := s.m.Load(key)
	if !ok {
		return value, ok
	}
	return val.(V), true
}

func (s *SyncMap[K, V]) Store(key K, value V) {
	s.m.Store(key, value)
}

func (s *SyncMap[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	actualAny, loaded := s.m.LoadOrStore(key, value)
	return actualAny.(V), loaded
}

func (s *SyncMap[K, V]) Delete(key K) {
	s.m.Delete(key)
}

// CompareAndDelete deletes the entry for key only if it is still old.
func (s *SyncMap[K, V]) CompareAndDelete(key K, old V) bool {
	return s.m.CompareAndDelete(key, old)
}

func (s *SyncMap[K, V]) Clear() {
	s.m.Clear()
}

func (s *SyncMap[K, V]) Range(f func(key K, value V) bool) {
	s.m.Range(func(key, value any) bool {
		return f(key.(K), value.(V))
	})
}

func (s *SyncMap[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		s.Range(func(key K, _ V) bool {
			return yield(key)
		})
	}
}

// Size walks the map; it is not constant time.
func (s *SyncMap[K, V]) Size() int {
	count := 0
	s.m.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}
