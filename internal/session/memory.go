package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type MemoryStore[T any] struct {
	mu sync.RWMutex
	m  map[string]T
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{m: map[string]T{}}
}

func (s *MemoryStore[T]) Get(_ context.Context, id string) (T, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[id]
	return v, ok, nil
}

func (s *MemoryStore[T]) Put(_ context.Context, id string, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = v
	return nil
}

func (s *MemoryStore[T]) Update(_ context.Context, id string, fn func(T, bool) (T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.m[id]
	next, err := fn(cur, ok)
	if err != nil {
		return err
	}
	s.m[id] = next
	return nil
}

func (s *MemoryStore[T]) NewID() string {
	return uuid.NewString()
}
