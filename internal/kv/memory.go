package kv

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var _ Store = (*MemoryStore)(nil)

var ErrStoreFull = errors.New("memory store full")

// MemoryStore keeps the documents in process memory. Nothing survives a
// restart, so it is meant for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string][]byte
	size     int
	maxBytes int
}

// NewMemoryStore creates the in-process store. maxBytes caps the sum of all
// stored values; zero or less means no cap.
func NewMemoryStore(maxBytes int) *MemoryStore {
	return &MemoryStore{
		data:     map[string][]byte{},
		maxBytes: maxBytes,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), val...), nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	size := s.size - len(s.data[key]) + len(value)
	if s.maxBytes > 0 && size > s.maxBytes {
		return fmt.Errorf("memory set %s: %d bytes over the %d byte cap: %w", key, size, s.maxBytes, ErrStoreFull)
	}

	s.data[key] = append([]byte(nil), value...)
	s.size = size
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.size -= len(s.data[key])
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = map[string][]byte{}
	s.size = 0
	return nil
}
