package kv

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"procuration/pkg/platform/sentinel"
)

// MemoryStore implements Store in process memory for tests and development.
type MemoryStore struct {
	mu      sync.RWMutex
	strings map[string]string
	lists   map[string][]string
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		strings: make(map[string]string),
		lists:   make(map[string][]string),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.strings[key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("key %q: %w", key, sentinel.ErrNotFound)
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strings[key] = value
	return nil
}

func (s *MemoryStore) SetIfAbsent(_ context.Context, key, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.strings[key]; ok {
		return false, nil
	}
	s.strings[key] = value
	return true, nil
}

func (s *MemoryStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.intValue(key)
	if err != nil {
		return 0, err
	}
	current++
	s.strings[key] = strconv.FormatInt(current, 10)
	return current, nil
}

func (s *MemoryStore) Or(_ context.Context, key string, mask int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.intValue(key)
	if err != nil {
		return 0, err
	}
	current |= mask
	s.strings[key] = strconv.FormatInt(current, 10)
	return current, nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.strings, key)
		delete(s.lists, key)
	}
	return nil
}

func (s *MemoryStore) ListAppend(_ context.Context, key, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.lists[key], value) {
		return false, nil
	}
	// Prepend to match LPUSH ordering of the Redis store.
	s.lists[key] = append([]string{value}, s.lists[key]...)
	return true, nil
}

func (s *MemoryStore) List(_ context.Context, key string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lists[key]), nil
}

// intValue parses the integer at key. Must be called while holding s.mu.
func (s *MemoryStore) intValue(key string) (int64, error) {
	raw, ok := s.strings[key]
	if !ok {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("key %q holds %q: %w", key, raw, sentinel.ErrInvalidState)
	}
	return v, nil
}
