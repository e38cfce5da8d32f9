package session

import (
	"context"
	"sync"
)

type memoryStorage struct {
	mu    sync.RWMutex
	items map[string]map[string]string
}

// NewMemoryStorage constructs an in-process storage for development and tests.
// Items never expire by themselves; a session is dropped through Evict when the
// registry sweeps it.
func NewMemoryStorage() Storage {
	return &memoryStorage{items: make(map[string]map[string]string)}
}

func (s *memoryStorage) GetItem(_ context.Context, sessionID, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.items[sessionID][key]
	return value, ok, nil
}

func (s *memoryStorage) SetItem(_ context.Context, sessionID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.items[sessionID]
	if !ok {
		bucket = make(map[string]string)
		s.items[sessionID] = bucket
	}
	bucket[key] = value
	return nil
}

func (s *memoryStorage) RemoveItem(_ context.Context, sessionID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.items[sessionID]
	if !ok {
		return nil
	}
	delete(bucket, key)
	if len(bucket) == 0 {
		delete(s.items, sessionID)
	}
	return nil
}

func (s *memoryStorage) Touch(context.Context, string, ...string) error {
	return nil
}

// Evict drops every item of the session.
func (s *memoryStorage) Evict(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, sessionID)
}
