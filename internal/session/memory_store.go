package session

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process Store used by tests and local development
// when Redis is not available.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string][]byte{}}
}

func memoryKey(kind, sessionID string) string {
	return fmt.Sprintf("%s_%s", kind, sessionID)
}

func (s *MemoryStore) Put(_ context.Context, kind, sessionID string, value []byte) error {
	if kind == "" || sessionID == "" {
		return fmt.Errorf("kind and session id are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]byte, len(value))
	copy(copied, value)
	s.records[memoryKey(kind, sessionID)] = copied
	return nil
}

func (s *MemoryStore) Get(_ context.Context, kind, sessionID string) ([]byte, bool, error) {
	if kind == "" || sessionID == "" {
		return nil, false, fmt.Errorf("kind and session id are required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.records[memoryKey(kind, sessionID)]
	if !ok {
		return nil, false, nil
	}
	copied := make([]byte, len(value))
	copy(copied, value)
	return copied, true, nil
}

func (s *MemoryStore) Delete(_ context.Context, kind, sessionID string) error {
	if kind == "" || sessionID == "" {
		return fmt.Errorf("kind and session id are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, memoryKey(kind, sessionID))
	return nil
}

func (s *MemoryStore) Purge(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, kind := range RecordKinds {
		delete(s.records, memoryKey(kind, sessionID))
	}
	return nil
}
