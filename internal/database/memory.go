package database

import (
	"context"
	"sync"
)

type memoryService struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns a process-local Service. Used by tests and by
// STORE_DRIVER=memory.
func NewMemory() Service {
	return &memoryService{data: make(map[string][]byte)}
}

func (s *memoryService) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), b...), nil
}

func (s *memoryService) Save(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), payload...)
	return nil
}

func (s *memoryService) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *memoryService) Health() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]string{
		"status":  "up",
		"driver":  DriverMemory,
		"message": "It's healthy",
	}
}

func (s *memoryService) Close() error { return nil }
