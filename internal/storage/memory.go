package storage

import (
	"context"
	"sync"
	"time"
)

type memoryObject struct {
	data        []byte
	contentType string
	storedAt    time.Time
}

// MemoryStore is a process-local BlobStore.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

func (m *MemoryStore) Put(_ context.Context, name, contentType string, data []byte) (Object, error) {
	hash := Hash(data)
	key := ContentKey(hash, name)

	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		obj = memoryObject{data: append([]byte(nil), data...), contentType: contentType, storedAt: time.Now().UTC()}
		m.objects[key] = obj
	}
	return Object{
		Key:         key,
		SHA256:      hash,
		Size:        int64(len(obj.data)),
		ContentType: obj.contentType,
		UploadedAt:  obj.storedAt,
	}, nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (*DownloadResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	data := append([]byte(nil), obj.data...)
	return &DownloadResult{
		Data:        data,
		FileHash:    Hash(data),
		FileSize:    int64(len(data)),
		ContentType: obj.contentType,
	}, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}
