package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MemoryStorage keeps objects in process memory. It backs local development
// (STORAGE_DRIVER=memory) and the test suites.
type MemoryStorage struct {
	baseURL    string
	rootFolder string

	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStorage(baseURL, rootFolder string) *MemoryStorage {
	return &MemoryStorage{
		baseURL:    strings.TrimRight(baseURL, "/"),
		rootFolder: rootFolder,
		objects:    make(map[string][]byte),
	}
}

func (m *MemoryStorage) Upload(_ context.Context, folder string, data []byte, contentType string) (*Asset, error) {
	key := objectKey(m.rootFolder, folder, contentType)

	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	m.objects[key] = buf
	m.mu.Unlock()

	return &Asset{
		PublicID:  key,
		SecureURL: fmt.Sprintf("%s/%s", m.baseURL, key),
		Folder:    folder,
	}, nil
}

func (m *MemoryStorage) Download(_ context.Context, publicID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[publicID]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return data, nil
}

func (m *MemoryStorage) Delete(_ context.Context, publicID string) error {
	m.mu.Lock()
	delete(m.objects, publicID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) PresignGet(_ context.Context, publicID string, ttl time.Duration) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[publicID]
	m.mu.RUnlock()
	if !ok {
		return "", ErrObjectNotFound
	}
	return fmt.Sprintf("%s/%s?expires=%d", m.baseURL, publicID, int64(ttl.Seconds())), nil
}

// Has reports whether the key is stored
func (m *MemoryStorage) Has(publicID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[publicID]
	return ok
}

// Len returns the number of stored objects
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
