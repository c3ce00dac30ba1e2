package session

import (
	"context"
	"sync"
	"time"
)

// Storage is the persistent key-value store behind every browser namespace.
// Implementations must apply SetAll and Delete atomically across all given keys and
// read GetAll from a single consistent snapshot.
type Storage interface {
	SetAll(ctx context.Context, namespace string, values map[string]string, ttl time.Duration) error
	GetAll(ctx context.Context, namespace string, keys ...string) (map[string]string, error)
	Delete(ctx context.Context, namespace string, keys ...string) error
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStorage is an in-process Storage used for development and tests.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]map[string]memoryEntry
	now  func() time.Time
}

// NewMemoryStorage constructs an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]map[string]memoryEntry), now: time.Now}
}

// SetAll writes every value under one lock.
func (m *MemoryStorage) SetAll(_ context.Context, namespace string, values map[string]string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.data[namespace]
	if !ok {
		bucket = make(map[string]memoryEntry, len(values))
		m.data[namespace] = bucket
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.now().Add(ttl)
	}
	for k, v := range values {
		bucket[k] = memoryEntry{value: v, expiresAt: expiresAt}
	}
	return nil
}

// GetAll returns the live values for keys; missing or expired keys are omitted.
func (m *MemoryStorage) GetAll(_ context.Context, namespace string, keys ...string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]string, len(keys))
	bucket, ok := m.data[namespace]
	if !ok {
		return result, nil
	}
	now := m.now()
	for _, k := range keys {
		entry, ok := bucket[k]
		if !ok {
			continue
		}
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			continue
		}
		result[k] = entry.value
	}
	return result, nil
}

// Delete removes keys from the namespace, dropping the namespace once empty.
func (m *MemoryStorage) Delete(_ context.Context, namespace string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bucket, ok := m.data[namespace]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(bucket, k)
	}
	if len(bucket) == 0 {
		delete(m.data, namespace)
	}
	return nil
}
