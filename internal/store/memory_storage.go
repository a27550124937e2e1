package store

import (
	"context"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

type memoryEntry struct {
	data      map[string]any
	expiresAt time.Time
}

// MemoryStorage is a process-local Storage used when no redis instance is
// configured. Values are stored as field maps like the redis hash backend.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStorage) Get(ctx context.Context, key string, val any) error {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || (!entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt)) {
		return ErrNotFound
	}
	return mapstructure.Decode(entry.data, val)
}

func (s *MemoryStorage) Set(ctx context.Context, key string, val any, expiresIn time.Duration) error {
	data := make(map[string]any)
	if err := mapstructure.Decode(val, &data); err != nil {
		return err
	}
	entry := memoryEntry{data: data}
	if expiresIn > 0 {
		entry.expiresAt = time.Now().Add(expiresIn)
	}
	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; !ok {
		return ErrNotFound
	}
	delete(s.entries, key)
	return nil
}
