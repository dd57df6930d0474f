package cart

import (
	"context"
	"errors"
	"sync"
)

// StorageKey is the durable key the ledger is written under. Sessions
// namespace it with SessionKey.
const StorageKey = "modernist_cart"

// ErrNotFound is returned by Storage.Get when no record exists
var ErrNotFound = errors.New("cart record not found")

// Storage is the durable key-value store backing a ledger
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
}

// SessionKey returns the storage key for a session's ledger
func SessionKey(sessionID string) string {
	return StorageKey + ":" + sessionID
}

// MemoryStorage is an in-process Storage
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (m *MemoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStorage) Set(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}
