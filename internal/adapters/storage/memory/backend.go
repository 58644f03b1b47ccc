package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/williskipsjr/SoulSync-Beta/internal/domain"
)

// Backend is an in-memory domain.CollectionBackend.
// It is NOT persistent and is only suitable for tests / local mode.
type Backend struct {
	mu          sync.RWMutex
	collections map[domain.CollectionName][]byte

	// FailWrites makes every write fail, to exercise storage error paths.
	FailWrites bool
}

var ErrWriteFailed = errors.New("memory backend: write failed")

func NewBackend() *Backend {
	return &Backend{
		collections: make(map[domain.CollectionName][]byte),
	}
}

func (b *Backend) ReadCollection(_ context.Context, name domain.CollectionName) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, ok := b.collections[name]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (b *Backend) WriteCollection(_ context.Context, name domain.CollectionName, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.FailWrites {
		return ErrWriteFailed
	}

	b.collections[name] = append([]byte(nil), data...)
	return nil
}

func (b *Backend) Close() error {
	return nil
}
