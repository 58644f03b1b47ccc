// Package records provides load-all/replace-all persistence over named
// collections of JSON records.
package records

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/williskipsjr/SoulSync-Beta/internal/domain"
	"github.com/williskipsjr/SoulSync-Beta/internal/observability"
)

// Collection is a typed view over one stored JSON array.
// Writers are serialized per Collection value, so every collection must be
// opened once and shared.
type Collection[T any] struct {
	name    domain.CollectionName
	backend domain.CollectionBackend
	mu      sync.Mutex
}

func New[T any](backend domain.CollectionBackend, name domain.CollectionName) *Collection[T] {
	return &Collection[T]{
		name:    name,
		backend: backend,
	}
}

// Load returns every stored record in order. A missing, unreadable or corrupt
// collection yields an empty slice; the failure is logged, not returned.
func (c *Collection[T]) Load(ctx context.Context) []T {
	records, err := c.read(ctx)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("collection load failed, serving empty",
			"collection", c.name,
			"error", err)
		return []T{}
	}
	return records
}

// Save replaces the whole stored collection. Like Update, it refuses to
// overwrite a collection that cannot be read back.
func (c *Collection[T]) Save(ctx context.Context, records []T) error {
	return c.Update(ctx, func([]T) ([]T, error) {
		return records, nil
	})
}

// Update runs a read-modify-write cycle while holding the collection lock.
// fn receives the current records and returns the records to store; an error
// from fn aborts without writing. A corrupt collection is never overwritten.
func (c *Collection[T]) Update(ctx context.Context, fn func(records []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, err := c.read(ctx)
	if err != nil {
		return fmt.Errorf("collection %s: %w: %v", c.name, domain.ErrStorage, err)
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	return c.write(ctx, next)
}

func (c *Collection[T]) read(ctx context.Context) ([]T, error) {
	data, err := c.backend.ReadCollection(ctx, c.name)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(data) == 0 {
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func (c *Collection[T]) write(ctx context.Context, records []T) error {
	if records == nil {
		records = []T{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("collection %s: encode: %w", c.name, err)
	}

	if err := c.backend.WriteCollection(ctx, c.name, data); err != nil {
		observability.LoggerFromContext(ctx).Error("collection write failed",
			"collection", c.name,
			"error", err)
		return fmt.Errorf("collection %s: %w: %v", c.name, domain.ErrStorage, err)
	}
	return nil
}
