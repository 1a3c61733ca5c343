package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"khosta-backend-go/internal/store"
)

// collection is a JSON array of T under one key. The mutex serialises
// read-modify-write cycles inside this process only.
type collection[T any] struct {
	mu      sync.Mutex
	backend Backend
	key     string
	id      func(T) string
}

func newCollection[T any](backend Backend, key string, id func(T) string) *collection[T] {
	return &collection[T]{backend: backend, key: key, id: id}
}

func (c *collection[T]) load(ctx context.Context) ([]T, error) {
	raw, err := c.backend.Load(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c.key, err)
	}
	items := []T{}
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.key, err)
	}
	return items, nil
}

func (c *collection[T]) save(ctx context.Context, items []T) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.backend.Save(ctx, c.key, raw); err != nil {
		return fmt.Errorf("save %s: %w", c.key, err)
	}
	return nil
}

func (c *collection[T]) all(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

func (c *collection[T]) find(ctx context.Context, match func(T) bool) (T, error) {
	var zero T
	items, err := c.all(ctx)
	if err != nil {
		return zero, err
	}
	for _, item := range items {
		if match(item) {
			return item, nil
		}
	}
	return zero, store.ErrNotFound
}

func (c *collection[T]) get(ctx context.Context, id string) (T, error) {
	return c.find(ctx, func(item T) bool { return c.id(item) == id })
}

// insert appends item unless its id exists or clash reports a conflict
// with an existing item.
func (c *collection[T]) insert(ctx context.Context, item T, clash func(existing T) bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	for _, existing := range items {
		if c.id(existing) == c.id(item) || (clash != nil && clash(existing)) {
			return store.ErrDuplicate
		}
	}
	return c.save(ctx, append(items, item))
}

func (c *collection[T]) replace(ctx context.Context, item T, clash func(existing T) bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	index := -1
	for i, existing := range items {
		if c.id(existing) == c.id(item) {
			index = i
			continue
		}
		if clash != nil && clash(existing) {
			return store.ErrDuplicate
		}
	}
	if index < 0 {
		return store.ErrNotFound
	}
	items[index] = item
	return c.save(ctx, items)
}

func (c *collection[T]) remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	kept := items[:0]
	for _, existing := range items {
		if c.id(existing) != id {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(items) {
		return store.ErrNotFound
	}
	return c.save(ctx, kept)
}
