// Package repository gives each persisted collection a typed list/get/insert/
// update/delete API over a database.Service. Every mutation loads the whole
// list, changes it in memory and saves it back under a per-collection lock, so
// readers never see a partial write.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"leaddesk/internal/database"
	"leaddesk/internal/models"
)

// Repository is the capability a service needs over one collection.
type Repository[T models.Entity] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Insert(ctx context.Context, item T) error
	InsertIf(ctx context.Context, item T, check func(existing T) error) error
	Update(ctx context.Context, id string, fn func(*T) error) (T, error)
	UpdateIf(ctx context.Context, id string, check func(other T) error, fn func(*T) error) (T, error)
	Delete(ctx context.Context, id string) error
	Replace(ctx context.Context, items []T) error
}

type normalizer interface{ Normalize() }

// Collection is the Repository backed by a single JSON array stored under key.
type Collection[T models.Entity] struct {
	store database.Service
	key   string
	kind  string
	mu    sync.Mutex
}

var _ Repository[models.Lead] = (*Collection[models.Lead])(nil)

// New returns the collection stored under key. kind names the record type in
// not-found errors.
func New[T models.Entity](store database.Service, key, kind string) *Collection[T] {
	return &Collection[T]{store: store, key: key, kind: kind}
}

// Key returns the storage key.
func (c *Collection[T]) Key() string { return c.key }

func (c *Collection[T]) load(ctx context.Context) ([]T, error) {
	raw, err := c.store.Load(ctx, c.key)
	if err != nil {
		return nil, err
	}
	items := []T{}
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.key, err)
	}
	if items == nil {
		items = []T{}
	}
	for i := range items {
		if n, ok := any(&items[i]).(normalizer); ok {
			n.Normalize()
		}
	}
	return items, nil
}

func (c *Collection[T]) save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	return c.store.Save(ctx, c.key, raw)
}

// List returns the collection in stored order. A missing key is an empty
// collection.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// Get returns the record with id or an error wrapping models.ErrNotFound.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	items, err := c.List(ctx)
	if err != nil {
		return zero, err
	}
	for _, it := range items {
		if it.GetID() == id {
			return it, nil
		}
	}
	return zero, models.NotFound(c.kind, id)
}

// Insert appends item.
func (c *Collection[T]) Insert(ctx context.Context, item T) error {
	return c.InsertIf(ctx, item, nil)
}

// InsertIf appends item once check has accepted every stored record. The
// check and the write happen under the same lock.
func (c *Collection[T]) InsertIf(ctx context.Context, item T, check func(existing T) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.GetID() == item.GetID() {
			return fmt.Errorf("%s %q already exists", c.kind, item.GetID())
		}
		if check != nil {
			if err := check(it); err != nil {
				return err
			}
		}
	}
	return c.save(ctx, append(items, item))
}

// Update applies fn to the record with id and persists the result. If fn
// returns an error nothing is written.
func (c *Collection[T]) Update(ctx context.Context, id string, fn func(*T) error) (T, error) {
	return c.UpdateIf(ctx, id, nil, fn)
}

// UpdateIf is Update with check run first against every other stored record.
func (c *Collection[T]) UpdateIf(ctx context.Context, id string, check func(other T) error, fn func(*T) error) (T, error) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return zero, err
	}
	idx := -1
	for i := range items {
		if items[i].GetID() == id {
			idx = i
			continue
		}
		if check != nil {
			if err := check(items[i]); err != nil {
				return zero, err
			}
		}
	}
	if idx < 0 {
		return zero, models.NotFound(c.kind, id)
	}
	updated := items[idx]
	if err := fn(&updated); err != nil {
		return zero, err
	}
	items[idx] = updated
	if err := c.save(ctx, items); err != nil {
		return zero, err
	}
	return updated, nil
}

// Delete removes the record with id. References held by other collections are
// left as they are.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].GetID() == id {
			return c.save(ctx, append(items[:i], items[i+1:]...))
		}
	}
	return models.NotFound(c.kind, id)
}

// Replace overwrites the whole collection.
func (c *Collection[T]) Replace(ctx context.Context, items []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(ctx, items)
}
