package store

import (
	"context"
	"slices"
	"sync"
)

// Memory keeps records in insertion order behind a mutex.
type Memory[T Record] struct {
	mu    sync.RWMutex
	items []T
}

// NewMemory returns a store preloaded with seed, which must not contain duplicate ids.
func NewMemory[T Record](seed ...T) *Memory[T] {
	return &Memory[T]{items: slices.Clone(seed)}
}

// List returns a snapshot of every record.
func (m *Memory[T]) List(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.items), nil
}

// Get fetches a record by id.
func (m *Memory[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := m.indexOf(id)
	if idx < 0 {
		return zero, ErrNotFound
	}
	return m.items[idx], nil
}

// Insert appends item.
func (m *Memory[T]) Insert(ctx context.Context, item T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(item.GetID()) >= 0 {
		return zero, ErrDuplicate
	}
	m.items = append(m.items, item)
	return item, nil
}

// Update replaces the record sharing item's id, keeping its position.
func (m *Memory[T]) Update(ctx context.Context, item T) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.indexOf(item.GetID())
	if idx < 0 {
		return zero, ErrNotFound
	}
	m.items[idx] = item
	return item, nil
}

// Remove deletes a record by id.
func (m *Memory[T]) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	m.items = slices.Delete(m.items, idx, idx+1)
	return nil
}

// Len reports the number of stored records.
func (m *Memory[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *Memory[T]) indexOf(id string) int {
	return slices.IndexFunc(m.items, func(item T) bool { return item.GetID() == id })
}

var _ Store[Record] = (*Memory[Record])(nil)
