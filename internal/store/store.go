// Package store provides the record collections the dashboard reads and mutates.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates that no record carries the requested id.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate indicates an insert with an id that is already taken.
	ErrDuplicate = errors.New("store: duplicate id")
)

// Record is anything addressable by a string identifier.
type Record interface {
	GetID() string
}

// Store is the capability handed to services in place of global collections.
type Store[T Record] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Insert(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, item T) (T, error)
	Remove(ctx context.Context, id string) error
}
