package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates the key does not exist
	ErrNotFound = errors.New("key not found")
	// ErrClosed indicates the store has been closed
	ErrClosed = errors.New("store is closed")
)

// KV is the key-value surface the catalog persists through
type KV interface {
	Get(ctx context.Context, key []byte) ([]byte, error)
	Set(ctx context.Context, key, value []byte) error
	Delete(ctx context.Context, key []byte) error
	// Scan calls fn for every key with the given prefix, in key order.
	// Returning false from fn stops the scan.
	Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error
	Close() error
}
