package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
)

// PebbleKV is a pebble-backed KV store
type PebbleKV struct {
	db     *pebble.DB
	dbPath string
	closed bool
	mu     sync.RWMutex
}

// PebbleConfig configures a pebble store
type PebbleConfig struct {
	Path         string
	CacheSize    int64
	MemTableSize int
	MaxOpenFiles int
}

// DefaultPebbleConfig returns a config suited to catalog-sized workloads
func DefaultPebbleConfig(path string) *PebbleConfig {
	return &PebbleConfig{
		Path:         path,
		CacheSize:    64 * 1024 * 1024,
		MemTableSize: 16 * 1024 * 1024,
		MaxOpenFiles: 1000,
	}
}

// NewPebbleKV opens a pebble store at the configured path
func NewPebbleKV(config *PebbleConfig) (*PebbleKV, error) {
	cache := pebble.NewCache(config.CacheSize)
	defer cache.Unref()

	opts := &pebble.Options{
		Cache:        cache,
		MaxOpenFiles: config.MaxOpenFiles,
		MemTableSize: uint64(config.MemTableSize),
	}

	db, err := pebble.Open(config.Path, opts)
	if err != nil {
		return nil, fmt.Errorf("open pebble: %w", err)
	}

	return &PebbleKV{db: db, dbPath: config.Path}, nil
}

func (p *PebbleKV) Get(ctx context.Context, key []byte) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrClosed
	}

	value, closer, err := p.db.Get(key)
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("pebble get: %w", err)
	}
	defer closer.Close()

	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

func (p *PebbleKV) Set(ctx context.Context, key, value []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	if err := p.db.Set(key, value, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set: %w", err)
	}
	return nil
}

func (p *PebbleKV) Delete(ctx context.Context, key []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	if err := p.db.Delete(key, pebble.Sync); err != nil {
		return fmt.Errorf("pebble delete: %w", err)
	}
	return nil
}

func (p *PebbleKV) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return fmt.Errorf("pebble iterator: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())
		value := make([]byte, len(iter.Value()))
		copy(value, iter.Value())
		if !fn(key, value) {
			break
		}
	}
	return iter.Error()
}

func (p *PebbleKV) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if err := p.db.Close(); err != nil {
		return fmt.Errorf("pebble close: %w", err)
	}
	return nil
}

// prefixUpperBound returns the smallest key greater than every key with the
// given prefix, or nil if no such bound exists
func prefixUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
