// Package pebble implements db.KVStore on top of cockroachdb/pebble.
package pebble

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"

	"github.com/eigerco/rvsim/pkg/db"
)

type options struct {
	path      string
	cacheSize int64
}

type Option func(*options)

// WithPath stores the database in dir instead of memory
func WithPath(dir string) Option {
	return func(o *options) { o.path = dir }
}

func WithCacheSize(bytes int64) Option {
	return func(o *options) { o.cacheSize = bytes }
}

type KVStore struct {
	db     *pebble.DB
	closed bool
	mu     sync.RWMutex
}

// NewKVStore opens a store, in memory unless WithPath is given
func NewKVStore(opts ...Option) (*KVStore, error) {
	o := options{cacheSize: 16 << 20}
	for _, opt := range opts {
		opt(&o)
	}

	cache := pebble.NewCache(o.cacheSize)
	defer cache.Unref()
	pebbleOpts := &pebble.Options{
		Cache:        cache,
		MemTableSize: 8 << 20,
	}
	path := o.path
	if path == "" {
		pebbleOpts.FS = vfs.NewMem()
		path = "snapshots"
	}

	pdb, err := pebble.Open(path, pebbleOpts)
	if err != nil {
		return nil, fmt.Errorf("open pebble store %q: %w", path, err)
	}
	return &KVStore{db: pdb}, nil
}

func (p *KVStore) Get(key []byte) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrClosed
	}

	value, closer, err := p.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	// the slice is only valid until closer is closed
	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

func (p *KVStore) Put(key, value []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	return p.db.Set(key, value, pebble.Sync)
}

// Delete removes key; deleting a missing key is not an error
func (p *KVStore) Delete(key []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	return p.db.Delete(key, pebble.Sync)
}

// Close is idempotent
func (p *KVStore) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.db.Close()
}

var _ db.KVStore = (*KVStore)(nil)
