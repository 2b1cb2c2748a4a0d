// Package db defines the key/value storage used to persist hart snapshots.
package db

// KVStore an ordered key/value store
type KVStore interface {
	Writer
	Get(key []byte) ([]byte, error)
	Delete(key []byte) error
	NewBatch() Batch
	// NewIterator walks the keys in [start, end); nil bounds are open
	NewIterator(start, end []byte) (Iterator, error)
	Close() error
}

type Writer interface {
	Put(key []byte, value []byte) error
}

// Batch groups writes that become visible together on Commit
type Batch interface {
	Writer
	Delete(key []byte) error
	Commit() error
	Close() error
}

// Iterator walks keys in ascending order. It starts before the first key,
// so Next must be called before Key or Value. Close it when done.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() ([]byte, error)
	Valid() bool
	Close() error
}
