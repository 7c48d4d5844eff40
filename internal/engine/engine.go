// Package engine abstracts the embedded ordered key-value store that backs the
// witness cache. The production implementation wraps goleveldb; an in-memory
// implementation exists for tests and ephemeral runs.
package engine

import "errors"

var (
	// ErrNotFound is returned by Get when a key doesn't exist.
	ErrNotFound = errors.New("key not found")

	// ErrClosed is returned when operating on an engine after Close.
	ErrClosed = errors.New("engine is closed")
)

// Engine is the minimal contract the cache needs from a storage backend:
// point reads and writes plus a full scan. Implementations must persist
// writes durably before returning (or document that they don't, like Memory).
type Engine interface {
	// Get returns the value stored under key, or ErrNotFound.
	// The returned slice must not be retained past the next call.
	Get(key []byte) ([]byte, error)

	// Put stores value under key, overwriting any previous value.
	Put(key, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key []byte) error

	// NewIterator returns an iterator positioned before the first key. The
	// iteration order is the engine's key order and covers a consistent
	// snapshot, so mutating the engine mid-scan does not affect the scan.
	NewIterator() Iterator

	// Close releases the engine. Further calls return ErrClosed.
	Close() error
}

// Iterator walks every live key-value pair exactly once.
//
// Key and Value return buffers owned by the iterator; callers that need the
// bytes past the next Next call must copy them. Release must be called when
// done, and Error checked afterwards.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}
