package filedb

import (
	"errors"
	"fmt"
)

var (
	// ErrCorruptEnvelope is returned when a stored blob is shorter than the
	// timestamp prefix.
	ErrCorruptEnvelope = errors.New("value blob shorter than timestamp prefix")

	// ErrCorruptCounter is returned at open when the size counter entry does
	// not hold an 8-byte value.
	ErrCorruptCounter = errors.New("size counter entry is corrupt")

	// ErrReservedKey is returned when a caller uses the reserved counter key
	// as an application key.
	ErrReservedKey = errors.New("key collides with the reserved counter key")
)

// StorageError wraps an engine I/O failure. Write-path calls surface it;
// read-path calls log it and report a miss instead.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// SerializationError wraps a payload encoding failure during Set.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize payload: %v", e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// DeserializationError wraps a payload decoding failure during reads.
type DeserializationError struct {
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("deserialize payload: %v", e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }
