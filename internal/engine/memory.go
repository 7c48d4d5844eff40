package engine

import (
	"bytes"
	"sort"
	"sync"
)

// Memory is an in-memory Engine for tests and ephemeral runs. Nothing is
// persisted; Close discards the contents.
type Memory struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

var _ Engine = (*Memory)(nil)

// NewMemory returns an empty in-memory engine.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	v, ok := m.data[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *Memory) Put(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.data[string(key)] = v
	return nil
}

func (m *Memory) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.data, string(key))
	return nil
}

// NewIterator snapshots the current contents and iterates them in key order.
func (m *Memory) NewIterator() Iterator {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pairs := make([][2][]byte, 0, len(m.data))
	for k, v := range m.data {
		pairs = append(pairs, [2][]byte{[]byte(k), v})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return bytes.Compare(pairs[i][0], pairs[j][0]) < 0
	})
	return &memIterator{pairs: pairs, pos: -1}
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.closed = true
	m.data = nil
	return nil
}

// Len reports the number of stored keys. Test helper.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

type memIterator struct {
	pairs [][2][]byte
	pos   int
}

func (it *memIterator) Next() bool {
	if it.pos+1 >= len(it.pairs) {
		return false
	}
	it.pos++
	return true
}

func (it *memIterator) Key() []byte {
	if it.pos < 0 || it.pos >= len(it.pairs) {
		return nil
	}
	return it.pairs[it.pos][0]
}

func (it *memIterator) Value() []byte {
	if it.pos < 0 || it.pos >= len(it.pairs) {
		return nil
	}
	return it.pairs[it.pos][1]
}

func (it *memIterator) Release() { it.pairs = nil }

func (it *memIterator) Error() error { return nil }
