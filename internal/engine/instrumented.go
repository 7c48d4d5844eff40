package engine

import (
	"time"

	"github.com/kroma-network/zkvm-common/internal/metrics"
)

// Instrumented decorates an Engine with per-operation latency and error
// metrics. ErrNotFound is a normal outcome and is not counted as an error.
type Instrumented struct {
	inner Engine
}

var _ Engine = (*Instrumented)(nil)

func NewInstrumented(inner Engine) *Instrumented {
	return &Instrumented{inner: inner}
}

func (i *Instrumented) Get(key []byte) ([]byte, error) {
	start := time.Now()
	v, err := i.inner.Get(key)
	observe("get", start, err)
	return v, err
}

func (i *Instrumented) Put(key, value []byte) error {
	start := time.Now()
	err := i.inner.Put(key, value)
	observe("put", start, err)
	return err
}

func (i *Instrumented) Delete(key []byte) error {
	start := time.Now()
	err := i.inner.Delete(key)
	observe("delete", start, err)
	return err
}

// NewIterator is not timed. Scans are long-lived and their cost shows up
// in the compaction duration histogram instead.
func (i *Instrumented) NewIterator() Iterator {
	return i.inner.NewIterator()
}

func (i *Instrumented) Close() error {
	return i.inner.Close()
}

func observe(op string, start time.Time, err error) {
	metrics.EngineOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil && err != ErrNotFound {
		metrics.EngineOperationErrors.WithLabelValues(op).Inc()
	}
}
