package engine

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kroma-network/zkvm-common/internal/metrics"
)

func TestInstrumented_PassesThrough(t *testing.T) {
	eng := NewInstrumented(NewMemory())
	defer eng.Close()

	if err := eng.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	v, err := eng.Get([]byte("k"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(v) != "v" {
		t.Errorf("Get = %q, want %q", v, "v")
	}
	if err := eng.Delete([]byte("k")); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	it := eng.NewIterator()
	for it.Next() {
		t.Errorf("unexpected key %q after delete", it.Key())
	}
	it.Release()
}

func TestInstrumented_CountsErrors(t *testing.T) {
	mem := NewMemory()
	eng := NewInstrumented(mem)

	// A miss is not an engine error.
	missErrs := testutil.ToFloat64(metrics.EngineOperationErrors.WithLabelValues("get"))
	if _, err := eng.Get([]byte("missing")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) = %v, want ErrNotFound", err)
	}
	if got := testutil.ToFloat64(metrics.EngineOperationErrors.WithLabelValues("get")); got != missErrs {
		t.Errorf("miss counted as error: %v -> %v", missErrs, got)
	}

	// Operating on a closed engine is.
	mem.Close()
	before := testutil.ToFloat64(metrics.EngineOperationErrors.WithLabelValues("put"))
	if err := eng.Put([]byte("k"), []byte("v")); !errors.Is(err, ErrClosed) {
		t.Fatalf("Put after close = %v, want ErrClosed", err)
	}
	if got := testutil.ToFloat64(metrics.EngineOperationErrors.WithLabelValues("put")); got != before+1 {
		t.Errorf("engine_operation_errors_total{put} = %v, want %v", got, before+1)
	}
}
