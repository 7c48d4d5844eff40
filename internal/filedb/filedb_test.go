package filedb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kroma-network/zkvm-common/internal/engine"
)

func newMemDB(t *testing.T, capacity, ttlSecs uint64) *DB {
	t.Helper()
	db, err := New(engine.NewMemory(), Config{Capacity: capacity, ExpiringSecs: ttlSecs})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func key(i byte) []byte { return []byte{0, 0, 0, i} }

func TestSetGetRoundTrip(t *testing.T) {
	db := newMemDB(t, 10, 10)
	value := [][]int{{1, 2, 3}}

	if err := db.Set(key(1), value); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var got [][]int
	if !db.Get(key(1), &got) {
		t.Fatal("Get(key1) = false, want true")
	}
	if diff := cmp.Diff(value, got); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}

	// An unset key is a miss.
	if db.Get(key(2), &got) {
		t.Error("Get(key2) = true, want false")
	}
}

func TestCompaction(t *testing.T) {
	if testing.Short() {
		t.Skip("compaction fixture sleeps for 3s")
	}

	db, err := Open(Config{
		Path:         filepath.Join(t.TempDir(), "store"),
		Capacity:     5,
		ExpiringSecs: 1,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	value := [][]int{{1, 2, 3}}
	if db.Len() != 0 {
		t.Fatalf("initial Len = %d, want 0", db.Len())
	}

	// Fill below capacity; nothing should be compacted.
	for i := byte(1); i <= 3; i++ {
		if err := db.Set(key(i), value); err != nil {
			t.Fatalf("Set(key%d): %v", i, err)
		}
		if db.Len() != int(i) {
			t.Fatalf("Len after key%d = %d, want %d", i, db.Len(), i)
		}
		var got [][]int
		if !db.Get(key(i), &got) {
			t.Fatalf("Get(key%d) = false, want true", i)
		}
	}

	// Let the first batch pass its TTL.
	time.Sleep(3 * time.Second)

	for i := byte(4); i <= 5; i++ {
		if err := db.Set(key(i), value); err != nil {
			t.Fatalf("Set(key%d): %v", i, err)
		}
		if db.Len() != int(i) {
			t.Fatalf("Len after key%d = %d, want %d", i, db.Len(), i)
		}
	}

	// The store is at capacity, so this write triggers compaction: keys 1-3
	// have expired and are dropped, and key 4 is only refreshed.
	if err := db.Set(key(4), value); err != nil {
		t.Fatalf("Set(key4) at capacity: %v", err)
	}
	var got [][]int
	if !db.Get(key(4), &got) {
		t.Fatal("Get(key4) after compaction = false, want true")
	}
	if db.Len() != 2 {
		t.Fatalf("Len after compaction = %d, want 2", db.Len())
	}
	for i := byte(1); i <= 3; i++ {
		if db.Get(key(i), &got) {
			t.Errorf("Get(key%d) after compaction = true, want false", i)
		}
	}

	if err := db.Remove(key(4)); err != nil {
		t.Fatalf("Remove(key4): %v", err)
	}
	if db.Len() != 1 {
		t.Fatalf("Len after remove = %d, want 1", db.Len())
	}

	stats := db.Stats()
	if stats.EvictedExpired != 3 {
		t.Errorf("EvictedExpired = %d, want 3", stats.EvictedExpired)
	}
	if stats.Compactions != 1 {
		t.Errorf("Compactions = %d, want 1", stats.Compactions)
	}
}

func TestCapacityBound(t *testing.T) {
	db := newMemDB(t, 3, 3600)

	// With a long TTL nothing expires, so the oldest entry is evicted on
	// every insert past capacity.
	for i := byte(1); i <= 10; i++ {
		if err := db.Set(key(i), int(i)); err != nil {
			t.Fatalf("Set(key%d): %v", i, err)
		}
		if got := db.Len(); got > 3 {
			t.Fatalf("Len after key%d = %d, want <= 3", i, got)
		}
	}
	if db.Len() != 3 {
		t.Fatalf("final Len = %d, want 3", db.Len())
	}

	// The newest key is always retained.
	var got int
	if !db.Get(key(10), &got) || got != 10 {
		t.Errorf("Get(key10) = (%d, %v), want (10, true)", got, db.Get(key(10), &got))
	}
	// The overall oldest keys are gone.
	if db.Get(key(1), &got) {
		t.Error("Get(key1) = true, want false")
	}
}

func TestRemoveAbsent(t *testing.T) {
	db := newMemDB(t, 5, 60)

	if err := db.Remove(key(9)); err != nil {
		t.Fatalf("Remove on absent key: %v", err)
	}
	if db.Len() != 0 {
		t.Errorf("Len = %d, want 0", db.Len())
	}

	if err := db.Set(key(1), "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := db.Remove(key(9)); err != nil {
		t.Fatalf("Remove on absent key: %v", err)
	}
	if db.Len() != 1 {
		t.Errorf("Len = %d, want 1", db.Len())
	}
}

func TestRefreshRenewsTimestamp(t *testing.T) {
	if testing.Short() {
		t.Skip("refresh fixture sleeps past a second boundary")
	}

	db := newMemDB(t, 5, 3600)

	if err := db.Set(key(1), "first"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var s string
	ts1, ok := db.GetWithTimestamp(key(1), &s)
	if !ok {
		t.Fatal("GetWithTimestamp = false, want true")
	}

	// Stored timestamps have second granularity; sleeping 1.1s guarantees
	// the refresh lands on a later second.
	time.Sleep(1100 * time.Millisecond)

	if err := db.Set(key(1), "second"); err != nil {
		t.Fatalf("Set refresh: %v", err)
	}
	if db.Len() != 1 {
		t.Fatalf("Len after refresh = %d, want 1", db.Len())
	}

	ts2, ok := db.GetWithTimestamp(key(1), &s)
	if !ok {
		t.Fatal("GetWithTimestamp after refresh = false, want true")
	}
	if s != "second" {
		t.Errorf("payload = %q, want %q", s, "second")
	}
	if ts2 <= ts1 {
		t.Errorf("timestamp not renewed: ts1=%d ts2=%d", ts1, ts2)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store")
	cfg := Config{Path: path, Capacity: 10, ExpiringSecs: 3600}

	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for i := byte(1); i <= 3; i++ {
		if err := db.Set(key(i), fmt.Sprintf("value-%d", i)); err != nil {
			t.Fatalf("Set(key%d): %v", i, err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err = Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	if db.Len() != 3 {
		t.Fatalf("Len after reopen = %d, want 3", db.Len())
	}
	var s string
	if !db.Get(key(2), &s) || s != "value-2" {
		t.Errorf("Get(key2) after reopen = (%q, %v)", s, db.Get(key(2), &s))
	}
}

func TestDestroyWipesStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store")
	cfg := Config{Path: path, Capacity: 10, ExpiringSecs: 3600}

	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.Set(key(1), "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := db.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	db, err = Open(cfg)
	if err != nil {
		t.Fatalf("reopen after destroy: %v", err)
	}
	defer db.Close()
	if db.Len() != 0 {
		t.Errorf("Len after destroy = %d, want 0", db.Len())
	}
}

func TestReservedKeyRejected(t *testing.T) {
	db := newMemDB(t, 5, 60)
	reserved := []byte{0, 0, 0, 0}

	if err := db.Set(reserved, "v"); !errors.Is(err, ErrReservedKey) {
		t.Errorf("Set(reserved) = %v, want ErrReservedKey", err)
	}
	if err := db.Remove(reserved); !errors.Is(err, ErrReservedKey) {
		t.Errorf("Remove(reserved) = %v, want ErrReservedKey", err)
	}

	// Reads of the reserved key are plain misses, never counter bytes.
	var v any
	if db.Get(reserved, &v) {
		t.Error("Get(reserved) = true, want false")
	}
}

func TestConstructionValidation(t *testing.T) {
	if _, err := New(engine.NewMemory(), Config{Capacity: 0, ExpiringSecs: 60}); err == nil {
		t.Error("New with capacity=0 succeeded, want error")
	}
	if _, err := New(engine.NewMemory(), Config{Capacity: 10, ExpiringSecs: 0}); err == nil {
		t.Error("New with expiring=0 succeeded, want error")
	}
}

func TestOpenInitializesCounter(t *testing.T) {
	eng := engine.NewMemory()
	db, err := New(eng, Config{Capacity: 5, ExpiringSecs: 60})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()

	raw, err := eng.Get([]byte{0, 0, 0, 0})
	if err != nil {
		t.Fatalf("counter not written on first open: %v", err)
	}
	if len(raw) != 8 || binary.LittleEndian.Uint64(raw) != 0 {
		t.Errorf("counter = %v, want 8 zero bytes", raw)
	}
}

func TestOpenRejectsCorruptCounter(t *testing.T) {
	eng := engine.NewMemory()
	if err := eng.Put([]byte{0, 0, 0, 0}, []byte{1, 2, 3}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := New(eng, Config{Capacity: 5, ExpiringSecs: 60}); !errors.Is(err, ErrCorruptCounter) {
		t.Errorf("New = %v, want ErrCorruptCounter", err)
	}
}

func TestCorruptEntryIsMissAndEvicted(t *testing.T) {
	eng := engine.NewMemory()
	counter := make([]byte, 8)
	binary.LittleEndian.PutUint64(counter, 1)
	if err := eng.Put([]byte{0, 0, 0, 0}, counter); err != nil {
		t.Fatalf("seed counter: %v", err)
	}
	// Shorter than the timestamp prefix.
	if err := eng.Put(key(1), []byte{1, 2, 3}); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	db, err := New(eng, Config{Capacity: 1, ExpiringSecs: 3600})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()

	// Reading the corrupt entry is a logged miss, not a failure.
	var v any
	if db.Get(key(1), &v) {
		t.Error("Get(corrupt) = true, want false")
	}

	// The store is at capacity, so this insert compacts; the corrupt entry
	// can never be served and is dropped.
	if err := db.Set(key(2), "fresh"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if db.Len() != 1 {
		t.Errorf("Len = %d, want 1", db.Len())
	}
	if _, err := eng.Get(key(1)); !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("corrupt entry still present: %v", err)
	}
	if got := db.Stats().EvictedCorrupt; got != 1 {
		t.Errorf("EvictedCorrupt = %d, want 1", got)
	}
}

// failingEngine wraps a real engine and fails selected operations.
type failingEngine struct {
	engine.Engine
	failPut    bool
	failGet    bool
	failDelete bool
}

var errInjected = errors.New("injected engine failure")

func (f *failingEngine) Put(key, value []byte) error {
	if f.failPut {
		return errInjected
	}
	return f.Engine.Put(key, value)
}

func (f *failingEngine) Get(key []byte) ([]byte, error) {
	if f.failGet {
		return nil, errInjected
	}
	return f.Engine.Get(key)
}

func (f *failingEngine) Delete(key []byte) error {
	if f.failDelete {
		return errInjected
	}
	return f.Engine.Delete(key)
}

func TestEngineFailuresSurfaceOnWrites(t *testing.T) {
	feng := &failingEngine{Engine: engine.NewMemory()}
	db, err := New(feng, Config{Capacity: 5, ExpiringSecs: 60})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()

	if err := db.Set(key(1), "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	feng.failPut = true
	err = db.Set(key(2), "v")
	var serr *StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("Set with failing put = %v, want StorageError", err)
	}
	if !errors.Is(err, errInjected) {
		t.Errorf("StorageError does not wrap cause: %v", err)
	}
	feng.failPut = false

	// The failed insert must not leak into the count.
	if db.Len() != 1 {
		t.Errorf("Len after failed Set = %d, want 1", db.Len())
	}

	feng.failDelete = true
	if err := db.Remove(key(1)); !errors.As(err, &serr) {
		t.Errorf("Remove with failing delete = %v, want StorageError", err)
	}
	feng.failDelete = false
	if db.Len() != 1 {
		t.Errorf("Len after failed Remove = %d, want 1", db.Len())
	}
}

func TestEngineFailuresAreReadMisses(t *testing.T) {
	feng := &failingEngine{Engine: engine.NewMemory()}
	db, err := New(feng, Config{Capacity: 5, ExpiringSecs: 60})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer db.Close()

	if err := db.Set(key(1), "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	feng.failGet = true
	var s string
	if db.Get(key(1), &s) {
		t.Error("Get with failing engine = true, want false")
	}
	if _, ok := db.GetWithTimestamp(key(1), &s); ok {
		t.Error("GetWithTimestamp with failing engine = true, want false")
	}
}

func TestSerializationErrorSurfaces(t *testing.T) {
	db := newMemDB(t, 5, 60)

	// Channels have no JSON encoding.
	err := db.Set(key(1), make(chan int))
	var serr *SerializationError
	if !errors.As(err, &serr) {
		t.Fatalf("Set(chan) = %v, want SerializationError", err)
	}
	if db.Len() != 0 {
		t.Errorf("Len after failed Set = %d, want 0", db.Len())
	}
}

func TestDecodeMismatchIsMiss(t *testing.T) {
	db := newMemDB(t, 5, 60)

	if err := db.Set(key(1), "a string"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Asking for a shape the payload can't fill is a logged miss.
	var n int
	if db.Get(key(1), &n) {
		t.Error("Get into mismatched type = true, want false")
	}

	// The entry itself is untouched.
	var s string
	if !db.Get(key(1), &s) || s != "a string" {
		t.Errorf("Get = (%q, %v), want (\"a string\", true)", s, db.Get(key(1), &s))
	}
}

func TestConcurrentAccess(t *testing.T) {
	db := newMemDB(t, 20, 3600)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(seed byte) {
			defer wg.Done()
			for i := byte(0); i < 50; i++ {
				k := []byte{1, seed, 0, i}
				if err := db.Set(k, int(i)); err != nil {
					t.Errorf("Set: %v", err)
					return
				}
				var got int
				db.Get(k, &got)
				if i%5 == 0 {
					if err := db.Remove(k); err != nil {
						t.Errorf("Remove: %v", err)
						return
					}
				}
			}
		}(byte(w))
	}

	// Lock-free readers run alongside the writers.
	wg.Add(1)
	go func() {
		defer wg.Done()
		var got int
		for i := 0; i < 200; i++ {
			db.Get([]byte{1, 0, 0, byte(i % 50)}, &got)
		}
	}()

	wg.Wait()
	if got := db.Len(); got > 20 {
		t.Errorf("Len = %d, want <= 20", got)
	}
}
