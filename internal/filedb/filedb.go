package filedb

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kroma-network/zkvm-common/internal/engine"
	"github.com/kroma-network/zkvm-common/internal/logger"
	"github.com/kroma-network/zkvm-common/internal/metrics"
)

// sizeKey is the reserved key the live-entry counter lives under. Application
// keys must never collide with it; witness keys are 64 bytes, so the fixed
// 4-byte width keeps the namespaces disjoint.
var sizeKey = []byte{0, 0, 0, 0}

// CounterKey returns a copy of the reserved live-entry counter key, for
// tooling that scans raw engine contents.
func CounterKey() []byte {
	return append([]byte(nil), sizeKey...)
}

// Config carries the construction parameters for a DB.
type Config struct {
	// Path is the directory of the on-disk store. Empty for injected engines.
	Path string
	// Capacity is the maximum number of live entries. Must be at least 1.
	Capacity uint64
	// ExpiringSecs is the TTL window in seconds. Must be at least 1.
	ExpiringSecs uint64
}

// DB is a bounded, persistent, TTL-expiring key-value cache.
type DB struct {
	eng      engine.Engine
	path     string
	capacity uint64
	expiring uint64

	// mu serializes mutations and guards size, the in-memory mirror of the
	// persisted live-entry counter. Reads never take it.
	mu   sync.Mutex
	size uint64

	hits            atomic.Uint64
	misses          atomic.Uint64
	sets            atomic.Uint64
	removes         atomic.Uint64
	compactions     atomic.Uint64
	evictedExpired  atomic.Uint64
	evictedCapacity atomic.Uint64
	evictedCorrupt  atomic.Uint64
}

// Stats is a point-in-time snapshot of store counters.
type Stats struct {
	Entries         uint64 `json:"entries"`
	Capacity        uint64 `json:"capacity"`
	ExpiringSecs    uint64 `json:"expiring_secs"`
	Hits            uint64 `json:"hits"`
	Misses          uint64 `json:"misses"`
	Sets            uint64 `json:"sets"`
	Removes         uint64 `json:"removes"`
	Compactions     uint64 `json:"compactions"`
	EvictedExpired  uint64 `json:"evicted_expired"`
	EvictedCapacity uint64 `json:"evicted_capacity"`
	EvictedCorrupt  uint64 `json:"evicted_corrupt"`
}

// Open opens (or creates) the on-disk store at cfg.Path.
func Open(cfg Config) (*DB, error) {
	eng, err := engine.OpenLevelDB(cfg.Path)
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	db, err := New(engine.NewInstrumented(eng), cfg)
	if err != nil {
		eng.Close()
		return nil, err
	}
	return db, nil
}

// New builds a DB over an already-open engine. Most callers want Open; New
// exists for tests and ephemeral in-memory stores.
func New(eng engine.Engine, cfg Config) (*DB, error) {
	if cfg.Capacity < 1 {
		return nil, fmt.Errorf("filedb: capacity must be at least 1")
	}
	if cfg.ExpiringSecs < 1 {
		return nil, fmt.Errorf("filedb: expiring seconds must be at least 1")
	}

	db := &DB{
		eng:      eng,
		path:     cfg.Path,
		capacity: cfg.Capacity,
		expiring: cfg.ExpiringSecs,
	}
	size, err := db.loadSize()
	if err != nil {
		return nil, err
	}
	db.size = size

	logger.Info("Witness store opened",
		"path", cfg.Path,
		"entries", size,
		"capacity", cfg.Capacity,
		"ttl_secs", cfg.ExpiringSecs,
	)
	return db, nil
}

// loadSize reads the persisted live-entry counter, initializing it to zero on
// first open.
func (db *DB) loadSize() (uint64, error) {
	raw, err := db.eng.Get(sizeKey)
	if errors.Is(err, engine.ErrNotFound) {
		if err := db.storeSize(0); err != nil {
			return 0, err
		}
		return 0, nil
	}
	if err != nil {
		return 0, &StorageError{Op: "load size counter", Err: err}
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("%w: %d bytes", ErrCorruptCounter, len(raw))
	}
	return binary.LittleEndian.Uint64(raw), nil
}

// storeSize persists the live-entry counter. Counter durability is
// load-bearing for the capacity bound, so failures are fatal to the call.
func (db *DB) storeSize(n uint64) error {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, n)
	if err := db.eng.Put(sizeKey, b); err != nil {
		return &StorageError{Op: "store size counter", Err: err}
	}
	return nil
}

// Set stores value under key with a fresh timestamp, compacting first if the
// store is at capacity. Re-setting an existing key renews its timestamp
// without changing the live-entry count.
func (db *DB) Set(key []byte, value any) (err error) {
	defer func() {
		if err != nil {
			metrics.StoreWriteErrors.WithLabelValues("set").Inc()
		}
	}()

	if bytes.Equal(key, sizeKey) {
		return ErrReservedKey
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return &SerializationError{Err: err}
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.size >= db.capacity {
		n, cerr := db.compactLocked(db.size)
		// Deletions already landed in the engine; mirror them even on error.
		db.size = n
		if cerr != nil {
			return cerr
		}
		if err := db.storeSize(n); err != nil {
			return err
		}
	}

	exists, err := db.exists(key)
	if err != nil {
		return err
	}
	if !exists {
		if err := db.storeSize(db.size + 1); err != nil {
			return err
		}
		db.size++
	}

	blob := encodeEnvelope(uint64(time.Now().Unix()), payload)
	if err := db.eng.Put(key, blob); err != nil {
		if !exists {
			// The entry never landed; take back the provisional count.
			db.size--
			if serr := db.storeSize(db.size); serr != nil {
				logger.Error("Failed to restore size counter after write error", "error", serr)
			}
		}
		return &StorageError{Op: "put", Err: err}
	}

	db.sets.Add(1)
	metrics.StoreWrites.WithLabelValues("set").Inc()
	return nil
}

// Remove deletes key and decrements the live-entry count. Removing an absent
// key succeeds without changing anything.
func (db *DB) Remove(key []byte) (err error) {
	defer func() {
		if err != nil {
			metrics.StoreWriteErrors.WithLabelValues("remove").Inc()
		}
	}()

	if bytes.Equal(key, sizeKey) {
		return ErrReservedKey
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	exists, err := db.exists(key)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	if err := db.eng.Delete(key); err != nil {
		return &StorageError{Op: "delete", Err: err}
	}
	db.size--
	if err := db.storeSize(db.size); err != nil {
		return err
	}

	db.removes.Add(1)
	metrics.StoreWrites.WithLabelValues("remove").Inc()
	return nil
}

// Get looks up key and decodes the payload into dest, reporting whether a
// value was found. Read anomalies are logged and count as misses.
func (db *DB) Get(key []byte, dest any) bool {
	_, ok := db.GetWithTimestamp(key, dest)
	return ok
}

// GetWithTimestamp is Get plus the entry's creation time in unix seconds.
func (db *DB) GetWithTimestamp(key []byte, dest any) (uint64, bool) {
	if bytes.Equal(key, sizeKey) {
		return db.miss("absent")
	}

	raw, err := db.eng.Get(key)
	if errors.Is(err, engine.ErrNotFound) {
		return db.miss("absent")
	}
	if err != nil {
		logger.Error("Witness store read failed", "error", &StorageError{Op: "get", Err: err})
		return db.miss("engine_error")
	}

	timestamp, payload, err := decodeEnvelope(raw)
	if err != nil {
		logger.Error("Witness store entry is corrupt", "error", err)
		return db.miss("corrupt")
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		logger.Error("Witness store payload decode failed", "error", &DeserializationError{Err: err})
		return db.miss("decode_error")
	}

	db.hits.Add(1)
	metrics.StoreHits.Inc()
	return timestamp, true
}

func (db *DB) miss(reason string) (uint64, bool) {
	db.misses.Add(1)
	metrics.StoreMisses.WithLabelValues(reason).Inc()
	return 0, false
}

// exists reports whether key is present in the engine. Called with mu held.
func (db *DB) exists(key []byte) (bool, error) {
	_, err := db.eng.Get(key)
	if errors.Is(err, engine.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, &StorageError{Op: "get", Err: err}
	}
	return true, nil
}

// compactLocked deletes every expired entry and, if the store is still at
// capacity afterwards, the oldest surviving entry. Called with mu held. The
// returned count reflects the deletions performed even when an error is
// returned partway through the scan.
func (db *DB) compactLocked(size uint64) (uint64, error) {
	start := time.Now()
	db.compactions.Add(1)
	metrics.StoreCompactions.Inc()

	now := uint64(time.Now().Unix())
	var limit uint64
	if now > db.expiring {
		limit = now - db.expiring
	}

	var oldestKey []byte
	oldestTimestamp := uint64(math.MaxUint64)

	it := db.eng.NewIterator()
	defer it.Release()
	for it.Next() {
		if bytes.Equal(it.Key(), sizeKey) {
			continue
		}
		// Iterator buffers are reused between Next calls.
		key := append([]byte(nil), it.Key()...)

		timestamp, _, err := decodeEnvelope(it.Value())
		if err != nil {
			// An unreadable entry can never be served again; drop it.
			logger.Warn("Dropping corrupt entry during compaction", "error", err)
			if derr := db.eng.Delete(key); derr != nil {
				return size, &StorageError{Op: "delete", Err: derr}
			}
			size--
			db.evictedCorrupt.Add(1)
			metrics.StoreEvictions.WithLabelValues("corrupt").Inc()
			continue
		}

		if timestamp < limit {
			if derr := db.eng.Delete(key); derr != nil {
				return size, &StorageError{Op: "delete", Err: derr}
			}
			size--
			db.evictedExpired.Add(1)
			metrics.StoreEvictions.WithLabelValues("expired").Inc()
			continue
		}

		if timestamp < oldestTimestamp {
			oldestTimestamp = timestamp
			oldestKey = key
		}
	}
	if err := it.Error(); err != nil {
		return size, &StorageError{Op: "scan", Err: err}
	}

	if size >= db.capacity && oldestKey != nil {
		if err := db.eng.Delete(oldestKey); err != nil {
			return size, &StorageError{Op: "delete", Err: err}
		}
		size--
		db.evictedCapacity.Add(1)
		metrics.StoreEvictions.WithLabelValues("capacity").Inc()
	}

	metrics.StoreCompactionDuration.Observe(time.Since(start).Seconds())
	logger.Debug("Compaction finished", "entries", size, "took", time.Since(start))
	return size, nil
}

// Len reports the current live-entry count.
func (db *DB) Len() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return int(db.size)
}

// Stats snapshots the store's counters.
func (db *DB) Stats() Stats {
	return Stats{
		Entries:         uint64(db.Len()),
		Capacity:        db.capacity,
		ExpiringSecs:    db.expiring,
		Hits:            db.hits.Load(),
		Misses:          db.misses.Load(),
		Sets:            db.sets.Load(),
		Removes:         db.removes.Load(),
		Compactions:     db.compactions.Load(),
		EvictedExpired:  db.evictedExpired.Load(),
		EvictedCapacity: db.evictedCapacity.Load(),
		EvictedCorrupt:  db.evictedCorrupt.Load(),
	}
}

// Close releases the underlying engine. The on-disk store survives.
func (db *DB) Close() error {
	return db.eng.Close()
}

// Destroy closes the store and irreversibly wipes its on-disk directory.
// Only for ephemeral deployments; a store meant to persist must use Close.
func (db *DB) Destroy() error {
	if err := db.Close(); err != nil && !errors.Is(err, engine.ErrClosed) {
		return err
	}
	if db.path == "" {
		return nil
	}
	return engine.Destroy(db.path)
}
