// Package integrity scans a witness store's raw engine contents for
// problems the cache itself hides from callers: envelopes that no longer
// decode, a live-entry counter that disagrees with the keys actually
// present, and expired entries waiting on the next compaction.
package integrity

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/kroma-network/zkvm-common/internal/engine"
	"github.com/kroma-network/zkvm-common/internal/filedb"
	"github.com/kroma-network/zkvm-common/internal/logger"
	"github.com/kroma-network/zkvm-common/internal/metrics"
)

// cancelCheckEvery bounds how many keys a scan visits between context
// cancellation checks.
const cancelCheckEvery = 1024

// Service provides integrity operations over a store's engine. The engine
// may belong to a live store; scans run on an iterator snapshot and
// CheckAll never mutates.
type Service struct {
	eng      engine.Engine
	expiring uint64
}

// NewService creates a new integrity service. expiringSecs is the store's
// TTL window, used to classify entries as expired.
func NewService(eng engine.Engine, expiringSecs uint64) *Service {
	return &Service{eng: eng, expiring: expiringSecs}
}

// CheckResult contains the result of one integrity check.
type CheckResult struct {
	CheckName  string
	IssueCount int64
	Details    string
	CheckedAt  time.Time
	HasIssues  bool
}

// scan is the tally of one full pass over the engine.
type scan struct {
	entries   int64
	corrupt   int64
	expired   int64
	counter   uint64
	counterOK bool
}

// expiryLimit mirrors the compaction cutoff: entries stamped strictly
// before now-expiring are expired. Large TTLs clamp to zero instead of
// wrapping.
func expiryLimit(now, expiring uint64) uint64 {
	if expiring >= now {
		return 0
	}
	return now - expiring
}

func (s *Service) scanAll(ctx context.Context) (*scan, error) {
	limit := expiryLimit(uint64(time.Now().Unix()), s.expiring)
	counterKey := filedb.CounterKey()

	res := &scan{}
	it := s.eng.NewIterator()
	defer it.Release()
	var visited int
	for it.Next() {
		visited++
		if visited%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if bytes.Equal(it.Key(), counterKey) {
			if len(it.Value()) == 8 {
				res.counter = binary.LittleEndian.Uint64(it.Value())
				res.counterOK = true
			}
			continue
		}
		res.entries++
		timestamp, _, err := filedb.DecodeEnvelope(it.Value())
		if err != nil {
			res.corrupt++
			continue
		}
		if timestamp < limit {
			res.expired++
		}
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("integrity scan: %w", err)
	}
	return res, nil
}

// CheckAll runs all integrity checks in a single scan.
func (s *Service) CheckAll(ctx context.Context) ([]CheckResult, error) {
	start := time.Now()
	sc, err := s.scanAll(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()

	drift := sc.entries - int64(sc.counter)
	if drift < 0 {
		drift = -drift
	}
	details := fmt.Sprintf("Counter records %d live entries, scan found %d", sc.counter, sc.entries)
	if !sc.counterOK {
		drift = sc.entries
		details = fmt.Sprintf("Live-entry counter missing or malformed, scan found %d entries", sc.entries)
	}

	results := []CheckResult{
		{
			CheckName:  "counter_consistency",
			IssueCount: drift,
			Details:    details,
			CheckedAt:  now,
			HasIssues:  drift > 0,
		},
		{
			CheckName:  "corrupt_envelopes",
			IssueCount: sc.corrupt,
			Details:    "Entries whose stored envelope cannot be decoded",
			CheckedAt:  now,
			HasIssues:  sc.corrupt > 0,
		},
		{
			// Expired entries are reclaimed by the next write-triggered
			// compaction; their presence is informational, not a fault.
			CheckName:  "expired_pending_compaction",
			IssueCount: sc.expired,
			Details:    "Entries past their TTL awaiting the next compaction",
			CheckedAt:  now,
			HasIssues:  false,
		},
	}

	metrics.IntegrityCheckDuration.Observe(time.Since(start).Seconds())
	return results, nil
}

// Repair deletes entries with undecodable envelopes and rewrites the
// live-entry counter to match the keys actually present. The engine must
// not be serving a live store while Repair runs.
func (s *Service) Repair(ctx context.Context) (int64, error) {
	counterKey := filedb.CounterKey()

	var corrupt [][]byte
	var entries uint64
	it := s.eng.NewIterator()
	var visited int
	for it.Next() {
		visited++
		if visited%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				it.Release()
				return 0, err
			}
		}
		if bytes.Equal(it.Key(), counterKey) {
			continue
		}
		if _, _, err := filedb.DecodeEnvelope(it.Value()); err != nil {
			// Iterator buffers are reused between Next calls.
			corrupt = append(corrupt, append([]byte(nil), it.Key()...))
			continue
		}
		entries++
	}
	err := it.Error()
	it.Release()
	if err != nil {
		return 0, fmt.Errorf("repair scan: %w", err)
	}

	var deleted int64
	for _, key := range corrupt {
		if err := s.eng.Delete(key); err != nil {
			return deleted, fmt.Errorf("repair delete: %w", err)
		}
		deleted++
	}

	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, entries)
	if err := s.eng.Put(counterKey, b); err != nil {
		return deleted, fmt.Errorf("repair counter: %w", err)
	}

	if deleted > 0 {
		logger.Info("Repaired witness store", "deleted_corrupt", deleted, "live_entries", entries)
	}
	return deleted, nil
}

// Report runs every check, logs the outcome, and exports per-check issue
// gauges. It is the entry point for scheduled background checks.
func (s *Service) Report(ctx context.Context) error {
	results, err := s.CheckAll(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "Integrity check failed", "error", err)
		return err
	}
	for _, r := range results {
		metrics.IntegrityIssues.WithLabelValues(r.CheckName).Set(float64(r.IssueCount))
		if r.HasIssues {
			logger.WarnContext(ctx, "Integrity check found issues",
				"check", r.CheckName, "count", r.IssueCount, "details", r.Details)
		} else {
			logger.DebugContext(ctx, "Integrity check passed", "check", r.CheckName, "count", r.IssueCount)
		}
	}
	return nil
}
