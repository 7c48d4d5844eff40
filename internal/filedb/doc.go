// Package filedb implements a persistent, bounded-size, time-expiring
// key-value cache over an embedded ordered storage engine.
//
// Every stored value carries its creation timestamp in an 8-byte
// little-endian prefix, and a reserved 4-zero-byte key holds the live-entry
// count so the bound survives restarts. When an insert finds the store at
// capacity it runs an inline compaction pass: one full scan that drops
// expired entries and, if the store is still full, the single oldest one.
//
// Mutations are serialized by one exclusive lock held across the whole call,
// engine I/O included. Reads take no lock; any read-path anomaly is logged
// and reported as a miss, since a miss is always a safe outcome for a cache.
package filedb
