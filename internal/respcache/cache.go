package respcache

import "time"

// Cache is the response cache the witness API reads through: serialized HTTP
// response bodies keyed by endpoint-specific strings, each with a TTL.
type Cache interface {
	// Get retrieves a cached response body by key.
	// Returns the body and true if found and not expired, otherwise nil and false.
	Get(key string) ([]byte, bool)

	// Set stores a response body under key with the given TTL.
	// TTL of 0 means use the default cache TTL.
	Set(key string, value []byte, ttl time.Duration)

	// Delete removes a cached response.
	Delete(key string)

	// Clear removes all cached responses.
	Clear()

	// Stats returns cache statistics.
	Stats() Stats

	// Close releases the cache's resources.
	Close()
}

// Stats represents cache statistics.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	KeysAdded uint64 `json:"keys_added"`
	Evictions uint64 `json:"evictions"`
	Size      int64  `json:"size_bytes"` // approximate size in bytes
	Items     int64  `json:"items"`      // current number of items
}
