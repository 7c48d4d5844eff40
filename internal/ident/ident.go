// Package ident parses the block-hash identifiers witnesses are keyed by and
// derives the store keys and human-readable request IDs built from them.
package ident

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// HashLen is the byte length of a block hash.
const HashLen = 32

// Hash is a 32-byte block hash.
type Hash [HashLen]byte

// ParseHash decodes a 64-character hex string, with or without a 0x prefix.
func ParseHash(s string) (Hash, error) {
	var h Hash
	trimmed := strings.TrimPrefix(s, "0x")
	if len(trimmed) != HashLen*2 {
		return h, fmt.Errorf("parse hash %q: expected %d hex characters, got %d", s, HashLen*2, len(trimmed))
	}
	if _, err := hex.Decode(h[:], []byte(trimmed)); err != nil {
		return h, fmt.Errorf("parse hash %q: %w", s, err)
	}
	return h, nil
}

// String returns the lowercase hex encoding without a 0x prefix.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// RequestID builds the short display ID for a witness request: the first
// eight characters of each raw input joined by a dash.
func RequestID(l2Hash, l1HeadHash string) string {
	return prefix8(l2Hash) + "-" + prefix8(l1HeadHash)
}

func prefix8(s string) string {
	runes := []rune(s)
	if len(runes) > 8 {
		runes = runes[:8]
	}
	return string(runes)
}

// Preprocess validates a witness request's hash pair and returns the parsed
// hashes together with the request ID derived from the raw inputs.
func Preprocess(l2Hash, l1HeadHash string) (Hash, Hash, string, error) {
	reqID := RequestID(l2Hash, l1HeadHash)
	l2, err := ParseHash(l2Hash)
	if err != nil {
		return Hash{}, Hash{}, "", err
	}
	l1, err := ParseHash(l1HeadHash)
	if err != nil {
		return Hash{}, Hash{}, "", err
	}
	return l2, l1, reqID, nil
}

// WitnessKey derives the store key for a witness: the L2 block hash followed
// by the L1 head hash. At 64 bytes it can never collide with the store's
// reserved 4-byte counter key.
func WitnessKey(l2Hash, l1HeadHash Hash) []byte {
	key := make([]byte, 0, HashLen*2)
	key = append(key, l2Hash[:]...)
	key = append(key, l1HeadHash[:]...)
	return key
}
