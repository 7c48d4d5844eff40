package filedb

import (
	"encoding/binary"
	"fmt"
)

// timestampLen is the size of the little-endian unix-seconds prefix every
// stored value carries.
const timestampLen = 8

// encodeEnvelope prepends the creation timestamp to a serialized payload,
// producing the blob stored in the engine.
func encodeEnvelope(timestamp uint64, payload []byte) []byte {
	blob := make([]byte, timestampLen+len(payload))
	binary.LittleEndian.PutUint64(blob, timestamp)
	copy(blob[timestampLen:], payload)
	return blob
}

// decodeEnvelope splits a stored blob into its creation timestamp and
// serialized payload. The payload aliases the blob's memory.
func decodeEnvelope(blob []byte) (uint64, []byte, error) {
	if len(blob) < timestampLen {
		return 0, nil, fmt.Errorf("%w: %d bytes", ErrCorruptEnvelope, len(blob))
	}
	return binary.LittleEndian.Uint64(blob), blob[timestampLen:], nil
}

// DecodeEnvelope is the exported form of decodeEnvelope for tooling that
// scans raw engine contents, such as integrity checks.
func DecodeEnvelope(blob []byte) (uint64, []byte, error) {
	return decodeEnvelope(blob)
}
