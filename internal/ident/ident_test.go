package ident

import (
	"bytes"
	"strings"
	"testing"
)

const (
	l2HashHex     = "abef4fd64a81faadb0e5e968f28353c10227c04ec0e14068ffd0a91143185267"
	l1HeadHashHex = "30da309b674ec5e6fad3f09a6065623816b029a93edbabfb5376d1dfed5e08d7"
)

func TestPreprocess(t *testing.T) {
	l2, l1, reqID, err := Preprocess(l2HashHex, l1HeadHashHex)
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	if l2.String() != l2HashHex {
		t.Errorf("l2 = %s, want %s", l2, l2HashHex)
	}
	if l1.String() != l1HeadHashHex {
		t.Errorf("l1 = %s, want %s", l1, l1HeadHashHex)
	}
	if reqID != "abef4fd6-30da309b" {
		t.Errorf("request ID = %q, want %q", reqID, "abef4fd6-30da309b")
	}
}

func TestParseHashPrefix(t *testing.T) {
	plain, err := ParseHash(l2HashHex)
	if err != nil {
		t.Fatalf("ParseHash: %v", err)
	}
	prefixed, err := ParseHash("0x" + l2HashHex)
	if err != nil {
		t.Fatalf("ParseHash with 0x: %v", err)
	}
	if plain != prefixed {
		t.Error("0x prefix changed the parsed hash")
	}

	upper, err := ParseHash(strings.ToUpper(l2HashHex))
	if err != nil {
		t.Fatalf("ParseHash uppercase: %v", err)
	}
	if upper != plain {
		t.Error("case changed the parsed hash")
	}
}

func TestParseHashErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"too short", "abcd"},
		{"too long", l2HashHex + "00"},
		{"bad characters", strings.Repeat("zz", 32)},
		{"bare prefix", "0x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseHash(tt.input); err == nil {
				t.Errorf("ParseHash(%q) succeeded, want error", tt.input)
			}
		})
	}
}

func TestRequestIDShortInputs(t *testing.T) {
	if got := RequestID("abc", "defg"); got != "abc-defg" {
		t.Errorf("RequestID = %q, want %q", got, "abc-defg")
	}
	// The ID is cut from the raw input, prefix included.
	if got := RequestID("0x"+l2HashHex, l1HeadHashHex); got != "0xabef4f-30da309b" {
		t.Errorf("RequestID = %q, want %q", got, "0xabef4f-30da309b")
	}
}

func TestWitnessKey(t *testing.T) {
	l2, _ := ParseHash(l2HashHex)
	l1, _ := ParseHash(l1HeadHashHex)

	key := WitnessKey(l2, l1)
	if len(key) != 64 {
		t.Fatalf("key length = %d, want 64", len(key))
	}
	if !bytes.Equal(key[:32], l2[:]) || !bytes.Equal(key[32:], l1[:]) {
		t.Error("key is not the hash pair concatenated")
	}

	// Swapping the pair produces a different key.
	if bytes.Equal(key, WitnessKey(l1, l2)) {
		t.Error("swapped hashes produced the same key")
	}
}
