// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package hash

import (
	"bytes"
	"encoding/hex"
	"testing"
)

// mainnetGenesisHash is used in the tests as a source of well-known bytes.
var mainnetGenesisHash = Hash{
	0x82, 0xf0, 0xd2, 0xcf, 0x46, 0x8e, 0x91, 0x6c,
	0x45, 0xa1, 0x73, 0xed, 0x00, 0x30, 0x75, 0x5a,
	0x95, 0x07, 0x17, 0x45, 0x1a, 0xe8, 0x32, 0xb7,
	0x2a, 0x46, 0x3f, 0x1f, 0x33, 0x55, 0x47, 0x29,
}

// TestHash tests the Hash API.
func TestHash(t *testing.T) {
	hashStr := "82f0d2cf468e916c45a173ed0030755a950717451ae832b72a463f1f33554729"
	h, err := NewHashFromStr(hashStr)
	if err != nil {
		t.Errorf("NewHashFromStr: %v", err)
	}

	buf := []byte{
		0x82, 0xf0, 0xd2, 0xcf, 0x46, 0x8e, 0x91, 0x6c,
		0x45, 0xa1, 0x73, 0xed, 0x00, 0x30, 0x75, 0x5a,
		0x95, 0x07, 0x17, 0x45, 0x1a, 0xe8, 0x32, 0xb7,
		0x2a, 0x46, 0x3f, 0x1f, 0x33, 0x55, 0x47, 0x29,
	}

	testHash, err := NewHash(buf)
	if err != nil {
		t.Errorf("NewHash: unexpected error %v", err)
	}

	// Ensure proper size.
	if len(testHash) != Size {
		t.Errorf("NewHash: hash length mismatch - got: %v, want: %v",
			len(testHash), Size)
	}

	// Ensure contents match.
	if !bytes.Equal(testHash[:], buf) {
		t.Errorf("NewHash: hash contents mismatch - got: %v, want: %v",
			testHash[:], buf)
	}

	// Ensure contents of hash of block 234440 don't match 234439.
	if testHash.IsEqual(h) != true {
		t.Errorf("IsEqual: hash contents should match - got: %v, want: %v",
			testHash, h)
	}

	// Set hash from byte slice and ensure contents match.
	err = testHash.SetBytes(h.CloneBytes())
	if err != nil {
		t.Errorf("SetBytes: %v", err)
	}
	if !testHash.IsEqual(h) {
		t.Errorf("IsEqual: hash contents mismatch - got: %v, want: %v",
			testHash, h)
	}

	// Ensure nil hashes are handled properly.
	if !(*Hash)(nil).IsEqual(nil) {
		t.Error("IsEqual: nil hashes should match")
	}
	if testHash.IsEqual(nil) {
		t.Error("IsEqual: non-nil hash matches nil hash")
	}

	// Invalid size for SetBytes.
	err = testHash.SetBytes([]byte{0x00})
	if err == nil {
		t.Errorf("SetBytes: failed to received expected err - got: nil")
	}

	// Invalid size for NewHash.
	invalidHash := make([]byte, Size+1)
	_, err = NewHash(invalidHash)
	if err == nil {
		t.Errorf("NewHash: failed to received expected err - got: nil")
	}
}

// TestHashString tests the stringized output for hashes. Rendering is plain
// lowercase hex without byte reversal.
func TestHashString(t *testing.T) {
	wantStr := "82f0d2cf468e916c45a173ed0030755a950717451ae832b72a463f1f33554729"
	gotStr := mainnetGenesisHash.String()
	if gotStr != wantStr {
		t.Errorf("String: wrong hash string - got %v, want %v",
			gotStr, wantStr)
	}
}

// TestNewHashFromStr executes tests against the NewHashFromStr function.
func TestNewHashFromStr(t *testing.T) {
	tests := []struct {
		in   string
		want Hash
		err  error
	}{
		// Empty string.
		{
			"",
			Hash{},
			nil,
		},

		// Single digit hash.
		{
			"1",
			Hash{
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
			},
			nil,
		},

		// Full hash.
		{
			"82f0d2cf468e916c45a173ed0030755a950717451ae832b72a463f1f33554729",
			mainnetGenesisHash,
			nil,
		},

		// Hash string that is too long.
		{
			"01234567890123456789012345678901234567890123456789012345678912345",
			Hash{},
			ErrStrSize,
		},
	}

	for i, test := range tests {
		result, err := NewHashFromStr(test.in)
		if err != test.err {
			if test.err == nil || err == nil || err.Error() != test.err.Error() {
				t.Errorf("NewHashFromStr #%d failed to detect "+
					"expected error - got: %v want: %v", i, err, test.err)
				continue
			}
		}
		if test.err != nil {
			continue
		}
		if !test.want.IsEqual(result) {
			t.Errorf("NewHashFromStr #%d got: %v want: %v",
				i, result, test.want)
			continue
		}
	}
}

// TestHashCmp verifies the big-endian ordering used by the name tree.
func TestHashCmp(t *testing.T) {
	small := Hash{0: 0x01}
	big := Hash{0: 0x02}

	if small.Cmp(&big) != -1 {
		t.Errorf("Cmp: expected -1 for %v < %v", small, big)
	}
	if big.Cmp(&small) != 1 {
		t.Errorf("Cmp: expected 1 for %v > %v", big, small)
	}
	if small.Cmp(&small) != 0 {
		t.Errorf("Cmp: expected 0 for equal hashes")
	}
}

// TestHashB confirms a known blake2b-256 vector.
func TestHashB(t *testing.T) {
	// blake2b-256 of the empty string.
	want, _ := hex.DecodeString(
		"0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8")

	got := HashB(nil)
	if !bytes.Equal(got[:], want) {
		t.Errorf("HashB: wrong digest - got %x, want %x", got[:], want)
	}

	w := NewWriter()
	if fin := w.Finalize(); !bytes.Equal(fin[:], want) {
		t.Errorf("Writer: wrong empty digest - got %x, want %x", fin[:], want)
	}
}
