// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package hash

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

// Size of array used to store hashes. Every hash in the system, from block
// hashes through name hashes to bid blinds, is a 32-byte BLAKE2b digest.
const Size = 32

// MaxStringSize is the maximum length of a Hash hash string.
const MaxStringSize = Size * 2

// ErrStrSize describes an error that indicates the caller specified a hash
// string that has too many characters.
var ErrStrSize = errors.Errorf("max hash string length is %v bytes", MaxStringSize)

// Hash is used in several of the messages and common structures. It typically
// represents blake2b(data).
type Hash [Size]byte

// ZeroHash is the all-zero hash. It doubles as the designated null value and
// the previous-block reference of the genesis block.
var ZeroHash Hash

// String returns the Hash as the hexadecimal string of the hash. Unlike the
// bitcoin lineage, hashes are not byte-reversed for display; rendering is
// plain lowercase hex.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// CloneBytes returns a copy of the bytes which represent the hash as a byte
// slice.
//
// NOTE: It is generally cheaper to just slice the hash directly thereby
// reusing the same bytes rather than calling this method.
func (h *Hash) CloneBytes() []byte {
	newHash := make([]byte, Size)
	copy(newHash, h[:])

	return newHash
}

// SetBytes sets the bytes which represent the hash. An error is returned if
// the number of bytes passed in is not Size.
func (h *Hash) SetBytes(newHash []byte) error {
	nhlen := len(newHash)
	if nhlen != Size {
		return errors.Errorf("invalid hash length of %v, want %v", nhlen,
			Size)
	}
	copy(h[:], newHash)

	return nil
}

// IsEqual returns true if target is the same as hash.
func (h *Hash) IsEqual(target *Hash) bool {
	if h == nil && target == nil {
		return true
	}
	if h == nil || target == nil {
		return false
	}
	return *h == *target
}

// IsZero returns true if the hash is the designated null value.
func (h *Hash) IsZero() bool {
	return *h == ZeroHash
}

// Cmp compares two hashes interpreted as big-endian unsigned integers. It
// returns -1, 0 or 1 depending on whether h is smaller than, equal to or
// greater than target. Name-tree leaves are ordered by this comparison.
func (h *Hash) Cmp(target *Hash) int {
	for i := 0; i < Size; i++ {
		switch {
		case h[i] < target[i]:
			return -1
		case h[i] > target[i]:
			return 1
		}
	}
	return 0
}

// NewHash returns a new Hash from a byte slice. An error is returned if
// the number of bytes passed in is not Size.
func NewHash(newHash []byte) (*Hash, error) {
	var h Hash
	err := h.SetBytes(newHash)
	if err != nil {
		return nil, err
	}
	return &h, err
}

// NewHashFromStr creates a Hash from a hash string. The string should be
// the hexadecimal string of a hash.
func NewHashFromStr(src string) (*Hash, error) {
	h := new(Hash)
	err := Decode(h, src)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Decode decodes the hexadecimal encoding of a hash to a destination.
func Decode(dst *Hash, src string) error {
	// Return error if hash string is too long.
	if len(src) > MaxStringSize {
		return ErrStrSize
	}

	// Hex decoder expects the hash to be a multiple of two.
	var srcBytes []byte
	if len(src)%2 == 0 {
		srcBytes = []byte(src)
	} else {
		srcBytes = make([]byte, 1+len(src))
		srcBytes[0] = '0'
		copy(srcBytes[1:], src)
	}

	// Short strings decode into the tail of the hash, leaving leading
	// bytes zero. This mirrors big-endian integer semantics.
	var decoded [Size]byte
	_, err := hex.Decode(decoded[Size-hex.DecodedLen(len(srcBytes)):], srcBytes)
	if err != nil {
		return errors.Wrap(err, "couldn't decode hash hex")
	}

	*dst = decoded
	return nil
}
