// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"bytes"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/pkg/errors"
)

const (
	// MaxAddressHashSize is the longest hash an address may carry. Version
	// 0 addresses use 20-byte (pubkey hash) or 32-byte (script hash)
	// payloads, but the envelope allows future versions up to this bound.
	MaxAddressHashSize = 64

	// maxAddressVersion is the highest usable address version. Versions
	// are carried in 5 bits on the bech32 wire form.
	maxAddressVersion = 31
)

// ErrBadAddress describes an address whose version or hash is outside the
// consensus envelope.
var ErrBadAddress = errors.New("malformed address")

// Address is a versioned witness program paid to by an output. The hash is
// a pubkey hash or script hash; the core never interprets it beyond size
// checks.
type Address struct {
	Version uint8
	Hash    []byte
}

// NewAddress returns an address for the given version and hash. The hash is
// copied.
func NewAddress(version uint8, addrHash []byte) (*Address, error) {
	if version > maxAddressVersion {
		return nil, ErrBadAddress
	}
	if len(addrHash) < 2 || len(addrHash) > MaxAddressHashSize {
		return nil, ErrBadAddress
	}

	h := make([]byte, len(addrHash))
	copy(h, addrHash)
	return &Address{Version: version, Hash: h}, nil
}

// Key returns the address in a form usable as a map key.
func (a *Address) Key() string {
	return string(append([]byte{a.Version}, a.Hash...))
}

// Clone returns a deep copy of the address.
func (a *Address) Clone() *Address {
	h := make([]byte, len(a.Hash))
	copy(h, a.Hash)
	return &Address{Version: a.Version, Hash: h}
}

// IsEqual returns true if target pays to the same program as a.
func (a *Address) IsEqual(target *Address) bool {
	if a == nil && target == nil {
		return true
	}
	if a == nil || target == nil {
		return false
	}
	return a.Version == target.Version && bytes.Equal(a.Hash, target.Hash)
}

// Encode returns the bech32 form of the address for the given human-readable
// prefix ("hs" on mainnet).
func (a *Address) Encode(hrp string) (string, error) {
	converted, err := bech32.ConvertBits(a.Hash, 8, 5, true)
	if err != nil {
		return "", errors.Wrap(err, "couldn't convert address program")
	}

	combined := make([]byte, len(converted)+1)
	combined[0] = a.Version
	copy(combined[1:], converted)
	return bech32.Encode(hrp, combined)
}

// DecodeAddress parses the bech32 form of an address and verifies it was
// encoded for the expected human-readable prefix.
func DecodeAddress(addr string, expectHRP string) (*Address, error) {
	hrp, data, err := bech32.Decode(addr)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't decode address")
	}
	if hrp != expectHRP {
		return nil, errors.Errorf("address prefix %q is not %q", hrp, expectHRP)
	}
	if len(data) < 1 {
		return nil, ErrBadAddress
	}

	converted, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't convert address program")
	}

	return NewAddress(data[0], converted)
}
