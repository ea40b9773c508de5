// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/btcsuite/btcutil/bech32"

	"github.com/handshake-org/hskd/chaincfg"
	. "github.com/handshake-org/hskd/util"
)

func TestAddressEncodeDecode(t *testing.T) {
	networks := []struct {
		name   string
		params *chaincfg.Params
	}{
		{"mainnet", &chaincfg.MainNetParams},
		{"testnet", &chaincfg.TestNetParams},
		{"regtest", &chaincfg.RegressionNetParams},
		{"simnet", &chaincfg.SimNetParams},
	}
	programs := []struct {
		name    string
		version uint8
		hash    []byte
	}{
		{"v0 pubkey hash", 0, bytes.Repeat([]byte{0x5a}, 20)},
		{"v0 script hash", 0, bytes.Repeat([]byte{0xc4}, 32)},
		{"future version", 31, bytes.Repeat([]byte{0x02}, 20)},
	}

	for _, network := range networks {
		for _, program := range programs {
			addr, err := NewAddress(program.version, program.hash)
			if err != nil {
				t.Errorf("%s/%s: NewAddress: %v", network.name,
					program.name, err)
				continue
			}

			encoded, err := addr.Encode(network.params.Bech32HRP)
			if err != nil {
				t.Errorf("%s/%s: Encode: %v", network.name,
					program.name, err)
				continue
			}
			if !strings.HasPrefix(encoded, network.params.Bech32HRP+"1") {
				t.Errorf("%s/%s: encoded %q does not carry prefix %q",
					network.name, program.name, encoded,
					network.params.Bech32HRP)
				continue
			}

			decoded, err := DecodeAddress(encoded, network.params.Bech32HRP)
			if err != nil {
				t.Errorf("%s/%s: DecodeAddress(%q): %v", network.name,
					program.name, encoded, err)
				continue
			}
			if !decoded.IsEqual(addr) {
				t.Errorf("%s/%s: round trip changed the address: got "+
					"{%d %x}, want {%d %x}", network.name, program.name,
					decoded.Version, decoded.Hash, addr.Version,
					addr.Hash)
			}
		}
	}
}

func TestDecodeAddressErrors(t *testing.T) {
	addr, err := NewAddress(0, bytes.Repeat([]byte{0x5a}, 20))
	if err != nil {
		t.Fatalf("NewAddress: %v", err)
	}
	encoded, err := addr.Encode("hs")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Flip the final checksum character to a different charset member.
	corrupt := encoded[:len(encoded)-1] + "q"
	if strings.HasSuffix(encoded, "q") {
		corrupt = encoded[:len(encoded)-1] + "p"
	}

	// An address carrying no version byte at all.
	empty, err := bech32.Encode("hs", nil)
	if err != nil {
		t.Fatalf("bech32.Encode: %v", err)
	}

	tests := []struct {
		name string
		addr string
		hrp  string
	}{
		{"wrong network prefix", encoded, "ts"},
		{"not bech32 at all", "definitely not an address", "hs"},
		{"corrupted checksum", corrupt, "hs"},
		{"empty data part", empty, "hs"},
	}
	for _, test := range tests {
		if _, err := DecodeAddress(test.addr, test.hrp); err == nil {
			t.Errorf("%s: DecodeAddress(%q, %q) accepted a bad address",
				test.name, test.addr, test.hrp)
		}
	}
}

func TestNewAddressErrors(t *testing.T) {
	tests := []struct {
		name    string
		version uint8
		hash    []byte
	}{
		{"version out of range", 32, bytes.Repeat([]byte{0x01}, 20)},
		{"hash too short", 0, []byte{0x01}},
		{"hash too long", 0, bytes.Repeat([]byte{0x01}, MaxAddressHashSize+1)},
	}
	for _, test := range tests {
		if _, err := NewAddress(test.version, test.hash); err == nil {
			t.Errorf("%s: NewAddress(%d, %d bytes) accepted a bad program",
				test.name, test.version, len(test.hash))
		}
	}
}

func TestAddressKey(t *testing.T) {
	a, err := NewAddress(0, bytes.Repeat([]byte{0x5a}, 20))
	if err != nil {
		t.Fatalf("NewAddress: %v", err)
	}
	b, err := NewAddress(1, bytes.Repeat([]byte{0x5a}, 20))
	if err != nil {
		t.Fatalf("NewAddress: %v", err)
	}
	if a.Key() == b.Key() {
		t.Error("addresses differing only in version share a map key")
	}
	if a.Key() != a.Clone().Key() {
		t.Error("cloning an address changed its map key")
	}
}
