// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"testing"

	"github.com/handshake-org/hskd/genesis"
)

// TestRegister ensures duplicate networks are rejected.
func TestRegister(t *testing.T) {
	if err := Register(&MainNetParams); err != ErrDuplicateNet {
		t.Fatalf("Register(main): got %v, want %v", err, ErrDuplicateNet)
	}
	custom := Params{Net: Net(0xdeadbeef)}
	if err := Register(&custom); err != nil {
		t.Fatalf("Register(custom): %v", err)
	}
	if err := Register(&custom); err != ErrDuplicateNet {
		t.Fatalf("Register(custom) twice: got %v, want %v", err,
			ErrDuplicateNet)
	}
}

// TestGenesisBlocks ensures every standard network carries a deterministic
// genesis block that differs from every other network's.
func TestGenesisBlocks(t *testing.T) {
	networks := []*Params{&MainNetParams, &TestNetParams,
		&RegressionNetParams, &SimNetParams}
	seen := make(map[string]string)
	var wantTime uint64 = 1514765688
	for _, params := range networks {
		if params.GenesisBlock == nil {
			t.Fatalf("%s has no genesis block", params.Name)
		}
		if params.GenesisBlock.Header.Timestamp != params.GenesisTime {
			t.Errorf("%s genesis timestamp %d does not match params %d",
				params.Name, params.GenesisBlock.Header.Timestamp,
				params.GenesisTime)
		}
		if params.GenesisTime != wantTime {
			t.Errorf("%s genesis time: got %d, want %d", params.Name,
				params.GenesisTime, wantTime)
		}
		wantTime++

		hashStr := params.GenesisHash.String()
		if prev, ok := seen[hashStr]; ok {
			t.Errorf("%s and %s share a genesis hash", params.Name, prev)
		}
		seen[hashStr] = params.Name

		if uint32(len(params.GenesisBlock.Solution)) != params.Cuckoo.Size {
			t.Errorf("%s genesis solution arity %d does not match cuckoo "+
				"size %d", params.Name,
				len(params.GenesisBlock.Solution), params.Cuckoo.Size)
		}

		// Rebuilding from the same inputs must reproduce the hash.
		rebuilt, err := genesis.Build(&genesis.Params{
			Time:     params.GenesisTime,
			Bits:     params.PowBits,
			Keys:     params.Keys,
			Solution: make([]uint32, params.Cuckoo.Size),
		})
		if err != nil {
			t.Fatalf("rebuild %s genesis: %v", params.Name, err)
		}
		if rebuilt.BlockHash() != params.GenesisHash {
			t.Errorf("%s genesis hash is not reproducible", params.Name)
		}
	}
}

func TestBech32HRPs(t *testing.T) {
	tests := []struct {
		params *Params
		want   string
	}{
		{&MainNetParams, "hs"},
		{&TestNetParams, "ts"},
		{&RegressionNetParams, "rs"},
		{&SimNetParams, "ss"},
	}
	for _, test := range tests {
		if test.params.Bech32HRP != test.want {
			t.Errorf("%s HRP: got %q, want %q", test.params.Name,
				test.params.Bech32HRP, test.want)
		}
	}
}
