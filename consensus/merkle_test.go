// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"testing"

	"github.com/handshake-org/hskd/util/hash"
)

func combine(left, right hash.Hash) hash.Hash {
	var buf [2 * hash.Size]byte
	copy(buf[:hash.Size], left[:])
	copy(buf[hash.Size:], right[:])
	return hash.HashB(buf[:])
}

func TestMerkleRoot(t *testing.T) {
	leaves := make([]hash.Hash, 4)
	for i := range leaves {
		leaves[i] = hash.HashB([]byte{byte(i)})
	}

	if got := MerkleRoot(nil); got != hash.ZeroHash {
		t.Errorf("MerkleRoot(nil): got %v, want zero hash", got)
	}
	if got := MerkleRoot(leaves[:1]); got != leaves[0] {
		t.Errorf("MerkleRoot(single): got %v, want the leaf %v", got,
			leaves[0])
	}
	if got, want := MerkleRoot(leaves[:2]), combine(leaves[0], leaves[1]); got != want {
		t.Errorf("MerkleRoot(pair): got %v, want %v", got, want)
	}

	// The unpaired third leaf pairs with the zero hash.
	want := combine(combine(leaves[0], leaves[1]),
		combine(leaves[2], hash.ZeroHash))
	if got := MerkleRoot(leaves[:3]); got != want {
		t.Errorf("MerkleRoot(odd): got %v, want %v", got, want)
	}

	// The input slice must not be clobbered.
	original := hash.HashB([]byte{0})
	MerkleRoot(leaves)
	if leaves[0] != original {
		t.Error("MerkleRoot mutated its input")
	}
}
