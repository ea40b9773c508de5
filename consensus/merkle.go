// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"github.com/handshake-org/hskd/util/hash"
)

// MerkleRoot computes the root of a binary blake2b merkle tree whose
// leaves are the given hashes in order. An unpaired node at the end of a
// level is hashed against the zero hash rather than duplicated, which
// closes the classic duplicate-leaf malleability. An empty leaf set
// yields the zero hash.
func MerkleRoot(leaves []hash.Hash) hash.Hash {
	if len(leaves) == 0 {
		return hash.ZeroHash
	}

	level := make([]hash.Hash, len(leaves))
	copy(level, leaves)
	var buf [2 * hash.Size]byte
	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, hash.ZeroHash)
		}
		next := level[:0]
		for i := 0; i < len(level); i += 2 {
			copy(buf[:hash.Size], level[i][:])
			copy(buf[hash.Size:], level[i+1][:])
			next = append(next, hash.HashB(buf[:]))
		}
		level = next
	}
	return level[0]
}
