// Package cuckoo implements verification of cuckoo-cycle proofs of work.
//
// A proof is a strictly increasing list of edge indices into a bipartite
// graph whose edges are derived from the block header via siphash-2-4. The
// verifier is pure: it checks that the supplied edges form a single cycle
// of exactly the required length and never searches for one.
package cuckoo

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/handshake-org/hskd/util/hash"
	"github.com/handshake-org/hskd/wire"
)

// Verification failure reasons. Verify returns nil when the proof is valid.
var (
	// ErrTooBig means an edge index exceeds the graph's edge mask.
	ErrTooBig = errors.New("edge index is too big")

	// ErrTooSmall means the edge indices are not strictly increasing.
	ErrTooSmall = errors.New("edge indices are not strictly increasing")

	// ErrNonMatching means the edge endpoints do not cancel, so the
	// edges cannot possibly form a set of closed cycles.
	ErrNonMatching = errors.New("edge endpoints do not match up")

	// ErrBranch means a node in the proof has more than two incident
	// edges.
	ErrBranch = errors.New("cycle branches")

	// ErrDeadEnd means a node in the proof has only one incident edge.
	ErrDeadEnd = errors.New("cycle dead ends")

	// ErrShortCycle means the edges form a cycle shorter than the
	// required length.
	ErrShortCycle = errors.New("cycle is too short")
)

// EdgeMask returns the largest usable edge index for a graph with the
// given size exponent and ease percentage. An ease of 100 admits the full
// edge space.
func EdgeMask(bits uint8, ease uint32) uint64 {
	return uint64(ease)*(uint64(1)<<bits)/100 - 1
}

// sipnode derives one endpoint of an edge. The uorv bit selects the side
// of the bipartition and is folded into the node value so that the two
// sides never collide.
func sipnode(keys *sipKeys, edge uint64, uorv uint64, edgeMask uint64) uint64 {
	return (siphash24(keys, 2*edge+uorv)&edgeMask)<<1 | uorv
}

// headerKeys expands a serialized header into the siphash key for the
// graph. The final four nonce bytes are zeroed before hashing, leaving
// them free for solvers to grind without re-deriving the graph, and the
// blake2b digest is folded in half.
func headerKeys(header []byte) sipKeys {
	var buf [wire.HeaderSize]byte
	copy(buf[:], header)
	for i := wire.HeaderSize - 4; i < wire.HeaderSize; i++ {
		buf[i] = 0
	}
	digest := hash.HashB(buf[:])
	return sipKeys{
		k0: binary.LittleEndian.Uint64(digest[0:8]) ^
			binary.LittleEndian.Uint64(digest[16:24]),
		k1: binary.LittleEndian.Uint64(digest[8:16]) ^
			binary.LittleEndian.Uint64(digest[24:32]),
	}
}

// Verify checks that solution is a valid cuckoo-cycle proof for the given
// serialized header. The graph has 2^bits potential edges scaled down by
// the ease percentage, and the cycle must contain exactly size edges.
func Verify(header []byte, solution wire.Solution, bits uint8, size uint32, ease uint32) error {
	if len(header) != wire.HeaderSize {
		return errors.Errorf("header is %d bytes, want %d", len(header),
			wire.HeaderSize)
	}
	if uint32(len(solution)) != size {
		return errors.Errorf("solution has %d edges, want %d",
			len(solution), size)
	}

	keys := headerKeys(header)
	edgeMask := EdgeMask(bits, ease)

	// Derive both endpoints of every edge. The xor accumulators cancel
	// only if every node is incident to an even number of edges, a
	// necessary condition for a set of closed cycles.
	var uvs [2 * wire.MaxSolutionSize]uint64
	var xor0, xor1 uint64
	for n, edge := range solution {
		if uint64(edge) > edgeMask {
			return errors.WithStack(ErrTooBig)
		}
		if n > 0 && edge <= solution[n-1] {
			return errors.WithStack(ErrTooSmall)
		}
		uvs[2*n] = sipnode(&keys, uint64(edge), 0, edgeMask)
		xor0 ^= uvs[2*n]
		uvs[2*n+1] = sipnode(&keys, uint64(edge), 1, edgeMask)
		xor1 ^= uvs[2*n+1]
	}
	if xor0|xor1 != 0 {
		return errors.WithStack(ErrNonMatching)
	}

	// Walk the cycle starting from the first edge's u endpoint. Each
	// step jumps to the unique other occurrence of the current node
	// value, then crosses to the other endpoint of that edge.
	n := uint32(0)
	i := 0
	for {
		j := i
		for k := (i + 2) % (2 * int(size)); k != i; k = (k + 2) % (2 * int(size)) {
			if uvs[k] == uvs[i] {
				if j != i {
					return errors.WithStack(ErrBranch)
				}
				j = k
			}
		}
		if j == i {
			return errors.WithStack(ErrDeadEnd)
		}
		i = j ^ 1
		n++
		if i == 0 {
			break
		}
	}
	if n != size {
		return errors.WithStack(ErrShortCycle)
	}
	return nil
}
