package cuckoo

// siphash-2-4 specialized for a single 8-byte input, which is all the
// cuckoo graph needs: every node derivation hashes one 64-bit edge value.
// Keeping the primitive in-package avoids pulling a dependency for forty
// lines of arithmetic and lets the compiler keep the state in registers.

func rotl(x uint64, b uint) uint64 {
	return (x << b) | (x >> (64 - b))
}

type sipKeys struct {
	k0, k1 uint64
}

func sipRound(v0, v1, v2, v3 uint64) (uint64, uint64, uint64, uint64) {
	v0 += v1
	v1 = rotl(v1, 13)
	v1 ^= v0
	v0 = rotl(v0, 32)
	v2 += v3
	v3 = rotl(v3, 16)
	v3 ^= v2
	v0 += v3
	v3 = rotl(v3, 21)
	v3 ^= v0
	v2 += v1
	v1 = rotl(v1, 17)
	v1 ^= v2
	v2 = rotl(v2, 32)
	return v0, v1, v2, v3
}

// siphash24 computes the siphash-2-4 of a single 64-bit word under the
// given 128-bit key.
func siphash24(keys *sipKeys, nonce uint64) uint64 {
	v0 := keys.k0 ^ 0x736f6d6570736575
	v1 := keys.k1 ^ 0x646f72616e646f6d
	v2 := keys.k0 ^ 0x6c7967656e657261
	v3 := keys.k1 ^ 0x7465646279746573

	v3 ^= nonce
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0 ^= nonce

	v2 ^= 0xff
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)
	v0, v1, v2, v3 = sipRound(v0, v1, v2, v3)

	return v0 ^ v1 ^ v2 ^ v3
}
