package blockchain

import (
	"bytes"
	"sort"

	"github.com/handshake-org/hskd/consensus"
	"github.com/handshake-org/hskd/naming"
	"github.com/handshake-org/hskd/util/hash"
)

// nameSet mirrors the committed auction store in memory so the name tree
// root can be recomputed without walking the database on every block. It
// is guarded by the chain lock.
type nameSet struct {
	auctions map[hash.Hash][]byte
}

func newNameSet() *nameSet {
	return &nameSet{auctions: make(map[hash.Hash][]byte)}
}

// FetchAuction returns the committed auction record for the given name
// hash, or nil when the name is in its null state. Implements
// naming.Store for views built against the current tip.
func (s *nameSet) FetchAuction(nameHash *hash.Hash) (*naming.Auction, error) {
	raw, ok := s.auctions[*nameHash]
	if !ok {
		return nil, nil
	}
	auction := &naming.Auction{}
	err := auction.Deserialize(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return auction, nil
}

// put replaces the record for the given name hash.
func (s *nameSet) put(nameHash *hash.Hash, raw []byte) {
	s.auctions[*nameHash] = raw
}

// remove returns the name to its null state.
func (s *nameSet) remove(nameHash *hash.Hash) {
	delete(s.auctions, *nameHash)
}

// treeRoot computes the merkle root over the full name set with the given
// records overlaid: each leaf is blake2b(nameHash || record), ordered by
// name hash. An overlay value of nil removes the name.
func (s *nameSet) treeRoot(overlay map[hash.Hash][]byte) hash.Hash {
	merged := make(map[hash.Hash][]byte, len(s.auctions)+len(overlay))
	for nameHash, raw := range s.auctions {
		merged[nameHash] = raw
	}
	for nameHash, raw := range overlay {
		if raw == nil {
			delete(merged, nameHash)
			continue
		}
		merged[nameHash] = raw
	}

	nameHashes := make([]hash.Hash, 0, len(merged))
	for nameHash := range merged {
		nameHashes = append(nameHashes, nameHash)
	}
	sort.Slice(nameHashes, func(i, j int) bool {
		return nameHashes[i].Cmp(&nameHashes[j]) < 0
	})

	leaves := make([]hash.Hash, len(nameHashes))
	for i := range nameHashes {
		writer := hash.NewWriter()
		writer.Write(nameHashes[i][:])
		writer.Write(merged[nameHashes[i]])
		leaves[i] = writer.Finalize()
	}
	return consensus.MerkleRoot(leaves)
}
