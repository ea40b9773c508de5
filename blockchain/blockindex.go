package blockchain

import (
	"sync"

	"github.com/handshake-org/hskd/util/hash"
)

// blockIndex is the arena of all known chain entries, best chain and side
// chains alike, plus the ordered main chain. Entries reference their
// parents by hash; the index resolves those references.
type blockIndex struct {
	sync.RWMutex
	index     map[hash.Hash]*ChainEntry
	mainChain []*ChainEntry
}

func newBlockIndex() *blockIndex {
	return &blockIndex{
		index: make(map[hash.Hash]*ChainEntry),
	}
}

// LookupEntry returns the chain entry for the given hash, or nil if the
// hash is unknown.
//
// This function is safe for concurrent access.
func (bi *blockIndex) LookupEntry(blockHash *hash.Hash) *ChainEntry {
	bi.RLock()
	defer bi.RUnlock()
	return bi.index[*blockHash]
}

// HaveEntry reports whether the given hash is known to the index.
//
// This function is safe for concurrent access.
func (bi *blockIndex) HaveEntry(blockHash *hash.Hash) bool {
	bi.RLock()
	defer bi.RUnlock()
	_, ok := bi.index[*blockHash]
	return ok
}

// AddEntry adds the entry to the arena. It does not place the entry on
// the main chain.
//
// This function is safe for concurrent access.
func (bi *blockIndex) AddEntry(entry *ChainEntry) {
	bi.Lock()
	defer bi.Unlock()
	bi.index[entry.Hash] = entry
}

// Tip returns the entry of the current main chain tip, or nil when the
// index is empty.
//
// This function is safe for concurrent access.
func (bi *blockIndex) Tip() *ChainEntry {
	bi.RLock()
	defer bi.RUnlock()
	if len(bi.mainChain) == 0 {
		return nil
	}
	return bi.mainChain[len(bi.mainChain)-1]
}

// SetTip appends the entry to the main chain. The entry must extend the
// current tip.
//
// This function is safe for concurrent access.
func (bi *blockIndex) SetTip(entry *ChainEntry) {
	bi.Lock()
	defer bi.Unlock()
	bi.mainChain = append(bi.mainChain, entry)
}

// RemoveTip drops the current main chain tip, leaving its entry in the
// arena as a side chain block.
//
// This function is safe for concurrent access.
func (bi *blockIndex) RemoveTip() {
	bi.Lock()
	defer bi.Unlock()
	if len(bi.mainChain) > 0 {
		bi.mainChain = bi.mainChain[:len(bi.mainChain)-1]
	}
}

// EntryByHeight returns the main chain entry at the given height, or nil
// when the height is above the tip.
//
// This function is safe for concurrent access.
func (bi *blockIndex) EntryByHeight(height uint32) *ChainEntry {
	bi.RLock()
	defer bi.RUnlock()
	if uint64(height) >= uint64(len(bi.mainChain)) {
		return nil
	}
	return bi.mainChain[height]
}

// IsMainChain reports whether the entry for the given hash lies on the
// main chain.
//
// This function is safe for concurrent access.
func (bi *blockIndex) IsMainChain(blockHash *hash.Hash) bool {
	bi.RLock()
	defer bi.RUnlock()
	entry, ok := bi.index[*blockHash]
	if !ok {
		return false
	}
	if uint64(entry.Height) >= uint64(len(bi.mainChain)) {
		return false
	}
	return bi.mainChain[entry.Height] == entry
}

// Height returns the height of the main chain tip. The second return is
// false when the index is empty.
//
// This function is safe for concurrent access.
func (bi *blockIndex) Height() (uint32, bool) {
	bi.RLock()
	defer bi.RUnlock()
	if len(bi.mainChain) == 0 {
		return 0, false
	}
	return uint32(len(bi.mainChain) - 1), true
}
