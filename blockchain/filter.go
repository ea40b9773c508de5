package blockchain

import (
	"sync"

	"github.com/handshake-org/hskd/util"
	"github.com/handshake-org/hskd/util/hash"
	"github.com/handshake-org/hskd/wire"
)

// Filter selects the transactions a rescan delivers to a subscriber. A
// transaction matches when any of its outputs pays a watched address or
// carries a covenant on a watched name. The zero value matches nothing;
// a nil *Filter matches everything.
type Filter struct {
	mtx       sync.Mutex
	addresses map[string]struct{}
	names     map[hash.Hash]struct{}
}

// NewFilter returns an empty filter.
func NewFilter() *Filter {
	return &Filter{
		addresses: make(map[string]struct{}),
		names:     make(map[hash.Hash]struct{}),
	}
}

// AddAddress watches the given address.
//
// This function is safe for concurrent access.
func (f *Filter) AddAddress(address *util.Address) {
	f.mtx.Lock()
	f.addresses[address.Key()] = struct{}{}
	f.mtx.Unlock()
}

// AddName watches the name behind the given name hash.
//
// This function is safe for concurrent access.
func (f *Filter) AddName(nameHash *hash.Hash) {
	f.mtx.Lock()
	f.names[*nameHash] = struct{}{}
	f.mtx.Unlock()
}

// MatchTx reports whether the transaction is relevant to the filter. A
// nil filter matches every transaction.
//
// This function is safe for concurrent access.
func (f *Filter) MatchTx(tx *wire.MsgTx) bool {
	if f == nil {
		return true
	}
	f.mtx.Lock()
	defer f.mtx.Unlock()
	for _, out := range tx.TxOut {
		if _, ok := f.addresses[out.Address.Key()]; ok {
			return true
		}
		if out.Covenant.IsName() {
			nameHash := out.Covenant.NameHash()
			if _, ok := f.names[nameHash]; ok {
				return true
			}
		}
	}
	return false
}

// filterTxs returns the subset of txs matching the filter. A nil filter
// returns txs unchanged.
func filterTxs(filter *Filter, txs []*wire.MsgTx) []*wire.MsgTx {
	if filter == nil {
		return txs
	}
	matched := make([]*wire.MsgTx, 0, len(txs))
	for _, tx := range txs {
		if filter.MatchTx(tx) {
			matched = append(matched, tx)
		}
	}
	return matched
}
