// Package genesis builds the genesis blocks of every supported network
// from the frozen root zone snapshot.
//
// The construction is fully deterministic: every byte of the resulting
// block is a function of the network parameters and the snapshot. Three
// transactions seed the chain: a coinbase paying out the premine, a
// claimer staking every reserved root name for the claimant, and a
// registry installing the snapshot's delegation records.
package genesis

import (
	"github.com/pkg/errors"

	"github.com/handshake-org/hskd/consensus"
	"github.com/handshake-org/hskd/util"
	"github.com/handshake-org/hskd/util/hash"
	"github.com/handshake-org/hskd/wire"
)

// EpochFlag is the witness message embedded in the genesis coinbase
// input, fixing the chain epoch the way bitcoin's newspaper headline
// does.
const EpochFlag = "01/Nov/2017 EFF to ICANN: Don't Pick Up the Censor's Pen"

// GenesisKeyHash is the 20-byte address hash the claimer pays the genesis
// reward to.
var GenesisKeyHash = [20]byte{
	0xf0, 0x23, 0x7a, 0xe2, 0xe8, 0xf8, 0x60, 0xf7, 0xd7, 0x91,
	0x24, 0xfc, 0x51, 0x3f, 0x01, 0x2e, 0x5a, 0xaa, 0x8d, 0x23,
}

// Keys are the five reserved 20-byte address hashes the premine pays to.
type Keys struct {
	Investors  [20]byte
	Foundation [20]byte
	Claimant   [20]byte
	Creators   [20]byte
	Airdrop    [20]byte
}

// Params describe one network's genesis block.
type Params struct {
	Time uint64
	Bits uint32
	Keys Keys

	// Solution is the required proof attached to the header. Networks
	// that never validate their genesis proof use a zero-filled
	// solution of the right arity.
	Solution wire.Solution

	// Nonce is the header nonce, zero unless a real proof was mined.
	Nonce wire.Nonce
}

func keyAddress(key [20]byte) util.Address {
	return util.Address{Version: 0, Hash: append([]byte(nil), key[:]...)}
}

// buildCoinbase pays the genesis reward and the four premine tranches to
// the reserved addresses. The input witness carries the epoch flag.
func buildCoinbase(keys *Keys) *wire.MsgTx {
	tx := &wire.MsgTx{Version: 0}
	tx.TxIn = append(tx.TxIn, &wire.TxIn{
		PreviousOutPoint: wire.OutPoint{
			Hash:  hash.ZeroHash,
			Index: wire.MaxPrevOutIndex,
		},
		Witness:  [][]byte{[]byte(EpochFlag)},
		Sequence: wire.MaxTxInSequenceNum,
	})

	payouts := []struct {
		value util.Amount
		key   [20]byte
	}{
		{consensus.GenesisReward, keys.Claimant},
		{consensus.MaxInvestors, keys.Investors},
		{consensus.MaxFoundation, keys.Foundation},
		{consensus.MaxCreators, keys.Creators},
		{consensus.MaxAirdrop, keys.Airdrop},
	}
	for _, payout := range payouts {
		tx.TxOut = append(tx.TxOut, &wire.TxOut{
			Value:    payout.value,
			Address:  keyAddress(payout.key),
			Covenant: wire.Covenant{Type: wire.CovenantNone},
		})
	}
	return tx
}

// buildClaimer spends the coinbase's claimant output, hands the genesis
// reward to the genesis key and stakes a claim on every reserved root
// name in lexicographic order.
func buildClaimer(coinbase *wire.MsgTx, keys *Keys) (*wire.MsgTx, error) {
	tx := &wire.MsgTx{Version: 0}
	tx.TxIn = append(tx.TxIn, &wire.TxIn{
		PreviousOutPoint: wire.OutPoint{
			Hash:  coinbase.TxHash(),
			Index: 0,
		},
		Witness:  [][]byte{},
		Sequence: wire.MaxTxInSequenceNum,
	})

	tx.TxOut = append(tx.TxOut, &wire.TxOut{
		Value:    consensus.GenesisReward,
		Address:  keyAddress(GenesisKeyHash),
		Covenant: wire.Covenant{Type: wire.CovenantNone},
	})
	for _, name := range ReservedNames() {
		covenant, err := wire.NewCovenant(wire.CovenantClaim, []byte(name))
		if err != nil {
			return nil, err
		}
		tx.TxOut = append(tx.TxOut, &wire.TxOut{
			Value:    0,
			Address:  keyAddress(keys.Claimant),
			Covenant: *covenant,
		})
	}
	return tx, nil
}

// buildRegistry spends each claim output and registers the snapshot's
// delegation data for its name. The tree hash item is an all-zero
// placeholder because the name tree is empty at genesis.
func buildRegistry(claimer *wire.MsgTx, keys *Keys) (*wire.MsgTx, error) {
	tx := &wire.MsgTx{Version: 0}
	claimerHash := claimer.TxHash()
	for i, name := range ReservedNames() {
		tx.TxIn = append(tx.TxIn, &wire.TxIn{
			PreviousOutPoint: wire.OutPoint{
				Hash:  claimerHash,
				Index: uint32(i + 1),
			},
			Witness:  [][]byte{},
			Sequence: wire.MaxTxInSequenceNum,
		})

		record, ok := ReservedRecord(name)
		if !ok {
			return nil, errors.Errorf("reserved name %q has no record",
				name)
		}
		covenant, err := wire.NewCovenant(wire.CovenantRegister,
			[]byte(name), EncodeResource(&record), hash.ZeroHash[:])
		if err != nil {
			return nil, err
		}
		tx.TxOut = append(tx.TxOut, &wire.TxOut{
			Value:    0,
			Address:  keyAddress(keys.Claimant),
			Covenant: *covenant,
		})
	}
	return tx, nil
}

// Build assembles the genesis block for one network. The header commits
// to the three transactions and to an empty name tree.
func Build(params *Params) (*wire.MsgBlock, error) {
	coinbase := buildCoinbase(&params.Keys)
	claimer, err := buildClaimer(coinbase, &params.Keys)
	if err != nil {
		return nil, err
	}
	registry, err := buildRegistry(claimer, &params.Keys)
	if err != nil {
		return nil, err
	}
	txs := []*wire.MsgTx{coinbase, claimer, registry}

	txHashes := make([]hash.Hash, len(txs))
	witnessHashes := make([]hash.Hash, len(txs))
	for i, tx := range txs {
		txHashes[i] = tx.TxHash()
		witnessHashes[i] = tx.WitnessHash()
	}

	header := &wire.BlockHeader{
		Version:      0,
		PrevBlock:    hash.ZeroHash,
		MerkleRoot:   consensus.MerkleRoot(txHashes),
		WitnessRoot:  consensus.MerkleRoot(witnessHashes),
		TreeRoot:     hash.ZeroHash,
		ReservedRoot: hash.ZeroHash,
		Timestamp:    params.Time,
		Bits:         params.Bits,
		Nonce:        params.Nonce,
	}

	block := wire.NewMsgBlock(header, params.Solution.Clone())
	for _, tx := range txs {
		block.AddTransaction(tx)
	}
	return block, nil
}
