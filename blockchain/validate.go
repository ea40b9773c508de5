package blockchain

import (
	"fmt"
	"sort"

	"github.com/handshake-org/hskd/chaincfg"
	"github.com/handshake-org/hskd/consensus"
	"github.com/handshake-org/hskd/cuckoo"
	"github.com/handshake-org/hskd/wire"
)

// BehaviorFlags is a bitmask defining tweaks to the normal behavior of
// block processing. Callers outside consensus, such as tests and block
// template construction, use them to skip checks that do not apply.
type BehaviorFlags uint32

const (
	// BFNoPoWCheck signals that the proof of work, both the hash target
	// and the cuckoo-cycle solution, should not be checked.
	BFNoPoWCheck BehaviorFlags = 1 << iota

	// BFNone is a convenience value denoting no behavior flags.
	BFNone BehaviorFlags = 0
)

// checkProofOfWork ensures the header target is in range and that the
// block hash and cuckoo solution satisfy it.
func checkProofOfWork(block *wire.MsgBlock, params *chaincfg.Params, flags BehaviorFlags) error {
	header := &block.Header
	if err := consensus.CheckProofOfWorkRange(header.Bits, params.PowMax); err != nil {
		return ruleError(ErrUnexpectedDifficulty, err.Error())
	}

	if flags&BFNoPoWCheck == 0 {
		blockHash := block.BlockHash()
		if !consensus.CheckProofOfWork(&blockHash, header.Bits) {
			return ruleError(ErrHighHash, fmt.Sprintf("block hash of %s "+
				"is higher than expected max of %064x", blockHash,
				consensus.CompactToBig(header.Bits)))
		}
		err := cuckoo.Verify(header.Bytes(), block.Solution,
			params.Cuckoo.Bits, params.Cuckoo.Size, params.Cuckoo.Ease)
		if err != nil {
			return ruleError(ErrBadCuckoo, fmt.Sprintf("cuckoo solution "+
				"does not verify: %v", err))
		}
	}
	return nil
}

// checkBlockSanity performs the context-free validity checks on a block:
// proof of work, transaction shape, commitment roots, and the size and
// update budgets. These checks depend only on the block itself.
func checkBlockSanity(block *wire.MsgBlock, params *chaincfg.Params, flags BehaviorFlags) error {
	err := checkProofOfWork(block, params, flags)
	if err != nil {
		return err
	}

	if uint32(len(block.Solution)) != params.Cuckoo.Size {
		return ruleError(ErrBadCuckoo, fmt.Sprintf("solution carries %d "+
			"edges, want %d", len(block.Solution), params.Cuckoo.Size))
	}

	transactions := block.Transactions
	if len(transactions) == 0 {
		return ruleError(ErrNoTransactions, "block does not contain any "+
			"transactions")
	}
	if !transactions[0].IsCoinBase() {
		return ruleError(ErrFirstTxNotCoinbase, "first transaction in "+
			"block is not a coinbase")
	}
	for i, tx := range transactions[1:] {
		if tx.IsCoinBase() {
			return ruleError(ErrMultipleCoinbases, fmt.Sprintf("block "+
				"contains second coinbase at index %d", i+1))
		}
	}

	strippedSize := block.SerializeSizeStripped()
	if strippedSize > consensus.MaxBlockSize {
		return ruleError(ErrBlockTooBig, fmt.Sprintf("stripped block "+
			"size %d exceeds max %d", strippedSize,
			consensus.MaxBlockSize))
	}
	rawSize := block.SerializeSize()
	if rawSize > consensus.MaxRawBlockSize {
		return ruleError(ErrBlockTooBig, fmt.Sprintf("raw block size %d "+
			"exceeds max %d", rawSize, consensus.MaxRawBlockSize))
	}
	weight := strippedSize*(consensus.WitnessScaleFactor-1) + rawSize
	if weight > consensus.MaxBlockWeight {
		return ruleError(ErrBlockTooBig, fmt.Sprintf("block weight %d "+
			"exceeds max %d", weight, consensus.MaxBlockWeight))
	}

	updates := 0
	for _, tx := range transactions {
		for _, out := range tx.TxOut {
			if out.Covenant.Type != wire.CovenantNone {
				updates++
			}
		}
	}
	if updates > consensus.MaxBlockUpdates {
		return ruleError(ErrTooManyUpdates, fmt.Sprintf("block carries "+
			"%d name updates, max %d", updates,
			consensus.MaxBlockUpdates))
	}

	merkleRoot := consensus.MerkleRoot(block.TxHashes())
	if !block.Header.MerkleRoot.IsEqual(&merkleRoot) {
		return ruleError(ErrBadMerkleRoot, fmt.Sprintf("block merkle "+
			"root is invalid - got %s, want %s", merkleRoot,
			block.Header.MerkleRoot))
	}
	witnessRoot := consensus.MerkleRoot(block.WitnessHashes())
	if !block.Header.WitnessRoot.IsEqual(&witnessRoot) {
		return ruleError(ErrBadWitnessRoot, fmt.Sprintf("block witness "+
			"root is invalid - got %s, want %s", witnessRoot,
			block.Header.WitnessRoot))
	}
	return nil
}

// pastMedianTime returns the median timestamp of the last MedianTimespan
// entries ending at prev, resolved through the index.
func (c *Chain) pastMedianTime(prev *ChainEntry) uint64 {
	timestamps := make([]uint64, 0, consensus.MedianTimespan)
	for iter := prev; iter != nil && len(timestamps) < consensus.MedianTimespan; {
		timestamps = append(timestamps, iter.Timestamp)
		iter = c.index.LookupEntry(&iter.PrevBlock)
	}
	sort.Slice(timestamps, func(i, j int) bool {
		return timestamps[i] < timestamps[j]
	})
	return timestamps[len(timestamps)/2]
}

// checkBlockContext performs the validity checks that depend on the
// block's position in the chain relative to its parent entry.
func (c *Chain) checkBlockContext(block *wire.MsgBlock, prev *ChainEntry) error {
	header := &block.Header

	// The reviewed core validates every block against the network's
	// initial target; retargeting happens above this layer.
	if header.Bits != c.params.PowBits {
		return ruleError(ErrUnexpectedDifficulty, fmt.Sprintf("block "+
			"difficulty of %08x is not the expected value of %08x",
			header.Bits, c.params.PowBits))
	}

	medianTime := c.pastMedianTime(prev)
	if header.Timestamp <= medianTime {
		return ruleError(ErrTimeTooOld, fmt.Sprintf("block timestamp of "+
			"%d is not after expected %d", header.Timestamp, medianTime))
	}
	return nil
}
