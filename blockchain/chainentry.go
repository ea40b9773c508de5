package blockchain

import (
	"bytes"
	"io"
	"math/big"

	"github.com/pkg/errors"

	"github.com/handshake-org/hskd/consensus"
	"github.com/handshake-org/hskd/util/hash"
	"github.com/handshake-org/hskd/wire"
)

// chainworkSize is the serialized width of the accumulated chainwork.
const chainworkSize = 32

// ChainEntry is the in-memory projection of a block header within the
// index: the header fields plus the block's height and the cumulative
// chainwork up to and including it. Entries hold their parent by hash,
// never by pointer; the index resolves lookups.
//
// Chainwork is persisted with the entry so a restart never rescans the
// chain to recompute it.
type ChainEntry struct {
	// Hash is the block hash, blake2b over the serialized header.
	Hash hash.Hash

	// Height is the position of the block in the chain, zero for
	// genesis.
	Height uint32

	// Header fields, kept inline so headers can be reconstructed from
	// memory. These must be treated as immutable.
	Version      uint32
	PrevBlock    hash.Hash
	MerkleRoot   hash.Hash
	WitnessRoot  hash.Hash
	TreeRoot     hash.Hash
	ReservedRoot hash.Hash
	Timestamp    uint64
	Bits         uint32
	Nonce        wire.Nonce
	Solution     wire.Solution

	// Chainwork is the total estimated number of hash operations
	// needed to build the chain up to and including this block.
	Chainwork *big.Int
}

// NewChainEntry creates a chain entry from the given block and its parent
// entry. A nil prev denotes the genesis block.
func NewChainEntry(block *wire.MsgBlock, prev *ChainEntry) *ChainEntry {
	header := &block.Header
	entry := &ChainEntry{
		Hash:         block.BlockHash(),
		Version:      header.Version,
		PrevBlock:    header.PrevBlock,
		MerkleRoot:   header.MerkleRoot,
		WitnessRoot:  header.WitnessRoot,
		TreeRoot:     header.TreeRoot,
		ReservedRoot: header.ReservedRoot,
		Timestamp:    header.Timestamp,
		Bits:         header.Bits,
		Nonce:        header.Nonce,
		Solution:     block.Solution.Clone(),
	}
	if prev != nil {
		entry.Height = prev.Height + 1
	}
	entry.Chainwork = entry.chainworkFrom(prev)
	return entry
}

// Proof returns the expected number of hash operations a block at this
// entry's difficulty represents: (1 << 256) / (target + 1), zero when the
// target is zero or negative.
func (e *ChainEntry) Proof() *big.Int {
	return consensus.CalcWork(e.Bits)
}

// chainworkFrom returns the cumulative chainwork through this entry given
// its parent.
func (e *ChainEntry) chainworkFrom(prev *ChainEntry) *big.Int {
	proof := e.Proof()
	if prev == nil {
		return proof
	}
	return new(big.Int).Add(prev.Chainwork, proof)
}

// IsGenesis reports whether the entry is the genesis block.
func (e *ChainEntry) IsGenesis() bool {
	return e.Height == 0
}

// ToHeader reconstructs the block header this entry was derived from,
// ready for distribution to peers.
func (e *ChainEntry) ToHeader() *wire.BlockHeader {
	return &wire.BlockHeader{
		Version:      e.Version,
		PrevBlock:    e.PrevBlock,
		MerkleRoot:   e.MerkleRoot,
		WitnessRoot:  e.WitnessRoot,
		TreeRoot:     e.TreeRoot,
		ReservedRoot: e.ReservedRoot,
		Timestamp:    e.Timestamp,
		Bits:         e.Bits,
		Nonce:        e.Nonce,
	}
}

// Serialize encodes the entry into w: the block hash, the height, the
// exact header bytes, the solution, and the chainwork as a 32-byte
// big-endian integer.
func (e *ChainEntry) Serialize(w io.Writer) error {
	err := wire.WriteElements(w, &e.Hash, e.Height)
	if err != nil {
		return err
	}
	header := e.ToHeader()
	err = header.Serialize(w)
	if err != nil {
		return err
	}
	err = wire.WriteSolution(w, e.Solution)
	if err != nil {
		return err
	}

	var work [chainworkSize]byte
	e.Chainwork.FillBytes(work[:])
	_, err = w.Write(work[:])
	return errors.WithStack(err)
}

// Deserialize decodes an entry from r.
func (e *ChainEntry) Deserialize(r io.Reader) error {
	err := wire.ReadElements(r, &e.Hash, &e.Height)
	if err != nil {
		return err
	}
	var header wire.BlockHeader
	err = header.Deserialize(r)
	if err != nil {
		return err
	}
	e.Version = header.Version
	e.PrevBlock = header.PrevBlock
	e.MerkleRoot = header.MerkleRoot
	e.WitnessRoot = header.WitnessRoot
	e.TreeRoot = header.TreeRoot
	e.ReservedRoot = header.ReservedRoot
	e.Timestamp = header.Timestamp
	e.Bits = header.Bits
	e.Nonce = header.Nonce

	e.Solution, err = wire.ReadSolution(r)
	if err != nil {
		return err
	}

	var work [chainworkSize]byte
	_, err = io.ReadFull(r, work[:])
	if err != nil {
		return errors.WithStack(err)
	}
	e.Chainwork = new(big.Int).SetBytes(work[:])
	return nil
}

// Bytes returns the serialized entry.
func (e *ChainEntry) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	err := e.Serialize(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
