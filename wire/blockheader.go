// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"

	"github.com/handshake-org/hskd/util/hash"
	"github.com/pkg/errors"
)

// HeaderSize is the exact number of bytes a serialized block header
// occupies. Any deviation is a parse error.
//
// Version 4 bytes + PrevBlock 32 bytes + MerkleRoot 32 bytes +
// WitnessRoot 32 bytes + TreeRoot 32 bytes + ReservedRoot 32 bytes +
// Time 8 bytes + Bits 4 bytes + Nonce 20 bytes.
const HeaderSize = 196

// NoncePos is the byte offset of the nonce within a serialized header.
const NoncePos = 176

// NonceSize is the size of the header nonce in bytes. The extra length
// beyond a conventional 4-byte nonce accommodates cuckoo-cycle header
// expansion.
const NonceSize = 20

// Nonce is the fixed-size header nonce.
type Nonce [NonceSize]byte

// BlockHeader defines information about a block and is used in the block
// (MsgBlock) and headers messages.
type BlockHeader struct {
	// Version of the block. This is not the same as the protocol
	// version. Also carries version-bit signalling.
	Version uint32

	// Hash of the previous block in the chain. Zero for genesis.
	PrevBlock hash.Hash

	// Merkle tree reference to hash of all transactions for the block.
	MerkleRoot hash.Hash

	// Merkle tree over the witness hashes of all transactions.
	WitnessRoot hash.Hash

	// Root of the name-auction tree after this block is applied.
	TreeRoot hash.Hash

	// Reserved commitment root. Zero until activated by a future
	// deployment.
	ReservedRoot hash.Hash

	// Time the block was created, in UNIX seconds.
	Timestamp uint64

	// Difficulty target for the block in compact form.
	Bits uint32

	// Nonce used to generate the block.
	Nonce Nonce
}

// BlockHash computes the block identifier hash for the given block header:
// blake2b over the exact 196 serialized bytes.
func (h *BlockHeader) BlockHash() hash.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize))
	// Ignore the error returns since the encode cannot fail when writing
	// to a bytes.Buffer.
	_ = writeBlockHeader(buf, h)

	return hash.HashB(buf.Bytes())
}

// Deserialize decodes a block header from r into the receiver. The format
// is identical on the wire and in long-term storage.
func (h *BlockHeader) Deserialize(r io.Reader) error {
	return readBlockHeader(r, h)
}

// Serialize encodes a block header into w. The format is identical on the
// wire and in long-term storage.
func (h *BlockHeader) Serialize(w io.Writer) error {
	return writeBlockHeader(w, h)
}

// SerializeSize returns the number of bytes it would take to serialize the
// block header. Headers are fixed size.
func (h *BlockHeader) SerializeSize() int {
	return HeaderSize
}

// Bytes returns the serialized header. Useful as the cuckoo seed input.
func (h *BlockHeader) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize))
	_ = writeBlockHeader(buf, h)
	return buf.Bytes()
}

// NewBlockHeader returns a new BlockHeader using the provided version,
// previous block hash, commitment roots, difficulty bits, and nonce, with
// the supplied timestamp.
func NewBlockHeader(version uint32, prevBlock, merkleRoot, witnessRoot,
	treeRoot *hash.Hash, timestamp uint64, bits uint32, nonce Nonce) *BlockHeader {

	return &BlockHeader{
		Version:     version,
		PrevBlock:   *prevBlock,
		MerkleRoot:  *merkleRoot,
		WitnessRoot: *witnessRoot,
		TreeRoot:    *treeRoot,
		Timestamp:   timestamp,
		Bits:        bits,
		Nonce:       nonce,
	}
}

// readBlockHeader reads a block header from r.
func readBlockHeader(r io.Reader, bh *BlockHeader) error {
	err := ReadElements(r, &bh.Version, &bh.PrevBlock, &bh.MerkleRoot,
		&bh.WitnessRoot, &bh.TreeRoot, &bh.ReservedRoot, &bh.Timestamp,
		&bh.Bits)
	if err != nil {
		return err
	}

	_, err = io.ReadFull(r, bh.Nonce[:])
	return errors.WithStack(err)
}

// writeBlockHeader writes a block header to w.
func writeBlockHeader(w io.Writer, bh *BlockHeader) error {
	err := WriteElements(w, bh.Version, &bh.PrevBlock, &bh.MerkleRoot,
		&bh.WitnessRoot, &bh.TreeRoot, &bh.ReservedRoot, bh.Timestamp,
		bh.Bits)
	if err != nil {
		return err
	}

	_, err = w.Write(bh.Nonce[:])
	return errors.WithStack(err)
}
